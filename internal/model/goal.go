package model

import (
	"time"
)

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusExpired   = "expired"
)

type GoalKind string

const (
	GoalKindWeeklyHabit   GoalKind = "weekly_habit"
	GoalKindRecurringTask GoalKind = "recurring_task"
	GoalKindTargetAmount  GoalKind = "target_amount"
)

// AllowedDurations lists the finite goal windows in weeks. A nil duration means ongoing.
var AllowedDurations = []int{4, 8, 12}

// GoalType is a tagged variant: Kind selects which target field is meaningful.
// WeeklyHabit carries TargetPerWeek, TargetAmount carries TargetTotal and
// RecurringTask carries neither.
type GoalType struct {
	Kind          GoalKind `db:"type" json:"type"`
	TargetPerWeek *int     `db:"target_per_week" json:"target_per_week,omitempty"`
	TargetTotal   *int     `db:"target_total" json:"target_total,omitempty"`
}

func WeeklyHabit(targetPerWeek int) GoalType {
	return GoalType{Kind: GoalKindWeeklyHabit, TargetPerWeek: &targetPerWeek}
}

func RecurringTask() GoalType {
	return GoalType{Kind: GoalKindRecurringTask}
}

func TargetAmount(targetTotal int) GoalType {
	return GoalType{Kind: GoalKindTargetAmount, TargetTotal: &targetTotal}
}

// IsPeriodic reports whether progress is counted per week and reset at week boundaries.
func (t GoalType) IsPeriodic() bool {
	return t.Kind == GoalKindWeeklyHabit || t.Kind == GoalKindRecurringTask
}

type Goal struct {
	ID      string `db:"id" json:"id"`
	OwnerID string `db:"owner_id" json:"owner_id"`
	Name    string `db:"name" json:"name"`
	Icon    string `db:"icon" json:"icon"`
	GoalType
	DurationWeeks   *int      `db:"duration_weeks" json:"duration_weeks"`
	StartWeekID     string    `db:"start_week_id" json:"start_week_id"`
	CurrentWeekID   string    `db:"current_week_id" json:"current_week_id"`
	CurrentProgress int       `db:"current_progress" json:"current_progress"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

func (g *Goal) IsActive() bool {
	return g.Status == GoalStatusActive
}

// IsTerminal reports whether the goal is COMPLETED or EXPIRED. Terminal goals never
// change progress or status again.
func (g *Goal) IsTerminal() bool {
	return g.Status == GoalStatusCompleted || g.Status == GoalStatusExpired
}

func (g *Goal) IsOngoing() bool {
	return g.DurationWeeks == nil
}
