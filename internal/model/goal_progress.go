package model

import (
	"time"
)

// GoalProgress is an immutable weekly snapshot, unique per (GoalID, WeekID).
type GoalProgress struct {
	ID            string    `db:"id" json:"id"`
	GoalID        string    `db:"goal_id" json:"goal_id"`
	WeekID        string    `db:"week_id" json:"week_id"`
	ProgressValue int       `db:"progress_value" json:"progress_value"`
	TargetValue   int       `db:"target_value" json:"target_value"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ProgressKey identifies the single snapshot a goal may have for a week.
type ProgressKey struct {
	GoalID string
	WeekID string
}

func (p *GoalProgress) Key() ProgressKey {
	return ProgressKey{GoalID: p.GoalID, WeekID: p.WeekID}
}
