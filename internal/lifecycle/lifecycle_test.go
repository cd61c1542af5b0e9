package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/duoplan/internal/model"
)

func weeks(n int) *int { return &n }

func activeGoal(id string, t model.GoalType, startWeek string) *model.Goal {
	return &model.Goal{
		ID:            id,
		OwnerID:       "alice",
		Name:          id,
		Icon:          "🏃",
		GoalType:      t,
		StartWeekID:   startWeek,
		CurrentWeekID: startWeek,
		Status:        model.GoalStatusActive,
	}
}

func TestTarget(t *testing.T) {
	assert.Equal(t, 3, Target(model.WeeklyHabit(3)))
	assert.Equal(t, 1, Target(model.RecurringTask()))
	assert.Equal(t, 50, Target(model.TargetAmount(50)))
}

func TestFractionIsNotClamped(t *testing.T) {
	assert.InDelta(t, 0.5, Fraction(1, 2), 1e-9)
	assert.InDelta(t, 1.5, Fraction(3, 2), 1e-9)
	assert.Equal(t, 0.0, Fraction(3, 0))
}

func TestHasMetTarget(t *testing.T) {
	assert.False(t, HasMetTarget(2, 3))
	assert.True(t, HasMetTarget(3, 3))
	assert.True(t, HasMetTarget(4, 3))
}

func TestProcessWeeklyReset_ArchivesOutgoingWeek(t *testing.T) {
	g := activeGoal("habit", model.WeeklyHabit(3), "2026-W01")
	g.CurrentProgress = 2

	res, err := ProcessWeeklyReset([]*model.Goal{g}, "2026-W02", nil)
	require.NoError(t, err)

	records := res.NewProgress()
	require.Len(t, records, 1)
	assert.Equal(t, "habit", records[0].GoalID)
	assert.Equal(t, "2026-W01", records[0].WeekID)
	assert.Equal(t, 2, records[0].ProgressValue)
	assert.Equal(t, 3, records[0].TargetValue)

	updated := res.UpdatedGoals()
	require.Len(t, updated, 1)
	assert.Equal(t, 0, updated[0].CurrentProgress)
	assert.Equal(t, "2026-W02", updated[0].CurrentWeekID)
	assert.Equal(t, "2026-W01", res.Rollovers[0].PreviousWeekID)

	// input is untouched
	assert.Equal(t, 2, g.CurrentProgress)
	assert.Equal(t, "2026-W01", g.CurrentWeekID)
}

func TestProcessWeeklyReset_IsIdempotentWithinAWeek(t *testing.T) {
	g := activeGoal("habit", model.WeeklyHabit(3), "2026-W01")
	g.CurrentProgress = 2

	first, err := ProcessWeeklyReset([]*model.Goal{g}, "2026-W02", nil)
	require.NoError(t, err)

	second, err := ProcessWeeklyReset(first.UpdatedGoals(), "2026-W02", nil)
	require.NoError(t, err)
	assert.Empty(t, second.Rollovers)
}

func TestProcessWeeklyReset_SkipsExistingSnapshot(t *testing.T) {
	g := activeGoal("task", model.RecurringTask(), "2026-W01")
	g.CurrentProgress = 1

	archived := map[model.ProgressKey]bool{{GoalID: "task", WeekID: "2026-W01"}: true}
	res, err := ProcessWeeklyReset([]*model.Goal{g}, "2026-W02", archived)
	require.NoError(t, err)

	assert.Empty(t, res.NewProgress())
	require.Len(t, res.UpdatedGoals(), 1)
	assert.Equal(t, 0, res.UpdatedGoals()[0].CurrentProgress)
}

func TestProcessWeeklyReset_MissedWeeksArchiveOnlyLastCountedWeek(t *testing.T) {
	g := activeGoal("habit", model.WeeklyHabit(5), "2026-W01")
	g.CurrentProgress = 4

	res, err := ProcessWeeklyReset([]*model.Goal{g}, "2026-W06", nil)
	require.NoError(t, err)

	records := res.NewProgress()
	require.Len(t, records, 1)
	assert.Equal(t, "2026-W01", records[0].WeekID)
	assert.Equal(t, 4, records[0].ProgressValue)
	assert.Equal(t, "2026-W06", res.UpdatedGoals()[0].CurrentWeekID)
}

func TestProcessWeeklyReset_IgnoresNonParticipants(t *testing.T) {
	amount := activeGoal("amount", model.TargetAmount(50), "2026-W01")
	amount.CurrentProgress = 10

	done := activeGoal("done", model.WeeklyHabit(2), "2026-W01")
	done.Status = model.GoalStatusCompleted

	ahead := activeGoal("ahead", model.WeeklyHabit(2), "2026-W03")

	res, err := ProcessWeeklyReset([]*model.Goal{amount, done, ahead}, "2026-W02", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Rollovers)
}

func TestProcessWeeklyReset_RejectsInvalidWeek(t *testing.T) {
	_, err := ProcessWeeklyReset(nil, "2026-W9", nil)
	assert.Error(t, err)
}

func TestEvaluate_ExpiresUnmetGoalAfterWindow(t *testing.T) {
	g := activeGoal("amount", model.TargetAmount(50), "2026-W01")
	g.DurationWeeks = weeks(4)
	g.CurrentProgress = 20

	end, err := EndWeekID(g)
	require.NoError(t, err)
	assert.Equal(t, "2026-W04", end)

	changed, err := Evaluate([]*model.Goal{g}, "2026-W04", nil)
	require.NoError(t, err)
	assert.Empty(t, changed, "window still open in its last week")

	changed, err = Evaluate([]*model.Goal{g}, "2026-W05", nil)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, model.GoalStatusExpired, changed[0].Status)
	assert.Equal(t, model.GoalStatusActive, g.Status)
}

func TestEvaluate_TargetMetWinsOverExpiry(t *testing.T) {
	g := activeGoal("amount", model.TargetAmount(50), "2026-W01")
	g.DurationWeeks = weeks(4)
	g.CurrentProgress = 50

	changed, err := Evaluate([]*model.Goal{g}, "2026-W05", nil)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, model.GoalStatusCompleted, changed[0].Status)
}

func TestEvaluate_OngoingGoalsNeverExpire(t *testing.T) {
	g := activeGoal("habit", model.WeeklyHabit(3), "2026-W01")

	changed, err := Evaluate([]*model.Goal{g}, "2030-W01", nil)
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestEvaluate_TerminalGoalsAreUntouched(t *testing.T) {
	g := activeGoal("amount", model.TargetAmount(5), "2026-W01")
	g.DurationWeeks = weeks(4)
	g.Status = model.GoalStatusExpired
	g.CurrentProgress = 5

	changed, err := Evaluate([]*model.Goal{g}, "2026-W10", nil)
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestEvaluate_PeriodicGoalJudgedByFinalWindowWeek(t *testing.T) {
	met := activeGoal("met", model.WeeklyHabit(3), "2026-W01")
	met.DurationWeeks = weeks(4)
	met.CurrentWeekID = "2026-W05"

	missed := activeGoal("missed", model.WeeklyHabit(3), "2026-W01")
	missed.DurationWeeks = weeks(4)
	missed.CurrentWeekID = "2026-W05"

	history := map[model.ProgressKey]*model.GoalProgress{
		{GoalID: "met", WeekID: "2026-W04"}:    {GoalID: "met", WeekID: "2026-W04", ProgressValue: 3, TargetValue: 3},
		{GoalID: "missed", WeekID: "2026-W04"}: {GoalID: "missed", WeekID: "2026-W04", ProgressValue: 1, TargetValue: 3},
	}

	changed, err := Evaluate([]*model.Goal{met, missed}, "2026-W05", history)
	require.NoError(t, err)
	require.Len(t, changed, 2)
	assert.Equal(t, model.GoalStatusCompleted, changed[0].Status)
	assert.Equal(t, model.GoalStatusExpired, changed[1].Status)
}

func TestEvaluate_PeriodicGoalDoesNotCompleteEarly(t *testing.T) {
	g := activeGoal("habit", model.WeeklyHabit(2), "2026-W01")
	g.DurationWeeks = weeks(8)
	g.CurrentProgress = 2

	changed, err := Evaluate([]*model.Goal{g}, "2026-W01", nil)
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestCompleteIfTargetMet(t *testing.T) {
	g := activeGoal("amount", model.TargetAmount(50), "2026-W01")
	g.CurrentProgress = 49
	_, ok := CompleteIfTargetMet(g)
	assert.False(t, ok)

	g.CurrentProgress = 50
	done, ok := CompleteIfTargetMet(g)
	require.True(t, ok)
	assert.Equal(t, model.GoalStatusCompleted, done.Status)
}

func TestCanCreate(t *testing.T) {
	var goals []*model.Goal
	for i := 0; i < 9; i++ {
		goals = append(goals, activeGoal("g", model.RecurringTask(), "2026-W01"))
	}
	assert.True(t, CanCreate("alice", goals))

	goals = append(goals, activeGoal("g10", model.RecurringTask(), "2026-W01"))
	assert.False(t, CanCreate("alice", goals))
	assert.True(t, CanCreate("bob", goals))

	goals[0].Status = model.GoalStatusExpired
	assert.True(t, CanCreate("alice", goals))
}
