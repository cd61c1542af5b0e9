package lifecycle

import (
	"fmt"

	"github.com/templui/duoplan/internal/model"
	"github.com/templui/duoplan/internal/week"
)

// EndWeekID returns the last week inside a finite goal's window.
func EndWeekID(g *model.Goal) (string, error) {
	if g.DurationWeeks == nil {
		return "", fmt.Errorf("goal %s has no duration", g.ID)
	}
	return week.Offset(g.StartWeekID, *g.DurationWeeks-1)
}

// CompleteIfTargetMet returns a completed copy of an active target-amount goal that
// has reached its lifetime target. Periodic goals count toward a weekly target and are
// only judged when their window closes.
func CompleteIfTargetMet(g *model.Goal) (*model.Goal, bool) {
	if !g.IsActive() || g.Kind != model.GoalKindTargetAmount {
		return nil, false
	}
	if !HasMetTarget(g.CurrentProgress, Target(g.GoalType)) {
		return nil, false
	}

	done := *g
	done.Status = model.GoalStatusCompleted
	return &done, true
}

// Evaluate returns copies of the active goals whose status changes at currentWeekID.
// Terminal goals are skipped.
//
// A target-amount goal that met its target completes regardless of its window; this is
// checked first, so a goal that reaches the target as its window closes is COMPLETED.
// A goal with a finite duration whose window has elapsed becomes COMPLETED when it met
// its target and EXPIRED otherwise. Periodic goals are judged by the final window week:
// the live counter when the goal is still on that week, otherwise its archived
// snapshot in history.
func Evaluate(goals []*model.Goal, currentWeekID string, history map[model.ProgressKey]*model.GoalProgress) ([]*model.Goal, error) {
	err := week.Validate(currentWeekID)
	if err != nil {
		return nil, err
	}

	var changed []*model.Goal
	for _, g := range goals {
		if !g.IsActive() {
			continue
		}

		done, ok := CompleteIfTargetMet(g)
		if ok {
			changed = append(changed, done)
			continue
		}

		if g.IsOngoing() {
			continue
		}

		end, err := EndWeekID(g)
		if err != nil {
			return nil, fmt.Errorf("goal %s: %w", g.ID, err)
		}
		cmp, err := week.Compare(currentWeekID, end)
		if err != nil {
			return nil, fmt.Errorf("goal %s: %w", g.ID, err)
		}
		if cmp <= 0 {
			continue
		}

		closed := *g
		if metAtWindowClose(g, end, history) {
			closed.Status = model.GoalStatusCompleted
		} else {
			closed.Status = model.GoalStatusExpired
		}
		changed = append(changed, &closed)
	}

	return changed, nil
}

func metAtWindowClose(g *model.Goal, endWeekID string, history map[model.ProgressKey]*model.GoalProgress) bool {
	if !g.IsPeriodic() {
		return HasMetTarget(g.CurrentProgress, Target(g.GoalType))
	}

	if g.CurrentWeekID == endWeekID {
		return HasMetTarget(g.CurrentProgress, Target(g.GoalType))
	}

	snapshot, ok := history[model.ProgressKey{GoalID: g.ID, WeekID: endWeekID}]
	if !ok {
		return false
	}
	return HasMetTarget(snapshot.ProgressValue, snapshot.TargetValue)
}
