package lifecycle

import (
	"fmt"

	"github.com/templui/duoplan/internal/model"
	"github.com/templui/duoplan/internal/week"
)

// Rollover is one goal crossing into a new week.
type Rollover struct {
	Goal           *model.Goal         // copy of the goal after the reset
	PreviousWeekID string              // week the goal was counting before the reset
	Archive        *model.GoalProgress // nil when the outgoing week is already archived
}

type ResetResult struct {
	Rollovers []Rollover
}

func (r *ResetResult) UpdatedGoals() []*model.Goal {
	goals := make([]*model.Goal, 0, len(r.Rollovers))
	for _, ro := range r.Rollovers {
		goals = append(goals, ro.Goal)
	}
	return goals
}

func (r *ResetResult) NewProgress() []*model.GoalProgress {
	var records []*model.GoalProgress
	for _, ro := range r.Rollovers {
		if ro.Archive != nil {
			records = append(records, ro.Archive)
		}
	}
	return records
}

// ProcessWeeklyReset archives the outgoing week and zeroes the counter of every active
// periodic goal that is still counting an earlier week than currentWeekID.
//
// Goals already on currentWeekID are left alone, so a second pass in the same week is
// a no-op. archived holds the (goal, week) snapshots that already exist; no record is
// produced for those. When several week boundaries were missed only the last counted
// week is archived, with the counter as it stood; skipped weeks get no rows.
//
// The input goals are not modified.
func ProcessWeeklyReset(goals []*model.Goal, currentWeekID string, archived map[model.ProgressKey]bool) (*ResetResult, error) {
	err := week.Validate(currentWeekID)
	if err != nil {
		return nil, err
	}

	seen := make(map[model.ProgressKey]bool, len(archived))
	for k, v := range archived {
		seen[k] = v
	}

	result := &ResetResult{}
	for _, g := range goals {
		if !g.IsActive() || !g.IsPeriodic() {
			continue
		}
		if g.CurrentWeekID == currentWeekID {
			continue
		}

		cmp, err := week.Compare(g.CurrentWeekID, currentWeekID)
		if err != nil {
			return nil, fmt.Errorf("goal %s: %w", g.ID, err)
		}
		// Never roll a goal backwards if the clock went back.
		if cmp > 0 {
			continue
		}

		ro := Rollover{PreviousWeekID: g.CurrentWeekID}

		key := model.ProgressKey{GoalID: g.ID, WeekID: g.CurrentWeekID}
		if !seen[key] {
			ro.Archive = &model.GoalProgress{
				GoalID:        g.ID,
				WeekID:        g.CurrentWeekID,
				ProgressValue: g.CurrentProgress,
				TargetValue:   Target(g.GoalType),
			}
			seen[key] = true
		}

		updated := *g
		updated.CurrentProgress = 0
		updated.CurrentWeekID = currentWeekID
		ro.Goal = &updated

		result.Rollovers = append(result.Rollovers, ro)
	}

	return result, nil
}
