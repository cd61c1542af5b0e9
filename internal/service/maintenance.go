package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/templui/duoplan/internal/lifecycle"
	"github.com/templui/duoplan/internal/model"
	"github.com/templui/duoplan/internal/repository"
	"github.com/templui/duoplan/internal/validation"
	"github.com/templui/duoplan/internal/week"
)

type MaintenanceReport struct {
	WeekID    string        `json:"week_id"`
	Reset     int           `json:"reset"`
	Archived  int           `json:"archived"`
	Completed int           `json:"completed"`
	Expired   int           `json:"expired"`
	Goals     []*model.Goal `json:"-"`
}

// RunWeeklyMaintenance rolls the owner's active periodic goals into currentWeekID and
// then closes goals whose window has elapsed. Running it again in the same week
// changes nothing.
func (s *GoalService) RunWeeklyMaintenance(ownerID, currentWeekID string) (*MaintenanceReport, error) {
	err := week.Validate(currentWeekID)
	if err != nil {
		return nil, &validation.Error{Field: "week_id", Message: err.Error()}
	}

	goals, err := s.repo.ActiveGoals(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active goals: %w", err)
	}

	report, err := s.maintain(goals, currentWeekID)
	if err != nil {
		return nil, err
	}

	slog.Info("weekly maintenance finished",
		"owner_id", ownerID,
		"week_id", currentWeekID,
		"reset", report.Reset,
		"archived", report.Archived,
		"completed", report.Completed,
		"expired", report.Expired,
	)
	return report, nil
}

// RunWeeklyMaintenanceNow runs maintenance for the clock's current week.
func (s *GoalService) RunWeeklyMaintenanceNow(ownerID string) (*MaintenanceReport, error) {
	return s.RunWeeklyMaintenance(ownerID, s.CurrentWeekID())
}

func (s *GoalService) maintain(goals []*model.Goal, currentWeekID string) (*MaintenanceReport, error) {
	report := &MaintenanceReport{WeekID: currentWeekID}

	ids := make([]string, 0, len(goals))
	for _, g := range goals {
		ids = append(ids, g.ID)
	}

	records, err := s.progressRepo.ForGoals(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load goal history: %w", err)
	}

	archived := make(map[model.ProgressKey]bool, len(records))
	history := make(map[model.ProgressKey]*model.GoalProgress, len(records))
	for _, p := range records {
		archived[p.Key()] = true
		history[p.Key()] = p
	}

	reset, err := lifecycle.ProcessWeeklyReset(goals, currentWeekID, archived)
	if err != nil {
		return nil, err
	}

	current := make(map[string]*model.Goal, len(goals))
	for _, g := range goals {
		current[g.ID] = g
	}

	for _, ro := range reset.Rollovers {
		applied, err := s.repo.ApplyWeeklyReset(ro.Goal, ro.PreviousWeekID, ro.Archive)
		if err != nil {
			return nil, fmt.Errorf("failed to reset goal %s: %w", ro.Goal.ID, err)
		}

		if !applied {
			// Another run moved this goal first; continue from what it stored.
			fresh, err := s.reload(ro.Goal.ID, history)
			if err != nil {
				return nil, err
			}
			if fresh == nil {
				delete(current, ro.Goal.ID)
			} else {
				current[ro.Goal.ID] = fresh
			}
			continue
		}

		report.Reset++
		current[ro.Goal.ID] = ro.Goal
		if ro.Archive != nil {
			report.Archived++
			history[ro.Archive.Key()] = ro.Archive
		}
	}

	ordered := make([]*model.Goal, 0, len(current))
	for _, g := range goals {
		if c, ok := current[g.ID]; ok {
			ordered = append(ordered, c)
		}
	}

	changed, err := lifecycle.Evaluate(ordered, currentWeekID, history)
	if err != nil {
		return nil, err
	}

	for _, c := range changed {
		ok, err := s.repo.SetStatus(c.ID, c.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to close goal %s: %w", c.ID, err)
		}
		if !ok {
			continue
		}

		current[c.ID] = c
		switch c.Status {
		case model.GoalStatusCompleted:
			report.Completed++
		case model.GoalStatusExpired:
			report.Expired++
		}
		slog.Info("goal closed", "goal_id", c.ID, "status", c.Status, "week_id", currentWeekID)
	}

	for _, g := range goals {
		if c, ok := current[g.ID]; ok {
			report.Goals = append(report.Goals, c)
		}
	}

	return report, nil
}

// reload fetches a goal and its snapshots after a concurrent change. Returns nil when
// the goal has been deleted meanwhile.
func (s *GoalService) reload(goalID string, history map[model.ProgressKey]*model.GoalProgress) (*model.Goal, error) {
	goal, err := s.repo.ByID(goalID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	records, err := s.progressRepo.History(goalID)
	if err != nil {
		return nil, err
	}
	for _, p := range records {
		history[p.Key()] = p
	}

	return goal, nil
}
