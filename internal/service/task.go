package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/templui/duoplan/internal/lifecycle"
	"github.com/templui/duoplan/internal/model"
	"github.com/templui/duoplan/internal/repository"
)

// OnTaskCompleted counts one completed task toward an active goal. The goal is first
// brought into the current week, so a completion never lands in a week that has
// already ended. A target-amount goal that reaches its target completes immediately.
//
// Completion is one-way: there is no matching "uncompleted" signal.
func (s *GoalService) OnTaskCompleted(actingUserID, goalID string) (*model.Goal, error) {
	goal, err := s.ownedGoal(actingUserID, goalID)
	if err != nil {
		return nil, err
	}
	if !goal.IsActive() {
		return nil, ErrGoalInactive
	}

	report, err := s.maintain([]*model.Goal{goal}, s.CurrentWeekID())
	if err != nil {
		return nil, err
	}
	if len(report.Goals) == 0 || !report.Goals[0].IsActive() {
		return nil, s.notActive(goalID)
	}

	incremented, err := s.repo.IncrementProgress(goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to record progress: %w", err)
	}
	if !incremented {
		return nil, s.notActive(goalID)
	}

	goal, err = s.repo.ByID(goalID)
	if err != nil {
		return nil, err
	}

	done, ok := lifecycle.CompleteIfTargetMet(goal)
	if !ok {
		return goal, nil
	}

	changed, err := s.repo.SetStatus(goalID, done.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to complete goal: %w", err)
	}
	if changed {
		slog.Info("goal completed", "goal_id", goalID, "owner_id", actingUserID, "progress", done.CurrentProgress)
	}

	return s.repo.ByID(goalID)
}

// notActive tells a goal deleted mid-update (ErrGoalNotFound) apart from one that
// was closed (ErrGoalInactive).
func (s *GoalService) notActive(goalID string) error {
	_, err := s.repo.ByID(goalID)
	if err == nil {
		return ErrGoalInactive
	}
	return err
}

// OnTaskCompletedForTask resolves the task's goal link and records the completion.
// A task with no link, or whose goal has been deleted, counts toward nothing and
// returns a nil goal.
func (s *GoalService) OnTaskCompletedForTask(actingUserID, taskID string) (*model.Goal, error) {
	goal, err := s.LinkedGoal(actingUserID, taskID)
	if err != nil || goal == nil {
		return nil, err
	}
	return s.OnTaskCompleted(actingUserID, goal.ID)
}

// OnTaskDeleted does not touch progress. Progress already counted for a task stays
// counted after the task is deleted.
func (s *GoalService) OnTaskDeleted(goalID string) {
	slog.Debug("task deleted, goal progress unchanged", "goal_id", goalID)
}

// LinkTask makes taskID count toward goalID. Only the acting user's own goals can be
// linked, and only tasks that are unlinked or already linked by the acting user;
// anything else is rejected with ErrForbiddenCrossOwnerLink.
func (s *GoalService) LinkTask(actingUserID, taskID, goalID string) error {
	goal, err := s.repo.ByID(goalID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		if s.isPartnerGoal(goalID) {
			return ErrForbiddenCrossOwnerLink
		}
		return err
	}
	if err != nil {
		return err
	}

	if goal.OwnerID != actingUserID {
		return ErrForbiddenCrossOwnerLink
	}

	err = s.linkRepo.Link(&model.TaskLink{
		TaskID:   taskID,
		GoalID:   goalID,
		OwnerID:  actingUserID,
		LinkedAt: time.Now().UTC(),
	})
	if errors.Is(err, repository.ErrTaskLinkOwned) {
		return ErrForbiddenCrossOwnerLink
	}
	return err
}

// UnlinkTask removes the task's link. Unlinking a task with no link succeeds; a link
// held by another user is rejected with ErrForbiddenCrossOwnerLink.
func (s *GoalService) UnlinkTask(actingUserID, taskID string) error {
	link, err := s.linkRepo.ByTaskID(taskID)
	if errors.Is(err, repository.ErrTaskLinkNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if link.OwnerID != actingUserID {
		return ErrForbiddenCrossOwnerLink
	}

	return s.linkRepo.Unlink(taskID)
}

// LinkedGoal returns the goal a task counts toward, or nil when the task has no link
// or the linked goal no longer exists.
func (s *GoalService) LinkedGoal(actingUserID, taskID string) (*model.Goal, error) {
	link, err := s.linkRepo.ByTaskID(taskID)
	if errors.Is(err, repository.ErrTaskLinkNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if link.OwnerID != actingUserID {
		return nil, nil
	}

	goal, err := s.Goal(actingUserID, link.GoalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		slog.Debug("task links to a deleted goal", "task_id", taskID, "goal_id", link.GoalID)
	}
	return goal, nil
}

// DeleteTask drops the task's link bookkeeping. The goal's progress is unchanged.
func (s *GoalService) DeleteTask(actingUserID, taskID string) error {
	link, err := s.linkRepo.ByTaskID(taskID)
	if errors.Is(err, repository.ErrTaskLinkNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if link.OwnerID != actingUserID {
		return ErrForbiddenCrossOwnerLink
	}

	err = s.linkRepo.Unlink(taskID)
	if err != nil {
		return err
	}

	s.OnTaskDeleted(link.GoalID)
	return nil
}
