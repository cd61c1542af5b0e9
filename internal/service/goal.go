package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/templui/duoplan/internal/lifecycle"
	"github.com/templui/duoplan/internal/model"
	"github.com/templui/duoplan/internal/repository"
	"github.com/templui/duoplan/internal/validation"
	"github.com/templui/duoplan/internal/week"
)

var (
	ErrGoalLimitReached         = errors.New("active goal limit reached")
	ErrGoalInactive             = errors.New("goal is no longer active")
	ErrForbiddenPartnerMutation = errors.New("goal belongs to another user")
	ErrForbiddenCrossOwnerLink  = errors.New("tasks can only be linked to your own goals")
)

// GoalService owns the lifecycle of the acting user's goals.
type GoalService struct {
	repo         repository.GoalRepository
	progressRepo repository.GoalProgressRepository
	partnerRepo  repository.PartnerGoalRepository
	linkRepo     repository.TaskLinkRepository
	clock        Clock
}

func NewGoalService(
	repo repository.GoalRepository,
	progressRepo repository.GoalProgressRepository,
	partnerRepo repository.PartnerGoalRepository,
	linkRepo repository.TaskLinkRepository,
	clock Clock,
) *GoalService {
	return &GoalService{
		repo:         repo,
		progressRepo: progressRepo,
		partnerRepo:  partnerRepo,
		linkRepo:     linkRepo,
		clock:        clock,
	}
}

type CreateGoalInput struct {
	Name          string
	Icon          string
	Type          model.GoalType
	DurationWeeks *int
}

// CurrentWeekID is the ISO week of the clock's today.
func (s *GoalService) CurrentWeekID() string {
	return week.Of(s.clock.Today())
}

// Create validates in and stores a new ACTIVE goal starting in the current week.
// Returns ErrGoalLimitReached when the owner already has MaxActiveGoals active goals.
func (s *GoalService) Create(ownerID string, in CreateGoalInput) (*model.Goal, error) {
	var errs validation.Errors
	errs.Add("name", validation.ValidateGoalName(in.Name))
	errs.Add("icon", validation.ValidateIcon(in.Icon))
	errs.Add("type", validation.ValidateGoalType(in.Type))
	errs.Add("duration_weeks", validation.ValidateDuration(in.DurationWeeks))
	err := errs.Err()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	weekID := s.CurrentWeekID()
	goal := &model.Goal{
		ID:              uuid.New().String(),
		OwnerID:         ownerID,
		Name:            validation.NormalizeGoalName(in.Name),
		Icon:            in.Icon,
		GoalType:        in.Type,
		DurationWeeks:   in.DurationWeeks,
		StartWeekID:     weekID,
		CurrentWeekID:   weekID,
		CurrentProgress: 0,
		Status:          model.GoalStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.repo.CreateWithinLimit(goal, lifecycle.MaxActiveGoals)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	if !created {
		return nil, ErrGoalLimitReached
	}

	slog.Info("goal created", "goal_id", goal.ID, "owner_id", ownerID, "type", goal.Kind, "week_id", weekID)
	return goal, nil
}

// Goal returns one of the acting user's goals, or nil when there is no such goal.
func (s *GoalService) Goal(actingUserID, goalID string) (*model.Goal, error) {
	goal, err := s.repo.ByID(goalID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if goal.OwnerID != actingUserID {
		return nil, nil
	}
	return goal, nil
}

// Goals lists every goal of ownerID, whatever its status, in sortBy order.
func (s *GoalService) Goals(ownerID, sortBy string) ([]*model.Goal, error) {
	return s.repo.Goals(ownerID, sortBy)
}

// GoalWithHistory returns the goal and its weekly snapshots, or a nil goal when the
// acting user has no such goal.
func (s *GoalService) GoalWithHistory(actingUserID, goalID string) (*model.Goal, []*model.GoalProgress, error) {
	goal, err := s.Goal(actingUserID, goalID)
	if err != nil || goal == nil {
		return nil, nil, err
	}

	history, err := s.progressRepo.History(goalID)
	if err != nil {
		return nil, nil, err
	}

	return goal, history, nil
}

func (s *GoalService) CountActiveGoals(ownerID string) (int, error) {
	return s.repo.CountActiveGoals(ownerID)
}

// CanCreateGoal reports whether ownerID is below the active goal limit. Create
// enforces the limit on its own; this is for callers that want to ask first.
func (s *GoalService) CanCreateGoal(ownerID string) (bool, error) {
	goals, err := s.repo.ActiveGoals(ownerID)
	if err != nil {
		return false, err
	}
	return lifecycle.CanCreate(ownerID, goals), nil
}

// ownedGoal loads a goal for a mutation by actingUserID. Goals owned by someone else,
// including mirrored partner goals, are rejected with ErrForbiddenPartnerMutation.
func (s *GoalService) ownedGoal(actingUserID, goalID string) (*model.Goal, error) {
	goal, err := s.repo.ByID(goalID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		if s.isPartnerGoal(goalID) {
			return nil, ErrForbiddenPartnerMutation
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if goal.OwnerID != actingUserID {
		return nil, ErrForbiddenPartnerMutation
	}

	return goal, nil
}

func (s *GoalService) isPartnerGoal(goalID string) bool {
	_, err := s.partnerRepo.ByID(goalID)
	if err != nil && !errors.Is(err, repository.ErrPartnerGoalNotFound) {
		slog.Warn("failed to look up partner goal", "error", err, "goal_id", goalID)
	}
	return err == nil
}

// Update changes the name and/or icon. Nil fields are left as they are.
func (s *GoalService) Update(actingUserID, goalID string, name, icon *string) (*model.Goal, error) {
	goal, err := s.ownedGoal(actingUserID, goalID)
	if err != nil {
		return nil, err
	}

	if goal.IsTerminal() {
		return nil, ErrGoalInactive
	}

	var errs validation.Errors
	if name != nil {
		errs.Add("name", validation.ValidateGoalName(*name))
	}
	if icon != nil {
		errs.Add("icon", validation.ValidateIcon(*icon))
	}
	err = errs.Err()
	if err != nil {
		return nil, err
	}

	if name != nil {
		goal.Name = validation.NormalizeGoalName(*name)
	}
	if icon != nil {
		goal.Icon = *icon
	}

	err = s.repo.UpdateDetails(goal)
	if err != nil {
		return nil, err
	}

	return s.repo.ByID(goalID)
}

// Delete removes the goal with its history. Linked tasks keep their (now dangling)
// goal reference.
func (s *GoalService) Delete(actingUserID, goalID string) (bool, error) {
	_, err := s.ownedGoal(actingUserID, goalID)
	if err != nil {
		return false, err
	}

	links, err := s.linkRepo.ByGoalID(goalID)
	if err != nil {
		return false, err
	}

	err = s.repo.Delete(goalID)
	if err != nil {
		return false, err
	}

	slog.Info("goal deleted", "goal_id", goalID, "owner_id", actingUserID, "linked_tasks", len(links))
	return true, nil
}
