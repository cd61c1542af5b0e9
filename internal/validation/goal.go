package validation

import (
	"fmt"
	"slices"

	"github.com/templui/duoplan/internal/model"
)

// ValidateGoalType enforces the target invariants of each goal kind.
func ValidateGoalType(t model.GoalType) error {
	switch t.Kind {
	case model.GoalKindWeeklyHabit:
		if t.TargetPerWeek == nil {
			return &Error{Field: "target", Message: "weekly habit needs a target per week"}
		}
		if *t.TargetPerWeek < 1 {
			return &Error{Field: "target", Message: "target per week must be at least 1"}
		}
		if t.TargetTotal != nil {
			return &Error{Field: "target", Message: "weekly habit cannot have a total target"}
		}
	case model.GoalKindTargetAmount:
		if t.TargetTotal == nil {
			return &Error{Field: "target", Message: "target amount needs a total target"}
		}
		if *t.TargetTotal < 1 {
			return &Error{Field: "target", Message: "total target must be at least 1"}
		}
		if t.TargetPerWeek != nil {
			return &Error{Field: "target", Message: "target amount cannot have a weekly target"}
		}
	case model.GoalKindRecurringTask:
		if t.TargetPerWeek != nil || t.TargetTotal != nil {
			return &Error{Field: "target", Message: "recurring task takes no target"}
		}
	default:
		return &Error{Field: "type", Message: fmt.Sprintf("unknown goal type %q", t.Kind)}
	}

	return nil
}

// ValidateDuration accepts nil (ongoing) or one of model.AllowedDurations.
func ValidateDuration(weeks *int) error {
	if weeks == nil {
		return nil
	}
	if !slices.Contains(model.AllowedDurations, *weeks) {
		return &Error{Field: "duration_weeks", Message: fmt.Sprintf("duration must be one of %v weeks or empty", model.AllowedDurations)}
	}
	return nil
}
