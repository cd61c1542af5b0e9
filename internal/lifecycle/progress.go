// Package lifecycle holds the pure rules that move goals through their lifecycle:
// progress targets, weekly resets, expiration and the active-goal cap. Nothing here
// touches storage; callers persist the returned state.
package lifecycle

import (
	"fmt"

	"github.com/templui/duoplan/internal/model"
)

// Target returns the progress a goal must reach. RecurringTask goals are binary, so
// their target is fixed at 1.
func Target(t model.GoalType) int {
	switch t.Kind {
	case model.GoalKindWeeklyHabit:
		if t.TargetPerWeek == nil {
			return 0
		}
		return *t.TargetPerWeek
	case model.GoalKindRecurringTask:
		return 1
	case model.GoalKindTargetAmount:
		if t.TargetTotal == nil {
			return 0
		}
		return *t.TargetTotal
	default:
		panic(fmt.Sprintf("lifecycle: unknown goal kind %q", t.Kind))
	}
}

// Fraction is progress/target, not clamped at 1.
func Fraction(progress, target int) float64 {
	if target <= 0 {
		return 0
	}
	return float64(progress) / float64(target)
}

// HasMetTarget reports whether progress has reached target.
func HasMetTarget(progress, target int) bool {
	return progress >= target
}
