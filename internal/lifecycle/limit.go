package lifecycle

import (
	"github.com/templui/duoplan/internal/model"
)

// MaxActiveGoals caps how many ACTIVE goals one owner may have. It is checked when a
// goal is created; goals that later leave ACTIVE free a slot.
const MaxActiveGoals = 10

// ActiveCount counts ownerID's ACTIVE goals in goals.
func ActiveCount(ownerID string, goals []*model.Goal) int {
	count := 0
	for _, g := range goals {
		if g.OwnerID == ownerID && g.IsActive() {
			count++
		}
	}
	return count
}

// CanCreate reports whether ownerID may create another goal given the goals it
// already has.
func CanCreate(ownerID string, existing []*model.Goal) bool {
	return ActiveCount(ownerID, existing) < MaxActiveGoals
}
