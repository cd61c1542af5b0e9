package model

import (
	"time"
)

// PartnerGoal mirrors a goal owned by the user's partner. It is read-only locally and
// only changes through sync merges.
type PartnerGoal struct {
	Goal
	SyncedAt  time.Time  `db:"synced_at" json:"synced_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
}
