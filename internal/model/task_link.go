package model

import (
	"time"
)

// TaskLink records which goal a task counts toward. GoalID may point at a goal that
// no longer exists; readers treat that as "no goal".
type TaskLink struct {
	TaskID   string    `db:"task_id" json:"task_id"`
	GoalID   string    `db:"goal_id" json:"goal_id"`
	OwnerID  string    `db:"owner_id" json:"owner_id"`
	LinkedAt time.Time `db:"linked_at" json:"linked_at"`
}
