package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/duoplan/internal/model"
)

var (
	ErrTaskLinkNotFound = errors.New("task link not found")
	ErrTaskLinkOwned    = errors.New("task is linked by another user")
)

// TaskLinkRepository is the task subsystem's record of which goal each task counts
// toward. Links are never cascaded from goals.
type TaskLinkRepository interface {
	Link(link *model.TaskLink) error
	Unlink(taskID string) error
	ByTaskID(taskID string) (*model.TaskLink, error)
	ByGoalID(goalID string) ([]*model.TaskLink, error)
}

type taskLinkRepository struct {
	db *sqlx.DB
}

func NewTaskLinkRepository(db *sqlx.DB) TaskLinkRepository {
	return &taskLinkRepository{db: db}
}

// Link creates the task's link or moves it to another goal. An existing link held by
// a different owner is left untouched and ErrTaskLinkOwned is returned.
func (r *taskLinkRepository) Link(link *model.TaskLink) error {
	query := `INSERT INTO task_goal_links (task_id, goal_id, owner_id, linked_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (task_id) DO UPDATE SET
	              goal_id = excluded.goal_id,
	              linked_at = excluded.linked_at
	          WHERE task_goal_links.owner_id = excluded.owner_id`

	result, err := r.db.Exec(query, link.TaskID, link.GoalID, link.OwnerID, link.LinkedAt)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTaskLinkOwned
	}

	return nil
}

// Unlink is idempotent: unlinking a task with no link succeeds.
func (r *taskLinkRepository) Unlink(taskID string) error {
	_, err := r.db.Exec(`DELETE FROM task_goal_links WHERE task_id = $1`, taskID)
	return err
}

// ByTaskID returns ErrTaskLinkNotFound when the task has no link.
func (r *taskLinkRepository) ByTaskID(taskID string) (*model.TaskLink, error) {
	link := &model.TaskLink{}
	query := `SELECT task_id, goal_id, owner_id, linked_at FROM task_goal_links WHERE task_id = $1`

	err := r.db.Get(link, query, taskID)
	if err == sql.ErrNoRows {
		return nil, ErrTaskLinkNotFound
	}
	if err != nil {
		return nil, err
	}

	return link, nil
}

// ByGoalID lists the tasks linked to a goal, oldest link first.
func (r *taskLinkRepository) ByGoalID(goalID string) ([]*model.TaskLink, error) {
	var links []*model.TaskLink
	query := `SELECT task_id, goal_id, owner_id, linked_at FROM task_goal_links
	          WHERE goal_id = $1 ORDER BY linked_at ASC`

	err := r.db.Select(&links, query, goalID)
	if err != nil {
		return nil, err
	}

	return links, nil
}
