package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/duoplan/internal/model"
)

const (
	GoalSortRecent   = "recent"
	GoalSortProgress = "progress"
	GoalSortName     = "name"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
)

const goalColumns = `id, owner_id, name, icon, type, target_per_week, target_total, duration_weeks,
	start_week_id, current_week_id, current_progress, status, created_at, updated_at`

type GoalRepository interface {
	Create(goal *model.Goal) error
	CreateWithinLimit(goal *model.Goal, limit int) (bool, error)
	ByID(goalID string) (*model.Goal, error)
	Goals(ownerID, sortBy string) ([]*model.Goal, error)
	ActiveGoals(ownerID string) ([]*model.Goal, error)
	CountActiveGoals(ownerID string) (int, error)
	UpdateDetails(goal *model.Goal) error
	IncrementProgress(goalID string) (bool, error)
	SetStatus(goalID, status string) (bool, error)
	ApplyWeeklyReset(goal *model.Goal, previousWeekID string, archive *model.GoalProgress) (bool, error)
	Delete(goalID string) error
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func goalArgs(goal *model.Goal) []any {
	return []any{
		goal.ID,
		goal.OwnerID,
		goal.Name,
		goal.Icon,
		goal.Kind,
		goal.TargetPerWeek,
		goal.TargetTotal,
		goal.DurationWeeks,
		goal.StartWeekID,
		goal.CurrentWeekID,
		goal.CurrentProgress,
		goal.Status,
		goal.CreatedAt,
		goal.UpdatedAt,
	}
}

func (r *goalRepository) Create(goal *model.Goal) error {
	query := `INSERT INTO goals (` + goalColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(query, goalArgs(goal)...)
	return err
}

// CreateWithinLimit inserts the goal only while its owner has fewer than limit
// active goals. The count and the insert are one statement, so concurrent creates
// cannot both pass the check. Returns false when the limit was reached.
func (r *goalRepository) CreateWithinLimit(goal *model.Goal, limit int) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// Postgres runs concurrent statements under READ COMMITTED; serialize creates per owner.
	if r.db.DriverName() == "pgx" {
		_, err = tx.Exec(`SELECT pg_advisory_xact_lock(hashtext($1))`, goal.OwnerID)
		if err != nil {
			return false, fmt.Errorf("failed to lock owner: %w", err)
		}
	}

	query := `INSERT INTO goals (` + goalColumns + `)
	          SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
	          WHERE (SELECT COUNT(*) FROM goals WHERE owner_id = $15 AND status = $16) < $17`

	args := append(goalArgs(goal), goal.OwnerID, model.GoalStatusActive, limit)
	result, err := tx.Exec(query, args...)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	return true, tx.Commit()
}

func (r *goalRepository) ByID(goalID string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1`

	err := r.db.Get(goal, query, goalID)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return goal, nil
}

func (r *goalRepository) Goals(ownerID, sortBy string) ([]*model.Goal, error) {
	var goals []*model.Goal

	var orderBy string
	switch sortBy {
	case GoalSortProgress:
		orderBy = "ORDER BY current_progress DESC, updated_at DESC"
	case GoalSortName:
		orderBy = "ORDER BY LOWER(name) ASC"
	default: // GoalSortRecent or empty
		orderBy = "ORDER BY updated_at DESC"
	}

	query := `SELECT ` + goalColumns + ` FROM goals WHERE owner_id = $1 ` + orderBy

	err := r.db.Select(&goals, query, ownerID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) ActiveGoals(ownerID string) ([]*model.Goal, error) {
	var goals []*model.Goal
	query := `SELECT ` + goalColumns + ` FROM goals WHERE owner_id = $1 AND status = $2 ORDER BY created_at ASC`

	err := r.db.Select(&goals, query, ownerID, model.GoalStatusActive)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) CountActiveGoals(ownerID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM goals WHERE owner_id = $1 AND status = $2`
	err := r.db.QueryRow(query, ownerID, model.GoalStatusActive).Scan(&count)
	return count, err
}

// UpdateDetails writes the user-editable fields. Type, duration and start week are
// fixed at creation and never written here.
func (r *goalRepository) UpdateDetails(goal *model.Goal) error {
	query := `UPDATE goals
	          SET name = $1, icon = $2, updated_at = $3
	          WHERE id = $4`

	result, err := r.db.Exec(query, goal.Name, goal.Icon, time.Now().UTC(), goal.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}

// IncrementProgress adds one to an active goal's counter. Returns false when the goal
// is missing or no longer active.
func (r *goalRepository) IncrementProgress(goalID string) (bool, error) {
	query := `UPDATE goals
	          SET current_progress = current_progress + 1, updated_at = $1
	          WHERE id = $2 AND status = $3`

	result, err := r.db.Exec(query, time.Now().UTC(), goalID, model.GoalStatusActive)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// SetStatus moves an active goal to status. Terminal goals are never changed; returns
// false when the goal was not active.
func (r *goalRepository) SetStatus(goalID, status string) (bool, error) {
	query := `UPDATE goals
	          SET status = $1, updated_at = $2
	          WHERE id = $3 AND status = $4`

	result, err := r.db.Exec(query, status, time.Now().UTC(), goalID, model.GoalStatusActive)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// ApplyWeeklyReset archives the outgoing week (when archive is non-nil) and moves the
// goal to goal.CurrentWeekID with a zero counter, in one transaction.
//
// The snapshot insert ignores an existing (goal_id, week_id) row and the goal update
// only applies while the goal is still on previousWeekID, so repeated or concurrent
// runs neither double-archive nor double-reset. Returns false when another run got
// there first.
func (r *goalRepository) ApplyWeeklyReset(goal *model.Goal, previousWeekID string, archive *model.GoalProgress) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	if archive != nil {
		if archive.ID == "" {
			archive.ID = uuid.New().String()
		}
		archive.CreatedAt = now

		query := `INSERT INTO goal_progress (id, goal_id, week_id, progress_value, target_value, created_at)
		          VALUES ($1, $2, $3, $4, $5, $6)
		          ON CONFLICT (goal_id, week_id) DO NOTHING`

		_, err = tx.Exec(query,
			archive.ID,
			archive.GoalID,
			archive.WeekID,
			archive.ProgressValue,
			archive.TargetValue,
			archive.CreatedAt,
		)
		if err != nil {
			return false, fmt.Errorf("failed to archive week %s: %w", archive.WeekID, err)
		}
	}

	query := `UPDATE goals
	          SET current_progress = $1, current_week_id = $2, updated_at = $3
	          WHERE id = $4 AND current_week_id = $5 AND status = $6`

	result, err := tx.Exec(query,
		goal.CurrentProgress,
		goal.CurrentWeekID,
		now,
		goal.ID,
		previousWeekID,
		model.GoalStatusActive,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	return true, tx.Commit()
}

// Delete removes the goal and, by cascade, its weekly snapshots. Task links are left
// in place.
func (r *goalRepository) Delete(goalID string) error {
	query := `DELETE FROM goals WHERE id = $1`
	result, err := r.db.Exec(query, goalID)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}
