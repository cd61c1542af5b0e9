package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/duoplan/internal/model"
)

var (
	ErrPartnerGoalNotFound = errors.New("partner goal not found")
)

type PartnerGoalRepository interface {
	Upsert(goal *model.PartnerGoal) (bool, error)
	Remove(goalID string, removedAt time.Time) (bool, error)
	ByID(goalID string) (*model.PartnerGoal, error)
	Goals(excludeOwnerID string) ([]*model.PartnerGoal, error)
}

type partnerGoalRepository struct {
	db *sqlx.DB
}

func NewPartnerGoalRepository(db *sqlx.DB) PartnerGoalRepository {
	return &partnerGoalRepository{db: db}
}

const partnerGoalColumns = goalColumns + `, synced_at, deleted_at`

// syncedAt returns the stored sync time of a cached row, tombstones included.
func syncedAt(tx *sqlx.Tx, goalID string) (time.Time, bool, error) {
	var at time.Time
	err := tx.Get(&at, `SELECT synced_at FROM partner_goals WHERE id = $1`, goalID)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}

// Upsert stores the remote record unless the cache already holds a version (or a
// removal) with the same or a later SyncedAt. Returns whether the record was applied.
func (r *partnerGoalRepository) Upsert(goal *model.PartnerGoal) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	current, ok, err := syncedAt(tx, goal.ID)
	if err != nil {
		return false, err
	}
	if ok && !goal.SyncedAt.After(current) {
		return false, nil
	}

	query := `INSERT INTO partner_goals (` + partnerGoalColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NULL)
	          ON CONFLICT (id) DO UPDATE SET
	              owner_id = excluded.owner_id,
	              name = excluded.name,
	              icon = excluded.icon,
	              type = excluded.type,
	              target_per_week = excluded.target_per_week,
	              target_total = excluded.target_total,
	              duration_weeks = excluded.duration_weeks,
	              start_week_id = excluded.start_week_id,
	              current_week_id = excluded.current_week_id,
	              current_progress = excluded.current_progress,
	              status = excluded.status,
	              created_at = excluded.created_at,
	              updated_at = excluded.updated_at,
	              synced_at = excluded.synced_at,
	              deleted_at = NULL`

	args := append(goalArgs(&goal.Goal), goal.SyncedAt.UTC())
	_, err = tx.Exec(query, args...)
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// Remove tombstones the cached record so that a stale upsert delivered later cannot
// bring it back. A removal older than the cached version is ignored.
func (r *partnerGoalRepository) Remove(goalID string, removedAt time.Time) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	current, ok, err := syncedAt(tx, goalID)
	if err != nil {
		return false, err
	}
	if ok && !removedAt.After(current) {
		return false, nil
	}

	at := removedAt.UTC()
	if ok {
		query := `UPDATE partner_goals SET synced_at = $1, deleted_at = $1 WHERE id = $2`
		_, err = tx.Exec(query, at, goalID)
	} else {
		// Removal arrived before the record itself: keep a bare tombstone.
		query := `INSERT INTO partner_goals (id, owner_id, name, icon, type, start_week_id, current_week_id,
		              status, created_at, updated_at, synced_at, deleted_at)
		          VALUES ($1, '', '', '', '', '', '', '', $2, $2, $2, $2)`
		_, err = tx.Exec(query, goalID, at)
	}
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func (r *partnerGoalRepository) ByID(goalID string) (*model.PartnerGoal, error) {
	goal := &model.PartnerGoal{}
	query := `SELECT ` + partnerGoalColumns + ` FROM partner_goals WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.Get(goal, query, goalID)
	if err == sql.ErrNoRows {
		return nil, ErrPartnerGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return goal, nil
}

func (r *partnerGoalRepository) Goals(excludeOwnerID string) ([]*model.PartnerGoal, error) {
	var goals []*model.PartnerGoal
	query := `SELECT ` + partnerGoalColumns + ` FROM partner_goals
	          WHERE deleted_at IS NULL AND owner_id <> $1
	          ORDER BY updated_at DESC`

	err := r.db.Select(&goals, query, excludeOwnerID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}
