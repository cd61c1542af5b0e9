package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/templui/duoplan/internal/model"
)

// GoalProgressRepository reads the weekly snapshots. Rows are written only by
// GoalRepository.ApplyWeeklyReset and removed only by cascade.
type GoalProgressRepository interface {
	History(goalID string) ([]*model.GoalProgress, error)
	ForGoals(goalIDs []string) ([]*model.GoalProgress, error)
}

type goalProgressRepository struct {
	db *sqlx.DB
}

func NewGoalProgressRepository(db *sqlx.DB) GoalProgressRepository {
	return &goalProgressRepository{db: db}
}

// History returns a goal's weekly snapshots, oldest week first.
func (r *goalProgressRepository) History(goalID string) ([]*model.GoalProgress, error) {
	var records []*model.GoalProgress
	// Week ids are zero-padded, so string order is chronological.
	query := `SELECT id, goal_id, week_id, progress_value, target_value, created_at
	          FROM goal_progress WHERE goal_id = $1 ORDER BY week_id ASC`

	err := r.db.Select(&records, query, goalID)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// ForGoals loads the snapshots of several goals in one query.
func (r *goalProgressRepository) ForGoals(goalIDs []string) ([]*model.GoalProgress, error) {
	if len(goalIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT id, goal_id, week_id, progress_value, target_value, created_at
	          FROM goal_progress WHERE goal_id IN (?) ORDER BY goal_id, week_id`, goalIDs)
	if err != nil {
		return nil, err
	}

	var records []*model.GoalProgress
	err = r.db.Select(&records, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return records, nil
}
