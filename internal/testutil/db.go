// Package testutil provides a migrated in-memory database for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/templui/duoplan/internal/db"
	"github.com/templui/duoplan/internal/model"
)

// NewDB opens a private in-memory SQLite database with all migrations applied.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()

	database, err := db.Init(db.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, db.DriverSQLite))
	return database
}

// Goal builds an active goal for ownerID starting in weekID.
func Goal(ownerID string, t model.GoalType, weekID string) *model.Goal {
	now := time.Now().UTC()
	return &model.Goal{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		Name:          fmt.Sprintf("%s goal", t.Kind),
		Icon:          "🎯",
		GoalType:      t,
		StartWeekID:   weekID,
		CurrentWeekID: weekID,
		Status:        model.GoalStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// FixedClock always reports the same day.
type FixedClock struct {
	Day time.Time
}

func (c *FixedClock) Today() time.Time {
	return c.Day
}
