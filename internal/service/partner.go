package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/templui/duoplan/internal/model"
	"github.com/templui/duoplan/internal/repository"
	"github.com/templui/duoplan/internal/validation"
)

// PartnerService keeps the local read-only mirror of the partner's goals. Records
// arrive from the sync channel and are never authored here.
type PartnerService struct {
	repo repository.PartnerGoalRepository

	mu           sync.RWMutex
	lastFailure  error
	lastSyncedAt time.Time
}

func NewPartnerService(repo repository.PartnerGoalRepository) *PartnerService {
	return &PartnerService{repo: repo}
}

// PartnerGoals is a read of the cache. Warning is set when the most recent sync
// attempt failed, so callers can show that the data may be stale.
type PartnerGoals struct {
	Goals        []*model.PartnerGoal `json:"goals"`
	LastSyncedAt *time.Time           `json:"last_synced_at,omitempty"`
	Warning      string               `json:"warning,omitempty"`
}

// MergePartnerGoal applies a remote record with last-write-wins on SyncedAt. Records
// without a SyncedAt fall back to the remote UpdatedAt. Returns whether the cache
// changed.
func (s *PartnerService) MergePartnerGoal(remote *model.PartnerGoal) (bool, error) {
	if remote.SyncedAt.IsZero() {
		remote.SyncedAt = remote.UpdatedAt
	}

	var errs validation.Errors
	if remote.ID == "" {
		errs.Add("id", errors.New("partner goal id is required"))
	}
	if remote.OwnerID == "" {
		errs.Add("owner_id", errors.New("partner goal owner is required"))
	}
	if remote.SyncedAt.IsZero() {
		errs.Add("synced_at", errors.New("partner goal has no sync timestamp"))
	}
	err := errs.Err()
	if err != nil {
		s.ReportSyncFailure(err)
		return false, err
	}

	applied, err := s.repo.Upsert(remote)
	if err != nil {
		err = fmt.Errorf("failed to store partner goal: %w", err)
		s.ReportSyncFailure(err)
		return false, err
	}

	s.markSynced()
	if !applied {
		slog.Debug("stale partner goal ignored", "goal_id", remote.ID, "synced_at", remote.SyncedAt)
	}
	return applied, nil
}

// RemovePartnerGoal drops a record the partner deleted. A zero removedAt means now.
func (s *PartnerService) RemovePartnerGoal(goalID string, removedAt time.Time) (bool, error) {
	if goalID == "" {
		err := &validation.Error{Field: "id", Message: "partner goal id is required"}
		s.ReportSyncFailure(err)
		return false, err
	}
	if removedAt.IsZero() {
		removedAt = time.Now().UTC()
	}

	applied, err := s.repo.Remove(goalID, removedAt)
	if err != nil {
		err = fmt.Errorf("failed to remove partner goal: %w", err)
		s.ReportSyncFailure(err)
		return false, err
	}

	s.markSynced()
	return applied, nil
}

// Goals lists the partner goals visible to actingUserID. The acting user's own
// goals are never served from the cache.
func (s *PartnerService) Goals(actingUserID string) (*PartnerGoals, error) {
	goals, err := s.repo.Goals(actingUserID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := &PartnerGoals{Goals: goals}
	if !s.lastSyncedAt.IsZero() {
		at := s.lastSyncedAt
		result.LastSyncedAt = &at
	}
	if s.lastFailure != nil {
		result.Warning = "partner goals may be out of date: " + s.lastFailure.Error()
	}
	return result, nil
}

// ReportSyncFailure records a sync channel error. It is logged and surfaced as a
// warning on reads; own goals are unaffected.
func (s *PartnerService) ReportSyncFailure(err error) {
	slog.Warn("partner sync failed", "error", err)

	s.mu.Lock()
	s.lastFailure = err
	s.mu.Unlock()
}

func (s *PartnerService) markSynced() {
	s.mu.Lock()
	s.lastSyncedAt = time.Now().UTC()
	s.lastFailure = nil
	s.mu.Unlock()
}
