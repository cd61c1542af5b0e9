package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/templui/duoplan/internal/lifecycle"
	"github.com/templui/duoplan/internal/model"
	"github.com/templui/duoplan/internal/repository"
	"github.com/templui/duoplan/internal/storage"
	"github.com/templui/duoplan/internal/week"
)

var ErrExportStorageUnavailable = errors.New("export storage is not configured")

type ExportService struct {
	goalRepo      repository.GoalRepository
	progressRepo  repository.GoalProgressRepository
	storage       storage.Storage
	clock         Clock
	presignExpiry time.Duration
}

// NewExportService builds the export service. store may be nil, in which case only
// in-memory exports are available.
func NewExportService(
	goalRepo repository.GoalRepository,
	progressRepo repository.GoalProgressRepository,
	store storage.Storage,
	clock Clock,
	presignExpiry time.Duration,
) *ExportService {
	return &ExportService{
		goalRepo:      goalRepo,
		progressRepo:  progressRepo,
		storage:       store,
		clock:         clock,
		presignExpiry: presignExpiry,
	}
}

type GoalExport struct {
	*model.Goal
	Target   int                   `json:"target"`
	Fraction float64               `json:"fraction"`
	History  []*model.GoalProgress `json:"history"`
}

type Export struct {
	OwnerID    string        `json:"owner_id"`
	WeekID     string        `json:"week_id"`
	ExportedAt time.Time     `json:"exported_at"`
	Goals      []*GoalExport `json:"goals"`
}

type ArchivedExport struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Build collects every goal of ownerID with its weekly history.
func (s *ExportService) Build(ownerID string) (*Export, error) {
	goals, err := s.goalRepo.Goals(ownerID, repository.GoalSortRecent)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}

	ids := make([]string, 0, len(goals))
	for _, g := range goals {
		ids = append(ids, g.ID)
	}

	records, err := s.progressRepo.ForGoals(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load goal history: %w", err)
	}

	byGoal := make(map[string][]*model.GoalProgress, len(goals))
	for _, p := range records {
		byGoal[p.GoalID] = append(byGoal[p.GoalID], p)
	}

	export := &Export{
		OwnerID:    ownerID,
		WeekID:     week.Of(s.clock.Today()),
		ExportedAt: time.Now().UTC(),
		Goals:      make([]*GoalExport, 0, len(goals)),
	}
	for _, g := range goals {
		target := lifecycle.Target(g.GoalType)
		history := byGoal[g.ID]
		if history == nil {
			history = []*model.GoalProgress{}
		}
		export.Goals = append(export.Goals, &GoalExport{
			Goal:     g,
			Target:   target,
			Fraction: lifecycle.Fraction(g.CurrentProgress, target),
			History:  history,
		})
	}

	return export, nil
}

// Archive stores the owner's export as JSON and returns a time-limited download link.
func (s *ExportService) Archive(ownerID string) (*ArchivedExport, error) {
	if s.storage == nil {
		return nil, ErrExportStorageUnavailable
	}

	export, err := s.Build(ownerID)
	if err != nil {
		return nil, err
	}

	body, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", ownerID, export.ExportedAt.Format("20060102T150405Z"))
	err = s.storage.Save(key, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}

	url, err := s.storage.PresignedURL(key, s.presignExpiry)
	if err != nil {
		// Nobody can fetch an unsigned archive; do not leave it behind.
		deleteErr := s.storage.Delete(key)
		if deleteErr != nil {
			slog.Error("failed to remove unsigned export", "error", deleteErr, "key", key)
		}
		return nil, err
	}

	slog.Info("goal export archived", "owner_id", ownerID, "key", key, "goals", len(export.Goals))
	return &ArchivedExport{
		Key:       key,
		URL:       url,
		ExpiresAt: export.ExportedAt.Add(s.presignExpiry),
	}, nil
}
