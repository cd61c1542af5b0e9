package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"
	"github.com/templui/duoplan/internal/model"
)

const (
	SyncEventUpsert = "upsert"
	SyncEventDelete = "delete"
)

var ErrInvalidSyncPayload = errors.New("invalid partner sync payload")

// SyncEvent is one push from the partner's device.
type SyncEvent struct {
	Type     string      `json:"type"`
	Goal     *model.Goal `json:"goal,omitempty"`
	GoalID   string      `json:"goal_id,omitempty"`
	SyncedAt time.Time   `json:"synced_at"`
}

// SyncService receives signed pushes on the partner sync channel and applies them to
// the partner cache.
type SyncService struct {
	partners *PartnerService
	secret   string
}

func NewSyncService(partners *PartnerService, webhookSecret string) *SyncService {
	return &SyncService{partners: partners, secret: webhookSecret}
}

// HandleWebhook verifies and applies one push. Returns whether the cache changed.
// Rejected pushes are reported to the partner service so reads carry a staleness
// warning.
func (s *SyncService) HandleWebhook(payload []byte, headers http.Header) (bool, error) {
	applied, err := s.handle(payload, headers)
	if errors.Is(err, ErrInvalidSyncPayload) {
		s.partners.ReportSyncFailure(err)
	}
	return applied, err
}

func (s *SyncService) handle(payload []byte, headers http.Header) (bool, error) {
	if s.secret == "" {
		slog.Warn("partner sync no webhook secret configured, skipping signature verification")
	} else {
		wh, err := standardwebhooks.NewWebhookRaw([]byte(s.secret))
		if err != nil {
			return false, fmt.Errorf("failed to create webhook verifier: %w", err)
		}

		err = wh.Verify(payload, headers)
		if err != nil {
			return false, fmt.Errorf("%w: bad signature: %v", ErrInvalidSyncPayload, err)
		}
	}

	var event SyncEvent
	err := json.Unmarshal(payload, &event)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidSyncPayload, err)
	}

	slog.Debug("partner sync event received", "type", event.Type)

	switch event.Type {
	case SyncEventUpsert:
		if event.Goal == nil {
			return false, fmt.Errorf("%w: upsert without goal", ErrInvalidSyncPayload)
		}
		return s.partners.MergePartnerGoal(&model.PartnerGoal{
			Goal:     *event.Goal,
			SyncedAt: event.SyncedAt,
		})
	case SyncEventDelete:
		id := event.GoalID
		if id == "" && event.Goal != nil {
			id = event.Goal.ID
		}
		return s.partners.RemovePartnerGoal(id, event.SyncedAt)
	default:
		return false, fmt.Errorf("%w: unknown event type %q", ErrInvalidSyncPayload, event.Type)
	}
}
