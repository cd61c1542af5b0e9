package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/templui/duoplan/internal/ctxkeys"
	"github.com/templui/duoplan/internal/service"
)

type PartnerHandler struct {
	partnerService *service.PartnerService
	syncService    *service.SyncService
}

func NewPartnerHandler(partnerService *service.PartnerService, syncService *service.SyncService) *PartnerHandler {
	return &PartnerHandler{
		partnerService: partnerService,
		syncService:    syncService,
	}
}

// Goals returns the cached partner goals and any sync warning.
func (h *PartnerHandler) Goals(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	goals, err := h.partnerService.Goals(userID)
	if err != nil {
		handleServiceError(w, err, "failed to load partner goals", "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

// Webhook receives pushes on the partner sync channel.
func (h *PartnerHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		slog.Warn("failed to read partner sync payload", "error", err)
		writeError(w, http.StatusBadRequest, "failed to read payload")
		return
	}
	defer func() {
		closeErr := r.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close request body", "error", closeErr)
		}
	}()

	applied, err := h.syncService.HandleWebhook(payload, r.Header)
	if err != nil {
		slog.Warn("rejected partner sync push", "error", err, "webhook_id", r.Header.Get("webhook-id"))
		handleServiceError(w, err, "failed to apply partner sync push")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true, "applied": applied})
}
