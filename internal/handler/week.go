package handler

import (
	"net/http"
	"time"

	"github.com/templui/duoplan/internal/service"
	"github.com/templui/duoplan/internal/week"
)

type WeekHandler struct {
	clock service.Clock
}

func NewWeekHandler(clock service.Clock) *WeekHandler {
	return &WeekHandler{clock: clock}
}

type weekResponse struct {
	WeekID string    `json:"week_id"`
	Start  time.Time `json:"start"`
	Next   string    `json:"next"`
}

// Current returns the clock's ISO week and the week after it.
func (h *WeekHandler) Current(w http.ResponseWriter, r *http.Request) {
	id := week.Of(h.clock.Today())

	start, err := week.Start(id)
	if err != nil {
		handleServiceError(w, err, "failed to compute week start")
		return
	}
	next, err := week.Offset(id, 1)
	if err != nil {
		handleServiceError(w, err, "failed to compute next week")
		return
	}

	writeJSON(w, http.StatusOK, weekResponse{WeekID: id, Start: start, Next: next})
}
