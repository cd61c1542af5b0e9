package handler

import (
	"net/http"

	"github.com/templui/duoplan/internal/ctxkeys"
	"github.com/templui/duoplan/internal/service"
)

type ExportHandler struct {
	exportService *service.ExportService
}

func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
	}
}

// Download returns the export as a JSON attachment.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	export, err := h.exportService.Build(userID)
	if err != nil {
		handleServiceError(w, err, "failed to build export", "user_id", userID)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=goals-export.json")
	writeJSON(w, http.StatusOK, export)
}

// Archive stores the export in object storage and returns a download link.
func (h *ExportHandler) Archive(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	archived, err := h.exportService.Archive(userID)
	if err != nil {
		handleServiceError(w, err, "failed to archive export", "user_id", userID)
		return
	}

	writeJSON(w, http.StatusCreated, archived)
}
