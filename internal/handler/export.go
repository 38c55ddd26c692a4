package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/stepbookstep/server/internal/service"
)

type ExportHandler struct {
	exportService *service.ExportService
}

func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
	}
}

// Download streams the user's export as a JSON attachment.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := currentUser(r)
	export, err := h.exportService.Export(ctx, userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=reading-export-%d.json", userID))

	err = json.NewEncoder(w).Encode(export)
	if err != nil {
		slog.Error("failed to encode export", "error", err, "user_id", userID)
	}
}

// Archive stores the export in object storage and returns its download URL.
func (h *ExportHandler) Archive(w http.ResponseWriter, r *http.Request) {
	// Uploads get more room than regular requests
	ctx, cancel := context.WithTimeout(r.Context(), 6*requestTimeout)
	defer cancel()

	url, err := h.exportService.Archive(ctx, currentUser(r))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusCreated, "export archived", map[string]string{"url": url})
}
