package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/templui/folio/internal/storage"
)

type filesHandler struct {
	store *storage.MemoryStorage
}

// NewFilesHandler serves objects held in memory storage. It is only mounted
// when no bucket is configured.
func NewFilesHandler(store *storage.MemoryStorage) *filesHandler {
	return &filesHandler{store: store}
}

func (h *filesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	body, contentType, err := h.store.Open(r.PathValue("key"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, body); err != nil {
		slog.Debug("file write aborted", "error", err)
	}
}
