package handler

import (
	"net/http"
	"strconv"

	"github.com/templui/folio/internal/ctxkeys"
	"github.com/templui/folio/internal/service"
)

type readingHandler struct {
	readingService *service.ReadingService
}

func NewReadingHandler(readingService *service.ReadingService) *readingHandler {
	return &readingHandler{readingService: readingService}
}

func (h *readingHandler) Open(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	session, err := h.readingService.Open(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *readingHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var in service.ProgressUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	progress, err := h.readingService.SaveProgress(r.Context(), user, r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *readingHandler) Bookmarks(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	marks, err := h.readingService.Bookmarks(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, marks)
}

func (h *readingHandler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var in struct {
		Page int    `json:"page"`
		Note string `json:"note"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	mark, err := h.readingService.AddBookmark(r.Context(), user.ID, r.PathValue("id"), in.Page, in.Note)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mark)
}

func (h *readingHandler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	page, err := strconv.Atoi(r.PathValue("page"))
	if err != nil {
		writeServiceError(w, r, service.ErrInvalidPage)
		return
	}

	if err := h.readingService.RemoveBookmark(r.Context(), user.ID, r.PathValue("id"), page); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
