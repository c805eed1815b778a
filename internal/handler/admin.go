package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/folio/internal/service"
	"github.com/templui/folio/internal/validation"
)

type adminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(adminService *service.AdminService) *adminHandler {
	return &adminHandler{adminService: adminService}
}

func (h *adminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *adminHandler) Books(w http.ResponseWriter, r *http.Request) {
	books, err := h.adminService.Books(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *adminHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var in service.BookInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	book, err := h.adminService.CreateBook(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

func (h *adminHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	var in service.BookInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	book, err := h.adminService.UpdateBook(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (h *adminHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.DeleteBook(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadCover accepts a multipart form with the image in the "cover" field.
func (h *adminHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	limit := validation.CoverConstraints.MaxSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	file, header, err := r.FormFile("cover")
	if err != nil {
		writeError(w, http.StatusBadRequest, "cover file is required")
		return
	}
	defer func() { _ = file.Close() }()

	contentType, err := validation.ValidateUpload(header, validation.CoverConstraints)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	book, err := h.adminService.UploadCover(r.Context(), r.PathValue("id"), header.Filename, contentType, file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.Info("cover upload complete", "book_id", book.ID, "size", header.Size)
	writeJSON(w, http.StatusOK, book)
}
