package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/templui/folio/internal/query"
	"github.com/templui/folio/internal/service"
	"github.com/templui/folio/internal/storage"
	"github.com/templui/folio/internal/validation"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&validation.FieldError{Field: "name", Message: "is required"}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", service.ErrBookNotFound), http.StatusNotFound},
		{service.ErrAlreadyOwned, http.StatusConflict},
		{service.ErrBookmarkExists, http.StatusConflict},
		{service.ErrInvalidPage, http.StatusBadRequest},
		{fmt.Errorf("%w: %w", service.ErrPaymentFailed, errors.New("declined")), http.StatusPaymentRequired},
		{service.ErrAdminPlan, http.StatusForbidden},
		{service.ErrStorageDisabled, http.StatusServiceUnavailable},
		{query.ErrInvalid, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestWriteServiceErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/library", nil)

	writeServiceError(rec, req, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, rec.Body.String())
}

func TestFilesServe(t *testing.T) {
	store := storage.NewMemoryStorage("http://localhost/files")
	assert.NoError(t, store.Save(t.Context(), "covers/b1.png", "image/png", strings.NewReader("png-bytes")))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /files/{key...}", NewFilesHandler(store).Serve)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/covers/b1.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/covers/none.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
