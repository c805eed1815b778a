package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/templui/folio/internal/ctxkeys"
	"github.com/templui/folio/internal/query"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/service"
	"github.com/templui/folio/internal/validation"
)

const (
	maxBodyBytes = 1 << 20

	msgInternalError  = "Internal server error"
	msgInvalidRequest = "Invalid request body"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func intParam(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return n
}

func floatParam(r *http.Request, name string) float64 {
	f, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	if err != nil {
		return 0
	}
	return f
}

// statusFor maps service errors onto HTTP status codes. Unknown errors are 500.
func statusFor(err error) int {
	var fieldErr *validation.FieldError
	switch {
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrBookNotFound),
		errors.Is(err, service.ErrReadingListNotFound),
		errors.Is(err, service.ErrNotWishlisted),
		errors.Is(err, service.ErrNotInList),
		errors.Is(err, service.ErrBookmarkNotFound),
		errors.Is(err, repository.ErrAuthorNotFound),
		errors.Is(err, repository.ErrGenreNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyOwned),
		errors.Is(err, service.ErrAlreadyWishlisted),
		errors.Is(err, service.ErrAlreadyInList),
		errors.Is(err, service.ErrBookmarkExists),
		errors.Is(err, service.ErrAlreadySubscribed):
		return http.StatusConflict
	case errors.Is(err, service.ErrBookIsFree),
		errors.Is(err, service.ErrInvalidPage),
		errors.Is(err, service.ErrInvalidPlan),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrNoChanges),
		errors.Is(err, service.ErrNotSubscribed),
		errors.Is(err, query.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, service.ErrAdminPlan):
		return http.StatusForbidden
	case errors.Is(err, service.ErrStorageDisabled),
		errors.Is(err, query.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeServiceError answers with the mapped status. Details of unexpected
// errors stay in the logs.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"path", r.URL.Path,
			"request_id", ctxkeys.RequestID(r.Context()),
			"error", err,
		)
		msg := msgInternalError
		if status == http.StatusServiceUnavailable {
			msg = "Service temporarily unavailable"
		}
		writeError(w, status, msg)
		return
	}
	writeError(w, status, err.Error())
}
