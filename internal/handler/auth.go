package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/templui/folio/internal/ctxkeys"
	"github.com/templui/folio/internal/service"
)

const msgQuickLoginDisabled = "Quick login is only available in development mode"

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *authHandler {
	return &authHandler{authService: authService}
}

func (h *authHandler) readCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return in, false
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password required")
		return in, false
	}
	return in, true
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readCredentials(w, r)
	if !ok {
		return
	}

	result := h.authService.SignIn(r.Context(), in.Email, in.Password)
	if !result.Success {
		writeError(w, http.StatusUnauthorized, result.Error)
		return
	}

	h.authService.SetSessionCookie(w, result.Session)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *authHandler) Signup(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readCredentials(w, r)
	if !ok {
		return
	}

	result := h.authService.SignUp(r.Context(), in.Email, in.Password)
	if !result.Success {
		writeError(w, http.StatusBadRequest, result.Error)
		return
	}

	h.authService.SetSessionCookie(w, result.Session)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *authHandler) QuickLogin(w http.ResponseWriter, r *http.Request) {
	if !h.authService.QuickLoginEnabled() {
		writeError(w, http.StatusForbidden, msgQuickLoginDisabled)
		return
	}

	var in struct {
		UserType string `json:"userType"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	result, err := h.authService.QuickLogin(r.Context(), in.UserType)
	switch {
	case errors.Is(err, service.ErrQuickLoginDisabled):
		writeError(w, http.StatusForbidden, msgQuickLoginDisabled)
		return
	case errors.Is(err, service.ErrInvalidUserType):
		writeError(w, http.StatusBadRequest, "Invalid user type")
		return
	case errors.Is(err, service.ErrQuickLoginUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		slog.Error("quick login failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	if !result.Success {
		writeError(w, http.StatusUnauthorized, result.Error)
		return
	}

	h.authService.SetSessionCookie(w, result.Session)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearSessionCookie(w)

	if cookie, err := r.Cookie(service.SessionCookieName); err == nil {
		if err := h.authService.SignOut(r.Context(), cookie.Value); err != nil {
			slog.Error("sign out failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ctxkeys.User(r.Context()))
}
