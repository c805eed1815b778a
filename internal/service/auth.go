package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/templui/folio/internal/db"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/validation"
)

const SessionCookieName = "session_id"

// Messages returned to clients in AuthResult.Error.
const (
	MsgDatabaseNotReady   = "Database not set up yet. Please contact administrator."
	MsgInvalidCredentials = "Invalid credentials"
	MsgSignInFailed       = "Sign in failed"
	MsgEmailRegistered    = "Email already registered"
	MsgSignUpFailed       = "Sign up failed"
)

// Seeded accounts reachable through quick login.
const (
	QuickLoginAdminEmail = "admin@test.com"
	QuickLoginUserEmail  = "user@test.com"
)

var (
	ErrQuickLoginDisabled     = errors.New("quick login is only available in development mode")
	ErrInvalidUserType        = errors.New("invalid user type")
	ErrQuickLoginUserNotFound = errors.New("quick login user not found")
)

// Session is an issued session token and when it stops being valid.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// AuthResult is what sign in and sign up report to callers. Internal errors
// are logged and replaced by a fixed message.
type AuthResult struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Session *Session `json:"-"`
}

func authFailure(msg string) AuthResult {
	return AuthResult{Success: false, Error: msg}
}

type AuthConfig struct {
	Driver             string
	SessionExpiry      time.Duration
	IsProduction       bool
	QuickLoginEnabled  bool
	QuickLoginPassword string
}

type AuthService struct {
	db                *sqlx.DB
	userRepository    repository.UserRepository
	profileRepository repository.ProfileRepository
	emailService      *EmailService
	cfg               AuthConfig
	now               func() time.Time
}

func NewAuthService(
	database *sqlx.DB,
	userRepository repository.UserRepository,
	profileRepository repository.ProfileRepository,
	emailService *EmailService,
	cfg AuthConfig,
) *AuthService {
	if cfg.SessionExpiry <= 0 {
		cfg.SessionExpiry = 7 * 24 * time.Hour
	}
	return &AuthService{
		db:                database,
		userRepository:    userRepository,
		profileRepository: profileRepository,
		emailService:      emailService,
		cfg:               cfg,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// schemaReady reports whether the auth tables exist. Lookup failures count as
// not ready.
func (s *AuthService) schemaReady(ctx context.Context) bool {
	for _, table := range []string{"users", "profiles"} {
		ok, err := db.TableExists(ctx, s.db, s.cfg.Driver, table)
		if err != nil {
			slog.Error("schema check failed", "table", table, "error", err)
			return false
		}
		if !ok {
			slog.Warn("database tables not set up yet", "table", table)
			return false
		}
	}
	return true
}

func (s *AuthService) newSession() *Session {
	return &Session{
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.cfg.SessionExpiry),
	}
}

// SignIn verifies credentials and rotates the user's session token. The
// result never reveals whether the email exists.
func (s *AuthService) SignIn(ctx context.Context, email, password string) AuthResult {
	if !s.schemaReady(ctx) {
		return authFailure(MsgDatabaseNotReady)
	}

	email = validation.NormalizeEmail(email)
	user, err := s.userRepository.ByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return authFailure(MsgInvalidCredentials)
	}
	if err != nil {
		slog.Error("sign in lookup failed", "error", err)
		return authFailure(MsgSignInFailed)
	}

	if err := s.ComparePassword(password, user.PasswordHash); err != nil {
		return authFailure(MsgInvalidCredentials)
	}

	session := s.newSession()
	if err := s.userRepository.SetSession(ctx, user.ID, session.Token, session.ExpiresAt); err != nil {
		slog.Error("failed to store session", "user_id", user.ID, "error", err)
		return authFailure(MsgSignInFailed)
	}

	slog.Info("user signed in", "user_id", user.ID)
	return AuthResult{Success: true, Session: session}
}

// SignUp creates the user and profile in one transaction and signs the user in.
func (s *AuthService) SignUp(ctx context.Context, email, password string) AuthResult {
	if !s.schemaReady(ctx) {
		return authFailure(MsgDatabaseNotReady)
	}

	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return authFailure(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return authFailure(err.Error())
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		return authFailure(MsgSignUpFailed)
	}

	session := s.newSession()
	user := &model.User{
		Email:          email,
		PasswordHash:   hash,
		SessionID:      &session.Token,
		SessionExpires: &session.ExpiresAt,
	}
	displayName := validation.LocalPart(email)

	err = db.WithTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := repository.NewUserRepository(tx).Create(ctx, user); err != nil {
			return err
		}

		profile := &model.Profile{
			ID:               user.ID,
			DisplayName:      &displayName,
			SubscriptionTier: model.TierFree,
		}
		if err := repository.NewProfileRepository(tx).Create(ctx, profile); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return authFailure(MsgEmailRegistered)
	}
	if err != nil {
		slog.Error("sign up failed", "error", err)
		return authFailure(MsgSignUpFailed)
	}

	slog.Info("user signed up", "user_id", user.ID)

	if err := s.emailService.SendWelcomeEmail(ctx, email, displayName); err != nil {
		slog.Error("failed to send welcome email", "user_id", user.ID, "error", err)
	}

	return AuthResult{Success: true, Session: session}
}

// CurrentUser resolves a session token to its user. It returns nil for an
// empty, unknown or expired token and for any lookup failure.
func (s *AuthService) CurrentUser(ctx context.Context, token string) *model.SessionUser {
	if token == "" {
		return nil
	}
	if !s.schemaReady(ctx) {
		return nil
	}

	user, err := s.userRepository.BySession(ctx, token, s.now())
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		slog.Error("session lookup failed", "error", err)
		return nil
	}
	return user
}

// SignOut revokes token. Unknown tokens are ignored.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	err := s.userRepository.ClearSession(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// QuickLoginEnabled reports whether the seeded test accounts may be used.
func (s *AuthService) QuickLoginEnabled() bool {
	return s.cfg.QuickLoginEnabled
}

// QuickLogin signs into one of the seeded test accounts. userType is "admin"
// or "user". Only available in development.
func (s *AuthService) QuickLogin(ctx context.Context, userType string) (AuthResult, error) {
	if !s.cfg.QuickLoginEnabled {
		return AuthResult{}, ErrQuickLoginDisabled
	}

	var email string
	switch userType {
	case "admin":
		email = QuickLoginAdminEmail
	case "user":
		email = QuickLoginUserEmail
	default:
		return AuthResult{}, ErrInvalidUserType
	}

	if _, err := s.userRepository.ByEmail(ctx, email); err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			slog.Error("quick login lookup failed", "email", email, "error", err)
		}
		return AuthResult{}, ErrQuickLoginUserNotFound
	}

	return s.SignIn(ctx, email, s.cfg.QuickLoginPassword), nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) SetSessionCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Expires:  session.ExpiresAt,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
