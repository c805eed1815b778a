package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/query"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateEmail  = errors.New("email already exists")
	ErrSessionNotFound = errors.New("session not found")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	SetSession(ctx context.Context, userID, token string, expires time.Time) error
	ClearSession(ctx context.Context, token string) error
	BySession(ctx context.Context, token string, now time.Time) (*model.SessionUser, error)
}

type userRepository struct {
	db sqlx.ExtContext
}

// NewUserRepository binds the repository to db, which may be the pool or a transaction.
func NewUserRepository(db sqlx.ExtContext) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	res := query.From[model.User](r.db, "users").
		Insert(query.Row{
			"id":              user.ID,
			"email":           user.Email,
			"password":        user.PasswordHash,
			"session_id":      user.SessionID,
			"session_expires": user.SessionExpires,
		}).
		Single(ctx)
	if errors.Is(res.Err, query.ErrConstraint) {
		return ErrDuplicateEmail
	}
	if res.Err != nil {
		return res.Err
	}

	*user = *res.Row()
	return nil
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	return r.one(ctx, "id", id)
}

func (r *userRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.one(ctx, "email", email)
}

func (r *userRepository) one(ctx context.Context, column string, value any) (*model.User, error) {
	res := query.From[model.User](r.db, "users").Eq(column, value).Single(ctx)
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Row() == nil {
		return nil, ErrUserNotFound
	}
	return res.Row(), nil
}

func (r *userRepository) SetSession(ctx context.Context, userID, token string, expires time.Time) error {
	res := query.From[model.User](r.db, "users").
		Update(query.Row{
			"session_id":      token,
			"session_expires": expires.UTC(),
			"updated_at":      time.Now().UTC(),
		}).
		Eq("id", userID).
		Execute(ctx)
	if res.Err != nil {
		return res.Err
	}
	if res.Count == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ClearSession revokes token. Clearing an unknown token is not an error.
func (r *userRepository) ClearSession(ctx context.Context, token string) error {
	res := query.From[model.User](r.db, "users").
		Update(query.Row{
			"session_id":      nil,
			"session_expires": nil,
			"updated_at":      time.Now().UTC(),
		}).
		Eq("session_id", token).
		Execute(ctx)
	return res.Err
}

func (r *userRepository) BySession(ctx context.Context, token string, now time.Time) (*model.SessionUser, error) {
	stmt := r.db.Rebind(`
		SELECT u.id, u.email, COALESCE(p.display_name, '') AS display_name,
			p.subscription_tier, p.subscription_expires_at
		FROM users u
		JOIN profiles p ON p.id = u.id
		WHERE u.session_id = ? AND u.session_expires > ?`)

	user := &model.SessionUser{}
	err := sqlx.GetContext(ctx, r.db, user, stmt, token, now.UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
