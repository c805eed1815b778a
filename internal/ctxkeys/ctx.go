package ctxkeys

import (
	"context"

	"github.com/templui/folio/internal/config"
	"github.com/templui/folio/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserKey      contextKey = "user"
	ConfigKey    contextKey = "config"
	RequestIDKey contextKey = "request_id"
)

// User returns the signed-in user, or nil for anonymous requests.
func User(ctx context.Context) *model.SessionUser {
	user, _ := ctx.Value(UserKey).(*model.SessionUser)
	return user
}

func WithUser(ctx context.Context, user *model.SessionUser) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ConfigKey).(*config.Config)
	return cfg
}

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ConfigKey, cfg)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}
