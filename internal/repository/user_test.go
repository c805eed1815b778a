package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/folio/internal/db/dbtest"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
)

func strPtr(s string) *string { return &s }

func TestUserSessionLifecycle(t *testing.T) {
	database := dbtest.Open(t)
	ctx := context.Background()
	users := repository.NewUserRepository(database)
	profiles := repository.NewProfileRepository(database)

	user := &model.User{Email: "reader@example.com", PasswordHash: "hash"}
	require.NoError(t, users.Create(ctx, user))
	require.NotEmpty(t, user.ID)
	require.NoError(t, profiles.Create(ctx, &model.Profile{ID: user.ID, DisplayName: strPtr("reader")}))

	now := time.Now().UTC()
	require.NoError(t, users.SetSession(ctx, user.ID, "tok-1", now.Add(time.Hour)))

	got, err := users.BySession(ctx, "tok-1", now)
	require.NoError(t, err)
	assert.Equal(t, &model.SessionUser{
		ID:               user.ID,
		Email:            "reader@example.com",
		DisplayName:      "reader",
		SubscriptionTier: model.TierFree,
	}, got)

	_, err = users.BySession(ctx, "tok-1", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, repository.ErrSessionNotFound, "expired sessions are not returned")

	// A new login overwrites the previous token.
	require.NoError(t, users.SetSession(ctx, user.ID, "tok-2", now.Add(time.Hour)))
	_, err = users.BySession(ctx, "tok-1", now)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	clearedAt := time.Now().UTC()
	require.NoError(t, users.ClearSession(ctx, "tok-2"))
	require.NoError(t, users.ClearSession(ctx, "tok-2"), "clearing twice is fine")
	_, err = users.BySession(ctx, "tok-2", now)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	stored, err := users.ByEmail(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.Nil(t, stored.SessionID)
	assert.Nil(t, stored.SessionExpires)
	assert.False(t, stored.UpdatedAt.Before(clearedAt), "sign-out touches updated_at")
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	database := dbtest.Open(t)
	ctx := context.Background()
	users := repository.NewUserRepository(database)

	require.NoError(t, users.Create(ctx, &model.User{Email: "dup@example.com", PasswordHash: "x"}))
	err := users.Create(ctx, &model.User{Email: "dup@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	_, err = users.ByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestProfileTierAndCounters(t *testing.T) {
	database := dbtest.Open(t)
	ctx := context.Background()
	users := repository.NewUserRepository(database)
	profiles := repository.NewProfileRepository(database)

	user := &model.User{Email: "p@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, user))
	require.NoError(t, profiles.Create(ctx, &model.Profile{ID: user.ID}))

	expires := time.Now().UTC().Add(30 * 24 * time.Hour)
	p, err := profiles.UpdateTier(ctx, user.ID, model.TierPremium, &expires)
	require.NoError(t, err)
	assert.Equal(t, model.TierPremium, p.SubscriptionTier)
	require.NotNil(t, p.SubscriptionExpiresAt)

	_, err = profiles.UpdateTier(ctx, user.ID, "platinum", nil)
	assert.ErrorIs(t, err, repository.ErrInvalidTier)
	p, err = profiles.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TierPremium, p.SubscriptionTier, "rejected tiers leave the profile unchanged")

	require.NoError(t, profiles.IncrementBooksRead(ctx, user.ID))
	require.NoError(t, profiles.IncrementBooksRead(ctx, user.ID))
	p, err = profiles.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalBooksRead)

	total, err := profiles.Count(ctx, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	free, err := profiles.Count(ctx, model.TierFree)
	require.NoError(t, err)
	assert.EqualValues(t, 0, free)

	assert.ErrorIs(t, profiles.IncrementBooksRead(ctx, "missing"), repository.ErrProfileNotFound)
}
