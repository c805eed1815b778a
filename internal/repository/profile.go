package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/query"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidTier     = errors.New("invalid subscription tier")
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	ByID(ctx context.Context, id string) (*model.Profile, error)
	UpdateTier(ctx context.Context, id, tier string, expiresAt *time.Time) (*model.Profile, error)
	IncrementBooksRead(ctx context.Context, id string) error
	// Count returns the number of profiles, or of profiles on tier when it is not empty.
	Count(ctx context.Context, tier string) (int64, error)
}

type profileRepository struct {
	db sqlx.ExtContext
}

func NewProfileRepository(db sqlx.ExtContext) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	if profile.SubscriptionTier == "" {
		profile.SubscriptionTier = model.TierFree
	}

	res := query.From[model.Profile](r.db, "profiles").
		Insert(query.Row{
			"id":                      profile.ID,
			"display_name":            profile.DisplayName,
			"avatar_url":              profile.AvatarURL,
			"subscription_tier":       profile.SubscriptionTier,
			"subscription_expires_at": profile.SubscriptionExpiresAt,
		}).
		Single(ctx)
	if res.Err != nil {
		return res.Err
	}

	*profile = *res.Row()
	return nil
}

func (r *profileRepository) ByID(ctx context.Context, id string) (*model.Profile, error) {
	res := query.From[model.Profile](r.db, "profiles").Eq("id", id).Single(ctx)
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Row() == nil {
		return nil, ErrProfileNotFound
	}
	return res.Row(), nil
}

func (r *profileRepository) UpdateTier(ctx context.Context, id, tier string, expiresAt *time.Time) (*model.Profile, error) {
	if !model.ValidTier(tier) {
		return nil, ErrInvalidTier
	}

	var expires any
	if expiresAt != nil {
		expires = expiresAt.UTC()
	}

	res := query.From[model.Profile](r.db, "profiles").
		Update(query.Row{
			"subscription_tier":       tier,
			"subscription_expires_at": expires,
			"updated_at":              time.Now().UTC(),
		}).
		Eq("id", id).
		Single(ctx)
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Row() == nil {
		return nil, ErrProfileNotFound
	}
	return res.Row(), nil
}

func (r *profileRepository) IncrementBooksRead(ctx context.Context, id string) error {
	stmt := r.db.Rebind(`UPDATE profiles SET total_books_read = total_books_read + 1, updated_at = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, stmt, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *profileRepository) Count(ctx context.Context, tier string) (int64, error) {
	b := query.From[model.Profile](r.db, "profiles").Select("*", query.Count())
	if tier != "" {
		b.Eq("subscription_tier", tier)
	}

	res := b.Execute(ctx)
	return res.Count, res.Err
}
