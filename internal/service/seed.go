package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/templui/folio/internal/db"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/validation"
)

type seedAccount struct {
	email string
	tier  string
}

var seedAccounts = []seedAccount{
	{email: QuickLoginAdminEmail, tier: model.TierAdmin},
	{email: QuickLoginUserEmail, tier: model.TierFree},
}

// SeedTestUsers creates the quick-login accounts with password. Accounts that
// already exist are left alone. It returns how many were created.
func (s *AuthService) SeedTestUsers(ctx context.Context, password string) (int, error) {
	if err := validation.ValidatePassword(password); err != nil && !errors.Is(err, validation.ErrPasswordCommon) {
		return 0, fmt.Errorf("seed password: %w", err)
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, acct := range seedAccounts {
		_, err := s.userRepository.ByEmail(ctx, acct.email)
		if err == nil {
			slog.Info("seed user exists", "email", acct.email)
			continue
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return created, err
		}

		err = db.WithTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
			user := &model.User{Email: acct.email, PasswordHash: hash}
			if err := repository.NewUserRepository(tx).Create(ctx, user); err != nil {
				return err
			}

			name := validation.LocalPart(acct.email)
			return repository.NewProfileRepository(tx).Create(ctx, &model.Profile{
				ID:               user.ID,
				DisplayName:      &name,
				SubscriptionTier: acct.tier,
			})
		})
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", acct.email, err)
		}

		slog.Info("seed user created", "email", acct.email, "tier", acct.tier)
		created++
	}
	return created, nil
}
