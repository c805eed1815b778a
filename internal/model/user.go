package model

import (
	"time"
)

type User struct {
	ID             string     `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	PasswordHash   string     `db:"password" json:"-"`
	SessionID      *string    `db:"session_id" json:"-"`
	SessionExpires *time.Time `db:"session_expires" json:"-"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// SessionUser is the identity attached to an authenticated request.
type SessionUser struct {
	ID                    string     `db:"id" json:"id"`
	Email                 string     `db:"email" json:"email"`
	DisplayName           string     `db:"display_name" json:"display_name"`
	SubscriptionTier      string     `db:"subscription_tier" json:"subscription_tier"`
	SubscriptionExpiresAt *time.Time `db:"subscription_expires_at" json:"subscription_expires_at,omitempty"`
}

func (u *SessionUser) IsAdmin() bool {
	return u != nil && u.SubscriptionTier == TierAdmin
}

// HasSubscription reports whether the user's tier grants catalog-wide reading
// access at now. Admins always do; paid tiers until they expire.
func (u *SessionUser) HasSubscription(now time.Time) bool {
	if u == nil {
		return false
	}
	switch u.SubscriptionTier {
	case TierAdmin:
		return true
	case TierPremium, TierAnnual:
		return u.SubscriptionExpiresAt == nil || u.SubscriptionExpiresAt.After(now)
	}
	return false
}
