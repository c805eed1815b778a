package model

import "time"

type Profile struct {
	ID                    string     `db:"id" json:"id"`
	DisplayName           *string    `db:"display_name" json:"display_name"`
	AvatarURL             *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	SubscriptionTier      string     `db:"subscription_tier" json:"subscription_tier"`
	SubscriptionExpiresAt *time.Time `db:"subscription_expires_at" json:"subscription_expires_at,omitempty"`
	ReadingStreak         int        `db:"reading_streak" json:"reading_streak"`
	TotalBooksRead        int        `db:"total_books_read" json:"total_books_read"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

const (
	TierFree    = "free"
	TierPremium = "premium"
	TierAnnual  = "annual"
	TierAdmin   = "admin"
)

func ValidTier(tier string) bool {
	switch tier {
	case TierFree, TierPremium, TierAnnual, TierAdmin:
		return true
	}
	return false
}
