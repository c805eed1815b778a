package model

import "time"

const (
	AccessPurchased    = "purchased"
	AccessSubscription = "subscription"
)

type LibraryEntry struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	BookID     string    `db:"book_id" json:"book_id"`
	AccessType string    `db:"access_type" json:"access_type"`
	AcquiredAt time.Time `db:"acquired_at" json:"acquired_at"`
}

// LibraryItem is an owned book together with how it was acquired and how far
// the owner has read.
type LibraryItem struct {
	Entry    LibraryEntry     `json:"entry"`
	Book     Book             `json:"book"`
	Progress *ReadingProgress `json:"progress,omitempty"`
}

type WishlistItem struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	BookID    string    `db:"book_id" json:"book_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type ReadingList struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	IsPublic    bool      `db:"is_public" json:"is_public"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	Books []Book `db:"-" json:"books"`
}

type ReadingListBook struct {
	ListID  string    `db:"list_id" json:"list_id"`
	BookID  string    `db:"book_id" json:"book_id"`
	AddedAt time.Time `db:"added_at" json:"added_at"`
}
