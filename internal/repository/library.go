package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/query"
)

var (
	ErrNotInLibrary      = errors.New("book not in library")
	ErrAlreadyInLibrary  = errors.New("book already in library")
	ErrAlreadyWishlisted = errors.New("book already in wishlist")
	ErrNotWishlisted     = errors.New("book not in wishlist")
)

type LibraryRepository interface {
	Add(ctx context.Context, entry *model.LibraryEntry) error
	Entry(ctx context.Context, userID, bookID string) (*model.LibraryEntry, error)
	ByUser(ctx context.Context, userID string) ([]model.LibraryEntry, error)

	AddToWishlist(ctx context.Context, userID, bookID string) (*model.WishlistItem, error)
	RemoveFromWishlist(ctx context.Context, userID, bookID string) error
	Wishlist(ctx context.Context, userID string) ([]model.WishlistItem, error)
	InWishlist(ctx context.Context, userID, bookID string) (bool, error)
}

type libraryRepository struct {
	db sqlx.ExtContext
}

func NewLibraryRepository(db sqlx.ExtContext) LibraryRepository {
	return &libraryRepository{db: db}
}

func (r *libraryRepository) Add(ctx context.Context, entry *model.LibraryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	res := query.From[model.LibraryEntry](r.db, "user_library").
		Insert(query.Row{
			"id":          entry.ID,
			"user_id":     entry.UserID,
			"book_id":     entry.BookID,
			"access_type": entry.AccessType,
		}).
		Single(ctx)
	if errors.Is(res.Err, query.ErrConstraint) {
		return ErrAlreadyInLibrary
	}
	if res.Err != nil {
		return res.Err
	}

	*entry = *res.Row()
	return nil
}

func (r *libraryRepository) Entry(ctx context.Context, userID, bookID string) (*model.LibraryEntry, error) {
	res := query.From[model.LibraryEntry](r.db, "user_library").
		Eq("user_id", userID).
		Eq("book_id", bookID).
		Single(ctx)
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Row() == nil {
		return nil, ErrNotInLibrary
	}
	return res.Row(), nil
}

func (r *libraryRepository) ByUser(ctx context.Context, userID string) ([]model.LibraryEntry, error) {
	res := query.From[model.LibraryEntry](r.db, "user_library").
		Eq("user_id", userID).
		Order("acquired_at", query.Desc()).
		Execute(ctx)
	return res.Rows, res.Err
}

func (r *libraryRepository) AddToWishlist(ctx context.Context, userID, bookID string) (*model.WishlistItem, error) {
	res := query.From[model.WishlistItem](r.db, "wishlist").
		Insert(query.Row{"id": uuid.NewString(), "user_id": userID, "book_id": bookID}).
		Single(ctx)
	if errors.Is(res.Err, query.ErrConstraint) {
		return nil, ErrAlreadyWishlisted
	}
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Row(), nil
}

func (r *libraryRepository) RemoveFromWishlist(ctx context.Context, userID, bookID string) error {
	res := query.From[model.WishlistItem](r.db, "wishlist").
		Delete().
		Eq("user_id", userID).
		Eq("book_id", bookID).
		Execute(ctx)
	if res.Err != nil {
		return res.Err
	}
	if res.Count == 0 {
		return ErrNotWishlisted
	}
	return nil
}

func (r *libraryRepository) Wishlist(ctx context.Context, userID string) ([]model.WishlistItem, error) {
	res := query.From[model.WishlistItem](r.db, "wishlist").
		Eq("user_id", userID).
		Order("created_at", query.Desc()).
		Execute(ctx)
	return res.Rows, res.Err
}

func (r *libraryRepository) InWishlist(ctx context.Context, userID, bookID string) (bool, error) {
	res := query.From[model.WishlistItem](r.db, "wishlist").
		Select("*", query.Count()).
		Eq("user_id", userID).
		Eq("book_id", bookID).
		Execute(ctx)
	return res.Count > 0, res.Err
}
