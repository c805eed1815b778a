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
	ErrReadingListNotFound = errors.New("reading list not found")
	ErrAlreadyInList       = errors.New("book already in reading list")
	ErrNotInList           = errors.New("book not in reading list")
)

type ReadingListRepository interface {
	Create(ctx context.Context, list *model.ReadingList) error
	ByID(ctx context.Context, id string) (*model.ReadingList, error)
	ByUser(ctx context.Context, userID string) ([]model.ReadingList, error)
	Delete(ctx context.Context, id, userID string) error
	AddBook(ctx context.Context, listID, bookID string) error
	RemoveBook(ctx context.Context, listID, bookID string) error
	Books(ctx context.Context, listIDs []string) ([]model.ReadingListBook, error)
}

type readingListRepository struct {
	db sqlx.ExtContext
}

func NewReadingListRepository(db sqlx.ExtContext) ReadingListRepository {
	return &readingListRepository{db: db}
}

func (r *readingListRepository) Create(ctx context.Context, list *model.ReadingList) error {
	if list.ID == "" {
		list.ID = uuid.NewString()
	}

	res := query.From[model.ReadingList](r.db, "reading_lists").
		Insert(query.Row{
			"id":          list.ID,
			"user_id":     list.UserID,
			"name":        list.Name,
			"description": list.Description,
			"is_public":   list.IsPublic,
		}).
		Single(ctx)
	if res.Err != nil {
		return res.Err
	}

	*list = *res.Row()
	return nil
}

func (r *readingListRepository) ByID(ctx context.Context, id string) (*model.ReadingList, error) {
	res := query.From[model.ReadingList](r.db, "reading_lists").Eq("id", id).Single(ctx)
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Row() == nil {
		return nil, ErrReadingListNotFound
	}
	return res.Row(), nil
}

func (r *readingListRepository) ByUser(ctx context.Context, userID string) ([]model.ReadingList, error) {
	res := query.From[model.ReadingList](r.db, "reading_lists").
		Eq("user_id", userID).
		Order("created_at", query.Desc()).
		Execute(ctx)
	return res.Rows, res.Err
}

// Delete removes the list when it belongs to userID.
func (r *readingListRepository) Delete(ctx context.Context, id, userID string) error {
	res := query.From[model.ReadingList](r.db, "reading_lists").
		Delete().
		Eq("id", id).
		Eq("user_id", userID).
		Execute(ctx)
	if res.Err != nil {
		return res.Err
	}
	if res.Count == 0 {
		return ErrReadingListNotFound
	}
	return nil
}

func (r *readingListRepository) AddBook(ctx context.Context, listID, bookID string) error {
	res := query.From[model.ReadingListBook](r.db, "reading_list_books").
		Insert(query.Row{"list_id": listID, "book_id": bookID}).
		Single(ctx)
	if errors.Is(res.Err, query.ErrConstraint) {
		return ErrAlreadyInList
	}
	return res.Err
}

func (r *readingListRepository) RemoveBook(ctx context.Context, listID, bookID string) error {
	res := query.From[model.ReadingListBook](r.db, "reading_list_books").
		Delete().
		Eq("list_id", listID).
		Eq("book_id", bookID).
		Execute(ctx)
	if res.Err != nil {
		return res.Err
	}
	if res.Count == 0 {
		return ErrNotInList
	}
	return nil
}

func (r *readingListRepository) Books(ctx context.Context, listIDs []string) ([]model.ReadingListBook, error) {
	if len(listIDs) == 0 {
		return nil, nil
	}
	res := query.From[model.ReadingListBook](r.db, "reading_list_books").
		In("list_id", toAny(listIDs)...).
		Order("added_at").
		Execute(ctx)
	return res.Rows, res.Err
}
