package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/query"
)

var (
	ErrProgressNotFound  = errors.New("reading progress not found")
	ErrDuplicateProgress = errors.New("reading progress already exists")
	ErrBookmarkNotFound  = errors.New("bookmark not found")
	ErrDuplicateBookmark = errors.New("bookmark already exists")
)

type ReadingRepository interface {
	Progress(ctx context.Context, userID, bookID string) (*model.ReadingProgress, error)
	ProgressByUser(ctx context.Context, userID string) ([]model.ReadingProgress, error)
	InsertProgress(ctx context.Context, p *model.ReadingProgress) error
	UpdateProgress(ctx context.Context, p *model.ReadingProgress) error

	AddBookmark(ctx context.Context, b *model.Bookmark) error
	RemoveBookmark(ctx context.Context, userID, bookID string, page int) error
	Bookmarks(ctx context.Context, userID, bookID string) ([]model.Bookmark, error)
}

type readingRepository struct {
	db sqlx.ExtContext
}

func NewReadingRepository(db sqlx.ExtContext) ReadingRepository {
	return &readingRepository{db: db}
}

func (r *readingRepository) Progress(ctx context.Context, userID, bookID string) (*model.ReadingProgress, error) {
	res := query.From[model.ReadingProgress](r.db, "reading_progress").
		Eq("user_id", userID).
		Eq("book_id", bookID).
		Single(ctx)
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Row() == nil {
		return nil, ErrProgressNotFound
	}
	return res.Row(), nil
}

func (r *readingRepository) ProgressByUser(ctx context.Context, userID string) ([]model.ReadingProgress, error) {
	res := query.From[model.ReadingProgress](r.db, "reading_progress").
		Eq("user_id", userID).
		Order("last_read_at", query.Desc()).
		Execute(ctx)
	return res.Rows, res.Err
}

func (r *readingRepository) InsertProgress(ctx context.Context, p *model.ReadingProgress) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	res := query.From[model.ReadingProgress](r.db, "reading_progress").
		Insert(query.Row{
			"id":                   p.ID,
			"user_id":              p.UserID,
			"book_id":              p.BookID,
			"current_page":         p.CurrentPage,
			"total_pages_read":     p.TotalPagesRead,
			"reading_time_minutes": p.ReadingTimeMinutes,
			"is_completed":         p.IsCompleted,
			"last_read_at":         time.Now().UTC(),
		}).
		Single(ctx)
	if errors.Is(res.Err, query.ErrConstraint) {
		return ErrDuplicateProgress
	}
	if res.Err != nil {
		return res.Err
	}

	*p = *res.Row()
	return nil
}

func (r *readingRepository) UpdateProgress(ctx context.Context, p *model.ReadingProgress) error {
	res := query.From[model.ReadingProgress](r.db, "reading_progress").
		Update(query.Row{
			"current_page":         p.CurrentPage,
			"total_pages_read":     p.TotalPagesRead,
			"reading_time_minutes": p.ReadingTimeMinutes,
			"is_completed":         p.IsCompleted,
			"last_read_at":         time.Now().UTC(),
		}).
		Eq("user_id", p.UserID).
		Eq("book_id", p.BookID).
		Single(ctx)
	if res.Err != nil {
		return res.Err
	}
	if res.Row() == nil {
		return ErrProgressNotFound
	}

	*p = *res.Row()
	return nil
}

func (r *readingRepository) AddBookmark(ctx context.Context, b *model.Bookmark) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	res := query.From[model.Bookmark](r.db, "bookmarks").
		Insert(query.Row{
			"id":          b.ID,
			"user_id":     b.UserID,
			"book_id":     b.BookID,
			"page_number": b.PageNumber,
			"note":        b.Note,
		}).
		Single(ctx)
	if errors.Is(res.Err, query.ErrConstraint) {
		return ErrDuplicateBookmark
	}
	if res.Err != nil {
		return res.Err
	}

	*b = *res.Row()
	return nil
}

func (r *readingRepository) RemoveBookmark(ctx context.Context, userID, bookID string, page int) error {
	res := query.From[model.Bookmark](r.db, "bookmarks").
		Delete().
		Eq("user_id", userID).
		Eq("book_id", bookID).
		Eq("page_number", page).
		Execute(ctx)
	if res.Err != nil {
		return res.Err
	}
	if res.Count == 0 {
		return ErrBookmarkNotFound
	}
	return nil
}

func (r *readingRepository) Bookmarks(ctx context.Context, userID, bookID string) ([]model.Bookmark, error) {
	res := query.From[model.Bookmark](r.db, "bookmarks").
		Eq("user_id", userID).
		Eq("book_id", bookID).
		Order("page_number").
		Execute(ctx)
	return res.Rows, res.Err
}
