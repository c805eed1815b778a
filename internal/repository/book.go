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
	ErrBookNotFound   = errors.New("book not found")
	ErrAuthorNotFound = errors.New("author not found")
	ErrGenreNotFound  = errors.New("genre not found")
	ErrDuplicateGenre = errors.New("genre already exists")
	ErrDuplicateTag   = errors.New("tag already exists")
)

// BookFilter narrows a catalog listing. Zero values mean no restriction.
type BookFilter struct {
	Search   string
	GenreID  string
	AuthorID string
	Featured bool
	// MinRating keeps books rated at least this high.
	MinRating float64
	Sort      string
	Limit     int
	Offset    int
}

type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	ByID(ctx context.Context, id string) (*model.Book, error)
	ByIDs(ctx context.Context, ids []string) ([]model.Book, error)
	ByTitle(ctx context.Context, title string) (*model.Book, error)
	List(ctx context.Context, filter BookFilter) ([]model.Book, int64, error)
	MostRated(ctx context.Context, limit int) ([]model.Book, error)
	SameGenre(ctx context.Context, book *model.Book, limit int) ([]model.Book, error)
	Update(ctx context.Context, id string, fields query.Row) (*model.Book, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type bookRepository struct {
	db sqlx.ExtContext
}

func NewBookRepository(db sqlx.ExtContext) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *model.Book) error {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	if book.Language == "" {
		book.Language = "en"
	}

	res := query.From[model.Book](r.db, "books").
		Insert(query.Row{
			"id":               book.ID,
			"title":            book.Title,
			"description":      book.Description,
			"author_id":        book.AuthorID,
			"genre_id":         book.GenreID,
			"cover_image":      book.CoverImage,
			"price_cents":      book.PriceCents,
			"isbn":             book.ISBN,
			"page_count":       book.PageCount,
			"language":         book.Language,
			"publisher":        book.Publisher,
			"publication_date": book.PublicationDate,
			"is_featured":      book.IsFeatured,
			"is_premium":       book.IsPremium,
			"average_rating":   book.AverageRating,
			"total_ratings":    book.TotalRatings,
		}).
		Single(ctx)
	if res.Err != nil {
		return res.Err
	}

	*book = *res.Row()
	return nil
}

func (r *bookRepository) ByID(ctx context.Context, id string) (*model.Book, error) {
	res := query.From[model.Book](r.db, "books").Eq("id", id).Single(ctx)
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Row() == nil {
		return nil, ErrBookNotFound
	}
	return res.Row(), nil
}

func (r *bookRepository) ByTitle(ctx context.Context, title string) (*model.Book, error) {
	res := query.From[model.Book](r.db, "books").Eq("title", title).Single(ctx)
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Row() == nil {
		return nil, ErrBookNotFound
	}
	return res.Row(), nil
}

// ByIDs returns the books with the given ids, in title order.
func (r *bookRepository) ByIDs(ctx context.Context, ids []string) ([]model.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	res := query.From[model.Book](r.db, "books").In("id", toAny(ids)...).Order("title").Execute(ctx)
	return res.Rows, res.Err
}

func (r *bookRepository) filtered(filter BookFilter, opts ...query.SelectOpt) *query.Builder[model.Book] {
	b := query.From[model.Book](r.db, "books").Select("*", opts...)
	if filter.Search != "" {
		b.ILike("title", filter.Search)
	}
	if filter.GenreID != "" {
		b.Eq("genre_id", filter.GenreID)
	}
	if filter.AuthorID != "" {
		b.Eq("author_id", filter.AuthorID)
	}
	if filter.Featured {
		b.Eq("is_featured", true)
	}
	if filter.MinRating > 0 {
		b.Gte("average_rating", filter.MinRating)
	}
	return b
}

// List returns one page of books matching filter and the total number of matches.
func (r *bookRepository) List(ctx context.Context, filter BookFilter) ([]model.Book, int64, error) {
	b := r.filtered(filter)
	switch filter.Sort {
	case model.SortPrice:
		b.Order("price_cents")
	case model.SortRating:
		b.Order("average_rating", query.Desc())
	case model.SortTitle:
		b.Order("title")
	default:
		b.Order("created_at", query.Desc())
	}
	if filter.Limit > 0 {
		b.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		b.Offset(filter.Offset)
	}

	res := b.Execute(ctx)
	if res.Err != nil {
		return nil, 0, res.Err
	}

	total := r.filtered(filter, query.Count()).Execute(ctx)
	if total.Err != nil {
		return nil, 0, total.Err
	}
	return res.Rows, total.Count, nil
}

func (r *bookRepository) MostRated(ctx context.Context, limit int) ([]model.Book, error) {
	res := query.From[model.Book](r.db, "books").
		Order("total_ratings", query.Desc()).
		Limit(limit).
		Execute(ctx)
	return res.Rows, res.Err
}

func (r *bookRepository) SameGenre(ctx context.Context, book *model.Book, limit int) ([]model.Book, error) {
	b := query.From[model.Book](r.db, "books").Neq("id", book.ID)
	if book.GenreID != nil {
		b.Eq("genre_id", *book.GenreID)
	}

	res := b.Order("average_rating", query.Desc()).Limit(limit).Execute(ctx)
	return res.Rows, res.Err
}

// Update writes fields to the book and returns the stored row.
func (r *bookRepository) Update(ctx context.Context, id string, fields query.Row) (*model.Book, error) {
	row := make(query.Row, len(fields)+1)
	for k, v := range fields {
		row[k] = v
	}
	row["updated_at"] = time.Now().UTC()

	res := query.From[model.Book](r.db, "books").Update(row).Eq("id", id).Single(ctx)
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Row() == nil {
		return nil, ErrBookNotFound
	}
	return res.Row(), nil
}

func (r *bookRepository) Delete(ctx context.Context, id string) error {
	res := query.From[model.Book](r.db, "books").Select("id").Delete().Eq("id", id).Execute(ctx)
	if res.Err != nil {
		return res.Err
	}
	if res.Count == 0 {
		return ErrBookNotFound
	}
	return nil
}

func (r *bookRepository) Count(ctx context.Context) (int64, error) {
	res := query.From[model.Book](r.db, "books").Select("*", query.Count()).Execute(ctx)
	return res.Count, res.Err
}

func toAny(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
