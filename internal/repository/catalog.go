package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/query"
)

// CatalogRepository covers the rows that hang off books: authors, genres,
// tags and page content.
type CatalogRepository interface {
	CreateAuthor(ctx context.Context, author *model.Author) error
	AuthorByID(ctx context.Context, id string) (*model.Author, error)
	AuthorByName(ctx context.Context, name string) (*model.Author, error)
	AuthorsByIDs(ctx context.Context, ids []string) ([]model.Author, error)

	CreateGenre(ctx context.Context, genre *model.Genre) error
	GenreByID(ctx context.Context, id string) (*model.Genre, error)
	GenreByName(ctx context.Context, name string) (*model.Genre, error)
	Genres(ctx context.Context) ([]model.Genre, error)

	AddTag(ctx context.Context, tag *model.BookTag) error
	Tags(ctx context.Context, bookID string) ([]model.BookTag, error)
	TagsForBooks(ctx context.Context, bookIDs []string) ([]model.BookTag, error)

	AddPage(ctx context.Context, page *model.BookPage) error
	Pages(ctx context.Context, bookID string, limit int) ([]model.BookPage, error)
	DeletePages(ctx context.Context, bookID string) error
}

type catalogRepository struct {
	db sqlx.ExtContext
}

func NewCatalogRepository(db sqlx.ExtContext) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) CreateAuthor(ctx context.Context, author *model.Author) error {
	if author.ID == "" {
		author.ID = uuid.NewString()
	}

	res := query.From[model.Author](r.db, "authors").
		Insert(query.Row{"id": author.ID, "name": author.Name, "bio": author.Bio}).
		Single(ctx)
	if res.Err != nil {
		return res.Err
	}

	*author = *res.Row()
	return nil
}

func (r *catalogRepository) AuthorByID(ctx context.Context, id string) (*model.Author, error) {
	return r.author(ctx, "id", id)
}

func (r *catalogRepository) AuthorByName(ctx context.Context, name string) (*model.Author, error) {
	return r.author(ctx, "name", name)
}

func (r *catalogRepository) author(ctx context.Context, column, value string) (*model.Author, error) {
	res := query.From[model.Author](r.db, "authors").Eq(column, value).Single(ctx)
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Row() == nil {
		return nil, ErrAuthorNotFound
	}
	return res.Row(), nil
}

func (r *catalogRepository) AuthorsByIDs(ctx context.Context, ids []string) ([]model.Author, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	res := query.From[model.Author](r.db, "authors").In("id", toAny(ids)...).Execute(ctx)
	return res.Rows, res.Err
}

func (r *catalogRepository) CreateGenre(ctx context.Context, genre *model.Genre) error {
	if genre.ID == "" {
		genre.ID = uuid.NewString()
	}

	res := query.From[model.Genre](r.db, "genres").
		Insert(query.Row{"id": genre.ID, "name": genre.Name, "description": genre.Description}).
		Single(ctx)
	if errors.Is(res.Err, query.ErrConstraint) {
		return ErrDuplicateGenre
	}
	if res.Err != nil {
		return res.Err
	}

	*genre = *res.Row()
	return nil
}

func (r *catalogRepository) GenreByID(ctx context.Context, id string) (*model.Genre, error) {
	return r.genre(ctx, "id", id)
}

func (r *catalogRepository) GenreByName(ctx context.Context, name string) (*model.Genre, error) {
	return r.genre(ctx, "name", name)
}

func (r *catalogRepository) genre(ctx context.Context, column, value string) (*model.Genre, error) {
	res := query.From[model.Genre](r.db, "genres").Eq(column, value).Single(ctx)
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Row() == nil {
		return nil, ErrGenreNotFound
	}
	return res.Row(), nil
}

func (r *catalogRepository) Genres(ctx context.Context) ([]model.Genre, error) {
	res := query.From[model.Genre](r.db, "genres").Order("name").Execute(ctx)
	return res.Rows, res.Err
}

func (r *catalogRepository) AddTag(ctx context.Context, tag *model.BookTag) error {
	if tag.ID == "" {
		tag.ID = uuid.NewString()
	}
	if tag.TagType == "" {
		tag.TagType = "topic"
	}

	res := query.From[model.BookTag](r.db, "book_tags").
		Insert(query.Row{"id": tag.ID, "book_id": tag.BookID, "tag_name": tag.TagName, "tag_type": tag.TagType}).
		Single(ctx)
	if errors.Is(res.Err, query.ErrConstraint) {
		return ErrDuplicateTag
	}
	return res.Err
}

func (r *catalogRepository) Tags(ctx context.Context, bookID string) ([]model.BookTag, error) {
	res := query.From[model.BookTag](r.db, "book_tags").Eq("book_id", bookID).Order("tag_name").Execute(ctx)
	return res.Rows, res.Err
}

func (r *catalogRepository) TagsForBooks(ctx context.Context, bookIDs []string) ([]model.BookTag, error) {
	if len(bookIDs) == 0 {
		return nil, nil
	}
	res := query.From[model.BookTag](r.db, "book_tags").In("book_id", toAny(bookIDs)...).Order("tag_name").Execute(ctx)
	return res.Rows, res.Err
}

func (r *catalogRepository) AddPage(ctx context.Context, page *model.BookPage) error {
	if page.ID == "" {
		page.ID = uuid.NewString()
	}

	res := query.From[model.BookPage](r.db, "book_pages").
		Insert(query.Row{
			"id":          page.ID,
			"book_id":     page.BookID,
			"page_number": page.PageNumber,
			"content":     page.Content,
			"audio_url":   page.AudioURL,
		}).
		Single(ctx)
	return res.Err
}

// Pages returns a book's pages in reading order, at most limit when limit > 0.
func (r *catalogRepository) Pages(ctx context.Context, bookID string, limit int) ([]model.BookPage, error) {
	b := query.From[model.BookPage](r.db, "book_pages").Eq("book_id", bookID).Order("page_number")
	if limit > 0 {
		b.Limit(limit)
	}

	res := b.Execute(ctx)
	return res.Rows, res.Err
}

func (r *catalogRepository) DeletePages(ctx context.Context, bookID string) error {
	res := query.From[model.BookPage](r.db, "book_pages").Select("id").Delete().Eq("book_id", bookID).Execute(ctx)
	return res.Err
}
