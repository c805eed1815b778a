package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/templui/folio/internal/db"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/query"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/storage"
	"github.com/templui/folio/internal/validation"
)

const (
	revenueSampleSize = 100
	topBooksLimit     = 5
)

var (
	ErrStorageDisabled = errors.New("cover storage is not configured")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrNoChanges       = errors.New("no fields to update")
)

type AdminStats struct {
	TotalBooks       int64        `json:"total_books"`
	TotalUsers       int64        `json:"total_users"`
	PremiumUsers     int64        `json:"premium_users"`
	RecentRevenue    int          `json:"recent_revenue_cents"`
	RecentRevenueFmt string       `json:"recent_revenue"`
	TopBooks         []model.Book `json:"top_books"`
}

// BookInput creates or patches a book. Nil fields are left unchanged on update.
type BookInput struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	AuthorID        *string `json:"author_id"`
	GenreID         *string `json:"genre_id"`
	PriceCents      *int    `json:"price_cents"`
	ISBN            *string `json:"isbn"`
	PageCount       *int    `json:"page_count"`
	Language        *string `json:"language"`
	Publisher       *string `json:"publisher"`
	PublicationDate *string `json:"publication_date"`
	IsFeatured      *bool   `json:"is_featured"`
	IsPremium       *bool   `json:"is_premium"`
}

type AdminService struct {
	db                    *sqlx.DB
	bookRepository        repository.BookRepository
	catalogRepository     repository.CatalogRepository
	profileRepository     repository.ProfileRepository
	transactionRepository repository.TransactionRepository
	storage               storage.Storage
	currency              string
}

// NewAdminService wires admin operations. store may be nil, which disables
// cover uploads.
func NewAdminService(
	database *sqlx.DB,
	bookRepository repository.BookRepository,
	catalogRepository repository.CatalogRepository,
	profileRepository repository.ProfileRepository,
	transactionRepository repository.TransactionRepository,
	store storage.Storage,
	currency string,
) *AdminService {
	return &AdminService{
		db:                    database,
		bookRepository:        bookRepository,
		catalogRepository:     catalogRepository,
		profileRepository:     profileRepository,
		transactionRepository: transactionRepository,
		storage:               store,
		currency:              currency,
	}
}

func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}
	var err error

	if stats.TotalBooks, err = s.bookRepository.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}
	if stats.TotalUsers, err = s.profileRepository.Count(ctx, ""); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	for _, tier := range []string{model.TierPremium, model.TierAnnual} {
		n, err := s.profileRepository.Count(ctx, tier)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s users: %w", tier, err)
		}
		stats.PremiumUsers += n
	}

	txns, err := s.transactionRepository.RecentCompleted(ctx, revenueSampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	for _, t := range txns {
		stats.RecentRevenue += t.AmountCents
	}
	stats.RecentRevenueFmt = model.FormatCents(stats.RecentRevenue, s.currency)

	if stats.TopBooks, err = s.bookRepository.MostRated(ctx, topBooksLimit); err != nil {
		return nil, fmt.Errorf("failed to load top books: %w", err)
	}
	if stats.TopBooks == nil {
		stats.TopBooks = []model.Book{}
	}

	return stats, nil
}

// Books lists every book with its author, genre and tags. All reads run in
// one transaction so the joined view is consistent.
func (s *AdminService) Books(ctx context.Context) ([]model.BookDetail, error) {
	var details []model.BookDetail

	err := db.WithTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		books, _, err := repository.NewBookRepository(tx).List(ctx, repository.BookFilter{})
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}

		catalog := repository.NewCatalogRepository(tx)

		var authorIDs, bookIDs []string
		for _, b := range books {
			bookIDs = append(bookIDs, b.ID)
			if b.AuthorID != nil {
				authorIDs = append(authorIDs, *b.AuthorID)
			}
		}

		authors, err := catalog.AuthorsByIDs(ctx, authorIDs)
		if err != nil {
			return fmt.Errorf("load authors: %w", err)
		}
		genres, err := catalog.Genres(ctx)
		if err != nil {
			return fmt.Errorf("load genres: %w", err)
		}
		tags, err := catalog.TagsForBooks(ctx, bookIDs)
		if err != nil {
			return fmt.Errorf("load tags: %w", err)
		}

		authorByID := make(map[string]*model.Author, len(authors))
		for i := range authors {
			authorByID[authors[i].ID] = &authors[i]
		}
		genreByID := make(map[string]*model.Genre, len(genres))
		for i := range genres {
			genreByID[genres[i].ID] = &genres[i]
		}
		tagsByBook := make(map[string][]model.BookTag)
		for _, t := range tags {
			tagsByBook[t.BookID] = append(tagsByBook[t.BookID], t)
		}

		details = make([]model.BookDetail, len(books))
		for i, b := range books {
			d := model.BookDetail{Book: b, Tags: tagsByBook[b.ID]}
			if b.AuthorID != nil {
				d.Author = authorByID[*b.AuthorID]
			}
			if b.GenreID != nil {
				d.Genre = genreByID[*b.GenreID]
			}
			if d.Tags == nil {
				d.Tags = []model.BookTag{}
			}
			details[i] = d
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load admin books: %w", err)
	}
	return details, nil
}

func (s *AdminService) checkRefs(ctx context.Context, in BookInput) error {
	if in.AuthorID != nil && *in.AuthorID != "" {
		if _, err := s.catalogRepository.AuthorByID(ctx, *in.AuthorID); err != nil {
			return err
		}
	}
	if in.GenreID != nil && *in.GenreID != "" {
		if _, err := s.catalogRepository.GenreByID(ctx, *in.GenreID); err != nil {
			return err
		}
	}
	if in.PriceCents != nil && *in.PriceCents < 0 {
		return ErrInvalidPrice
	}
	if in.PageCount != nil && *in.PageCount < 0 {
		return &validation.FieldError{Field: "page_count", Message: "must not be negative"}
	}
	return nil
}

func (s *AdminService) CreateBook(ctx context.Context, in BookInput) (*model.Book, error) {
	if in.Title == nil {
		return nil, &validation.FieldError{Field: "title", Message: "is required"}
	}
	if err := validation.ValidateText("title", *in.Title, 200); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, in); err != nil {
		return nil, err
	}

	book := &model.Book{Title: strings.TrimSpace(*in.Title)}
	book.Description = in.Description
	book.AuthorID = emptyToNil(in.AuthorID)
	book.GenreID = emptyToNil(in.GenreID)
	book.ISBN = in.ISBN
	book.Publisher = in.Publisher
	book.PublicationDate = in.PublicationDate
	if in.PriceCents != nil {
		book.PriceCents = *in.PriceCents
	}
	if in.PageCount != nil {
		book.PageCount = *in.PageCount
	}
	if in.Language != nil {
		book.Language = *in.Language
	}
	if in.IsFeatured != nil {
		book.IsFeatured = *in.IsFeatured
	}
	if in.IsPremium != nil {
		book.IsPremium = *in.IsPremium
	}

	if err := s.bookRepository.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	slog.Info("book created", "book_id", book.ID, "title", book.Title)
	return book, nil
}

func (s *AdminService) UpdateBook(ctx context.Context, id string, in BookInput) (*model.Book, error) {
	if in.Title != nil {
		if err := validation.ValidateText("title", *in.Title, 200); err != nil {
			return nil, err
		}
	}
	if err := s.checkRefs(ctx, in); err != nil {
		return nil, err
	}

	fields := query.Row{}
	setIf(fields, "title", trimmed(in.Title))
	setIf(fields, "description", in.Description)
	setIf(fields, "price_cents", in.PriceCents)
	setIf(fields, "isbn", in.ISBN)
	setIf(fields, "page_count", in.PageCount)
	setIf(fields, "language", in.Language)
	setIf(fields, "publisher", in.Publisher)
	setIf(fields, "publication_date", in.PublicationDate)
	setIf(fields, "is_featured", in.IsFeatured)
	setIf(fields, "is_premium", in.IsPremium)
	// An empty id detaches the author or genre.
	if in.AuthorID != nil {
		fields["author_id"] = emptyToNil(in.AuthorID)
	}
	if in.GenreID != nil {
		fields["genre_id"] = emptyToNil(in.GenreID)
	}
	if len(fields) == 0 {
		return nil, ErrNoChanges
	}

	book, err := s.bookRepository.Update(ctx, id, fields)
	if errors.Is(err, repository.ErrBookNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	slog.Info("book updated", "book_id", id, "fields", len(fields))
	return book, nil
}

func (s *AdminService) DeleteBook(ctx context.Context, id string) error {
	err := s.bookRepository.Delete(ctx, id)
	if errors.Is(err, repository.ErrBookNotFound) {
		return ErrBookNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	slog.Info("book deleted", "book_id", id)
	return nil
}

// UploadCover stores a cover image and points the book at it. The content
// type must already be validated.
func (s *AdminService) UploadCover(ctx context.Context, bookID, filename, contentType string, body io.Reader) (*model.Book, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}

	book, err := s.bookRepository.ByID(ctx, bookID)
	if errors.Is(err, repository.ErrBookNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}

	key := path.Join("covers", book.ID+strings.ToLower(path.Ext(filename)))
	if err := s.storage.Save(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to store cover: %w", err)
	}

	url, err := s.storage.URL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cover url: %w", err)
	}

	book, err = s.bookRepository.Update(ctx, book.ID, query.Row{"cover_image": url})
	if err != nil {
		return nil, fmt.Errorf("failed to save cover: %w", err)
	}

	slog.Info("cover uploaded", "book_id", book.ID, "key", key)
	return book, nil
}

func setIf[T any](row query.Row, column string, v *T) {
	if v != nil {
		row[column] = v
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
