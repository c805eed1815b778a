package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
)

const (
	BrowsePageSize    = 12
	FeaturedBookLimit = 6
)

var ErrBookNotFound = errors.New("book not found")

type BrowseParams struct {
	Search  string
	GenreID string
	Sort    string
	Page    int // 1-based

	MinRating float64
}

type BrowsePage struct {
	Books      []model.Book `json:"books"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

// ReaderState is what a signed-in user has done with a book.
type ReaderState struct {
	Library    *model.LibraryEntry    `json:"library,omitempty"`
	Progress   *model.ReadingProgress `json:"progress,omitempty"`
	Bookmarks  []model.Bookmark       `json:"bookmarks"`
	Wishlisted bool                   `json:"wishlisted"`
	CanRead    bool                   `json:"can_read"`
}

type BookView struct {
	*model.BookDetail
	Reader *ReaderState `json:"reader,omitempty"`
}

type CatalogService struct {
	bookRepository    repository.BookRepository
	catalogRepository repository.CatalogRepository
	libraryRepository repository.LibraryRepository
	readingRepository repository.ReadingRepository
}

func NewCatalogService(
	bookRepository repository.BookRepository,
	catalogRepository repository.CatalogRepository,
	libraryRepository repository.LibraryRepository,
	readingRepository repository.ReadingRepository,
) *CatalogService {
	return &CatalogService{
		bookRepository:    bookRepository,
		catalogRepository: catalogRepository,
		libraryRepository: libraryRepository,
		readingRepository: readingRepository,
	}
}

func (s *CatalogService) Featured(ctx context.Context) ([]model.Book, error) {
	books, _, err := s.bookRepository.List(ctx, repository.BookFilter{
		Featured: true,
		Limit:    FeaturedBookLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load featured books: %w", err)
	}
	return books, nil
}

// Browse returns one page of the catalog. Unknown sort keys fall back to newest first.
func (s *CatalogService) Browse(ctx context.Context, params BrowseParams) (*BrowsePage, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}

	switch params.Sort {
	case model.SortNewest, model.SortPrice, model.SortRating, model.SortTitle:
	default:
		params.Sort = model.SortNewest
	}

	books, total, err := s.bookRepository.List(ctx, repository.BookFilter{
		Search:    strings.TrimSpace(params.Search),
		GenreID:   params.GenreID,
		MinRating: params.MinRating,
		Sort:      params.Sort,
		Limit:     BrowsePageSize,
		Offset:    (page - 1) * BrowsePageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to browse books: %w", err)
	}

	return &BrowsePage{
		Books:      books,
		Total:      total,
		Page:       page,
		PageSize:   BrowsePageSize,
		TotalPages: int((total + BrowsePageSize - 1) / BrowsePageSize),
	}, nil
}

func (s *CatalogService) Genres(ctx context.Context) ([]model.Genre, error) {
	return s.catalogRepository.Genres(ctx)
}

// Detail loads a book with its author, genre and tags.
func (s *CatalogService) Detail(ctx context.Context, bookID string) (*model.BookDetail, error) {
	book, err := s.bookRepository.ByID(ctx, bookID)
	if errors.Is(err, repository.ErrBookNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load book: %w", err)
	}

	detail := &model.BookDetail{Book: *book}

	if book.AuthorID != nil {
		author, err := s.catalogRepository.AuthorByID(ctx, *book.AuthorID)
		if err != nil && !errors.Is(err, repository.ErrAuthorNotFound) {
			return nil, fmt.Errorf("failed to load author: %w", err)
		}
		detail.Author = author
	}

	if book.GenreID != nil {
		genre, err := s.catalogRepository.GenreByID(ctx, *book.GenreID)
		if err != nil && !errors.Is(err, repository.ErrGenreNotFound) {
			return nil, fmt.Errorf("failed to load genre: %w", err)
		}
		detail.Genre = genre
	}

	tags, err := s.catalogRepository.Tags(ctx, book.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	detail.Tags = tags

	return detail, nil
}

// Book returns the detail view; for a signed-in viewer it also carries their
// library entry, progress, bookmarks and wishlist state.
func (s *CatalogService) Book(ctx context.Context, bookID string, viewer *model.SessionUser) (*BookView, error) {
	detail, err := s.Detail(ctx, bookID)
	if err != nil {
		return nil, err
	}

	view := &BookView{BookDetail: detail}
	if viewer == nil {
		return view, nil
	}

	state := &ReaderState{}

	entry, err := s.libraryRepository.Entry(ctx, viewer.ID, bookID)
	switch {
	case err == nil:
		state.Library = entry
	case !errors.Is(err, repository.ErrNotInLibrary):
		return nil, fmt.Errorf("failed to load library entry: %w", err)
	}

	progress, err := s.readingRepository.Progress(ctx, viewer.ID, bookID)
	switch {
	case err == nil:
		state.Progress = progress
	case !errors.Is(err, repository.ErrProgressNotFound):
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	state.Bookmarks, err = s.readingRepository.Bookmarks(ctx, viewer.ID, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookmarks: %w", err)
	}

	state.Wishlisted, err = s.libraryRepository.InWishlist(ctx, viewer.ID, bookID)
	if err != nil {
		slog.Warn("failed to check wishlist", "user_id", viewer.ID, "book_id", bookID, "error", err)
	}

	state.CanRead = state.Library != nil || detail.IsFree() || viewer.HasSubscription(timeNow())
	view.Reader = state
	return view, nil
}
