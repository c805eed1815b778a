package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/templui/folio/internal/db"
	"github.com/templui/folio/internal/markdown"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/validation"
)

// PreviewPages is how many pages a reader without access may see.
const PreviewPages = 2

var (
	ErrInvalidPage      = errors.New("invalid page number")
	ErrBookmarkExists   = errors.New("page already bookmarked")
	ErrBookmarkNotFound = errors.New("bookmark not found")
)

// ReadingSession is an opened book.
type ReadingSession struct {
	Book       model.Book             `json:"book"`
	Pages      []model.RenderedPage   `json:"pages"`
	TotalPages int                    `json:"total_pages"`
	Preview    bool                   `json:"preview"`
	Access     string                 `json:"access,omitempty"`
	Progress   *model.ReadingProgress `json:"progress,omitempty"`
	Bookmarks  []model.Bookmark       `json:"bookmarks"`
}

type ProgressUpdate struct {
	CurrentPage    int  `json:"current_page"`
	MinutesReading int  `json:"minutes_reading"`
	Completed      bool `json:"completed"`
}

type ReadingService struct {
	db                *sqlx.DB
	bookRepository    repository.BookRepository
	catalogRepository repository.CatalogRepository
	libraryRepository repository.LibraryRepository
	readingRepository repository.ReadingRepository
	parser            *markdown.Parser
}

func NewReadingService(
	database *sqlx.DB,
	bookRepository repository.BookRepository,
	catalogRepository repository.CatalogRepository,
	libraryRepository repository.LibraryRepository,
	readingRepository repository.ReadingRepository,
	parser *markdown.Parser,
) *ReadingService {
	return &ReadingService{
		db:                database,
		bookRepository:    bookRepository,
		catalogRepository: catalogRepository,
		libraryRepository: libraryRepository,
		readingRepository: readingRepository,
		parser:            parser,
	}
}

// access resolves how user may read book. It returns the access type and
// whether the full text is available. Subscribers get a library entry the
// first time they open a book.
func (s *ReadingService) access(ctx context.Context, user *model.SessionUser, book *model.Book) (string, bool, error) {
	entry, err := s.libraryRepository.Entry(ctx, user.ID, book.ID)
	if err == nil {
		return entry.AccessType, true, nil
	}
	if !errors.Is(err, repository.ErrNotInLibrary) {
		return "", false, fmt.Errorf("failed to check library: %w", err)
	}

	if user.HasSubscription(timeNow()) {
		err := s.libraryRepository.Add(ctx, &model.LibraryEntry{
			UserID:     user.ID,
			BookID:     book.ID,
			AccessType: model.AccessSubscription,
		})
		if err != nil && !errors.Is(err, repository.ErrAlreadyInLibrary) {
			return "", false, fmt.Errorf("failed to grant subscription access: %w", err)
		}
		slog.Info("subscription access granted", "user_id", user.ID, "book_id", book.ID)
		return model.AccessSubscription, true, nil
	}

	if book.IsFree() {
		return "", true, nil
	}
	return "", false, nil
}

// Open loads a book for reading. Readers without access get the first
// PreviewPages pages only.
func (s *ReadingService) Open(ctx context.Context, user *model.SessionUser, bookID string) (*ReadingSession, error) {
	book, err := s.bookRepository.ByID(ctx, bookID)
	if errors.Is(err, repository.ErrBookNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load book: %w", err)
	}

	accessType, full, err := s.access(ctx, user, book)
	if err != nil {
		return nil, err
	}

	limit := 0
	if !full {
		limit = PreviewPages
	}
	pages, err := s.catalogRepository.Pages(ctx, book.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}

	session := &ReadingSession{
		Book:       *book,
		Pages:      make([]model.RenderedPage, 0, len(pages)),
		TotalPages: book.PageCount,
		Preview:    !full,
		Access:     accessType,
	}
	if session.TotalPages == 0 && full {
		session.TotalPages = len(pages)
	}

	for _, p := range pages {
		html, err := s.parser.Render(p.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", p.PageNumber, err)
		}
		session.Pages = append(session.Pages, model.RenderedPage{
			PageNumber: p.PageNumber,
			HTML:       html,
			AudioURL:   p.AudioURL,
		})
	}

	progress, err := s.readingRepository.Progress(ctx, user.ID, book.ID)
	switch {
	case err == nil:
		session.Progress = progress
	case !errors.Is(err, repository.ErrProgressNotFound):
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	session.Bookmarks, err = s.readingRepository.Bookmarks(ctx, user.ID, book.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookmarks: %w", err)
	}
	if session.Bookmarks == nil {
		session.Bookmarks = []model.Bookmark{}
	}

	return session, nil
}

// SaveProgress records where the user is in a book. The first completion
// increments the user's books-read counter in the same transaction.
func (s *ReadingService) SaveProgress(ctx context.Context, user *model.SessionUser, bookID string, update ProgressUpdate) (*model.ReadingProgress, error) {
	if update.CurrentPage < 1 || update.MinutesReading < 0 {
		return nil, ErrInvalidPage
	}

	book, err := s.bookRepository.ByID(ctx, bookID)
	if errors.Is(err, repository.ErrBookNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load book: %w", err)
	}
	if book.PageCount > 0 && update.CurrentPage > book.PageCount {
		return nil, ErrInvalidPage
	}

	var saved *model.ReadingProgress
	err = db.WithTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		reading := repository.NewReadingRepository(tx)

		existing, err := reading.Progress(ctx, user.ID, bookID)
		if err != nil && !errors.Is(err, repository.ErrProgressNotFound) {
			return err
		}

		p := &model.ReadingProgress{
			UserID:             user.ID,
			BookID:             bookID,
			CurrentPage:        update.CurrentPage,
			TotalPagesRead:     update.CurrentPage,
			ReadingTimeMinutes: update.MinutesReading,
			IsCompleted:        update.Completed,
		}

		newlyCompleted := update.Completed
		if existing != nil {
			p.TotalPagesRead = max(existing.TotalPagesRead, update.CurrentPage)
			p.ReadingTimeMinutes += existing.ReadingTimeMinutes
			p.IsCompleted = existing.IsCompleted || update.Completed
			newlyCompleted = update.Completed && !existing.IsCompleted
			err = reading.UpdateProgress(ctx, p)
		} else {
			err = reading.InsertProgress(ctx, p)
		}
		if err != nil {
			return err
		}

		if newlyCompleted {
			if err := repository.NewProfileRepository(tx).IncrementBooksRead(ctx, user.ID); err != nil {
				return fmt.Errorf("increment books read: %w", err)
			}
		}

		saved = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}

	return saved, nil
}

func (s *ReadingService) AddBookmark(ctx context.Context, userID, bookID string, page int, note string) (*model.Bookmark, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}
	if _, err := s.bookRepository.ByID(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	b := &model.Bookmark{UserID: userID, BookID: bookID, PageNumber: page}
	if note = strings.TrimSpace(note); note != "" {
		if err := validation.ValidateText("note", note, 500); err != nil {
			return nil, err
		}
		b.Note = &note
	}

	err := s.readingRepository.AddBookmark(ctx, b)
	if errors.Is(err, repository.ErrDuplicateBookmark) {
		return nil, ErrBookmarkExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add bookmark: %w", err)
	}
	return b, nil
}

func (s *ReadingService) RemoveBookmark(ctx context.Context, userID, bookID string, page int) error {
	err := s.readingRepository.RemoveBookmark(ctx, userID, bookID, page)
	if errors.Is(err, repository.ErrBookmarkNotFound) {
		return ErrBookmarkNotFound
	}
	return err
}

func (s *ReadingService) Bookmarks(ctx context.Context, userID, bookID string) ([]model.Bookmark, error) {
	marks, err := s.readingRepository.Bookmarks(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if marks == nil {
		marks = []model.Bookmark{}
	}
	return marks, nil
}
