package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/templui/folio/internal/db"
	"github.com/templui/folio/internal/markdown"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
)

type ImportReport struct {
	Imported []string `json:"imported"`
	Skipped  []string `json:"skipped"`
}

// ImportService loads books from markdown files with front matter.
type ImportService struct {
	db     *sqlx.DB
	parser *markdown.Parser
}

func NewImportService(database *sqlx.DB, parser *markdown.Parser) *ImportService {
	return &ImportService{db: database, parser: parser}
}

// ImportFS imports every .md file in fsys. Books whose title already exists
// are skipped, so running it twice is safe.
func (s *ImportService) ImportFS(ctx context.Context, fsys fs.FS) (*ImportReport, error) {
	report := &ImportReport{Imported: []string{}, Skipped: []string{}}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(path.Ext(p), ".md") {
			return nil
		}

		source, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}

		book, err := s.parser.ParseBook(source)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}

		imported, err := s.importBook(ctx, book)
		if err != nil {
			return fmt.Errorf("import %s: %w", p, err)
		}
		if imported {
			report.Imported = append(report.Imported, book.Meta.Title)
			slog.Info("book imported", "file", p, "title", book.Meta.Title, "pages", len(book.Pages))
		} else {
			report.Skipped = append(report.Skipped, book.Meta.Title)
			slog.Info("book already imported", "file", p, "title", book.Meta.Title)
		}
		return nil
	})
	if err != nil {
		return report, err
	}
	return report, nil
}

func (s *ImportService) importBook(ctx context.Context, src *markdown.BookSource) (bool, error) {
	imported := false

	err := db.WithTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		books := repository.NewBookRepository(tx)
		catalog := repository.NewCatalogRepository(tx)
		meta := src.Meta

		_, err := books.ByTitle(ctx, meta.Title)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrBookNotFound) {
			return err
		}

		book := &model.Book{
			Title:      meta.Title,
			PriceCents: meta.PriceCents,
			PageCount:  len(src.Pages),
			Language:   meta.Language,
			IsFeatured: meta.Featured,
			IsPremium:  meta.Premium,
		}
		book.Description = optional(meta.Description)
		book.ISBN = optional(meta.ISBN)
		book.Publisher = optional(meta.Publisher)
		book.PublicationDate = optional(meta.PublicationDate)

		if meta.Author != "" {
			author, err := findOrCreateAuthor(ctx, catalog, meta.Author, meta.AuthorBio)
			if err != nil {
				return err
			}
			book.AuthorID = &author.ID
		}
		if meta.Genre != "" {
			genre, err := findOrCreateGenre(ctx, catalog, meta.Genre)
			if err != nil {
				return err
			}
			book.GenreID = &genre.ID
		}

		if err := books.Create(ctx, book); err != nil {
			return fmt.Errorf("create book: %w", err)
		}

		seen := make(map[string]bool, len(meta.Tags))
		for _, tag := range meta.Tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			if err := catalog.AddTag(ctx, &model.BookTag{BookID: book.ID, TagName: tag}); err != nil {
				return fmt.Errorf("add tag %q: %w", tag, err)
			}
		}

		for i, content := range src.Pages {
			page := &model.BookPage{BookID: book.ID, PageNumber: i + 1, Content: content}
			if err := catalog.AddPage(ctx, page); err != nil {
				return fmt.Errorf("add page %d: %w", i+1, err)
			}
		}

		imported = true
		return nil
	})
	return imported, err
}

func findOrCreateAuthor(ctx context.Context, catalog repository.CatalogRepository, name, bio string) (*model.Author, error) {
	author, err := catalog.AuthorByName(ctx, name)
	if err == nil {
		return author, nil
	}
	if !errors.Is(err, repository.ErrAuthorNotFound) {
		return nil, err
	}

	author = &model.Author{Name: name, Bio: optional(bio)}
	if err := catalog.CreateAuthor(ctx, author); err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}
	return author, nil
}

func findOrCreateGenre(ctx context.Context, catalog repository.CatalogRepository, name string) (*model.Genre, error) {
	genre, err := catalog.GenreByName(ctx, name)
	if err == nil {
		return genre, nil
	}
	if !errors.Is(err, repository.ErrGenreNotFound) {
		return nil, err
	}

	genre = &model.Genre{Name: name}
	if err := catalog.CreateGenre(ctx, genre); err != nil {
		return nil, fmt.Errorf("create genre: %w", err)
	}
	return genre, nil
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
