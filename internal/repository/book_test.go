package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/folio/internal/db/dbtest"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/query"
	"github.com/templui/folio/internal/repository"
)

func TestBookListFiltersSortsAndPages(t *testing.T) {
	database := dbtest.Open(t)
	ctx := context.Background()
	books := repository.NewBookRepository(database)
	catalog := repository.NewCatalogRepository(database)

	fantasy := &model.Genre{Name: "Fantasy"}
	require.NoError(t, catalog.CreateGenre(ctx, fantasy))
	assert.ErrorIs(t, catalog.CreateGenre(ctx, &model.Genre{Name: "Fantasy"}), repository.ErrDuplicateGenre)

	seed := []model.Book{
		{Title: "The Hobbit", PriceCents: 1299, AverageRating: 4.8, GenreID: &fantasy.ID, IsFeatured: true},
		{Title: "Dune", PriceCents: 999, AverageRating: 4.6},
		{Title: "Hobbit Cookbook", PriceCents: 499, AverageRating: 3.1, GenreID: &fantasy.ID},
	}
	for i := range seed {
		require.NoError(t, books.Create(ctx, &seed[i]))
	}

	got, total, err := books.List(ctx, repository.BookFilter{Search: "hobbit", Sort: model.SortPrice})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, got, 2)
	assert.Equal(t, "Hobbit Cookbook", got[0].Title)
	assert.Equal(t, "The Hobbit", got[1].Title)

	got, total, err = books.List(ctx, repository.BookFilter{Sort: model.SortRating, Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, got, 2)
	assert.Equal(t, "Dune", got[0].Title)
	assert.Equal(t, "Hobbit Cookbook", got[1].Title)

	got, _, err = books.List(ctx, repository.BookFilter{GenreID: fantasy.ID, Featured: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsFeatured)

	similar, err := books.SameGenre(ctx, &seed[0], 5)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, "Hobbit Cookbook", similar[0].Title)
}

func TestBookUpdateAndDelete(t *testing.T) {
	database := dbtest.Open(t)
	ctx := context.Background()
	books := repository.NewBookRepository(database)

	book := &model.Book{Title: "Draft"}
	require.NoError(t, books.Create(ctx, book))
	assert.Equal(t, "en", book.Language)

	updated, err := books.Update(ctx, book.ID, query.Row{"title": "Final", "price_cents": 500})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, 500, updated.PriceCents)

	_, err = books.Update(ctx, "missing", query.Row{"title": "x"})
	assert.ErrorIs(t, err, repository.ErrBookNotFound)

	require.NoError(t, books.Delete(ctx, book.ID))
	assert.ErrorIs(t, books.Delete(ctx, book.ID), repository.ErrBookNotFound)

	n, err := books.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPagesInReadingOrder(t *testing.T) {
	database := dbtest.Open(t)
	ctx := context.Background()
	books := repository.NewBookRepository(database)
	catalog := repository.NewCatalogRepository(database)

	book := &model.Book{Title: "Paged"}
	require.NoError(t, books.Create(ctx, book))
	for _, n := range []int{3, 1, 2} {
		require.NoError(t, catalog.AddPage(ctx, &model.BookPage{BookID: book.ID, PageNumber: n, Content: "page"}))
	}

	pages, err := catalog.Pages(ctx, book.ID, 2)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].PageNumber)
	assert.Equal(t, 2, pages[1].PageNumber)

	require.NoError(t, catalog.DeletePages(ctx, book.ID))
	pages, err = catalog.Pages(ctx, book.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, pages)
}
