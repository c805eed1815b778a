package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/folio/internal/model"
)

func TestOpenPreviewWithoutAccess(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.signUp(t, "browser@example.com")
	book := env.addBook(t, "Locked", 499, 5)

	session, err := env.readingSvc.Open(context.Background(), user, book.ID)
	require.NoError(t, err)

	assert.True(t, session.Preview)
	assert.Empty(t, session.Access)
	assert.Equal(t, 5, session.TotalPages)
	require.Len(t, session.Pages, PreviewPages)
	assert.Equal(t, 1, session.Pages[0].PageNumber)
	assert.Contains(t, session.Pages[0].HTML, "<strong>text</strong>")
	assert.NotNil(t, session.Bookmarks)
}

func TestOpenFreeBook(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.signUp(t, "free@example.com")
	book := env.addBook(t, "Public Domain", 0, 3)

	session, err := env.readingSvc.Open(context.Background(), user, book.ID)
	require.NoError(t, err)
	assert.False(t, session.Preview)
	assert.Len(t, session.Pages, 3)
}

func TestOpenOwnedBook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "owner@example.com")
	book := env.addBook(t, "Bought", 499, 4)

	_, err := env.librarySvc.Purchase(ctx, user, book.ID)
	require.NoError(t, err)

	session, err := env.readingSvc.Open(ctx, user, book.ID)
	require.NoError(t, err)
	assert.False(t, session.Preview)
	assert.Equal(t, model.AccessPurchased, session.Access)
	assert.Len(t, session.Pages, 4)
}

func TestOpenGrantsSubscriptionAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, token := env.signUp(t, "subscriber@example.com")
	book := env.addBook(t, "Premium Read", 1299, 3)

	_, err := env.subscriptions.Subscribe(ctx, user, model.TierPremium, false)
	require.NoError(t, err)
	user = env.refresh(t, token)

	session, err := env.readingSvc.Open(ctx, user, book.ID)
	require.NoError(t, err)
	assert.False(t, session.Preview)
	assert.Equal(t, model.AccessSubscription, session.Access)
	assert.Len(t, session.Pages, 3)

	entry, err := env.library.Entry(ctx, user.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AccessSubscription, entry.AccessType)

	_, err = env.readingSvc.Open(ctx, user, book.ID)
	require.NoError(t, err, "opening again reuses the entry")
}

func TestOpenMissingBook(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.signUp(t, "lost@example.com")

	_, err := env.readingSvc.Open(context.Background(), user, "missing")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestSaveProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "progress@example.com")
	book := env.addBook(t, "Long Read", 0, 10)

	p, err := env.readingSvc.SaveProgress(ctx, user, book.ID, ProgressUpdate{CurrentPage: 3, MinutesReading: 12})
	require.NoError(t, err)
	assert.Equal(t, 3, p.CurrentPage)
	assert.False(t, p.IsCompleted)

	p, err = env.readingSvc.SaveProgress(ctx, user, book.ID, ProgressUpdate{CurrentPage: 2, MinutesReading: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 3, p.TotalPagesRead, "pages read never goes backwards")
	assert.Equal(t, 17, p.ReadingTimeMinutes)

	_, err = env.readingSvc.SaveProgress(ctx, user, book.ID, ProgressUpdate{CurrentPage: 10, Completed: true})
	require.NoError(t, err)
	_, err = env.readingSvc.SaveProgress(ctx, user, book.ID, ProgressUpdate{CurrentPage: 10, Completed: true})
	require.NoError(t, err)

	profile, err := env.profiles.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.TotalBooksRead, "completion counts once")

	_, err = env.readingSvc.SaveProgress(ctx, user, book.ID, ProgressUpdate{CurrentPage: 0})
	assert.ErrorIs(t, err, ErrInvalidPage)
	_, err = env.readingSvc.SaveProgress(ctx, user, book.ID, ProgressUpdate{CurrentPage: 11})
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestBookmarks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "marker@example.com")
	book := env.addBook(t, "Marked", 0, 5)

	mark, err := env.readingSvc.AddBookmark(ctx, user.ID, book.ID, 2, "  good bit ")
	require.NoError(t, err)
	require.NotNil(t, mark.Note)
	assert.Equal(t, "good bit", *mark.Note)

	_, err = env.readingSvc.AddBookmark(ctx, user.ID, book.ID, 2, "")
	assert.ErrorIs(t, err, ErrBookmarkExists)
	_, err = env.readingSvc.AddBookmark(ctx, user.ID, book.ID, 0, "")
	assert.ErrorIs(t, err, ErrInvalidPage)

	marks, err := env.readingSvc.Bookmarks(ctx, user.ID, book.ID)
	require.NoError(t, err)
	assert.Len(t, marks, 1)

	require.NoError(t, env.readingSvc.RemoveBookmark(ctx, user.ID, book.ID, 2))
	assert.ErrorIs(t, env.readingSvc.RemoveBookmark(ctx, user.ID, book.ID, 2), ErrBookmarkNotFound)
}
