package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/templui/folio/internal/db/dbtest"
	"github.com/templui/folio/internal/markdown"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/service/payment"
	"github.com/templui/folio/internal/storage"
)

const testPassword = "correct-horse-battery"

type testEnv struct {
	db       *sqlx.DB
	payments *payment.SimulatedProvider
	store    *storage.MemoryStorage

	books    repository.BookRepository
	catalogs repository.CatalogRepository
	library  repository.LibraryRepository
	reading  repository.ReadingRepository
	profiles repository.ProfileRepository
	txns     repository.TransactionRepository

	auth            *AuthService
	catalog         *CatalogService
	librarySvc      *LibraryService
	readingSvc      *ReadingService
	subscriptions   *SubscriptionService
	admin           *AdminService
	recommendations *RecommendationService
	imports         *ImportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := dbtest.Open(t)
	env := &testEnv{
		db:       database,
		payments: payment.NewSimulatedProvider(0),
		store:    storage.NewMemoryStorage("http://covers.test"),
		books:    repository.NewBookRepository(database),
		catalogs: repository.NewCatalogRepository(database),
		library:  repository.NewLibraryRepository(database),
		reading:  repository.NewReadingRepository(database),
		profiles: repository.NewProfileRepository(database),
		txns:     repository.NewTransactionRepository(database),
	}

	email := NewEmailService("", "noreply@example.com", "http://localhost:8090", "Folio", true)
	parser := markdown.NewParser()
	users := repository.NewUserRepository(database)

	env.auth = NewAuthService(database, users, env.profiles, email, AuthConfig{
		Driver:             "sqlite",
		SessionExpiry:      7 * 24 * time.Hour,
		QuickLoginEnabled:  true,
		QuickLoginPassword: "password123",
	})
	env.catalog = NewCatalogService(env.books, env.catalogs, env.library, env.reading)
	env.librarySvc = NewLibraryService(database, env.books, env.library, env.reading,
		repository.NewReadingListRepository(database), env.payments, email, "usd")
	env.readingSvc = NewReadingService(database, env.books, env.catalogs, env.library, env.reading, parser)
	env.subscriptions = NewSubscriptionService(database, env.profiles, env.txns, env.payments, email, "usd")
	env.admin = NewAdminService(database, env.books, env.catalogs, env.profiles, env.txns, env.store, "usd")
	env.recommendations = NewRecommendationService(env.books)
	env.imports = NewImportService(database, parser)
	return env
}

// signUp registers email and returns the signed-in identity and token.
func (e *testEnv) signUp(t *testing.T, email string) (*model.SessionUser, string) {
	t.Helper()

	res := e.auth.SignUp(context.Background(), email, testPassword)
	require.True(t, res.Success, res.Error)

	user := e.auth.CurrentUser(context.Background(), res.Session.Token)
	require.NotNil(t, user)
	return user, res.Session.Token
}

// refresh reloads the identity behind token.
func (e *testEnv) refresh(t *testing.T, token string) *model.SessionUser {
	t.Helper()

	user := e.auth.CurrentUser(context.Background(), token)
	require.NotNil(t, user)
	return user
}

// addBook creates a book with pages numbered from 1.
func (e *testEnv) addBook(t *testing.T, title string, priceCents, pages int) *model.Book {
	t.Helper()
	ctx := context.Background()

	book := &model.Book{Title: title, PriceCents: priceCents, PageCount: pages}
	require.NoError(t, e.books.Create(ctx, book))

	for i := 1; i <= pages; i++ {
		require.NoError(t, e.catalogs.AddPage(ctx, &model.BookPage{
			BookID:     book.ID,
			PageNumber: i,
			Content:    fmt.Sprintf("## Page %d\n\nSome **text**.", i),
		}))
	}
	return book
}
