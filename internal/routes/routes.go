package routes

import (
	"net/http"
	"time"

	"github.com/templui/folio/internal/app"
	"github.com/templui/folio/internal/handler"
	"github.com/templui/folio/internal/middleware"
	"github.com/templui/folio/internal/storage"
)

// SetupRoutes builds the API handler. The returned rate limiter must be
// stopped on shutdown.
func SetupRoutes(app *app.App) (http.Handler, *middleware.RateLimiter) {
	// Handlers
	health := handler.NewHealthHandler(app.DB, app.Cfg.DBDriver)
	auth := handler.NewAuthHandler(app.AuthService)
	catalog := handler.NewCatalogHandler(app.CatalogService, app.RecommendationService)
	library := handler.NewLibraryHandler(app.LibraryService)
	reading := handler.NewReadingHandler(app.ReadingService)
	subscription := handler.NewSubscriptionHandler(app.SubscriptionService)
	admin := handler.NewAdminHandler(app.AdminService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Health)

	if mem, ok := app.Storage.(*storage.MemoryStorage); ok {
		files := handler.NewFilesHandler(mem)
		mux.HandleFunc("GET /files/{key...}", files.Serve)
	}

	// Catalog
	mux.HandleFunc("GET /api/books", catalog.Browse)
	mux.HandleFunc("GET /api/books/featured", catalog.Featured)
	mux.HandleFunc("GET /api/books/trending", catalog.Trending)
	mux.HandleFunc("GET /api/books/{id}", catalog.Book)
	mux.HandleFunc("GET /api/books/{id}/similar", catalog.Similar)
	mux.HandleFunc("GET /api/genres", catalog.Genres)

	// Auth (rate limited)
	rateLimiter := middleware.NewRateLimiter(10, time.Minute)

	mux.HandleFunc("POST /api/auth/login", rateLimiter.Limit(auth.Login))
	mux.HandleFunc("POST /api/auth/signup", rateLimiter.Limit(auth.Signup))
	mux.HandleFunc("POST /api/auth/quick-login", rateLimiter.Limit(auth.QuickLogin))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(auth.Me))

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	mux.HandleFunc("GET /api/recommendations", middleware.RequireAuth(catalog.Recommendations))

	// Library
	mux.HandleFunc("GET /api/library", middleware.RequireAuth(library.Library))
	mux.HandleFunc("POST /api/books/{id}/purchase", middleware.RequireAuth(library.Purchase))
	mux.HandleFunc("GET /api/wishlist", middleware.RequireAuth(library.Wishlist))
	mux.HandleFunc("POST /api/wishlist/{bookID}", middleware.RequireAuth(library.AddToWishlist))
	mux.HandleFunc("DELETE /api/wishlist/{bookID}", middleware.RequireAuth(library.RemoveFromWishlist))
	mux.HandleFunc("GET /api/reading-lists", middleware.RequireAuth(library.ReadingLists))
	mux.HandleFunc("POST /api/reading-lists", middleware.RequireAuth(library.CreateReadingList))
	mux.HandleFunc("DELETE /api/reading-lists/{id}", middleware.RequireAuth(library.DeleteReadingList))
	mux.HandleFunc("POST /api/reading-lists/{id}/books/{bookID}", middleware.RequireAuth(library.AddToReadingList))
	mux.HandleFunc("DELETE /api/reading-lists/{id}/books/{bookID}", middleware.RequireAuth(library.RemoveFromReadingList))

	// Reader
	mux.HandleFunc("GET /api/read/{id}", middleware.RequireAuth(reading.Open))
	mux.HandleFunc("PUT /api/read/{id}/progress", middleware.RequireAuth(reading.SaveProgress))
	mux.HandleFunc("GET /api/read/{id}/bookmarks", middleware.RequireAuth(reading.Bookmarks))
	mux.HandleFunc("POST /api/read/{id}/bookmarks", middleware.RequireAuth(reading.AddBookmark))
	mux.HandleFunc("DELETE /api/read/{id}/bookmarks/{page}", middleware.RequireAuth(reading.RemoveBookmark))

	// Subscription
	mux.HandleFunc("GET /api/subscription", middleware.RequireAuth(subscription.Overview))
	mux.HandleFunc("POST /api/subscription", middleware.RequireAuth(subscription.Subscribe))
	mux.HandleFunc("DELETE /api/subscription", middleware.RequireAuth(subscription.Cancel))

	// ============================================================================
	// ADMIN ROUTES
	// ============================================================================

	mux.HandleFunc("GET /api/admin/stats", middleware.RequireAdmin(admin.Stats))
	mux.HandleFunc("GET /api/admin/books", middleware.RequireAdmin(admin.Books))
	mux.HandleFunc("POST /api/admin/books", middleware.RequireAdmin(admin.CreateBook))
	mux.HandleFunc("PATCH /api/admin/books/{id}", middleware.RequireAdmin(admin.UpdateBook))
	mux.HandleFunc("DELETE /api/admin/books/{id}", middleware.RequireAdmin(admin.DeleteBook))
	mux.HandleFunc("POST /api/admin/books/{id}/cover", middleware.RequireAdmin(admin.UploadCover))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Recover,
		middleware.Config(app.Cfg),
		middleware.AuthMiddleware(app.AuthService), // before logging so user_id is recorded
		middleware.RequestLogging,
		middleware.SameOrigin(app.Cfg.AppURL),
	)

	return handler, rateLimiter
}
