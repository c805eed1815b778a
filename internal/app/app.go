package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/templui/folio/internal/config"
	"github.com/templui/folio/internal/db"
	"github.com/templui/folio/internal/markdown"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/service"
	"github.com/templui/folio/internal/service/payment"
	"github.com/templui/folio/internal/storage"
)

type App struct {
	Cfg                   *config.Config
	DB                    *sqlx.DB
	AuthService           *service.AuthService
	EmailService          *service.EmailService
	CatalogService        *service.CatalogService
	LibraryService        *service.LibraryService
	ReadingService        *service.ReadingService
	SubscriptionService   *service.SubscriptionService
	RecommendationService *service.RecommendationService
	AdminService          *service.AdminService
	ImportService         *service.ImportService
	PaymentService        payment.Provider
	Storage               storage.Storage
}

// New opens the database and wires every service. Migrations run unless
// skipMigrations is set, which the CLI uses to manage them itself.
func New(ctx context.Context, cfg *config.Config, skipMigrations bool) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if !skipMigrations {
		err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	bookRepository := repository.NewBookRepository(database)
	catalogRepository := repository.NewCatalogRepository(database)
	libraryRepository := repository.NewLibraryRepository(database)
	readingRepository := repository.NewReadingRepository(database)
	readingListRepository := repository.NewReadingListRepository(database)
	transactionRepository := repository.NewTransactionRepository(database)

	// Storage: S3 when a bucket is configured, otherwise in memory
	var coverStorage storage.Storage
	if cfg.StorageEnabled() {
		coverStorage, err = storage.New(ctx, cfg)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
	} else {
		coverStorage = storage.NewMemoryStorage(cfg.AppURL + "/files")
	}

	paymentProvider, err := payment.NewProvider(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize payment provider: %w", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	parser := markdown.NewParser()

	authService := service.NewAuthService(
		database,
		userRepository,
		profileRepository,
		emailService,
		service.AuthConfig{
			Driver:             cfg.DBDriver,
			SessionExpiry:      cfg.SessionExpiry,
			IsProduction:       cfg.IsProduction(),
			QuickLoginEnabled:  cfg.QuickLoginEnabled(),
			QuickLoginPassword: cfg.QuickLoginPassword,
		},
	)
	catalogService := service.NewCatalogService(bookRepository, catalogRepository, libraryRepository, readingRepository)
	libraryService := service.NewLibraryService(
		database,
		bookRepository,
		libraryRepository,
		readingRepository,
		readingListRepository,
		paymentProvider,
		emailService,
		cfg.Currency,
	)
	readingService := service.NewReadingService(
		database,
		bookRepository,
		catalogRepository,
		libraryRepository,
		readingRepository,
		parser,
	)
	subscriptionService := service.NewSubscriptionService(
		database,
		profileRepository,
		transactionRepository,
		paymentProvider,
		emailService,
		cfg.Currency,
	)
	adminService := service.NewAdminService(
		database,
		bookRepository,
		catalogRepository,
		profileRepository,
		transactionRepository,
		coverStorage,
		cfg.Currency,
	)

	return &App{
		Cfg:                   cfg,
		DB:                    database,
		AuthService:           authService,
		EmailService:          emailService,
		CatalogService:        catalogService,
		LibraryService:        libraryService,
		ReadingService:        readingService,
		SubscriptionService:   subscriptionService,
		RecommendationService: service.NewRecommendationService(bookRepository),
		AdminService:          adminService,
		ImportService:         service.NewImportService(database, parser),
		PaymentService:        paymentProvider,
		Storage:               coverStorage,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
