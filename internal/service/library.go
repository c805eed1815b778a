package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/templui/folio/internal/db"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/service/payment"
	"github.com/templui/folio/internal/validation"
)

var (
	ErrAlreadyOwned        = errors.New("book already in your library")
	ErrBookIsFree          = errors.New("book is free to read")
	ErrPaymentFailed       = errors.New("payment failed")
	ErrAlreadyWishlisted   = errors.New("book already in wishlist")
	ErrNotWishlisted       = errors.New("book not in wishlist")
	ErrReadingListNotFound = errors.New("reading list not found")
	ErrAlreadyInList       = errors.New("book already in reading list")
	ErrNotInList           = errors.New("book not in reading list")
)

type PurchaseResult struct {
	Entry       *model.LibraryEntry `json:"entry"`
	Transaction *model.Transaction  `json:"transaction"`
}

type LibraryService struct {
	db                    *sqlx.DB
	bookRepository        repository.BookRepository
	libraryRepository     repository.LibraryRepository
	readingRepository     repository.ReadingRepository
	readingListRepository repository.ReadingListRepository
	paymentProvider       payment.Provider
	emailService          *EmailService
	currency              string
}

func NewLibraryService(
	database *sqlx.DB,
	bookRepository repository.BookRepository,
	libraryRepository repository.LibraryRepository,
	readingRepository repository.ReadingRepository,
	readingListRepository repository.ReadingListRepository,
	paymentProvider payment.Provider,
	emailService *EmailService,
	currency string,
) *LibraryService {
	if currency == "" {
		currency = "usd"
	}
	return &LibraryService{
		db:                    database,
		bookRepository:        bookRepository,
		libraryRepository:     libraryRepository,
		readingRepository:     readingRepository,
		readingListRepository: readingListRepository,
		paymentProvider:       paymentProvider,
		emailService:          emailService,
		currency:              currency,
	}
}

// Library lists the user's books, most recently acquired first, with progress.
func (s *LibraryService) Library(ctx context.Context, userID string) ([]model.LibraryItem, error) {
	entries, err := s.libraryRepository.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}
	if len(entries) == 0 {
		return []model.LibraryItem{}, nil
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.BookID
	}
	books, err := s.booksByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	progress, err := s.readingRepository.ProgressByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	progressByBook := make(map[string]*model.ReadingProgress, len(progress))
	for i := range progress {
		progressByBook[progress[i].BookID] = &progress[i]
	}

	items := make([]model.LibraryItem, 0, len(entries))
	for _, e := range entries {
		book, ok := books[e.BookID]
		if !ok {
			continue
		}
		items = append(items, model.LibraryItem{Entry: e, Book: book, Progress: progressByBook[e.BookID]})
	}
	return items, nil
}

func (s *LibraryService) booksByID(ctx context.Context, ids []string) (map[string]model.Book, error) {
	books, err := s.bookRepository.ByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load books: %w", err)
	}
	out := make(map[string]model.Book, len(books))
	for _, b := range books {
		out[b.ID] = b
	}
	return out, nil
}

// Purchase charges the user for a book and adds it to their library. The
// payment runs before the database transaction; a declined or cancelled
// payment is recorded as a failed transaction.
func (s *LibraryService) Purchase(ctx context.Context, user *model.SessionUser, bookID string) (*PurchaseResult, error) {
	book, err := s.bookRepository.ByID(ctx, bookID)
	if errors.Is(err, repository.ErrBookNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load book: %w", err)
	}
	if book.PriceCents <= 0 {
		return nil, ErrBookIsFree
	}

	_, err = s.libraryRepository.Entry(ctx, user.ID, bookID)
	if err == nil {
		return nil, ErrAlreadyOwned
	}
	if !errors.Is(err, repository.ErrNotInLibrary) {
		return nil, fmt.Errorf("failed to check library: %w", err)
	}

	receipt, payErr := s.paymentProvider.Charge(ctx, payment.Charge{
		UserID:      user.ID,
		Email:       user.Email,
		AmountCents: book.PriceCents,
		Currency:    s.currency,
		Description: book.Title,
	})
	if payErr != nil {
		s.recordFailedPayment(user.ID, &model.Transaction{
			BookID:          &book.ID,
			AmountCents:     book.PriceCents,
			TransactionType: model.TransactionPurchase,
		})
		slog.Warn("book payment failed", "user_id", user.ID, "book_id", bookID, "error", payErr)
		return nil, fmt.Errorf("%w: %w", ErrPaymentFailed, payErr)
	}

	result := &PurchaseResult{}
	err = db.WithTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		txn := &model.Transaction{
			UserID:          user.ID,
			BookID:          &book.ID,
			AmountCents:     book.PriceCents,
			Currency:        s.currency,
			TransactionType: model.TransactionPurchase,
			Status:          model.TransactionCompleted,
			Reference:       &receipt.Reference,
		}
		if err := repository.NewTransactionRepository(tx).Create(ctx, txn); err != nil {
			return fmt.Errorf("record transaction: %w", err)
		}

		entry := &model.LibraryEntry{UserID: user.ID, BookID: book.ID, AccessType: model.AccessPurchased}
		if err := repository.NewLibraryRepository(tx).Add(ctx, entry); err != nil {
			return err
		}

		result.Transaction = txn
		result.Entry = entry
		return nil
	})
	if errors.Is(err, repository.ErrAlreadyInLibrary) {
		// A concurrent purchase won after this charge went through.
		recordPendingRefund(s.db, user.ID, s.currency, &model.Transaction{
			BookID:          &book.ID,
			AmountCents:     book.PriceCents,
			TransactionType: model.TransactionPurchase,
			Reference:       &receipt.Reference,
		})
		slog.Warn("charge collected for a book already owned, refund pending",
			"user_id", user.ID, "book_id", book.ID, "reference", receipt.Reference)
		return nil, ErrAlreadyOwned
	}
	if err != nil {
		return nil, fmt.Errorf("failed to complete purchase: %w", err)
	}

	slog.Info("book purchased", "user_id", user.ID, "book_id", book.ID, "amount_cents", book.PriceCents)

	amount := model.FormatCents(book.PriceCents, s.currency)
	if err := s.emailService.SendPurchaseReceipt(ctx, user.Email, book.Title, amount, receipt.Reference); err != nil {
		slog.Error("failed to send purchase receipt", "user_id", user.ID, "error", err)
	}

	return result, nil
}

// recordFailedPayment stores a failed transaction. It uses a fresh context so
// a cancelled request still leaves a trace.
func (s *LibraryService) recordFailedPayment(userID string, txn *model.Transaction) {
	recordFailedTransaction(s.db, userID, s.currency, txn)
}

func (s *LibraryService) AddToWishlist(ctx context.Context, userID, bookID string) (*model.WishlistItem, error) {
	if _, err := s.bookRepository.ByID(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	item, err := s.libraryRepository.AddToWishlist(ctx, userID, bookID)
	if errors.Is(err, repository.ErrAlreadyWishlisted) {
		return nil, ErrAlreadyWishlisted
	}
	return item, err
}

func (s *LibraryService) RemoveFromWishlist(ctx context.Context, userID, bookID string) error {
	err := s.libraryRepository.RemoveFromWishlist(ctx, userID, bookID)
	if errors.Is(err, repository.ErrNotWishlisted) {
		return ErrNotWishlisted
	}
	return err
}

func (s *LibraryService) Wishlist(ctx context.Context, userID string) ([]model.Book, error) {
	items, err := s.libraryRepository.Wishlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.BookID
	}
	books, err := s.booksByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]model.Book, 0, len(items))
	for _, it := range items {
		if b, ok := books[it.BookID]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

type NewReadingList struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

func (s *LibraryService) CreateReadingList(ctx context.Context, userID string, in NewReadingList) (*model.ReadingList, error) {
	if err := validation.ValidateText("name", in.Name, 100); err != nil {
		return nil, err
	}

	list := &model.ReadingList{
		UserID:   userID,
		Name:     strings.TrimSpace(in.Name),
		IsPublic: in.IsPublic,
		Books:    []model.Book{},
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		list.Description = &d
	}

	if err := s.readingListRepository.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to create reading list: %w", err)
	}
	list.Books = []model.Book{}
	return list, nil
}

// ReadingLists returns the user's lists with their books.
func (s *LibraryService) ReadingLists(ctx context.Context, userID string) ([]model.ReadingList, error) {
	lists, err := s.readingListRepository.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reading lists: %w", err)
	}
	if len(lists) == 0 {
		return []model.ReadingList{}, nil
	}

	listIDs := make([]string, len(lists))
	for i, l := range lists {
		listIDs[i] = l.ID
	}
	entries, err := s.readingListRepository.Books(ctx, listIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load reading list books: %w", err)
	}

	bookIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		bookIDs = append(bookIDs, e.BookID)
	}
	books, err := s.booksByID(ctx, bookIDs)
	if err != nil {
		return nil, err
	}

	byList := make(map[string][]model.Book, len(lists))
	for _, e := range entries {
		if b, ok := books[e.BookID]; ok {
			byList[e.ListID] = append(byList[e.ListID], b)
		}
	}
	for i := range lists {
		lists[i].Books = byList[lists[i].ID]
		if lists[i].Books == nil {
			lists[i].Books = []model.Book{}
		}
	}
	return lists, nil
}

func (s *LibraryService) DeleteReadingList(ctx context.Context, userID, listID string) error {
	err := s.readingListRepository.Delete(ctx, listID, userID)
	if errors.Is(err, repository.ErrReadingListNotFound) {
		return ErrReadingListNotFound
	}
	return err
}

// ownedList returns the list when it belongs to userID.
func (s *LibraryService) ownedList(ctx context.Context, userID, listID string) (*model.ReadingList, error) {
	list, err := s.readingListRepository.ByID(ctx, listID)
	if errors.Is(err, repository.ErrReadingListNotFound) || (err == nil && list.UserID != userID) {
		return nil, ErrReadingListNotFound
	}
	return list, err
}

func (s *LibraryService) AddToReadingList(ctx context.Context, userID, listID, bookID string) error {
	if _, err := s.ownedList(ctx, userID, listID); err != nil {
		return err
	}
	if _, err := s.bookRepository.ByID(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	err := s.readingListRepository.AddBook(ctx, listID, bookID)
	if errors.Is(err, repository.ErrAlreadyInList) {
		return ErrAlreadyInList
	}
	return err
}

func (s *LibraryService) RemoveFromReadingList(ctx context.Context, userID, listID, bookID string) error {
	if _, err := s.ownedList(ctx, userID, listID); err != nil {
		return err
	}

	err := s.readingListRepository.RemoveBook(ctx, listID, bookID)
	if errors.Is(err, repository.ErrNotInList) {
		return ErrNotInList
	}
	return err
}
