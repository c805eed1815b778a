package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/service/payment"
	"github.com/templui/folio/internal/validation"
)

func TestPurchase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "buyer@example.com")
	book := env.addBook(t, "Paid Book", 499, 3)

	res, err := env.librarySvc.Purchase(ctx, user, book.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AccessPurchased, res.Entry.AccessType)
	assert.Equal(t, model.TransactionCompleted, res.Transaction.Status)
	assert.Equal(t, 499, res.Transaction.AmountCents)
	require.NotNil(t, res.Transaction.Reference)
	assert.Contains(t, *res.Transaction.Reference, "sim_")

	_, err = env.librarySvc.Purchase(ctx, user, book.ID)
	assert.ErrorIs(t, err, ErrAlreadyOwned)

	items, err := env.librarySvc.Library(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Paid Book", items[0].Book.Title)
	assert.Nil(t, items[0].Progress)
}

func TestPurchaseRejectsFreeAndMissingBooks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "buyer@example.com")
	free := env.addBook(t, "Free Book", 0, 1)

	_, err := env.librarySvc.Purchase(ctx, user, free.ID)
	assert.ErrorIs(t, err, ErrBookIsFree)

	_, err = env.librarySvc.Purchase(ctx, user, "missing")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestPurchaseDeclinedRecordsFailedTransaction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "declined@example.com")
	book := env.addBook(t, "Too Expensive", 2999, 1)

	env.payments.Decline = func(payment.Charge) bool { return true }

	_, err := env.librarySvc.Purchase(ctx, user, book.ID)
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.ErrorIs(t, err, payment.ErrDeclined)

	_, err = env.library.Entry(ctx, user.ID, book.ID)
	assert.ErrorIs(t, err, repository.ErrNotInLibrary)

	txns, err := env.txns.ByUser(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, model.TransactionFailed, txns[0].Status)
	assert.Nil(t, txns[0].Reference)
}

func TestPurchaseCancelledPayment(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.signUp(t, "impatient@example.com")
	book := env.addBook(t, "Slow Checkout", 999, 1)

	env.librarySvc.paymentProvider = payment.NewSimulatedProvider(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := env.librarySvc.Purchase(ctx, user, book.ID)
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	txns, err := env.txns.ByUser(context.Background(), user.ID, 0)
	require.NoError(t, err)
	require.Len(t, txns, 1, "the failed attempt is recorded even though the request gave up")
	assert.Equal(t, model.TransactionFailed, txns[0].Status)
}

// racingProvider adds the book to the buyer's library while the charge is
// in flight, as a concurrent purchase would.
type racingProvider struct {
	*payment.SimulatedProvider
	library repository.LibraryRepository
	bookID  string
}

func (p *racingProvider) Charge(ctx context.Context, charge payment.Charge) (*payment.Receipt, error) {
	receipt, err := p.SimulatedProvider.Charge(ctx, charge)
	if err != nil {
		return nil, err
	}
	entry := &model.LibraryEntry{UserID: charge.UserID, BookID: p.bookID, AccessType: model.AccessPurchased}
	if err := p.library.Add(ctx, entry); err != nil {
		return nil, err
	}
	return receipt, nil
}

func TestPurchaseLostRaceRecordsPendingRefund(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "racer@example.com")
	book := env.addBook(t, "Contested", 799, 1)

	env.librarySvc.paymentProvider = &racingProvider{
		SimulatedProvider: payment.NewSimulatedProvider(0),
		library:           env.library,
		bookID:            book.ID,
	}

	_, err := env.librarySvc.Purchase(ctx, user, book.ID)
	assert.ErrorIs(t, err, ErrAlreadyOwned)

	txns, err := env.txns.ByUser(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, txns, 1, "the collected charge is kept for a refund")
	assert.Equal(t, model.TransactionPending, txns[0].Status)
	assert.Equal(t, 799, txns[0].AmountCents)
	require.NotNil(t, txns[0].Reference)
	assert.Contains(t, *txns[0].Reference, "sim_")
}

func TestWishlist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "wisher@example.com")
	book := env.addBook(t, "Someday", 799, 1)

	_, err := env.librarySvc.AddToWishlist(ctx, user.ID, book.ID)
	require.NoError(t, err)
	_, err = env.librarySvc.AddToWishlist(ctx, user.ID, book.ID)
	assert.ErrorIs(t, err, ErrAlreadyWishlisted)
	_, err = env.librarySvc.AddToWishlist(ctx, user.ID, "missing")
	assert.ErrorIs(t, err, ErrBookNotFound)

	books, err := env.librarySvc.Wishlist(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, book.ID, books[0].ID)

	require.NoError(t, env.librarySvc.RemoveFromWishlist(ctx, user.ID, book.ID))
	assert.ErrorIs(t, env.librarySvc.RemoveFromWishlist(ctx, user.ID, book.ID), ErrNotWishlisted)
}

func TestReadingLists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, _ := env.signUp(t, "curator@example.com")
	other, _ := env.signUp(t, "other@example.com")
	book := env.addBook(t, "Listed", 0, 1)

	_, err := env.librarySvc.CreateReadingList(ctx, owner.ID, NewReadingList{Name: "  "})
	var fe *validation.FieldError
	assert.ErrorAs(t, err, &fe)

	list, err := env.librarySvc.CreateReadingList(ctx, owner.ID, NewReadingList{Name: " Summer ", Description: "beach"})
	require.NoError(t, err)
	assert.Equal(t, "Summer", list.Name)

	require.NoError(t, env.librarySvc.AddToReadingList(ctx, owner.ID, list.ID, book.ID))
	assert.ErrorIs(t, env.librarySvc.AddToReadingList(ctx, owner.ID, list.ID, book.ID), ErrAlreadyInList)
	assert.ErrorIs(t, env.librarySvc.AddToReadingList(ctx, other.ID, list.ID, book.ID), ErrReadingListNotFound)

	lists, err := env.librarySvc.ReadingLists(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	require.Len(t, lists[0].Books, 1)
	assert.Equal(t, "Listed", lists[0].Books[0].Title)

	lists, err = env.librarySvc.ReadingLists(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, lists)

	assert.ErrorIs(t, env.librarySvc.RemoveFromReadingList(ctx, other.ID, list.ID, book.ID), ErrReadingListNotFound)
	require.NoError(t, env.librarySvc.RemoveFromReadingList(ctx, owner.ID, list.ID, book.ID))
	assert.ErrorIs(t, env.librarySvc.RemoveFromReadingList(ctx, owner.ID, list.ID, book.ID), ErrNotInList)

	assert.ErrorIs(t, env.librarySvc.DeleteReadingList(ctx, other.ID, list.ID), ErrReadingListNotFound)
	require.NoError(t, env.librarySvc.DeleteReadingList(ctx, owner.ID, list.ID))
}
