package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
)

// timeNow is the clock used for expiry decisions. Tests may replace it.
var timeNow = func() time.Time { return time.Now().UTC() }

// recordFailedTransaction stores a failed payment attempt. It detaches from
// the request context so a cancelled request still leaves a record.
func recordFailedTransaction(database *sqlx.DB, userID, currency string, txn *model.Transaction) {
	txn.Status = model.TransactionFailed
	recordDetachedTransaction(database, userID, currency, txn)
}

// recordPendingRefund stores a charge that was collected but could not be
// settled, so it can be refunded.
func recordPendingRefund(database *sqlx.DB, userID, currency string, txn *model.Transaction) {
	txn.Status = model.TransactionPending
	recordDetachedTransaction(database, userID, currency, txn)
}

func recordDetachedTransaction(database *sqlx.DB, userID, currency string, txn *model.Transaction) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	txn.UserID = userID
	txn.Currency = currency
	if err := repository.NewTransactionRepository(database).Create(ctx, txn); err != nil {
		slog.Error("failed to record transaction", "user_id", userID, "status", txn.Status, "error", err)
	}
}
