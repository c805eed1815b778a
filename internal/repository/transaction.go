package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/query"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	ByUser(ctx context.Context, userID string, limit int) ([]model.Transaction, error)
	RecentCompleted(ctx context.Context, limit int) ([]model.Transaction, error)
}

type transactionRepository struct {
	db sqlx.ExtContext
}

func NewTransactionRepository(db sqlx.ExtContext) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, t *model.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = model.TransactionPending
	}
	if t.Currency == "" {
		t.Currency = "usd"
	}

	res := query.From[model.Transaction](r.db, "transactions").
		Insert(query.Row{
			"id":               t.ID,
			"user_id":          t.UserID,
			"book_id":          t.BookID,
			"plan_id":          t.PlanID,
			"amount_cents":     t.AmountCents,
			"currency":         t.Currency,
			"transaction_type": t.TransactionType,
			"status":           t.Status,
			"reference":        t.Reference,
		}).
		Single(ctx)
	if res.Err != nil {
		return res.Err
	}

	*t = *res.Row()
	return nil
}

func (r *transactionRepository) ByUser(ctx context.Context, userID string, limit int) ([]model.Transaction, error) {
	b := query.From[model.Transaction](r.db, "transactions").
		Eq("user_id", userID).
		Order("created_at", query.Desc())
	if limit > 0 {
		b.Limit(limit)
	}

	res := b.Execute(ctx)
	return res.Rows, res.Err
}

func (r *transactionRepository) RecentCompleted(ctx context.Context, limit int) ([]model.Transaction, error) {
	res := query.From[model.Transaction](r.db, "transactions").
		Eq("status", model.TransactionCompleted).
		Order("created_at", query.Desc()).
		Limit(limit).
		Execute(ctx)
	return res.Rows, res.Err
}
