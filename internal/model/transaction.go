package model

import "time"

const (
	TransactionPurchase     = "purchase"
	TransactionSubscription = "subscription"
)

const (
	TransactionPending   = "pending"
	TransactionCompleted = "completed"
	TransactionFailed    = "failed"
)

type Transaction struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	BookID          *string   `db:"book_id" json:"book_id,omitempty"`
	PlanID          *string   `db:"plan_id" json:"plan_id,omitempty"`
	AmountCents     int       `db:"amount_cents" json:"amount_cents"`
	Currency        string    `db:"currency" json:"currency"`
	TransactionType string    `db:"transaction_type" json:"transaction_type"`
	Status          string    `db:"status" json:"status"`
	Reference       *string   `db:"reference" json:"reference,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

func (t *Transaction) FormatAmount() string {
	return FormatCents(t.AmountCents, t.Currency)
}
