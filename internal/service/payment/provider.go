package payment

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDeclined      = errors.New("payment declined")
	ErrInvalidAmount = errors.New("invalid payment amount")
)

// Charge describes one payment attempt.
type Charge struct {
	UserID      string
	Email       string
	AmountCents int
	Currency    string
	Description string
}

// Receipt is returned for a successful charge.
type Receipt struct {
	Reference string
	ChargedAt time.Time
}

// Provider defines the interface that all payment providers must implement
type Provider interface {
	// Charge collects the payment or returns an error. Implementations must
	// stop waiting when ctx is done.
	Charge(ctx context.Context, charge Charge) (*Receipt, error)

	// Name returns the provider name (e.g., "simulated")
	Name() string
}
