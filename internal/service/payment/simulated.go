package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const ProviderSimulated = "simulated"

// SimulatedProvider approves every valid charge after a fixed delay.
type SimulatedProvider struct {
	delay time.Duration

	// Decline, when set, rejects the charges it returns true for.
	Decline func(Charge) bool
}

func NewSimulatedProvider(delay time.Duration) *SimulatedProvider {
	return &SimulatedProvider{delay: delay}
}

func (p *SimulatedProvider) Name() string {
	return ProviderSimulated
}

func (p *SimulatedProvider) Charge(ctx context.Context, charge Charge) (*Receipt, error) {
	if charge.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, charge.AmountCents)
	}

	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if p.Decline != nil && p.Decline(charge) {
		slog.Info("simulated payment declined", "user_id", charge.UserID, "amount_cents", charge.AmountCents)
		return nil, ErrDeclined
	}

	receipt := &Receipt{
		Reference: "sim_" + uuid.NewString(),
		ChargedAt: time.Now().UTC(),
	}
	slog.Info("simulated payment approved",
		"user_id", charge.UserID,
		"amount_cents", charge.AmountCents,
		"currency", charge.Currency,
		"reference", receipt.Reference)
	return receipt, nil
}
