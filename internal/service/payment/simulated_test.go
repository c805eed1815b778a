package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/folio/internal/config"
)

func TestSimulatedChargeApproves(t *testing.T) {
	p := NewSimulatedProvider(0)

	receipt, err := p.Charge(context.Background(), Charge{UserID: "u1", AmountCents: 999, Currency: "usd"})
	require.NoError(t, err)
	assert.Contains(t, receipt.Reference, "sim_")
	assert.False(t, receipt.ChargedAt.IsZero())
}

func TestSimulatedChargeRejectsBadAmounts(t *testing.T) {
	p := NewSimulatedProvider(0)

	_, err := p.Charge(context.Background(), Charge{AmountCents: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSimulatedChargeHonoursCancellation(t *testing.T) {
	p := NewSimulatedProvider(time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Charge(ctx, Charge{AmountCents: 100})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSimulatedChargeDecline(t *testing.T) {
	p := NewSimulatedProvider(0)
	p.Decline = func(c Charge) bool { return c.UserID == "broke" }

	_, err := p.Charge(context.Background(), Charge{UserID: "broke", AmountCents: 100})
	assert.ErrorIs(t, err, ErrDeclined)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(&config.Config{PaymentProvider: "simulated"})
	require.NoError(t, err)
	assert.Equal(t, ProviderSimulated, p.Name())

	_, err = NewProvider(&config.Config{PaymentProvider: "stripe"})
	assert.Error(t, err)
}
