package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/service/payment"
)

func TestSubscribeAndCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, token := env.signUp(t, "sub@example.com")

	fixed := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	prev := timeNow
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = prev })

	profile, err := env.subscriptions.Subscribe(ctx, user, model.TierAnnual, true)
	require.NoError(t, err)
	assert.Equal(t, model.TierAnnual, profile.SubscriptionTier)
	require.NotNil(t, profile.SubscriptionExpiresAt)
	assert.True(t, profile.SubscriptionExpiresAt.Equal(fixed.AddDate(1, 0, 0)))

	user = env.refresh(t, token)
	_, err = env.subscriptions.Subscribe(ctx, user, model.TierAnnual, true)
	assert.ErrorIs(t, err, ErrAlreadySubscribed)

	overview, err := env.subscriptions.Overview(ctx, user)
	require.NoError(t, err)
	assert.True(t, overview.Active)
	assert.Len(t, overview.Plans, 3)
	require.Len(t, overview.Transactions, 1)
	assert.Equal(t, 19999, overview.Transactions[0].AmountCents)
	assert.Equal(t, model.TransactionSubscription, overview.Transactions[0].TransactionType)

	profile, err = env.subscriptions.Cancel(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, model.TierFree, profile.SubscriptionTier)
	assert.Nil(t, profile.SubscriptionExpiresAt)

	user = env.refresh(t, token)
	_, err = env.subscriptions.Cancel(ctx, user)
	assert.ErrorIs(t, err, ErrNotSubscribed)
}

func TestSubscribeMonthlyPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "monthly@example.com")

	_, err := env.subscriptions.Subscribe(ctx, user, model.TierPremium, false)
	require.NoError(t, err)

	txns, err := env.txns.ByUser(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, 999, txns[0].AmountCents)
	require.NotNil(t, txns[0].PlanID)
	assert.Equal(t, model.TierPremium, *txns[0].PlanID)
}

func TestSubscribeRejectsInvalidPlans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "picky@example.com")

	for _, plan := range []string{model.TierFree, model.TierAdmin, "platinum"} {
		_, err := env.subscriptions.Subscribe(ctx, user, plan, false)
		assert.ErrorIs(t, err, ErrInvalidPlan, plan)
	}

	admin := &model.SessionUser{ID: user.ID, SubscriptionTier: model.TierAdmin}
	_, err := env.subscriptions.Subscribe(ctx, admin, model.TierPremium, false)
	assert.ErrorIs(t, err, ErrAdminPlan)
	_, err = env.subscriptions.Cancel(ctx, admin)
	assert.ErrorIs(t, err, ErrAdminPlan)
}

func TestSubscribeDeclined(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, token := env.signUp(t, "broke@example.com")
	env.payments.Decline = func(c payment.Charge) bool { return c.AmountCents > 1000 }

	_, err := env.subscriptions.Subscribe(ctx, user, model.TierAnnual, false)
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.Equal(t, model.TierFree, env.refresh(t, token).SubscriptionTier)

	txns, err := env.txns.ByUser(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, model.TransactionFailed, txns[0].Status)
}
