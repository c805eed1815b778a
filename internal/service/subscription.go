package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/templui/folio/internal/db"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/service/payment"
)

const recentTransactionLimit = 20

var (
	ErrInvalidPlan       = errors.New("invalid subscription plan")
	ErrAlreadySubscribed = errors.New("already subscribed to this plan")
	ErrNotSubscribed     = errors.New("no active subscription")
	ErrAdminPlan         = errors.New("admin accounts cannot change plans")
)

type SubscriptionOverview struct {
	Plans        []model.Plan        `json:"plans"`
	Profile      *model.Profile      `json:"profile"`
	Active       bool                `json:"active"`
	Transactions []model.Transaction `json:"transactions"`
}

type SubscriptionService struct {
	db                    *sqlx.DB
	profileRepository     repository.ProfileRepository
	transactionRepository repository.TransactionRepository
	paymentProvider       payment.Provider
	emailService          *EmailService
	currency              string
}

func NewSubscriptionService(
	database *sqlx.DB,
	profileRepository repository.ProfileRepository,
	transactionRepository repository.TransactionRepository,
	paymentProvider payment.Provider,
	emailService *EmailService,
	currency string,
) *SubscriptionService {
	if currency == "" {
		currency = "usd"
	}
	return &SubscriptionService{
		db:                    database,
		profileRepository:     profileRepository,
		transactionRepository: transactionRepository,
		paymentProvider:       paymentProvider,
		emailService:          emailService,
		currency:              currency,
	}
}

func (s *SubscriptionService) Plans() []model.Plan {
	return model.Plans
}

func (s *SubscriptionService) Overview(ctx context.Context, user *model.SessionUser) (*SubscriptionOverview, error) {
	profile, err := s.profileRepository.ByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	txns, err := s.transactionRepository.ByUser(ctx, user.ID, recentTransactionLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	if txns == nil {
		txns = []model.Transaction{}
	}

	return &SubscriptionOverview{
		Plans:        model.Plans,
		Profile:      profile,
		Active:       user.HasSubscription(timeNow()),
		Transactions: txns,
	}, nil
}

// Subscribe charges for one billing period of planID and moves the user onto
// it. The payment runs first; the transaction row and tier change are written
// together.
func (s *SubscriptionService) Subscribe(ctx context.Context, user *model.SessionUser, planID string, annual bool) (*model.Profile, error) {
	if user.IsAdmin() {
		return nil, ErrAdminPlan
	}

	plan := model.PlanByID(planID)
	if plan == nil || plan.ID == model.TierFree {
		return nil, ErrInvalidPlan
	}

	now := timeNow()
	if user.SubscriptionTier == plan.ID && user.HasSubscription(now) {
		return nil, ErrAlreadySubscribed
	}

	amount := plan.Price(annual)
	receipt, payErr := s.paymentProvider.Charge(ctx, payment.Charge{
		UserID:      user.ID,
		Email:       user.Email,
		AmountCents: amount,
		Currency:    s.currency,
		Description: plan.Name + " subscription",
	})
	if payErr != nil {
		recordFailedTransaction(s.db, user.ID, s.currency, &model.Transaction{
			PlanID:          &plan.ID,
			AmountCents:     amount,
			TransactionType: model.TransactionSubscription,
		})
		slog.Warn("subscription payment failed", "user_id", user.ID, "plan", plan.ID, "error", payErr)
		return nil, fmt.Errorf("%w: %w", ErrPaymentFailed, payErr)
	}

	expiresAt := plan.PeriodEnd(now, annual)

	var profile *model.Profile
	err := db.WithTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		err := repository.NewTransactionRepository(tx).Create(ctx, &model.Transaction{
			UserID:          user.ID,
			PlanID:          &plan.ID,
			AmountCents:     amount,
			Currency:        s.currency,
			TransactionType: model.TransactionSubscription,
			Status:          model.TransactionCompleted,
			Reference:       &receipt.Reference,
		})
		if err != nil {
			return fmt.Errorf("record transaction: %w", err)
		}

		profile, err = repository.NewProfileRepository(tx).UpdateTier(ctx, user.ID, plan.ID, &expiresAt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to activate subscription: %w", err)
	}

	slog.Info("subscription activated", "user_id", user.ID, "plan", plan.ID, "annual", annual, "expires_at", expiresAt)

	err = s.emailService.SendSubscriptionConfirmation(ctx, user.Email, plan.Name,
		model.FormatCents(amount, s.currency), expiresAt.Format("January 2, 2006"))
	if err != nil {
		slog.Error("failed to send subscription confirmation", "user_id", user.ID, "error", err)
	}

	return profile, nil
}

// Cancel moves the user back to the free tier immediately.
func (s *SubscriptionService) Cancel(ctx context.Context, user *model.SessionUser) (*model.Profile, error) {
	if user.IsAdmin() {
		return nil, ErrAdminPlan
	}
	if user.SubscriptionTier == model.TierFree {
		return nil, ErrNotSubscribed
	}

	profile, err := s.profileRepository.UpdateTier(ctx, user.ID, model.TierFree, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	slog.Info("subscription cancelled", "user_id", user.ID, "previous_plan", user.SubscriptionTier)
	return profile, nil
}
