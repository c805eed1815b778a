package model

import (
	"fmt"
	"time"
)

// Plan is a purchasable subscription tier.
type Plan struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	MonthlyPriceCents int      `json:"monthly_price_cents"`
	AnnualPriceCents  int      `json:"annual_price_cents"`
	Features          []string `json:"features"`
	Popular           bool     `json:"popular,omitempty"`
}

var Plans = []Plan{
	{
		ID:          TierFree,
		Name:        "Free",
		Description: "Perfect for casual readers",
		Features: []string{
			"Access to free books",
			"Basic reading features",
			"Personal library",
			"Reading progress tracking",
		},
	},
	{
		ID:                TierPremium,
		Name:              "Premium",
		Description:       "For avid readers who want more",
		MonthlyPriceCents: 999,
		AnnualPriceCents:  9999,
		Popular:           true,
		Features: []string{
			"Unlimited access to premium books",
			"Offline reading",
			"Advanced reading features",
			"Bookmarks and notes",
			"Reading analytics",
		},
	},
	{
		ID:                TierAnnual,
		Name:              "Annual Pro",
		Description:       "Best value for serious readers",
		MonthlyPriceCents: 1999,
		AnnualPriceCents:  19999,
		Features: []string{
			"Everything in Premium",
			"Early access to new releases",
			"Exclusive author content",
			"Priority support",
			"Family sharing (up to 4 members)",
		},
	},
}

// PlanByID returns the plan with id, or nil. The admin tier is not a plan.
func PlanByID(id string) *Plan {
	for i := range Plans {
		if Plans[i].ID == id {
			return &Plans[i]
		}
	}
	return nil
}

// Price returns the charge for one billing period.
func (p *Plan) Price(annual bool) int {
	if annual {
		return p.AnnualPriceCents
	}
	return p.MonthlyPriceCents
}

// PeriodEnd returns when a period starting at from ends.
func (p *Plan) PeriodEnd(from time.Time, annual bool) time.Time {
	if annual {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}

// FormatCents renders an amount like "$9.99".
func FormatCents(cents int, currency string) string {
	currencySymbols := map[string]string{
		"usd": "$",
		"eur": "€",
		"gbp": "£",
	}

	symbol := currencySymbols[currency]
	if symbol == "" {
		symbol = "$"
	}
	return fmt.Sprintf("%s%d.%02d", symbol, cents/100, cents%100)
}
