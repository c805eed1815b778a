package payment

import (
	"fmt"
	"log/slog"

	"github.com/templui/folio/internal/config"
)

// NewProvider creates a payment provider based on configuration
func NewProvider(cfg *config.Config) (Provider, error) {
	provider := cfg.PaymentProvider

	slog.Info("initializing payment provider", "provider", provider, "delay", cfg.PaymentDelay)

	switch provider {
	case ProviderSimulated, "":
		return NewSimulatedProvider(cfg.PaymentDelay), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s (supported: simulated)", provider)
	}
}
