package payment

import (
	"cmticaret/config"

	"go.uber.org/zap"
)

// FromConfig selects the configured provider. Missing credentials yield
// the Disabled provider, never a crash or a silent success.
func FromConfig(cfg *config.Config) Provider {
	switch cfg.PaymentProvider {
	case "stripe":
		if cfg.StripeSecretKey == "" {
			zap.L().Warn("Stripe credentials absent, payments disabled")
			return Disabled{}
		}
		return NewStripe(cfg.StripeSecretKey)
	default:
		if cfg.IyzicoAPIKey == "" || cfg.IyzicoSecretKey == "" {
			zap.L().Warn("iyzico credentials absent, payments disabled")
			return Disabled{}
		}
		return NewIyzico(cfg.IyzicoAPIKey, cfg.IyzicoSecretKey, cfg.IyzicoBaseURL)
	}
}
