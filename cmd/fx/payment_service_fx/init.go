package payment_service_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tripdaddy/internal/services"
	"tripdaddy/pkg/config"
	"tripdaddy/pkg/utils"
)

var Module = fx.Provide(
	provideCheckoutGateway,
	services.NewPaymentService,
)

func provideCheckoutGateway(cfg *config.Config, log *zap.Logger) utils.CheckoutGateway {
	if cfg.Payment.StripeSecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY not set, checkout is disabled")
	}
	return utils.NewStripeClient(cfg.Payment.StripeSecretKey)
}
