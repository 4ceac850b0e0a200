package billing_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"tierly/internal/config"
	"tierly/internal/services"
	"tierly/pkg/utils"
)

var Module = fx.Provide(
	provideBillingGateway,
	services.NewBillingService,
)

func provideBillingGateway(cfg config.StripeConfig, log *zap.Logger) utils.BillingGateway {
	if cfg.SecretKey == "" || cfg.WebhookSecret == "" {
		log.Warn("stripe is not fully configured; checkout and webhooks will fail")
	}
	return utils.NewStripeGateway(cfg.SecretKey, cfg.WebhookSecret)
}
