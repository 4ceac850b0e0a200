package subscription_fx

import (
	"go.uber.org/fx"
	"tierly/internal/repositories"
	"tierly/internal/services"
)

var Module = fx.Provide(
	repositories.NewSubscriptionRepository,
	services.NewSubscriptionService,
)
