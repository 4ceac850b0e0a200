package usage_fx

import (
	"go.uber.org/fx"
	"tierly/internal/repositories"
	"tierly/internal/services"
)

var Module = fx.Provide(
	repositories.NewUsageRepository,
	services.NewUsageService,
)
