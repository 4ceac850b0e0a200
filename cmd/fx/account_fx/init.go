package account_fx

import (
	"go.uber.org/fx"
	"tierly/internal/repositories"
	"tierly/internal/services"
)

var Module = fx.Provide(
	services.NewAccountService, repositories.NewUserRepository)
