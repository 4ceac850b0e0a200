package controllers_fx

import (
	"go.uber.org/fx"
	"tierly/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewPlanController),
	fx.Provide(controllers.NewAccountController),
	fx.Provide(controllers.NewSubscriptionController),
	fx.Provide(controllers.NewAIController),
	fx.Provide(controllers.NewBillingController),
	fx.Provide(controllers.NewHealthController))
