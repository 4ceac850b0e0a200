package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"tierly/cmd/fx/account_fx"
	"tierly/cmd/fx/ai_fx"
	"tierly/cmd/fx/auth_fx"
	"tierly/cmd/fx/billing_fx"
	"tierly/cmd/fx/config_fx"
	"tierly/cmd/fx/controllers_fx"
	"tierly/cmd/fx/db_fx"
	"tierly/cmd/fx/logger_fx"
	"tierly/cmd/fx/memcache_fx"
	"tierly/cmd/fx/plan_fx"
	"tierly/cmd/fx/subscription_fx"
	"tierly/cmd/fx/usage_fx"
	"tierly/internal/api/controllers"
	"tierly/internal/config"
	"tierly/pkg/middleware"
)

func main() {
	fx.New(appOptions()).Run()
}

func appOptions() fx.Option {
	return fx.Options(
		config_fx.Module,
		logger_fx.Module,
		db_fx.Module,
		memcache_fx.Module,
		plan_fx.Module,
		usage_fx.Module,
		subscription_fx.Module,
		account_fx.Module,
		billing_fx.Module,
		ai_fx.Module,
		auth_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)
}

func StartServer(lc fx.Lifecycle, cfg config.HTTPConfig, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() {
				log.Info("starting HTTP server", zap.String("addr", srv.Addr))
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

type RouterParams struct {
	fx.In

	HTTP config.HTTPConfig
	Log  *zap.Logger
	Auth gin.HandlerFunc `name:"auth"`

	Plans         *controllers.PlanController
	Accounts      *controllers.AccountController
	Subscriptions *controllers.SubscriptionController
	AI            *controllers.AIController
	Billing       *controllers.BillingController
	Health        *controllers.HealthController
}

func ProvideRouter(p RouterParams) *gin.Engine {
	gin.SetMode(p.HTTP.GinMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(p.Log.Named("http")))

	RegisterRoutes(r, p)

	return r
}

func RegisterRoutes(r *gin.Engine, p RouterParams) {
	r.GET("/healthz", p.Health.Healthz)
	r.GET("/plans", p.Plans.ListPlans)
	r.GET("/constants", p.Plans.Constants)

	// Stripe authenticates itself with the signature header
	r.POST("/billing/webhook", p.Billing.Webhook)

	authed := r.Group("/", p.Auth)

	usersGroup := authed.Group("/users")
	usersGroup.POST("", p.Accounts.CreateUser)
	usersGroup.GET("/me", p.Accounts.GetMe)
	usersGroup.GET("/me/plan", p.Plans.GetMyPlan)
	usersGroup.PUT("/me/plan", p.Plans.UpdateMyPlan)

	subscriptionGroup := authed.Group("/subscription")
	subscriptionGroup.POST("/free", p.Subscriptions.DowngradeToFree)
	subscriptionGroup.GET("/status", p.Subscriptions.Status)

	aiGroup := authed.Group("/ai")
	aiGroup.POST("/chat", p.AI.Chat)
	aiGroup.GET("/usage", p.AI.Usage)
	aiGroup.GET("/history", p.AI.History)

	billingGroup := authed.Group("/billing")
	billingGroup.POST("/checkout", p.Billing.CreateCheckout)
	billingGroup.POST("/portal", p.Billing.CreatePortal)
	billingGroup.POST("/cancel", p.Billing.CancelSubscription)
}
