package config_fx

import (
	"go.uber.org/fx"
	"tierly/internal/config"
)

// Module provides the whole Config and each group on its own, so
// constructors only ask for the part they read.
var Module = fx.Provide(
	config.Load,
	func(c config.Config) config.HTTPConfig { return c.HTTP },
	func(c config.Config) config.DatabaseConfig { return c.Database },
	func(c config.Config) config.AuthConfig { return c.Auth },
	func(c config.Config) config.CatalogConfig { return c.Catalog },
	func(c config.Config) config.StripeConfig { return c.Stripe },
	func(c config.Config) config.AIConfig { return c.AI },
	func(c config.Config) config.LogConfig { return c.Log },
)
