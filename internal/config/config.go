package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type HTTPConfig struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`
}

type DatabaseConfig struct {
	URL             string        `env:"POSTGRES_URL,required,notEmpty"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
}

type AuthConfig struct {
	JWTSecret   string `env:"SUPABASE_JWT_SECRET"`
	JWKSURL     string `env:"SUPABASE_JWKS_URL"`
	Audience    string `env:"SUPABASE_JWT_AUDIENCE" envDefault:"authenticated"`
	Disabled    bool   `env:"AUTH_DISABLED" envDefault:"false"`
	DevUserID   string `env:"AUTH_DEV_USER_ID"`
	DevUserMail string `env:"AUTH_DEV_USER_EMAIL" envDefault:"dev@localhost"`
}

type CatalogConfig struct {
	FreePlanID   string        `env:"FREE_PLAN_ID" envDefault:"free"`
	CacheTTL     time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`
	CacheBackend string        `env:"CATALOG_CACHE_BACKEND" envDefault:"memory"`
	RedisURL     string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
}

type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	AppURL        string `env:"APP_URL" envDefault:"http://localhost:3000"`
	TrialDays     int64  `env:"STRIPE_TRIAL_DAYS" envDefault:"7"`
}

type AIConfig struct {
	Provider     string  `env:"AI_PROVIDER" envDefault:"openai"`
	OpenAIKey    string  `env:"OPENAI_API_KEY"`
	GeminiKey    string  `env:"GEMINI_API_KEY"`
	GeminiModel  string  `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	DefaultModel string  `env:"AI_DEFAULT_MODEL" envDefault:"gpt-4o-mini"`
	MaxTokens    int     `env:"AI_MAX_TOKENS" envDefault:"1000"`
	Temperature  float32 `env:"AI_TEMPERATURE" envDefault:"0.7"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Catalog  CatalogConfig
	Stripe   StripeConfig
	AI       AIConfig
	Log      LogConfig
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	// the .env file is optional
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDatabase reads only the database settings, for tools like cmd/migrate
// that never serve traffic.
func LoadDatabase() (DatabaseConfig, error) {
	_ = godotenv.Load()

	var cfg DatabaseConfig
	if err := env.Parse(&cfg); err != nil {
		return DatabaseConfig{}, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Catalog.CacheBackend {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("%w: CATALOG_CACHE_BACKEND %q", ErrInvalidConfig, c.Catalog.CacheBackend)
	}
	switch c.AI.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("%w: AI_PROVIDER %q", ErrInvalidConfig, c.AI.Provider)
	}
	if !c.Auth.Disabled && c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "" {
		return fmt.Errorf("%w: SUPABASE_JWT_SECRET or SUPABASE_JWKS_URL is required", ErrInvalidConfig)
	}
	if c.Catalog.FreePlanID == "" {
		return fmt.Errorf("%w: FREE_PLAN_ID must not be empty", ErrInvalidConfig)
	}
	return nil
}
