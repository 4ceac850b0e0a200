package infra

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"tierly/internal/config"
	"tierly/internal/models/db_models"
)

func InitPostgresql(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {

	connectionPool, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := connectionPool.DB()
	if err != nil {
		return nil, fmt.Errorf("getting database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info("postgres connection pool ready",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns))

	return connectionPool, nil
}

func ClosePostgresql(db *gorm.DB, log *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("getting database instance", zap.Error(err))
		return err
	}

	if err := sqlDB.Close(); err != nil {
		log.Error("closing database connection", zap.Error(err))
		return err
	}
	log.Info("postgres connection closed")
	return nil
}

// Models lists every table in dependency order. Production schema comes from
// migrations/; this list drives AutoMigrate for throwaway databases.
func Models() []interface{} {
	return []interface{}{
		&db_models.Plan{},
		&db_models.Feature{},
		&db_models.PlanFeature{},
		&db_models.User{},
		&db_models.Subscription{},
		&db_models.UsageLog{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
