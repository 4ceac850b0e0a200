package infra

import (
	"context"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"tierly/migrations"
)

var ErrUnknownMigrateCommand = errors.New("unknown migrate command")

// Migrate runs a goose command ("up", "down" or "status") against the
// embedded SQL migrations.
func Migrate(ctx context.Context, db *gorm.DB, command string, log *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("getting database instance: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(&gooseZapLogger{log: log.Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		err = goose.UpContext(ctx, sqlDB, ".")
	case "down":
		err = goose.DownContext(ctx, sqlDB, ".")
	case "status":
		err = goose.StatusContext(ctx, sqlDB, ".")
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMigrateCommand, command)
	}
	if err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// gooseZapLogger routes goose output through zap. Fatalf is downgraded to
// an error so the caller decides whether to exit.
type gooseZapLogger struct {
	log *zap.SugaredLogger
}

func (l *gooseZapLogger) Fatalf(format string, v ...interface{}) { l.log.Errorf(format, v...) }

func (l *gooseZapLogger) Printf(format string, v ...interface{}) { l.log.Infof(format, v...) }
