package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"tierly/internal/config"
	"tierly/internal/infra"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	app := &cli.App{
		Name:  "migrate",
		Usage: "apply the embedded schema migrations",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 5 * time.Minute,
				Usage: "abort after this long",
			},
		},
		Commands: []*cli.Command{
			gooseCommand("up", "migrate to the latest version", log),
			gooseCommand("down", "roll back one version", log),
			gooseCommand("status", "print applied and pending migrations", log),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("migration failed", zap.Error(err))
		os.Exit(1)
	}
}

func gooseCommand(name, usage string, log *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(c *cli.Context) error {
			return run(c.Context, name, c.Duration("timeout"), log)
		},
	}
}

func run(ctx context.Context, command string, timeout time.Duration, log *zap.Logger) error {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}

	db, err := infra.InitPostgresql(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = infra.ClosePostgresql(db, log) }()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return infra.Migrate(ctx, db, command, log)
}
