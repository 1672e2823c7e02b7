package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"codeberg.org/algrv/authgate/internal/config"
	"codeberg.org/algrv/authgate/internal/logger"
	"codeberg.org/algrv/authgate/internal/storage"
)

// usage: migrate <up|down|status|version|up-to|down-to> [-version N] [-dir path]
func main() {
	flags, err := config.ParseMigrateFlags(os.Args[1:])
	if err != nil {
		logger.Fatal("invalid arguments", "error", err)
	}

	if err := run(flags); err != nil {
		logger.FatalErr(err, "migration failed", "command", flags.Command)
	}

	logger.Info("migration finished", "command", flags.Command)
}

func run(flags config.Flags) error {
	databaseURL, err := config.LoadDatabaseURL()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := storage.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	return storage.RunMigrations(ctx, pool, flags)
}
