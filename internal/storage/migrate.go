package storage

import (
	"context"
	"embed"
	"fmt"

	"codeberg.org/algrv/authgate/internal/config"
	"codeberg.org/algrv/authgate/internal/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const defaultMigrationsDir = "migrations"

// applies all pending migrations; used at server startup
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return RunMigrations(ctx, pool, config.Flags{Command: "up", Dir: defaultMigrationsDir})
}

// runs a single goose command against the embedded migrations
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, flags config.Flags) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close() //nolint:errcheck // closes the wrapper, not the pool

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	dir := flags.Dir
	if dir == "" {
		dir = defaultMigrationsDir
	}

	var err error

	switch flags.Command {
	case "up":
		err = goose.UpContext(ctx, db, dir)
	case "down":
		err = goose.DownContext(ctx, db, dir)
	case "up-to":
		err = goose.UpToContext(ctx, db, dir, flags.Version)
	case "down-to":
		err = goose.DownToContext(ctx, db, dir, flags.Version)
	case "status":
		err = goose.StatusContext(ctx, db, dir)
	case "version":
		err = goose.VersionContext(ctx, db, dir)
	default:
		return fmt.Errorf("unknown migrate command %q", flags.Command)
	}

	if err != nil {
		return fmt.Errorf("migrate %s: %w", flags.Command, err)
	}

	return nil
}

// routes goose output through the application logger
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	logger.Info(fmt.Sprintf(format, v...), "component", "migrate")
}

func (gooseLogger) Fatalf(format string, v ...any) {
	logger.Fatal(fmt.Sprintf(format, v...), "component", "migrate")
}
