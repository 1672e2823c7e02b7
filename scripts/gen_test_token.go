package main

import (
	"context"
	"fmt"
	"os"

	"codeberg.org/algrv/authgate/accounts/users"
	"codeberg.org/algrv/authgate/internal/auth"
	"codeberg.org/algrv/authgate/internal/config"
	"codeberg.org/algrv/authgate/internal/logger"
	"codeberg.org/algrv/authgate/internal/storage"
)

// prints a local-mode session cookie for a throwaway test user, for poking
// protected endpoints with curl
func main() {
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	if cfg.AuthMode != config.ModeLocal {
		logger.Fatal("test tokens are only meaningful in local auth mode", "auth_mode", cfg.AuthMode)
	}

	if err := run(cfg); err != nil {
		logger.FatalErr(err, "failed to generate test token")
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	user, err := users.FindOrProvision(ctx, users.NewRepository(pool), users.ExternalIdentity{
		UID:   "test:dev-user",
		Email: "test@authgate.dev",
		Name:  "Test User",
	})

	if err != nil {
		return fmt.Errorf("failed to find or create test user: %w", err)
	}

	codec, err := auth.NewTokenCodec(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL)
	if err != nil {
		return err
	}

	token, expiresAt, err := codec.Issue(auth.Claims{UserID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "user:    %s (%s)\n", user.Email, user.ID)
	fmt.Fprintf(os.Stdout, "expires: %s\n\n", expiresAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(os.Stdout, "curl -H 'Cookie: %s=%s' %s/api/profile\n", cfg.Cookie.Name, token, cfg.BaseURL)

	return nil
}
