package main

import (
	"context"
	"fmt"

	"codeberg.org/algrv/authgate/accounts/users"
	"codeberg.org/algrv/authgate/internal/auth"
	"codeberg.org/algrv/authgate/internal/avatars"
	"codeberg.org/algrv/authgate/internal/config"
	"codeberg.org/algrv/authgate/internal/identity"
	"codeberg.org/algrv/authgate/internal/logger"
	"codeberg.org/algrv/authgate/internal/ratelimit"
	"codeberg.org/algrv/authgate/internal/session"
	"codeberg.org/algrv/authgate/internal/storage"
	"github.com/gin-gonic/gin"
)

const (
	// outbound identity-provider verifications per second, with burst
	providerRateLimit = 50
	providerBurst     = 10
)

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	server := &Server{
		config:  cfg,
		cookies: auth.NewCookieSettings(cfg.Cookie),
	}

	if err := server.initStore(ctx); err != nil {
		return nil, err
	}

	if err := server.initAuth(ctx); err != nil {
		server.Close()
		return nil, err
	}

	limiter, err := ratelimit.New(cfg.RateLimit, cfg.RedisURL)
	if err != nil {
		server.Close()
		return nil, fmt.Errorf("failed to initialize rate limiter: %w", err)
	}

	server.limiter = limiter

	if cfg.Avatars.Enabled() {
		presigner, err := avatars.New(ctx, cfg.Avatars)
		if err != nil {
			server.Close()
			return nil, fmt.Errorf("failed to initialize avatar storage: %w", err)
		}

		server.avatars = presigner
	}

	server.router = gin.Default()

	// nil trusts no proxy, so ClientIP is the socket peer and forwarded
	// headers cannot rotate the rate-limit key
	if err := server.router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		server.Close()
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	if err := RegisterRoutes(server.router, server); err != nil {
		server.Close()
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}

	logger.Info("server initialized",
		"auth_mode", cfg.AuthMode,
		"store", cfg.Store,
		"google_sign_in", server.googleEnabled,
		"avatar_uploads", server.avatars != nil,
		"shared_rate_limit", cfg.RedisURL != "",
	)

	return server, nil
}

func (s *Server) initStore(ctx context.Context) error {
	if s.config.Store == config.StoreMemory {
		logger.Warn("using in-memory user store; accounts are lost on restart")
		s.userStore = users.NewMemoryStore()

		return nil
	}

	db, err := storage.Connect(ctx, s.config.DatabaseURL)
	if err != nil {
		return err
	}

	if err := storage.Migrate(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	s.db = db
	s.userStore = users.NewRepository(db)

	return nil
}

func (s *Server) initAuth(ctx context.Context) error {
	cfg := s.config

	switch cfg.AuthMode {
	case config.ModeLocal:
		codec, err := auth.NewTokenCodec(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL)
		if err != nil {
			return err
		}

		s.codec = codec
		s.hasher = auth.NewHasher(auth.DefaultBcryptCost)
		s.googleEnabled = auth.InitializeProviders(cfg)
	case config.ModeFederated:
		fb, err := identity.Init(ctx, cfg.Firebase)
		if err != nil {
			return err
		}

		s.provider = identity.NewThrottled(fb, providerRateLimit, providerBurst)
	}

	resolver, err := session.New(cfg, s.cookies, s.codec, s.provider, s.userStore)
	if err != nil {
		return err
	}

	s.resolver = resolver

	return nil
}

// releases the database pool and the limiter's redis connection
func (s *Server) Close() {
	if s.limiter != nil {
		if err := s.limiter.Close(); err != nil {
			logger.ErrorErr(err, "failed to close rate limiter")
		}
	}

	if s.db != nil {
		s.db.Close()
	}
}
