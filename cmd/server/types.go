package main

import (
	"codeberg.org/algrv/authgate/accounts/users"
	"codeberg.org/algrv/authgate/internal/auth"
	"codeberg.org/algrv/authgate/internal/avatars"
	"codeberg.org/algrv/authgate/internal/config"
	"codeberg.org/algrv/authgate/internal/identity"
	"codeberg.org/algrv/authgate/internal/ratelimit"
	"codeberg.org/algrv/authgate/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// holds all dependencies and state for the HTTP server
type Server struct {
	db            *pgxpool.Pool // nil with STORE=memory
	config        *config.Config
	userStore     users.Store
	cookies       auth.CookieSettings
	codec         *auth.TokenCodec  // local mode only
	hasher        *auth.Hasher      // local mode only
	provider      identity.Provider // federated mode only
	resolver      session.Resolver
	limiter       *ratelimit.Limiter
	avatars       *avatars.Presigner // nil when uploads are not configured
	googleEnabled bool
	router        *gin.Engine
}
