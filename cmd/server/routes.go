package main

import (
	"net/http"
	"time"

	"codeberg.org/algrv/authgate/api/rest/auth"
	"codeberg.org/algrv/authgate/api/rest/health"
	"codeberg.org/algrv/authgate/api/rest/profile"
	"codeberg.org/algrv/authgate/docs"
	"codeberg.org/algrv/authgate/internal/gate"
	"codeberg.org/algrv/authgate/internal/metrics"
	"codeberg.org/algrv/authgate/web"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// sets up all routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	cfg := server.config

	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	gateConfig := gate.DefaultConfig()
	gateConfig.CookieName = server.cookies.Name
	router.Use(gate.Middleware(gateConfig))

	// a nil *Presigner must not become a non-nil interface
	var presigner profile.AvatarPresigner
	if server.avatars != nil {
		presigner = server.avatars
	}

	var db health.Pinger
	if server.db != nil {
		db = server.db
	}

	router.GET("/health", health.Handler(cfg.AuthMode, db))
	router.GET("/metrics", metrics.Handler())
	router.GET("/docs/swagger.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(docs.SwaggerInfo.ReadDoc()))
	})

	api := router.Group("/api")
	{
		auth.RegisterRoutes(api, auth.Dependencies{
			Mode:          cfg.AuthMode,
			Store:         server.userStore,
			Cookies:       server.cookies,
			Codec:         server.codec,
			Hasher:        server.hasher,
			Provider:      server.provider,
			GoogleEnabled: server.googleEnabled,
			RateLimit:     server.limiter.Middleware(),
		})

		profile.RegisterRoutes(api, server.resolver, server.userStore, presigner)
	}

	pages := web.Pages{
		Resolver: server.resolver,
		Cookies:  server.cookies,
		Gate:     gateConfig,
		Mode:     cfg.AuthMode,
		Google:   server.googleEnabled,
		Firebase: cfg.Firebase,
	}

	return pages.RegisterRoutes(router)
}
