package auth

import (
	"codeberg.org/algrv/authgate/accounts/users"
	"codeberg.org/algrv/authgate/internal/auth"
	"codeberg.org/algrv/authgate/internal/config"
	"codeberg.org/algrv/authgate/internal/identity"
	"github.com/gin-gonic/gin"
)

// what the auth routes need; Provider is only used in federated mode,
// Codec and Hasher only in local mode
type Dependencies struct {
	Mode          config.AuthMode
	Store         users.Store
	Cookies       auth.CookieSettings
	Codec         *auth.TokenCodec
	Hasher        *auth.Hasher
	Provider      identity.Provider
	GoogleEnabled bool
	RateLimit     gin.HandlerFunc
}

// registers the authentication routes for the configured mode
func RegisterRoutes(router *gin.RouterGroup, deps Dependencies) {
	limit := deps.RateLimit
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/logout", LogoutHandler(deps.Cookies, deps.GoogleEnabled))

		switch deps.Mode {
		case config.ModeLocal:
			authGroup.POST("/register", limit, RegisterHandler(deps.Store, deps.Hasher, deps.Codec, deps.Cookies))
			authGroup.POST("/login", limit, LoginHandler(deps.Store, deps.Hasher, deps.Codec, deps.Cookies))

			if deps.GoogleEnabled {
				authGroup.GET("/google", BeginGoogleHandler())
				authGroup.GET("/google/callback", GoogleCallbackHandler(deps.Store, deps.Codec, deps.Cookies))
			}
		case config.ModeFederated:
			authGroup.POST("/verify", limit, VerifyHandler(deps.Provider, deps.Store, deps.Cookies))
		}
	}
}
