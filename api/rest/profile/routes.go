package profile

import (
	"context"

	"codeberg.org/algrv/authgate/accounts/users"
	"codeberg.org/algrv/authgate/internal/avatars"
	"codeberg.org/algrv/authgate/internal/session"
	"github.com/gin-gonic/gin"
)

// issues avatar uploads; satisfied by *avatars.Presigner
type AvatarPresigner interface {
	PresignUpload(ctx context.Context, userID, contentType string) (*avatars.Upload, error)
}

// registers the profile routes; presigner may be nil when uploads are not configured
func RegisterRoutes(router *gin.RouterGroup, resolver session.Resolver, store users.Store, presigner AvatarPresigner) {
	profileGroup := router.Group("/profile", session.RequireSession(resolver, store))
	{
		profileGroup.GET("", GetProfileHandler())
		profileGroup.PATCH("", UpdateProfileHandler(store))
		profileGroup.POST("/avatar", AvatarUploadHandler(presigner))
	}
}
