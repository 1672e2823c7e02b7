package profile

import (
	stderrors "errors"
	"net/http"

	"codeberg.org/algrv/authgate/accounts/users"
	"codeberg.org/algrv/authgate/internal/avatars"
	"codeberg.org/algrv/authgate/internal/errors"
	"codeberg.org/algrv/authgate/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// GetProfileHandler godoc
// @Summary Get profile
// @Description Get the signed-in user's stored profile
// @Tags profile
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/profile [get]
// @Security SessionCookie
func GetProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := session.CurrentUser(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: user})
	}
}

// UpdateProfileHandler godoc
// @Summary Update profile
// @Description Update the signed-in user's profile fields
// @Tags profile
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile update"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/profile [patch]
// @Security SessionCookie
func UpdateProfileHandler(store users.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := session.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req UpdateProfileRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		req.normalize()

		if err := binding.Validator.ValidateStruct(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		user, err := store.UpdateProfile(c.Request.Context(), userID, req.update())
		if stderrors.Is(err, users.ErrNotFound) {
			errors.Unauthorized(c, "account no longer exists")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to update profile", err)
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: user})
	}
}

// AvatarUploadHandler godoc
// @Summary Request avatar upload
// @Description Presign a direct upload of a profile photo to object storage
// @Tags profile
// @Accept json
// @Produce json
// @Param request body AvatarUploadRequest true "Image content type"
// @Success 200 {object} AvatarUploadResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/profile/avatar [post]
// @Security SessionCookie
func AvatarUploadHandler(presigner AvatarPresigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		if presigner == nil {
			errors.Unavailable(c, "avatar uploads are not configured")
			return
		}

		userID, ok := session.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req AvatarUploadRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		upload, err := presigner.PresignUpload(c.Request.Context(), userID, req.ContentType)
		if stderrors.Is(err, avatars.ErrUnsupportedType) {
			errors.BadRequest(c, "content_type must be image/png, image/jpeg, image/webp or image/gif", nil)
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to presign upload", err)
			return
		}

		c.JSON(http.StatusOK, AvatarUploadResponse{
			UploadURL: upload.UploadURL,
			PhotoURL:  upload.PhotoURL,
			ExpiresAt: upload.ExpiresAt,
		})
	}
}
