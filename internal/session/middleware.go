package session

import (
	stderrors "errors"

	"codeberg.org/algrv/authgate/accounts/users"
	"codeberg.org/algrv/authgate/internal/errors"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey    = "user_id"
	userEmailKey = "user_email"
	userKey      = "user"
)

// fully resolves the session and loads the current user record; 401 otherwise
func RequireSession(resolver Resolver, store users.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := resolver.Resolve(c.Request)
		if !ok {
			errors.Unauthorized(c, "invalid or expired session")
			c.Abort()
			return
		}

		user, err := store.FindByID(c.Request.Context(), ident.UserID)
		if stderrors.Is(err, users.ErrNotFound) {
			errors.Unauthorized(c, "account no longer exists")
			c.Abort()
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to load user", err)
			c.Abort()
			return
		}

		c.Set(userIDKey, user.ID)
		c.Set(userEmailKey, user.Email)
		c.Set(userKey, user)

		c.Next()
	}
}

// user_id set by RequireSession
func GetUserID(c *gin.Context) (string, bool) {
	id := c.GetString(userIDKey)
	return id, id != ""
}

// user record loaded by RequireSession
func CurrentUser(c *gin.Context) (*users.User, bool) {
	v, exists := c.Get(userKey)
	if !exists {
		return nil, false
	}

	user, ok := v.(*users.User)
	return user, ok
}
