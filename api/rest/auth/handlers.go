package auth

import (
	stderrors "errors"
	"net/http"
	"time"

	"codeberg.org/algrv/authgate/accounts/users"
	"codeberg.org/algrv/authgate/internal/auth"
	"codeberg.org/algrv/authgate/internal/errors"
	"codeberg.org/algrv/authgate/internal/identity"
	"codeberg.org/algrv/authgate/internal/logger"
	"codeberg.org/algrv/authgate/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/markbates/goth/gothic"
)

const (
	dashboardPath = "/dashboard"
	loginPath     = "/login"
)

// RegisterHandler godoc
// @Summary Register
// @Description Create an email/password account and start a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "New account"
// @Success 201 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/auth/register [post]
func RegisterHandler(store users.Store, hasher *auth.Hasher, codec *auth.TokenCodec, cookies auth.CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			metrics.AuthAttempts.WithLabelValues("register", "invalid").Inc()
			errors.ValidationError(c, err)
			return
		}

		// bounds apply to the trimmed name
		req.normalize()

		if err := binding.Validator.ValidateStruct(&req); err != nil {
			metrics.AuthAttempts.WithLabelValues("register", "invalid").Inc()
			errors.ValidationError(c, err)
			return
		}

		ctx := c.Request.Context()

		_, err := store.FindByEmail(ctx, req.Email)
		if err == nil {
			metrics.AuthAttempts.WithLabelValues("register", "conflict").Inc()
			errors.Conflict(c, "an account with this email already exists")
			return
		}

		if !stderrors.Is(err, users.ErrNotFound) {
			errors.InternalError(c, "failed to look up user", err)
			return
		}

		digest, err := hasher.Hash(req.Password)
		if stderrors.Is(err, auth.ErrPasswordTooLong) {
			errors.BadRequest(c, "password is too long", nil)
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to hash password", err)
			return
		}

		user, err := store.Create(ctx, users.NewUser{
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: digest,
		})

		// lost a race with a concurrent registration
		if stderrors.Is(err, users.ErrConflict) {
			metrics.AuthAttempts.WithLabelValues("register", "conflict").Inc()
			errors.Conflict(c, "an account with this email already exists")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to create user", err)
			return
		}

		if !startSession(c, codec, cookies, user) {
			return
		}

		metrics.AuthAttempts.WithLabelValues("register", "success").Inc()
		logger.Info("user registered", "user_id", user.ID)

		c.JSON(http.StatusCreated, UserResponse{User: user})
	}
}

// LoginHandler godoc
// @Summary Login
// @Description Authenticate with email and password and start a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/auth/login [post]
func LoginHandler(store users.Store, hasher *auth.Hasher, codec *auth.TokenCodec, cookies auth.CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
			errors.ValidationError(c, err)
			return
		}

		user, err := store.FindByEmail(c.Request.Context(), req.Email)
		if err != nil && !stderrors.Is(err, users.ErrNotFound) {
			errors.InternalError(c, "failed to look up user", err)
			return
		}

		// unknown email, federated-only account and wrong password look the
		// same, and all of them pay for a bcrypt compare
		var digest string
		if err == nil {
			digest = user.PasswordHash
		}

		if !hasher.Verify(req.Password, digest) {
			metrics.AuthAttempts.WithLabelValues("login", "invalid_credentials").Inc()
			errors.InvalidCredentials(c)
			return
		}

		if !startSession(c, codec, cookies, user) {
			return
		}

		metrics.AuthAttempts.WithLabelValues("login", "success").Inc()

		c.JSON(http.StatusOK, UserResponse{User: user})
	}
}

// LogoutHandler godoc
// @Summary Logout
// @Description Clear the session cookie and any pending OAuth state
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /api/auth/logout [post]
func LogoutHandler(cookies auth.CookieSettings, oauthEnabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookies.Clear(c.Writer)

		if oauthEnabled {
			if err := gothic.Logout(c.Writer, c.Request); err != nil {
				logger.ErrorErr(err, "failed to logout user from gothic session")
			}
		}

		metrics.AuthAttempts.WithLabelValues("logout", "success").Inc()

		c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
	}
}

// VerifyHandler godoc
// @Summary Verify identity token
// @Description Verify an identity-provider ID token, provision the user and store the token as the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Provider ID token"
// @Success 200 {object} VerifyResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/auth/verify [post]
func VerifyHandler(provider identity.Provider, store users.Store, cookies auth.CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			metrics.AuthAttempts.WithLabelValues("verify", "invalid").Inc()
			errors.ValidationError(c, err)
			return
		}

		ctx := c.Request.Context()

		verified, err := provider.VerifyIDToken(ctx, req.Token)
		if err != nil {
			logger.Debug("identity token rejected", "error", err)
			metrics.AuthAttempts.WithLabelValues("verify", "invalid_token").Inc()
			errors.InvalidToken(c, "")
			return
		}

		remaining := time.Until(verified.ExpiresAt)
		if remaining <= 0 {
			metrics.AuthAttempts.WithLabelValues("verify", "invalid_token").Inc()
			errors.InvalidToken(c, "")
			return
		}

		user, err := users.FindOrProvision(ctx, store, verified.Identity)
		if stderrors.Is(err, users.ErrConflict) {
			metrics.AuthAttempts.WithLabelValues("verify", "conflict").Inc()
			errors.Conflict(c, "this email is linked to a different sign-in account")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to provision user", err)
			return
		}

		cookies.Set(c.Writer, req.Token, remaining)

		metrics.AuthAttempts.WithLabelValues("verify", "success").Inc()

		c.JSON(http.StatusOK, VerifyResponse{Message: "authenticated", User: user})
	}
}

// BeginGoogleHandler godoc
// @Summary Start Google sign-in
// @Description Redirect to Google's consent screen
// @Tags auth
// @Success 307 {string} string "Redirect to Google"
// @Router /api/auth/google [get]
func BeginGoogleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		withProvider(c)
		gothic.BeginAuthHandler(c.Writer, c.Request)
	}
}

// GoogleCallbackHandler godoc
// @Summary Google sign-in callback
// @Description Complete Google sign-in, provision the user, start a session and redirect to the dashboard
// @Tags auth
// @Success 302 {string} string "Redirect to the dashboard, or to the login page on failure"
// @Router /api/auth/google/callback [get]
func GoogleCallbackHandler(store users.Store, codec *auth.TokenCodec, cookies auth.CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		withProvider(c)

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			logger.Warn("google sign-in failed", "error", err)
			metrics.AuthAttempts.WithLabelValues("google", "failed").Inc()
			c.Redirect(http.StatusFound, loginPath+"?error=google")
			return
		}

		user, err := users.FindOrProvision(c.Request.Context(), store, users.ExternalIdentity{
			UID:   auth.GoogleProvider + ":" + gothUser.UserID,
			Email: gothUser.Email,
			// Google only releases verified addresses under the email scope
			EmailVerified: gothUser.Email != "",
			Name:          gothUser.Name,
			PhotoURL:      gothUser.AvatarURL,
		})

		if stderrors.Is(err, users.ErrConflict) {
			metrics.AuthAttempts.WithLabelValues("google", "conflict").Inc()
			c.Redirect(http.StatusFound, loginPath+"?error=account_conflict")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to provision user", err)
			return
		}

		if !startSession(c, codec, cookies, user) {
			return
		}

		metrics.AuthAttempts.WithLabelValues("google", "success").Inc()

		c.Redirect(http.StatusFound, dashboardPath)
	}
}

// issues a local token for user and sets it as the session cookie; on
// failure the error response has already been written
func startSession(c *gin.Context, codec *auth.TokenCodec, cookies auth.CookieSettings, user *users.User) bool {
	token, _, err := codec.Issue(auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})

	if err != nil {
		errors.InternalError(c, "failed to generate token", err)
		return false
	}

	cookies.Set(c.Writer, token, codec.TTL())

	return true
}

// gothic reads the provider name from the query string
func withProvider(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("provider", auth.GoogleProvider)
	c.Request.URL.RawQuery = q.Encode()
}
