package auth

import (
	"net/http"
	"strings"

	"codeberg.org/algrv/authgate/internal/config"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
)

const GoogleProvider = "google"

// registers the Google provider with goth and backs gothic's OAuth state
// with a short-lived signed cookie store. No-op when Google is not configured.
func InitializeProviders(cfg *config.Config) bool {
	if !cfg.Google.Enabled() {
		return false
	}

	store := sessions.NewCookieStore([]byte(cfg.Google.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300, // long enough for the OAuth round trip
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.BaseURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	}

	gothic.Store = store

	goth.UseProviders(
		google.New(
			cfg.Google.ClientID,
			cfg.Google.ClientSecret,
			strings.TrimSuffix(cfg.BaseURL, "/")+"/api/auth/google/callback",
			"email", "profile",
		),
	)

	return true
}
