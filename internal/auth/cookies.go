package auth

import (
	"net/http"
	"time"

	"codeberg.org/algrv/authgate/internal/config"
)

// attributes of the session cookie
type CookieSettings struct {
	Name     string
	Secure   bool
	SameSite http.SameSite
}

func NewCookieSettings(cfg config.CookieConfig) CookieSettings {
	sameSite := http.SameSiteLaxMode
	if cfg.SameSite == "strict" {
		sameSite = http.SameSiteStrictMode
	}

	return CookieSettings{
		Name:     cfg.Name,
		Secure:   cfg.Secure,
		SameSite: sameSite,
	}
}

// writes the http-only session cookie with max-age = ttl
func (s CookieSettings) Set(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: s.SameSite,
	})
}

// expires the session cookie (net/http renders MaxAge -1 as Max-Age=0)
func (s CookieSettings) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: s.SameSite,
	})
}

// returns the session token when the cookie is present and non-empty
func (s CookieSettings) Token(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.Name)
	if err != nil || c.Value == "" {
		return "", false
	}

	return c.Value, true
}
