package session

import (
	"net/http"

	"codeberg.org/algrv/authgate/internal/auth"
	"codeberg.org/algrv/authgate/internal/config"
	"codeberg.org/algrv/authgate/internal/metrics"
)

// resolves sessions from locally issued tokens. The embedded claims are
// trusted until the token expires; the store is not consulted per request.
type LocalResolver struct {
	cookies auth.CookieSettings
	codec   *auth.TokenCodec
}

func NewLocalResolver(cookies auth.CookieSettings, codec *auth.TokenCodec) *LocalResolver {
	return &LocalResolver{cookies: cookies, codec: codec}
}

func (l *LocalResolver) Resolve(r *http.Request) (*Identity, bool) {
	_, span := tracer.Start(r.Context(), "session.local.Resolve")
	defer span.End()

	token, ok := l.cookies.Token(r)
	if !ok {
		metrics.SessionResolutions.WithLabelValues(string(config.ModeLocal), "no_cookie").Inc()
		return nil, false
	}

	claims, ok := l.codec.Verify(token)
	if !ok {
		metrics.SessionResolutions.WithLabelValues(string(config.ModeLocal), "invalid").Inc()
		return nil, false
	}

	metrics.SessionResolutions.WithLabelValues(string(config.ModeLocal), "authenticated").Inc()

	return &Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
		Mode:   config.ModeLocal,
	}, true
}
