package session

import (
	"fmt"
	"net/http"

	"codeberg.org/algrv/authgate/accounts/users"
	"codeberg.org/algrv/authgate/internal/auth"
	"codeberg.org/algrv/authgate/internal/config"
	"codeberg.org/algrv/authgate/internal/identity"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("codeberg.org/algrv/authgate/internal/session")

// authenticated principal behind a request
type Identity struct {
	UserID      string
	Email       string
	Name        string
	ExternalUID string
	Mode        config.AuthMode
}

// turns an inbound request into an identity. Implementations never return
// errors: every failure (missing cookie, bad token, provider or store outage)
// is reported as unauthenticated.
type Resolver interface {
	Resolve(r *http.Request) (*Identity, bool)
}

// builds the resolver variant selected by cfg.AuthMode
func New(
	cfg *config.Config,
	cookies auth.CookieSettings,
	codec *auth.TokenCodec,
	provider identity.Provider,
	store users.Store,
) (Resolver, error) {
	switch cfg.AuthMode {
	case config.ModeLocal:
		if codec == nil {
			return nil, fmt.Errorf("local session resolver requires a token codec")
		}

		return NewLocalResolver(cookies, codec), nil
	case config.ModeFederated:
		if provider == nil || store == nil {
			return nil, fmt.Errorf("federated session resolver requires an identity provider and a user store")
		}

		return NewFederatedResolver(cookies, provider, store), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.AuthMode)
	}
}
