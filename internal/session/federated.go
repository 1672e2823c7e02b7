package session

import (
	"net/http"

	"codeberg.org/algrv/authgate/accounts/users"
	"codeberg.org/algrv/authgate/internal/auth"
	"codeberg.org/algrv/authgate/internal/config"
	"codeberg.org/algrv/authgate/internal/identity"
	"codeberg.org/algrv/authgate/internal/logger"
	"codeberg.org/algrv/authgate/internal/metrics"
	"go.opentelemetry.io/otel/codes"
)

// resolves sessions whose cookie carries an identity-provider token; the
// provider verifies it and the local user is looked up (or provisioned) by UID
type FederatedResolver struct {
	cookies  auth.CookieSettings
	provider identity.Provider
	store    users.Store
}

func NewFederatedResolver(cookies auth.CookieSettings, provider identity.Provider, store users.Store) *FederatedResolver {
	return &FederatedResolver{cookies: cookies, provider: provider, store: store}
}

func (f *FederatedResolver) Resolve(r *http.Request) (*Identity, bool) {
	ctx, span := tracer.Start(r.Context(), "session.federated.Resolve")
	defer span.End()

	token, ok := f.cookies.Token(r)
	if !ok {
		metrics.SessionResolutions.WithLabelValues(string(config.ModeFederated), "no_cookie").Inc()
		return nil, false
	}

	verified, err := f.provider.VerifyIDToken(ctx, token)
	if err != nil {
		logger.Debug("federated token rejected", "error", err)
		span.SetStatus(codes.Error, "token rejected")
		metrics.SessionResolutions.WithLabelValues(string(config.ModeFederated), "invalid").Inc()

		return nil, false
	}

	user, err := users.FindOrProvision(ctx, f.store, verified.Identity)
	if err != nil {
		logger.ErrorErr(err, "failed to resolve federated user", "uid", verified.Identity.UID)
		span.RecordError(err)
		span.SetStatus(codes.Error, "user lookup failed")
		metrics.SessionResolutions.WithLabelValues(string(config.ModeFederated), "store_error").Inc()

		return nil, false
	}

	metrics.SessionResolutions.WithLabelValues(string(config.ModeFederated), "authenticated").Inc()

	return &Identity{
		UserID:      user.ID,
		Email:       user.Email,
		Name:        user.Name,
		ExternalUID: user.ExternalUID,
		Mode:        config.ModeFederated,
	}, true
}
