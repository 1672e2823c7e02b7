package identity

import (
	"context"
	"errors"
	"time"

	"codeberg.org/algrv/authgate/accounts/users"
)

var ErrInvalidToken = errors.New("invalid or expired identity token")

// verifies tokens issued by an external identity provider
type Provider interface {
	VerifyIDToken(ctx context.Context, token string) (*Verification, error)
}

// result of a successful provider verification
type Verification struct {
	Identity  users.ExternalIdentity
	ExpiresAt time.Time
}

// adapts a plain function to Provider
type ProviderFunc func(ctx context.Context, token string) (*Verification, error)

func (f ProviderFunc) VerifyIDToken(ctx context.Context, token string) (*Verification, error) {
	return f(ctx, token)
}
