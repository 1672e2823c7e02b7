package identity

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// caps outbound verification calls so a burst of requests carrying provider
// tokens cannot exhaust the provider's quota
type Throttled struct {
	next    Provider
	limiter *rate.Limiter
}

// wraps next with a token bucket of perSecond requests and the given burst
func NewThrottled(next Provider, perSecond float64, burst int) *Throttled {
	return &Throttled{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (t *Throttled) VerifyIDToken(ctx context.Context, token string) (*Verification, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	return t.next.VerifyIDToken(ctx, token)
}
