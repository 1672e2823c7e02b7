package ratelimit

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/algrv/authgate/internal/errors"
	"codeberg.org/algrv/authgate/internal/logger"
	"codeberg.org/algrv/authgate/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const keyPrefix = "authgate:ratelimit"

// per-IP limiter for the credential endpoints
type Limiter struct {
	limiter *limiter.Limiter
	client  *redis.Client
}

// builds a limiter from a formatted rate such as "20-M". Counters live in
// Redis when redisURL is set so every instance shares them, in process memory
// otherwise.
func New(rate, redisURL string) (*Limiter, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", rate, err)
	}

	if redisURL == "" {
		store := memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          keyPrefix,
			CleanUpInterval: time.Minute,
		})

		return &Limiter{limiter: limiter.New(store, parsed)}, nil
	}

	client, err := connectRedis(redisURL)
	if err != nil {
		return nil, err
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: keyPrefix})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}

	return &Limiter{limiter: limiter.New(store, parsed), client: client}, nil
}

func connectRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// gin middleware answering 429 once the caller's IP exceeds the rate
func (l *Limiter) Middleware() gin.HandlerFunc {
	return mgin.NewMiddleware(l.limiter,
		mgin.WithKeyGetter(func(c *gin.Context) string {
			return c.ClientIP()
		}),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			metrics.RateLimited.Inc()
			logger.Warn("auth rate limit reached", "ip", c.ClientIP(), "path", c.Request.URL.Path)
			errors.TooManyRequests(c, "too many attempts, try again later")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// a broken limiter store must not lock users out
			logger.ErrorErr(err, "rate limiter store failed")
			c.Next()
		}),
	)
}

// releases the redis connection, if any
func (l *Limiter) Close() error {
	if l.client == nil {
		return nil
	}

	return l.client.Close()
}
