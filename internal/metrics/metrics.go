package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "authgate"

var (
	// access gate outcomes by request class and action
	GateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gate",
		Name:      "decisions_total",
		Help:      "Access gate decisions by path class and action.",
	}, []string{"class", "action"})

	// session resolution results by resolver mode
	SessionResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "resolutions_total",
		Help:      "Session resolution outcomes by resolver mode.",
	}, []string{"mode", "result"})

	// auth endpoint outcomes, e.g. ("login", "invalid_credentials")
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "attempts_total",
		Help:      "Authentication endpoint outcomes.",
	}, []string{"endpoint", "outcome"})

	// requests rejected by the auth rate limiter
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the authentication rate limiter.",
	})
)

// serves the default Prometheus registry
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
