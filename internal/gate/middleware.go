package gate

import (
	"net/http"

	"codeberg.org/algrv/authgate/internal/errors"
	"codeberg.org/algrv/authgate/internal/metrics"
	"github.com/gin-gonic/gin"
)

// applies cfg.Decide to every request
func Middleware(cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := cfg.Decide(c.Request.URL.Path, hasSession(c.Request, cfg.CookieName))

		metrics.GateDecisions.WithLabelValues(decision.Class.String(), decision.Action.String()).Inc()

		switch decision.Action {
		case ActionReject:
			errors.Unauthorized(c, "")
			c.Abort()
		case ActionRedirect:
			c.Redirect(decision.Status, decision.Location)
			c.Abort()
		default:
			c.Next()
		}
	}
}

// presence only; an empty cookie counts as absent
func hasSession(r *http.Request, name string) bool {
	cookie, err := r.Cookie(name)
	return err == nil && cookie.Value != ""
}
