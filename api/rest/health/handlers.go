package health

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/algrv/authgate/internal/config"
	"codeberg.org/algrv/authgate/internal/logger"
	"github.com/gin-gonic/gin"
)

const (
	serviceName = "authgate"
	version     = "1.0.0"
)

// Handler godoc
// @Summary Health check
// @Description Liveness probe; also reports whether the database answers when one is configured
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /health [get]
func Handler(mode config.AuthMode, db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := Response{
			Status:   "healthy",
			Service:  serviceName,
			Version:  version,
			AuthMode: string(mode),
		}

		if db == nil {
			c.JSON(http.StatusOK, resp)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.ErrorErr(err, "health check database ping failed")

			resp.Status = "degraded"
			resp.Database = "unreachable"
			c.JSON(http.StatusServiceUnavailable, resp)

			return
		}

		resp.Database = "ok"
		c.JSON(http.StatusOK, resp)
	}
}
