package middlewares

import (
	"strconv"
	"time"

	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/ViBaTo/panel-control-tm/monitoring"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const requestIDKey = "request_id"

// RequestLogger tags each request with an id, logs it once it completes and
// records its latency.
func RequestLogger(log *logger.Logger, metrics *monitoring.DashboardMetrics) gin.HandlerFunc {
	log = log.Component("http")

	return func(c *gin.Context) {
		start := time.Now()
		id := logger.RequestID(c.Request)
		c.Request.Header.Set("X-Request-ID", id)
		c.Header("X-Request-ID", id)
		c.Set(requestIDKey, id)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		metrics.ObserveHTTP(c.Request.Method, route, strconv.Itoa(status), elapsed.Seconds())

		entry := log.WithRequest(c.Request).WithFields(logrus.Fields{
			"status":      status,
			"duration_ms": elapsed.Milliseconds(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}
		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}
