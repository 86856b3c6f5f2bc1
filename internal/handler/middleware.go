package handler

import (
	"time"

	"converter-service/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestMetrics records every request except /metrics scrapes.
func RequestMetrics(m *metrics.Metrics, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		if path == "/metrics" {
			return
		}

		duration := time.Since(start)
		m.ObserveRequest(path, c.Request.Method, c.Writer.Status(), duration.Seconds())

		logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"query":    c.Request.URL.RawQuery,
			"status":   c.Writer.Status(),
			"duration": duration,
		}).Debug("HTTP request")
	}
}
