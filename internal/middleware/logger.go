package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/zonemap-backend-go/internal/logging"
	"github.com/jengzang/zonemap-backend-go/internal/metrics"
)

// Logger middleware logs HTTP requests and records request metrics
func Logger(log logging.Logger) gin.HandlerFunc {
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.Named("http")

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		// label by route template so zone queries do not explode cardinality
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
		metrics.RequestDurationMs.WithLabelValues(route).Observe(float64(latency.Microseconds()) / 1000)

		if raw != "" {
			path = path + "?" + raw
		}

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", path),
			logging.String("client_ip", c.ClientIP()),
			logging.Int("status", statusCode),
			logging.Duration("latency", latency),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
		}

		switch {
		case statusCode >= 500:
			log.Error("[HTTP] request", fields...)
		case statusCode >= 400:
			log.Warn("[HTTP] request", fields...)
		default:
			log.Info("[HTTP] request", fields...)
		}
	}
}
