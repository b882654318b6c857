package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const slowRequest = 5 * time.Second

// RequestLogger writes one line per request; 5xx responses log at error and
// requests slower than slowRequest at warn.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
			zap.String("trace_id", c.GetString("trace_id")),
		}
		switch {
		case c.Writer.Status() >= 500:
			log.Error("request failed", fields...)
		case latency > slowRequest:
			log.Warn("slow request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
