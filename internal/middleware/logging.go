package middleware

import (
	"net/http"
	"time"

	"github.com/boardwalk-dev/boardwalk/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func GinZapMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if value, ok := c.Get(types.ContextUserKey); ok {
			if user, ok := value.(AuthenticatedUser); ok {
				fields = append(fields, zap.String("user_id", user.ID))
			}
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("http request", fields...)
			return
		}

		logger.Info("http request", fields...)
	}
}
