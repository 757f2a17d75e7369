package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"airlink/pkg/logger"
	"airlink/pkg/utils"
)

const requestIDHeader = "X-Request-ID"

// RequestLoggerMiddleware tags every request with an id and writes an access
// log line when the handler chain finishes. Callers may supply their own id
// through the X-Request-ID header; otherwise one is generated.
func RequestLoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	ctxLogger := logger.NewContextLogger(log)

	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = utils.GenerateRequestID()
		}

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		ctxLogger.LogRequest(
			ctx,
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start).Milliseconds(),
		)
	}
}
