package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"airlink/pkg/errors"
	"airlink/pkg/logger"
)

// ErrorHandlerMiddleware turns AppErrors attached to the gin context into
// structured HTTP responses. Anything that is not an AppError is logged and
// masked as a generic 500.
func ErrorHandlerMiddleware(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		// A handler that already produced a body owns the response.
		if c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		requestID := logger.RequestIDFromContext(c.Request.Context())

		appErr := errors.GetAppError(err)
		if appErr == nil {
			log.Errorw("unhandled error",
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"request_id", requestID,
			)
			writeErrorResponse(c, http.StatusInternalServerError, string(errors.ErrCodeInternal), "Internal server error", nil, requestID)
			return
		}

		log.Errorw("application error",
			"code", appErr.Code,
			"message", appErr.Message,
			"status", appErr.HTTPStatus,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", requestID,
		)
		writeErrorResponse(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message, appErr.Context, requestID)
	}
}

// RecoveryMiddleware converts panics into 500 responses instead of dropping
// the connection.
func RecoveryMiddleware(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestID := logger.RequestIDFromContext(c.Request.Context())
				log.Errorw("panic recovered",
					"panic", r,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"request_id", requestID,
				)
				writeErrorResponse(c, http.StatusInternalServerError, string(errors.ErrCodeInternal), "Internal server error", nil, requestID)
				c.Abort()
			}
		}()

		c.Next()
	}
}

func writeErrorResponse(c *gin.Context, status int, code, message string, details map[string]interface{}, requestID string) {
	body := gin.H{
		"error":   code,
		"message": message,
	}
	if len(details) > 0 {
		body["details"] = details
	}
	if requestID != "" {
		body["request_id"] = requestID
	}
	c.JSON(status, body)
}
