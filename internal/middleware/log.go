package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"finance-tracker/internal/log"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// RequestLogger puts a request scoped logger into the request context and
// logs every completed request, at warn level for 4xx and error for 5xx.
func RequestLogger(logger *log.Logger) gin.HandlerFunc {
	httpLog := logger.WithComponent(log.ComponentHTTP)
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		reqLog := httpLog.With(log.FieldRequestID, requestID)
		c.Request = c.Request.WithContext(log.NewContext(c.Request.Context(), reqLog))

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		r := c.Request
		fields := log.NewFields().
			WithHTTPRequest(r.Method, c.FullPath(), r.URL.RawQuery, r.UserAgent(), c.ClientIP()).
			WithHTTPResponse(status, time.Since(start).Milliseconds())
		if len(c.Errors) > 0 {
			fields = fields.With(log.FieldError, c.Errors.String())
		}
		// the auth middleware may have enriched the logger with the user id
		log.FromContext(r.Context()).LogContext(r.Context(), level, "request completed", fields.ToSlice()...)
	}
}

// Recovery turns a panic into a 500 and logs it.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		ctx := c.Request.Context()
		log.FromContext(ctx).ErrorContext(ctx, "panic recovered", "panic", recovered)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal server error")
		c.Abort()
	})
}
