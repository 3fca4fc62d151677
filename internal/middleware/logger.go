package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"pokedex-api/internal/observability"
)

// RequestLogger writes one structured line per request. Server errors log at
// error level, client errors at warn.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String(observability.LogFieldRequestID, c.GetString(ContextKeyRequestID)),
			slog.String(observability.LogFieldMethod, c.Request.Method),
			slog.String(observability.LogFieldPath, c.Request.URL.Path),
			slog.Int(observability.LogFieldStatus, status),
			slog.Int64(observability.LogFieldDuration, time.Since(start).Milliseconds()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("error", c.Errors.String()))
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		logger.LogAttrs(c.Request.Context(), level, "request", attrs...)
	}
}
