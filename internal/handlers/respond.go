package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"pokedex-api/internal/errs"
	"pokedex-api/internal/middleware"
	"pokedex-api/internal/observability"
	"pokedex-api/internal/response"
)

// fail writes the error envelope for err. Unclassified errors are logged in
// full since the client only sees a generic message.
func fail(c *gin.Context, logger *slog.Logger, err error) {
	status, env := response.Failure(err)
	_ = c.Error(err)

	kind := errs.KindOf(err)
	if kind == errs.KindUnknown {
		logger.Error("unhandled error",
			slog.String(observability.LogFieldRequestID, c.GetString(middleware.ContextKeyRequestID)),
			slog.String(observability.LogFieldMethod, c.Request.Method),
			slog.String(observability.LogFieldPath, c.Request.URL.Path),
			slog.Any("error", err),
		)
	} else {
		logger.Debug("request failed",
			slog.String(observability.LogFieldRequestID, c.GetString(middleware.ContextKeyRequestID)),
			slog.String(observability.LogFieldErrorKind, kind.String()),
			slog.Any("error", err),
		)
	}
	c.JSON(status, env)
}
