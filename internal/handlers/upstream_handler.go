package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pokedex-api/internal/errs"
	"pokedex-api/internal/models"
	"pokedex-api/internal/observability"
	"pokedex-api/internal/response"
)

const (
	defaultCallsLimit = 50
	maxCallsLimit     = 500
)

// CallLog reads the upstream call journal.
type CallLog interface {
	Recent(ctx context.Context, limit int) ([]models.UpstreamCall, error)
	Summary(ctx context.Context) (models.CallSummary, error)
}

// UpstreamHandler reports recent upstream traffic.
type UpstreamHandler struct {
	calls  CallLog
	logger *slog.Logger
}

func NewUpstreamHandler(calls CallLog, logger *slog.Logger) *UpstreamHandler {
	if logger == nil {
		logger = observability.Discard()
	}
	return &UpstreamHandler{calls: calls, logger: logger}
}

/*
*
Calls handles GET /api/pokemon/upstream/calls
Returns the most recent upstream calls, newest first, with per-outcome totals.
Query params: limit (default 50, max 500).
*/
func (h *UpstreamHandler) Calls(c *gin.Context) {
	limit := defaultCallsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxCallsLimit {
			fail(c, h.logger, errs.Validation("invalid limit", fmt.Sprintf("limit must be between 1 and %d", maxCallsLimit)))
			return
		}
		limit = n
	}

	ctx := c.Request.Context()
	calls, err := h.calls.Recent(ctx, limit)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	summary, err := h.calls.Summary(ctx)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(gin.H{
		"calls":   calls,
		"summary": summary,
	}, fmt.Sprintf("Retrieved %d upstream calls", len(calls))))
}
