package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pokedex-api/internal/cache"
	"pokedex-api/internal/response"
)

type CacheAdmin interface {
	ClearCache()
	CacheStats() cache.Stats
}

// CacheHandler exposes the development cache endpoints.
type CacheHandler struct {
	admin CacheAdmin
}

func NewCacheHandler(admin CacheAdmin) *CacheHandler {
	return &CacheHandler{admin: admin}
}

// Clear handles DELETE /api/pokemon/cache
func (h *CacheHandler) Clear(c *gin.Context) {
	h.admin.ClearCache()
	c.JSON(http.StatusOK, response.Success(nil, "Cache cleared successfully"))
}

// Stats handles GET /api/pokemon/cache/stats
func (h *CacheHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(h.admin.CacheStats(), "Cache statistics retrieved successfully"))
}
