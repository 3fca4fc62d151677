package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Index handles GET / with a map of the available endpoints.
func Index(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Pokedex API",
			"version": version,
			"endpoints": gin.H{
				"health": "GET /health",
				"events": "GET /api/events",
				"pokemon": gin.H{
					"list":   "GET /api/pokemon?page=1&limit=20",
					"single": "GET /api/pokemon/:identifier",
					"search": "GET /api/pokemon/search?name=pikachu",
					"random": "GET /api/pokemon/random",
					"byType": "GET /api/pokemon/types/electric",
					"exists": "GET /api/pokemon/:identifier/exists",
				},
				"cache": gin.H{
					"stats": "GET /api/pokemon/cache/stats",
					"clear": "DELETE /api/pokemon/cache",
				},
				"upstream": gin.H{
					"calls": "GET /api/pokemon/upstream/calls?limit=50",
				},
			},
			"documentation": "https://pokeapi.co/docs/v2",
		})
	}
}
