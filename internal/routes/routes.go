package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pokedex-api/internal/handlers"
	"pokedex-api/internal/middleware"
	"pokedex-api/internal/observability"
	"pokedex-api/internal/realtime"
	"pokedex-api/internal/service"
	"pokedex-api/internal/validation"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Service     *service.PokemonService
	Validator   *validation.Validator
	Journal     handlers.CallLog
	Hub         *realtime.Hub
	Logger      *slog.Logger
	FrontendURL string
	Version     string
	StartedAt   time.Time
}

func SetupRoutes(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = observability.Discard()
	}
	if d.StartedAt.IsZero() {
		d.StartedAt = time.Now()
	}

	// Create a new GIN Router
	ginRouter := gin.New()
	ginRouter.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(d.Logger),
		middleware.CORS(d.FrontendURL),
	)

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(d.StartedAt).Seconds(),
			"version":   d.Version,
		})
	})
	ginRouter.GET("/", handlers.Index(d.Version))

	pokemon := handlers.NewPokemonHandler(d.Service, d.Validator, d.Logger)
	cacheAdmin := handlers.NewCacheHandler(d.Service)

	api := ginRouter.Group("/api")
	{
		if d.Hub != nil {
			api.GET("/events", handlers.EventsHandler(d.Hub, d.FrontendURL, d.Logger))
		}

		pokemonRoutes := api.Group("/pokemon")
		// static segments are registered next to :identifier; gin prefers them
		pokemonRoutes.GET("", pokemon.List)
		pokemonRoutes.GET("/search", pokemon.Search)
		pokemonRoutes.GET("/random", pokemon.Random)
		pokemonRoutes.GET("/types/:type", pokemon.ByType)
		pokemonRoutes.GET("/:identifier", pokemon.Get)
		pokemonRoutes.GET("/:identifier/exists", pokemon.Exists)

		// Development utilities
		pokemonRoutes.DELETE("/cache", cacheAdmin.Clear)
		pokemonRoutes.GET("/cache/stats", cacheAdmin.Stats)
		if d.Journal != nil {
			upstream := handlers.NewUpstreamHandler(d.Journal, d.Logger)
			pokemonRoutes.GET("/upstream/calls", upstream.Calls)
		}
	}

	return ginRouter
}
