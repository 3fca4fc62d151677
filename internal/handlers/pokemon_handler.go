package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pokedex-api/internal/models"
	"pokedex-api/internal/observability"
	"pokedex-api/internal/response"
	"pokedex-api/internal/validation"
)

// PokemonLookup is the part of the lookup service the HTTP layer consumes.
type PokemonLookup interface {
	GetPokemon(ctx context.Context, id models.Identifier) (*models.Pokemon, error)
	GetPokemonList(ctx context.Context, page, limit int) (*models.Page[models.Summary], error)
	Search(ctx context.Context, q models.SearchQuery) ([]models.Summary, error)
	RandomPokemon(ctx context.Context) (models.Summary, error)
	Exists(ctx context.Context, id models.Identifier) (bool, error)
}

// PokemonHandler serves the /api/pokemon lookup endpoints.
type PokemonHandler struct {
	lookup    PokemonLookup
	validator *validation.Validator
	logger    *slog.Logger
}

func NewPokemonHandler(lookup PokemonLookup, v *validation.Validator, logger *slog.Logger) *PokemonHandler {
	if logger == nil {
		logger = observability.Discard()
	}
	return &PokemonHandler{lookup: lookup, validator: v, logger: logger}
}

/*
*
List handles GET /api/pokemon
Query params: page (default 1), limit (default 20, max 100).
Out-of-range values are rejected, never clamped.
*/
func (h *PokemonHandler) List(c *gin.Context) {
	page, limit, err := h.validator.ParsePagination(c.Query("page"), c.Query("limit"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	result, err := h.lookup.GetPokemonList(c.Request.Context(), page, limit)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(result, fmt.Sprintf("Retrieved %d Pokemon successfully", len(result.Data))))
}

/*
*
Get handles GET /api/pokemon/:identifier
An all-digit identifier is an ID, anything else a name.
*/
func (h *PokemonHandler) Get(c *gin.Context) {
	id := models.ParseIdentifier(c.Param("identifier"))

	pokemon, err := h.lookup.GetPokemon(c.Request.Context(), id)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(pokemon, fmt.Sprintf("Pokemon %s retrieved successfully", pokemon.Name)))
}

/*
*
Search handles GET /api/pokemon/search
Query params: name, type, limit. At least one of name or type is required.
*/
func (h *PokemonHandler) Search(c *gin.Context) {
	limit, err := h.validator.ParseSearchLimit(c.Query("limit"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	q := models.SearchQuery{Name: c.Query("name"), Type: c.Query("type"), Limit: limit}
	results, err := h.lookup.Search(c.Request.Context(), q)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(results, fmt.Sprintf("Found %d Pokemon matching your search", len(results))))
}

// ByType handles GET /api/pokemon/types/:type, a type-only search.
func (h *PokemonHandler) ByType(c *gin.Context) {
	limit, err := h.validator.ParseSearchLimit(c.Query("limit"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	typ := c.Param("type")
	results, err := h.lookup.Search(c.Request.Context(), models.SearchQuery{Type: typ, Limit: limit})
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(results, fmt.Sprintf("Found %d Pokemon of type %s", len(results), typ)))
}

// Random handles GET /api/pokemon/random
func (h *PokemonHandler) Random(c *gin.Context) {
	summary, err := h.lookup.RandomPokemon(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(summary, fmt.Sprintf("Random Pokemon %s retrieved successfully", summary.Name)))
}

// Exists handles GET /api/pokemon/:identifier/exists
func (h *PokemonHandler) Exists(c *gin.Context) {
	raw := c.Param("identifier")

	exists, err := h.lookup.Exists(c.Request.Context(), models.ParseIdentifier(raw))
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	msg := fmt.Sprintf("Pokemon %s exists", raw)
	if !exists {
		msg = fmt.Sprintf("Pokemon %s not found", raw)
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"exists": exists, "identifier": raw}, msg))
}
