// Package service is the cache-backed lookup layer in front of PokeAPI.
package service

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"pokedex-api/internal/cache"
	"pokedex-api/internal/errs"
	"pokedex-api/internal/models"
	"pokedex-api/internal/observability"
	"pokedex-api/internal/validation"
)

// DefaultFanout caps concurrent detail fetches within one list or type search.
const DefaultFanout = 10

// Upstream is the subset of the PokeAPI client the service depends on.
type Upstream interface {
	FetchPokemon(ctx context.Context, identifier string) (*models.Pokemon, error)
	FetchPokemonList(ctx context.Context, limit, offset int) (*models.ResourceList, error)
	FetchType(ctx context.Context, name string) (*models.TypeResource, error)
}

// Notifier receives service events. Implementations must not block.
type Notifier interface {
	Notify(event models.Event)
}

type noopNotifier struct{}

func (noopNotifier) Notify(models.Event) {}

// listEntry is the cached form of a list page; Total is kept so cache hits
// rebuild the envelope without asking upstream again.
type listEntry struct {
	Data  []models.Summary
	Total int
}

// PokemonService orchestrates validation, caching and upstream fetches.
// It is safe for concurrent use; the cache is its only mutable state.
type PokemonService struct {
	upstream  Upstream
	cache     cache.Cache[string, any]
	validator *validation.Validator
	logger    *slog.Logger
	notifier  Notifier
	fanout    int
	randIntN  func(n int) int

	flights singleflight.Group
}

// Option customizes a PokemonService.
type Option func(*PokemonService)

func WithLogger(l *slog.Logger) Option {
	return func(s *PokemonService) { s.logger = l }
}

func WithNotifier(n Notifier) Option {
	return func(s *PokemonService) { s.notifier = n }
}

func WithFanout(n int) Option {
	return func(s *PokemonService) {
		if n > 0 {
			s.fanout = n
		}
	}
}

// WithRandom replaces the source used by RandomPokemon; intN must return a value in [0, n).
func WithRandom(intN func(n int) int) Option {
	return func(s *PokemonService) { s.randIntN = intN }
}

func New(upstream Upstream, c cache.Cache[string, any], v *validation.Validator, opts ...Option) *PokemonService {
	s := &PokemonService{
		upstream:  upstream,
		cache:     c,
		validator: v,
		logger:    observability.Discard(),
		notifier:  noopNotifier{},
		fanout:    DefaultFanout,
		randIntN:  rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetPokemon returns the entity for id, fetching it on a cache miss.
func (s *PokemonService) GetPokemon(ctx context.Context, id models.Identifier) (*models.Pokemon, error) {
	if err := s.validator.ValidateIdentifier(id); err != nil {
		return nil, err
	}
	return lookup(ctx, s, entityKey(id), func(ctx context.Context) (*models.Pokemon, bool, error) {
		p, err := s.upstream.FetchPokemon(ctx, id.String())
		return p, err == nil, err
	})
}

// GetPokemonList returns one page of summaries in upstream order.
func (s *PokemonService) GetPokemonList(ctx context.Context, page, limit int) (*models.Page[models.Summary], error) {
	if err := s.validator.ValidatePagination(page, limit); err != nil {
		return nil, err
	}

	entry, err := lookup(ctx, s, listKey(page, limit), func(ctx context.Context) (listEntry, bool, error) {
		list, err := s.upstream.FetchPokemonList(ctx, limit, (page-1)*limit)
		if err != nil {
			return listEntry{}, false, err
		}
		data, err := s.summaries(ctx, resourceNames(list.Results))
		if err != nil {
			return listEntry{}, false, err
		}
		return listEntry{Data: data, Total: list.Count}, true, nil
	})
	if err != nil {
		return nil, err
	}
	return models.NewPage(slices.Clone(entry.Data), page, limit, entry.Total), nil
}

// Search looks up by name first and falls back to type when the name path
// yields nothing.
func (s *PokemonService) Search(ctx context.Context, q models.SearchQuery) ([]models.Summary, error) {
	q.Name = strings.ToLower(strings.TrimSpace(q.Name))
	q.Type = strings.ToLower(strings.TrimSpace(q.Type))
	if err := s.validator.CheckSearchParams(q); err != nil {
		return nil, err
	}
	if q.Limit == 0 {
		q.Limit = s.validator.Limits().DefaultLimit
	}

	results, err := lookup(ctx, s, searchKey(q.Name, q.Type, q.Limit), func(ctx context.Context) ([]models.Summary, bool, error) {
		var results []models.Summary
		if q.Name != "" {
			var err error
			if results, err = s.searchByName(ctx, q.Name, q.Limit); err != nil {
				return nil, false, err
			}
		}
		store := true
		if len(results) == 0 && q.Type != "" {
			results, store = s.searchByType(ctx, q.Type, q.Limit)
		}
		if results == nil {
			results = []models.Summary{}
		}
		return results, store, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(results), nil
}

// RandomPokemon draws a uniformly random ID in [MinID, MaxID].
func (s *PokemonService) RandomPokemon(ctx context.Context) (models.Summary, error) {
	limits := s.validator.Limits()
	id := limits.MinID + s.randIntN(limits.MaxID-limits.MinID+1)

	p, err := s.GetPokemon(ctx, models.IdentifierFromID(id))
	if err != nil {
		return models.Summary{}, err
	}
	return p.Summary(), nil
}

// Exists reports false only when upstream confirmed absence; other failures propagate.
func (s *PokemonService) Exists(ctx context.Context, id models.Identifier) (bool, error) {
	_, err := s.GetPokemon(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errs.IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

func (s *PokemonService) ClearCache() {
	s.cache.Flush()
	s.logger.Info("cache cleared")
	s.notifier.Notify(models.Event{Type: models.EventCacheCleared, At: time.Now()})
}

func (s *PokemonService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// searchByName tries an exact fetch, then a substring scan over the first
// list page of min(limit*5, MaxLimit) entries.
func (s *PokemonService) searchByName(ctx context.Context, name string, limit int) ([]models.Summary, error) {
	p, err := s.GetPokemon(ctx, models.IdentifierFromName(name))
	if err == nil {
		return []models.Summary{p.Summary()}, nil
	}
	if !errs.IsNotFound(err) {
		return nil, err
	}

	s.logger.Debug("no exact match, scanning list", slog.String("name", name))
	page, err := s.GetPokemonList(ctx, 1, min(limit*5, s.validator.Limits().MaxLimit))
	if err != nil {
		return nil, err
	}

	matches := make([]models.Summary, 0, limit)
	for _, sum := range page.Data {
		if strings.Contains(strings.ToLower(sum.Name), name) {
			matches = append(matches, sum)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches, nil
}

// searchByType resolves the first limit members of a category. A failed
// category fetch yields an empty, uncacheable result; members that fail to
// resolve are skipped.
func (s *PokemonService) searchByType(ctx context.Context, typ string, limit int) ([]models.Summary, bool) {
	tr, err := s.upstream.FetchType(ctx, typ)
	if err != nil {
		s.logger.Warn("type lookup failed", slog.String("type", typ), slog.Any("error", err))
		return []models.Summary{}, false
	}

	members := tr.Pokemon[:min(limit, len(tr.Pokemon))]
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Pokemon.Name
	}
	return s.summariesSkippingFailures(ctx, names), true
}

// summaries resolves names concurrently and returns them in input order.
// The first failure cancels the remaining work and is returned.
func (s *PokemonService) summaries(ctx context.Context, names []string) ([]models.Summary, error) {
	out := make([]models.Summary, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := s.GetPokemon(gctx, models.IdentifierFromName(name))
			if err != nil {
				return err
			}
			out[i] = p.Summary()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// summariesSkippingFailures is summaries without fail-fast: failed names are
// logged and dropped, the rest keep input order.
func (s *PokemonService) summariesSkippingFailures(ctx context.Context, names []string) []models.Summary {
	resolved := make([]*models.Summary, len(names))

	var g errgroup.Group
	g.SetLimit(s.fanout)
	for i, name := range names {
		g.Go(func() error {
			p, err := s.GetPokemon(ctx, models.IdentifierFromName(name))
			if err != nil {
				s.logger.Warn("skipping unresolved pokemon", slog.String("name", name), slog.Any("error", err))
				return nil
			}
			sum := p.Summary()
			resolved[i] = &sum
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.Summary, 0, len(names))
	for _, sum := range resolved {
		if sum != nil {
			out = append(out, *sum)
		}
	}
	return out
}

// lookup is the cache-or-fetch pipeline shared by every operation. Concurrent
// misses on the same key share one fetch. fetch reports whether its result
// may be cached.
func lookup[T any](ctx context.Context, s *PokemonService, key string, fetch func(context.Context) (T, bool, error)) (T, error) {
	if v, ok := s.cache.Get(key); ok {
		if t, ok := v.(T); ok {
			s.logger.Debug("cache hit", slog.String(observability.LogFieldCacheKey, key))
			return t, nil
		}
	}

	v, err, _ := s.flights.Do(key, func() (any, error) {
		s.logger.Debug("cache miss", slog.String(observability.LogFieldCacheKey, key))
		// a shared flight must not be aborted by whichever caller started it
		t, store, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if store {
			s.cache.Set(key, t)
			s.notifier.Notify(models.Event{Type: models.EventCacheFilled, Key: key, At: time.Now()})
		}
		return t, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func resourceNames(refs []models.NamedResource) []string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	return names
}
