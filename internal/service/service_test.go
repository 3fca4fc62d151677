package service

import (
	"context"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pokedex-api/internal/cache"
	"pokedex-api/internal/errs"
	"pokedex-api/internal/models"
	"pokedex-api/internal/testutil"
	"pokedex-api/internal/validation"
)

// fakeUpstream serves a synthetic dex from memory. The func fields override
// the default behavior per test.
type fakeUpstream struct {
	dex    []models.Pokemon
	byName map[string]models.Pokemon

	pokemonCalls atomic.Int64
	listCalls    atomic.Int64
	typeCalls    atomic.Int64

	fetchPokemon func(ctx context.Context, identifier string) (*models.Pokemon, error)
	fetchType    func(ctx context.Context, name string) (*models.TypeResource, error)
}

func newFakeUpstream(total int) *fakeUpstream {
	f := &fakeUpstream{dex: testutil.Dex(total), byName: map[string]models.Pokemon{}}
	for _, p := range f.dex {
		f.byName[p.Name] = p
	}
	return f
}

func (f *fakeUpstream) FetchPokemon(ctx context.Context, identifier string) (*models.Pokemon, error) {
	f.pokemonCalls.Add(1)
	if f.fetchPokemon != nil {
		return f.fetchPokemon(ctx, identifier)
	}
	return f.lookup(identifier)
}

func (f *fakeUpstream) lookup(identifier string) (*models.Pokemon, error) {
	if id, err := strconv.Atoi(identifier); err == nil {
		if id < 1 || id > len(f.dex) {
			return nil, errs.NotFound(identifier)
		}
		p := f.dex[id-1]
		return &p, nil
	}
	p, ok := f.byName[identifier]
	if !ok {
		return nil, errs.NotFound(identifier)
	}
	return &p, nil
}

func (f *fakeUpstream) FetchPokemonList(_ context.Context, limit, offset int) (*models.ResourceList, error) {
	f.listCalls.Add(1)
	list := &models.ResourceList{Count: len(f.dex), Results: []models.NamedResource{}}
	for i := offset; i < offset+limit && i < len(f.dex); i++ {
		list.Results = append(list.Results, models.NamedResource{Name: f.dex[i].Name})
	}
	return list, nil
}

func (f *fakeUpstream) FetchType(ctx context.Context, name string) (*models.TypeResource, error) {
	f.typeCalls.Add(1)
	if f.fetchType != nil {
		return f.fetchType(ctx, name)
	}
	tr := &models.TypeResource{Name: name}
	for _, p := range f.dex {
		for _, t := range p.Types {
			if t.Type.Name == name {
				tr.Pokemon = append(tr.Pokemon, models.TypeMember{Slot: t.Slot, Pokemon: models.NamedResource{Name: p.Name}})
			}
		}
	}
	if len(tr.Pokemon) == 0 {
		return nil, errs.NotFound(name)
	}
	return tr, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recordingNotifier) Notify(e models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingNotifier) types() []models.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func newTestService(t *testing.T, up Upstream, opts ...Option) *PokemonService {
	t.Helper()
	c := cache.NewTTLCache[string, any](cache.Options{})
	return New(up, c, validation.New(validation.DefaultLimits()), opts...)
}

func names(sums []models.Summary) []string {
	out := make([]string, len(sums))
	for i, s := range sums {
		out[i] = s.Name
	}
	return out
}

func TestGetPokemon_CachesByIdentifier(t *testing.T) {
	up := newFakeUpstream(30)
	svc := newTestService(t, up)
	ctx := context.Background()

	p, err := svc.GetPokemon(ctx, models.IdentifierFromID(25))
	require.NoError(t, err)
	require.Equal(t, "pikachu", p.Name)

	p, err = svc.GetPokemon(ctx, models.IdentifierFromID(25))
	require.NoError(t, err)
	require.Equal(t, "pikachu", p.Name)
	require.EqualValues(t, 1, up.pokemonCalls.Load())

	stats := svc.CacheStats()
	require.EqualValues(t, 1, stats.Hits)
	require.EqualValues(t, 1, stats.Misses)
	require.Equal(t, 1, stats.Keys)

	// a name lookup is a different key
	_, err = svc.GetPokemon(ctx, models.IdentifierFromName("Pikachu"))
	require.NoError(t, err)
	require.EqualValues(t, 2, up.pokemonCalls.Load())
}

func TestGetPokemon_ValidationBeforeUpstream(t *testing.T) {
	up := newFakeUpstream(30)
	svc := newTestService(t, up)

	for _, id := range []models.Identifier{
		models.IdentifierFromID(0),
		models.IdentifierFromID(-1),
		models.IdentifierFromID(1026),
		models.IdentifierFromName("   "),
	} {
		_, err := svc.GetPokemon(context.Background(), id)
		require.True(t, errs.IsValidation(err), "identifier %q", id.String())
	}
	require.Zero(t, up.pokemonCalls.Load())
	require.Zero(t, svc.CacheStats().Misses)
}

func TestGetPokemon_ErrorsAreNotCached(t *testing.T) {
	up := newFakeUpstream(30)
	var fail atomic.Bool
	fail.Store(true)
	up.fetchPokemon = func(_ context.Context, identifier string) (*models.Pokemon, error) {
		if fail.Load() {
			return nil, errs.Unavailable("HTTP 502", 502, nil)
		}
		return up.lookup(identifier)
	}
	svc := newTestService(t, up)
	ctx := context.Background()

	_, err := svc.GetPokemon(ctx, models.IdentifierFromName("missingno"))
	require.True(t, errs.IsUnavailable(err))

	fail.Store(false)
	_, err = svc.GetPokemon(ctx, models.IdentifierFromName("missingno"))
	require.True(t, errs.IsNotFound(err))

	p, err := svc.GetPokemon(ctx, models.IdentifierFromID(4))
	require.NoError(t, err)
	require.Equal(t, "charmander", p.Name)
	require.Equal(t, 1, svc.CacheStats().Keys)
}

func TestGetPokemon_ConcurrentMissesShareOneFetch(t *testing.T) {
	up := newFakeUpstream(30)
	release := make(chan struct{})
	up.fetchPokemon = func(_ context.Context, identifier string) (*models.Pokemon, error) {
		<-release
		return up.lookup(identifier)
	}
	svc := newTestService(t, up)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := svc.GetPokemon(context.Background(), models.IdentifierFromID(7))
			if err == nil {
				results[i] = p.Name
			}
		}()
	}

	require.Eventually(t, func() bool { return up.pokemonCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, up.pokemonCalls.Load())
	for _, name := range results {
		require.Equal(t, "squirtle", name)
	}
}

func TestGetPokemonList_FirstPage(t *testing.T) {
	up := newFakeUpstream(25)
	svc := newTestService(t, up)

	page, err := svc.GetPokemonList(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 10)
	require.Equal(t, "bulbasaur", page.Data[0].Name)
	require.Equal(t, []string{"grass", "poison"}, page.Data[0].Types)
	require.Equal(t, "https://img.example/artwork/1.png", page.Data[0].Image)
	require.Equal(t, models.Pagination{Page: 1, Limit: 10, Total: 25, TotalPages: 3, HasNext: true, HasPrev: false}, page.Pagination)
}

func TestGetPokemonList_LastPartialPage(t *testing.T) {
	up := newFakeUpstream(1025)
	svc := newTestService(t, up)

	page, err := svc.GetPokemonList(context.Background(), 52, 20)
	require.NoError(t, err)
	require.Len(t, page.Data, 5)
	require.Equal(t, 1021, page.Data[0].ID)
	require.Equal(t, 1025, page.Data[4].ID)
	require.Equal(t, models.Pagination{Page: 52, Limit: 20, Total: 1025, TotalPages: 52, HasNext: false, HasPrev: true}, page.Pagination)
}

func TestGetPokemonList_PreservesUpstreamOrder(t *testing.T) {
	up := newFakeUpstream(40)
	// later items finish first
	up.fetchPokemon = func(_ context.Context, identifier string) (*models.Pokemon, error) {
		p, err := up.lookup(identifier)
		if err == nil {
			time.Sleep(time.Duration(40-p.ID) * time.Millisecond / 4)
		}
		return p, err
	}
	svc := newTestService(t, up, WithFanout(4))

	page, err := svc.GetPokemonList(context.Background(), 2, 20)
	require.NoError(t, err)
	require.Len(t, page.Data, 20)
	for i, sum := range page.Data {
		require.Equal(t, 21+i, sum.ID)
	}
}

func TestGetPokemonList_CacheHitKeepsTotal(t *testing.T) {
	up := newFakeUpstream(25)
	svc := newTestService(t, up)
	ctx := context.Background()

	first, err := svc.GetPokemonList(ctx, 3, 10)
	require.NoError(t, err)
	calls := up.pokemonCalls.Load()

	second, err := svc.GetPokemonList(ctx, 3, 10)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 25, second.Pagination.Total)
	require.EqualValues(t, 1, up.listCalls.Load())
	require.Equal(t, calls, up.pokemonCalls.Load())
}

func TestGetPokemonList_ItemFailureFailsWholePage(t *testing.T) {
	up := newFakeUpstream(25)
	up.fetchPokemon = func(_ context.Context, identifier string) (*models.Pokemon, error) {
		if identifier == "mon-0005" {
			return nil, errs.Unavailable("HTTP 500", 500, nil)
		}
		return up.lookup(identifier)
	}
	svc := newTestService(t, up)

	_, err := svc.GetPokemonList(context.Background(), 1, 10)
	require.True(t, errs.IsUnavailable(err))
	_, ok := svc.cache.Get(listKey(1, 10))
	require.False(t, ok)
}

func TestGetPokemonList_RejectsBadPagination(t *testing.T) {
	up := newFakeUpstream(25)
	svc := newTestService(t, up)

	for _, tc := range []struct{ page, limit int }{{0, 20}, {1, 0}, {1, 101}, {-3, 10}} {
		_, err := svc.GetPokemonList(context.Background(), tc.page, tc.limit)
		require.True(t, errs.IsValidation(err), "page=%d limit=%d", tc.page, tc.limit)
	}
	require.Zero(t, up.listCalls.Load())
}

func TestGetPokemonList_RejectsOverflowingPage(t *testing.T) {
	up := newFakeUpstream(25)
	svc := newTestService(t, up)

	page, err := svc.GetPokemonList(context.Background(), math.MaxInt/20+2, 20)
	require.Nil(t, page)
	e, ok := errs.As(err)
	require.True(t, ok)
	require.Equal(t, []string{"page is out of range"}, e.Fields)
	require.Zero(t, up.listCalls.Load())
	require.Zero(t, up.pokemonCalls.Load())
}

func TestSearch_ExactName(t *testing.T) {
	up := newFakeUpstream(30)
	svc := newTestService(t, up)

	res, err := svc.Search(context.Background(), models.SearchQuery{Name: " PikaChu "})
	require.NoError(t, err)
	require.Equal(t, []string{"pikachu"}, names(res))
	require.Zero(t, up.listCalls.Load())
	require.Zero(t, up.typeCalls.Load())

	_, ok := svc.cache.Get(searchKey("pikachu", "", 20))
	require.True(t, ok)
}

func TestSearch_SubstringFallback(t *testing.T) {
	up := newFakeUpstream(40)
	svc := newTestService(t, up)

	res, err := svc.Search(context.Background(), models.SearchQuery{Name: "chu", Limit: 6})
	require.NoError(t, err)
	require.Equal(t, []string{"pikachu", "raichu"}, names(res))
	// the scan reads the first min(6*5, 100) entries
	_, ok := svc.cache.Get(listKey(1, 30))
	require.True(t, ok)
	require.EqualValues(t, 1, up.listCalls.Load())
}

func TestSearch_SubstringFallbackRespectsLimit(t *testing.T) {
	up := newFakeUpstream(40)
	svc := newTestService(t, up)

	res, err := svc.Search(context.Background(), models.SearchQuery{Name: "mon-00", Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"mon-0002", "mon-0003"}, names(res))
}

func TestSearch_FallsBackToType(t *testing.T) {
	up := newFakeUpstream(30)
	svc := newTestService(t, up)

	res, err := svc.Search(context.Background(), models.SearchQuery{Name: "zz", Type: "Electric", Limit: 3})
	require.NoError(t, err)
	require.Len(t, res, 3)
	for _, sum := range res {
		require.Contains(t, sum.Types, "electric")
	}
	require.EqualValues(t, 1, up.typeCalls.Load())
}

func TestSearch_TypeSkippedWhenNameMatches(t *testing.T) {
	up := newFakeUpstream(30)
	svc := newTestService(t, up)

	res, err := svc.Search(context.Background(), models.SearchQuery{Name: "bulbasaur", Type: "fire"})
	require.NoError(t, err)
	require.Equal(t, []string{"bulbasaur"}, names(res))
	require.Zero(t, up.typeCalls.Load())
}

func TestSearch_TypeSkipsFailedMembers(t *testing.T) {
	up := newFakeUpstream(30)
	up.fetchPokemon = func(_ context.Context, identifier string) (*models.Pokemon, error) {
		if identifier == "mon-0008" {
			return nil, errs.Unavailable("HTTP 500", 500, nil)
		}
		return up.lookup(identifier)
	}
	svc := newTestService(t, up)

	res, err := svc.Search(context.Background(), models.SearchQuery{Type: "electric", Limit: 4})
	require.NoError(t, err)
	require.Equal(t, []string{"mon-0003", "mon-0013"}, names(res)[:2])
	require.Len(t, res, 3)
}

func TestSearch_TypeFailureYieldsEmptyUncached(t *testing.T) {
	up := newFakeUpstream(30)
	up.fetchType = func(context.Context, string) (*models.TypeResource, error) {
		return nil, errs.Unavailable("HTTP 503", 503, nil)
	}
	svc := newTestService(t, up)

	res, err := svc.Search(context.Background(), models.SearchQuery{Type: "fire"})
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Empty(t, res)
	_, ok := svc.cache.Get(searchKey("", "fire", 20))
	require.False(t, ok)
}

func TestSearch_UnknownNameWithoutTypeIsEmpty(t *testing.T) {
	up := newFakeUpstream(30)
	svc := newTestService(t, up)

	res, err := svc.Search(context.Background(), models.SearchQuery{Name: "zzzz"})
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Empty(t, res)
}

func TestSearch_NameUnavailablePropagates(t *testing.T) {
	up := newFakeUpstream(30)
	up.fetchPokemon = func(context.Context, string) (*models.Pokemon, error) {
		return nil, errs.Unavailable("request failed", 0, nil)
	}
	svc := newTestService(t, up)

	_, err := svc.Search(context.Background(), models.SearchQuery{Name: "pikachu", Type: "electric"})
	require.True(t, errs.IsUnavailable(err))
	require.Zero(t, up.listCalls.Load())
}

func TestSearch_Validation(t *testing.T) {
	up := newFakeUpstream(30)
	svc := newTestService(t, up)

	_, err := svc.Search(context.Background(), models.SearchQuery{})
	require.True(t, errs.IsValidation(err))

	_, err = svc.Search(context.Background(), models.SearchQuery{Name: "a", Limit: 500})
	e, ok := errs.As(err)
	require.True(t, ok)
	require.Equal(t, errs.KindValidation, e.Kind)
	require.Len(t, e.Fields, 2)
	require.Zero(t, up.pokemonCalls.Load())
}

func TestRandomPokemon_UsesInjectedSource(t *testing.T) {
	up := newFakeUpstream(30)
	var gotN int
	svc := newTestService(t, up, WithRandom(func(n int) int {
		gotN = n
		return 24
	}))

	sum, err := svc.RandomPokemon(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1025, gotN)
	require.Equal(t, "pikachu", sum.Name)
}

func TestRandomPokemon_StaysInRange(t *testing.T) {
	up := newFakeUpstream(1025)
	svc := newTestService(t, up)

	for range 50 {
		sum, err := svc.RandomPokemon(context.Background())
		require.NoError(t, err)
		require.GreaterOrEqual(t, sum.ID, 1)
		require.LessOrEqual(t, sum.ID, 1025)
	}
}

func TestExists(t *testing.T) {
	up := newFakeUpstream(30)
	svc := newTestService(t, up)
	ctx := context.Background()

	ok, err := svc.Exists(ctx, models.IdentifierFromName("raichu"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.Exists(ctx, models.IdentifierFromName("agumon"))
	require.NoError(t, err)
	require.False(t, ok)

	_, err = svc.Exists(ctx, models.IdentifierFromID(2000))
	require.True(t, errs.IsValidation(err))

	up.fetchPokemon = func(context.Context, string) (*models.Pokemon, error) {
		return nil, errs.Unavailable("HTTP 500", 500, nil)
	}
	_, err = svc.Exists(ctx, models.IdentifierFromName("gabumon"))
	require.True(t, errs.IsUnavailable(err))
}

func TestClearCache(t *testing.T) {
	up := newFakeUpstream(30)
	notifier := &recordingNotifier{}
	svc := newTestService(t, up, WithNotifier(notifier))
	ctx := context.Background()

	for id := 1; id <= 3; id++ {
		_, err := svc.GetPokemon(ctx, models.IdentifierFromID(id))
		require.NoError(t, err)
	}
	_, err := svc.GetPokemon(ctx, models.IdentifierFromID(1))
	require.NoError(t, err)
	require.Equal(t, 3, svc.CacheStats().Keys)

	svc.ClearCache()
	require.Equal(t, cache.Stats{}, svc.CacheStats())

	_, err = svc.GetPokemon(ctx, models.IdentifierFromID(1))
	require.NoError(t, err)
	require.EqualValues(t, 4, up.pokemonCalls.Load())

	require.Equal(t, []models.EventType{
		models.EventCacheFilled, models.EventCacheFilled, models.EventCacheFilled,
		models.EventCacheCleared,
		models.EventCacheFilled,
	}, notifier.types())
}

func TestCacheKeys(t *testing.T) {
	require.Equal(t, "entity:25", entityKey(models.IdentifierFromID(25)))
	require.Equal(t, "entity:pikachu", entityKey(models.IdentifierFromName("PIKACHU")))
	require.Equal(t, "list:2:20", listKey(2, 20))
	require.Equal(t, "search:pika-electric-5", searchKey("pika", "electric", 5))
	require.Equal(t, "search:-fire-20", searchKey("", "fire", 20))
	require.Equal(t, "search:ho%2Doh--20", searchKey("ho-oh", "", 20))
	require.NotEqual(t, searchKey("ho-oh", "", 20), searchKey("ho", "oh-", 20))
	require.NotEqual(t, searchKey("a%2D", "", 20), searchKey("a-", "", 20))
}

func TestSearch_HyphenatedNamesDoNotShareCacheEntries(t *testing.T) {
	up := newFakeUpstream(30)
	hooh := testutil.NewPokemon(250, "ho-oh", "fire", "flying")
	up.byName[hooh.Name] = hooh
	svc := newTestService(t, up)
	ctx := context.Background()

	res, err := svc.Search(ctx, models.SearchQuery{Name: "ho-oh"})
	require.NoError(t, err)
	require.Equal(t, []string{"ho-oh"}, names(res))

	res, err = svc.Search(ctx, models.SearchQuery{Name: "ho", Type: "oh-"})
	require.NoError(t, err)
	require.Empty(t, res)
}
