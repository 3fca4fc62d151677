package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"pokedex-api/internal/models"
)

// FakePokeAPI serves the /pokemon, /pokemon/{id|name} and /type/{name}
// endpoints from an in-memory dex and counts requests per path.
type FakePokeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	byID     map[int]models.Pokemon
	byName   map[string]models.Pokemon
	ordered  []models.Pokemon
	hits     map[string]int
	failures map[string]int
}

// NewFakePokeAPI starts a server for dex and closes it when the test ends.
func NewFakePokeAPI(t testing.TB, dex []models.Pokemon) *FakePokeAPI {
	t.Helper()

	f := &FakePokeAPI{
		byID:     make(map[int]models.Pokemon, len(dex)),
		byName:   make(map[string]models.Pokemon, len(dex)),
		ordered:  dex,
		hits:     make(map[string]int),
		failures: make(map[string]int),
	}
	for _, p := range dex {
		f.byID[p.ID] = p
		f.byName[p.Name] = p
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /pokemon", f.handleList)
	mux.HandleFunc("GET /pokemon/{ident}", f.handlePokemon)
	mux.HandleFunc("GET /type/{name}", f.handleType)

	f.Server = httptest.NewServer(f.count(mux))
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the base URL to hand to pokeapi.NewClient.
func (f *FakePokeAPI) URL() string {
	return f.Server.URL
}

// Hits reports how many requests reached path (query string excluded).
func (f *FakePokeAPI) Hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

// TotalHits reports every request served.
func (f *FakePokeAPI) TotalHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, h := range f.hits {
		n += h
	}
	return n
}

// FailWith makes every request to path answer with status.
func (f *FakePokeAPI) FailWith(path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[path] = status
}

func (f *FakePokeAPI) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[r.URL.Path]++
		status, fail := f.failures[r.URL.Path]
		f.mu.Unlock()

		if fail {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakePokeAPI) handleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	list := models.ResourceList{Count: len(f.ordered), Results: []models.NamedResource{}}
	for i := offset; i < offset+limit && i < len(f.ordered); i++ {
		p := f.ordered[i]
		list.Results = append(list.Results, models.NamedResource{
			Name: p.Name,
			URL:  fmt.Sprintf("%s/pokemon/%d/", f.Server.URL, p.ID),
		})
	}
	writeJSON(w, list)
}

func (f *FakePokeAPI) handlePokemon(w http.ResponseWriter, r *http.Request) {
	ident := r.PathValue("ident")
	var (
		p  models.Pokemon
		ok bool
	)
	if id, err := strconv.Atoi(ident); err == nil {
		p, ok = f.byID[id]
	} else {
		p, ok = f.byName[ident]
	}
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	writeJSON(w, p)
}

func (f *FakePokeAPI) handleType(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.PathValue("name"))
	tr := models.TypeResource{Name: name}
	for _, p := range f.ordered {
		for _, t := range p.Types {
			if t.Type.Name == name {
				tr.Pokemon = append(tr.Pokemon, models.TypeMember{
					Slot:    t.Slot,
					Pokemon: models.NamedResource{Name: p.Name, URL: fmt.Sprintf("%s/pokemon/%d/", f.Server.URL, p.ID)},
				})
			}
		}
	}
	if tr.Pokemon == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	writeJSON(w, tr)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
