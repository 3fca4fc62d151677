// Package pokeapi is a thin typed client for the public PokeAPI REST catalog.
// It maps 404 to errs.NotFound and every other failure to errs.Unavailable.
package pokeapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"pokedex-api/internal/errs"
	"pokedex-api/internal/models"
	"pokedex-api/internal/observability"
)

const (
	DefaultBaseURL = "https://pokeapi.co/api/v2"

	// maxErrorBody caps how much of a failed response is kept for diagnostics.
	maxErrorBody = 512
)

// Recorder receives one record per upstream call. Implementations must be
// safe for concurrent use.
type Recorder interface {
	Record(ctx context.Context, call models.UpstreamCall) error
}

// Client issues GET requests against the catalog API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
	recorder   Recorder
}

// Option customizes a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRecorder journals every call. Recording failures are logged, never returned.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// NewClient creates a Client rooted at baseURL (e.g. https://pokeapi.co/api/v2).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base URL %q", baseURL)
	}

	c := &Client{
		baseURL:    base,
		httpClient: NewHTTPClient("pokedex-api", DefaultTimeout, nil),
		logger:     observability.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchPokemon retrieves one entity by numeric ID or name.
func (c *Client) FetchPokemon(ctx context.Context, identifier string) (*models.Pokemon, error) {
	var p models.Pokemon
	if err := c.getJSON(ctx, "pokemon/"+url.PathEscape(identifier), nil, identifier, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FetchPokemonList retrieves one page of name references.
func (c *Client) FetchPokemonList(ctx context.Context, limit, offset int) (*models.ResourceList, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var list models.ResourceList
	if err := c.getJSON(ctx, "pokemon", params, "pokemon list", &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// FetchType retrieves a category and its members.
func (c *Client) FetchType(ctx context.Context, name string) (*models.TypeResource, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	var tr models.TypeResource
	if err := c.getJSON(ctx, "type/"+url.PathEscape(name), nil, "type "+name, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// getJSON performs the request and decodes a 2xx body into out. resource
// names the thing being fetched for NotFound errors.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, resource string, out any) error {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return errs.Unavailable("invalid endpoint", 0, errors.Wrapf(err, "parse endpoint %q", endpoint))
	}
	full := c.baseURL.ResolveReference(ref)
	if params != nil {
		full.RawQuery = params.Encode()
	}
	path := "/" + endpoint
	if full.RawQuery != "" {
		path += "?" + full.RawQuery
	}

	c.logger.Info("upstream request",
		slog.String(observability.LogFieldMethod, http.MethodGet),
		slog.String(observability.LogFieldPath, path),
	)

	start := time.Now()
	status, err := c.do(ctx, full.String(), resource, out)
	c.record(ctx, path, status, time.Since(start), err)
	return err
}

func (c *Client) do(ctx context.Context, urlStr, resource string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return 0, errs.Unavailable("failed to build request", 0, errors.Wrap(err, "new request"))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errs.Unavailable("network error while contacting PokeAPI", 0, errors.Wrapf(err, "GET %s", urlStr))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, errs.NotFound(resource)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Body: body}
		return resp.StatusCode, errs.Unavailable("HTTP "+strconv.Itoa(resp.StatusCode), resp.StatusCode, httpErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, errs.Unavailable("malformed upstream response", resp.StatusCode, errors.Wrapf(err, "decode %s", urlStr))
	}
	return resp.StatusCode, nil
}

func (c *Client) record(ctx context.Context, path string, status int, elapsed time.Duration, callErr error) {
	if c.recorder == nil {
		return
	}
	call := models.UpstreamCall{
		Method:     http.MethodGet,
		Path:       path,
		StatusCode: status,
		Outcome:    models.OutcomeSuccess,
		DurationMs: elapsed.Milliseconds(),
	}
	if callErr != nil {
		call.Error = callErr.Error()
		call.Outcome = models.OutcomeFailure
		if errs.IsNotFound(callErr) {
			call.Outcome = models.OutcomeNotFound
		}
	}
	// journal writes must outlive a cancelled request context
	if err := c.recorder.Record(context.WithoutCancel(ctx), call); err != nil {
		c.logger.Warn("failed to journal upstream call", slog.String(observability.LogFieldPath, path), slog.Any("error", err))
	}
}
