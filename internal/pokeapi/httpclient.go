package pokeapi

import (
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds every upstream call.
const DefaultTimeout = 10 * time.Second

// HTTPError captures an unexpected status code and a prefix of the response body.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, string(e.Body))
}

// userAgentRoundTripper is a custom RoundTripper that adds a User-Agent header.
type userAgentRoundTripper struct {
	wrapped   http.RoundTripper
	userAgent string
}

func (rt *userAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone request to avoid mutating the original
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", rt.userAgent)
	return rt.wrapped.RoundTrip(clone)
}

// NewHTTPClient returns an *http.Client with the given timeout and User-Agent.
// A nil base transport falls back to http.DefaultTransport.
func NewHTTPClient(userAgent string, timeout time.Duration, base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Transport: &userAgentRoundTripper{wrapped: base, userAgent: userAgent},
		Timeout:   timeout,
	}
}
