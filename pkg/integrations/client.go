// Package integrations provides shared HTTP plumbing for external data
// service clients: response caching, retry classification, and common request
// headers.
package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bomend/bomend/pkg/cache"
	bomenderrors "github.com/bomend/bomend/pkg/errors"
	"github.com/bomend/bomend/pkg/httputil"
)

// attemptTimeout bounds a single request attempt. A timeout aborts only that
// attempt; the retry policy decides whether another one is made.
const attemptTimeout = 60 * time.Second

var (
	// ErrNotFound is returned when the service has no data for a coordinate.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors,
	// 5xx responses).
	ErrNetwork = errors.New("network error")
)

// Client provides shared HTTP functionality for data service clients.
// It handles caching, retry classification, and common request headers.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	headers map[string]string
}

// NewClient creates a Client storing responses in c with the given TTL.
// Headers are applied to all requests made through this client; pass nil if
// none are needed.
func NewClient(c cache.Cache, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    &http.Client{Timeout: attemptTimeout},
		cache:   c,
		ttl:     ttl,
		headers: headers,
	}
}

// Cached retrieves a JSON value from the cache or executes fetch and caches
// the result. If refresh is true the cache is bypassed and fetch always runs,
// wrapped in the standard retry policy. The fetch function should populate v;
// on success, v is stored under key.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	if !refresh {
		if data, hit, _ := c.cache.Get(ctx, key); hit {
			if json.Unmarshal(data, v) == nil {
				return nil
			}
		}
	}
	if err := httputil.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = c.cache.Set(ctx, key, data, c.ttl)
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

func (c *Client) doRequest(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// checkStatus classifies a response status for the retry policy: 5xx and 429
// are transient, 404 means the service has nothing for this coordinate, and
// every other non-success status is a permanent failure.
func checkStatus(resp *http.Response) error {
	switch code := resp.StatusCode; {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		after, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return httputil.Retryable(&bomenderrors.RateLimitedError{RetryAfter: after})
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
