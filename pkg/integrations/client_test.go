package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bomend/bomend/pkg/cache"
	bomenderrors "github.com/bomend/bomend/pkg/errors"
	"github.com/bomend/bomend/pkg/httputil"
)

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient(cache.NewNullCache(), time.Hour, nil)

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want hello", resp.Message)
	}
}

func TestClientSendsHeaders(t *testing.T) {
	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Get("User-Agent")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := NewClient(cache.NewNullCache(), time.Hour, map[string]string{"User-Agent": "bomend-test"})

	var resp map[string]string
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if received != "bomend-test" {
		t.Errorf("User-Agent = %q, want bomend-test", received)
	}
}

func TestClientGet404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(cache.NewNullCache(), time.Hour, nil)

	var resp map[string]string
	err := client.Get(context.Background(), server.URL, &resp)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if httputil.IsRetryable(err) {
		t.Error("404 must not be retryable")
	}
}

func TestClientGet500IsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(cache.NewNullCache(), time.Hour, nil)

	var resp map[string]string
	err := client.Get(context.Background(), server.URL, &resp)
	if err == nil {
		t.Fatal("Get() should return error for 500")
	}
	if !httputil.IsRetryable(err) {
		t.Errorf("500 should be retryable, got %T", err)
	}
}

func TestClientGet429IsRetryableRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(cache.NewNullCache(), time.Hour, nil)

	var resp map[string]string
	err := client.Get(context.Background(), server.URL, &resp)
	if !httputil.IsRetryable(err) {
		t.Fatalf("429 should be retryable, got %v", err)
	}

	var rl *bomenderrors.RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("429 should carry RateLimitedError, got %T", err)
	}
	if rl.RetryAfter != 7 {
		t.Errorf("RetryAfter = %d, want 7", rl.RetryAfter)
	}
}

func TestClientConnectionErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(cache.NewNullCache(), time.Hour, nil)

	var resp map[string]string
	err := client.Get(context.Background(), server.URL, &resp)
	if !httputil.IsRetryable(err) {
		t.Errorf("connection error should be retryable, got %v", err)
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("connection error should wrap ErrNetwork, got %v", err)
	}
}

func TestClientCachedHitSkipsFetch(t *testing.T) {
	ctx := context.Background()
	fileCache, _ := cache.NewFileCache(t.TempDir())
	defer fileCache.Close()

	client := NewClient(fileCache, time.Hour, nil)

	type payload struct {
		Value string `json:"value"`
	}

	fetchCount := 0
	fetch := func(v *payload) func() error {
		return func() error {
			fetchCount++
			v.Value = "fetched"
			return nil
		}
	}

	var first payload
	if err := client.Cached(ctx, "key", false, &first, fetch(&first)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetchCount != 1 {
		t.Fatalf("fetch count = %d, want 1", fetchCount)
	}

	var second payload
	if err := client.Cached(ctx, "key", false, &second, fetch(&second)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetchCount != 1 {
		t.Errorf("fetch count = %d, want 1: second call should hit the cache", fetchCount)
	}
	if second.Value != "fetched" {
		t.Errorf("cached value = %q, want fetched", second.Value)
	}
}

func TestClientCachedRefreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	fileCache, _ := cache.NewFileCache(t.TempDir())
	defer fileCache.Close()

	client := NewClient(fileCache, time.Hour, nil)

	fetchCount := 0
	var value string
	fetch := func() error {
		fetchCount++
		value = "fetched"
		return nil
	}

	_ = client.Cached(ctx, "key", false, &value, fetch)
	_ = client.Cached(ctx, "key", true, &value, fetch)
	if fetchCount != 2 {
		t.Errorf("fetch count = %d, want 2: refresh must bypass the cache", fetchCount)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	client := NewClient(cache.NewNullCache(), time.Hour, nil)

	fetchCount := 0
	var value string
	err := client.Cached(context.Background(), "key", false, &value, func() error {
		fetchCount++
		return ErrNotFound // non-retryable
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Cached() error = %v, want ErrNotFound", err)
	}
	if fetchCount != 1 {
		t.Errorf("fetch count = %d, want 1", fetchCount)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		wantErr   bool
		wantIs    error
		retryable bool
	}{
		{name: "200 OK", code: 200},
		{name: "404 Not Found", code: 404, wantErr: true, wantIs: ErrNotFound},
		{name: "429 Too Many Requests", code: 429, wantErr: true, retryable: true},
		{name: "500 Internal Server Error", code: 500, wantErr: true, wantIs: ErrNetwork, retryable: true},
		{name: "503 Service Unavailable", code: 503, wantErr: true, wantIs: ErrNetwork, retryable: true},
		{name: "400 Bad Request", code: 400, wantErr: true, wantIs: ErrNetwork},
		{name: "403 Forbidden", code: 403, wantErr: true, wantIs: ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.code, Header: http.Header{}}
			err := checkStatus(resp)

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("checkStatus() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("checkStatus() should return error")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("checkStatus() error = %v, want %v", err, tt.wantIs)
			}
			if httputil.IsRetryable(err) != tt.retryable {
				t.Errorf("retryable = %v, want %v", httputil.IsRetryable(err), tt.retryable)
			}
		})
	}
}
