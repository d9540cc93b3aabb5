package clearlydefined

import (
	"context"
	"fmt"

	"github.com/bomend/bomend/pkg/cache"
	"github.com/bomend/bomend/pkg/httputil"
	"github.com/bomend/bomend/pkg/integrations"
	"github.com/bomend/bomend/pkg/sbom"
)

// DefaultBaseURL is the production definitions endpoint.
const DefaultBaseURL = "https://api.clearlydefined.io/definitions"

// LicensedData is the licensed facet of a definition: the declared license
// expression plus the discovered breakdown per source file scan.
type LicensedData struct {
	Declared string `json:"declared"`
	Facets   Facets `json:"facets"`
}

// Facets groups per-facet license findings; only the core facet is modeled.
type Facets struct {
	Core CoreFacet `json:"core"`
}

// CoreFacet carries the scan results for the package's primary content.
type CoreFacet struct {
	Discovered Discovered `json:"discovered"`
	Files      int        `json:"files,omitempty"`
}

// Discovered lists license expressions found by scanning, as opposed to the
// declared license asserted by the package metadata.
type Discovered struct {
	Expressions []string `json:"expressions,omitempty"`
	Unknown     int      `json:"unknown,omitempty"`
}

// definition is the response envelope; everything but the licensed facet is
// ignored.
type definition struct {
	Licensed LicensedData `json:"licensed"`
}

// Client fetches license definitions for package coordinates.
//
// Every fetch is admitted by the shared rate limiter and retried with
// backoff on transient failures. Failures never escape as errors: a fetch
// that cannot produce data after reasonable effort reports absence, which
// callers must treat as "skip enrichment for this coordinate".
type Client struct {
	*integrations.Client
	baseURL string
	limiter *httputil.Limiter

	// Refresh re-fetches definitions even when a cached copy exists.
	Refresh bool
}

// NewClient creates a definitions client. Responses are cached in c; the
// limiter gates all outbound calls and must be the process-wide instance.
// An empty baseURL selects the production endpoint.
func NewClient(c cache.Cache, limiter *httputil.Limiter, baseURL string) *Client {
	if limiter == nil {
		limiter = httputil.NewDefaultLimiter()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Client:  integrations.NewClient(c, cache.DefaultTTL, map[string]string{"Accept": "application/json"}),
		baseURL: baseURL,
		limiter: limiter,
	}
}

// DeclaredLicense fetches the declared license expression for a coordinate.
// Returns ok=false when the service has no data, the declared field is empty,
// or the lookup failed after retries.
func (c *Client) DeclaredLicense(ctx context.Context, coord sbom.Coordinate, provider string) (string, bool) {
	licensed, ok := c.Definition(ctx, coord, provider, c.Refresh)
	if !ok || licensed.Declared == "" {
		return "", false
	}
	return licensed.Declared, true
}

// Definition fetches the licensed facet of a coordinate's definition.
// The lookup never raises: every failure mode collapses to ok=false.
func (c *Client) Definition(ctx context.Context, coord sbom.Coordinate, provider string, refresh bool) (*LicensedData, bool) {
	key := "clearlydefined:" + provider + ":" + coord.String()
	url := fmt.Sprintf("%s/%s/%s/%s/%s/%s",
		c.baseURL, coord.Type, provider, coord.NamespaceOrDash(), coord.Name, coord.Version)

	// One token admits the whole fetch; retries of the same fetch do not
	// consume additional tokens, and cache hits never touch the limiter.
	acquired := false
	var def definition
	err := c.Cached(ctx, key, refresh, &def, func() error {
		if !acquired {
			if err := c.limiter.Acquire(ctx); err != nil {
				return err
			}
			acquired = true
		}
		return c.Get(ctx, url, &def)
	})
	if err != nil {
		return nil, false
	}
	return &def.Licensed, true
}

// ResolveProvider returns the provider to query for a coordinate: the
// explicit one when set, otherwise the default for the coordinate's type.
func ResolveProvider(coord sbom.Coordinate, explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	return sbom.DefaultProvider(coord.Type)
}
