// Package clearlydefined provides an HTTP client for the ClearlyDefined
// definitions API.
//
// # Overview
//
// ClearlyDefined (https://clearlydefined.io) curates licensing data for open
// source packages. A definition is addressed by package coordinate:
//
//	{base}/{type}/{provider}/{namespace|"-"}/{name}/{version}
//
// Only the licensed.declared field of the response is consumed here; the
// discovered facets are modeled but not interpreted.
//
// # Usage
//
//	limiter := httputil.NewDefaultLimiter()
//	client := clearlydefined.NewClient(fileCache, limiter, "")
//
//	coord, _ := sbom.ParsePURL("pkg:npm/lodash@4.17.21")
//	expr, ok := client.DeclaredLicense(ctx, coord, "npmjs")
//	if ok {
//	    // expr holds the declared SPDX expression
//	}
//
// # Failure model
//
// DeclaredLicense never returns an error. Rate-limited and 5xx responses are
// retried with backoff; a 404, a malformed body, an empty declared field, or
// retry exhaustion all collapse to ok=false. Callers skip enrichment for that
// coordinate and move on.
//
// # Rate limiting and caching
//
// All outbound calls pass through the shared token-bucket limiter injected at
// construction; one process must use one limiter instance for the outbound
// rate bound to hold. Successful responses are cached by canonical coordinate
// so repeat enrichments stay off the network.
package clearlydefined
