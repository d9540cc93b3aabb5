// Package pkg provides the core libraries for bomend BOM license enrichment.
//
// # Overview
//
// bomend takes a CycloneDX Bill-of-Materials and an enrichment plan and
// fills in license data that build tooling could not determine. The pkg
// directory is organized into a few areas:
//
//  1. [sbom] - CycloneDX document model, purl coordinates, JSON/XML codecs
//  2. [enrich] - Action contract, replace and lookup actions, the runner
//  3. [config] - TOML enrichment plan loading
//  4. [integrations] - HTTP clients for external services (ClearlyDefined)
//  5. [cache], [httputil] - Lookup caching, retry, and rate limiting
//  6. [result], [errors] - Outcome chaining and structured error codes
//
// # Architecture
//
// The typical data flow through bomend:
//
//	CycloneDX BOM + TOML plan
//	         ↓
//	    [config] package (parse plan into actions)
//	         ↓
//	    [enrich] package (validate all, then execute all)
//	         ↓
//	    [integrations/clearlydefined] (license lookups, cached + rate limited)
//	         ↓
//	    enriched CycloneDX JSON/XML output
//
// # Quick Start
//
// Apply a plan to a document:
//
//	import (
//	    "context"
//	    "github.com/bomend/bomend/pkg/config"
//	    "github.com/bomend/bomend/pkg/enrich"
//	    "github.com/bomend/bomend/pkg/sbom"
//	)
//
//	doc, _, err := sbom.Load("bom.json")
//	plan, err := config.Load("plan.toml")
//	res := enrich.NewRunner(nil).Run(context.Background(), doc, plan.Actions(defs, nil))
//	enriched, err := res.Unwrap()
//
// The enrich and sbom packages have no transport dependencies; everything
// network-facing lives under integrations and is injected.
package pkg
