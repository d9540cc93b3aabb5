// Package enrich implements the license enrichment pipeline: a set of
// actions applied in order to a BOM document under a strict
// validate-then-execute contract.
//
// # Action contract
//
// Every action implements three operations, called in this fixed order:
//
//  1. CheckConfig: structural validation of the action's own rules,
//     independent of any document.
//  2. CheckCompatibility: validation that every rule target resolves against
//     the loaded document. Runs only if CheckConfig passed.
//  3. Execute: the mutation. Runs only after both checks passed for every
//     action in the batch, and is assumed not to fail; a failure here is a
//     logic defect, not a recoverable condition.
//
// The [Runner] enforces the contract across a whole batch: no Execute runs
// unless all actions validated, so a document is never partially enriched by
// a half-valid plan.
//
// # Action families
//
//   - [ReplaceAction] rewrites a component's license from literal rule values,
//     targeted by bom-ref.
//   - [LookupAction] derives license expressions from the ClearlyDefined
//     service, targeted by package type.
package enrich

import (
	"context"

	"github.com/bomend/bomend/pkg/result"
	"github.com/bomend/bomend/pkg/sbom"
)

// Action is one unit of enrichment work over a document.
//
// Implementations must keep CheckConfig and CheckCompatibility free of side
// effects; only Execute mutates the document, and only after both checks
// succeeded for every action in the batch.
type Action interface {
	// Name identifies the action in logs and error messages.
	Name() string

	// CheckConfig validates the action's rules structurally, without looking
	// at any document. On success it returns the action itself, validated.
	CheckConfig() result.Result[Action]

	// CheckCompatibility validates that every rule target resolves against
	// doc. It must not mutate doc.
	CheckCompatibility(doc *sbom.Document) result.Result[Action]

	// Execute applies the action's mutation and returns the document for the
	// next action in the chain. Lookup-backed actions perform network calls
	// here, gated by the shared rate limiter.
	Execute(ctx context.Context, doc *sbom.Document) *sbom.Document
}

// ReplaceRule names a component by bom-ref and the literal license to give
// it. Exactly one of Expression, ID, or Name must be set.
type ReplaceRule struct {
	Ref        string `toml:"ref" json:"ref"`
	ID         string `toml:"id,omitempty" json:"id,omitempty"`
	Name       string `toml:"name,omitempty" json:"name,omitempty"`
	Expression string `toml:"expression,omitempty" json:"expression,omitempty"`
}

// LookupRule selects components by package type for service-driven
// enrichment. Provider overrides the type's default data source.
type LookupRule struct {
	Type     string `toml:"type" json:"type"`
	Provider string `toml:"provider,omitempty" json:"provider,omitempty"`
}
