package enrich

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	bomenderrors "github.com/bomend/bomend/pkg/errors"
	"github.com/bomend/bomend/pkg/result"
	"github.com/bomend/bomend/pkg/sbom"
)

// Definitions is the license data source a LookupAction queries. The
// production implementation is the clearlydefined client; tests substitute
// an in-memory fake.
//
// DeclaredLicense reports absence, never an error: a coordinate the service
// has no data for is skipped, not failed.
type Definitions interface {
	DeclaredLicense(ctx context.Context, coord sbom.Coordinate, provider string) (string, bool)
}

// LookupAction enriches components by package type: every component whose
// purl type matches a rule gets its license looked up from the definitions
// service and, when found, replaced with the declared expression.
type LookupAction struct {
	rules  []LookupRule
	defs   Definitions
	logger *log.Logger
}

// NewLookupAction creates a lookup action backed by defs. A nil logger
// falls back to the package default.
func NewLookupAction(rules []LookupRule, defs Definitions, logger *log.Logger) *LookupAction {
	if logger == nil {
		logger = log.Default()
	}
	return &LookupAction{rules: rules, defs: defs, logger: logger}
}

func (a *LookupAction) Name() string { return "lookup" }

// CheckConfig validates the rule list: every rule names a package type, no
// type is named twice, and every rule resolves to a provider, either the
// explicit one or the type's default.
func (a *LookupAction) CheckConfig() result.Result[Action] {
	seen := make(map[string]struct{}, len(a.rules))
	for i, rule := range a.rules {
		if rule.Type == "" {
			return result.Err[Action](bomenderrors.New(bomenderrors.ErrCodeConfigMissingTarget,
				"lookup entry %d has no package type", i+1))
		}
		pkgType := strings.ToLower(rule.Type)
		if _, dup := seen[pkgType]; dup {
			return result.Err[Action](bomenderrors.New(bomenderrors.ErrCodeConfigDuplicateTarget,
				"lookup entry %d targets package type %q more than once", i+1, pkgType))
		}
		seen[pkgType] = struct{}{}

		if _, ok := a.provider(rule); !ok {
			return result.Err[Action](bomenderrors.New(bomenderrors.ErrCodeConfigUnknownProvider,
				"lookup entry for package type %q has no default provider: set one explicitly", pkgType))
		}
	}
	return result.Ok[Action](a)
}

// CheckCompatibility verifies that every rule's package type matches at
// least one component carrying a parseable purl.
func (a *LookupAction) CheckCompatibility(doc *sbom.Document) result.Result[Action] {
	for _, rule := range a.rules {
		if len(a.matches(doc, rule)) == 0 {
			return result.Err[Action](bomenderrors.New(bomenderrors.ErrCodeCompatTargetNotFound,
				"lookup target %q does not match any component package type", strings.ToLower(rule.Type)))
		}
	}
	return result.Ok[Action](a)
}

// Execute looks up the declared license for every matching component.
// Lookups within a rule run concurrently; the shared rate limiter inside
// the definitions client bounds the outbound rate. Components the service
// has no data for keep their existing license untouched.
func (a *LookupAction) Execute(ctx context.Context, doc *sbom.Document) *sbom.Document {
	for _, rule := range a.rules {
		provider, _ := a.provider(rule)
		targets := a.matches(doc, rule)
		a.logger.Debug("looking up licenses", "type", strings.ToLower(rule.Type), "provider", provider, "components", len(targets))

		var wg sync.WaitGroup
		for _, t := range targets {
			wg.Add(1)
			go func(c *sbom.Component, coord sbom.Coordinate) {
				defer wg.Done()
				expr, ok := a.defs.DeclaredLicense(ctx, coord, provider)
				if !ok {
					a.logger.Debug("no declared license, skipping", "purl", c.PURL)
					return
				}
				c.Licenses = sbom.ExpressionChoice(expr)
			}(t.component, t.coord)
		}
		wg.Wait()
	}
	return doc
}

type lookupTarget struct {
	component *sbom.Component
	coord     sbom.Coordinate
}

// matches returns the components whose purl type equals the rule's type.
// Rule types are unique after CheckConfig and each component has one type,
// so no component is written by two rules.
func (a *LookupAction) matches(doc *sbom.Document, rule LookupRule) []lookupTarget {
	pkgType := strings.ToLower(rule.Type)
	var out []lookupTarget
	for i := range doc.Components {
		c := &doc.Components[i]
		coord, ok := c.Coordinate()
		if !ok || coord.Type != pkgType {
			continue
		}
		out = append(out, lookupTarget{component: c, coord: coord})
	}
	return out
}

// provider resolves the data source for a rule: the explicit provider when
// set, otherwise the default for the rule's package type.
func (a *LookupAction) provider(rule LookupRule) (string, bool) {
	if rule.Provider != "" {
		return rule.Provider, true
	}
	return sbom.DefaultProvider(strings.ToLower(rule.Type))
}
