package enrich

import (
	"context"

	bomenderrors "github.com/bomend/bomend/pkg/errors"
	"github.com/bomend/bomend/pkg/result"
	"github.com/bomend/bomend/pkg/sbom"
)

// ReplaceAction overwrites component licenses with literal values from its
// rules. Each rule targets exactly one component by bom-ref and carries
// exactly one license source: an SPDX expression, an SPDX id, or a free-form
// name.
type ReplaceAction struct {
	rules []ReplaceRule
}

// NewReplaceAction creates a replace action for the given rules. The rules
// are validated later by CheckConfig, not here.
func NewReplaceAction(rules []ReplaceRule) *ReplaceAction {
	return &ReplaceAction{rules: rules}
}

func (a *ReplaceAction) Name() string { return "replace" }

// CheckConfig validates the rule list: every rule names a ref, no ref is
// named twice, and each rule sets exactly one of expression, id, or name.
func (a *ReplaceAction) CheckConfig() result.Result[Action] {
	seen := make(map[string]struct{}, len(a.rules))
	for i, rule := range a.rules {
		if rule.Ref == "" {
			return result.Err[Action](bomenderrors.New(bomenderrors.ErrCodeConfigMissingTarget,
				"replace entry %d has no ref", i+1))
		}
		if _, dup := seen[rule.Ref]; dup {
			return result.Err[Action](bomenderrors.New(bomenderrors.ErrCodeConfigDuplicateTarget,
				"replace entry %d targets ref %q more than once", i+1, rule.Ref))
		}
		seen[rule.Ref] = struct{}{}

		sources := 0
		for _, s := range []string{rule.Expression, rule.ID, rule.Name} {
			if s != "" {
				sources++
			}
		}
		switch {
		case sources == 0:
			return result.Err[Action](bomenderrors.New(bomenderrors.ErrCodeConfigInvalid,
				"replace entry for ref %q sets no license: one of expression, id, or name is required", rule.Ref))
		case sources > 1:
			return result.Err[Action](bomenderrors.New(bomenderrors.ErrCodeConfigAmbiguousSource,
				"replace entry for ref %q sets multiple license fields: exactly one of expression, id, or name is allowed", rule.Ref))
		}
	}
	return result.Ok[Action](a)
}

// CheckCompatibility verifies that every rule's ref resolves to a component
// in doc.
func (a *ReplaceAction) CheckCompatibility(doc *sbom.Document) result.Result[Action] {
	for _, rule := range a.rules {
		if doc.Component(rule.Ref) == nil {
			return result.Err[Action](bomenderrors.New(bomenderrors.ErrCodeCompatTargetNotFound,
				"replace target %q does not match any component bom-ref", rule.Ref))
		}
	}
	return result.Ok[Action](a)
}

// Execute overwrites each targeted component's license list with the single
// license the rule carries. Applying the same rules twice yields the same
// document.
func (a *ReplaceAction) Execute(_ context.Context, doc *sbom.Document) *sbom.Document {
	for _, rule := range a.rules {
		c := doc.Component(rule.Ref)
		if c == nil {
			continue // CheckCompatibility already ruled this out
		}
		switch {
		case rule.Expression != "":
			c.Licenses = sbom.ExpressionChoice(rule.Expression)
		case rule.ID != "":
			c.Licenses = sbom.LicenseChoiceOf(rule.ID, "")
		default:
			c.Licenses = sbom.LicenseChoiceOf("", rule.Name)
		}
	}
	return doc
}
