package enrich

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/bomend/bomend/pkg/result"
	"github.com/bomend/bomend/pkg/sbom"
)

// Runner applies a batch of actions to a document under the two-phase
// contract: first every action's CheckConfig, then every action's
// CheckCompatibility, and only if all of them passed, every Execute in
// order. A batch that fails validation leaves the document untouched.
type Runner struct {
	logger *log.Logger
}

// NewRunner creates a runner. A nil logger falls back to the package
// default.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{logger: logger}
}

// Run validates and executes actions against doc. The first validation
// failure aborts the whole batch before any mutation. On success the
// returned document is doc itself, enriched in place, with its version
// bumped and a serial number assigned when it had none.
func (r *Runner) Run(ctx context.Context, doc *sbom.Document, actions []Action) result.Result[*sbom.Document] {
	validated := result.Bind(r.checkConfigs(actions), func(as []Action) result.Result[[]Action] {
		return r.checkCompatibility(doc, as)
	})
	return result.Map(validated, func(as []Action) *sbom.Document {
		out := doc
		for _, a := range as {
			r.logger.Info("applying action", "action", a.Name())
			out = a.Execute(ctx, out)
		}
		if len(as) > 0 {
			out.Touch()
		}
		return out
	})
}

// checkConfigs folds CheckConfig over the batch, stopping at the first
// structural error.
func (r *Runner) checkConfigs(actions []Action) result.Result[[]Action] {
	for _, a := range actions {
		if res := a.CheckConfig(); res.IsErr() {
			r.logger.Error("invalid action configuration", "action", a.Name(), "err", res.Err())
			return result.Err[[]Action](res.Err())
		}
	}
	return result.Ok(actions)
}

// checkCompatibility folds CheckCompatibility over the batch, stopping at
// the first target that does not resolve against doc.
func (r *Runner) checkCompatibility(doc *sbom.Document, actions []Action) result.Result[[]Action] {
	for _, a := range actions {
		if res := a.CheckCompatibility(doc); res.IsErr() {
			r.logger.Error("action does not apply to document", "action", a.Name(), "err", res.Err())
			return result.Err[[]Action](res.Err())
		}
	}
	return result.Ok(actions)
}
