// Package config loads enrichment plans from TOML files.
//
// A plan is a list of rule tables, one array per action kind:
//
//	[[replace]]
//	ref = "pkg-1"
//	expression = "MIT"
//
//	[[lookup]]
//	type = "npm"
//
// Rules of one kind are grouped into a single action; action kinds run in
// the order they first appear in the file.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/bomend/bomend/pkg/enrich"
	bomenderrors "github.com/bomend/bomend/pkg/errors"
)

// Plan is a parsed enrichment plan: the rules for each action kind plus
// the order in which the kinds appeared in the source file.
type Plan struct {
	Replace []enrich.ReplaceRule `toml:"replace"`
	Lookup  []enrich.LookupRule  `toml:"lookup"`

	order []string
}

// Load reads and parses a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, bomenderrors.Wrap(bomenderrors.ErrCodeConfigInvalid, err, "read plan %s", path)
	}
	return Parse(data)
}

// Parse parses plan TOML. Unknown keys are rejected; a typo in a rule field
// must not silently drop the rule's intent.
func Parse(data []byte) (*Plan, error) {
	var plan Plan
	md, err := toml.Decode(string(data), &plan)
	if err != nil {
		return nil, bomenderrors.Wrap(bomenderrors.ErrCodeConfigInvalid, err, "parse plan")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, bomenderrors.New(bomenderrors.ErrCodeConfigInvalid,
			"unknown key %q in plan", undecoded[0].String())
	}
	plan.order = kindOrder(md)
	return &plan, nil
}

// Actions assembles the plan's action batch in file order. Kinds with no
// rules produce no action. The runner validates the batch; Actions itself
// never fails.
func (p *Plan) Actions(defs enrich.Definitions, logger *log.Logger) []enrich.Action {
	var actions []enrich.Action
	for _, kind := range p.order {
		switch kind {
		case "replace":
			if len(p.Replace) > 0 {
				actions = append(actions, enrich.NewReplaceAction(p.Replace))
			}
		case "lookup":
			if len(p.Lookup) > 0 {
				actions = append(actions, enrich.NewLookupAction(p.Lookup, defs, logger))
			}
		}
	}
	return actions
}

// Empty reports whether the plan holds no rules at all.
func (p *Plan) Empty() bool {
	return len(p.Replace) == 0 && len(p.Lookup) == 0
}

// NeedsLookup reports whether the plan contains lookup rules, and so needs
// a definitions client wired in.
func (p *Plan) NeedsLookup() bool {
	return len(p.Lookup) > 0
}

// kindOrder extracts the top-level table names in their order of first
// appearance in the decoded document.
func kindOrder(md toml.MetaData) []string {
	var order []string
	seen := make(map[string]struct{})
	for _, key := range md.Keys() {
		kind := key[0]
		if _, ok := seen[kind]; ok {
			continue
		}
		seen[kind] = struct{}{}
		order = append(order, kind)
	}
	return order
}
