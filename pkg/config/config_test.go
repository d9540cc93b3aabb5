package config

import (
	"os"
	"path/filepath"
	"testing"

	bomenderrors "github.com/bomend/bomend/pkg/errors"
)

const samplePlan = `
[[replace]]
ref = "pkg-1"
expression = "MIT"

[[replace]]
ref = "pkg-2"
id = "Apache-2.0"

[[lookup]]
type = "npm"

[[lookup]]
type = "pypi"
provider = "pypi"
`

func TestParse(t *testing.T) {
	plan, err := Parse([]byte(samplePlan))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if len(plan.Replace) != 2 {
		t.Fatalf("replace rules = %d, want 2", len(plan.Replace))
	}
	if plan.Replace[0].Ref != "pkg-1" || plan.Replace[0].Expression != "MIT" {
		t.Errorf("replace[0] = %+v", plan.Replace[0])
	}
	if plan.Replace[1].ID != "Apache-2.0" {
		t.Errorf("replace[1] = %+v", plan.Replace[1])
	}

	if len(plan.Lookup) != 2 {
		t.Fatalf("lookup rules = %d, want 2", len(plan.Lookup))
	}
	if plan.Lookup[1].Type != "pypi" || plan.Lookup[1].Provider != "pypi" {
		t.Errorf("lookup[1] = %+v", plan.Lookup[1])
	}
}

func TestActionsFollowFileOrder(t *testing.T) {
	plan, err := Parse([]byte(samplePlan))
	if err != nil {
		t.Fatal(err)
	}
	actions := plan.Actions(nil, nil)
	if len(actions) != 2 {
		t.Fatalf("actions = %d, want 2", len(actions))
	}
	if actions[0].Name() != "replace" || actions[1].Name() != "lookup" {
		t.Errorf("order = %s,%s, want replace,lookup", actions[0].Name(), actions[1].Name())
	}

	reversed := `
[[lookup]]
type = "npm"

[[replace]]
ref = "pkg-1"
expression = "MIT"
`
	plan, err = Parse([]byte(reversed))
	if err != nil {
		t.Fatal(err)
	}
	actions = plan.Actions(nil, nil)
	if actions[0].Name() != "lookup" || actions[1].Name() != "replace" {
		t.Errorf("order = %s,%s, want lookup,replace", actions[0].Name(), actions[1].Name())
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("[[replace]]\nref = \"pkg-1\"\nexpresion = \"MIT\"\n"))
	if err == nil {
		t.Fatal("Parse() should reject misspelled keys")
	}
	if !bomenderrors.IsConfig(err) {
		t.Errorf("error = %v, want config error", err)
	}
}

func TestParseRejectsMalformedTOML(t *testing.T) {
	_, err := Parse([]byte("[[replace]\nref ="))
	if err == nil {
		t.Fatal("Parse() should reject malformed TOML")
	}
	if !bomenderrors.IsConfig(err) {
		t.Errorf("error = %v, want config error", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.toml")
	if err := os.WriteFile(path, []byte(samplePlan), 0o644); err != nil {
		t.Fatal(err)
	}

	plan, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if plan.Empty() {
		t.Error("plan should not be empty")
	}
	if !plan.NeedsLookup() {
		t.Error("plan with lookup rules should report NeedsLookup")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("Load() should fail for a missing file")
	}
	if !bomenderrors.IsConfig(err) {
		t.Errorf("error = %v, want config error", err)
	}
}

func TestEmptyPlan(t *testing.T) {
	plan, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !plan.Empty() {
		t.Error("empty input should yield an empty plan")
	}
	if got := plan.Actions(nil, nil); len(got) != 0 {
		t.Errorf("actions = %d, want 0", len(got))
	}
}
