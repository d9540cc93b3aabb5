package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	bomenderrors "github.com/bomend/bomend/pkg/errors"
	"github.com/bomend/bomend/pkg/sbom"
)

const testBOM = `{
  "bomFormat": "CycloneDX",
  "specVersion": "1.6",
  "version": 1,
  "components": [
    {"bom-ref": "pkg-1", "type": "library", "name": "lodash", "version": "4.17.21", "purl": "pkg:npm/lodash@4.17.21"},
    {"bom-ref": "pkg-2", "type": "library", "name": "internal-tool", "version": "0.1.0"}
  ]
}`

func writeTestFiles(t *testing.T, plan string) (bomPath, planPath string) {
	t.Helper()
	dir := t.TempDir()
	bomPath = filepath.Join(dir, "bom.json")
	planPath = filepath.Join(dir, "plan.toml")
	if err := os.WriteFile(bomPath, []byte(testBOM), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(planPath, []byte(plan), 0o644); err != nil {
		t.Fatal(err)
	}
	return bomPath, planPath
}

func TestRunEnrichReplace(t *testing.T) {
	bomPath, planPath := writeTestFiles(t, "[[replace]]\nref = \"pkg-2\"\nname = \"Proprietary\"\n")
	outPath := filepath.Join(filepath.Dir(bomPath), "out.json")

	opts := &enrichOpts{plan: planPath, output: outPath, noCache: true}
	if err := runEnrich(context.Background(), bomPath, opts); err != nil {
		t.Fatalf("runEnrich() error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	var doc sbom.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	got := doc.Component("pkg-2").Licenses
	if len(got) != 1 || got[0].License == nil || got[0].License.Name != "Proprietary" {
		t.Errorf("licenses = %+v, want named Proprietary license", got)
	}
}

func TestRunEnrichLookup(t *testing.T) {
	clearly := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"licensed": map[string]any{"declared": "CC0-1.0 AND MIT"},
		})
	}))
	defer clearly.Close()

	bomPath, planPath := writeTestFiles(t, "[[lookup]]\ntype = \"npm\"\n")
	outPath := filepath.Join(filepath.Dir(bomPath), "out.json")

	opts := &enrichOpts{plan: planPath, output: outPath, serviceURL: clearly.URL, noCache: true}
	if err := runEnrich(context.Background(), bomPath, opts); err != nil {
		t.Fatalf("runEnrich() error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	var doc sbom.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	got := doc.Component("pkg-1").Licenses
	if len(got) != 1 || got[0].Expression != "CC0-1.0 AND MIT" {
		t.Errorf("licenses = %+v, want looked-up expression", got)
	}
}

func TestRunEnrichRejectsIncompatiblePlan(t *testing.T) {
	bomPath, planPath := writeTestFiles(t, "[[replace]]\nref = \"no-such-ref\"\nexpression = \"MIT\"\n")
	outPath := filepath.Join(filepath.Dir(bomPath), "out.json")

	opts := &enrichOpts{plan: planPath, output: outPath, noCache: true}
	err := runEnrich(context.Background(), bomPath, opts)
	if err == nil {
		t.Fatal("runEnrich() should fail for an incompatible plan")
	}
	if !bomenderrors.IsCompatibility(err) {
		t.Errorf("error = %v, want compatibility error", err)
	}
	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Error("no output file may be written for a rejected plan")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		format sbom.Format
		want   string
	}{
		{name: "explicit output wins", output: "out.xml", input: "bom.json", format: sbom.FormatJSON, want: "out.xml"},
		{name: "stdout passthrough", output: "-", input: "bom.json", format: sbom.FormatJSON, want: "-"},
		{name: "derived from input", input: "bom.json", format: sbom.FormatJSON, want: "bom.enriched.json"},
		{name: "derived with format change", input: "bom.json", format: sbom.FormatXML, want: "bom.enriched.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.output, tt.input, tt.format); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheDirRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-test")

	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg-test", appName) {
		t.Errorf("cacheDir() = %q", dir)
	}
}
