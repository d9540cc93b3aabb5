package sbom

import (
	"testing"

	"github.com/bomend/bomend/pkg/errors"
)

func TestParsePURL(t *testing.T) {
	tests := []struct {
		name string
		purl string
		want Coordinate
	}{
		{
			name: "simple npm",
			purl: "pkg:npm/lodash@4.17.21",
			want: Coordinate{Type: "npm", Name: "lodash", Version: "4.17.21"},
		},
		{
			name: "scoped npm",
			purl: "pkg:npm/%40babel/core@7.20.0",
			want: Coordinate{Type: "npm", Namespace: "%40babel", Name: "core", Version: "7.20.0"},
		},
		{
			name: "scoped npm unencoded",
			purl: "pkg:npm/@babel/core@7.20.0",
			want: Coordinate{Type: "npm", Namespace: "@babel", Name: "core", Version: "7.20.0"},
		},
		{
			name: "maven group",
			purl: "pkg:maven/org.apache.commons/commons-lang3@3.12.0",
			want: Coordinate{Type: "maven", Namespace: "org.apache.commons", Name: "commons-lang3", Version: "3.12.0"},
		},
		{
			name: "multi-segment namespace",
			purl: "pkg:golang/github.com/spf13/cobra@v1.10.1",
			want: Coordinate{Type: "golang", Namespace: "github.com/spf13", Name: "cobra", Version: "v1.10.1"},
		},
		{
			name: "qualifiers stripped",
			purl: "pkg:deb/debian/curl@7.50.3-1?arch=i386&distro=jessie",
			want: Coordinate{Type: "deb", Namespace: "debian", Name: "curl", Version: "7.50.3-1"},
		},
		{
			name: "subpath stripped",
			purl: "pkg:npm/lodash@4.17.21#lib",
			want: Coordinate{Type: "npm", Name: "lodash", Version: "4.17.21"},
		},
		{
			name: "uppercase type lowered",
			purl: "pkg:NPM/lodash@4.17.21",
			want: Coordinate{Type: "npm", Name: "lodash", Version: "4.17.21"},
		},
		{
			name: "leading slash tolerated",
			purl: "pkg:/npm/lodash@4.17.21",
			want: Coordinate{Type: "npm", Name: "lodash", Version: "4.17.21"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePURL(tt.purl)
			if err != nil {
				t.Fatalf("ParsePURL(%q) error: %v", tt.purl, err)
			}
			if got != tt.want {
				t.Errorf("ParsePURL(%q) = %+v, want %+v", tt.purl, got, tt.want)
			}
		})
	}
}

func TestParsePURLInvalid(t *testing.T) {
	tests := []struct {
		name string
		purl string
	}{
		{"empty", ""},
		{"missing scheme", "npm/lodash@4.17.21"},
		{"missing version", "pkg:npm/lodash"},
		{"empty version", "pkg:npm/lodash@"},
		{"scoped without version", "pkg:npm/@scope/name"},
		{"missing name", "pkg:npm@1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePURL(tt.purl)
			if err == nil {
				t.Fatalf("ParsePURL(%q) should fail", tt.purl)
			}
			if !errors.Is(err, errors.ErrCodeInvalidPURL) {
				t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidPURL)
			}
		})
	}
}

func TestCoordinateString(t *testing.T) {
	tests := []struct {
		coord Coordinate
		want  string
	}{
		{Coordinate{Type: "npm", Name: "lodash", Version: "4.17.21"}, "pkg:npm/lodash@4.17.21"},
		{Coordinate{Type: "maven", Namespace: "org.slf4j", Name: "slf4j-api", Version: "2.0.0"}, "pkg:maven/org.slf4j/slf4j-api@2.0.0"},
	}
	for _, tt := range tests {
		if got := tt.coord.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCoordinateRoundTrip(t *testing.T) {
	purls := []string{
		"pkg:npm/lodash@4.17.21",
		"pkg:maven/org.apache.commons/commons-lang3@3.12.0",
		"pkg:golang/github.com/spf13/cobra@v1.10.1",
	}
	for _, purl := range purls {
		coord, err := ParsePURL(purl)
		if err != nil {
			t.Fatalf("ParsePURL(%q): %v", purl, err)
		}
		if coord.String() != purl {
			t.Errorf("round trip = %q, want %q", coord.String(), purl)
		}
	}
}

func TestNamespaceOrDash(t *testing.T) {
	withNS := Coordinate{Type: "maven", Namespace: "org.slf4j", Name: "slf4j-api", Version: "2.0.0"}
	if got := withNS.NamespaceOrDash(); got != "org.slf4j" {
		t.Errorf("NamespaceOrDash() = %q", got)
	}
	withoutNS := Coordinate{Type: "npm", Name: "lodash", Version: "4.17.21"}
	if got := withoutNS.NamespaceOrDash(); got != "-" {
		t.Errorf("NamespaceOrDash() = %q, want -", got)
	}
}

func TestDefaultProvider(t *testing.T) {
	tests := []struct {
		pkgType  string
		provider string
		ok       bool
	}{
		{"npm", "npmjs", true},
		{"NPM", "npmjs", true},
		{"pypi", "pypi", true},
		{"maven", "mavencentral", true},
		{"cargo", "cratesio", true},
		{"crate", "cratesio", true},
		{"conan", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := DefaultProvider(tt.pkgType)
		if ok != tt.ok || got != tt.provider {
			t.Errorf("DefaultProvider(%q) = (%q, %v), want (%q, %v)", tt.pkgType, got, ok, tt.provider, tt.ok)
		}
	}
}
