package sbom

import (
	"strings"

	"github.com/bomend/bomend/pkg/errors"
)

// Coordinate is the normalized (type, namespace, name, version) identity of a
// package, as carried by a package URL. Two coordinates are equal iff their
// canonical string forms match.
type Coordinate struct {
	Type      string
	Namespace string
	Name      string
	Version   string
}

// ParsePURL parses a package URL of the form
//
//	pkg:type/namespace/name@version?qualifiers#subpath
//
// into a Coordinate. Qualifiers and subpath are discarded; the namespace may
// span multiple path segments (e.g. Maven group ids). Type, name and version
// are required.
func ParsePURL(purl string) (Coordinate, error) {
	rest, ok := strings.CutPrefix(purl, "pkg:")
	if !ok {
		return Coordinate{}, errors.New(errors.ErrCodeInvalidPURL, "missing pkg: scheme in %q", purl)
	}
	rest = strings.TrimPrefix(rest, "/")

	// Strip subpath and qualifiers.
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest = rest[:i]
	}

	// Split at the last "@": unencoded scoped npm namespaces
	// (pkg:npm/@scope/name@1.0.0) carry an earlier one.
	at := strings.LastIndexByte(rest, '@')
	if at < 0 || at == len(rest)-1 {
		return Coordinate{}, errors.New(errors.ErrCodeInvalidPURL, "missing version in %q", purl)
	}
	version := rest[at+1:]
	rest = rest[:at]
	if strings.ContainsRune(version, '/') {
		return Coordinate{}, errors.New(errors.ErrCodeInvalidPURL, "missing version in %q", purl)
	}

	segments := strings.Split(rest, "/")
	if len(segments) < 2 {
		return Coordinate{}, errors.New(errors.ErrCodeInvalidPURL, "missing name in %q", purl)
	}

	c := Coordinate{
		Type:    strings.ToLower(segments[0]),
		Name:    segments[len(segments)-1],
		Version: version,
	}
	if c.Type == "" || c.Name == "" {
		return Coordinate{}, errors.New(errors.ErrCodeInvalidPURL, "empty type or name in %q", purl)
	}
	if len(segments) > 2 {
		c.Namespace = strings.Join(segments[1:len(segments)-1], "/")
	}
	return c, nil
}

// String returns the canonical purl form of the coordinate.
func (c Coordinate) String() string {
	var b strings.Builder
	b.WriteString("pkg:")
	b.WriteString(c.Type)
	if c.Namespace != "" {
		b.WriteByte('/')
		b.WriteString(c.Namespace)
	}
	b.WriteByte('/')
	b.WriteString(c.Name)
	b.WriteByte('@')
	b.WriteString(c.Version)
	return b.String()
}

// NamespaceOrDash returns the namespace, or "-" when the coordinate has none.
// The license service uses "-" as the empty-namespace placeholder in paths.
func (c Coordinate) NamespaceOrDash() string {
	if c.Namespace == "" {
		return "-"
	}
	return c.Namespace
}

// defaultProviders maps a package type to the upstream data source the
// license service harvests it from.
var defaultProviders = map[string]string{
	"npm":      "npmjs",
	"pypi":     "pypi",
	"maven":    "mavencentral",
	"gem":      "rubygems",
	"nuget":    "nuget",
	"golang":   "golang",
	"crate":    "cratesio",
	"cargo":    "cratesio",
	"composer": "packagist",
	"pod":      "cocoapods",
	"deb":      "debian",
	"git":      "github",
	"github":   "github",
}

// DefaultProvider returns the default provider for a package type.
// Returns ok=false for types with no known provider; those require an
// explicit provider in the enrichment plan.
func DefaultProvider(pkgType string) (string, bool) {
	p, ok := defaultProviders[strings.ToLower(pkgType)]
	return p, ok
}
