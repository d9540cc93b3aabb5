// Package sbom models the subset of a CycloneDX Bill-of-Materials document
// that license enrichment operates on.
//
// A [Document] is an ordered collection of [Component] values. Each component
// carries a stable bom-ref identity, a package URL coordinate, and zero or one
// license declaration. Enrichment actions mutate components in place through
// [Document.Component]; everything else treats the document as read-only.
//
// The on-disk encodings (JSON and XML) are handled by [Parse] and [Serialize]
// in this package; see codec.go.
package sbom

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Document is a parsed CycloneDX BOM.
type Document struct {
	BOMFormat    string          `json:"bomFormat"`
	SpecVersion  string          `json:"specVersion"`
	SerialNumber string          `json:"serialNumber,omitempty"`
	Version      int             `json:"version"`
	Metadata     json.RawMessage `json:"metadata,omitempty"` // preserved verbatim on JSON round-trips
	Components   []Component     `json:"components"`
}

// Component is a single entry in the BOM component list.
type Component struct {
	BOMRef   string          `json:"bom-ref,omitempty"`
	Type     string          `json:"type"`
	Group    string          `json:"group,omitempty"`
	Name     string          `json:"name"`
	Version  string          `json:"version,omitempty"`
	PURL     string          `json:"purl,omitempty"`
	Licenses []LicenseChoice `json:"licenses,omitempty"`
}

// LicenseChoice is one entry of a component's licenses list: either a single
// SPDX expression or a structured license, never both.
type LicenseChoice struct {
	License    *License
	Expression string
}

// License is a structured license declaration with an SPDX id or a free name.
type License struct {
	ID   string `json:"id,omitempty" xml:"id,omitempty"`
	Name string `json:"name,omitempty" xml:"name,omitempty"`
}

// licenseChoiceJSON is the wire form of LicenseChoice.
type licenseChoiceJSON struct {
	License    *License `json:"license,omitempty"`
	Expression string   `json:"expression,omitempty"`
}

// MarshalJSON emits either {"expression": ...} or {"license": {...}}.
func (c LicenseChoice) MarshalJSON() ([]byte, error) {
	return json.Marshal(licenseChoiceJSON{License: c.License, Expression: c.Expression})
}

// UnmarshalJSON accepts either wire form.
func (c *LicenseChoice) UnmarshalJSON(data []byte) error {
	var wire licenseChoiceJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	c.License = wire.License
	c.Expression = wire.Expression
	return nil
}

// ExpressionChoice returns a license list holding a single SPDX expression.
func ExpressionChoice(expr string) []LicenseChoice {
	return []LicenseChoice{{Expression: expr}}
}

// LicenseChoiceOf returns a license list holding a single structured license.
func LicenseChoiceOf(id, name string) []LicenseChoice {
	return []LicenseChoice{{License: &License{ID: id, Name: name}}}
}

// Component returns a pointer to the component with the given bom-ref, or nil
// if no such component exists. The pointer aliases the document's backing
// array, so callers may mutate the component in place.
func (d *Document) Component(ref string) *Component {
	for i := range d.Components {
		if d.Components[i].BOMRef == ref {
			return &d.Components[i]
		}
	}
	return nil
}

// Coordinate parses the component's package URL.
// Returns ok=false for components without a valid purl.
func (c *Component) Coordinate() (Coordinate, bool) {
	if c.PURL == "" {
		return Coordinate{}, false
	}
	coord, err := ParsePURL(c.PURL)
	if err != nil {
		return Coordinate{}, false
	}
	return coord, true
}

// Touch marks the document as modified: the version counter is incremented
// and a serial number is assigned when absent, following CycloneDX tooling
// convention for derived BOMs.
func (d *Document) Touch() {
	if d.Version == 0 {
		d.Version = 1
	}
	d.Version++
	if d.SerialNumber == "" {
		d.SerialNumber = "urn:uuid:" + uuid.NewString()
	}
}
