package sbom

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"

	"github.com/bomend/bomend/pkg/errors"
)

// Format identifies an on-disk BOM encoding.
type Format string

// Supported encodings.
const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// cycloneDXNamespace is the XML namespace emitted on serialization.
const cycloneDXNamespace = "http://cyclonedx.org/schema/bom/1.6"

// ParseFormat converts a user-supplied format name into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (must be json or xml)", s)
	}
}

// DetectFormat guesses the encoding from the file extension, falling back to
// sniffing the first non-space byte of data. Defaults to JSON.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".xml":
		return FormatXML
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '<' {
		return FormatXML
	}
	return FormatJSON
}

// Parse decodes a BOM document from data in the given encoding.
//
// Parse returns an error if:
//   - The payload is malformed for the encoding
//   - Two components share the same bom-ref
//
// Errors carry the INVALID_DOCUMENT code with the offending ref for context.
func Parse(data []byte, format Format) (*Document, error) {
	var doc *Document
	var err error
	switch format {
	case FormatXML:
		doc, err = parseXML(data)
	case FormatJSON:
		doc, err = parseJSON(data)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(doc.Components))
	for _, c := range doc.Components {
		if c.BOMRef == "" {
			continue
		}
		if _, dup := seen[c.BOMRef]; dup {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "duplicate bom-ref %q", c.BOMRef)
		}
		seen[c.BOMRef] = struct{}{}
	}
	return doc, nil
}

// Serialize encodes the document in the given encoding.
// XML output carries the CycloneDX namespace; JSON output is indented.
func Serialize(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatXML:
		return serializeXML(doc)
	case FormatJSON:
		return serializeJSON(doc)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
}

// Load reads and parses the BOM at path, detecting its encoding.
func Load(path string) (*Document, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidDocument, err, "read %s", path)
	}
	format := DetectFormat(path, data)
	doc, err := Parse(data, format)
	if err != nil {
		return nil, "", errors.Wrap(errors.GetCode(err), err, "parse %s", path)
	}
	return doc, format, nil
}

func parseJSON(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode JSON BOM")
	}
	return &doc, nil
}

func serializeJSON(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode JSON BOM")
	}
	return buf.Bytes(), nil
}

// XML wire types. CycloneDX XML nests structured licenses and expressions as
// sibling children of <licenses>.

type xmlDocument struct {
	XMLName      xml.Name       `xml:"bom"`
	Namespace    string         `xml:"xmlns,attr,omitempty"`
	SerialNumber string         `xml:"serialNumber,attr,omitempty"`
	Version      int            `xml:"version,attr,omitempty"`
	Components   []xmlComponent `xml:"components>component"`
}

type xmlComponent struct {
	BOMRef   string       `xml:"bom-ref,attr,omitempty"`
	Type     string       `xml:"type,attr"`
	Group    string       `xml:"group,omitempty"`
	Name     string       `xml:"name"`
	Version  string       `xml:"version,omitempty"`
	PURL     string       `xml:"purl,omitempty"`
	Licenses *xmlLicenses `xml:"licenses"`
}

type xmlLicenses struct {
	Licenses    []License `xml:"license"`
	Expressions []string  `xml:"expression"`
}

func parseXML(data []byte) (*Document, error) {
	var wire xmlDocument
	if err := xml.Unmarshal(data, &wire); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode XML BOM")
	}

	doc := &Document{
		BOMFormat:    "CycloneDX",
		SpecVersion:  specVersionFromNamespace(wire.Namespace),
		SerialNumber: wire.SerialNumber,
		Version:      wire.Version,
		Components:   make([]Component, len(wire.Components)),
	}
	for i, c := range wire.Components {
		comp := Component{
			BOMRef:  c.BOMRef,
			Type:    c.Type,
			Group:   c.Group,
			Name:    c.Name,
			Version: c.Version,
			PURL:    c.PURL,
		}
		if c.Licenses != nil {
			for _, l := range c.Licenses.Licenses {
				l := l
				comp.Licenses = append(comp.Licenses, LicenseChoice{License: &l})
			}
			for _, e := range c.Licenses.Expressions {
				comp.Licenses = append(comp.Licenses, LicenseChoice{Expression: e})
			}
		}
		doc.Components[i] = comp
	}
	return doc, nil
}

func serializeXML(doc *Document) ([]byte, error) {
	wire := xmlDocument{
		Namespace:    cycloneDXNamespace,
		SerialNumber: doc.SerialNumber,
		Version:      doc.Version,
		Components:   make([]xmlComponent, len(doc.Components)),
	}
	for i, c := range doc.Components {
		xc := xmlComponent{
			BOMRef:  c.BOMRef,
			Type:    c.Type,
			Group:   c.Group,
			Name:    c.Name,
			Version: c.Version,
			PURL:    c.PURL,
		}
		if len(c.Licenses) > 0 {
			ls := &xmlLicenses{}
			for _, choice := range c.Licenses {
				if choice.Expression != "" {
					ls.Expressions = append(ls.Expressions, choice.Expression)
				} else if choice.License != nil {
					ls.Licenses = append(ls.Licenses, *choice.License)
				}
			}
			xc.Licenses = ls
		}
		wire.Components[i] = xc
	}

	out, err := xml.MarshalIndent(wire, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode XML BOM")
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// specVersionFromNamespace extracts the trailing schema version from a
// CycloneDX namespace URI, e.g. ".../bom/1.6" yields "1.6".
func specVersionFromNamespace(ns string) string {
	if i := strings.LastIndexByte(ns, '/'); i >= 0 && i < len(ns)-1 {
		return ns[i+1:]
	}
	return ""
}
