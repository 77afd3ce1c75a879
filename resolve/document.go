package resolve

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is a parsed source map document, either a plain map (Mappings set)
// or an indexed map (Sections set).
type Document struct {
	Version        int       `json:"version"`
	File           string    `json:"file,omitempty"`
	SourceRoot     string    `json:"sourceRoot,omitempty"`
	Sources        []string  `json:"sources,omitempty"`
	SourcesContent []string  `json:"sourcesContent,omitempty"`
	Names          []string  `json:"names,omitempty"`
	Mappings       string    `json:"mappings,omitempty"`
	Sections       []Section `json:"sections,omitempty"`
}

// Section is one entry of an indexed map: a sub-map anchored at an offset in
// the generated output. Offsets in the document are 0-based.
type Section struct {
	Offset Offset    `json:"offset"`
	URL    string    `json:"url,omitempty"`
	Map    *Document `json:"map,omitempty"`
}

type Offset struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Some servers prepend this line to JSON responses to defeat cross-site
// script inclusion. It must be stripped before parsing.
var xssiPrefix = []byte(")]}'")

// Parse decodes a source map document, tolerating an XSSI guard line in front
// of the JSON payload.
func Parse(data []byte) (*Document, error) {
	if bytes.HasPrefix(data, xssiPrefix) {
		if i := bytes.IndexByte(data, '\n'); i != -1 {
			data = data[i+1:]
		}
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse source map document: %w", err)
	}
	return &doc, nil
}

// New builds a resolver for doc. mapURL, when non-empty, is the location the
// document was loaded from; source paths are made absolute relative to it.
// The document's shape selects the variant: documents declaring sections get
// a CompositeResolver, everything else a SingleResolver.
func New(doc *Document, mapURL string) (Resolver, error) {
	if doc.Sections != nil {
		return NewComposite(doc, mapURL)
	}
	return NewSingle(doc, mapURL), nil
}
