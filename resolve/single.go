package resolve

import (
	"fmt"
	"sync"

	"github.com/gopherjs/stackmap/internal/bisect"
	"github.com/gopherjs/stackmap/internal/intern"
)

// SingleResolver resolves positions through one plain map document. It owns
// the interned tables of absolute source paths and names and the opaque
// packed mapping text; the text is handed to the external decoder on the
// first query and the decoded table is kept for the resolver's lifetime.
type SingleResolver struct {
	sources *intern.Set // absolute source paths, aligned with the document's sources
	names   *intern.Set
	file    string

	mappings   string
	rawSources []string
	rawNames   []string

	decodeOnce sync.Once
	table      *mappingTable
	tableErr   error
}

var _ Resolver = (*SingleResolver)(nil)

// NewSingle builds a resolver for a plain map document. mapURL, when
// non-empty, is the location the document was loaded from; sources are made
// absolute relative to it, with the document's source root applied first.
func NewSingle(doc *Document, mapURL string) *SingleResolver {
	sources := intern.NewSet()
	for _, src := range doc.Sources {
		sources.Add(SourcePath(mapURL, doc.SourceRoot, src), true)
	}
	return &SingleResolver{
		sources:    sources,
		names:      intern.FromSlice(doc.Names, true),
		file:       doc.File,
		mappings:   doc.Mappings,
		rawSources: doc.Sources,
		rawNames:   doc.Names,
	}
}

// File returns the display name the map declares for its generated file.
func (r *SingleResolver) File() string {
	return r.file
}

// Sources returns the absolute paths of the original sources.
func (r *SingleResolver) Sources() []string {
	return r.sources.ToSlice()
}

// decoded returns the mapping table, running the external decoder exactly
// once per resolver. A decode failure is remembered and returned on every
// subsequent query.
func (r *SingleResolver) decoded() (*mappingTable, error) {
	r.decodeOnce.Do(func() {
		r.table, r.tableErr = decodeMappings(r.mappings, r.rawSources, r.rawNames)
	})
	return r.table, r.tableErr
}

func (r *SingleResolver) OriginalPositionFor(line, column int, bias bisect.Bias) (*Position, error) {
	if line < 1 || column < 0 {
		return nil, fmt.Errorf("%w: %d:%d", ErrInvalidPosition, line, column)
	}
	table, err := r.decoded()
	if err != nil {
		return nil, err
	}

	rec, ok := table.find(line, column, bias)
	if !ok {
		return nil, nil
	}
	// The bias search may return a mapping from a neighboring generated line
	// when the queried line has no mapping on the searched side. Such a match
	// must not be reported for the queried line.
	if rec.generatedLine != line {
		return nil, nil
	}
	if !rec.hasOriginal {
		return nil, nil
	}

	source, err := r.sources.At(rec.sourceIndex)
	if err != nil {
		return nil, fmt.Errorf("mapping references source %d: %w", rec.sourceIndex, err)
	}
	pos := &Position{
		Source: source,
		Line:   rec.originalLine,
		Column: rec.originalColumn,
	}
	if rec.nameIndex >= 0 {
		name, err := r.names.At(rec.nameIndex)
		if err != nil {
			return nil, fmt.Errorf("mapping references name %d: %w", rec.nameIndex, err)
		}
		pos.Name = name
	}
	return pos, nil
}
