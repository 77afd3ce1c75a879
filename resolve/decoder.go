package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/neelance/sourcemap"

	"github.com/gopherjs/stackmap/internal/bisect"
)

// record is one row of the decoded mapping table. Lines are 1-based, columns
// 0-based. A record without an original side is a generated-only mapping;
// nameIndex is -1 when the segment carries no name.
type record struct {
	generatedLine   int
	generatedColumn int
	hasOriginal     bool
	sourceIndex     int
	originalLine    int
	originalColumn  int
	nameIndex       int
}

func recordCmp(a, b record) int {
	if d := a.generatedLine - b.generatedLine; d != 0 {
		return d
	}
	return a.generatedColumn - b.generatedColumn
}

// mappingTable is the query side of the external decoder: the decoded rows
// sorted by generated position, searchable with a bias.
type mappingTable struct {
	records []record
}

// find returns the record matching the generated position, or the nearest one
// permitted by bias. The caller is responsible for rejecting matches from a
// different generated line.
func (t *mappingTable) find(line, column int, bias bisect.Bias) (record, bool) {
	needle := record{generatedLine: line, generatedColumn: column}
	i := bisect.Search(t.records, needle, recordCmp, bias)
	if i < 0 {
		return record{}, false
	}
	return t.records[i], true
}

const vlqAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// validateMappings rejects packed mapping text the decoder would silently
// misread: characters outside the VLQ alphabet and values cut off with their
// continuation bit still set.
func validateMappings(mappings string) error {
	continued := false
	for i := 0; i < len(mappings); i++ {
		b := mappings[i]
		if b == ',' || b == ';' {
			if continued {
				return fmt.Errorf("%w: separator at offset %d", ErrTruncatedVLQ, i)
			}
			continue
		}
		digit := strings.IndexByte(vlqAlphabet, b)
		if digit < 0 {
			return fmt.Errorf("%w: %q at offset %d", ErrInvalidBase64, b, i)
		}
		continued = digit&32 != 0
	}
	if continued {
		return fmt.Errorf("%w: at end of input", ErrTruncatedVLQ)
	}
	return nil
}

// decodeMappings feeds the packed text through the external decoder and
// reshapes its rows into an index-based table sorted by generated position.
// sources and names are the document's raw tables, exactly as the decoder
// expects them.
func decodeMappings(mappings string, sources, names []string) (*mappingTable, error) {
	if err := validateMappings(mappings); err != nil {
		return nil, err
	}

	m := &sourcemap.Map{Version: 3, Sources: sources, Names: names, Mappings: mappings}
	rows, err := decodeRows(m)
	if err != nil {
		return nil, err
	}

	sourceIndex := indexByFirst(sources)
	nameIndex := indexByFirst(names)
	t := &mappingTable{records: make([]record, 0, len(rows))}
	for _, row := range rows {
		if row.GeneratedLine < 1 || row.GeneratedColumn < 0 {
			return nil, fmt.Errorf("%w: generated position %d:%d", ErrFieldRange, row.GeneratedLine, row.GeneratedColumn)
		}
		rec := record{
			generatedLine:   row.GeneratedLine,
			generatedColumn: row.GeneratedColumn,
			nameIndex:       -1,
		}
		// The decoder reports the original side by source value rather than
		// index, so a segment referencing an empty-string sources entry is
		// indistinguishable from a generated-only one. Both are treated as
		// generated-only.
		if row.OriginalFile != "" {
			if row.OriginalLine < 1 || row.OriginalColumn < 0 {
				return nil, fmt.Errorf("%w: original position %d:%d", ErrFieldRange, row.OriginalLine, row.OriginalColumn)
			}
			rec.hasOriginal = true
			rec.sourceIndex = sourceIndex[row.OriginalFile]
			rec.originalLine = row.OriginalLine
			rec.originalColumn = row.OriginalColumn
			if row.OriginalName != "" {
				rec.nameIndex = nameIndex[row.OriginalName]
			}
		}
		t.records = append(t.records, rec)
	}
	sort.SliceStable(t.records, func(i, j int) bool {
		return recordCmp(t.records[i], t.records[j]) < 0
	})
	return t, nil
}

// decodeRows recovers the decoder's panics as parse failures: the decoder
// indexes the source and name tables without bounds checks, so a negative or
// overflowing index field surfaces as a panic.
func decodeRows(m *sourcemap.Map) (rows []*sourcemap.Mapping, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrFieldRange, r)
		}
	}()
	return m.DecodedMappings(), nil
}

// indexByFirst inverts a value table, keeping the first occurrence of
// repeated values. The decoder reports sources and names by value, while
// records store indices.
func indexByFirst(values []string) map[string]int {
	m := make(map[string]int, len(values))
	for i, v := range values {
		if _, ok := m[v]; !ok {
			m[v] = i
		}
	}
	return m
}
