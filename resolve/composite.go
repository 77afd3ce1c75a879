package resolve

import (
	"fmt"

	"github.com/gopherjs/stackmap/internal/bisect"
	"github.com/gopherjs/stackmap/internal/errorList"
)

// CompositeResolver resolves positions through an indexed map: an ordered
// list of sub-resolvers, each anchored at an offset in the concatenated
// generated output.
type CompositeResolver struct {
	sections []compositeSection
}

// compositeSection anchors a sub-resolver at a generated offset. Offsets keep
// the document's 0-based convention; the anchor line in query space is
// offsetLine+1.
type compositeSection struct {
	offsetLine   int
	offsetColumn int
	resolver     Resolver
}

func sectionCmp(a, b compositeSection) int {
	if d := a.offsetLine - b.offsetLine; d != 0 {
		return d
	}
	return a.offsetColumn - b.offsetColumn
}

var _ Resolver = (*CompositeResolver)(nil)

// NewComposite builds a resolver for an indexed map document. Every section
// is validated; offsets out of order or overlapping, sections referencing
// their map by URL, and sections whose nested map fails construction are all
// reported together.
func NewComposite(doc *Document, mapURL string) (*CompositeResolver, error) {
	c := &CompositeResolver{sections: make([]compositeSection, 0, len(doc.Sections))}
	var errs errorList.ErrorList
	lastLine, lastColumn := -1, -1
	for i, s := range doc.Sections {
		if s.URL != "" {
			errs = errs.Append(fmt.Errorf("section %d: %w", i, ErrSectionURL))
			continue
		}
		if s.Map == nil {
			errs = errs.Append(fmt.Errorf("section %d has no map", i))
			continue
		}
		if s.Offset.Line < lastLine || (s.Offset.Line == lastLine && s.Offset.Column <= lastColumn) {
			errs = errs.Append(fmt.Errorf("section %d at offset %d:%d: %w", i, s.Offset.Line, s.Offset.Column, ErrSectionOrder))
			continue
		}
		lastLine, lastColumn = s.Offset.Line, s.Offset.Column

		sub, err := New(s.Map, mapURL)
		if err != nil {
			errs = errs.Append(fmt.Errorf("section %d: %w", i, err))
			continue
		}
		c.sections = append(c.sections, compositeSection{
			offsetLine:   s.Offset.Line,
			offsetColumn: s.Offset.Column,
			resolver:     sub,
		})
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CompositeResolver) OriginalPositionFor(line, column int, bias bisect.Bias) (*Position, error) {
	if line < 1 || column < 0 {
		return nil, fmt.Errorf("%w: %d:%d", ErrInvalidPosition, line, column)
	}

	// The section search always floors: a position belongs to the last
	// section starting at or before it. The caller's bias only applies inside
	// the section.
	needle := compositeSection{offsetLine: line - 1, offsetColumn: column}
	i := bisect.Search(c.sections, needle, sectionCmp, bisect.GreatestLowerBound)
	if i < 0 {
		return nil, nil
	}
	s := c.sections[i]

	localLine := line - s.offsetLine
	localColumn := column
	if line == s.offsetLine+1 {
		// The column offset only shifts positions on the section's anchor
		// line itself; later lines start at column 0 regardless.
		localColumn -= s.offsetColumn
	}
	return s.resolver.OriginalPositionFor(localLine, localColumn, bias)
}
