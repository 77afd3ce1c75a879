package resolve

import "github.com/gopherjs/stackmap/internal/bisect"

// Position is a location in an original source. Line is 1-based, Column is
// 0-based. Name is the original symbol name recorded for the position, if any.
type Position struct {
	Source string
	Line   int
	Column int
	Name   string
}

// Resolver maps generated positions back to original ones.
type Resolver interface {
	// OriginalPositionFor returns the original position mapped to the given
	// generated position (1-based line, 0-based column), or nil when no
	// mapping covers it. The bias decides which neighboring mapping wins when
	// the exact position is not in the table; the zero bias acts as
	// bisect.GreatestLowerBound.
	//
	// Coordinates violating the preconditions fail with ErrInvalidPosition.
	// A malformed mapping payload fails with an error wrapping the decoder's
	// reason on every query.
	OriginalPositionFor(line, column int, bias bisect.Bias) (*Position, error)
}
