package resolve

import "errors"

var (
	// ErrInvalidPosition reports caller-supplied generated coordinates that
	// violate the preconditions (line < 1 or column < 0).
	ErrInvalidPosition = errors.New("invalid generated position")

	// ErrSectionOrder reports composite map sections whose offsets are not
	// strictly ascending by (line, column).
	ErrSectionOrder = errors.New("section offsets must be ordered and non-overlapping")

	// ErrSectionURL reports a composite map section that references its map by
	// URL. Fetching remote map fragments is not supported.
	ErrSectionURL = errors.New("section references its map by URL, which is not supported")

	// ErrInvalidBase64 reports a character outside the packed mapping alphabet.
	ErrInvalidBase64 = errors.New("invalid character in mappings")

	// ErrTruncatedVLQ reports a packed mapping segment cut off in the middle of
	// a variable-length value.
	ErrTruncatedVLQ = errors.New("truncated VLQ value in mappings")

	// ErrFieldRange reports a decoded mapping field outside its valid range:
	// a negative position or a source or name index past the table.
	ErrFieldRange = errors.New("mapping field out of range")
)
