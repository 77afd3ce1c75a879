// Package resolve answers "what original source position does this generated
// position correspond to" for JavaScript source maps, intended to work with
// github.com/neelance/sourcemap.
//
// A map document is parsed with Parse and turned into a Resolver with New.
// Plain documents (a packed "mappings" string plus source and name tables)
// get a SingleResolver; indexed documents (a list of "sections", each a
// sub-map anchored at an offset into the concatenated generated output) get a
// CompositeResolver that translates global coordinates into the matched
// section's local space and delegates. Which variant applies is decided once,
// at construction.
//
// The packed VLQ text itself is decoded by the external decoder. Decoding is
// deferred until the first query and happens at most once per resolver; the
// resulting table is kept for the resolver's lifetime. Because the decoder
// tolerates malformed input silently, the adapter around it validates the
// packed text and the decoded rows, so malformed maps surface as errors
// wrapping ErrInvalidBase64, ErrTruncatedVLQ or ErrFieldRange instead of
// producing garbage positions.
//
// Lines are 1-based and columns 0-based throughout, matching the source map
// format. A query that no mapping covers resolves to a nil position, which
// callers must treat as a normal outcome.
package resolve
