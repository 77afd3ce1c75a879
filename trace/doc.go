// Package trace rewrites runtime stack traces so every frame points at the
// source the author wrote instead of the generated artifact the engine
// executed.
//
// Cache finds the source map a generated file references through its trailing
// sourceMappingURL comment, builds a resolver for it (package resolve) and
// memoizes the outcome per path, negative results included. FormatFrame
// reproduces the runtime's native frame serialization with resolved positions
// substituted in, and Registry manages the single process-wide formatting
// hook with capture-and-restore semantics.
//
// Everything on the rendering path degrades instead of failing: a missing or
// broken map simply leaves the affected frame unmapped.
package trace
