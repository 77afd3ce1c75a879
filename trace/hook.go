package trace

import (
	"strings"
	"sync"

	"github.com/gopherjs/stackmap/resolve"
)

// Error carries the descriptive part of the error whose stack is rendered.
type Error struct {
	Name    string
	Message string
}

// Formatter produces the complete stack text for an error and its frames.
type Formatter func(err Error, stack []Frame) string

// Registry owns the process-wide stack-text formatting hook. Exactly one
// formatter is active at a time; installing a new one captures the previous
// value so it can be restored verbatim, including "nothing was installed".
type Registry struct {
	mu     sync.Mutex
	active Formatter
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Install makes f the active formatter and returns a function that restores
// whatever was active before, which may be the builtin rendering.
func (r *Registry) Install(f Formatter) (restore func()) {
	r.mu.Lock()
	prev := r.active
	r.active = f
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		r.active = prev
		r.mu.Unlock()
	}
}

// Render produces the stack text for err using the active formatter, or the
// builtin unmapped rendering when none is installed.
func (r *Registry) Render(err Error, stack []Frame) string {
	r.mu.Lock()
	f := r.active
	r.mu.Unlock()
	if f == nil {
		return DefaultFormat(err, stack)
	}
	return f(err, stack)
}

// PrepareStackTrace renders an error and its frames with every frame mapped
// back to original sources. It has the Formatter signature and is the value
// to install into a Registry.
func (c *Cache) PrepareStackTrace(err Error, stack []Frame) string {
	var b strings.Builder
	b.WriteString(errorHeader(err))
	for _, f := range stack {
		b.WriteString("\n    at ")
		b.WriteString(c.RenderFrame(f))
	}
	return b.String()
}

// RenderFrame renders one frame with its location mapped to the original
// source. Native frames bypass resolution entirely and render as the runtime
// would.
func (c *Cache) RenderFrame(f Frame) string {
	if f.Native {
		return FormatFrame(f, nil, "")
	}
	var pos *resolve.Position
	if f.File != "" && f.Line > 0 {
		column := f.Column - 1
		if column < 0 {
			column = 0
		}
		pos = c.OriginalPositionFor(f.File, f.Line, column)
	}
	evalOrigin := ""
	if f.Eval && f.EvalOrigin != "" {
		evalOrigin = c.MapEvalOrigin(f.EvalOrigin)
	}
	return FormatFrame(f, pos, evalOrigin)
}

// DefaultFormat is the builtin rendering: the same frame serialization with
// no position mapping applied.
func DefaultFormat(err Error, stack []Frame) string {
	var b strings.Builder
	b.WriteString(errorHeader(err))
	for _, f := range stack {
		b.WriteString("\n    at ")
		b.WriteString(FormatFrame(f, nil, ""))
	}
	return b.String()
}

func errorHeader(err Error) string {
	name := err.Name
	if name == "" {
		name = "Error"
	}
	if err.Message == "" {
		return name
	}
	return name + ": " + err.Message
}
