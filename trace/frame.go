package trace

import (
	"strconv"
	"strings"

	"github.com/gopherjs/stackmap/resolve"
)

// Frame describes one call site captured by the runtime at the moment an
// error's stack text was requested. Field semantics follow the V8 CallSite
// API: Line and Column are 1-based, zero or negative values mean "unknown",
// empty strings mean "not reported".
type Frame struct {
	// File is the script name or source URL the frame executes in.
	File         string
	Line         int
	Column       int
	FunctionName string
	TypeName     string
	MethodName   string
	// EvalOrigin describes where an eval'd script was invoked from, in the
	// runtime's "eval at f (file:line:column)" form.
	EvalOrigin   string
	PromiseIndex int

	Native      bool
	Eval        bool
	Toplevel    bool
	Constructor bool
	Async       bool
	PromiseAll  bool
}

const anonymous = "<anonymous>"

// FormatFrame renders a frame the way the runtime's own stack serializer
// does, substituting the resolved original position for the reported one when
// available. pos may be nil (no mapping; the reported location is used) and
// carries a 0-based column, rendered 1-based. evalOrigin, when non-empty,
// replaces the frame's own eval origin in the location part.
func FormatFrame(f Frame, pos *resolve.Position, evalOrigin string) string {
	var loc string
	if f.Native {
		loc = "native"
	} else {
		file := f.File
		line, column := f.Line, f.Column
		if pos != nil {
			file, line, column = pos.Source, pos.Line, pos.Column+1
		}
		if file == "" && f.Eval {
			origin := evalOrigin
			if origin == "" {
				origin = f.EvalOrigin
			}
			if origin != "" {
				loc = origin + ", " // The position inside the eval'd script follows.
			}
		}
		if file != "" {
			loc += file
		} else {
			loc += anonymous
		}
		if line > 0 {
			loc += ":" + strconv.Itoa(line)
			if column > 0 {
				loc += ":" + strconv.Itoa(column)
			}
		}
	}

	var out string
	if f.Async {
		out = "async "
	}
	if f.PromiseAll {
		return out + "Promise.all (index " + strconv.Itoa(f.PromiseIndex) + ")"
	}

	name := f.FunctionName
	if pos != nil && pos.Name != "" {
		name = pos.Name
	}

	addSuffix := true
	switch {
	case !f.Toplevel && !f.Constructor: // Method call.
		typeName := f.TypeName
		if typeName == "[object Object]" {
			typeName = "null"
		}
		if name != "" {
			if typeName != "" && !strings.HasPrefix(name, typeName) {
				out += typeName + "."
			}
			out += name
			if f.MethodName != "" && f.MethodName != name && !strings.HasSuffix(name, "."+f.MethodName) {
				out += " [as " + f.MethodName + "]"
			}
		} else if f.MethodName != "" {
			out += typeName + "." + f.MethodName
		} else {
			out += typeName + "." + anonymous
		}
	case f.Constructor:
		out += "new "
		if name != "" {
			out += name
		} else {
			out += anonymous
		}
	case name != "":
		out += name
	default:
		out += loc
		addSuffix = false
	}
	if addSuffix {
		out += " (" + loc + ")"
	}
	return out
}
