package resolve

import (
	"path"
	"regexp"
	"strings"
)

var (
	schemeRx = regexp.MustCompile(`^\w+://[^/]*`)
	driveRx  = regexp.MustCompile(`^/[A-Za-z]:`)
)

// ResolveRef resolves ref against the directory containing file, keeping any
// URL scheme prefix intact. Protocol-qualified Windows drive paths
// (file:///C:/...) keep their drive at the front of the resolved path.
// Absolute refs and refs carrying their own scheme are returned unchanged.
func ResolveRef(file, ref string) string {
	if file == "" || schemeRx.MatchString(ref) {
		return ref
	}
	dir := dirname(strings.ReplaceAll(file, `\`, "/"))
	protocol := schemeRx.FindString(dir)
	rest := dir[len(protocol):]
	if protocol != "" && driveRx.MatchString(rest) {
		protocol += "/"
		rest = dir[len(protocol):]
	}
	if path.IsAbs(ref) {
		return protocol + path.Clean(ref)
	}
	return protocol + path.Join(rest, ref)
}

// dirname returns everything up to the last path separator without cleaning
// the result. path.Dir would collapse the double slash of a scheme prefix
// like file:///, losing the information that a scheme was present.
func dirname(p string) string {
	switch i := strings.LastIndexByte(p, '/'); i {
	case -1:
		return "."
	case 0:
		return "/"
	default:
		return p[:i]
	}
}

// SourcePath computes the absolute path of one entry of a map's sources list:
// the source root is prepended first, then the result is resolved against the
// map's own location.
func SourcePath(mapURL, sourceRoot, source string) string {
	if sourceRoot != "" && !path.IsAbs(source) && !schemeRx.MatchString(source) {
		source = strings.TrimSuffix(sourceRoot, "/") + "/" + source
	}
	return ResolveRef(mapURL, source)
}
