package trace

import (
	"regexp"
	"strconv"
)

var (
	evalOriginRx = regexp.MustCompile(`^eval at ([^(]+) \((.+):(\d+):(\d+)\)$`)
	nestedEvalRx = regexp.MustCompile(`^eval at ([^(]+) \((.+)\)$`)
)

// MapEvalOrigin rewrites the location inside the runtime's textual eval
// origin ("eval at f (file:line:column)") to the original source position,
// recursing through nested eval chains until a non-eval origin is reached.
// Origins that carry no resolvable location, or whose location has no source
// map, come back unchanged.
func (c *Cache) MapEvalOrigin(origin string) string {
	if m := evalOriginRx.FindStringSubmatch(origin); m != nil {
		line, _ := strconv.Atoi(m[3])
		column, _ := strconv.Atoi(m[4])
		pos := c.OriginalPositionFor(m[2], line, column-1)
		if pos == nil {
			return origin
		}
		return "eval at " + m[1] + " (" + pos.Source + ":" + strconv.Itoa(pos.Line) + ":" + strconv.Itoa(pos.Column+1) + ")"
	}
	if m := nestedEvalRx.FindStringSubmatch(origin); m != nil {
		return "eval at " + m[1] + " (" + c.MapEvalOrigin(m[2]) + ")"
	}
	return origin
}
