package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gopherjs/stackmap/trace"
)

var locationRx = regexp.MustCompile(`([^\s()]+):(\d+):(\d+)`)

func newRewriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite [trace-file]",
		Short: "Rewrite locations in a rendered stack trace to original positions",
		Long: "Rewrite reads a stack trace from the given file or stdin and replaces every\n" +
			"file:line:column location that has a source map with the original position.\n" +
			"Locations without a map are printed unchanged.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			cache := trace.NewCache()
			out := cmd.OutOrStdout()
			sc := bufio.NewScanner(in)
			for sc.Scan() {
				fmt.Fprintln(out, rewriteLine(cache, sc.Text()))
			}
			return sc.Err()
		},
	}
	return cmd
}

// rewriteLine replaces every resolvable file:line:column occurrence on the
// line, rendering columns 1-based the way runtimes report them.
func rewriteLine(cache *trace.Cache, line string) string {
	return locationRx.ReplaceAllStringFunc(line, func(loc string) string {
		m := locationRx.FindStringSubmatch(loc)
		ln, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		if col < 1 {
			return loc
		}
		pos := cache.OriginalPositionFor(m[1], ln, col-1)
		if pos == nil {
			return loc
		}
		return fmt.Sprintf("%s:%d:%d", pos.Source, pos.Line, pos.Column+1)
	})
}
