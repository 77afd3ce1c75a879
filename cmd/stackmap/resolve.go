package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gopherjs/stackmap/internal/bisect"
	"github.com/gopherjs/stackmap/trace"
)

// biasValue is a pflag.Value that parses "glb" or "lub" into a bisect.Bias.
type biasValue bisect.Bias

var _ pflag.Value = (*biasValue)(nil)

func (b *biasValue) String() string {
	if bisect.Bias(*b) == bisect.LeastUpperBound {
		return "lub"
	}
	return "glb"
}

func (b *biasValue) Set(s string) error {
	switch s {
	case "glb":
		*b = biasValue(bisect.GreatestLowerBound)
	case "lub":
		*b = biasValue(bisect.LeastUpperBound)
	default:
		return fmt.Errorf("invalid bias %q, expected glb or lub", s)
	}
	return nil
}

func (b *biasValue) Type() string { return "bias" }

func newResolveCmd() *cobra.Command {
	bias := biasValue(bisect.GreatestLowerBound)
	cmd := &cobra.Command{
		Use:   "resolve <file> <line> <column>",
		Short: "Print the original position for a generated one",
		Long: "Resolve looks up the source map referenced by the generated file and prints\n" +
			"the original position mapped to the given 1-based line and 0-based column.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid line %q: %w", args[1], err)
			}
			column, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid column %q: %w", args[2], err)
			}

			r := trace.NewCache().Resolver(args[0])
			if r == nil {
				return fmt.Errorf("no source map found for %s", args[0])
			}
			pos, err := r.OriginalPositionFor(line, column, bisect.Bias(bias))
			if err != nil {
				return err
			}
			if pos == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no mapping")
				return nil
			}
			if pos.Name != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:%d:%d (%s)\n", pos.Source, pos.Line, pos.Column, pos.Name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:%d:%d\n", pos.Source, pos.Line, pos.Column)
			}
			return nil
		},
	}
	cmd.Flags().Var(&bias, "bias", `nearest-match direction: "glb" (floor) or "lub" (ceiling)`)
	return cmd
}
