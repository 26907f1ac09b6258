package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/astmap/astmap/internal/config"
	"github.com/astmap/astmap/internal/treeio"
	"github.com/astmap/astmap/pkg/ast"
)

// matchArgCount is the number of arguments expected by the match command.
const matchArgCount = 2

func matchCmd() *cobra.Command {
	var inFormat string
	var holeTypes []string

	cmd := &cobra.Command{
		Use:   "match pattern tree",
		Short: "Check whether a pattern tree matches a concrete tree",
		Long: `Check whether a pattern tree matches a concrete tree.

Pattern nodes whose type is in the hole list are wildcards and match any
counterpart subtree.

Examples:
  astmap match pattern.json tree.json
  astmap match --hole-type Hole --hole-type Any pattern.json tree.json`,
		Args: cobra.ExactArgs(matchArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(args[0], args[1], inFormat, holeTypes, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&inFormat, "input-format", "", "input format (json, yaml; default: by extension)")
	cmd.Flags().StringArrayVar(&holeTypes, "hole-type", nil, "node types treated as wildcards (default: from config)")

	return cmd
}

func runMatch(patternFile, treeFile, inFormat string, holeTypes []string, writer io.Writer) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if len(holeTypes) == 0 {
		holeTypes = cfg.Match.HoleTypes
	}

	pattern, err := treeio.Load(patternFile, inFormat)
	if err != nil {
		return err
	}

	tree, err := treeio.Load(treeFile, inFormat)
	if err != nil {
		return err
	}

	matcher := ast.NewDeepMatcher(func(n *ast.Node) bool {
		return slices.Contains(holeTypes, n.Type)
	})

	if matcher.Match(pattern, tree) {
		fmt.Fprintln(writer, "match")

		return nil
	}

	fmt.Fprintln(writer, "no match")

	return nil
}
