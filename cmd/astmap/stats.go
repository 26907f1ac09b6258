package main

import (
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/astmap/astmap/internal/treeio"
	"github.com/astmap/astmap/pkg/ast"
)

func statsCmd() *cobra.Command {
	var inFormat string

	cmd := &cobra.Command{
		Use:   "stats tree",
		Short: "Show node count, depth and type histogram for a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args[0], inFormat, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&inFormat, "input-format", "", "input format (json, yaml; default: by extension)")

	return cmd
}

func runStats(file, inFormat string, writer io.Writer) error {
	root, err := treeio.Load(file, inFormat)
	if err != nil {
		return err
	}

	histogram := make(map[string]int)
	collectTypes(root, histogram)

	types := make([]string, 0, len(histogram))
	for nodeType := range histogram {
		types = append(types, nodeType)
	}

	sort.Slice(types, func(i, j int) bool {
		if histogram[types[i]] != histogram[types[j]] {
			return histogram[types[i]] > histogram[types[j]]
		}

		return types[i] < types[j]
	})

	tw := table.NewWriter()
	tw.SetOutputMirror(writer)
	tw.AppendHeader(table.Row{"Type", "Count"})

	for _, nodeType := range types {
		tw.AppendRow(table.Row{nodeType, humanize.Comma(int64(histogram[nodeType]))})
	}

	tw.AppendFooter(table.Row{"total", humanize.Comma(int64(root.Count()))})
	tw.AppendFooter(table.Row{"depth", humanize.Comma(int64(root.Depth()))})
	tw.Render()

	return nil
}

func collectTypes(node *ast.Node, histogram map[string]int) {
	histogram[node.Type]++

	for _, child := range node.Children {
		collectTypes(child, histogram)
	}
}
