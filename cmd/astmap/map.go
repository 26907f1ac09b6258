package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/astmap/astmap/internal/config"
	"github.com/astmap/astmap/internal/render"
	"github.com/astmap/astmap/internal/treeio"
	"github.com/astmap/astmap/pkg/ast"
	"github.com/astmap/astmap/pkg/ast/mapper"
)

// mapArgCount is the number of arguments expected by the map command.
const mapArgCount = 2

// Sentinel errors for the map command.
var (
	ErrUnsupportedMapFmt = errors.New("unsupported format")
	ErrTreeTooLarge      = errors.New("tree exceeds the configured node limit")
)

func mapCmd() *cobra.Command {
	var output, format, inFormat string

	cmd := &cobra.Command{
		Use:   "map tree1 tree2",
		Short: "Compute a node mapping between two serialized trees",
		Long: `Compute a correspondence between the nodes of two serialized trees.

Examples:
  astmap map before.json after.json              # Render a pair table
  astmap map -f summary before.json after.json   # Counts and renames
  astmap map -f json before.yaml after.yaml      # Machine-readable output`,
		Args: cobra.ExactArgs(mapArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap(args[0], args[1], output, format, inFormat, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format (table, summary, json)")
	cmd.Flags().StringVar(&inFormat, "input-format", "", "input format (json, yaml; default: by extension)")

	return cmd
}

func runMap(file1, file2, output, format, inFormat string, writer io.Writer) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if format == "" {
		format = cfg.Output.Format
	}

	root1, err := loadTree(file1, inFormat, cfg.Limits.MaxNodes)
	if err != nil {
		return err
	}

	root2, err := loadTree(file2, inFormat, cfg.Limits.MaxNodes)
	if err != nil {
		return err
	}

	treeMapper, err := mapper.New(root1, root2, nil)
	if err != nil {
		return err
	}

	store := treeMapper.Build()

	if verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		logger.Info("mapping built",
			"tree1_nodes", root1.Node().Count(),
			"tree2_nodes", root2.Node().Count(),
			"pairs", store.Len())
	}

	var rendered []byte

	switch format {
	case config.FormatTable:
		rendered = []byte(render.Table(root1, root2, store) + "\n")
	case config.FormatSummary:
		rendered = []byte(render.Summary(root1, root2, store, cfg.Output.Color))
	case config.FormatJSON:
		rendered, err = render.JSON(root1, root2, store)
		if err != nil {
			return err
		}

		rendered = append(rendered, '\n')
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedMapFmt, format)
	}

	return writeOutput(rendered, output, writer)
}

// loadTree reads a serialized tree, enforces the node cap and builds the
// parent-linked wrapper tree the mapper consumes.
func loadTree(path, inFormat string, maxNodes int) (*ast.TreeNode, error) {
	root, err := treeio.Load(path, inFormat)
	if err != nil {
		return nil, err
	}

	if count := root.Count(); count > maxNodes {
		return nil, fmt.Errorf("%w: %s has %d nodes (limit %d)", ErrTreeTooLarge, path, count, maxNodes)
	}

	tree, err := ast.NewTree(root)
	if err != nil {
		return nil, err
	}

	return tree, nil
}

func writeOutput(data []byte, output string, writer io.Writer) error {
	if output == "" {
		_, err := writer.Write(data)

		return err
	}

	err := os.WriteFile(output, data, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}
