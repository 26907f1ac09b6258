// Package render formats mapping results for terminal and JSON output.
package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/astmap/astmap/pkg/ast"
	"github.com/astmap/astmap/pkg/ast/mapping"
)

// Pair kinds reported in the output.
const (
	kindExact   = "exact"
	kindUpdated = "updated"
)

// Report is the serializable view of a mapping between two trees.
type Report struct {
	Pairs      []PairEntry `json:"pairs"`
	Deletions  []string    `json:"deletions,omitempty"`
	Insertions []string    `json:"insertions,omitempty"`
}

// PairEntry describes one connected pair.
type PairEntry struct {
	First  string `json:"first"`
	Second string `json:"second"`
	Kind   string `json:"kind"`
}

// NewReport walks both trees in breadth-first order and collects connected
// pairs, unmapped first-tree nodes (deletions) and unmapped second-tree
// nodes (insertions).
func NewReport(root1, root2 *ast.TreeNode, store *mapping.Mapping) *Report {
	report := &Report{}

	for _, node := range ast.Bfs(root1) {
		counterpart := store.Get(node)
		if counterpart == nil {
			report.Deletions = append(report.Deletions, Path(node))

			continue
		}

		kind := kindExact
		if !node.Matches(counterpart) {
			kind = kindUpdated
		}

		report.Pairs = append(report.Pairs, PairEntry{
			First:  Path(node),
			Second: Path(counterpart),
			Kind:   kind,
		})
	}

	for _, node := range ast.Bfs(root2) {
		if !store.Contains(node) {
			report.Insertions = append(report.Insertions, Path(node))
		}
	}

	return report
}

// Path returns a readable location of a node in its tree, e.g.
// "Block/Print[1]/Identifier(x)". Sibling indexes are included for
// non-first children only.
func Path(node *ast.TreeNode) string {
	var segments []string

	for curr := node; curr != nil; curr = curr.Parent() {
		segments = append(segments, segment(curr))
	}

	// Reverse into root-first order.
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}

	return strings.Join(segments, "/")
}

func segment(node *ast.TreeNode) string {
	var buf strings.Builder

	buf.WriteString(node.Type())

	if node.Data() != "" {
		buf.WriteString("(")
		buf.WriteString(node.Data())
		buf.WriteString(")")
	}

	if node.Order() > 0 {
		buf.WriteString("[")
		buf.WriteString(strconv.Itoa(node.Order()))
		buf.WriteString("]")
	}

	return buf.String()
}

// Table renders the mapping as a table of pairs followed by unmapped nodes.
func Table(root1, root2 *ast.TreeNode, store *mapping.Mapping) string {
	report := NewReport(root1, root2, store)

	writer := table.NewWriter()
	writer.AppendHeader(table.Row{"Tree 1", "Tree 2", "Kind"})

	for _, pair := range report.Pairs {
		writer.AppendRow(table.Row{pair.First, pair.Second, pair.Kind})
	}

	for _, path := range report.Deletions {
		writer.AppendRow(table.Row{path, "", "deleted"})
	}

	for _, path := range report.Insertions {
		writer.AppendRow(table.Row{"", path, "inserted"})
	}

	return writer.Render()
}

// Summary renders counts of exact pairs, updates, deletions and insertions,
// plus a character-level diff of the data of every updated pair.
func Summary(root1, root2 *ast.TreeNode, store *mapping.Mapping, useColor bool) string {
	report := NewReport(root1, root2, store)

	exact := 0
	updated := make([]PairEntry, 0)

	for _, pair := range report.Pairs {
		if pair.Kind == kindExact {
			exact++
		} else {
			updated = append(updated, pair)
		}
	}

	green := sprintFunc(color.FgGreen, useColor)
	yellow := sprintFunc(color.FgYellow, useColor)
	red := sprintFunc(color.FgRed, useColor)

	var buf strings.Builder

	fmt.Fprintf(&buf, "mapped:    %s\n", humanize.Comma(int64(exact+len(updated))))
	fmt.Fprintf(&buf, "updated:   %s\n", yellow(humanize.Comma(int64(len(updated)))))
	fmt.Fprintf(&buf, "deleted:   %s\n", red(humanize.Comma(int64(len(report.Deletions)))))
	fmt.Fprintf(&buf, "inserted:  %s\n", green(humanize.Comma(int64(len(report.Insertions)))))

	for _, pair := range updated {
		fmt.Fprintf(&buf, "  %s %s %s\n", pair.First, yellow("->"), pair.Second)
	}

	appendDataDiffs(&buf, root1, store, useColor)

	return buf.String()
}

// appendDataDiffs prints character-level diffs for mapped pairs whose data
// changed but whose types agree (renames).
func appendDataDiffs(buf *strings.Builder, root1 *ast.TreeNode, store *mapping.Mapping, useColor bool) {
	dmp := diffmatchpatch.New()

	for _, node := range ast.Bfs(root1) {
		counterpart := store.Get(node)
		if counterpart == nil || node.Matches(counterpart) {
			continue
		}

		if node.Type() != counterpart.Type() || node.Data() == counterpart.Data() {
			continue
		}

		diffs := dmp.DiffMain(node.Data(), counterpart.Data(), false)

		rendered := dmp.DiffPrettyText(diffs)
		if !useColor {
			rendered = renderPlainDiff(diffs)
		}

		fmt.Fprintf(buf, "  %s: %s\n", Path(node), rendered)
	}
}

func renderPlainDiff(diffs []diffmatchpatch.Diff) string {
	var buf strings.Builder

	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			buf.WriteString("[-" + diff.Text + "]")
		case diffmatchpatch.DiffInsert:
			buf.WriteString("[+" + diff.Text + "]")
		case diffmatchpatch.DiffEqual:
			buf.WriteString(diff.Text)
		}
	}

	return buf.String()
}

// JSON renders the mapping report as indented JSON.
func JSON(root1, root2 *ast.TreeNode, store *mapping.Mapping) ([]byte, error) {
	report := NewReport(root1, root2, store)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	return data, nil
}

func sprintFunc(attr color.Attribute, useColor bool) func(a ...any) string {
	if !useColor {
		return fmt.Sprint
	}

	return color.New(attr).SprintFunc()
}
