package main //nolint:testpackage // Tests drive the unexported run functions.

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// withTempConfig points the global config flag at an isolated file so tests
// never pick up a developer's real configuration.
func withTempConfig(t *testing.T, content string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "astmap.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	old := cfgFile
	cfgFile = path

	t.Cleanup(func() { cfgFile = old })
}

func writeTree(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write tree: %v", err)
	}

	return path
}

func TestRunMapJSON(t *testing.T) {
	withTempConfig(t, "")

	file1 := writeTree(t, "before.json", `{"type": "Block", "children": [{"type": "Print"}]}`)
	file2 := writeTree(t, "after.json", `{"type": "Block"}`)

	var out bytes.Buffer

	err := runMap(file1, file2, "", "json", "", &out)
	if err != nil {
		t.Fatalf("runMap: %v", err)
	}

	var report struct {
		Pairs     []any    `json:"pairs"`
		Deletions []string `json:"deletions"`
	}

	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if len(report.Pairs) != 1 || len(report.Deletions) != 1 {
		t.Errorf("unexpected report: %s", out.String())
	}
}

func TestRunMapUnsupportedFormat(t *testing.T) {
	withTempConfig(t, "")

	file1 := writeTree(t, "a.json", `{"type": "A"}`)
	file2 := writeTree(t, "b.json", `{"type": "A"}`)

	var out bytes.Buffer

	err := runMap(file1, file2, "", "csv", "", &out)
	if !errors.Is(err, ErrUnsupportedMapFmt) {
		t.Errorf("got %v, want ErrUnsupportedMapFmt", err)
	}
}

func TestRunMapNodeLimit(t *testing.T) {
	withTempConfig(t, "limits:\n  max_nodes: 1\n")

	file1 := writeTree(t, "a.json", `{"type": "A", "children": [{"type": "B"}]}`)
	file2 := writeTree(t, "b.json", `{"type": "A"}`)

	var out bytes.Buffer

	err := runMap(file1, file2, "", "json", "", &out)
	if !errors.Is(err, ErrTreeTooLarge) {
		t.Errorf("got %v, want ErrTreeTooLarge", err)
	}
}

func TestRunMatch(t *testing.T) {
	withTempConfig(t, "")

	pattern := writeTree(t, "pattern.json",
		`{"type": "Call", "children": [{"type": "Hole"}]}`)
	tree := writeTree(t, "tree.json",
		`{"type": "Call", "children": [{"type": "Identifier", "data": "x"}]}`)

	var out bytes.Buffer

	if err := runMatch(pattern, tree, "", nil, &out); err != nil {
		t.Fatalf("runMatch: %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "match" {
		t.Errorf("got %q, want match", got)
	}
}

func TestRunMatchMismatch(t *testing.T) {
	withTempConfig(t, "")

	pattern := writeTree(t, "pattern.json", `{"type": "Call"}`)
	tree := writeTree(t, "tree.json", `{"type": "Return"}`)

	var out bytes.Buffer

	if err := runMatch(pattern, tree, "", nil, &out); err != nil {
		t.Fatalf("runMatch: %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "no match" {
		t.Errorf("got %q, want no match", got)
	}
}

func TestRunStats(t *testing.T) {
	tree := writeTree(t, "tree.json",
		`{"type": "Block", "children": [{"type": "Print"}, {"type": "Print"}]}`)

	var out bytes.Buffer

	if err := runStats(tree, "", &out); err != nil {
		t.Fatalf("runStats: %v", err)
	}

	rendered := out.String()

	if !strings.Contains(rendered, "Print") || !strings.Contains(rendered, "2") {
		t.Errorf("unexpected stats output:\n%s", rendered)
	}
}

func TestRunCompletionUnsupportedShell(t *testing.T) {
	err := runCompletion("tcsh")
	if !errors.Is(err, ErrUnsupportedShell) {
		t.Errorf("got %v, want ErrUnsupportedShell", err)
	}
}
