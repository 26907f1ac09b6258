// Package treeio loads serialized trees from JSON and YAML files for the
// CLI front end. The library core never performs I/O; everything here stays
// at the command boundary.
package treeio

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/astmap/astmap/pkg/ast"
)

// Supported input formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Sentinel errors for tree loading.
var (
	ErrUnsupportedFormat = errors.New("unsupported tree format")
	ErrMissingType       = errors.New("node has no type")
	ErrEmptyTree         = errors.New("tree file contains no root node")
)

// Load reads a serialized tree from the given path. An empty format selects
// the format from the file extension, defaulting to JSON.
func Load(path, format string) (*ast.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree file: %w", err)
	}

	if format == "" {
		format = detectFormat(path)
	}

	root, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return root, nil
}

// Decode parses a serialized tree from raw bytes in the given format and
// validates it.
func Decode(data []byte, format string) (*ast.Node, error) {
	var (
		root *ast.Node
		err  error
	)

	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &root)
	case FormatYAML, "yml":
		err = yaml.Unmarshal(data, &root)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	if err != nil {
		return nil, err
	}

	if root == nil {
		return nil, ErrEmptyTree
	}

	if err := Validate(root); err != nil {
		return nil, err
	}

	return root, nil
}

// Validate checks that every node in the tree carries a type identifier.
func Validate(root *ast.Node) error {
	if root.Type == "" {
		return ErrMissingType
	}

	for _, child := range root.Children {
		if err := Validate(child); err != nil {
			return err
		}
	}

	return nil
}

func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}
