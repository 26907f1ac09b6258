// Package ast provides the abstract syntax tree node model, structural
// match predicates, and similarity hashing used by the tree mapper.
package ast

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNilRoot is returned when a tree operation receives a nil root.
var ErrNilRoot = errors.New("tree root is nil")

// Positions represents the byte and line/col offsets of the source fragment
// a node was produced from. The mapper never inspects it; it is opaque
// payload carried for downstream error messages.
type Positions struct {
	StartLine   uint `json:"start_line,omitempty" yaml:"start_line,omitempty"`
	StartCol    uint `json:"start_col,omitempty" yaml:"start_col,omitempty"`
	StartOffset uint `json:"start_offset,omitempty" yaml:"start_offset,omitempty"`
	EndLine     uint `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	EndCol      uint `json:"end_col,omitempty" yaml:"end_col,omitempty"`
	EndOffset   uint `json:"end_offset,omitempty" yaml:"end_offset,omitempty"`
}

// Node is an immutable labeled tree vertex.
//
// Fields:
//
//	Type: node type identifier (e.g., "Call", "Identifier").
//	Data: textual payload for leaf-like nodes; empty means absent.
//	Pos: source position info (optional, pass-through only).
//	Children: child nodes (ordered).
//
// Identity, not content, is the unit of comparison for mapping purposes:
// two distinct Node instances with identical type and data are different
// entities.
type Node struct {
	Type     string     `json:"type" yaml:"type"`
	Data     string     `json:"data,omitempty" yaml:"data,omitempty"`
	Pos      *Positions `json:"pos,omitempty" yaml:"pos,omitempty"`
	Children []*Node    `json:"children,omitempty" yaml:"children,omitempty"`
}

// New creates a new Node with the given type, data and children.
func New(nodeType, data string, children ...*Node) *Node {
	return &Node{
		Type:     nodeType,
		Data:     data,
		Children: children,
	}
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.Children)
}

// Count returns the total number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}

	total := 1
	for _, child := range n.Children {
		total += child.Count()
	}

	return total
}

// Depth returns the height of the subtree rooted at n (1 for a leaf).
func (n *Node) Depth() int {
	if n == nil {
		return 0
	}

	deepest := 0

	for _, child := range n.Children {
		if d := child.Depth(); d > deepest {
			deepest = d
		}
	}

	return deepest + 1
}

// String returns a compact string representation of the node.
func (n *Node) String() string {
	if n == nil {
		return "nil"
	}

	var buf strings.Builder

	buf.WriteString(n.Type)

	if n.Data != "" {
		buf.WriteString("(")
		buf.WriteString(n.Data)
		buf.WriteString(")")
	}

	if len(n.Children) > 0 {
		buf.WriteString("/")
		buf.WriteString(strconv.Itoa(len(n.Children)))
	}

	return buf.String()
}

// TreeNode wraps a Node with a non-owning back-reference to its parent and
// its index among siblings. It is the node role consumed by the mapper.
// The tree root owns all wrappers; a wrapper's parent is fixed at
// construction time and trees are never reparented in place.
type TreeNode struct {
	node     *Node
	parent   *TreeNode
	children []*TreeNode
	order    int
}

// NewTree builds the TreeNode wrapper tree for the given root node.
// Returns ErrNilRoot for a nil root.
func NewTree(root *Node) (*TreeNode, error) {
	if root == nil {
		return nil, ErrNilRoot
	}

	return wrap(root, nil, 0), nil
}

func wrap(n *Node, parent *TreeNode, order int) *TreeNode {
	wrapped := &TreeNode{
		node:   n,
		parent: parent,
		order:  order,
	}

	wrapped.children = make([]*TreeNode, len(n.Children))
	for idx, child := range n.Children {
		wrapped.children[idx] = wrap(child, wrapped, idx)
	}

	return wrapped
}

// Node returns the wrapped node.
func (t *TreeNode) Node() *Node {
	return t.node
}

// Type returns the wrapped node's type identifier.
func (t *TreeNode) Type() string {
	return t.node.Type
}

// Data returns the wrapped node's data.
func (t *TreeNode) Data() string {
	return t.node.Data
}

// Parent returns the parent wrapper, or nil for the root.
func (t *TreeNode) Parent() *TreeNode {
	return t.parent
}

// Children returns the ordered child wrappers. The returned slice must not
// be mutated.
func (t *TreeNode) Children() []*TreeNode {
	return t.children
}

// ChildCount returns the number of children.
func (t *TreeNode) ChildCount() int {
	return len(t.children)
}

// Order returns the node's index among its siblings (0 for the root).
func (t *TreeNode) Order() int {
	return t.order
}

// Matches reports whether t shallow-matches other: identity, or equal type
// and equal data. Children are not considered.
func (t *TreeNode) Matches(other *TreeNode) bool {
	if t == other {
		return true
	}

	if t == nil || other == nil {
		return false
	}

	return ShallowMatches(t.node, other.node)
}

// Bfs returns all nodes of the subtree rooted at root in breadth-first
// order, the visiting order of the mapper's repair and disconnect passes.
func Bfs(root *TreeNode) []*TreeNode {
	if root == nil {
		return nil
	}

	result := make([]*TreeNode, 0, root.node.Count())
	queue := []*TreeNode{root}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		result = append(result, curr)
		queue = append(queue, curr.children...)
	}

	return result
}
