// Package mapper builds a correspondence between the nodes of two trees.
//
// Connections are established by a multi-pass heuristic: root seeding with
// downward propagation, a pluggable root-matching strategy, a breadth-first
// repair pass, and a final disconnection pass that drops pairings which
// would force a cascade of small updates instead of one clean
// insert/delete. The result is a good mapping under a fixed heuristic
// ordering, not a globally optimal one.
package mapper

import (
	"fmt"

	"github.com/astmap/astmap/pkg/ast"
	"github.com/astmap/astmap/pkg/ast/mapping"
)

// ExtendFunc is a pluggable root-matching strategy. It is invoked once per
// mapper run, after root seeding and before the generic repair passes, to
// inject domain-specific correspondences. Strategies may call the mapper's
// Upraise and Downstairs to propagate the connections they make. When
// connecting nodes directly, pass the first-tree node as the first argument:
// the store reports pairs in Connect argument order.
type ExtendFunc func(root1, root2 *ast.TreeNode, m *Mapper)

// connectFunc decides whether two unconnected children should be paired.
type connectFunc func(n1, n2 *ast.TreeNode) bool

// Mapper populates a mapping store for a pair of tree roots. A Mapper is
// single-use: Build computes the mapping once and returns it. The trees are
// treated as read-only; only the mapping store is mutated.
type Mapper struct {
	root1  *ast.TreeNode
	root2  *ast.TreeNode
	store  *mapping.Mapping
	hasher *ast.SimilarityHasher
	extend ExtendFunc
}

// New creates a mapper for the two tree roots. The extend strategy may be
// nil, in which case only the generic passes run. Nil roots are rejected.
func New(root1, root2 *ast.TreeNode, extend ExtendFunc) (*Mapper, error) {
	if root1 == nil || root2 == nil {
		return nil, fmt.Errorf("mapper: %w", ast.ErrNilRoot)
	}

	return &Mapper{
		root1:  root1,
		root2:  root2,
		store:  mapping.New(),
		hasher: ast.NewSimilarityHasher(),
		extend: extend,
	}, nil
}

// Mapping returns the mapping store being populated.
func (m *Mapper) Mapping() *mapping.Mapping {
	return m.store
}

// Build computes the mapping. It always terminates with some mapping,
// possibly the empty one; well-formed trees never produce an error
// mid-algorithm.
func (m *Mapper) Build() *mapping.Mapping {
	// Try to build some connections fast first.
	if m.root1.Type() == m.root2.Type() {
		m.store.Connect(m.root1, m.root2)
		m.Downstairs(m.root1)
	}

	// Let the strategy extend the connections with domain knowledge.
	if m.extend != nil {
		m.extend(m.root1, m.root2, m)
	}

	// Repair pass: nodes left unconnected because an ancestor pairing was
	// established after they were first visited get another chance.
	bfsNodes := ast.Bfs(m.root1)
	for _, node := range bfsNodes {
		if !m.store.Contains(node) {
			m.Downstairs(node.Parent())
		}
	}

	// Remove connections that would cause a line of updates instead of one
	// deletion and insertion.
	for _, node := range bfsNodes {
		if m.needDisconnect(node) {
			m.store.Disconnect(node)
		}
	}

	return m.store
}

// Downstairs extends the mapping downward from root, which must already be
// connected. Unconnected children of root and of its counterpart are paired
// by four passes in strictly increasing looseness; every new connection
// immediately recurses before the current level's scan continues.
func (m *Mapper) Downstairs(root *ast.TreeNode) {
	if root == nil || !m.store.Contains(root) {
		return
	}

	counterpart := m.store.Get(root)
	left := m.unconnectedChildren(root)
	right := m.unconnectedChildren(counterpart)

	// Corresponding positions with exact hashes, common prefix only (O(N)).
	left, right = m.connectPrefix(left, right, m.sameHash)

	// Each with each other, still exact hashes (O(N^2)).
	if len(right) > 0 {
		left, right = m.connectProduct(left, right, m.sameHash)
	}

	// Each with each other with the soft equation (O(N^2)).
	if len(right) > 0 {
		left, right = m.connectProduct(left, right, shallowMatch)
	}

	// Corresponding positions with the softest equation, only when the
	// remainders line up one to one (O(N)).
	if len(left) == len(right) && len(right) > 0 {
		m.connectLinear(left, right, sameShape)
	}
}

// Upraise extends the mapping upward from the pair (node1, node2). If the
// types agree and either neither side is connected or the existing pairings
// should be updated, the pair is connected, disbanding prior pairings, and
// the climb continues with the parents. Strategies call this to pull a
// correspondence up through ancestors when a strong leaf-level match is
// found.
func (m *Mapper) Upraise(node1, node2 *ast.TreeNode) {
	if node1 == nil || node2 == nil || node1.Type() != node2.Type() {
		return
	}

	bothNotMapped := !m.store.Contains(node1) && !m.store.Contains(node2)
	if bothNotMapped || m.needUpdate(node1, node2) {
		m.store.Connect(node1, node2)
		m.Upraise(node1.Parent(), node2.Parent())
	}
}

// needUpdate checks that the pairings of two nodes should be replaced with
// a connection between the nodes themselves.
func (m *Mapper) needUpdate(node1, node2 *ast.TreeNode) bool {
	if !node1.Matches(node2) {
		return false
	}

	if node1.ChildCount() == 1 && node2.ChildCount() == 1 {
		return true
	}

	return m.mismatchesMapping(node1) && m.mismatchesMapping(node2)
}

// needDisconnect checks whether a node's pairing is unsafe and must be
// dropped. A shallow-matching pairing is always kept. Otherwise a pairing
// is unsafe when child counts differ, when both parents are mapped but not
// to each other or do not match, or when any child is unmapped or mapped to
// a non-matching node.
func (m *Mapper) needDisconnect(node1 *ast.TreeNode) bool {
	node2 := m.store.Get(node1)
	if node2 == nil || node1.Matches(node2) {
		return false
	}

	if node1.ChildCount() != node2.ChildCount() {
		return true
	}

	parent1 := node1.Parent()
	parent2 := node2.Parent()

	// The parent clause applies only when both parents participate in the
	// mapping; a pairing under an unmapped parent is judged by its children
	// alone.
	if m.store.Contains(parent1) && m.store.Contains(parent2) {
		if !m.store.Connected(parent1, parent2) || !parent1.Matches(parent2) {
			return true
		}
	}

	for _, child := range node1.Children() {
		if m.mismatchesMapping(child) {
			return true
		}
	}

	return false
}

// mismatchesMapping checks that a node is not mapped or does not match its
// counterpart.
func (m *Mapper) mismatchesMapping(node *ast.TreeNode) bool {
	mapped := m.store.Get(node)

	return mapped == nil || !node.Matches(mapped)
}

func (m *Mapper) unconnectedChildren(root *ast.TreeNode) []*ast.TreeNode {
	result := make([]*ast.TreeNode, 0, root.ChildCount())

	for _, child := range root.Children() {
		if !m.store.Contains(child) {
			result = append(result, child)
		}
	}

	return result
}

// connectPrefix walks the two lists in lockstep, connecting pairs accepted
// by needConnect. Only a common prefix is matched: the walk stops at the
// first rejected pair. Returns the remaining unconnected items.
func (m *Mapper) connectPrefix(
	left, right []*ast.TreeNode,
	needConnect connectFunc,
) ([]*ast.TreeNode, []*ast.TreeNode) {
	limit := min(len(left), len(right))
	matched := 0

	for idx := 0; idx < limit; idx++ {
		if !needConnect(left[idx], right[idx]) {
			break
		}

		m.store.Connect(left[idx], right[idx])
		m.Downstairs(left[idx])

		matched = idx + 1
	}

	return left[matched:], right[matched:]
}

// connectLinear walks the two lists in lockstep, connecting every pair
// accepted by needConnect; rejected positions are skipped, not terminal.
// Returns the remaining unconnected items.
func (m *Mapper) connectLinear(
	left, right []*ast.TreeNode,
	needConnect connectFunc,
) ([]*ast.TreeNode, []*ast.TreeNode) {
	limit := min(len(left), len(right))
	remainingLeft := make([]*ast.TreeNode, 0, len(left))
	remainingRight := make([]*ast.TreeNode, 0, len(right))

	for idx := 0; idx < limit; idx++ {
		if !needConnect(left[idx], right[idx]) {
			remainingLeft = append(remainingLeft, left[idx])
			remainingRight = append(remainingRight, right[idx])

			continue
		}

		m.store.Connect(left[idx], right[idx])
		m.Downstairs(left[idx])
	}

	remainingLeft = append(remainingLeft, left[limit:]...)
	remainingRight = append(remainingRight, right[limit:]...)

	return remainingLeft, remainingRight
}

// connectProduct scans, for every left item, all right items and connects
// the first accepted pair. Matched items are removed from both remainders.
func (m *Mapper) connectProduct(
	left, right []*ast.TreeNode,
	needConnect connectFunc,
) ([]*ast.TreeNode, []*ast.TreeNode) {
	remaining := make([]*ast.TreeNode, 0, len(left))

	for _, child1 := range left {
		found := -1

		for idx, child2 := range right {
			if needConnect(child1, child2) {
				found = idx

				break
			}
		}

		if found < 0 {
			remaining = append(remaining, child1)

			continue
		}

		child2 := right[found]
		right = append(right[:found], right[found+1:]...)

		m.store.Connect(child1, child2)
		m.Downstairs(child1)
	}

	return remaining, right
}

func (m *Mapper) sameHash(n1, n2 *ast.TreeNode) bool {
	return m.hasher.Hash(n1) == m.hasher.Hash(n2)
}

func shallowMatch(n1, n2 *ast.TreeNode) bool {
	return n1.Matches(n2)
}

// sameShape is the loosest criterion: equal type and equal child count,
// data ignored.
func sameShape(n1, n2 *ast.TreeNode) bool {
	return n1.Type() == n2.Type() && n1.ChildCount() == n2.ChildCount()
}
