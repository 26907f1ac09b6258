package ast

// HoleFunc classifies wildcard ("hole") nodes for pattern matching.
// A hole matches any counterpart subtree during deep comparison.
type HoleFunc func(*Node) bool

// ShallowFunc compares two nodes ignoring their children.
type ShallowFunc func(n1, n2 *Node) bool

// ShallowMatches reports whether two nodes match ignoring their children:
// identical instances match, otherwise both must be non-nil with equal type
// and equal data.
func ShallowMatches(n1, n2 *Node) bool {
	if n1 == n2 {
		return true
	}

	if n1 == nil || n2 == nil {
		return false
	}

	return n1.Type == n2.Type && n1.Data == n2.Data
}

// DeepMatcher is a predicate for checking that two node trees match
// recursively, with optional wildcard support. The hole classifier is
// injected to avoid a dependency on the concrete types that implement
// holes; the shallow comparison is replaceable for pattern-vs-concrete
// comparisons that need a looser node equality.
type DeepMatcher struct {
	hole    HoleFunc
	shallow ShallowFunc
}

// NewDeepMatcher creates a matcher with the given hole classifier.
// A nil classifier means no node is a hole.
func NewDeepMatcher(hole HoleFunc) *DeepMatcher {
	if hole == nil {
		hole = func(*Node) bool { return false }
	}

	return &DeepMatcher{
		hole:    hole,
		shallow: ShallowMatches,
	}
}

// NewExactMatcher creates a matcher that performs plain tree equality,
// with no wildcard support.
func NewExactMatcher() *DeepMatcher {
	return NewDeepMatcher(nil)
}

// WithShallow replaces the shallow node comparison and returns the matcher.
func (m *DeepMatcher) WithShallow(shallow ShallowFunc) *DeepMatcher {
	if shallow != nil {
		m.shallow = shallow
	}

	return m
}

// Match checks whether two node trees match recursively. Identical
// instances match. If either root is a hole, the subtrees match
// unconditionally, regardless of types or child counts. Otherwise both
// roots must be non-nil and shallow-match, child counts must be equal, and
// every child pair must match recursively.
func (m *DeepMatcher) Match(root1, root2 *Node) bool {
	if root1 == root2 {
		return true
	}

	if root1 == nil || root2 == nil {
		return false
	}

	if m.hole(root1) || m.hole(root2) {
		return true
	}

	if !m.shallow(root1, root2) {
		return false
	}

	return m.matchChildren(root1, root2)
}

func (m *DeepMatcher) matchChildren(root1, root2 *Node) bool {
	if len(root1.Children) != len(root2.Children) {
		return false
	}

	for idx := range root1.Children {
		if !m.Match(root1.Children[idx], root2.Children[idx]) {
			return false
		}
	}

	return true
}
