package mapper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astmap/astmap/pkg/ast"
	"github.com/astmap/astmap/pkg/ast/mapper"
	"github.com/astmap/astmap/pkg/ast/mapping"
)

func wrap(t *testing.T, n *ast.Node) *ast.TreeNode {
	t.Helper()

	tree, err := ast.NewTree(n)
	require.NoError(t, err)

	return tree
}

func build(t *testing.T, root1, root2 *ast.TreeNode, extend mapper.ExtendFunc) *mapping.Mapping {
	t.Helper()

	m, err := mapper.New(root1, root2, extend)
	require.NoError(t, err)

	return m.Build()
}

func TestMapperNilRoots(t *testing.T) {
	t.Parallel()

	root := wrap(t, ast.New("A", ""))

	_, err := mapper.New(nil, root, nil)
	assert.ErrorIs(t, err, ast.ErrNilRoot)

	_, err = mapper.New(root, nil, nil)
	assert.ErrorIs(t, err, ast.ErrNilRoot)
}

// An appended statement: the shared prefix maps via the linear hash-exact
// pass and the extra statement stays unmapped as an insertion.
func TestMapperAppendedStatement(t *testing.T) {
	t.Parallel()

	makeAssign := func() *ast.Node {
		return ast.New("Assign", "",
			ast.New("Identifier", "x"),
			ast.New("Literal", "1"),
		)
	}
	makePrint := func() *ast.Node {
		return ast.New("Print", "", ast.New("Identifier", "x"))
	}

	root1 := wrap(t, ast.New("Block", "", makeAssign(), makePrint()))
	root2 := wrap(t, ast.New("Block", "", makeAssign(), makePrint(), makePrint()))

	store := build(t, root1, root2, nil)

	assert.True(t, store.Connected(root1, root2), "roots must connect")
	assert.True(t, store.Connected(root1.Children()[0], root2.Children()[0]), "Assign must map to Assign")
	assert.True(t, store.Connected(root1.Children()[1], root2.Children()[1]), "first Print must map to first Print")

	extraPrint := root2.Children()[2]
	assert.False(t, store.Contains(extraPrint), "appended Print must stay unmapped")
	assert.False(t, store.Contains(extraPrint.Children()[0]), "children of the insertion must stay unmapped")
}

// A renamed identifier under an identical call: all exact passes fail, the
// loosest linear pass connects the children as a structural match despite
// the differing data, and the disconnection pass keeps the pairing because
// its structural context is intact.
func TestMapperRenaming(t *testing.T) {
	t.Parallel()

	root1 := wrap(t, ast.New("Call", "", ast.New("Identifier", "foo")))
	root2 := wrap(t, ast.New("Call", "", ast.New("Identifier", "bar")))

	store := build(t, root1, root2, nil)

	foo := root1.Children()[0]
	bar := root2.Children()[0]

	assert.True(t, store.Connected(root1, root2))
	assert.True(t, store.Connected(foo, bar), "structural fallback must connect the renamed identifier")
	assert.False(t, foo.Matches(bar))
}

// A rejected position in the loosest linear pass must not shadow later
// position-aligned structural matches: the walk skips the mismatch and
// keeps connecting.
func TestMapperShapePassContinuesPastMismatch(t *testing.T) {
	t.Parallel()

	root1 := wrap(t, ast.New("Block", "",
		ast.New("Assign", "x"),
		ast.New("Print", "y"),
	))
	root2 := wrap(t, ast.New("Block", "",
		ast.New("Return", "q"),
		ast.New("Print", "z"),
	))

	store := build(t, root1, root2, nil)

	assert.True(t, store.Connected(root1.Children()[1], root2.Children()[1]),
		"position-aligned structural match after a rejection must connect")
	assert.False(t, store.Contains(root1.Children()[0]))
	assert.False(t, store.Contains(root2.Children()[0]))
}

// A leaf mismatch alone, with consistent single-child structure, must not
// retroactively break a shallow-matching parent pairing.
func TestMapperKeepsParentOnLeafMismatch(t *testing.T) {
	t.Parallel()

	root1 := wrap(t, ast.New("A", "", ast.New("B", "")))
	root2 := wrap(t, ast.New("A", "", ast.New("C", "")))

	store := build(t, root1, root2, nil)

	assert.True(t, store.Connected(root1, root2), "A<->A must stay connected")
	assert.False(t, store.Contains(root1.Children()[0]), "B must stay unmapped")
	assert.False(t, store.Contains(root2.Children()[0]), "C must stay unmapped")
}

// A strategy-injected pairing with mismatched child counts is unsafe and
// must be dropped by the disconnection pass.
func TestMapperDisconnectsChildCountMismatch(t *testing.T) {
	t.Parallel()

	root1 := wrap(t, ast.New("R1", "", ast.New("X", "", ast.New("a", ""), ast.New("b", ""))))
	root2 := wrap(t, ast.New("R2", "", ast.New("Y", "", ast.New("c", ""))))

	x := root1.Children()[0]
	y := root2.Children()[0]

	extend := func(_, _ *ast.TreeNode, m *mapper.Mapper) {
		m.Mapping().Connect(x, y)
	}

	store := build(t, root1, root2, extend)

	assert.False(t, store.Contains(x), "pairing with mismatched child counts must be dropped")
	assert.False(t, store.Contains(y))
}

// A strategy-injected pairing whose parents are mapped, but not to each
// other, is unsafe.
func TestMapperDisconnectsWhenParentsNotConnected(t *testing.T) {
	t.Parallel()

	// The generic passes cross-pair the P parents by data (1<->1, 2<->2);
	// the strategy then wires the leaves of the non-corresponding parents
	// together.
	root1 := wrap(t, ast.New("R", "",
		ast.New("P", "1", ast.New("N", "a")),
		ast.New("P", "2"),
	))
	root2 := wrap(t, ast.New("R", "",
		ast.New("P", "2", ast.New("N", "b")),
		ast.New("P", "1"),
	))

	p1 := root1.Children()[0]
	p3 := root2.Children()[1]
	n1 := p1.Children()[0]
	n2 := root2.Children()[0].Children()[0]

	extend := func(_, _ *ast.TreeNode, m *mapper.Mapper) {
		m.Mapping().Connect(n1, n2)
	}

	store := build(t, root1, root2, extend)

	assert.True(t, store.Connected(p1, p3), "shallow-matching parents keep their cross pairing")
	assert.False(t, store.Connected(n1, n2), "pairing under disconnected parents must be dropped")
}

// A strategy can pull a correspondence up through ancestors via Upraise.
func TestMapperUpraise(t *testing.T) {
	t.Parallel()

	root1 := wrap(t, ast.New("R1", "", ast.New("A", "", ast.New("Leaf", "x"))))
	root2 := wrap(t, ast.New("R2", "", ast.New("A", "", ast.New("Leaf", "x"))))

	leaf1 := root1.Children()[0].Children()[0]
	leaf2 := root2.Children()[0].Children()[0]

	extend := func(_, _ *ast.TreeNode, m *mapper.Mapper) {
		m.Upraise(leaf1, leaf2)
	}

	store := build(t, root1, root2, extend)

	assert.True(t, store.Connected(leaf1, leaf2))
	assert.True(t, store.Connected(root1.Children()[0], root2.Children()[0]),
		"upraise must climb to the matching ancestor")
	assert.False(t, store.Contains(root1), "upraise must stop at differing root types")
}

// Upraise overwrites stale pairings when the climbed pair shallow-matches
// and qualifies for an update.
func TestMapperUpraiseUpdatesMismatchedPairing(t *testing.T) {
	t.Parallel()

	root1 := wrap(t, ast.New("R1", "", ast.New("A", "good", ast.New("Leaf", "x"))))
	root2 := wrap(t, ast.New("R2", "",
		ast.New("A", "good", ast.New("Leaf", "x")),
		ast.New("A", "other", ast.New("Dead", "")),
	))

	a1 := root1.Children()[0]
	goodA := root2.Children()[0]
	otherA := root2.Children()[1]
	leaf1 := a1.Children()[0]
	leaf2 := goodA.Children()[0]

	extend := func(_, _ *ast.TreeNode, m *mapper.Mapper) {
		// Wire a1 to the wrong counterpart, then upraise from the leaves.
		m.Mapping().Connect(a1, otherA)
		m.Mapping().Connect(root1, goodA)
		m.Upraise(leaf1, leaf2)
	}

	store := build(t, root1, root2, extend)

	assert.True(t, store.Connected(leaf1, leaf2))
	assert.True(t, store.Connected(a1, goodA), "upraise must replace the mismatched pairings")
}

// The mapping is symmetric at every node after construction.
func TestMapperBijectionInvariant(t *testing.T) {
	t.Parallel()

	root1 := wrap(t, ast.New("Block", "",
		ast.New("Assign", "", ast.New("Identifier", "x"), ast.New("Literal", "1")),
		ast.New("Print", "", ast.New("Identifier", "x")),
		ast.New("Return", "", ast.New("Identifier", "y")),
	))
	root2 := wrap(t, ast.New("Block", "",
		ast.New("Assign", "", ast.New("Identifier", "x"), ast.New("Literal", "2")),
		ast.New("Print", "", ast.New("Identifier", "z")),
	))

	store := build(t, root1, root2, nil)

	for _, node := range ast.Bfs(root1) {
		if counterpart := store.Get(node); counterpart != nil {
			assert.Equal(t, node, store.Get(counterpart), "mapping must be symmetric")
		}
	}

	for _, node := range ast.Bfs(root2) {
		if counterpart := store.Get(node); counterpart != nil {
			assert.Equal(t, node, store.Get(counterpart), "mapping must be symmetric")
		}
	}
}

// Identical trees map completely.
func TestMapperIdenticalTrees(t *testing.T) {
	t.Parallel()

	makeTree := func() *ast.Node {
		return ast.New("Block", "",
			ast.New("Assign", "", ast.New("Identifier", "x"), ast.New("Literal", "1")),
			ast.New("Print", "", ast.New("Identifier", "x")),
		)
	}

	root1 := wrap(t, makeTree())
	root2 := wrap(t, makeTree())

	store := build(t, root1, root2, nil)

	for _, node := range ast.Bfs(root1) {
		assert.True(t, store.Contains(node), "every node of an identical tree must map: %s", node.Type())
	}

	assert.Equal(t, root1.Node().Count(), store.Len())
}

// Completely unrelated roots produce the empty mapping.
func TestMapperUnrelatedRoots(t *testing.T) {
	t.Parallel()

	root1 := wrap(t, ast.New("A", "", ast.New("B", "")))
	root2 := wrap(t, ast.New("X", "", ast.New("Y", "")))

	store := build(t, root1, root2, nil)

	assert.Equal(t, 0, store.Len())
}
