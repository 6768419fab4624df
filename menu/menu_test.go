package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(nodes []Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Item.Label)
	}
	return out
}

func collect(it *Iterator) []Node {
	var out []Node
	for {
		n, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, n)
	}
}

func mustAppend(t *testing.T, b *Builder, parent ItemID, item Item) ItemID {
	t.Helper()
	id, err := b.Append(parent, item)
	require.NoError(t, err)
	return id
}

func TestWalk_PreOrder(t *testing.T) {
	b := NewBuilder()
	mustAppend(t, b, Root, Entry("item1", Custom(1)))
	item2 := mustAppend(t, b, Root, Submenu("item2"))
	mustAppend(t, b, item2, Entry("item2a", Custom(2)))
	mustAppend(t, b, item2, Entry("item2b", Custom(3)))
	tree := b.Finalize()

	nodes := collect(tree.Walk())
	assert.Equal(t, []string{"item1", "item2", "item2a", "item2b"}, labels(nodes))
	assert.Equal(t, []int{0, 0, 1, 1}, []int{nodes[0].Depth, nodes[1].Depth, nodes[2].Depth, nodes[3].Depth})
}

func TestWalk_ChildrenBeforeNextSibling(t *testing.T) {
	b := NewBuilder()
	file := mustAppend(t, b, Root, Submenu("File"))
	recent := mustAppend(t, b, file, Submenu("Recent"))
	mustAppend(t, b, recent, Entry("a.txt", Custom(10)))
	mustAppend(t, b, file, Separator())
	mustAppend(t, b, file, Entry("Quit", Custom(11)))
	edit := mustAppend(t, b, Root, Submenu("Edit"))
	mustAppend(t, b, edit, Entry("Copy", CommandCopy))
	tree := b.Finalize()

	got := labels(collect(tree.Walk()))
	assert.Equal(t, []string{"File", "Recent", "a.txt", "", "Quit", "Edit", "Copy"}, got)
}

func TestWalk_IsRestartable(t *testing.T) {
	b := NewBuilder()
	a := mustAppend(t, b, Root, Submenu("a"))
	mustAppend(t, b, a, Entry("b", CommandUndo))
	tree := b.Finalize()

	it := tree.Walk()
	first := collect(it)
	_, ok := it.Next()
	assert.False(t, ok)

	it.Reset()
	assert.Equal(t, first, collect(it))

	var viaSeq []Node
	for n := range tree.All() {
		viaSeq = append(viaSeq, n)
	}
	assert.Equal(t, first, viaSeq)
}

func TestWalkFrom_StaysInsideSubtree(t *testing.T) {
	b := NewBuilder()
	a := mustAppend(t, b, Root, Submenu("a"))
	mustAppend(t, b, a, Entry("a1", Custom(1)))
	bID := mustAppend(t, b, Root, Submenu("b"))
	mustAppend(t, b, bID, Entry("b1", Custom(2)))
	tree := b.Finalize()

	assert.Equal(t, []string{"a", "a1"}, labels(collect(tree.WalkFrom(a))))
	assert.Empty(t, collect(tree.WalkFrom(ItemID(99))))
}

func TestWalk_DeepMenuDoesNotRecurse(t *testing.T) {
	const depth = 100000
	b := NewBuilder()
	parent := Root
	for i := 0; i < depth; i++ {
		parent = mustAppend(t, b, parent, Submenu("level"))
	}
	tree := b.Finalize()

	count := 0
	last := -1
	for n := range tree.All() {
		count++
		last = n.Depth
	}
	assert.Equal(t, depth, count)
	assert.Equal(t, depth-1, last)
}

func TestBuilder_Errors(t *testing.T) {
	b := NewBuilder()
	sep := mustAppend(t, b, Root, Separator())

	_, err := b.Append(sep, Entry("x", CommandCopy))
	assert.ErrorIs(t, err, ErrSeparatorParent)

	_, err = b.Append(ItemID(42), Entry("x", CommandCopy))
	assert.ErrorIs(t, err, ErrUnknownItem)

	tree := b.Finalize()
	_, err = b.Append(Root, Entry("late", CommandCopy))
	assert.ErrorIs(t, err, ErrFinalized)
	_, err = b.Attach(Root, tree)
	assert.ErrorIs(t, err, ErrFinalized)
	assert.Equal(t, 1, tree.Len())
}

func TestBuilder_AttachRebasesSubtree(t *testing.T) {
	sub := NewBuilder()
	x := mustAppend(t, sub, Root, Submenu("x"))
	mustAppend(t, sub, x, Entry("x1", Custom(1)))
	mustAppend(t, sub, Root, Entry("y", Custom(2)))
	subtree := sub.Finalize()

	b := NewBuilder()
	mustAppend(t, b, Root, Entry("before", CommandCopy))
	host := mustAppend(t, b, Root, Submenu("host"))
	mustAppend(t, b, host, Entry("own", CommandPaste))
	first, err := b.Attach(host, subtree)
	require.NoError(t, err)

	// Appending under an attached node still lands at the end of its list.
	mustAppend(t, b, first, Entry("x2", Custom(3)))
	mustAppend(t, b, host, Entry("after", CommandRedo))
	tree := b.Finalize()

	got := labels(collect(tree.Walk()))
	assert.Equal(t, []string{"before", "host", "own", "x", "x1", "x2", "y", "after"}, got)

	item, ok := tree.Item(first)
	require.True(t, ok)
	assert.Equal(t, "x", item.Label)

	// The source tree is untouched.
	assert.Equal(t, []string{"x", "x1", "y"}, labels(collect(subtree.Walk())))
}

func TestTree_Navigation(t *testing.T) {
	b := NewBuilder()
	a := mustAppend(t, b, Root, Submenu("a"))
	a1 := mustAppend(t, b, a, Entry("a1", Custom(1)))
	a2 := mustAppend(t, b, a, Entry("a2", Custom(2)))
	bb := mustAppend(t, b, Root, Entry("b", Custom(3)))
	tree := b.Finalize()

	assert.Equal(t, []ItemID{a, bb}, tree.Roots())
	assert.Equal(t, []ItemID{a1, a2}, tree.Children(a))
	assert.Equal(t, a1, tree.FirstChild(a))
	assert.Equal(t, a2, tree.NextSibling(a1))
	assert.Equal(t, Root, tree.NextSibling(a2))
	assert.Equal(t, Root, tree.FirstChild(bb))

	_, ok := tree.Item(Root)
	assert.False(t, ok)
}

func TestEmptyTree(t *testing.T) {
	tree := NewBuilder().Finalize()
	assert.Zero(t, tree.Len())
	assert.Empty(t, tree.Items())

	var nilTree *Tree
	assert.Empty(t, collect(nilTree.Walk()))
}

func TestCommand(t *testing.T) {
	n, ok := Custom(7).IsCustom()
	assert.True(t, ok)
	assert.Equal(t, uint32(7), n)

	_, ok = CommandPaste.IsCustom()
	assert.False(t, ok)
	assert.Equal(t, "custom(7)", Custom(7).String())
	assert.Equal(t, "copy", CommandCopy.String())
}
