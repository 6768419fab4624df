package menu

import "iter"

// Tree is a finalized menu. It is immutable and may be shared by read-only
// reference across goroutines.
type Tree struct {
	nodes     []node
	firstRoot ItemID
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

func (t *Tree) valid(id ItemID) bool {
	i := id.index()
	return t != nil && i >= 0 && i < len(t.nodes)
}

// Item returns the payload stored at id.
func (t *Tree) Item(id ItemID) (Item, bool) {
	if !t.valid(id) {
		return Item{}, false
	}
	return t.nodes[id.index()].item, true
}

// FirstChild returns the first child of id, or Root when it has none. Passing
// Root returns the first top-level item.
func (t *Tree) FirstChild(id ItemID) ItemID {
	if id == Root {
		if t == nil {
			return Root
		}
		return t.firstRoot
	}
	if !t.valid(id) {
		return Root
	}
	return t.nodes[id.index()].firstChild
}

// NextSibling returns the sibling following id, or Root when it is the last.
func (t *Tree) NextSibling(id ItemID) ItemID {
	if !t.valid(id) {
		return Root
	}
	return t.nodes[id.index()].nextSibling
}

// Children returns the direct children of id in order. Root yields the
// top-level items.
func (t *Tree) Children(id ItemID) []ItemID {
	var out []ItemID
	for c := t.FirstChild(id); c != Root; c = t.NextSibling(c) {
		out = append(out, c)
	}
	return out
}

// Roots returns the top-level items in order.
func (t *Tree) Roots() []ItemID {
	return t.Children(Root)
}

// Node is one step of a traversal.
type Node struct {
	ID    ItemID
	Depth int
	Item  Item
}

type frame struct {
	id    ItemID
	depth int
	// siblings is false for the starting node of WalkFrom, whose siblings
	// are outside the walked subtree.
	siblings bool
}

// Iterator walks a tree in depth-first pre-order: a node, then each of its
// children fully, then its next sibling. It keeps an explicit stack, so depth
// is bounded by memory rather than by the call stack.
type Iterator struct {
	tree  *Tree
	start ItemID
	whole bool
	stack []frame
}

// Walk iterates over the whole forest.
func (t *Tree) Walk() *Iterator {
	it := &Iterator{tree: t, start: t.FirstChild(Root), whole: true}
	it.Reset()
	return it
}

// WalkFrom iterates over id and its descendants only.
func (t *Tree) WalkFrom(id ItemID) *Iterator {
	it := &Iterator{tree: t, start: id}
	if !t.valid(id) {
		it.start = Root
	}
	it.Reset()
	return it
}

// Reset rewinds the iterator to its starting node.
func (it *Iterator) Reset() {
	it.stack = it.stack[:0]
	if it.start != Root {
		it.stack = append(it.stack, frame{id: it.start, siblings: it.whole})
	}
}

// Next returns the next node, or false once the walk is exhausted.
func (it *Iterator) Next() (Node, bool) {
	if len(it.stack) == 0 {
		return Node{}, false
	}
	top := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]

	n := it.tree.nodes[top.id.index()]
	// Push the sibling first so the children, pushed last, are visited
	// before it.
	if top.siblings && n.nextSibling != Root {
		it.stack = append(it.stack, frame{id: n.nextSibling, depth: top.depth, siblings: true})
	}
	if n.firstChild != Root {
		it.stack = append(it.stack, frame{id: n.firstChild, depth: top.depth + 1, siblings: true})
	}
	return Node{ID: top.id, Depth: top.depth, Item: n.item}, true
}

// All returns the walk as a sequence. Each call starts from the beginning.
func (t *Tree) All() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		it := t.Walk()
		for {
			n, ok := it.Next()
			if !ok || !yield(n) {
				return
			}
		}
	}
}

// Items collects every payload in pre-order.
func (t *Tree) Items() []Item {
	out := make([]Item, 0, t.Len())
	for n := range t.All() {
		out = append(out, n.Item)
	}
	return out
}
