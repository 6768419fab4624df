// Package menu models application and window menus as an immutable,
// arena-backed forest.
//
// Nodes live in a single slice and are addressed by ItemID. Each node knows
// its first child and next sibling; there is no parent pointer. A Builder
// grows the arena and Finalize freezes it into a Tree. Nodes are never
// removed, so an ItemID stays valid for the lifetime of its Tree.
package menu

import (
	"errors"
	"fmt"
)

var (
	// ErrFinalized is returned by Builder methods called after Finalize.
	ErrFinalized = errors.New("menu: builder already finalized")
	// ErrUnknownItem is returned when a parent id is not part of the arena.
	ErrUnknownItem = errors.New("menu: unknown item")
	// ErrSeparatorParent is returned when a child is added under a separator.
	ErrSeparatorParent = errors.New("menu: separators cannot have children")
)

// Kind distinguishes ordinary entries from separators.
type Kind uint8

const (
	KindOrdinary Kind = iota
	KindSeparator
)

func (k Kind) String() string {
	switch k {
	case KindOrdinary:
		return "item"
	case KindSeparator:
		return "separator"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Command is reported to the handler when an item is selected.
type Command uint32

const (
	CommandNone Command = iota
	CommandCopy
	CommandPaste
	CommandUndo
	CommandRedo

	customBase Command = 1 << 16
)

// Custom returns an application-defined command. Custom commands never
// collide with the predefined ones.
func Custom(n uint32) Command {
	return customBase + Command(n)
}

// IsCustom reports whether c was created by Custom, and returns its value.
func (c Command) IsCustom() (uint32, bool) {
	if c < customBase {
		return 0, false
	}
	return uint32(c - customBase), true
}

func (c Command) String() string {
	switch c {
	case CommandNone:
		return "none"
	case CommandCopy:
		return "copy"
	case CommandPaste:
		return "paste"
	case CommandUndo:
		return "undo"
	case CommandRedo:
		return "redo"
	}
	if n, ok := c.IsCustom(); ok {
		return fmt.Sprintf("custom(%d)", n)
	}
	return fmt.Sprintf("Command(%d)", uint32(c))
}

// Item is the payload of a menu node.
type Item struct {
	Kind    Kind
	Label   string
	Command Command
	Enabled bool
	Checked bool
}

// Entry is an enabled ordinary item.
func Entry(label string, cmd Command) Item {
	return Item{Kind: KindOrdinary, Label: label, Command: cmd, Enabled: true}
}

// Submenu is an enabled ordinary item intended to carry children.
func Submenu(label string) Item {
	return Item{Kind: KindOrdinary, Label: label, Enabled: true}
}

// Separator is a divider line.
func Separator() Item {
	return Item{Kind: KindSeparator}
}

// ItemID addresses a node in a menu arena. The zero value is Root.
type ItemID uint32

// Root is the parent to use for top-level items.
const Root ItemID = 0

// index returns the arena slot of id. Slots are offset by one so the zero
// ItemID can mean "no parent".
func (id ItemID) index() int {
	return int(id) - 1
}

func idFor(index int) ItemID {
	return ItemID(index + 1)
}

type node struct {
	item        Item
	firstChild  ItemID
	nextSibling ItemID
}

// Builder accumulates menu nodes. It is not safe for concurrent use.
type Builder struct {
	nodes []node
	// lastChild tracks the tail of every child list (and of the root list at
	// index 0) so appends are O(1). It is discarded by Finalize.
	lastChild []ItemID
	firstRoot ItemID
	frozen    bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{lastChild: []ItemID{Root}}
}

// Append adds item as the last child of parent, or as the last top-level
// item when parent is Root.
func (b *Builder) Append(parent ItemID, item Item) (ItemID, error) {
	if err := b.checkParent(parent); err != nil {
		return Root, err
	}
	b.nodes = append(b.nodes, node{item: item})
	b.lastChild = append(b.lastChild, Root)
	id := idFor(len(b.nodes) - 1)
	b.link(parent, id)
	return id, nil
}

// Attach copies sub under parent, preserving its shape, and returns the id of
// sub's first top-level item in this builder. Attaching an empty tree is a
// no-op that returns Root.
func (b *Builder) Attach(parent ItemID, sub *Tree) (ItemID, error) {
	if err := b.checkParent(parent); err != nil {
		return Root, err
	}
	if sub == nil || len(sub.nodes) == 0 {
		return Root, nil
	}

	offset := ItemID(len(b.nodes))
	rebase := func(id ItemID) ItemID {
		if id == Root {
			return Root
		}
		return id + offset
	}
	for _, n := range sub.nodes {
		b.nodes = append(b.nodes, node{
			item:        n.item,
			firstChild:  rebase(n.firstChild),
			nextSibling: rebase(n.nextSibling),
		})
		b.lastChild = append(b.lastChild, Root)
	}
	// Recover the child-list tails of the copied nodes so later appends under
	// them stay O(1).
	for i, n := range sub.nodes {
		for c := n.firstChild; c != Root; c = sub.nodes[c.index()].nextSibling {
			b.lastChild[int(offset)+i+1] = rebase(c)
		}
	}

	// Splice every top-level item of sub, in order, under parent.
	first := rebase(sub.firstRoot)
	for r := sub.firstRoot; r != Root; {
		next := sub.nodes[r.index()].nextSibling
		id := rebase(r)
		b.nodes[id.index()].nextSibling = Root
		b.link(parent, id)
		r = next
	}
	return first, nil
}

// Finalize freezes the builder and returns the immutable tree. Later calls to
// Append or Attach fail with ErrFinalized; later calls to Finalize return the
// same tree contents.
func (b *Builder) Finalize() *Tree {
	b.frozen = true
	nodes := make([]node, len(b.nodes))
	copy(nodes, b.nodes)
	return &Tree{nodes: nodes, firstRoot: b.firstRoot}
}

func (b *Builder) checkParent(parent ItemID) error {
	if b.frozen {
		return ErrFinalized
	}
	if parent == Root {
		return nil
	}
	i := parent.index()
	if i < 0 || i >= len(b.nodes) {
		return fmt.Errorf("%w: %d", ErrUnknownItem, parent)
	}
	if b.nodes[i].item.Kind == KindSeparator {
		return ErrSeparatorParent
	}
	return nil
}

// link appends id to parent's child list.
func (b *Builder) link(parent, id ItemID) {
	tail := b.lastChild[parent]
	switch {
	case tail != Root:
		b.nodes[tail.index()].nextSibling = id
	case parent == Root:
		b.firstRoot = id
	default:
		b.nodes[parent.index()].firstChild = id
	}
	b.lastChild[parent] = id
}
