package material

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"strings"
)

// RootLevel is the level of the synthetic root item.
const RootLevel = -1

// Item is a node of a parsed material script: a block, a property line, an
// import statement, or the synthetic root that owns them.
//
// The level of an item is derived from its position in the tree and is
// recomputed for the whole subtree whenever the item is attached to a parent.
type Item struct {
	kind  string
	name  string
	named bool
	block bool
	level int
	pos   Position

	parent   *Item
	args     []string
	children []*Item

	bases       []string // declared base names
	inherits    []*Item  // resolved bases
	inheritedBy []*Item  // items that resolved this item as a base
}

// NewRoot returns an empty synthetic root.
func NewRoot() *Item {
	return &Item{level: RootLevel}
}

// NewItem returns a detached item of the given kind.
func NewItem(kind string) *Item {
	return &Item{kind: kind, level: RootLevel + 1}
}

// NewBlock returns a detached braced block of the given kind.
func NewBlock(kind string) *Item {
	it := NewItem(kind)
	it.block = true

	return it
}

// Kind returns the block or property type, or "" for the root.
func (it *Item) Kind() string { return it.kind }

// Name returns the declared identifier, or "" if the item is unnamed.
func (it *Item) Name() string { return it.name }

// IsBlock reports whether the item is a braced block rather than a
// property line or an import.
func (it *Item) IsBlock() bool { return it.block }

// HasName reports whether the item declares an identifier.
func (it *Item) HasName() bool { return it.named }

// Level returns the depth of the item; the root is at [RootLevel].
func (it *Item) Level() int { return it.level }

// Pos returns the source position the item was parsed from.
func (it *Item) Pos() Position { return it.pos }

// Parent returns the owning item, or nil for a root or detached item.
func (it *Item) Parent() *Item { return it.parent }

// IsRoot reports whether it is a synthetic root.
func (it *Item) IsRoot() bool { return it.parent == nil && it.level == RootLevel }

// ID returns the block id used as the merge key during inheritance:
// the kind alone, or "kind:name" when named.
func (it *Item) ID() string {
	if !it.named {
		return it.kind
	}

	return it.kind + ":" + it.name
}

// Args returns a copy of the positional arguments.
func (it *Item) Args() []string { return slices.Clone(it.args) }

// Arg returns the i-th argument, and false if there is none.
func (it *Item) Arg(i int) (string, bool) {
	if i < 0 || i >= len(it.args) {
		return "", false
	}

	return it.args[i], true
}

// NumArgs returns the number of positional arguments.
func (it *Item) NumArgs() int { return len(it.args) }

// Children returns a copy of the direct children in order.
func (it *Item) Children() []*Item { return slices.Clone(it.children) }

// NumChildren returns the number of direct children.
func (it *Item) NumChildren() int { return len(it.children) }

// All returns an iterator over the direct children in order.
func (it *Item) All() iter.Seq[*Item] {
	return func(yield func(*Item) bool) {
		for _, c := range it.children {
			if !yield(c) {
				return
			}
		}
	}
}

// Walk returns an iterator over it and all of its descendants, depth-first
// in document order.
func (it *Item) Walk() iter.Seq[*Item] {
	return func(yield func(*Item) bool) {
		it.walk(yield)
	}
}

func (it *Item) walk(yield func(*Item) bool) bool {
	if !yield(it) {
		return false
	}

	for _, c := range it.children {
		if !c.walk(yield) {
			return false
		}
	}

	return true
}

// Bases returns the declared inheritance base names.
func (it *Item) Bases() []string { return slices.Clone(it.bases) }

// Inherits returns the resolved bases, in declaration order.
func (it *Item) Inherits() []*Item { return slices.Clone(it.inherits) }

// InheritedBy returns the items that inherit from it.
func (it *Item) InheritedBy() []*Item { return slices.Clone(it.inheritedBy) }

// SetName sets the declared identifier.
func (it *Item) SetName(name string) {
	it.name, it.named = name, true
}

// AddArgument appends a positional argument.
func (it *Item) AddArgument(arg ...string) {
	it.args = append(it.args, arg...)
}

// AddBase appends a declared inheritance base name.
func (it *Item) AddBase(name string) {
	it.bases = append(it.bases, name)
}

// AddChild attaches child as the last child of it and recomputes the level
// of the attached subtree.
//
// Attaching an item to itself or to one of its own descendants, or a subtree
// that reaches the same item twice, fails with [ErrInheritanceCycle].
func (it *Item) AddChild(child *Item) error {
	for p := it; p != nil; p = p.parent {
		if p == child {
			return ErrInheritanceCycle.With(
				slog.String("parent", it.ID()),
				slog.String("child", child.ID()),
			)
		}
	}

	if child.parent != nil && child.parent != it {
		child.parent.detach(child)
	}

	child.parent = it
	it.children = append(it.children, child)

	if err := relevel(child, it.level+1); err != nil {
		it.detach(child)
		child.parent = nil

		return err
	}

	return nil
}

// detach removes child from the children of it.
func (it *Item) detach(child *Item) {
	it.children = slices.DeleteFunc(it.children, func(c *Item) bool {
		return c == child
	})
}

// relevel assigns level to root and increasing levels below it, visiting
// each item at most once.
func relevel(root *Item, level int) error {
	type frame struct {
		item  *Item
		level int
	}

	seen := make(map[*Item]struct{})
	stack := []frame{{root, level}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := seen[f.item]; ok {
			return ErrInheritanceCycle.With(
				slog.String("item", f.item.ID()),
				slog.String("reason", "item reachable twice"),
			)
		}

		seen[f.item] = struct{}{}
		f.item.level = f.level

		for _, c := range f.item.children {
			stack = append(stack, frame{c, f.level + 1})
		}
	}

	return nil
}

// Clone returns a detached deep copy of it with fresh identities.
// Declared base names are copied; resolved links are not.
func (it *Item) Clone() *Item {
	c := &Item{
		kind:  it.kind,
		name:  it.name,
		named: it.named,
		block: it.block,
		level: RootLevel + 1,
		pos:   it.pos,
		args:  slices.Clone(it.args),
		bases: slices.Clone(it.bases),
	}

	if len(it.children) > 0 {
		c.children = make([]*Item, len(it.children))
		for i, child := range it.children {
			cc := child.Clone()
			cc.parent = c
			c.children[i] = cc
		}
	}

	// Levels of a fresh tree are always consistent.
	_ = relevel(c, c.level)

	return c
}

// Path returns the block ids from the top-level ancestor down to it,
// joined by '.'.
func (it *Item) Path() string {
	var ids []string

	for p := it; p != nil && !p.IsRoot(); p = p.parent {
		ids = append(ids, p.ID())
	}

	slices.Reverse(ids)

	return strings.Join(ids, ".")
}

// String returns the native source form of it and its subtree.
func (it *Item) String() string {
	var sb strings.Builder

	_ = it.Format(context.Background(), &sb, DefaultIndent)

	return sb.String()
}
