package tree

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"

	"github.com/npillmayer/reactree/nodepath"
	"github.com/npillmayer/reactree/slab"
)

// entry is what the value slab of a tree stores: a value together with the current
// path of its node.
type entry[T any] struct {
	path  nodepath.Path
	value T
}

// Tree is a tree where all values are stored in a single generational slab, and the
// layout is made up of nodes holding keys into this slab.
type Tree[T any] struct {
	layout       nodes
	values       *slab.GenSlab[entry[T]]
	removed      []slab.Key
	transactions int
}

type config struct {
	capacity int
}

// Option is a type to help initializing trees at creation time.
type Option func(config) config

// WithCapacity is an option to pre-allocate storage for n values.
// It does not affect the storage of the layout.
//
//     t := tree.New[string](tree.WithCapacity(256))
//
func WithCapacity(n int) Option {
	return func(c config) config {
		c.capacity = max(0, n)
		return c
	}
}

// New creates an empty tree.
func New[T any](opts ...Option) *Tree[T] {
	var c config
	for _, option := range opts {
		c = option(c)
	}
	return &Tree[T]{values: slab.NewGenSlab[entry[T]](c.capacity)}
}

// Len returns the number of values in the tree.
func (t *Tree[T]) Len() int {
	return t.values.Len()
}

// Roots returns the top-level nodes of the tree. Clients must not modify the slice.
func (t *Tree[T]) Roots() []*Node {
	return t.layout
}

// Transactions returns the number of structural transactions applied to the tree so far.
// Every committed insert, every removal and every truncation counts as one.
func (t *Tree[T]) Transactions() int {
	return t.transactions
}

// DrainRemoved returns the keys of all values removed since the last call.
func (t *Tree[T]) DrainRemoved() []slab.Key {
	removed := t.removed
	t.removed = nil
	return removed
}

// Path returns the current path of the node for key. Unlike a key, which never
// changes for a given value, the path changes whenever a sibling in front of the node
// (or of one of its ancestors) is inserted or removed.
func (t *Tree[T]) Path(key slab.Key) (nodepath.Path, bool) {
	e := t.values.GetMut(key)
	if e == nil {
		return nil, false
	}
	return e.path.Clone(), true
}

// ID finds the key of the node at path.
func (t *Tree[T]) ID(path nodepath.Path) (slab.Key, bool) {
	if node := t.layout.at(path); node != nil {
		return node.key, true
	}
	return slab.NilKey, false
}

// Node finds the layout node at path.
func (t *Tree[T]) Node(path nodepath.Path) (*Node, bool) {
	node := t.layout.at(path)
	return node, node != nil
}

// Get returns the value for key. It fails if key is stale or the value is checked out.
func (t *Tree[T]) Get(key slab.Key) (T, bool) {
	if e := t.values.GetMut(key); e != nil {
		return e.value, true
	}
	var none T
	return none, false
}

// GetMut returns a pointer to the value for key, or nil. The pointer becomes invalid
// with the next insertion into the tree; use WithValueMut for changes which
// involve structural edits.
func (t *Tree[T]) GetMut(key slab.Key) *T {
	if e := t.values.GetMut(key); e != nil {
		return &e.value
	}
	return nil
}

// GetByPath returns the value of the node at path.
func (t *Tree[T]) GetByPath(path nodepath.Path) (T, bool) {
	if key, ok := t.ID(path); ok {
		return t.Get(key)
	}
	var none T
	return none, false
}

// IsVacant is true if the slot key refers to holds no value at all.
func (t *Tree[T]) IsVacant(key slab.Key) bool {
	return t.values.IsVacant(key)
}

// WithValueMut checks out the value for key and calls f with it, while f still has
// access to the rest of the tree. During f the value is invisible to lookups.
// It returns false if key is stale.
//
// WithValueMut panics if the value is already checked out.
func (t *Tree[T]) WithValueMut(key slab.Key, f func(path nodepath.Path, value *T, t *Tree[T])) bool {
	if !t.values.Contains(key) {
		return false
	}
	ticket := t.values.Checkout(key)
	f(ticket.Value.path.Clone(), &ticket.Value.value, t)
	t.values.Restore(ticket)
	return true
}

// Children returns the child nodes of the node at path. For the root path these are
// the top-level nodes.
func (t *Tree[T]) Children(path nodepath.Path) ([]*Node, error) {
	children := t.layout.childrenOf(path)
	if children == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchPath, path)
	}
	return *children, nil
}

// ChildrenAfter returns the siblings following the node at path.
func (t *Tree[T]) ChildrenAfter(path nodepath.Path) ([]*Node, error) {
	parent, index, ok := path.SplitParent()
	if !ok {
		return nil, fmt.Errorf("%w: root has no siblings", ErrNoSuchPath)
	}
	siblings := t.layout.childrenOf(parent)
	if siblings == nil || index >= len(*siblings) {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchPath, path)
	}
	return (*siblings)[index+1:], nil
}

// --- Transactions ----------------------------------------------------------

// InsertTransaction is an insertion into a tree which has not yet been committed.
// Nothing is written to the tree before one of the commit operations is called.
type InsertTransaction[T any] struct {
	tree   *Tree[T]
	key    slab.Key
	source nodepath.Path
}

// Insert begins an insert transaction at path source. Depending on how the transaction
// is committed, source is either the path of the parent node (CommitChild) or the
// path the new node will occupy (CommitAt).
//
//     t := tree.New[int]()
//     key, err := t.Insert(nodepath.Root()).CommitChild(1)
//
func (t *Tree[T]) Insert(source nodepath.Path) *InsertTransaction[T] {
	return &InsertTransaction[T]{
		tree:   t,
		key:    t.values.NextKey(),
		source: source.Clone(),
	}
}

// Key returns the key the value will have once the transaction is committed.
func (tx *InsertTransaction[T]) Key() slab.Key {
	return tx.key
}

// CommitChild appends value as the last child of the node at the source path.
// No existing path is disturbed.
func (tx *InsertTransaction[T]) CommitChild(value T) (slab.Key, error) {
	t := tx.tree
	siblings := t.layout.childrenOf(tx.source)
	if siblings == nil {
		tracer().Debugf("commit child: parent %s does not exist", tx.source)
		return slab.NilKey, fmt.Errorf("%w: %s", ErrNoSuchPath, tx.source)
	}
	path := nodepath.Child(tx.source, len(*siblings))
	key := t.values.Insert(entry[T]{path: path, value: value})
	assertThat(key == tx.key, "transaction key %s differs from committed key %s", tx.key, key)
	*siblings = append(*siblings, newNode(key))
	t.transactions++
	tracer().Debugf("committed child %s at %s", key, path)
	return key, nil
}

// CommitAt inserts value at the source path. All siblings at an index greater or equal
// to the target index have their trailing path index incremented, and the subtrees
// of these siblings have their path prefix re-written accordingly.
func (tx *InsertTransaction[T]) CommitAt(value T) (slab.Key, error) {
	t := tx.tree
	parent, index, ok := tx.source.SplitParent()
	if !ok {
		return slab.NilKey, fmt.Errorf("%w: cannot insert at root", ErrNoSuchPath)
	}
	siblings := t.layout.childrenOf(parent)
	if siblings == nil || index > len(*siblings) {
		tracer().Debugf("commit at: target %s does not exist", tx.source)
		return slab.NilKey, fmt.Errorf("%w: %s", ErrNoSuchPath, tx.source)
	}
	key := t.values.Insert(entry[T]{path: tx.source.Clone(), value: value})
	assertThat(key == tx.key, "transaction key %s differs from committed key %s", tx.key, key)
	siblings.insert(index, newNode(key))
	for _, sibling := range (*siblings)[index+1:] {
		t.shift(sibling, +1)
	}
	t.transactions++
	tracer().Debugf("committed %s at %s", key, tx.source)
	return key, nil
}

// shift moves a node by delta positions within its list of siblings and re-writes
// the paths of its subtree.
func (t *Tree[T]) shift(node *Node, delta int) {
	e := t.values.GetMut(node.key)
	assertThat(e != nil, "layout node %s has no value", node.key)
	e.path.Shift(delta)
	dest := e.path.Clone()
	for _, ch := range node.children {
		reparent(ch, dest, t.values)
	}
}

// RelativeRemove removes the node at path together with its subtree. All siblings after
// it have their trailing path index decremented and their subtrees re-written.
func (t *Tree[T]) RelativeRemove(path nodepath.Path) error {
	parent, index, ok := path.SplitParent()
	if !ok {
		return fmt.Errorf("%w: cannot remove root", ErrNoSuchPath)
	}
	siblings := t.layout.childrenOf(parent)
	if siblings == nil || index >= len(*siblings) {
		tracer().Debugf("remove: target %s does not exist", path)
		return fmt.Errorf("%w: %s", ErrNoSuchPath, path)
	}
	node := siblings.remove(index)
	for _, sibling := range (*siblings)[index:] {
		t.shift(sibling, -1)
	}
	t.removeValue(node.key)
	t.clear(&node.children)
	t.transactions++
	tracer().Debugf("removed %s from %s", node.key, path)
	return nil
}

// TruncateChildren removes every child of the node at path, including all their
// values. Truncating the root path empties the tree.
func (t *Tree[T]) TruncateChildren(path nodepath.Path) error {
	children := t.layout.childrenOf(path)
	if children == nil {
		return fmt.Errorf("%w: %s", ErrNoSuchPath, path)
	}
	t.clear(children)
	t.transactions++
	tracer().Debugf("truncated children of %s", path)
	return nil
}

func (t *Tree[T]) clear(ns *nodes) {
	for _, node := range *ns {
		t.removeValue(node.key)
		t.clear(&node.children)
	}
	*ns = nil
}

func (t *Tree[T]) removeValue(key slab.Key) {
	if _, ok := t.values.TryRemove(key); !ok {
		// a checked out value is owned by its ticket
		tracer().Errorf("value for removed node %s is not present", key)
	}
	t.removed = append(t.removed, key)
}

// --- Consistency -----------------------------------------------------------

// CheckConsistency walks the layout of the tree and compares the path of every node
// with the path stored alongside its value. It also checks that every value in the
// tree is reachable from the root.
//
// A tree returning an error (wrapping ErrInconsistent) is corrupt.
func (t *Tree[T]) CheckConsistency() error {
	count := 0
	var check func(ns nodes, parent nodepath.Path) error
	check = func(ns nodes, parent nodepath.Path) error {
		for i, node := range ns {
			path := nodepath.Child(parent, i)
			e := t.values.GetMut(node.key)
			if e == nil {
				if t.values.IsVacant(node.key) {
					return fmt.Errorf("%w: node %s at %s has no value", ErrInconsistent, node.key, path)
				}
				// checked out
			} else if !e.path.Equal(path) {
				return fmt.Errorf("%w: node %s is at %s, recorded path is %s", ErrInconsistent,
					node.key, path, e.path)
			}
			count++
			if err := check(node.children, path); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check(t.layout, nodepath.Root()); err != nil {
		return err
	}
	if count != t.values.Len() {
		return fmt.Errorf("%w: %d nodes reachable, %d values stored", ErrInconsistent, count, t.values.Len())
	}
	return nil
}
