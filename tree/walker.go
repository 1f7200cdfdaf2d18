package tree

import (
	"errors"
	"fmt"

	"github.com/npillmayer/reactree/nodepath"
	"github.com/npillmayer/reactree/slab"
)

// ErrEmptyTree is returned by a Walker started at a path without a node.
var ErrEmptyTree = errors.New("cannot walk empty tree")

// Walker holds information for operating on trees: finding nodes and
// doing work on them. Clients usually create a Walker for a (sub-)tree
// to search for a selection of nodes matching certain criteria, and
// then perform some operation on this selection.
//
//    w := tree.NewWalker(t, nodepath.Root())
//    nodes, err := w.DescendentsWith(isText).TopDown(reload).Result()
//
// Walkers operate synchronously. Actions may change values, but must not change the
// structure of the tree while the walker is in use.
type Walker[T any] struct {
	tree      *Tree[T]
	selection []selected
	lastError error
}

type selected struct {
	node *Node
	path nodepath.Path
}

// NewWalker creates a Walker for the (sub-)tree at path initial. Starting at the root
// path selects a virtual root node, whose children are the top-level nodes.
func NewWalker[T any](t *Tree[T], initial nodepath.Path) *Walker[T] {
	w := &Walker[T]{tree: t}
	if initial.Empty() {
		w.selection = []selected{{node: &Node{key: slab.NilKey, children: t.layout}, path: nodepath.Root()}}
		return w
	}
	node := t.layout.at(initial)
	if node == nil {
		w.lastError = fmt.Errorf("%w: %s", ErrEmptyTree, initial)
		return w
	}
	w.selection = []selected{{node: node, path: initial.Clone()}}
	return w
}

// Predicate is a function type to match against nodes of a tree.
// Is is used as an argument for various Walker functions to
// collect a selection of nodes.
type Predicate[T any] func(node *Node, value *T) (bool, error)

// Whatever is a predicate to match anything (see type Predicate).
func Whatever[T any]() Predicate[T] {
	return func(*Node, *T) (bool, error) {
		return true, nil
	}
}

// NodeIsLeaf is a predicate to match leafs of a tree.
func NodeIsLeaf[T any]() Predicate[T] {
	return func(node *Node, _ *T) (bool, error) {
		return node.ChildCount() == 0, nil
	}
}

// Action is a function type to operate on tree nodes.
type Action[T any] func(node *Node, value *T, path nodepath.Path) error

// DescendentsWith replaces the selection with all descendents of selected nodes matching
// a predicate, in depth-first order. The search does not include the start nodes.
// If the predicate returns an error for a node, the branch below it is not searched.
func (w *Walker[T]) DescendentsWith(predicate Predicate[T]) *Walker[T] {
	var result []selected
	var descend func(s selected)
	descend = func(s selected) {
		for i, ch := range s.node.children {
			path := nodepath.Child(s.path, i)
			value := w.tree.GetMut(ch.key)
			if value == nil {
				continue
			}
			match, err := predicate(ch, value)
			if err != nil {
				w.lastError = err
				continue
			}
			if match {
				result = append(result, selected{node: ch, path: path})
			}
			descend(selected{node: ch, path: path})
		}
	}
	for _, s := range w.selection {
		descend(s)
	}
	w.selection = result
	return w
}

// AllDescendents selects all descendents.
// This is just a wrapper around `w.DescendentsWith(Whatever)`.
func (w *Walker[T]) AllDescendents() *Walker[T] {
	return w.DescendentsWith(Whatever[T]())
}

// Filter keeps the selected nodes a predicate accepts.
func (w *Walker[T]) Filter(predicate Predicate[T]) *Walker[T] {
	result := w.selection[:0]
	for _, s := range w.selection {
		value := w.tree.GetMut(s.node.key)
		if value == nil {
			continue
		}
		match, err := predicate(s.node, value)
		if err != nil {
			w.lastError = err
		} else if match {
			result = append(result, s)
		}
	}
	w.selection = result
	return w
}

// TopDown traverses the selected (sub-)trees, starting at (and including) the
// selected nodes. The traversal guarantees that parents are always processed before
// their children, and that siblings are processed in child order.
//
// If the action function returns an error for a node, descending the branch below
// this node is aborted. The error is recorded and the walker continues with the
// next sibling. The selection is not changed.
func (w *Walker[T]) TopDown(action Action[T]) *Walker[T] {
	var walk func(node *Node, path nodepath.Path)
	walk = func(node *Node, path nodepath.Path) {
		if !node.key.IsNil() {
			value := w.tree.GetMut(node.key)
			if value == nil {
				return
			}
			if err := action(node, value, path); err != nil {
				tracer().Debugf("action for node %s returned error: %v", node, err)
				w.lastError = err
				return
			}
		}
		for i, ch := range node.children {
			walk(ch, nodepath.Child(path, i))
		}
	}
	for _, s := range w.selection {
		walk(s.node, s.path)
	}
	return w
}

// Result returns the selected nodes and the last error that occurred.
func (w *Walker[T]) Result() ([]*Node, error) {
	nodes := make([]*Node, 0, len(w.selection))
	for _, s := range w.selection {
		if !s.node.key.IsNil() {
			nodes = append(nodes, s.node)
		}
	}
	return nodes, w.lastError
}
