package tree

import (
	"fmt"
	"strings"

	"github.com/npillmayer/reactree/nodepath"
	"github.com/npillmayer/reactree/slab"
)

// VisitResult tells ApplyVisitor how to continue after a node has been visited.
type VisitResult int8

const (
	Continue     VisitResult = iota // descend into the children, then continue with siblings
	SkipChildren                    // do not descend, continue with siblings
	Stop                            // stop the traversal
)

// Visitor visits the nodes of a tree depth first, in child order.
// Push is called before descending into the children of a node, Pop after the last
// child has been visited.
type Visitor[T any] interface {
	Visit(value *T, path nodepath.Path, key slab.Key) VisitResult
	Push()
	Pop()
}

// ApplyVisitor applies a visitor to all nodes of the tree, depth first.
// The visitor may change values, but must not change the structure of the tree.
func (t *Tree[T]) ApplyVisitor(v Visitor[T]) {
	t.visit(t.layout, v)
}

func (t *Tree[T]) visit(ns nodes, v Visitor[T]) bool {
	for _, node := range ns {
		e := t.values.GetMut(node.key)
		if e == nil {
			continue // checked out
		}
		switch v.Visit(&e.value, e.path, node.key) {
		case Stop:
			return false
		case SkipChildren:
			continue
		}
		if len(node.children) == 0 {
			continue
		}
		v.Push()
		ok := t.visit(node.children, v)
		v.Pop()
		if !ok {
			return false
		}
	}
	return true
}

// PathFinder walks down a path from the root. Parent is called for every ancestor of
// the target node, with the remaining sub-path below it; Apply is called for the target
// node, which is checked out of the tree during Apply.
type PathFinder[T any] interface {
	Parent(value *T, subPath nodepath.Path)
	Apply(value *T, path nodepath.Path, t *Tree[T])
}

// ApplyPathFinder applies a path finder along path. It returns an error wrapping
// ErrNoSuchPath if path does not lead to a node.
func (t *Tree[T]) ApplyPathFinder(path nodepath.Path, finder PathFinder[T]) error {
	if t.layout.at(path) == nil {
		return fmt.Errorf("%w: %s", ErrNoSuchPath, path)
	}
	siblings := t.layout
	for depth, i := range path {
		node := siblings[i]
		if depth == len(path)-1 {
			if !t.WithValueMut(node.key, func(p nodepath.Path, value *T, t *Tree[T]) {
				finder.Apply(value, p, t)
			}) {
				return fmt.Errorf("%w: %s has no value", ErrNoSuchPath, path)
			}
			break
		}
		parent := t.values.GetMut(node.key)
		assertThat(parent != nil, "ancestor %s of %s has no value", node.key, path)
		finder.Parent(&parent.value, path[depth+1:])
		siblings = node.children
	}
	return nil
}

// --- Debug output ----------------------------------------------------------

// debugPrinter prints one node per line, indented by depth.
type debugPrinter[T any] struct {
	b     strings.Builder
	level int
}

func (p *debugPrinter[T]) Visit(value *T, path nodepath.Path, key slab.Key) VisitResult {
	fmt.Fprintf(&p.b, "%s%s %s: %v\n", strings.Repeat("    ", p.level), path, key, *value)
	return Continue
}

func (p *debugPrinter[T]) Push() { p.level++ }
func (p *debugPrinter[T]) Pop()  { p.level-- }

// DebugString returns an indented dump of paths, keys and values of the tree.
func (t *Tree[T]) DebugString() string {
	p := &debugPrinter[T]{}
	t.ApplyVisitor(p)
	return p.b.String()
}
