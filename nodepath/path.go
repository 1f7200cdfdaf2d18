/*
Package nodepath implements structural addresses of nodes in a tree.

A path is the ordered list of child indices from the root of a tree down to a node,
e.g. [2 0 1]. The empty path denotes the (invisible) root. Paths are not stable across
structural edits: inserting a sibling before index 2 shifts every path running through
indices ≥ 2 at that level. Package nodepath is stateless arithmetic on index sequences;
keeping paths up to date is the business of package tree.

A path of length N identifies a unique node at depth N, and truncating it at depth K
yields the path of its ancestor at depth K.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package nodepath

import (
	"fmt"
	"strconv"
	"strings"
)

// Path is a list of child indices, denoting the position of a node in a tree.
type Path []uint16

// Root returns the path of the root, i.e. the empty path.
func Root() Path {
	return Path{}
}

// New creates a path from a list of indices.
func New(indices ...int) Path {
	p := make(Path, len(indices))
	for i, inx := range indices {
		p[i] = uint16(inx)
	}
	return p
}

// Child returns a new path for child number index of parent.
// parent is not modified.
func Child(parent Path, index int) Path {
	p := make(Path, len(parent), len(parent)+1)
	copy(p, parent)
	return append(p, uint16(index))
}

// SplitParent splits a path into the path of the parent and the index of the node
// within its parent. It fails for the root path.
func (path Path) SplitParent() (Path, int, bool) {
	if len(path) == 0 {
		return nil, 0, false
	}
	return path[:len(path)-1], int(path[len(path)-1]), true
}

// Parent returns the path of the parent. It fails for the root path.
func (path Path) Parent() (Path, bool) {
	parent, _, ok := path.SplitParent()
	return parent, ok
}

// Last returns the trailing index of a path, or -1 for the root path.
func (path Path) Last() int {
	if len(path) == 0 {
		return -1
	}
	return int(path[len(path)-1])
}

// Depth is the length of the path.
func (path Path) Depth() int {
	return len(path)
}

// Empty is true for the root path.
func (path Path) Empty() bool {
	return len(path) == 0
}

// Ancestor truncates a path at depth k.
func (path Path) Ancestor(k int) Path {
	if k >= len(path) {
		return path
	}
	return path[:k]
}

// Reparent rewrites the ancestor prefix of path in place, e.g. after the ancestor at
// depth len(prefix) has been relocated.
func (path Path) Reparent(prefix Path) {
	if len(prefix) > len(path) {
		panic(fmt.Sprintf("reactree.nodepath: cannot reparent %s onto longer prefix %s", path, prefix))
	}
	copy(path[:len(prefix)], prefix)
}

// Shift adds delta to the trailing index of path, in place.
func (path Path) Shift(delta int) {
	if len(path) == 0 {
		panic("reactree.nodepath: cannot shift the root path")
	}
	last := int(path[len(path)-1]) + delta
	if last < 0 {
		panic(fmt.Sprintf("reactree.nodepath: shifting %s by %d underflows", path, delta))
	}
	path[len(path)-1] = uint16(last)
}

// HasPrefix is true if prefix is the path of path itself or of one of its ancestors.
func (path Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Equal compares two paths.
func (path Path) Equal(other Path) bool {
	return len(path) == len(other) && path.HasPrefix(other)
}

// Clone returns a copy of path which does not share memory with it.
func (path Path) Clone() Path {
	p := make(Path, len(path))
	copy(p, path)
	return p
}

func (path Path) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, inx := range path {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(int(inx)))
	}
	b.WriteByte(']')
	return b.String()
}
