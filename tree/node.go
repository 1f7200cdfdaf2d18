package tree

import (
	"fmt"

	"github.com/npillmayer/reactree/nodepath"
	"github.com/npillmayer/reactree/slab"
)

// Node is an element of the layout of a tree. It carries the key of its value and an
// ordered list of children; the value itself lives in the tree's value slab.
type Node struct {
	key      slab.Key
	children nodes
}

func newNode(key slab.Key) *Node {
	return &Node{key: key}
}

// Key returns the key of the value associated with node.
func (node *Node) Key() slab.Key {
	return node.key
}

// ChildCount returns the number of children-nodes for a node.
func (node *Node) ChildCount() int {
	return len(node.children)
}

// Child returns child number n of a node.
func (node *Node) Child(n int) (*Node, bool) {
	if n < 0 || n >= len(node.children) {
		return nil, false
	}
	return node.children[n], true
}

// Children returns the children of a node. Clients must not modify the slice.
func (node *Node) Children() []*Node {
	return node.children
}

func (node *Node) String() string {
	return fmt.Sprintf("(Node %s #ch=%d)", node.key, len(node.children))
}

// reparent re-writes the path prefix of node and its whole subtree to dest.
func reparent[T any](node *Node, dest nodepath.Path, values *slab.GenSlab[entry[T]]) {
	e := values.GetMut(node.key)
	assertThat(e != nil, "layout node %s has no value", node.key)
	e.path.Reparent(dest)
	for _, ch := range node.children {
		reparent(ch, dest, values)
	}
}

// --- Lists of sibling nodes ------------------------------------------------

type nodes []*Node

// at finds the node at path. It returns nil for the empty path.
func (ns nodes) at(path nodepath.Path) *Node {
	siblings := ns
	for depth, i := range path {
		if int(i) >= len(siblings) {
			return nil
		}
		if depth == len(path)-1 {
			return siblings[i]
		}
		siblings = siblings[i].children
	}
	return nil
}

// childrenOf finds the list of children of the node at path. For the empty path
// this is the list of top-level nodes.
func (ns *nodes) childrenOf(path nodepath.Path) *nodes {
	if path.Empty() {
		return ns
	}
	if node := ns.at(path); node != nil {
		return &node.children
	}
	return nil
}

func (ns *nodes) insert(index int, node *Node) {
	*ns = append(*ns, nil)
	copy((*ns)[index+1:], (*ns)[index:])
	(*ns)[index] = node
}

func (ns *nodes) remove(index int) *Node {
	node := (*ns)[index]
	copy((*ns)[index:], (*ns)[index+1:])
	(*ns)[len(*ns)-1] = nil
	*ns = (*ns)[:len(*ns)-1]
	return node
}
