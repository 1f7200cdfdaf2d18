/*
Package tree implements a tree of values where every node is reachable both by a stable
key and by its path.

All values are stored in a single generational slab, together with the path of the node
they belong to. The structure of the tree is kept separately, as a hierarchy of
layout nodes which only hold keys. Structural operations therefore re-order keys and
never move values.

Keys are stable across edits, paths are not: inserting a node in front of existing
siblings shifts the trailing index of every sibling after it and re-writes the path
prefix of each of their subtrees. After every transaction, for every node, the path
stored with its value is identical to the path found by walking the layout from the root.
Transactions check their target before touching anything, so they either apply
completely or return an error (wrapping ErrNoSuchPath) with the tree left unchanged.

Trees are not safe for concurrent use. They are owned by a single update cycle.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package tree

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'reactree.tree'.
func tracer() tracing.Trace {
	return tracing.Select("reactree.tree")
}

// ErrNoSuchPath is returned by transactions whose target does not exist (any more).
var ErrNoSuchPath = errors.New("no node at path")

// ErrInconsistent is returned by CheckConsistency if paths and keys of a tree disagree.
var ErrInconsistent = errors.New("tree paths and keys disagree")

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("reactree.tree: "+msg, msgargs...)
		panic(msg)
	}
}
