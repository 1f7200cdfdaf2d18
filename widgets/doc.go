/*
Package widgets maintains a tree of widgets evaluated from blueprints, and keeps it
in sync with application state.

Evaluating a blueprint inserts widgets into a tree.Tree. While evaluating, every
expression reading a value of the state store subscribes the widget to that value,
identifying the binding (attribute, collection or condition) which read it. Once
values change, the store queues change records, and Update applies each record to
exactly the widgets affected:

	element          reload the attribute identified by the binding
	for              insert, remove or rebuild iterations
	control flow     switch the branch, if a different one is selected now
	component        rebuild the body, if an attribute refers to a different value now

Update never re-evaluates the tree as a whole. Structural edits keep paths of the tree
consistent, and widgets which are removed are reported by the tree, so their
subscriptions may be evicted (see Context.Evict).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package widgets

import (
	"fmt"

	"github.com/npillmayer/reactree/nodepath"
	"github.com/npillmayer/reactree/slab"
	"github.com/npillmayer/reactree/state"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'reactree.widgets'.
func tracer() tracing.Trace {
	return tracing.Select("reactree.widgets")
}

// TargetMissingError is returned if a change record could not be applied because the
// tree location it targets vanished earlier in the same update cycle. It unwraps to
// an error wrapping tree.ErrNoSuchPath.
type TargetMissingError struct {
	Widget slab.Key
	Path   nodepath.Path
	Change state.Change
	Err    error
}

func (e *TargetMissingError) Error() string {
	return fmt.Sprintf("target of %s for widget %s at %s missing: %v", e.Change, e.Widget, e.Path, e.Err)
}

func (e *TargetMissingError) Unwrap() error {
	return e.Err
}

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("reactree.widgets: "+msg, msgargs...)
		panic(msg)
	}
}
