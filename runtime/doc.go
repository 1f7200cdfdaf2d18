/*
Package runtime drives the update cycle of a reactive widget tree.

A Runtime owns the state store, the widget tree and everything attached to it.
Applications mount blueprints once, change values of the store in response to events,
and then call Frame, which applies all pending changes to the tree:

	rt := runtime.New(runtime.WithLayout(paint))
	list := state.NewList(rt.Store(), 1, 2, 3)
	rt.Bind("list", list.Key())
	err := rt.MountYAML(template)
	...
	list.Push(4)
	report := rt.Frame()

Applying a change may produce further changes (loop indices of iterations are values
of the store, too), so Frame drains the change queue until it is empty. The number of
passes per frame is limited (see WithMaxPasses).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package runtime

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'reactree.runtime'.
func tracer() tracing.Trace {
	return tracing.Select("reactree.runtime")
}

// ErrNoFixedPoint is reported by a frame which still had changes pending after the
// maximum number of passes.
var ErrNoFixedPoint = errors.New("change queue did not settle")
