/*
Package state implements reactive application state.

All values live in a Store. Widgets reading a value during evaluation subscribe to it,
identifying themselves by their key in the widget tree together with the index of the
binding which read the value. Mutating a value does not touch any widget. Instead,
the mutation is recorded as a change, tagged with a snapshot of the value's current
subscribers, and queued until the next update cycle drains the queue.

	store := state.NewStore()
	list := state.NewList(store, 1, 2, 3)
	list.Insert(0, 99)          // queues Inserted(0) for every subscriber of list
	records := store.Drain()

Values nobody is subscribed to never grow the queue.

Besides subscribers, a value may carry a one-shot watcher. Watchers are meant for code
driving an application from the outside (e.g., tests waiting for a value to change)
and are removed after they have been triggered once.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package state

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'reactree.state'.
func tracer() tracing.Trace {
	return tracing.Select("reactree.state")
}

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("reactree.state: "+msg, msgargs...)
		panic(msg)
	}
}
