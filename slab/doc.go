/*
Package slab implements generation-checked slot storage.

A slab owns its values. Clients never hold a value directly, but only a Key, which is a
pair of a slot index and the generation of that slot at the time of insertion. Every
removal bumps the generation of the slot and pushes the slot onto a free list, so a later
insertion may re-use the slot. Dereferencing a key whose generation does not match the
slot's current generation is a lookup failure, not undefined behaviour:

    slab := slab.NewGenSlab[string](0)
    k := slab.Insert("Lilly")
    slab.Remove(k)
    _, ok := slab.Get(k)       // ok == false, even after the slot has been re-used

Package slab offers three flavours:

   GenSlab[T]         generational slab, the owner of values addressed by Key
   Slab[V]            plain index slab without generations (free list only)
   SecondaryMap[V]    auxiliary data attached to the keys of a GenSlab

Removing a value twice, or removing with a stale key, is a programming error and panics.
Clients which are unsure about the state of a key use TryRemove.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package slab

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'reactree.slab'.
func tracer() tracing.Trace {
	return tracing.Select("reactree.slab")
}

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("reactree.slab: "+msg, msgargs...)
		panic(msg)
	}
}
