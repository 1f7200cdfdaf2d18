package slab

import (
	"fmt"
	"math"
)

// Gen is the generation of a slot. It is bumped on every removal of a value from the
// slot and wraps around after math.MaxUint16 removals.
type Gen uint16

func (g Gen) String() string {
	return fmt.Sprintf("G:%d", uint16(g))
}

// Key is a stable, checkable reference to a value in a GenSlab.
// Keys are comparable and may be used as map keys.
type Key struct {
	index uint32
	gen   Gen
}

// NilKey is a key which never refers to a value.
var NilKey = Key{index: math.MaxUint32}

// NewKey creates a key from an index and a generation.
func NewKey(index int, gen Gen) Key {
	assertThat(index >= 0 && index < math.MaxUint32, "key index out of range: %d", index)
	return Key{index: uint32(index), gen: gen}
}

// Index returns the slot index of k.
func (k Key) Index() int {
	return int(k.index)
}

// Generation returns the generation of k.
func (k Key) Generation() Gen {
	return k.gen
}

// IsNil is true for NilKey.
func (k Key) IsNil() bool {
	return k.index == math.MaxUint32
}

func (k Key) bump() Key {
	k.gen++
	return k
}

func (k Key) String() string {
	if k.IsNil() {
		return "<nil key>"
	}
	return fmt.Sprintf("<%d:%d>", k.index, k.gen)
}
