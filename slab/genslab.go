package slab

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

type entryState uint8

const (
	vacant entryState = iota
	occupied
	checkedOut
)

const noFree = -1

// entry is a slot of a GenSlab. Vacant entries form a free list linked through next.
type entry[T any] struct {
	value T
	gen   Gen
	state entryState
	next  int
}

// GenSlab is a generational slab.
// Each value inserted is given a generation. If another value is later inserted at the
// same index it will carry a new generation, which prevents stale keys from
// referring to the new occupant.
//
// An empty GenSlab is ready to use.
type GenSlab[T any] struct {
	entries []entry[T]
	free    int // head of the free list, or noFree
	count   int // number of occupied or checked-out entries
	init    bool
}

// NewGenSlab creates a generational slab with capacity pre-allocated for cap values.
func NewGenSlab[T any](cap int) *GenSlab[T] {
	return &GenSlab[T]{
		entries: make([]entry[T], 0, cap),
		free:    noFree,
		init:    true,
	}
}

func (s *GenSlab[T]) lazyInit() {
	if !s.init {
		s.free = noFree
		s.init = true
	}
}

// Len returns the number of live values.
func (s *GenSlab[T]) Len() int {
	return s.count
}

// NextKey returns the key the next call to Insert will produce. There is no guarantee
// the key stays the same if another Insert happens in between.
func (s *GenSlab[T]) NextKey() Key {
	s.lazyInit()
	if s.free != noFree {
		return NewKey(s.free, s.entries[s.free].gen)
	}
	return NewKey(len(s.entries), 0)
}

// Insert stores a value and returns its key. It re-uses the head of the free list if
// there is one, otherwise the storage grows.
func (s *GenSlab[T]) Insert(value T) Key {
	s.lazyInit()
	s.count++
	if s.free != noFree {
		index := s.free
		e := &s.entries[index]
		assertThat(e.state == vacant, "free list points to non-vacant entry %d", index)
		s.free = e.next
		e.value = value
		e.state = occupied
		e.next = noFree
		return NewKey(index, e.gen)
	}
	s.entries = append(s.entries, entry[T]{value: value, state: occupied, next: noFree})
	return NewKey(len(s.entries)-1, 0)
}

func (s *GenSlab[T]) lookup(k Key) *entry[T] {
	if k.IsNil() || k.Index() >= len(s.entries) {
		return nil
	}
	e := &s.entries[k.Index()]
	if e.state != occupied || e.gen != k.gen {
		return nil
	}
	return e
}

// Get returns the value for a key. It fails if the generation recorded in k does not
// match the slot's current generation, or if the value is currently checked out.
func (s *GenSlab[T]) Get(k Key) (T, bool) {
	if e := s.lookup(k); e != nil {
		return e.value, true
	}
	var none T
	return none, false
}

// GetMut returns a pointer to the value for a key, or nil if the key is stale.
// The pointer is valid until the next call to Insert.
func (s *GenSlab[T]) GetMut(k Key) *T {
	if e := s.lookup(k); e != nil {
		return &e.value
	}
	return nil
}

// Contains is true if k refers to a live value.
func (s *GenSlab[T]) Contains(k Key) bool {
	return s.lookup(k) != nil
}

// IsVacant is true if the slot k points to holds no value at all (neither the one k
// refers to nor any other one).
func (s *GenSlab[T]) IsVacant(k Key) bool {
	if k.IsNil() || k.Index() >= len(s.entries) {
		return true
	}
	return s.entries[k.Index()].state == vacant
}

// Remove removes the value for k, bumps the slot's generation and pushes the slot
// onto the free list.
//
// Removing with a stale key, or removing the same key twice, is a programming error
// and panics.
func (s *GenSlab[T]) Remove(k Key) T {
	v, ok := s.TryRemove(k)
	assertThat(ok, "remove with stale or consumed key %s", k)
	return v
}

// TryRemove removes the value for k, if k is still valid.
func (s *GenSlab[T]) TryRemove(k Key) (T, bool) {
	e := s.lookup(k)
	if e == nil {
		tracer().Debugf("try-remove of stale key %s", k)
		var none T
		return none, false
	}
	v := e.value
	var zero T
	e.value = zero
	e.state = vacant
	e.gen = k.bump().gen
	e.next = s.free
	s.free = k.Index()
	s.count--
	return v, true
}

// Replace exchanges the value for k with a new one. The generation is bumped, so k
// becomes stale and the returned key has to be used from now on.
func (s *GenSlab[T]) Replace(k Key, value T) (Key, T) {
	e := s.lookup(k)
	assertThat(e != nil, "replace with stale key %s", k)
	old := e.value
	e.value = value
	e.gen = k.bump().gen
	return NewKey(k.Index(), e.gen), old
}

// --- Checkout --------------------------------------------------------------

// Ticket holds a value which has been checked out of a GenSlab. While a value is
// checked out, lookups by its key fail. Every ticket has to be restored.
type Ticket[T any] struct {
	Key   Key
	Value T
}

// Checkout moves the value for k out of the slab. It panics if k is stale or the
// value is already checked out.
func (s *GenSlab[T]) Checkout(k Key) Ticket[T] {
	assertThat(!k.IsNil() && k.Index() < len(s.entries), "checkout of unknown key %s", k)
	e := &s.entries[k.Index()]
	switch {
	case e.state == checkedOut:
		panic(fmt.Sprintf("reactree.slab: value %s already checked out", k))
	case e.state == vacant:
		panic(fmt.Sprintf("reactree.slab: checkout of removed value %s", k))
	case e.gen != k.gen:
		panic(fmt.Sprintf("reactree.slab: invalid generation for checkout, current: %s | key: %s", e.gen, k))
	}
	t := Ticket[T]{Key: k, Value: e.value}
	var zero T
	e.value = zero
	e.state = checkedOut
	return t
}

// Restore puts a checked-out value back into its slot.
func (s *GenSlab[T]) Restore(t Ticket[T]) {
	assertThat(!t.Key.IsNil() && t.Key.Index() < len(s.entries), "restore of unknown key %s", t.Key)
	e := &s.entries[t.Key.Index()]
	assertThat(e.state == checkedOut && e.gen == t.Key.gen, "failed to restore checked out value %s", t.Key)
	e.value = t.Value
	e.state = occupied
}

// --- Iteration -------------------------------------------------------------

// Each calls f for every live value, in slot order, until f returns false.
// Checked-out values are not visited.
func (s *GenSlab[T]) Each(f func(Key, *T) bool) {
	for i := range s.entries {
		e := &s.entries[i]
		if e.state != occupied {
			continue
		}
		if !f(NewKey(i, e.gen), &e.value) {
			return
		}
	}
}

// Keys returns the keys of all live values, in slot order.
func (s *GenSlab[T]) Keys() []Key {
	keys := make([]Key, 0, s.count)
	s.Each(func(k Key, _ *T) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// DumpState returns a textual dump of the slab's slots, including the free list.
func (s *GenSlab[T]) DumpState() string {
	var b strings.Builder
	fmt.Fprintf(&b, "slab: %s slots, %s live\n", humanize.Comma(int64(len(s.entries))),
		humanize.Comma(int64(s.count)))
	for i, e := range s.entries {
		switch e.state {
		case vacant:
			if e.next == noFree {
				fmt.Fprintf(&b, "%d: vacant (%s) no next slot\n", i, e.gen)
			} else {
				fmt.Fprintf(&b, "%d: vacant (%s) next slot %d\n", i, e.gen, e.next)
			}
		case occupied:
			fmt.Fprintf(&b, "%d: (%s) | %v\n", i, e.gen, e.value)
		case checkedOut:
			fmt.Fprintf(&b, "[x] %s\n", NewKey(i, e.gen))
		}
	}
	b.WriteString("---- next key ----\n")
	fmt.Fprintf(&b, "%s\n", s.NextKey())
	return b.String()
}
