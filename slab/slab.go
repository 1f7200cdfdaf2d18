package slab

// Slab is a plain slab of values addressed by index. Unlike GenSlab it does not
// detect stale indices; it is used where the owner of an index is the only party
// ever holding it (e.g., watcher registrations) and as the storage of SecondaryMap.
type Slab[V any] struct {
	entries []slot[V]
	free    []int
}

type slot[V any] struct {
	value    V
	occupied bool
}

// Insert stores a value in the next free slot and returns its index.
func (s *Slab[V]) Insert(value V) int {
	if n := len(s.free); n > 0 {
		index := s.free[n-1]
		s.free = s.free[:n-1]
		s.entries[index] = slot[V]{value: value, occupied: true}
		return index
	}
	s.entries = append(s.entries, slot[V]{value: value, occupied: true})
	return len(s.entries) - 1
}

// InsertAt stores a value at a given index, growing the slab if necessary.
// An existing value at this index is overwritten.
func (s *Slab[V]) InsertAt(index int, value V) {
	assertThat(index >= 0, "negative slab index %d", index)
	for len(s.entries) <= index {
		s.free = append(s.free, len(s.entries))
		s.entries = append(s.entries, slot[V]{})
	}
	if !s.entries[index].occupied {
		s.unfree(index)
	}
	s.entries[index] = slot[V]{value: value, occupied: true}
}

func (s *Slab[V]) unfree(index int) {
	for i, f := range s.free {
		if f == index {
			s.free = append(s.free[:i], s.free[i+1:]...)
			return
		}
	}
}

// Get returns the value at index.
func (s *Slab[V]) Get(index int) (V, bool) {
	if index < 0 || index >= len(s.entries) || !s.entries[index].occupied {
		var none V
		return none, false
	}
	return s.entries[index].value, true
}

// GetMut returns a pointer to the value at index, or nil.
func (s *Slab[V]) GetMut(index int) *V {
	if index < 0 || index >= len(s.entries) || !s.entries[index].occupied {
		return nil
	}
	return &s.entries[index].value
}

// Remove removes the value at index. Removing a vacant slot panics.
func (s *Slab[V]) Remove(index int) V {
	v, ok := s.TryRemove(index)
	assertThat(ok, "removing vacant slot %d", index)
	return v
}

// TryRemove removes the value at index, if there is one.
func (s *Slab[V]) TryRemove(index int) (V, bool) {
	v, ok := s.Get(index)
	if !ok {
		return v, false
	}
	s.entries[index] = slot[V]{}
	s.free = append(s.free, index)
	return v, true
}

// Len returns the number of occupied slots.
func (s *Slab[V]) Len() int {
	return len(s.entries) - len(s.free)
}

// Each calls f for every occupied slot until f returns false.
func (s *Slab[V]) Each(f func(int, *V) bool) {
	for i := range s.entries {
		if s.entries[i].occupied && !f(i, &s.entries[i].value) {
			return
		}
	}
}

// Clear removes all values.
func (s *Slab[V]) Clear() {
	s.entries = s.entries[:0]
	s.free = s.free[:0]
}
