package slab

// SecondaryMap holds values associated with the keys of a GenSlab, without
// re-allocating or re-keying. It is used to attach auxiliary storage to values
// owned by another slab.
//
//     names := slab.NewGenSlab[string](0)
//     lilly := names.Insert("Lilly")
//     var food slab.SecondaryMap[string]
//     food.Insert(lilly, "apple")
//
// The generation of the key is stored alongside the value, so a stale key of the
// primary slab does not find the data attached to the slot's new occupant.
type SecondaryMap[V any] struct {
	inner Slab[secondary[V]]
}

type secondary[V any] struct {
	gen   Gen
	value V
}

// Insert associates value with key, replacing a previous association for the slot.
func (m *SecondaryMap[V]) Insert(key Key, value V) {
	assertThat(!key.IsNil(), "secondary map insert with nil key")
	m.inner.InsertAt(key.Index(), secondary[V]{gen: key.gen, value: value})
}

// Get returns the value associated with key.
func (m *SecondaryMap[V]) Get(key Key) (V, bool) {
	if s := m.inner.GetMut(key.Index()); s != nil && s.gen == key.gen {
		return s.value, true
	}
	var none V
	return none, false
}

// GetMut returns a pointer to the value associated with key, or nil.
func (m *SecondaryMap[V]) GetMut(key Key) *V {
	if s := m.inner.GetMut(key.Index()); s != nil && s.gen == key.gen {
		return &s.value
	}
	return nil
}

// Remove removes the value associated with key. It panics if there is none.
func (m *SecondaryMap[V]) Remove(key Key) V {
	v, ok := m.TryRemove(key)
	assertThat(ok, "secondary map has no value for %s", key)
	return v
}

// TryRemove removes the value associated with key, if present.
func (m *SecondaryMap[V]) TryRemove(key Key) (V, bool) {
	if s := m.inner.GetMut(key.Index()); s != nil && s.gen == key.gen {
		v := s.value
		m.inner.Remove(key.Index())
		return v, true
	}
	var none V
	return none, false
}

// Len returns the number of associations.
func (m *SecondaryMap[V]) Len() int {
	return m.inner.Len()
}

// Each calls f for every association until f returns false.
func (m *SecondaryMap[V]) Each(f func(Key, *V) bool) {
	m.inner.Each(func(i int, s *secondary[V]) bool {
		return f(NewKey(i, s.gen), &s.value)
	})
}
