package state

import (
	"github.com/npillmayer/reactree/slab"
)

// Map is a handle for a map value in a store. A map has named fields, each of which
// is a value in the store owned by the map. Fields keep their insertion order.
type Map struct {
	store *Store
	key   slab.Key
}

// NewMap stores a new, empty map.
func NewMap(s *Store) Map {
	return Map{store: s, key: s.insert(cell{kind: MapKind})}
}

// MapAt creates a handle for an existing map value.
func MapAt(s *Store, key slab.Key) Map {
	return Map{store: s, key: key}
}

// Key returns the key of the map in its store.
func (m Map) Key() slab.Key {
	return m.key
}

// Get returns the key of a field.
func (m Map) Get(name string) (slab.Key, bool) {
	return m.store.Field(m.key, name)
}

// Names returns the names of all fields.
func (m Map) Names() []string {
	return m.store.FieldNames(m.key)
}

// Insert sets field name to value, taking ownership of value. A value the field held
// before is dropped. Subscribers of the map are notified with Changed.
func (m Map) Insert(name string, value slab.Key) {
	c := m.store.values.GetMut(m.key)
	assertThat(c != nil && c.kind == MapKind, "insert into %s, which is not a map", m.key)
	old := slab.NilKey
	replaced := false
	for i := range c.fields {
		if c.fields[i].name == name {
			old, c.fields[i].value = c.fields[i].value, value
			replaced = true
			break
		}
	}
	if !replaced {
		c.fields = append(c.fields, field{name: name, value: value})
	}
	m.store.Notify(m.key, ChangedValue)
	if replaced {
		m.store.Drop(old)
	}
}

// Remove drops field name and notifies the map's subscribers with Changed.
func (m Map) Remove(name string) bool {
	c := m.store.values.GetMut(m.key)
	if c == nil || c.kind != MapKind {
		return false
	}
	for i, f := range c.fields {
		if f.name == name {
			c.fields = append(c.fields[:i], c.fields[i+1:]...)
			m.store.Notify(m.key, ChangedValue)
			m.store.Drop(f.value)
			return true
		}
	}
	return false
}

// Drop removes the map and all of its fields from the store.
func (m Map) Drop() {
	m.store.Drop(m.key)
}

// SetField sets a scalar field of a map. If the field holds a scalar already, it is
// updated in place and only the field's subscribers are notified. Otherwise a new
// value is inserted.
func SetField[T Scalar](m Map, name string, x T) {
	if key, ok := m.Get(name); ok && m.store.Kind(key) == ScalarKind {
		ValueAt[T](m.store, key).Set(x)
		return
	}
	m.Insert(name, NewValue(m.store, x).Key())
}

// Field returns a handle for a scalar field of a map.
func Field[T Scalar](m Map, name string) (Value[T], bool) {
	key, ok := m.Get(name)
	if !ok || m.store.Kind(key) != ScalarKind {
		return Value[T]{}, false
	}
	return ValueAt[T](m.store, key), true
}
