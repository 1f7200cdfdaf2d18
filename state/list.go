package state

import (
	"github.com/npillmayer/reactree/slab"
)

// NewListOf stores a new list value holding the given values as elements. The list
// takes ownership of the elements.
func (s *Store) NewListOf(elems ...slab.Key) slab.Key {
	return s.insert(cell{kind: ListKind, elems: append([]slab.Key(nil), elems...)})
}

// ListInsert inserts elem into a list at index i, shifting later elements, and
// notifies the list's subscribers with Inserted. It panics if i is out of range.
func (s *Store) ListInsert(list slab.Key, i int, elem slab.Key) {
	c := s.values.GetMut(list)
	assertThat(c != nil && c.kind == ListKind, "insert into %s, which is not a list", list)
	assertThat(i >= 0 && i <= len(c.elems), "list index %d out of range [0…%d]", i, len(c.elems))
	c.elems = append(c.elems, slab.NilKey)
	copy(c.elems[i+1:], c.elems[i:])
	c.elems[i] = elem
	s.Notify(list, InsertedAt(i, elem))
}

// ListRemove removes element i from a list and notifies the list's subscribers with
// Removed. The element is dropped afterwards. It returns false if i is out of range.
func (s *Store) ListRemove(list slab.Key, i int) bool {
	c := s.values.GetMut(list)
	if c == nil || c.kind != ListKind || i < 0 || i >= len(c.elems) {
		return false
	}
	elem := c.elems[i]
	c.elems = append(c.elems[:i], c.elems[i+1:]...)
	s.Notify(list, RemovedAt(i))
	s.Drop(elem)
	return true
}

// ListReplace replaces all elements of a list and notifies the list's subscribers with
// Changed. The old elements are dropped.
func (s *Store) ListReplace(list slab.Key, elems ...slab.Key) {
	c := s.values.GetMut(list)
	assertThat(c != nil && c.kind == ListKind, "replace elements of %s, which is not a list", list)
	old := c.elems
	c.elems = append([]slab.Key(nil), elems...)
	s.Notify(list, ChangedValue)
	for _, e := range old {
		s.Drop(e)
	}
}

// List is a handle for a list of scalar values in a store.
type List[T Scalar] struct {
	store *Store
	key   slab.Key
}

// NewList stores a new list of scalars.
func NewList[T Scalar](s *Store, xs ...T) List[T] {
	elems := make([]slab.Key, len(xs))
	for i, x := range xs {
		elems[i] = NewValue(s, x).Key()
	}
	return List[T]{store: s, key: s.NewListOf(elems...)}
}

// ListAt creates a handle for an existing list value.
func ListAt[T Scalar](s *Store, key slab.Key) List[T] {
	return List[T]{store: s, key: key}
}

// Key returns the key of the list in its store.
func (l List[T]) Key() slab.Key {
	return l.key
}

// Len returns the number of elements.
func (l List[T]) Len() int {
	return l.store.Count(l.key)
}

// At returns element i.
func (l List[T]) At(i int) (Value[T], bool) {
	key, ok := l.store.ElementAt(l.key, i)
	return ValueAt[T](l.store, key), ok
}

// Values returns the current elements as Go values.
func (l List[T]) Values() []T {
	elems := l.store.Elements(l.key)
	xs := make([]T, len(elems))
	for i, e := range elems {
		xs[i] = ValueAt[T](l.store, e).Get()
	}
	return xs
}

// Push appends x to the list.
func (l List[T]) Push(x T) {
	l.Insert(l.Len(), x)
}

// Insert inserts x at index i. It panics if i is out of range.
func (l List[T]) Insert(i int, x T) {
	l.store.ListInsert(l.key, i, NewValue(l.store, x).Key())
}

// Remove removes element i. It returns false if i is out of range.
func (l List[T]) Remove(i int) bool {
	return l.store.ListRemove(l.key, i)
}

// Pop removes the last element, if any.
func (l List[T]) Pop() (T, bool) {
	n := l.Len()
	if n == 0 {
		var none T
		return none, false
	}
	v, _ := l.At(n - 1)
	x := v.Get()
	l.Remove(n - 1)
	return x, true
}

// Set replaces the value of element i. Subscribers of the element are notified, not
// subscribers of the list. It returns false if i is out of range.
func (l List[T]) Set(i int, x T) bool {
	v, ok := l.At(i)
	if ok {
		v.Set(x)
	}
	return ok
}

// Replace replaces all elements.
func (l List[T]) Replace(xs ...T) {
	elems := make([]slab.Key, len(xs))
	for i, x := range xs {
		elems[i] = NewValue(l.store, x).Key()
	}
	l.store.ListReplace(l.key, elems...)
}

// Drop removes the list and its elements from the store.
func (l List[T]) Drop() {
	l.store.Drop(l.key)
}
