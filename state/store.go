package state

import (
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dustin/go-humanize"
	"github.com/npillmayer/reactree/slab"
	"github.com/zclconf/go-cty/cty"
)

// Kind is the kind of a value in a store.
type Kind uint8

const (
	NoKind Kind = iota
	ScalarKind
	ListKind
	MapKind
)

func (k Kind) String() string {
	switch k {
	case ScalarKind:
		return "scalar"
	case ListKind:
		return "list"
	case MapKind:
		return "map"
	}
	return "none"
}

// cell is the storage of a single value.
type cell struct {
	kind    Kind
	scalar  cty.Value  // ScalarKind
	elems   []slab.Key // ListKind
	fields  []field    // MapKind, in insertion order
	subs    []Subscriber
	watcher Watcher
	watched bool
}

type field struct {
	name  string
	value slab.Key
}

// Store holds all values of an application, their subscribers, the queue of changes
// not yet processed, and the watchers.
//
// Stores are not safe for concurrent use. The zero value is not usable, use NewStore.
type Store struct {
	values     *slab.GenSlab[cell]
	changes    []Record
	watched    mapset.Set[slab.Key]
	watchQueue []Watcher
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		values:  slab.NewGenSlab[cell](32),
		watched: mapset.NewThreadUnsafeSet[slab.Key](),
	}
}

func (s *Store) insert(c cell) slab.Key {
	return s.values.Insert(c)
}

// Len returns the number of values in the store.
func (s *Store) Len() int {
	return s.values.Len()
}

// Contains is true if key refers to a live value.
func (s *Store) Contains(key slab.Key) bool {
	return s.values.Contains(key)
}

// Kind returns the kind of the value for key, or NoKind if key is stale.
func (s *Store) Kind(key slab.Key) Kind {
	if c := s.values.GetMut(key); c != nil {
		return c.kind
	}
	return NoKind
}

// Scalar returns the value for key if it is a scalar.
func (s *Store) Scalar(key slab.Key) (cty.Value, bool) {
	c := s.values.GetMut(key)
	if c == nil || c.kind != ScalarKind {
		return cty.NilVal, false
	}
	return c.scalar, true
}

// NewScalar stores a new scalar value given as a cty value.
func (s *Store) NewScalar(v cty.Value) slab.Key {
	return s.insert(cell{kind: ScalarKind, scalar: v})
}

// SetScalar replaces a scalar value and notifies its subscribers with Changed.
func (s *Store) SetScalar(key slab.Key, v cty.Value) bool {
	c := s.values.GetMut(key)
	if c == nil || c.kind != ScalarKind {
		return false
	}
	c.scalar = v
	s.Notify(key, ChangedValue)
	return true
}

// Count returns the number of elements of a list value or the number of fields of a map.
func (s *Store) Count(key slab.Key) int {
	c := s.values.GetMut(key)
	if c == nil {
		return 0
	}
	switch c.kind {
	case ListKind:
		return len(c.elems)
	case MapKind:
		return len(c.fields)
	}
	return 0
}

// ElementAt returns the key of element i of a list value.
func (s *Store) ElementAt(key slab.Key, i int) (slab.Key, bool) {
	c := s.values.GetMut(key)
	if c == nil || c.kind != ListKind || i < 0 || i >= len(c.elems) {
		return slab.NilKey, false
	}
	return c.elems[i], true
}

// Elements returns a copy of the element keys of a list value.
func (s *Store) Elements(key slab.Key) []slab.Key {
	c := s.values.GetMut(key)
	if c == nil || c.kind != ListKind {
		return nil
	}
	return append([]slab.Key(nil), c.elems...)
}

// Field returns the key of a named field of a map value.
func (s *Store) Field(key slab.Key, name string) (slab.Key, bool) {
	c := s.values.GetMut(key)
	if c == nil || c.kind != MapKind {
		return slab.NilKey, false
	}
	for _, f := range c.fields {
		if f.name == name {
			return f.value, true
		}
	}
	return slab.NilKey, false
}

// FieldNames returns the names of the fields of a map value, in insertion order.
func (s *Store) FieldNames(key slab.Key) []string {
	c := s.values.GetMut(key)
	if c == nil || c.kind != MapKind {
		return nil
	}
	names := make([]string, len(c.fields))
	for i, f := range c.fields {
		names[i] = f.name
	}
	return names
}

// CtyValue returns a snapshot of the value for key as a cty value: scalars as they are,
// lists as tuples and maps as objects. Stale keys yield a null value.
func (s *Store) CtyValue(key slab.Key) cty.Value {
	c := s.values.GetMut(key)
	if c == nil {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	switch c.kind {
	case ScalarKind:
		return c.scalar
	case ListKind:
		if len(c.elems) == 0 {
			return cty.EmptyTupleVal
		}
		elems := make([]cty.Value, len(c.elems))
		for i, e := range c.elems {
			elems[i] = s.CtyValue(e)
		}
		return cty.TupleVal(elems)
	case MapKind:
		if len(c.fields) == 0 {
			return cty.EmptyObjectVal
		}
		attrs := make(map[string]cty.Value, len(c.fields))
		for _, f := range c.fields {
			attrs[f.name] = s.CtyValue(f.value)
		}
		return cty.ObjectVal(attrs)
	}
	return cty.NullVal(cty.DynamicPseudoType)
}

// --- Removal ---------------------------------------------------------------

// Drop removes the value for key, notifying its subscribers with Dropped. Elements of
// lists and fields of maps are dropped as well.
func (s *Store) Drop(key slab.Key) {
	c, ok := s.values.TryRemove(key)
	if !ok {
		tracer().Debugf("drop of stale value %s", key)
		return
	}
	s.watched.Remove(key)
	if c.watched {
		s.watchQueue = append(s.watchQueue, c.watcher)
	}
	if len(c.subs) > 0 {
		s.changes = append(s.changes, Record{Subscribers: c.subs, Change: DroppedValue, Source: key})
	}
	for _, e := range c.elems {
		s.Drop(e)
	}
	for _, f := range c.fields {
		s.Drop(f.value)
	}
}

// Release removes the value for key (and its elements or fields) without notifying
// anybody. It is used for values owned by widgets which are already gone.
func (s *Store) Release(key slab.Key) {
	c, ok := s.values.TryRemove(key)
	if !ok {
		return
	}
	s.watched.Remove(key)
	for _, e := range c.elems {
		s.Release(e)
	}
	for _, f := range c.fields {
		s.Release(f.value)
	}
}

// DumpState returns a textual dump of the store, listing every value with its
// subscribers.
func (s *Store) DumpState() string {
	var b strings.Builder
	fmt.Fprintf(&b, "store: %s values, %s changes pending, %s watched\n",
		humanize.Comma(int64(s.values.Len())), humanize.Comma(int64(len(s.changes))),
		humanize.Comma(int64(s.watched.Cardinality())))
	s.values.Each(func(k slab.Key, c *cell) bool {
		subs := make([]string, len(c.subs))
		for i, sub := range c.subs {
			subs[i] = sub.String()
		}
		sort.Strings(subs)
		fmt.Fprintf(&b, "%s %s %s [%s]\n", k, c.kind, s.describe(c), strings.Join(subs, " "))
		return true
	})
	return b.String()
}

func (s *Store) describe(c *cell) string {
	switch c.kind {
	case ScalarKind:
		return c.scalar.GoString()
	case ListKind:
		return fmt.Sprintf("%v", c.elems)
	case MapKind:
		names := make([]string, len(c.fields))
		for i, f := range c.fields {
			names[i] = f.name + "=" + f.value.String()
		}
		return "{" + strings.Join(names, " ") + "}"
	}
	return "?"
}
