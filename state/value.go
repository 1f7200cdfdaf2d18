package state

import (
	"github.com/npillmayer/reactree/slab"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Scalar is the set of Go types which may be stored as scalar values.
type Scalar interface {
	int | int64 | float64 | string | bool
}

// Value is a handle for a scalar value in a store. Handles are cheap to copy; all
// copies refer to the same value.
type Value[T Scalar] struct {
	store *Store
	key   slab.Key
}

// NewValue stores a new scalar value.
func NewValue[T Scalar](s *Store, x T) Value[T] {
	return Value[T]{store: s, key: s.insert(cell{kind: ScalarKind, scalar: toCty(x)})}
}

// ValueAt creates a handle for an existing scalar value.
func ValueAt[T Scalar](s *Store, key slab.Key) Value[T] {
	return Value[T]{store: s, key: key}
}

// Key returns the key of the value in its store.
func (v Value[T]) Key() slab.Key {
	return v.key
}

// Get returns the value. It does not subscribe to it. For a dropped value, Get returns
// the zero value of T.
func (v Value[T]) Get() T {
	var x T
	val, ok := v.store.Scalar(v.key)
	if !ok || val.IsNull() {
		return x
	}
	if err := gocty.FromCtyValue(val, &x); err != nil {
		tracer().Errorf("value %s: %v", v.key, err)
	}
	return x
}

// Set replaces the value and notifies its subscribers with Changed.
// Setting a dropped value panics.
func (v Value[T]) Set(x T) {
	ok := v.store.SetScalar(v.key, toCty(x))
	assertThat(ok, "set of dropped value %s", v.key)
}

// Update replaces the value by f applied to it.
func (v Value[T]) Update(f func(T) T) {
	v.Set(f(v.Get()))
}

// Drop removes the value from its store, notifying its subscribers with Dropped.
func (v Value[T]) Drop() {
	v.store.Drop(v.key)
}

func toCty[T Scalar](x T) cty.Value {
	ty, err := gocty.ImpliedType(x)
	assertThat(err == nil, "no cty type for %v: %v", x, err)
	val, err := gocty.ToCtyValue(x, ty)
	assertThat(err == nil, "cannot convert %v: %v", x, err)
	return val
}
