package widgets

import (
	"github.com/google/uuid"
	"github.com/npillmayer/reactree/expr"
	"github.com/npillmayer/reactree/slab"
	"github.com/npillmayer/reactree/state"
	"github.com/zclconf/go-cty/cty"
)

// Binding is an evaluated expression of a widget, together with the values of the
// store it read while being evaluated.
type Binding struct {
	Name  string
	Expr  expr.Expr
	Value cty.Value // loaded value, for element values, attributes and conditions
	Ref   Ref       // resolved reference, for collections and component attributes
	deps  []slab.Key
}

// Deps returns the keys of the values the binding subscribed to.
func (b *Binding) Deps() []slab.Key {
	return b.deps
}

// Attributes is what the attribute storage holds for a widget.
//
// For an element, binding 0 is its value and binding i+1 is attribute i. For a For,
// binding 0 is the collection. For a control flow, binding i is the condition of
// branch i, and for a component, binding i is attribute i.
type Attributes struct {
	Bindings  []Binding
	owned     []slab.Key // values owned by the widget, released on eviction
	component uuid.UUID
}

// Binding returns binding i, or nil.
func (a *Attributes) Binding(i int) *Binding {
	if a == nil || i < 0 || i >= len(a.Bindings) {
		return nil
	}
	return &a.Bindings[i]
}

// Lookup finds a binding by name.
func (a *Attributes) Lookup(name string) (*Binding, bool) {
	if a == nil {
		return nil, false
	}
	for i := range a.Bindings {
		if a.Bindings[i].Name == name {
			return &a.Bindings[i], true
		}
	}
	return nil, false
}

// AttributeStorage attaches attributes to widgets, keyed by the widgets' tree keys.
type AttributeStorage struct {
	m slab.SecondaryMap[Attributes]
}

// Get returns the attributes of a widget.
func (s *AttributeStorage) Get(widget slab.Key) *Attributes {
	return s.m.GetMut(widget)
}

// Len returns the number of widgets with attributes.
func (s *AttributeStorage) Len() int {
	return s.m.Len()
}

func (s *AttributeStorage) insert(widget slab.Key, attrs Attributes) {
	s.m.Insert(widget, attrs)
}

// evict removes the attributes of a widget, unsubscribes all its bindings and
// releases the values it owns.
func (s *AttributeStorage) evict(widget slab.Key, store *state.Store) (Attributes, bool) {
	attrs, ok := s.m.TryRemove(widget)
	if !ok {
		return attrs, false
	}
	for i := range attrs.Bindings {
		unsubscribe(store, widget, i, &attrs.Bindings[i])
	}
	for _, v := range attrs.owned {
		store.Release(v)
	}
	return attrs, true
}

func unsubscribe(store *state.Store, widget slab.Key, index int, b *Binding) {
	sub := state.Subscriber{Key: widget, Binding: index}
	for _, dep := range b.deps {
		store.Unsubscribe(dep, sub)
	}
	b.deps = b.deps[:0]
}
