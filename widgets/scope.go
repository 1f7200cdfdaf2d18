package widgets

import (
	"github.com/npillmayer/reactree/blueprint"
	"github.com/npillmayer/reactree/slab"
	"github.com/zclconf/go-cty/cty"
)

// Ref is the result of resolving an expression: either a value in the state store, or
// a static value.
type Ref struct {
	Key    slab.Key
	Static cty.Value
}

// StateRef creates a reference to a value in the state store.
func StateRef(key slab.Key) Ref {
	return Ref{Key: key}
}

// StaticRef creates a reference to a static value.
func StaticRef(v cty.Value) Ref {
	return Ref{Key: slab.NilKey, Static: v}
}

// noRef is the result of resolving an unknown name.
var noRef = StaticRef(cty.NullVal(cty.DynamicPseudoType))

// IsState is true if r refers to a value in the state store.
func (r Ref) IsState() bool {
	return !r.Key.IsNil()
}

// Same is true if two references denote the same value.
func (r Ref) Same(other Ref) bool {
	if r.IsState() || other.IsState() {
		return r.Key == other.Key
	}
	if r.Static == cty.NilVal || other.Static == cty.NilVal {
		return r.Static == cty.NilVal && other.Static == cty.NilVal
	}
	return r.Static.RawEquals(other.Static)
}

type frameKind uint8

const (
	plainFrame frameKind = iota
	componentFrame
	slotFrame
)

type name struct {
	name string
	ref  Ref
}

type frame struct {
	kind      frameKind
	names     []name
	component *blueprint.Component // for component frames
	owner     int                  // for slot frames: index of the component frame
}

// Scope holds the names visible to an expression. Scopes are stacks of frames:
// loops and components push frames, which are popped once their body has been
// evaluated.
//
// Names do not leak into components: looking up a name inside a component's body
// stops at the component's frame. The children a parent supplies for a slot of the
// component see the parent's names instead of the component's.
type Scope struct {
	frames []frame
}

// NewScope creates a scope with a single (global) frame.
func NewScope() *Scope {
	return &Scope{frames: []frame{{kind: plainFrame}}}
}

// Depth returns the number of frames.
func (s *Scope) Depth() int {
	return len(s.frames)
}

// Truncate pops frames until depth frames are left.
func (s *Scope) Truncate(depth int) {
	s.frames = s.frames[:depth]
}

// Push pushes a new frame.
func (s *Scope) Push() {
	s.frames = append(s.frames, frame{kind: plainFrame})
}

// PushComponent pushes the frame of a component's body.
func (s *Scope) PushComponent(c *blueprint.Component) {
	s.frames = append(s.frames, frame{kind: componentFrame, component: c})
}

// PushSlot pushes the frame for the children of a slot. It returns the blueprint of the
// component the slot belongs to, or nil if the slot is not inside a component.
func (s *Scope) PushSlot() *blueprint.Component {
	owner := s.enclosingComponent()
	s.frames = append(s.frames, frame{kind: slotFrame, owner: owner})
	if owner < 0 {
		return nil
	}
	return s.frames[owner].component
}

// Pop pops the top frame.
func (s *Scope) Pop() {
	assertThat(len(s.frames) > 1, "pop of global scope frame")
	s.frames = s.frames[:len(s.frames)-1]
}

// Bind binds a name in the top frame.
func (s *Scope) Bind(n string, ref Ref) {
	top := &s.frames[len(s.frames)-1]
	top.names = append(top.names, name{name: n, ref: ref})
}

// Lookup finds the reference bound to a name.
func (s *Scope) Lookup(n string) (Ref, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := &s.frames[i]
		for j := len(f.names) - 1; j >= 0; j-- {
			if f.names[j].name == n {
				return f.names[j].ref, true
			}
		}
		switch f.kind {
		case componentFrame:
			return noRef, false
		case slotFrame:
			if f.owner < 0 {
				return noRef, false
			}
			i = f.owner // continue below the component
		}
	}
	return noRef, false
}

func (s *Scope) enclosingComponent() int {
	for i := len(s.frames) - 1; i >= 0; i-- {
		switch f := &s.frames[i]; f.kind {
		case componentFrame:
			return i
		case slotFrame:
			if f.owner < 0 {
				return -1
			}
			i = f.owner
		}
	}
	return -1
}
