package widgets

import (
	"github.com/google/uuid"
	"github.com/npillmayer/reactree/blueprint"
	"github.com/npillmayer/reactree/slab"
	"github.com/npillmayer/reactree/state"
)

// Kind is the kind of a widget.
type Kind uint8

const (
	ElementKind Kind = iota
	ForKind
	IterationKind
	ControlFlowKind
	ComponentKind
	SlotKind
)

func (k Kind) String() string {
	switch k {
	case ElementKind:
		return "element"
	case ForKind:
		return "for"
	case IterationKind:
		return "iteration"
	case ControlFlowKind:
		return "control flow"
	case ComponentKind:
		return "component"
	case SlotKind:
		return "slot"
	}
	return "?"
}

// Widget is a node of a widget tree. The set of widget types is fixed:
// *Element, *For, *Iteration, *ControlFlow, *Component and *Slot.
type Widget interface {
	Kind() Kind
	isWidget()
}

// Element is a widget created from an element blueprint. Its value and attributes
// live in the attribute storage of the context.
type Element struct {
	Blueprint *blueprint.Element
}

// For repeats its body for every element of a collection. Its children are
// iterations, one per element.
type For struct {
	Blueprint *blueprint.For
	source    Ref // the collection
	rebuiltIn int // pass of the latest rebuild
}

// Iteration is the child of a For for a single element. It binds the element and the
// loop index for the body.
type Iteration struct {
	Binding   string
	LoopIndex state.Value[int]
	Element   Ref
}

// ControlFlow has the body of its selected branch as children.
type ControlFlow struct {
	Blueprint *blueprint.ControlFlow
	Selected  int // index of the selected branch or -1
}

// Component is an instance of a component. It owns its state, a map value.
type Component struct {
	Blueprint *blueprint.Component
	ID        uuid.UUID
	State     state.Map
	key       slab.Key
}

// Slot holds the children a parent supplied for a slot of a component.
type Slot struct {
	Name string
}

func (*Element) Kind() Kind     { return ElementKind }
func (*For) Kind() Kind         { return ForKind }
func (*Iteration) Kind() Kind   { return IterationKind }
func (*ControlFlow) Kind() Kind { return ControlFlowKind }
func (*Component) Kind() Kind   { return ComponentKind }
func (*Slot) Kind() Kind        { return SlotKind }

func (*Element) isWidget()     {}
func (*For) isWidget()         {}
func (*Iteration) isWidget()   {}
func (*ControlFlow) isWidget() {}
func (*Component) isWidget()   {}
func (*Slot) isWidget()        {}

// Source returns the reference to the collection the For currently iterates over.
func (f *For) Source() Ref {
	return f.source
}

// Index returns the current loop index of an iteration.
func (it *Iteration) Index() int {
	return it.LoopIndex.Get()
}
