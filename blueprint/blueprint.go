package blueprint

import (
	"github.com/npillmayer/reactree/expr"
)

// Blueprint is a template fragment. The set of blueprint types is fixed:
// *Element, *For, *ControlFlow, *Component and *Slot.
type Blueprint interface {
	isBlueprint()
}

// Attribute is a named expression.
type Attribute struct {
	Name  string
	Value expr.Expr
}

// Element is a plain widget, identified by Ident (e.g. "text" or "border").
// Value is the optional primary value of the element.
type Element struct {
	Ident      string
	Value      expr.Expr
	Attributes []Attribute
	Children   []Blueprint
}

// For repeats Body for every element of Collection, binding the element to Binding.
type For struct {
	Binding    string
	Collection expr.Expr
	Body       []Blueprint
}

// ControlFlow selects the first branch whose condition is true.
type ControlFlow struct {
	Branches []Branch
}

// Branch is a conditional part of a ControlFlow. A branch without a condition is
// an else-branch.
type Branch struct {
	Cond expr.Expr
	Body []Blueprint
}

// Component is an instance of a named component. The component's template is Body,
// which is evaluated with a scope made up of the component's own state and its
// attributes only. Slots holds the children supplied to the component by its parent,
// by slot name.
type Component struct {
	Name       string
	Attributes []Attribute
	State      []Attribute
	Body       []Blueprint
	Slots      map[string][]Blueprint
}

// Slot is a placeholder inside a component's template for children supplied by the
// component's parent.
type Slot struct {
	Name string
}

func (*Element) isBlueprint()     {}
func (*For) isBlueprint()         {}
func (*ControlFlow) isBlueprint() {}
func (*Component) isBlueprint()   {}
func (*Slot) isBlueprint()        {}

// Attribute returns the expression of a named attribute.
func (e *Element) Attribute(name string) (expr.Expr, bool) {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// Text is a shortcut for an element "text" with a value and no children.
func Text(value expr.Expr) *Element {
	return &Element{Ident: "text", Value: value}
}
