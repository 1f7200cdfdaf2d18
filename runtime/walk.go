package runtime

import (
	"github.com/npillmayer/reactree/expr"
	"github.com/npillmayer/reactree/nodepath"
	"github.com/npillmayer/reactree/slab"
	"github.com/npillmayer/reactree/tree"
	"github.com/npillmayer/reactree/widgets"
	"github.com/zclconf/go-cty/cty"
)

// Node is what layout code gets to see of a widget.
type Node struct {
	Key    slab.Key
	Path   nodepath.Path
	Widget widgets.Widget
	attrs  *widgets.Attributes
}

// Kind returns the kind of the widget.
func (n Node) Kind() widgets.Kind {
	return n.Widget.Kind()
}

// Ident returns the identifier of an element, or the empty string for other kinds of
// widgets.
func (n Node) Ident() string {
	if e, ok := n.Widget.(*widgets.Element); ok {
		return e.Blueprint.Ident
	}
	return ""
}

// Value returns the value of an element.
func (n Node) Value() cty.Value {
	if b := n.attrs.Binding(0); b != nil && n.Kind() == widgets.ElementKind {
		return b.Value
	}
	return expr.Null
}

// Text returns the value of an element, formatted for display.
func (n Node) Text() string {
	return expr.Display(n.Value())
}

// Attribute returns a named attribute of an element.
func (n Node) Attribute(name string) (cty.Value, bool) {
	if n.Kind() != widgets.ElementKind {
		return expr.Null, false
	}
	if b, ok := n.attrs.Lookup(name); ok && b != n.attrs.Binding(0) {
		return b.Value, true
	}
	return expr.Null, false
}

func (rt *Runtime) node(key slab.Key, w widgets.Widget, path nodepath.Path) Node {
	return Node{Key: key, Path: path, Widget: w, attrs: rt.ctx.Attributes.Get(key)}
}

// Walk calls fn for every widget, parents before children and siblings in order.
// If fn returns an error for a widget, its children are skipped. Walk returns the
// last error fn returned.
func (rt *Runtime) Walk(fn func(Node) error) error {
	_, err := tree.NewWalker(rt.tree, nodepath.Root()).TopDown(
		func(node *tree.Node, w *widgets.Widget, path nodepath.Path) error {
			return fn(rt.node(node.Key(), *w, path))
		}).Result()
	return err
}

// Query returns all elements with a given identifier, in tree order.
func (rt *Runtime) Query(ident string) []Node {
	isElement := func(_ *tree.Node, w *widgets.Widget) (bool, error) {
		e, ok := (*w).(*widgets.Element)
		return ok && e.Blueprint.Ident == ident, nil
	}
	nodes, _ := tree.NewWalker(rt.tree, nodepath.Root()).DescendentsWith(isElement).Result()
	result := make([]Node, 0, len(nodes))
	for _, node := range nodes {
		w, _ := rt.tree.Get(node.Key())
		path, _ := rt.tree.Path(node.Key())
		result = append(result, rt.node(node.Key(), w, path))
	}
	return result
}
