package widgets

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/npillmayer/reactree/expr"
	"github.com/npillmayer/reactree/nodepath"
	"github.com/npillmayer/reactree/slab"
	"github.com/npillmayer/reactree/tree"
	"github.com/xlab/treeprint"
)

// Describe returns a single-line description of a widget:
//
//	text[bold: true] hello      element with attributes and value
//	<for>
//	<iter x = 1, index = 0>
//	<control flow branch = 1>
//	<component counter>
//	<slot header>
//
func (ctx *Context) Describe(w Widget, key slab.Key) string {
	switch w := w.(type) {
	case *Element:
		var b strings.Builder
		b.WriteString(w.Blueprint.Ident)
		attrs := ctx.Attributes.Get(key)
		if attrs == nil {
			return b.String()
		}
		if len(attrs.Bindings) > 1 {
			b.WriteByte('[')
			for i, a := range attrs.Bindings[1:] {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(a.Name + ": " + expr.Display(a.Value))
			}
			b.WriteByte(']')
		}
		if v := attrs.Bindings[0]; v.Expr != nil {
			b.WriteString(" " + expr.Display(v.Value))
		}
		return b.String()
	case *For:
		return "<for>"
	case *Iteration:
		return fmt.Sprintf("<iter %s = %s, index = %d>", w.Binding, expr.Display(ctx.Value(w.Element)), w.Index())
	case *ControlFlow:
		if w.Selected < 0 {
			return "<control flow>"
		}
		return fmt.Sprintf("<control flow branch = %d>", w.Selected)
	case *Component:
		return "<component " + w.Blueprint.Name + ">"
	case *Slot:
		return "<slot " + w.Name + ">"
	}
	return "<?>"
}

type stringifier struct {
	ctx   *Context
	b     strings.Builder
	level int
}

func (s *stringifier) Visit(w *Widget, _ nodepath.Path, key slab.Key) tree.VisitResult {
	s.b.WriteString(strings.Repeat("    ", s.level))
	s.b.WriteString(s.ctx.Describe(*w, key))
	s.b.WriteByte('\n')
	return tree.Continue
}

func (s *stringifier) Push() { s.level++ }
func (s *stringifier) Pop()  { s.level-- }

// Stringify returns a textual dump of the widget tree, one widget per line, indented
// by four spaces per level.
func (ctx *Context) Stringify() string {
	s := &stringifier{ctx: ctx}
	ctx.Tree.ApplyVisitor(s)
	return s.b.String()
}

// Fingerprint returns a hash of the textual dump of the widget tree. Trees with equal
// fingerprints present the same widgets with the same values.
func (ctx *Context) Fingerprint() uint64 {
	return xxhash.Sum64String(ctx.Stringify())
}

type printer struct {
	ctx   *Context
	stack []treeprint.Tree
	last  treeprint.Tree
}

func (p *printer) Visit(w *Widget, _ nodepath.Path, key slab.Key) tree.VisitResult {
	p.last = p.stack[len(p.stack)-1].AddBranch(p.ctx.Describe(*w, key))
	return tree.Continue
}

func (p *printer) Push() { p.stack = append(p.stack, p.last) }
func (p *printer) Pop()  { p.stack = p.stack[:len(p.stack)-1] }

// PrintTree renders the widget tree with box-drawing characters.
func (ctx *Context) PrintTree() string {
	root := treeprint.NewWithRoot("widgets")
	ctx.Tree.ApplyVisitor(&printer{ctx: ctx, stack: []treeprint.Tree{root}})
	return root.String()
}
