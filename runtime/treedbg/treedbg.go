/*
Package treedbg implements helpers to debug a widget tree.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>


*/
package treedbg

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
	"text/template"

	"github.com/npillmayer/reactree/expr"
	"github.com/npillmayer/reactree/nodepath"
	"github.com/npillmayer/reactree/slab"
	"github.com/npillmayer/reactree/tree"
	"github.com/npillmayer/reactree/widgets"
)

// Parameters for GraphViz drawing.
type graphParamsType struct {
	Fontname     string
	Attributes   bool
	NodeTmpl     *template.Template
	EdgeTmpl     *template.Template
	AttrTmpl     *template.Template
	AttrEdgeTmpl *template.Template
}

// ToGraphViz outputs a diagram for a widget tree. The diagram is in GraphViz (DOT)
// format. If attributes is set, the diagram includes a table of the bindings of every
// widget, together with the number of values each binding is subscribed to.
func ToGraphViz(ctx *widgets.Context, w io.Writer, attributes bool) {
	tmpl, err := template.New("widgets").Parse(graphHeadTmpl)
	if err != nil {
		panic(err)
	}
	gparams := graphParamsType{Fontname: "Helvetica", Attributes: attributes}
	gparams.NodeTmpl = template.Must(template.New("widget").Funcs(
		template.FuncMap{
			"shortstring": shortText,
		}).Parse(widgetNodeTmpl))
	gparams.EdgeTmpl = template.Must(template.New("widgetedge").Parse(widgetEdgeTmpl))
	gparams.AttrTmpl = template.Must(template.New("attributes").Parse(attributesTmpl))
	gparams.AttrEdgeTmpl = template.Must(template.New("attredge").Parse(attrEdgeTmpl))
	if err = tmpl.Execute(w, gparams); err != nil {
		panic(err)
	}
	g := &grapher{ctx: ctx, w: w, params: &gparams}
	ctx.Tree.ApplyVisitor(g)
	w.Write([]byte("}\n"))
}

// Dotty is a helper for testing. Given a widget context and a testing.T, it will
// create a GraphViz image of the widget tree and write it to a file in the current
// folder, choosing a unique file name. The image is in SVG format.
//
// If an error occurs, t.Error(…) will be set, causing the test to fail.
//
func Dotty(ctx *widgets.Context, t *testing.T) {
	tmpfile, err := os.CreateTemp(".", "widgets.*.dot")
	if err != nil {
		t.Error(err)
		return
	}
	defer func() {
		tmpfile.Close()
		os.Remove(tmpfile.Name()) // clean up
	}()
	t.Logf("writing widget digraph to %s\n", tmpfile.Name())
	ToGraphViz(ctx, tmpfile, true)
	outOption := fmt.Sprintf("-o%s.svg", tmpfile.Name())
	cmd := exec.Command("dot", "-Tsvg", outOption, tmpfile.Name())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	t.Logf("writing widget tree image to %s.svg\n", tmpfile.Name())
	if err := cmd.Run(); err != nil {
		t.Error(err.Error())
	}
}

// Log writes a box-drawing rendition of the widget tree to the test log.
func Log(ctx *widgets.Context, t *testing.T) {
	t.Helper()
	t.Logf("\n%s", ctx.PrintTree())
}

type node struct {
	Name    string
	Element bool
	Label   string
}

type attr struct {
	Name  string
	Value string
	Deps  int
}

type attrs struct {
	Name     string
	Bindings []attr
}

type edge struct {
	N1, N2 string
}

// grapher emits nodes and edges while visiting a widget tree. Edges connect each
// widget to its parent, which is the top of the stack.
type grapher struct {
	ctx    *widgets.Context
	w      io.Writer
	params *graphParamsType
	stack  []string
	last   string
}

func nodeName(key slab.Key) string {
	return fmt.Sprintf("node%05d_%d", key.Index(), key.Generation())
}

func (g *grapher) Visit(w *widgets.Widget, _ nodepath.Path, key slab.Key) tree.VisitResult {
	name := nodeName(key)
	n := node{Name: name, Element: (*w).Kind() == widgets.ElementKind, Label: g.ctx.Describe(*w, key)}
	if err := g.params.NodeTmpl.Execute(g.w, n); err != nil {
		panic(err)
	}
	if len(g.stack) > 0 {
		if err := g.params.EdgeTmpl.Execute(g.w, edge{g.stack[len(g.stack)-1], name}); err != nil {
			panic(err)
		}
	}
	if g.params.Attributes {
		g.attributes(name, key)
	}
	g.last = name
	return tree.Continue
}

func (g *grapher) Push() { g.stack = append(g.stack, g.last) }
func (g *grapher) Pop()  { g.stack = g.stack[:len(g.stack)-1] }

func (g *grapher) attributes(name string, key slab.Key) {
	a := g.ctx.Attributes.Get(key)
	if a == nil || len(a.Bindings) == 0 {
		return
	}
	table := attrs{Name: name}
	for _, b := range a.Bindings {
		value := expr.Display(b.Value)
		if b.Expr == nil {
			value = "-"
		}
		table.Bindings = append(table.Bindings, attr{Name: b.Name, Value: value, Deps: len(b.Deps())})
	}
	if err := g.params.AttrTmpl.Execute(g.w, table); err != nil {
		panic(err)
	}
	if err := g.params.AttrEdgeTmpl.Execute(g.w, table); err != nil {
		panic(err)
	}
}

func shortText(s string) string {
	if len(s) > 24 {
		s = s[:24] + "..."
	}
	s = strings.Replace(s, `"`, `\"`, -1)
	s = strings.Replace(s, "\n", `\\n`, -1)
	s = strings.Replace(s, "\t", `\\t`, -1)
	return `"` + s + `"`
}

// --- Templates --------------------------------------------------------

const graphHeadTmpl = `digraph g {
  graph [labelloc="t" label="" splines=true overlap=false rankdir = "LR"];
  graph [fontname = "{{ .Fontname }}" fontsize=14] ;
   node [fontname = "{{ .Fontname }}" fontsize=14] ;
   edge [fontname = "{{ .Fontname }}" fontsize=14] ;
`

const widgetNodeTmpl = `{{ if .Element }}
{{ .Name }}	[ label={{ shortstring .Label }} shape=box style=filled fillcolor=grey95 fontname="Courier" fontsize=11.0 ] ;
{{ else }}
{{ .Name }}	[ label={{ shortstring .Label }} shape=ellipse style=filled fillcolor=lightblue3 ] ;
{{ end }}
`

const attributesTmpl = `{{ .Name }}_attrs [ style="filled" penwidth=1 fillcolor="ivory3" shape="Mrecord" fontsize=12
    label=<<table border="0" cellborder="0" cellpadding="2" cellspacing="0" bgcolor="ivory3">
      {{ range .Bindings }}
      <tr><td align="right">{{ .Name }}:</td><td>{{ .Value }}</td><td>({{ .Deps }})</td></tr>
      {{ end }}
    </table>> ] ;
`

const widgetEdgeTmpl = `{{ .N1 }} -> {{ .N2 }} [weight=1] ;
`

const attrEdgeTmpl = `{{ .Name }} -> {{ .Name }}_attrs [dir=none weight=1 style="dashed"] ;
`
