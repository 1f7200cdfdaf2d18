package widgets

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/reactree/blueprint"
	"github.com/npillmayer/reactree/state"
	"github.com/npillmayer/reactree/tree"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func newContext() *Context {
	return NewContext(state.NewStore(), tree.New[Widget]())
}

func mount(t *testing.T, ctx *Context, src string) {
	t.Helper()
	bps, err := blueprint.FromYAML([]byte(src))
	require.NoError(t, err)
	require.NoError(t, ctx.Mount(bps))
	require.NoError(t, ctx.Tree.CheckConsistency())
}

// settle applies changes until no more are pending.
func settle(t *testing.T, ctx *Context) []error {
	t.Helper()
	var errs []error
	for ctx.Store.Pending() > 0 {
		errs = append(errs, ctx.Apply(ctx.Store.Drain())...)
	}
	require.NoError(t, ctx.Tree.CheckConsistency())
	return errs
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

const loop = `
- for: x
  in: $list
  body:
    - element: text
      value: $x
    - element: index
      value: $loop
`

func TestForMount(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.widgets")
	defer teardown()
	//
	ctx := newContext()
	list := state.NewList(ctx.Store, 1, 2)
	ctx.Bind("list", StateRef(list.Key()))
	mount(t, ctx, loop)
	assert.Equal(t, lines(
		"<for>",
		"    <iter x = 1, index = 0>",
		"        text 1",
		"        index 0",
		"    <iter x = 2, index = 1>",
		"        text 2",
		"        index 1",
	), ctx.Stringify())
	assert.Equal(t, 7, ctx.Tree.Len())
	assert.Equal(t, 7, ctx.Attributes.Len(), "every widget has attributes")
}

func TestForInsertReindexes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.widgets")
	defer teardown()
	//
	ctx := newContext()
	list := state.NewList(ctx.Store, 1, 2, 3)
	ctx.Bind("list", StateRef(list.Key()))
	mount(t, ctx, loop)
	list.Insert(0, 99)
	list.Push(100)
	assert.Empty(t, settle(t, ctx))
	assert.Equal(t, lines(
		"<for>",
		"    <iter x = 99, index = 0>",
		"        text 99",
		"        index 0",
		"    <iter x = 1, index = 1>",
		"        text 1",
		"        index 1",
		"    <iter x = 2, index = 2>",
		"        text 2",
		"        index 2",
		"    <iter x = 3, index = 3>",
		"        text 3",
		"        index 3",
		"    <iter x = 100, index = 4>",
		"        text 100",
		"        index 4",
	), ctx.Stringify())
}

func TestForRemoveReindexes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.widgets")
	defer teardown()
	//
	ctx := newContext()
	list := state.NewList(ctx.Store, 1, 2, 3)
	ctx.Bind("list", StateRef(list.Key()))
	mount(t, ctx, loop)
	storeLen := ctx.Store.Len()
	require.True(t, list.Remove(0))
	require.True(t, list.Remove(1))
	assert.Empty(t, settle(t, ctx))
	assert.Equal(t, lines(
		"<for>",
		"    <iter x = 2, index = 0>",
		"        text 2",
		"        index 0",
	), ctx.Stringify())
	assert.Equal(t, 4, ctx.Attributes.Len(), "removed widgets must be evicted")
	// two elements dropped, two loop indices released
	assert.Equal(t, storeLen-4, ctx.Store.Len())
}

func TestForReplaceAndDrop(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.widgets")
	defer teardown()
	//
	ctx := newContext()
	list := state.NewList(ctx.Store, 1, 2, 3)
	ctx.Bind("list", StateRef(list.Key()))
	mount(t, ctx, loop)
	list.Replace(7, 8)
	list.Push(9) // already reflected by the rebuild
	assert.Empty(t, settle(t, ctx))
	assert.Equal(t, lines(
		"<for>",
		"    <iter x = 7, index = 0>",
		"        text 7",
		"        index 0",
		"    <iter x = 8, index = 1>",
		"        text 8",
		"        index 1",
		"    <iter x = 9, index = 2>",
		"        text 9",
		"        index 2",
	), ctx.Stringify())
	list.Drop()
	assert.Empty(t, settle(t, ctx))
	assert.Equal(t, "<for>\n", ctx.Stringify())
}

func TestForOverMapField(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.widgets")
	defer teardown()
	//
	ctx := newContext()
	app := state.NewMap(ctx.Store)
	app.Insert("items", state.NewList(ctx.Store, "a", "b").Key())
	state.SetField(app, "title", "list")
	ctx.Bind("app", StateRef(app.Key()))
	mount(t, ctx, `
- for: x
  in: $app.items
  body: [ { element: text, value: $x } ]
`)
	before := ctx.Tree.Transactions()
	app.Insert("extra", ctx.Store.NewScalar(cty.StringVal("x")))
	assert.Empty(t, settle(t, ctx))
	assert.Equal(t, before, ctx.Tree.Transactions(), "unrelated field must not rebuild")
	app.Insert("items", state.NewList(ctx.Store, "c").Key())
	assert.Empty(t, settle(t, ctx))
	assert.Equal(t, lines(
		"<for>",
		"    <iter x = c, index = 0>",
		"        text c",
	), ctx.Stringify())
}

func TestStaticCollection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.widgets")
	defer teardown()
	//
	ctx := newContext()
	mount(t, ctx, `
- for: x
  in: [ a, b ]
  body: [ { element: text, value: $x } ]
`)
	assert.Equal(t, lines(
		"<for>",
		"    <iter x = a, index = 0>",
		"        text a",
		"    <iter x = b, index = 1>",
		"        text b",
	), ctx.Stringify())
}

func TestElementAttributes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.widgets")
	defer teardown()
	//
	ctx := newContext()
	name := state.NewValue(ctx.Store, "Hi")
	flag := state.NewValue(ctx.Store, true)
	ctx.Bind("name", StateRef(name.Key()))
	ctx.Bind("flag", StateRef(flag.Key()))
	mount(t, ctx, `
- element: text
  value: $name
  attributes:
    bold: $flag
    color: red
`)
	assert.Equal(t, "text[bold: true, color: red] Hi\n", ctx.Stringify())
	before := ctx.Tree.Transactions()
	flag.Set(false)
	name.Set("Ho")
	assert.Empty(t, settle(t, ctx))
	assert.Equal(t, "text[bold: false, color: red] Ho\n", ctx.Stringify())
	assert.Equal(t, before, ctx.Tree.Transactions(), "attribute reloads are not structural")
}

const branches = `
- switch:
    - if: { gt: [ $count, 5 ] }
      body: [ { element: text, value: $name } ]
    - else: [ { element: text, value: small } ]
`

func TestControlFlowStability(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.widgets")
	defer teardown()
	//
	ctx := newContext()
	count := state.NewValue(ctx.Store, 1)
	name := state.NewValue(ctx.Store, "big")
	ctx.Bind("count", StateRef(count.Key()))
	ctx.Bind("name", StateRef(name.Key()))
	mount(t, ctx, branches)
	assert.Equal(t, "<control flow branch = 1>\n    text small\n", ctx.Stringify())
	before := ctx.Tree.Transactions()
	count.Set(2)
	assert.Empty(t, settle(t, ctx))
	assert.Equal(t, before, ctx.Tree.Transactions(), "same branch must not touch the tree")
	//
	count.Set(10)
	assert.Empty(t, settle(t, ctx))
	assert.Equal(t, "<control flow branch = 0>\n    text big\n", ctx.Stringify())
	assert.Len(t, ctx.Store.Subscribers(name.Key()), 1)
	//
	count.Set(0)
	assert.Empty(t, settle(t, ctx))
	assert.Equal(t, "<control flow branch = 1>\n    text small\n", ctx.Stringify())
	assert.Empty(t, ctx.Store.Subscribers(name.Key()), "evicted widget must be unsubscribed")
}

func TestComponentWithSlot(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.widgets")
	defer teardown()
	//
	ctx := newContext()
	title := state.NewValue(ctx.Store, "Hello")
	ctx.Bind("title", StateRef(title.Key()))
	mount(t, ctx, `
- component: counter
  attributes: { label: $title }
  state: { count: 0 }
  body:
    - element: text
      value: $label
    - element: text
      value: $state.count
    - slot: footer
  slots:
    footer:
      - element: text
        value: $title
`)
	assert.Equal(t, lines(
		"<component counter>",
		"    text Hello",
		"    text 0",
		"    <slot footer>",
		"        text Hello",
	), ctx.Stringify())
	require.Equal(t, 1, ctx.Components.Len())
	key, ok := ctx.Components.Lookup(ctx.Components.IDs()[0])
	require.True(t, ok)
	w, ok := ctx.Tree.Get(key)
	require.True(t, ok)
	c := w.(*Component)
	//
	title.Set("World")
	state.SetField(c.State, "count", 5)
	assert.Empty(t, settle(t, ctx))
	assert.Equal(t, lines(
		"<component counter>",
		"    text World",
		"    text 5",
		"    <slot footer>",
		"        text World",
	), ctx.Stringify())
	//
	require.NoError(t, ctx.truncate(nil))
	assert.Equal(t, 0, ctx.Components.Len())
	assert.False(t, ctx.Store.Contains(c.State.Key()), "component state is released with the component")
}

func TestComponentAttributeRebuild(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.widgets")
	defer teardown()
	//
	ctx := newContext()
	n := state.NewValue(ctx.Store, 1)
	ctx.Bind("n", StateRef(n.Key()))
	mount(t, ctx, `
- component: badge
  attributes:
    big: { gt: [ $n, 3 ] }
  body:
    - element: text
      value: $big
`)
	assert.Equal(t, "<component badge>\n    text false\n", ctx.Stringify())
	before := ctx.Tree.Transactions()
	n.Set(2)
	assert.Empty(t, settle(t, ctx))
	assert.Equal(t, before, ctx.Tree.Transactions())
	n.Set(4)
	assert.Empty(t, settle(t, ctx))
	assert.Equal(t, "<component badge>\n    text true\n", ctx.Stringify())
}

func TestTargetMissing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.widgets")
	defer teardown()
	//
	ctx := newContext()
	list := state.NewList(ctx.Store, 1, 2)
	ctx.Bind("list", StateRef(list.Key()))
	mount(t, ctx, loop)
	ctx.Store.Notify(list.Key(), state.RemovedAt(7))
	errs := settle(t, ctx)
	require.Len(t, errs, 1)
	var missing *TargetMissingError
	require.True(t, errors.As(errs[0], &missing))
	assert.Equal(t, state.Removed, missing.Change.Kind)
	assert.True(t, errors.Is(errs[0], tree.ErrNoSuchPath))
	assert.Equal(t, 2, ctx.Tree.Roots()[0].ChildCount(), "tree must be left untouched")
}

func TestStaleSubscriberSkipped(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.widgets")
	defer teardown()
	//
	ctx := newContext()
	v := state.NewValue(ctx.Store, 1)
	ctx.Bind("v", StateRef(v.Key()))
	mount(t, ctx, "- element: text\n  value: $v\n")
	key := ctx.Tree.Roots()[0].Key()
	v.Set(2)
	records := ctx.Store.Drain()
	require.NoError(t, ctx.truncate(nil))
	assert.Empty(t, ctx.Apply(records), "records for removed widgets are skipped")
	assert.True(t, ctx.Tree.IsVacant(key))
}

func TestUpdatesCommute(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.widgets")
	defer teardown()
	//
	build := func() (*Context, state.Value[int], state.Value[int]) {
		ctx := newContext()
		a, b := state.NewValue(ctx.Store, 1), state.NewValue(ctx.Store, 2)
		ctx.Bind("a", StateRef(a.Key()))
		ctx.Bind("b", StateRef(b.Key()))
		mount(t, ctx, "- element: text\n  value: $a\n- element: text\n  value: $b\n")
		return ctx, a, b
	}
	ctx1, a1, b1 := build()
	ctx2, a2, b2 := build()
	a1.Set(10)
	b1.Set(20)
	a2.Set(10)
	b2.Set(20)
	records := ctx2.Store.Drain()
	records[0], records[1] = records[1], records[0]
	assert.Empty(t, ctx1.Apply(ctx1.Store.Drain()))
	assert.Empty(t, ctx2.Apply(records))
	assert.Equal(t, ctx1.Stringify(), ctx2.Stringify())
	assert.Equal(t, ctx1.Fingerprint(), ctx2.Fingerprint())
}

func TestScopeIsolation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.widgets")
	defer teardown()
	//
	outer := &blueprint.Component{Name: "outer"}
	s := NewScope()
	s.Bind("global", StaticRef(cty.StringVal("g")))
	s.PushComponent(outer)
	s.Bind("own", StaticRef(cty.StringVal("o")))
	_, ok := s.Lookup("global")
	assert.False(t, ok, "names do not leak into components")
	ref, ok := s.Lookup("own")
	require.True(t, ok)
	assert.Equal(t, "o", ref.Static.AsString())
	//
	owner := s.PushSlot()
	assert.Same(t, outer, owner)
	ref, ok = s.Lookup("global")
	require.True(t, ok, "slot children see the names of the component's parent")
	assert.Equal(t, "g", ref.Static.AsString())
	_, ok = s.Lookup("own")
	assert.False(t, ok)
	s.Pop()
	s.Pop()
	assert.Equal(t, 1, s.Depth())
	assert.Nil(t, s.PushSlot(), "slot outside of a component")
}

func TestPrintTree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.widgets")
	defer teardown()
	//
	ctx := newContext()
	mount(t, ctx, "- element: border\n  children: [ { element: text, value: hi } ]\n")
	dump := ctx.PrintTree()
	t.Logf("\n%s", dump)
	assert.Contains(t, dump, "widgets")
	assert.Contains(t, dump, "border")
	assert.Contains(t, dump, "text hi")
}
