package widgets

import (
	"fmt"
	"math/big"
	"slices"

	"github.com/google/uuid"
	"github.com/npillmayer/reactree/blueprint"
	"github.com/npillmayer/reactree/expr"
	"github.com/npillmayer/reactree/nodepath"
	"github.com/npillmayer/reactree/slab"
	"github.com/npillmayer/reactree/state"
	"github.com/npillmayer/reactree/tree"
	"github.com/zclconf/go-cty/cty"
)

// Context is everything needed to evaluate blueprints and to apply changes: the
// state store, the widget tree, the attribute storage and the component registry.
//
// A context is not safe for concurrent use.
type Context struct {
	Store      *state.Store
	Tree       *tree.Tree[Widget]
	Attributes AttributeStorage
	Components Registry
	globals    *Scope
	pass       int
	evicted    []slab.Key
}

// NewContext creates a context for a store and a widget tree.
func NewContext(store *state.Store, t *tree.Tree[Widget]) *Context {
	return &Context{
		Store:      store,
		Tree:       t,
		Components: Registry{byID: make(map[uuid.UUID]slab.Key)},
		globals:    NewScope(),
	}
}

// Bind binds a name visible to every blueprint outside of components.
func (ctx *Context) Bind(name string, ref Ref) {
	ctx.globals.Bind(name, ref)
}

// Scope returns a new scope holding the global names.
func (ctx *Context) Scope() *Scope {
	g := ctx.globals.frames[0]
	g.names = slices.Clone(g.names)
	return &Scope{frames: []frame{g}}
}

// Value returns the value a reference denotes, without subscribing to it.
func (ctx *Context) Value(ref Ref) cty.Value {
	if ref.IsState() {
		return ctx.Store.CtyValue(ref.Key)
	}
	if ref.Static == cty.NilVal {
		return expr.Null
	}
	return ref.Static
}

// --- Expressions -----------------------------------------------------------

// evaluator evaluates expressions on behalf of a widget binding, subscribing the
// binding to every value of the store it reads.
type evaluator struct {
	store *state.Store
	scope *Scope
	sub   state.Subscriber // NilKey for evaluations which do not subscribe
	deps  []slab.Key
}

func (ev *evaluator) subscribe(key slab.Key) {
	if ev.sub.Key.IsNil() {
		return
	}
	if ev.store.Subscribe(key, ev.sub) {
		ev.deps = append(ev.deps, key)
	}
}

// resolve finds what an expression refers to. Containers traversed on the way are
// subscribed to, the result itself is not.
func (ev *evaluator) resolve(e expr.Expr) Ref {
	switch e := e.(type) {
	case nil:
		return noRef
	case expr.Primitive:
		return StaticRef(e.Value)
	case expr.List:
		if len(e.Elems) == 0 {
			return StaticRef(cty.EmptyTupleVal)
		}
		elems := make([]cty.Value, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = ev.load(el)
		}
		return StaticRef(cty.TupleVal(elems))
	case expr.Ident:
		ref, ok := ev.scope.Lookup(e.Name)
		if !ok {
			tracer().Debugf("name %q is not in scope", e.Name)
		}
		return ref
	case expr.Dot:
		lhs := ev.resolve(e.Lhs)
		if !lhs.IsState() {
			return StaticRef(staticIndex(lhs.Static, cty.StringVal(e.Field)))
		}
		ev.subscribe(lhs.Key)
		if key, ok := ev.store.Field(lhs.Key, e.Field); ok {
			return StateRef(key)
		}
		return noRef
	case expr.Index:
		lhs := ev.resolve(e.Lhs)
		index := ev.load(e.Index)
		if !lhs.IsState() {
			return StaticRef(staticIndex(lhs.Static, index))
		}
		ev.subscribe(lhs.Key)
		return ev.stateIndex(lhs.Key, index)
	case expr.Not:
		return StaticRef(cty.BoolVal(!expr.Truthy(ev.load(e.Expr))))
	case expr.Binary:
		return StaticRef(expr.Apply(e.Op, ev.load(e.Lhs), ev.load(e.Rhs)))
	}
	tracer().Errorf("cannot evaluate expression %v", e)
	return noRef
}

// load evaluates an expression to a value, subscribing to it if it is a value of
// the store.
func (ev *evaluator) load(e expr.Expr) cty.Value {
	ref := ev.resolve(e)
	if !ref.IsState() {
		if ref.Static == cty.NilVal {
			return expr.Null
		}
		return ref.Static
	}
	ev.subscribe(ref.Key)
	return ev.store.CtyValue(ref.Key)
}

func (ev *evaluator) stateIndex(key slab.Key, index cty.Value) Ref {
	if index == cty.NilVal || index.IsNull() || !index.IsKnown() {
		return noRef
	}
	switch ev.store.Kind(key) {
	case state.ListKind:
		if index.Type() != cty.Number {
			return noRef
		}
		i, acc := index.AsBigFloat().Int64()
		if acc != big.Exact {
			return noRef
		}
		if el, ok := ev.store.ElementAt(key, int(i)); ok {
			return StateRef(el)
		}
	case state.MapKind:
		if index.Type() != cty.String {
			return noRef
		}
		if f, ok := ev.store.Field(key, index.AsString()); ok {
			return StateRef(f)
		}
	}
	return noRef
}

func staticIndex(v, index cty.Value) cty.Value {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return expr.Null
	}
	if index == cty.NilVal || index.IsNull() || !index.IsKnown() {
		return expr.Null
	}
	ty := v.Type()
	switch {
	case ty.IsObjectType():
		if index.Type() == cty.String && ty.HasAttribute(index.AsString()) {
			return v.GetAttr(index.AsString())
		}
	case ty.IsTupleType(), ty.IsListType(), ty.IsMapType():
		if has := v.HasIndex(index); has.IsKnown() && has.True() {
			return v.Index(index)
		}
	}
	return expr.Null
}

// loadBinding (re-)evaluates a binding to a value. Subscriptions of a previous
// evaluation are removed first.
func (ctx *Context) loadBinding(b *Binding, widget slab.Key, index int, scope *Scope) {
	unsubscribe(ctx.Store, widget, index, b)
	if b.Expr == nil {
		b.Value = expr.Null
		return
	}
	ev := evaluator{store: ctx.Store, scope: scope, sub: state.Subscriber{Key: widget, Binding: index}}
	b.Value = ev.load(b.Expr)
	b.deps = ev.deps
}

// resolveBinding (re-)evaluates a binding to a reference. If target is set, the
// binding subscribes to the value referred to as well.
func (ctx *Context) resolveBinding(b *Binding, widget slab.Key, index int, scope *Scope, target bool) {
	unsubscribe(ctx.Store, widget, index, b)
	ev := evaluator{store: ctx.Store, scope: scope, sub: state.Subscriber{Key: widget, Binding: index}}
	b.Ref = ev.resolve(b.Expr)
	if target && b.Ref.IsState() {
		ev.subscribe(b.Ref.Key)
	}
	b.Value = ctx.Value(b.Ref)
	b.deps = ev.deps
}

// --- Blueprints ------------------------------------------------------------

// Mount evaluates blueprints as top-level widgets of the tree.
func (ctx *Context) Mount(bps []blueprint.Blueprint) error {
	return ctx.evalAll(bps, nodepath.Root(), ctx.Scope())
}

// Eval evaluates a blueprint with a given scope, appending the resulting widget as
// the last child of the node at parent.
func (ctx *Context) Eval(bp blueprint.Blueprint, parent nodepath.Path, scope *Scope) error {
	switch bp := bp.(type) {
	case *blueprint.Element:
		return ctx.evalElement(bp, parent, scope)
	case *blueprint.For:
		return ctx.evalFor(bp, parent, scope)
	case *blueprint.ControlFlow:
		return ctx.evalControlFlow(bp, parent, scope)
	case *blueprint.Component:
		return ctx.evalComponent(bp, parent, scope)
	case *blueprint.Slot:
		return ctx.evalSlot(bp, parent, scope)
	}
	return fmt.Errorf("cannot evaluate blueprint of type %T", bp)
}

func (ctx *Context) evalAll(bps []blueprint.Blueprint, parent nodepath.Path, scope *Scope) error {
	for _, bp := range bps {
		if err := ctx.Eval(bp, parent, scope); err != nil {
			return err
		}
	}
	return nil
}

// commit appends w as a child of parent. attrs must have been evaluated for key, the
// key the insert transaction predicts. No other widget may be inserted into the tree
// between predicting the key and committing.
func (ctx *Context) commit(tx *tree.InsertTransaction[Widget], w Widget, attrs Attributes) (nodepath.Path, error) {
	key, err := tx.CommitChild(w)
	if err != nil {
		for i := range attrs.Bindings {
			unsubscribe(ctx.Store, tx.Key(), i, &attrs.Bindings[i])
		}
		for _, v := range attrs.owned {
			ctx.Store.Release(v)
		}
		return nil, err
	}
	ctx.Attributes.insert(key, attrs)
	path, ok := ctx.Tree.Path(key)
	assertThat(ok, "committed widget %s has no path", key)
	return path, nil
}

func (ctx *Context) evalElement(bp *blueprint.Element, parent nodepath.Path, scope *Scope) error {
	tx := ctx.Tree.Insert(parent)
	key := tx.Key()
	attrs := Attributes{Bindings: make([]Binding, 1+len(bp.Attributes))}
	attrs.Bindings[0] = Binding{Name: "value", Expr: bp.Value}
	for i, a := range bp.Attributes {
		attrs.Bindings[i+1] = Binding{Name: a.Name, Expr: a.Value}
	}
	for i := range attrs.Bindings {
		ctx.loadBinding(&attrs.Bindings[i], key, i, scope)
	}
	path, err := ctx.commit(tx, &Element{Blueprint: bp}, attrs)
	if err != nil {
		return err
	}
	return ctx.evalAll(bp.Children, path, scope)
}

func (ctx *Context) evalFor(bp *blueprint.For, parent nodepath.Path, scope *Scope) error {
	tx := ctx.Tree.Insert(parent)
	key := tx.Key()
	attrs := Attributes{Bindings: []Binding{{Name: "collection", Expr: bp.Collection}}}
	ctx.resolveBinding(&attrs.Bindings[0], key, 0, scope, true)
	f := &For{Blueprint: bp, source: attrs.Bindings[0].Ref, rebuiltIn: -1}
	path, err := ctx.commit(tx, f, attrs)
	if err != nil {
		return err
	}
	return ctx.buildIterations(f, path, scope)
}

// collection returns references to the elements of a collection.
func (ctx *Context) collection(ref Ref) []Ref {
	if ref.IsState() {
		if ctx.Store.Kind(ref.Key) != state.ListKind {
			tracer().Infof("for: value %s is not a list", ref.Key)
			return nil
		}
		keys := ctx.Store.Elements(ref.Key)
		elems := make([]Ref, len(keys))
		for i, k := range keys {
			elems[i] = StateRef(k)
		}
		return elems
	}
	v := ref.Static
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return nil
	}
	if ty := v.Type(); !ty.IsTupleType() && !ty.IsListType() && !ty.IsSetType() {
		tracer().Infof("for: %s is not a collection", v.Type().FriendlyName())
		return nil
	}
	var elems []Ref
	for it := v.ElementIterator(); it.Next(); {
		_, el := it.Element()
		elems = append(elems, StaticRef(el))
	}
	return elems
}

func (ctx *Context) buildIterations(f *For, path nodepath.Path, scope *Scope) error {
	for i, elem := range ctx.collection(f.source) {
		it, ipath, err := ctx.commitIteration(f, path, i, elem, false)
		if err != nil {
			return err
		}
		if err := ctx.evalIterationBody(f, it, ipath, scope); err != nil {
			return err
		}
	}
	return nil
}

// commitIteration inserts an iteration for index i, either appending it or inserting
// it at its index.
func (ctx *Context) commitIteration(f *For, path nodepath.Path, i int, elem Ref, at bool) (*Iteration, nodepath.Path, error) {
	it := &Iteration{
		Binding:   f.Blueprint.Binding,
		LoopIndex: state.NewValue(ctx.Store, i),
		Element:   elem,
	}
	attrs := Attributes{owned: []slab.Key{it.LoopIndex.Key()}}
	if !at {
		ipath, err := ctx.commit(ctx.Tree.Insert(path), it, attrs)
		return it, ipath, err
	}
	ipath := nodepath.Child(path, i)
	key, err := ctx.Tree.Insert(ipath).CommitAt(it)
	if err != nil {
		ctx.Store.Release(it.LoopIndex.Key())
		return nil, nil, err
	}
	ctx.Attributes.insert(key, attrs)
	return it, ipath, nil
}

func (ctx *Context) evalIterationBody(f *For, it *Iteration, path nodepath.Path, scope *Scope) error {
	depth := scope.Depth()
	ctx.enterScope(it, scope)
	err := ctx.evalAll(f.Blueprint.Body, path, scope)
	scope.Truncate(depth)
	return err
}

func (ctx *Context) evalControlFlow(bp *blueprint.ControlFlow, parent nodepath.Path, scope *Scope) error {
	tx := ctx.Tree.Insert(parent)
	key := tx.Key()
	attrs := Attributes{Bindings: make([]Binding, len(bp.Branches))}
	for i, br := range bp.Branches {
		attrs.Bindings[i] = Binding{Name: "if", Expr: br.Cond}
		if br.Cond == nil {
			attrs.Bindings[i].Name = "else"
		}
	}
	cf := &ControlFlow{Blueprint: bp, Selected: ctx.selectBranch(&attrs, key, scope)}
	path, err := ctx.commit(tx, cf, attrs)
	if err != nil || cf.Selected < 0 {
		return err
	}
	return ctx.evalAll(bp.Branches[cf.Selected].Body, path, scope)
}

// selectBranch evaluates conditions in order and returns the index of the first
// branch whose condition holds, or -1.
func (ctx *Context) selectBranch(attrs *Attributes, key slab.Key, scope *Scope) int {
	for i := range attrs.Bindings {
		b := &attrs.Bindings[i]
		if b.Expr == nil {
			return i
		}
		ctx.loadBinding(b, key, i, scope)
		if expr.Truthy(b.Value) {
			return i
		}
	}
	return -1
}

func (ctx *Context) evalComponent(bp *blueprint.Component, parent nodepath.Path, scope *Scope) error {
	tx := ctx.Tree.Insert(parent)
	key := tx.Key()
	c := &Component{Blueprint: bp, ID: uuid.New(), State: state.NewMap(ctx.Store), key: key}
	attrs := Attributes{
		Bindings:  make([]Binding, len(bp.Attributes)),
		owned:     []slab.Key{c.State.Key()},
		component: c.ID,
	}
	for i, a := range bp.Attributes {
		attrs.Bindings[i] = Binding{Name: a.Name, Expr: a.Value}
		ctx.resolveBinding(&attrs.Bindings[i], key, i, scope, false)
	}
	initial := evaluator{store: ctx.Store, scope: scope, sub: state.Subscriber{Key: slab.NilKey}}
	for _, s := range bp.State {
		c.State.Insert(s.Name, ctx.Store.NewScalar(initial.load(s.Value)))
	}
	path, err := ctx.commit(tx, c, attrs)
	if err != nil {
		return err
	}
	ctx.Components.register(c.ID, key)
	return ctx.evalComponentBody(c, path, scope)
}

func (ctx *Context) evalComponentBody(c *Component, path nodepath.Path, scope *Scope) error {
	depth := scope.Depth()
	ctx.enterScope(c, scope)
	err := ctx.evalAll(c.Blueprint.Body, path, scope)
	scope.Truncate(depth)
	return err
}

func (ctx *Context) evalSlot(bp *blueprint.Slot, parent nodepath.Path, scope *Scope) error {
	s := &Slot{Name: bp.Name}
	path, err := ctx.commit(ctx.Tree.Insert(parent), s, Attributes{})
	if err != nil {
		return err
	}
	depth := scope.Depth()
	defer scope.Truncate(depth)
	owner := scope.PushSlot()
	if owner == nil {
		tracer().Infof("slot %q outside of a component", bp.Name)
		return nil
	}
	return ctx.evalAll(owner.Slots[bp.Name], path, scope)
}

// enterScope pushes the names a widget makes visible to its children.
func (ctx *Context) enterScope(w Widget, scope *Scope) {
	switch w := w.(type) {
	case *Iteration:
		scope.Push()
		scope.Bind(w.Binding, w.Element)
		scope.Bind("loop", StateRef(w.LoopIndex.Key()))
	case *Component:
		scope.PushComponent(w.Blueprint)
		scope.Bind("state", StateRef(w.State.Key()))
		if attrs := ctx.Attributes.Get(w.key); attrs != nil {
			for _, b := range attrs.Bindings {
				scope.Bind(b.Name, b.Ref)
			}
		}
	case *Slot:
		scope.PushSlot()
	}
}

// --- Removal ---------------------------------------------------------------

// Evict removes the attributes of widgets which are no longer part of the tree, and
// with them all their subscriptions and the values they own. It returns the number of
// widgets evicted.
func (ctx *Context) Evict(keys []slab.Key) int {
	n := 0
	for _, key := range keys {
		attrs, ok := ctx.Attributes.evict(key, ctx.Store)
		if !ok {
			continue
		}
		if attrs.component != uuid.Nil {
			ctx.Components.unregister(attrs.component)
		}
		ctx.evicted = append(ctx.evicted, key)
		n++
	}
	return n
}

// DrainEvicted returns the keys of all widgets evicted since the last call.
func (ctx *Context) DrainEvicted() []slab.Key {
	evicted := ctx.evicted
	ctx.evicted = nil
	return evicted
}

func (ctx *Context) truncate(path nodepath.Path) error {
	err := ctx.Tree.TruncateChildren(path)
	ctx.Evict(ctx.Tree.DrainRemoved())
	return err
}

func (ctx *Context) remove(path nodepath.Path) error {
	err := ctx.Tree.RelativeRemove(path)
	ctx.Evict(ctx.Tree.DrainRemoved())
	return err
}
