package widgets

import (
	"errors"
	"fmt"

	"github.com/npillmayer/reactree/nodepath"
	"github.com/npillmayer/reactree/slab"
	"github.com/npillmayer/reactree/state"
	"github.com/npillmayer/reactree/tree"
)

// Apply applies change records to the widgets subscribed to them, in order. Records for
// widgets which are no longer part of the tree are skipped. Errors do not stop
// processing of the remaining records.
//
// A call to Apply is a pass: a For which has been rebuilt from its collection during
// a pass ignores insertions and removals reported for the same pass, as the rebuild
// already reflects them.
func (ctx *Context) Apply(records []state.Record) []error {
	ctx.pass++
	var errs []error
	for _, rec := range records {
		for _, sub := range rec.Subscribers {
			if err := ctx.Update(sub, rec); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs
}

// Pass returns the number of passes applied so far.
func (ctx *Context) Pass() int {
	return ctx.pass
}

// Update applies a single change record to a single subscribed widget. The scope of
// the widget is rebuilt from its ancestors on the way down the tree.
func (ctx *Context) Update(sub state.Subscriber, rec state.Record) error {
	path, ok := ctx.Tree.Path(sub.Key)
	if !ok {
		tracer().Debugf("skipping %s for removed widget %s", rec.Change, sub.Key)
		return nil
	}
	u := &updater{ctx: ctx, sub: sub, rec: rec, scope: ctx.Scope()}
	err := ctx.Tree.ApplyPathFinder(path, u)
	if err == nil {
		err = u.err
	}
	if err != nil && errors.Is(err, tree.ErrNoSuchPath) {
		tracer().Errorf("update of %s at %s: %v", sub.Key, path, err)
		return &TargetMissingError{Widget: sub.Key, Path: path, Change: rec.Change, Err: err}
	}
	return err
}

type updater struct {
	ctx   *Context
	sub   state.Subscriber
	rec   state.Record
	scope *Scope
	err   error
}

func (u *updater) Parent(w *Widget, _ nodepath.Path) {
	u.ctx.enterScope(*w, u.scope)
}

func (u *updater) Apply(w *Widget, path nodepath.Path, _ *tree.Tree[Widget]) {
	key, index := u.sub.Key, u.sub.Binding
	switch w := (*w).(type) {
	case *Element:
		if b := u.ctx.Attributes.Get(key).Binding(index); b != nil {
			u.ctx.loadBinding(b, key, index, u.scope)
		}
	case *For:
		u.err = u.ctx.updateFor(w, key, path, u.rec, u.scope)
	case *ControlFlow:
		u.err = u.ctx.updateControlFlow(w, key, path, u.scope)
	case *Component:
		u.err = u.ctx.updateComponent(w, key, index, path, u.scope)
	default:
		tracer().Debugf("%s widget %s does not subscribe", w.Kind(), key)
	}
}

func (ctx *Context) updateFor(f *For, key slab.Key, path nodepath.Path, rec state.Record, scope *Scope) error {
	switch rec.Change.Kind {
	case state.Inserted, state.Removed:
		if !f.source.IsState() || rec.Source != f.source.Key {
			tracer().Debugf("for %s: ignoring %s of former collection %s", key, rec.Change, rec.Source)
			return nil
		}
		if f.rebuiltIn == ctx.pass {
			return nil
		}
		if rec.Change.Kind == state.Inserted {
			return ctx.insertIteration(f, path, rec.Change.Index, StateRef(rec.Change.Element), scope)
		}
		return ctx.removeIteration(path, rec.Change.Index)
	case state.Dropped:
		if f.source.IsState() && rec.Source == f.source.Key {
			f.source = noRef
			return ctx.truncate(path)
		}
	}
	// the collection itself or a container on the way to it has changed
	b := ctx.Attributes.Get(key).Binding(0)
	assertThat(b != nil, "for %s has no collection binding", key)
	old := f.source
	ctx.resolveBinding(b, key, 0, scope, true)
	f.source = b.Ref
	if rec.Source != old.Key && f.source.Same(old) {
		return nil
	}
	if err := ctx.truncate(path); err != nil {
		return err
	}
	f.rebuiltIn = ctx.pass
	return ctx.buildIterations(f, path, scope)
}

// insertIteration inserts an iteration at index i. Iterations after it have their
// loop index incremented.
func (ctx *Context) insertIteration(f *For, path nodepath.Path, i int, elem Ref, scope *Scope) error {
	it, ipath, err := ctx.commitIteration(f, path, i, elem, true)
	if err != nil {
		return fmt.Errorf("insert iteration %d: %w", i, err)
	}
	ctx.shiftLoopIndices(ipath, +1)
	return ctx.evalIterationBody(f, it, ipath, scope)
}

// removeIteration removes the iteration at index i. Iterations after it have their
// loop index decremented.
func (ctx *Context) removeIteration(path nodepath.Path, i int) error {
	ipath := nodepath.Child(path, i)
	if err := ctx.shiftLoopIndices(ipath, -1); err != nil {
		return fmt.Errorf("remove iteration %d: %w", i, err)
	}
	return ctx.remove(ipath)
}

func (ctx *Context) shiftLoopIndices(path nodepath.Path, delta int) error {
	after, err := ctx.Tree.ChildrenAfter(path)
	if err != nil {
		return err
	}
	for _, node := range after {
		w, _ := ctx.Tree.Get(node.Key())
		if it, ok := w.(*Iteration); ok {
			it.LoopIndex.Update(func(i int) int { return i + delta })
		}
	}
	return nil
}

func (ctx *Context) updateControlFlow(cf *ControlFlow, key slab.Key, path nodepath.Path, scope *Scope) error {
	attrs := ctx.Attributes.Get(key)
	if attrs == nil {
		return nil
	}
	selected := ctx.selectBranch(attrs, key, scope)
	if selected == cf.Selected {
		return nil
	}
	tracer().Debugf("control flow %s switches from branch %d to %d", key, cf.Selected, selected)
	if err := ctx.truncate(path); err != nil {
		return err
	}
	cf.Selected = selected
	if selected < 0 {
		return nil
	}
	return ctx.evalAll(cf.Blueprint.Branches[selected].Body, path, scope)
}

func (ctx *Context) updateComponent(c *Component, key slab.Key, index int, path nodepath.Path, scope *Scope) error {
	b := ctx.Attributes.Get(key).Binding(index)
	if b == nil {
		return nil
	}
	old := b.Ref
	ctx.resolveBinding(b, key, index, scope, false)
	if b.Ref.Same(old) {
		return nil
	}
	if err := ctx.truncate(path); err != nil {
		return err
	}
	return ctx.evalComponentBody(c, path, scope)
}
