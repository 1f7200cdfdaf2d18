package runtime

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/npillmayer/reactree/blueprint"
	"github.com/npillmayer/reactree/nodepath"
	"github.com/npillmayer/reactree/slab"
	"github.com/npillmayer/reactree/state"
	"github.com/npillmayer/reactree/tree"
	"github.com/npillmayer/reactree/widgets"
	"github.com/zclconf/go-cty/cty"
)

// Layout lays out and paints the widget tree of a runtime, usually by walking it
// (see Runtime.Walk).
type Layout func(rt *Runtime) error

type config struct {
	capacity  int
	maxPasses int
	checks    bool
	layout    Layout
}

// Option is a type to help initializing runtimes at creation time.
type Option func(config) config

// WithCapacity pre-allocates storage for n widgets.
func WithCapacity(n int) Option {
	return func(c config) config {
		c.capacity = n
		return c
	}
}

// WithMaxPasses limits the number of passes over the change queue per frame.
// The default is 1024.
func WithMaxPasses(n int) Option {
	return func(c config) config {
		c.maxPasses = max(1, n)
		return c
	}
}

// WithConsistencyChecks makes every frame check the paths of the widget tree.
// This is expensive and meant for tests.
func WithConsistencyChecks(on bool) Option {
	return func(c config) config {
		c.checks = on
		return c
	}
}

// WithLayout sets the layout to call after a frame changed the tree.
func WithLayout(layout Layout) Option {
	return func(c config) config {
		c.layout = layout
		return c
	}
}

// Runtime owns a state store and a widget tree, and keeps the tree in sync with
// the store.
type Runtime struct {
	conf        config
	store       *state.Store
	tree        *tree.Tree[widgets.Widget]
	ctx         *widgets.Context
	frames      int
	fingerprint uint64
	laidOut     bool
}

// New creates a runtime with an empty store and an empty tree.
func New(opts ...Option) *Runtime {
	conf := config{maxPasses: 1024}
	for _, option := range opts {
		conf = option(conf)
	}
	rt := &Runtime{
		conf:  conf,
		store: state.NewStore(),
		tree:  tree.New[widgets.Widget](tree.WithCapacity(conf.capacity)),
	}
	rt.ctx = widgets.NewContext(rt.store, rt.tree)
	return rt
}

// Store returns the state store of the runtime.
func (rt *Runtime) Store() *state.Store {
	return rt.store
}

// Context returns the evaluation context of the runtime.
func (rt *Runtime) Context() *widgets.Context {
	return rt.ctx
}

// Tree returns the widget tree.
func (rt *Runtime) Tree() *tree.Tree[widgets.Widget] {
	return rt.tree
}

// Bind makes a value of the store visible to blueprints under a name. Names have to
// be bound before mounting blueprints referring to them.
func (rt *Runtime) Bind(name string, key slab.Key) {
	rt.ctx.Bind(name, widgets.StateRef(key))
}

// BindStatic makes a constant visible to blueprints under a name.
func (rt *Runtime) BindStatic(name string, v cty.Value) {
	rt.ctx.Bind(name, widgets.StaticRef(v))
}

// Mount evaluates blueprints as top-level widgets.
func (rt *Runtime) Mount(bps ...blueprint.Blueprint) error {
	return rt.ctx.Mount(bps)
}

// MountYAML reads blueprints from a YAML document and mounts them.
func (rt *Runtime) MountYAML(src []byte) error {
	bps, err := blueprint.FromYAML(src)
	if err != nil {
		return err
	}
	return rt.ctx.Mount(bps)
}

// Unmount removes all widgets.
func (rt *Runtime) Unmount() {
	if err := rt.tree.TruncateChildren(nodepath.Root()); err != nil {
		tracer().Errorf("unmount: %v", err)
	}
	rt.ctx.Evict(rt.tree.DrainRemoved())
}

// Report tells what a frame did.
type Report struct {
	Frame       int                  // number of the frame, starting at 1
	Passes      int                  // passes over the change queue
	Records     int                  // change records applied
	Evicted     mapset.Set[slab.Key] // widgets removed from the tree
	Watchers    []state.Watcher      // watchers triggered since the previous frame
	Fingerprint uint64               // fingerprint of the tree after the frame
	LaidOut     bool                 // layout has been called
	Err         error                // nil or a *multierror.Error
}

func (r *Report) String() string {
	return fmt.Sprintf("frame %d: %d records in %d passes, %d evicted, layout=%v",
		r.Frame, r.Records, r.Passes, r.Evicted.Cardinality(), r.LaidOut)
}

// Frame applies all pending changes to the widget tree. Errors of single changes do
// not stop the frame; they are collected in the report.
func (rt *Runtime) Frame() *Report {
	rt.frames++
	r := &Report{Frame: rt.frames, Evicted: mapset.NewThreadUnsafeSet[slab.Key]()}
	var errs *multierror.Error
	for rt.store.Pending() > 0 {
		if r.Passes == rt.conf.maxPasses {
			errs = multierror.Append(errs, fmt.Errorf("%w: %d changes pending after %d passes",
				ErrNoFixedPoint, rt.store.Pending(), r.Passes))
			break
		}
		records := rt.store.Drain()
		r.Passes++
		r.Records += len(records)
		errs = multierror.Append(errs, rt.ctx.Apply(records)...)
		rt.ctx.Evict(rt.tree.DrainRemoved())
		r.Evicted.Append(rt.ctx.DrainEvicted()...)
	}
	r.Watchers = rt.store.DrainWatchers()
	if rt.conf.checks {
		if err := rt.tree.CheckConsistency(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	r.Fingerprint = rt.ctx.Fingerprint()
	if rt.conf.layout != nil && (!rt.laidOut || r.Fingerprint != rt.fingerprint) {
		if err := rt.conf.layout(rt); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("layout: %w", err))
		}
		r.LaidOut, rt.laidOut = true, true
	}
	rt.fingerprint = r.Fingerprint
	r.Err = errs.ErrorOrNil()
	tracer().Debugf("%s", r)
	return r
}

// Stringify returns a textual dump of the widget tree.
func (rt *Runtime) Stringify() string {
	return rt.ctx.Stringify()
}

// ComponentState returns the state of a component instance.
func (rt *Runtime) ComponentState(id uuid.UUID) (state.Map, bool) {
	key, ok := rt.ctx.Components.Lookup(id)
	if !ok {
		return state.Map{}, false
	}
	w, ok := rt.tree.Get(key)
	if !ok {
		return state.Map{}, false
	}
	c, ok := w.(*widgets.Component)
	if !ok {
		return state.Map{}, false
	}
	return c.State, true
}

// Components returns the IDs of all instances of a named component, in tree order.
func (rt *Runtime) Components(name string) []uuid.UUID {
	var ids []uuid.UUID
	rt.Walk(func(n Node) error {
		if c, ok := n.Widget.(*widgets.Component); ok && c.Blueprint.Name == name {
			ids = append(ids, c.ID)
		}
		return nil
	})
	return ids
}
