package tree

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/reactree/nodepath"
	"github.com/npillmayer/reactree/slab"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tp "github.com/xlab/treeprint"
)

func TestInsertAndCommit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.tree")
	defer teardown()
	//
	tree := New[int]()
	tx := tree.Insert(nodepath.Root())
	key := tx.Key()
	_, ok := tree.Get(key)
	assert.False(t, ok, "uncommitted value must not be visible")
	k, err := tx.CommitChild(123)
	require.NoError(t, err)
	assert.Equal(t, key, k)
	v, ok := tree.Get(key)
	require.True(t, ok)
	assert.Equal(t, 123, v)
}

func TestGetByPath(t *testing.T) {
	tree := New[int]()
	one, err := tree.Insert(nodepath.Root()).CommitChild(1)
	require.NoError(t, err)
	path, _ := tree.Path(one)
	_, err = tree.Insert(path).CommitChild(2)
	require.NoError(t, err)
	v, ok := tree.GetByPath(nodepath.New(0))
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	v, ok = tree.GetByPath(nodepath.New(0, 0))
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	_, ok = tree.GetByPath(nodepath.New(0, 1))
	assert.False(t, ok)
}

func TestInsertAtPath(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.tree")
	defer teardown()
	//
	tree := New[int]()
	_, err := tree.Insert(nodepath.Root()).CommitChild(0)
	require.NoError(t, err)
	key1, _ := tree.Insert(nodepath.Root()).CommitChild(1)
	parent, _ := tree.Path(key1)
	key10, _ := tree.Insert(parent).CommitChild(5)
	key11, _ := tree.Insert(parent).CommitChild(6)
	assertPath(t, tree, key1, 1)
	assertPath(t, tree, key10, 1, 0)
	assertPath(t, tree, key11, 1, 1)
	//
	// insert a new first node, which shifts all the other nodes
	_, err = tree.Insert(nodepath.New(0)).CommitAt(123)
	require.NoError(t, err)
	assertPath(t, tree, key1, 2)
	assertPath(t, tree, key10, 2, 0)
	assertPath(t, tree, key11, 2, 1)
	//
	// insert a new last node
	key3, err := tree.Insert(nodepath.New(3)).CommitAt(999)
	require.NoError(t, err)
	assertPath(t, tree, key3, 3)
	require.NoError(t, tree.CheckConsistency())
	t.Logf("\n%s", tree.DebugString())
}

func TestCommitAtBeyondEnd(t *testing.T) {
	tree := New[int]()
	_, err := tree.Insert(nodepath.New(1)).CommitAt(1)
	assert.True(t, errors.Is(err, ErrNoSuchPath))
	_, err = tree.Insert(nodepath.New(4, 0)).CommitChild(1)
	assert.True(t, errors.Is(err, ErrNoSuchPath))
	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, 0, tree.Transactions())
	_, err = tree.Insert(nodepath.New(0)).CommitAt(1)
	assert.NoError(t, err)
}

func TestRelativeRemove(t *testing.T) {
	tree := New[string]()
	a, _ := tree.Insert(nodepath.Root()).CommitChild("a")
	b, _ := tree.Insert(nodepath.Root()).CommitChild("b")
	c, _ := tree.Insert(nodepath.Root()).CommitChild("c")
	c0, _ := tree.Insert(nodepath.New(2)).CommitChild("c0")
	b0, _ := tree.Insert(nodepath.New(1)).CommitChild("b0")
	//
	require.NoError(t, tree.RelativeRemove(nodepath.New(1)))
	assertPath(t, tree, a, 0)
	assertPath(t, tree, c, 1)
	assertPath(t, tree, c0, 1, 0)
	_, ok := tree.Get(b)
	assert.False(t, ok)
	_, ok = tree.Get(b0)
	assert.False(t, ok, "children are removed together with their parent")
	assert.ElementsMatch(t, []slab.Key{b, b0}, tree.DrainRemoved())
	assert.Empty(t, tree.DrainRemoved())
	//
	err := tree.RelativeRemove(nodepath.New(2))
	assert.True(t, errors.Is(err, ErrNoSuchPath))
	require.NoError(t, tree.CheckConsistency())
}

func TestRemoveChildren(t *testing.T) {
	tree := New[int]()
	_, _ = tree.Insert(nodepath.Root()).CommitChild(1)
	path := nodepath.New(0, 0)
	_, err := tree.Insert(path).CommitAt(2)
	require.NoError(t, err)
	_, ok := tree.GetByPath(path)
	assert.True(t, ok)
	require.NoError(t, tree.RelativeRemove(path))
	_, ok = tree.GetByPath(path)
	assert.False(t, ok)
	//
	for i := 0; i < 3; i++ {
		_, _ = tree.Insert(nodepath.New(0)).CommitChild(10 + i)
	}
	require.NoError(t, tree.TruncateChildren(nodepath.New(0)))
	children, err := tree.Children(nodepath.New(0))
	require.NoError(t, err)
	assert.Empty(t, children)
	assert.Equal(t, 1, tree.Len())
	assert.Len(t, tree.DrainRemoved(), 4)
}

func TestChildrenAfter(t *testing.T) {
	tree := New[int]()
	var keys []slab.Key
	for i := 0; i < 4; i++ {
		k, _ := tree.Insert(nodepath.Root()).CommitChild(i)
		keys = append(keys, k)
	}
	after, err := tree.ChildrenAfter(nodepath.New(1))
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, keys[2], after[0].Key())
	assert.Equal(t, keys[3], after[1].Key())
}

func TestWithValueMutChecksOut(t *testing.T) {
	tree := New[int]()
	key, _ := tree.Insert(nodepath.Root()).CommitChild(0)
	_, _ = tree.Insert(nodepath.Root()).CommitChild(1)
	ok := tree.WithValueMut(key, func(path nodepath.Path, value *int, tr *Tree[int]) {
		_, ok := tr.Get(key)
		assert.False(t, ok, "value is checked out")
		assert.Panics(t, func() { tr.WithValueMut(key, func(nodepath.Path, *int, *Tree[int]) {}) })
		_, err := tr.Insert(path).CommitChild(7)
		assert.NoError(t, err)
		*value = 42
	})
	require.True(t, ok)
	v, _ := tree.Get(key)
	assert.Equal(t, 42, v)
	v, _ = tree.GetByPath(nodepath.New(0, 0))
	assert.Equal(t, 7, v)
	require.NoError(t, tree.CheckConsistency())
}

func TestPathKeyAgreement(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.tree")
	defer teardown()
	//
	rnd := rand.New(rand.NewSource(4711))
	tree := New[int](WithCapacity(64))
	var live []slab.Key
	for round := 0; round < 500; round++ {
		live = liveKeys(tree)
		var parent nodepath.Path
		if len(live) > 0 && rnd.Intn(3) > 0 {
			parent, _ = tree.Path(live[rnd.Intn(len(live))])
		}
		children, err := tree.Children(parent)
		require.NoError(t, err)
		switch op := rnd.Intn(10); {
		case op < 4:
			_, err = tree.Insert(parent).CommitChild(round)
		case op < 7:
			at := nodepath.Child(parent, rnd.Intn(len(children)+1))
			_, err = tree.Insert(at).CommitAt(round)
		case op < 9 && len(children) > 0:
			err = tree.RelativeRemove(nodepath.Child(parent, rnd.Intn(len(children))))
		case op == 9 && len(parent) > 0:
			err = tree.TruncateChildren(parent)
		}
		require.NoError(t, err)
		require.NoError(t, tree.CheckConsistency(), "round %d", round)
	}
	// walking by path and walking by key yields the same nodes
	for _, k := range liveKeys(tree) {
		path, ok := tree.Path(k)
		require.True(t, ok)
		id, ok := tree.ID(path)
		require.True(t, ok)
		assert.Equal(t, k, id)
	}
	t.Logf("tree with %d nodes after %d transactions", tree.Len(), tree.Transactions())
}

func TestVisitor(t *testing.T) {
	tree := buildSample(t)
	dump := treeDump(tree)
	t.Logf("\n%s", dump)
	expected := `.
├── 1
│   ├── 10
│   └── 11
└── 2
    └── 20
`
	if diff := cmp.Diff(expected, dump); diff != "" {
		t.Errorf("tree dump mismatch (-want +got):\n%s", diff)
	}
}

type pathCollector struct {
	parents []int
	target  int
}

func (pc *pathCollector) Parent(value *int, _ nodepath.Path) { pc.parents = append(pc.parents, *value) }
func (pc *pathCollector) Apply(value *int, _ nodepath.Path, _ *Tree[int]) {
	pc.target = *value
}

func TestPathFinder(t *testing.T) {
	tree := buildSample(t)
	pc := &pathCollector{}
	require.NoError(t, tree.ApplyPathFinder(nodepath.New(1, 0), pc))
	assert.Equal(t, []int{2}, pc.parents)
	assert.Equal(t, 20, pc.target)
	err := tree.ApplyPathFinder(nodepath.New(1, 1), pc)
	assert.True(t, errors.Is(err, ErrNoSuchPath))
}

func TestWalker(t *testing.T) {
	tree := buildSample(t)
	leafs, err := NewWalker(tree, nodepath.Root()).DescendentsWith(NodeIsLeaf[int]()).Result()
	require.NoError(t, err)
	assert.Len(t, leafs, 3)
	var order []int
	_, err = NewWalker(tree, nodepath.Root()).TopDown(func(_ *Node, v *int, _ nodepath.Path) error {
		order = append(order, *v)
		return nil
	}).Result()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 10, 11, 2, 20}, order)
	_, err = NewWalker(tree, nodepath.New(7)).Result()
	assert.True(t, errors.Is(err, ErrEmptyTree))
}

// --- Helpers ---------------------------------------------------------------

func assertPath[T any](t *testing.T, tree *Tree[T], key slab.Key, indices ...int) {
	t.Helper()
	path, ok := tree.Path(key)
	require.True(t, ok, "no path for %s", key)
	if diff := cmp.Diff(nodepath.New(indices...), path); diff != "" {
		t.Errorf("path of %s mismatch (-want +got):\n%s", key, diff)
	}
}

func liveKeys[T any](tree *Tree[T]) []slab.Key {
	var keys []slab.Key
	tree.ApplyVisitor(&keyCollector[T]{keys: &keys})
	return keys
}

type keyCollector[T any] struct{ keys *[]slab.Key }

func (kc *keyCollector[T]) Visit(_ *T, _ nodepath.Path, key slab.Key) VisitResult {
	*kc.keys = append(*kc.keys, key)
	return Continue
}
func (kc *keyCollector[T]) Push() {}
func (kc *keyCollector[T]) Pop()  {}

func buildSample(t *testing.T) *Tree[int] {
	tree := New[int]()
	for _, v := range []int{1, 2} {
		_, err := tree.Insert(nodepath.Root()).CommitChild(v)
		require.NoError(t, err)
	}
	for _, v := range []int{10, 11} {
		_, _ = tree.Insert(nodepath.New(0)).CommitChild(v)
	}
	_, _ = tree.Insert(nodepath.New(1)).CommitChild(20)
	return tree
}

type treeprinter struct {
	stack []tp.Tree
	last  tp.Tree
}

func (p *treeprinter) Visit(value *int, _ nodepath.Path, _ slab.Key) VisitResult {
	p.last = p.stack[len(p.stack)-1].AddBranch(*value)
	return Continue
}
func (p *treeprinter) Push() { p.stack = append(p.stack, p.last) }
func (p *treeprinter) Pop()  { p.stack = p.stack[:len(p.stack)-1] }

func treeDump(tree *Tree[int]) string {
	root := tp.New()
	tree.ApplyVisitor(&treeprinter{stack: []tp.Tree{root}})
	return root.String()
}
