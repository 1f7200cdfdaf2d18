package slab

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenSlabInsertGet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.slab")
	defer teardown()
	//
	s := NewGenSlab[int](4)
	k1 := s.Insert(1)
	k2 := s.Insert(2)
	v, ok := s.Get(k1)
	require.True(t, ok)
	assert.Equal(t, 1, v)
	v, ok = s.Get(k2)
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, s.Len())
}

func TestGenSlabZeroValueIsUsable(t *testing.T) {
	var s GenSlab[string]
	assert.Equal(t, NewKey(0, 0), s.NextKey())
	k := s.Insert("x")
	assert.Equal(t, NewKey(0, 0), k)
	assert.Equal(t, "x", s.Remove(k))
	assert.Equal(t, NewKey(0, 1), s.NextKey())
}

func TestGenerationSafety(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.slab")
	defer teardown()
	//
	s := NewGenSlab[string](0)
	lilly := s.Insert("Lilly")
	assert.Equal(t, "Lilly", s.Remove(lilly))
	_, ok := s.Get(lilly)
	assert.False(t, ok, "removed key must not resolve")
	//
	bob := s.Insert("Bob") // re-uses the slot
	assert.Equal(t, lilly.Index(), bob.Index())
	assert.NotEqual(t, lilly.Generation(), bob.Generation())
	_, ok = s.Get(lilly)
	assert.False(t, ok, "stale key must not resolve to the new occupant")
	assert.Nil(t, s.GetMut(lilly))
	v, ok := s.Get(bob)
	require.True(t, ok)
	assert.Equal(t, "Bob", v)
}

func TestGenerationSafetyManyRounds(t *testing.T) {
	s := NewGenSlab[int](0)
	var stale []Key
	for round := 0; round < 50; round++ {
		k := s.Insert(round)
		for _, old := range stale {
			if _, ok := s.Get(old); ok {
				t.Fatalf("round %d: stale key %s resolved", round, old)
			}
		}
		s.Remove(k)
		stale = append(stale, k)
	}
}

func TestFreeListOrder(t *testing.T) {
	s := NewGenSlab[int](0)
	a := s.Insert(0)
	b := s.Insert(1)
	c := s.Insert(2)
	s.Remove(a)
	s.Remove(c)
	// last removed slot is re-used first
	assert.Equal(t, c.Index(), s.Insert(3).Index())
	assert.Equal(t, a.Index(), s.Insert(4).Index())
	assert.Equal(t, 3, s.Insert(5).Index())
	_, ok := s.Get(b)
	assert.True(t, ok)
}

func TestDoubleRemovePanics(t *testing.T) {
	s := NewGenSlab[int](0)
	k := s.Insert(7)
	s.Remove(k)
	assert.Panics(t, func() { s.Remove(k) })
	_, ok := s.TryRemove(k)
	assert.False(t, ok)
}

func TestReplaceBumpsGeneration(t *testing.T) {
	s := NewGenSlab[string](0)
	k := s.Insert("hello world")
	k2, old := s.Replace(k, "updated")
	assert.Equal(t, "hello world", old)
	assert.False(t, s.Contains(k))
	assert.Equal(t, "updated", s.Remove(k2))
}

func TestCheckoutRestore(t *testing.T) {
	s := NewGenSlab[int](0)
	k := s.Insert(1)
	ticket := s.Checkout(k)
	_, ok := s.Get(k)
	assert.False(t, ok, "checked out value must not be visible")
	assert.Panics(t, func() { s.Checkout(k) })
	ticket.Value = 2
	s.Restore(ticket)
	v, _ := s.Get(k)
	assert.Equal(t, 2, v)
	assert.Panics(t, func() { s.Restore(ticket) })
}

func TestEachAndKeys(t *testing.T) {
	s := NewGenSlab[int](0)
	keys := []Key{s.Insert(10), s.Insert(11), s.Insert(12)}
	s.Remove(keys[1])
	assert.Equal(t, []Key{keys[0], keys[2]}, s.Keys())
	sum := 0
	s.Each(func(_ Key, v *int) bool {
		sum += *v
		return true
	})
	assert.Equal(t, 22, sum)
	t.Logf("\n%s", s.DumpState())
}

func TestPlainSlab(t *testing.T) {
	var s Slab[string]
	i := s.Insert("a")
	j := s.Insert("b")
	assert.Equal(t, "a", s.Remove(i))
	assert.Equal(t, i, s.Insert("c"))
	s.InsertAt(5, "f")
	v, ok := s.Get(5)
	assert.True(t, ok)
	assert.Equal(t, "f", v)
	assert.Equal(t, 3, s.Len())
	assert.Panics(t, func() { s.Remove(3) })
	assert.Equal(t, 4, s.Insert("x"), "gaps left by InsertAt are re-used")
	_, ok = s.Get(j)
	assert.True(t, ok)
}

func TestSecondaryMap(t *testing.T) {
	names := NewGenSlab[string](0)
	lilly := names.Insert("Lilly")
	var food SecondaryMap[string]
	food.Insert(lilly, "apple")
	v, ok := food.Get(lilly)
	require.True(t, ok)
	assert.Equal(t, "apple", v)
	//
	names.Remove(lilly)
	bob := names.Insert("Bob")
	_, ok = food.Get(bob)
	assert.False(t, ok, "data of the old occupant must not leak to the new one")
	assert.Equal(t, "apple", food.Remove(lilly))
	_, ok = food.TryRemove(lilly)
	assert.False(t, ok)
}
