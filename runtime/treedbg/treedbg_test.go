package treedbg

import (
	"bytes"
	"strings"
	"testing"

	"github.com/npillmayer/reactree/runtime"
	"github.com/npillmayer/reactree/state"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphViz(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reactree.widgets")
	defer teardown()
	//
	rt := runtime.New()
	list := state.NewList(rt.Store(), "a", "b")
	rt.Bind("list", list.Key())
	require.NoError(t, rt.MountYAML([]byte(`
- element: border
  attributes: { width: 10 }
  children:
    - for: x
      in: $list
      body: [ { element: text, value: $x } ]
`)))
	var buf bytes.Buffer
	ToGraphViz(rt.Context(), &buf, true)
	dot := buf.String()
	Log(rt.Context(), t)
	assert.True(t, strings.HasPrefix(dot, "digraph g {"))
	assert.True(t, strings.HasSuffix(dot, "}\n"))
	assert.Contains(t, dot, `label="border[width: 10]"`)
	assert.Contains(t, dot, `label="text a"`)
	assert.Contains(t, dot, `label="<for>"`)
	// border -> for, for -> 2 iterations, 2 iterations -> text
	assert.Equal(t, 5, strings.Count(dot, "[weight=1]"))
	assert.Contains(t, dot, "width:</td><td>10</td><td>(0)")
	assert.Contains(t, dot, "collection:</td><td>[a, b]</td><td>(1)")
}
