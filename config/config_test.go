package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSet_DottedPath(t *testing.T) {
	tree := New()
	require.NoError(t, tree.Set("udp.0.bind", "0.0.0.0:9000"))

	v, ok := tree.Get("udp.0.bind")
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:9000", v)
}

func TestGet_Absent(t *testing.T) {
	tree := New()
	_, ok := tree.Get("missing.path")
	assert.False(t, ok)
}

func TestSet_ConflictingIntermediate(t *testing.T) {
	tree := New()
	require.NoError(t, tree.Set("a", "leaf"))
	err := tree.Set("a.b", "x")
	assert.Error(t, err)
}

func TestSub_Detached(t *testing.T) {
	tree := New()
	require.NoError(t, tree.Set("channel.state", "Active"))
	require.NoError(t, tree.Set("channel.name", "e"))

	sub := tree.Sub("channel")
	v, ok := sub.Get("state")
	require.True(t, ok)
	assert.Equal(t, "Active", v)

	require.NoError(t, sub.Set("state", "Closed"))
	v, _ = tree.Get("channel.state")
	assert.Equal(t, "Active", v, "mutating the sub-view must not affect the parent")
}

func TestMerge_LastWriterWins(t *testing.T) {
	base := New()
	require.NoError(t, base.Set("k", "old"))
	require.NoError(t, base.Set("other", "keep"))

	incoming := New()
	require.NoError(t, incoming.Set("k", "new"))

	base.Merge(incoming)

	v, _ := base.Get("k")
	assert.Equal(t, "new", v)
	v, _ = base.Get("other")
	assert.Equal(t, "keep", v)
}

func TestMerge_DeepMaps(t *testing.T) {
	base := New()
	require.NoError(t, base.Set("udp.0.bind", "a"))
	require.NoError(t, base.Set("udp.1.bind", "b"))

	incoming := New()
	require.NoError(t, incoming.Set("udp.0.bind", "changed"))

	base.Merge(incoming)

	v, _ := base.Get("udp.0.bind")
	assert.Equal(t, "changed", v)
	v, _ = base.Get("udp.1.bind")
	assert.Equal(t, "b", v)
}

func TestBrowse_Glob(t *testing.T) {
	tree := New()
	require.NoError(t, tree.Set("udp.0.bind", "a"))
	require.NoError(t, tree.Set("udp.1.bind", "b"))
	require.NoError(t, tree.Set("tcp.0.bind", "c"))

	matches := tree.Browse("udp.*.bind")
	assert.ElementsMatch(t, []string{"udp.0.bind", "udp.1.bind"}, matches)
}

func TestLoad_YAML(t *testing.T) {
	raw := []byte("name: probe\nstat: true\nnested:\n  key: value\n")
	tree, err := Load(raw)
	require.NoError(t, err)

	v, ok := tree.Get("name")
	require.True(t, ok)
	assert.Equal(t, "probe", v)

	v, ok = tree.Get("nested.key")
	require.True(t, ok)
	assert.Equal(t, "value", v)
}

func TestImport_MergesIntoExisting(t *testing.T) {
	tree := New()
	require.NoError(t, tree.Set("name", "initial"))

	err := tree.Import([]byte("name: replaced\nextra: 1\n"))
	require.NoError(t, err)

	v, _ := tree.Get("name")
	assert.Equal(t, "replaced", v)
	v, _ = tree.Get("extra")
	assert.Equal(t, 1, v)
}
