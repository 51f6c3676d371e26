package merkle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashStringDeterministic(t *testing.T) {
	a := HashString("hello")
	b := HashString("hello")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, HashString("world"))
}

func TestHashBytesMatchesHashString(t *testing.T) {
	got, err := HashBytes(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, HashString("hello"), got)
}

func TestBuildTreeLeavesAndRoot(t *testing.T) {
	hashes := map[string]string{
		"a.go":          HashString("a"),
		"pkg/b.go":      HashString("b"),
		"pkg/sub/c.go":  HashString("c"),
	}

	tree := BuildTree(hashes)

	for path, h := range hashes {
		node, ok := tree[path]
		require.True(t, ok, "missing leaf %s", path)
		assert.False(t, node.IsDir)
		assert.Equal(t, h, node.Hash)
	}

	root, ok := tree["."]
	require.True(t, ok, "root directory must always be present")
	assert.True(t, root.IsDir)

	pkg, ok := tree["pkg"]
	require.True(t, ok, "intermediate directory with only a subdirectory child must be present")
	assert.True(t, pkg.IsDir)

	sub, ok := tree["pkg/sub"]
	require.True(t, ok)
	assert.True(t, sub.IsDir)
}

func TestBuildTreeDeterministicAcrossInputOrder(t *testing.T) {
	hashes := map[string]string{
		"z.go":     HashString("z"),
		"a/b.go":   HashString("b"),
		"a/c/d.go": HashString("d"),
	}

	first := BuildTree(hashes)
	second := BuildTree(hashes)
	assert.Equal(t, first, second)
}

func TestBuildTreeChangesWhenFileChanges(t *testing.T) {
	base := map[string]string{"a/b.go": HashString("b")}
	changed := map[string]string{"a/b.go": HashString("b-modified")}

	t1 := BuildTree(base)
	t2 := BuildTree(changed)

	assert.NotEqual(t, t1["a"].Hash, t2["a"].Hash)
	assert.NotEqual(t, t1["."].Hash, t2["."].Hash)
}
