package syncer

import (
	"testing"

	"github.com/reggie-db/reggie-build/internal/manifest"
	"github.com/reggie-db/reggie-build/internal/testutil"
	"github.com/reggie-db/reggie-build/internal/workspace"
	"github.com/stretchr/testify/require"
)

const rootManifest = `[project]
name = "root"
version = "0.0.1"
dependencies = []

[build-system]
requires = ["hatchling"]
build-backend = "hatchling.build"

[tool.member-project.tool.ruff]
line-length = 120

[tool.uv.workspace]
members = ["packages/*"]
`

// loadWorkspace writes a root plus the given members (dir -> manifest) and
// loads the tree.
func loadWorkspace(t *testing.T, root string, members map[string]string) *workspace.Tree {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteManifest(t, dir, ".", root)
	for d, content := range members {
		testutil.WriteManifest(t, dir, d, content)
	}
	tree, err := workspace.Load(dir)
	require.NoError(t, err)
	return tree
}

func member(t *testing.T, tree *workspace.Tree, name string) *manifest.Node {
	t.Helper()
	n, ok := tree.Lookup(name)
	require.True(t, ok, "project %s not found", name)
	return n
}

func strs(t *testing.T, n *manifest.Node, keys ...string) []string {
	t.Helper()
	v, ok := n.Lookup(keys...)
	require.True(t, ok, "%v not found in %s", keys, n.Name())
	arr, ok := v.(*manifest.Array)
	require.True(t, ok, "%v is not an array", keys)
	return arr.Strings()
}

func str(t *testing.T, n *manifest.Node, keys ...string) string {
	t.Helper()
	v, ok := n.Lookup(keys...)
	require.True(t, ok, "%v not found in %s", keys, n.Name())
	s, ok := v.(manifest.Scalar)
	require.True(t, ok)
	out, ok := s.Str()
	require.True(t, ok)
	return out
}
