package syncer

import (
	"testing"

	"github.com/reggie-db/reggie-build/internal/manifest"
	"github.com/reggie-db/reggie-build/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const memberWithExtras = `[project]
name = "a"
version = "0.0.1"
dependencies = []

[build-system]
requires = ["setuptools"]
member-only = true

[tool.ruff]
line-length = 80
target-version = "py312"
`

func TestBuildSystem_overwrites(t *testing.T) {
	tree := loadWorkspace(t, rootManifest, map[string]string{
		"packages/a": memberWithExtras,
		"packages/b": testutil.Project("b"),
	})

	require.True(t, BuildSystem(tree))

	for _, name := range []string{"a", "b"} {
		m := member(t, tree, name)
		assert.Equal(t, []string{"hatchling"}, strs(t, m, "build-system", "requires"))
		assert.Equal(t, "hatchling.build", str(t, m, "build-system", "build-backend"))
		_, ok := m.Lookup("build-system", "member-only")
		assert.False(t, ok, "%s: member-specific build-system keys must be replaced", name)
	}

	bs, _ := member(t, tree, "a").Data.Table("build-system")
	bs.Set("requires", manifest.Strings("changed"))
	assert.Equal(t, []string{"hatchling"}, strs(t, tree.Root(), "build-system", "requires"), "members get a deep copy")
}

func TestBuildSystem_missing(t *testing.T) {
	tree := loadWorkspace(t, "[project]\nname = \"root\"\n\n[tool.uv.workspace]\nmembers = [\"packages/*\"]\n", map[string]string{
		"packages/a": memberWithExtras,
	})
	assert.False(t, BuildSystem(tree))
	assert.Equal(t, []string{"setuptools"}, strs(t, member(t, tree, "a"), "build-system", "requires"))
}

func TestBuildSystem_filteredView(t *testing.T) {
	tree := loadWorkspace(t, rootManifest, map[string]string{
		"packages/a": memberWithExtras,
		"packages/b": testutil.Project("b"),
	})
	view, err := tree.Filter([]string{"b"})
	require.NoError(t, err)

	BuildSystem(view)
	assert.Equal(t, []string{"setuptools"}, strs(t, member(t, tree, "a"), "build-system", "requires"), "unselected members are not mutated")
	assert.Equal(t, []string{"hatchling"}, strs(t, member(t, tree, "b"), "build-system", "requires"))
}

func TestToolSettings_merges(t *testing.T) {
	tree := loadWorkspace(t, rootManifest, map[string]string{
		"packages/a": memberWithExtras,
	})

	require.True(t, ToolSettings(tree))

	a := member(t, tree, "a")
	v, ok := a.Lookup("tool", "ruff", "line-length")
	require.True(t, ok)
	assert.Equal(t, int64(120), v.(manifest.Scalar).Interface())
	assert.Equal(t, "py312", str(t, a, "tool", "ruff", "target-version"), "member-only keys survive the merge")
	_, ok = a.Lookup("tool", "member-project")
	assert.False(t, ok, "the propagated table itself is not copied")
}

func TestToolSettings_missing(t *testing.T) {
	tree := loadWorkspace(t, "[project]\nname = \"root\"\n\n[tool.uv.workspace]\nmembers = [\"packages/*\"]\n", map[string]string{
		"packages/a": memberWithExtras,
	})
	assert.False(t, ToolSettings(tree))
}
