package manifest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
[project]
name = "alpha"
version = "0.1.0"
dependencies = ["requests", "beta"]

[tool.uv.sources.beta]
workspace = true
`

func writeNode(t *testing.T, src string) *Node {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	n, err := Load(path)
	require.NoError(t, err)
	return n
}

func TestLoad_name(t *testing.T) {
	n := writeNode(t, sampleManifest)
	assert.Equal(t, "alpha", n.Name())
	assert.True(t, filepath.IsAbs(n.Path))
}

func TestLoad_nameFallsBackToDir(t *testing.T) {
	n := writeNode(t, "[tool.uv]\n")
	assert.Equal(t, filepath.Base(n.Dir()), n.Name())
}

func TestLoad_invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("[project\nname="), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	n := writeNode(t, sampleManifest)

	v := n.Get("project.version", nil)
	require.NotNil(t, v)
	s, ok := v.(Scalar)
	require.True(t, ok)
	assert.Equal(t, "0.1.0", s.Interface())

	def := String("fallback")
	assert.Equal(t, def, n.Get("project.missing", def))
	assert.Equal(t, def, n.Get("project.version.deeper", def))
}

func TestTable_create(t *testing.T) {
	n := New(t.TempDir(), "gamma", "")

	sec, err := n.Table(false, "tool", "uv", "workspace")
	require.NoError(t, err)
	assert.Nil(t, sec)

	sec, err = n.Table(true, "tool", "uv", "workspace")
	require.NoError(t, err)
	require.NotNil(t, sec)
	assert.Equal(t, []string{"tool", "uv", "workspace"}, sec.Keys())

	_, ok := n.Lookup("tool", "uv", "workspace")
	assert.True(t, ok)
}

func TestTable_nonTableOnPath(t *testing.T) {
	n := writeNode(t, sampleManifest)
	_, err := n.Table(true, "project", "name", "x")
	assert.Error(t, err)
}

func TestSetTable_overwrite(t *testing.T) {
	n := writeNode(t, `
[build-system]
requires = ["setuptools"]
extra = "member"
`)
	repl := NewTable()
	repl.Set("requires", Strings("hatchling"))
	require.NoError(t, n.SetTable([]string{"build-system"}, repl, true))

	bs, ok := n.Data.Table("build-system")
	require.True(t, ok)
	assert.False(t, bs.Has("extra"))
	req, _ := bs.Array("requires")
	assert.Equal(t, []string{"hatchling"}, req.Strings())
}

func TestSetTable_merge(t *testing.T) {
	n := writeNode(t, `
[tool.pytest]
addopts = "-q"
`)
	add := NewTable()
	add.Set("testpaths", Strings("tests"))
	require.NoError(t, n.SetTable([]string{"tool", "pytest"}, add, false))

	pt, _ := n.Lookup("tool", "pytest")
	assert.True(t, pt.(*Table).Has("addopts"))
	assert.True(t, pt.(*Table).Has("testpaths"))
}

func TestSection_Prune_cascades(t *testing.T) {
	n := writeNode(t, `
[tool.uv.sources]
`)
	sec, err := n.Table(false, "tool", "uv", "sources")
	require.NoError(t, err)
	require.NotNil(t, sec)

	assert.True(t, sec.Prune())
	_, ok := n.Lookup("tool")
	assert.False(t, ok, "empty parents should be pruned too")
}

func TestSection_Prune_keepsSiblings(t *testing.T) {
	n := writeNode(t, `
[tool.uv]
dev-dependencies = ["pytest"]

[tool.uv.sources]
`)
	sec, err := n.Table(false, "tool", "uv", "sources")
	require.NoError(t, err)

	assert.True(t, sec.Prune())
	uv, ok := n.Lookup("tool", "uv")
	require.True(t, ok)
	assert.False(t, uv.(*Table).Has("sources"))
	assert.True(t, uv.(*Table).Has("dev-dependencies"))
}

func TestSection_Prune_nonEmpty(t *testing.T) {
	n := writeNode(t, sampleManifest)
	sec, err := n.Table(false, "tool", "uv", "sources")
	require.NoError(t, err)
	assert.False(t, sec.Prune())
}

const handWrittenManifest = `# alpha service
[project]
name    = "alpha"   # keep aligned
version = "0.1.0"
dependencies = [
    "requests",
    "beta",
]

[build-system]
requires = ["hatchling"]
build-backend = "hatchling.build"
`

func TestPersist_writesOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	n := writeNode(t, sampleManifest)

	changed, err := n.Persist(ctx, PersistOptions{})
	require.NoError(t, err)
	assert.False(t, changed, "loaded content equal to disk must not be rewritten")

	project, _ := n.Data.Table("project")
	project.Set("version", String("0.2.0"))
	changed, err = n.Persist(ctx, PersistOptions{})
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = n.Persist(ctx, PersistOptions{})
	require.NoError(t, err)
	assert.False(t, changed)

	reloaded, err := Load(n.Path)
	require.NoError(t, err)
	assert.Equal(t, "0.2.0", reloaded.Get("project.version", nil).(Scalar).Interface())
}

func TestPersist_keepsHandWrittenManifest(t *testing.T) {
	n := writeNode(t, handWrittenManifest)
	f := &upperFormatter{}

	project, _ := n.Data.Table("project")
	project.Set("version", String("0.1.0"))

	changed, err := n.Persist(context.Background(), PersistOptions{Formatter: f})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, f.calls, "unchanged manifests are not formatted")

	data, err := os.ReadFile(n.Path)
	require.NoError(t, err)
	assert.Equal(t, handWrittenManifest, string(data), "comments and key order must survive")
}

func TestPersist_destination(t *testing.T) {
	n := writeNode(t, sampleManifest)
	dest := filepath.Join(t.TempDir(), "out", "alpha", FileName)

	changed, err := n.Persist(context.Background(), PersistOptions{Destination: dest})
	require.NoError(t, err)
	assert.True(t, changed)
	_, err = os.Stat(dest)
	assert.NoError(t, err)
}

type upperFormatter struct{ calls int }

func (f *upperFormatter) Format(_ context.Context, path string) error {
	f.calls++
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte("# formatted\n"), data...), 0o644)
}

func TestPersist_formatter(t *testing.T) {
	n := writeNode(t, sampleManifest)
	f := &upperFormatter{}
	project, _ := n.Data.Table("project")
	project.Set("version", String("0.2.0"))

	changed, err := n.Persist(context.Background(), PersistOptions{Formatter: f})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, f.calls)

	data, err := os.ReadFile(n.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# formatted\n"))

	changed, err = n.Persist(context.Background(), PersistOptions{Formatter: f})
	require.NoError(t, err)
	assert.False(t, changed, "formatted output equal to disk must not be rewritten")

	entries, err := os.ReadDir(n.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary format files must be removed")
}

type failingFormatter struct{}

func (failingFormatter) Format(context.Context, string) error { return errors.New("boom") }

func TestPersist_formatterError(t *testing.T) {
	n := writeNode(t, sampleManifest)
	before, err := os.ReadFile(n.Path)
	require.NoError(t, err)
	project, _ := n.Data.Table("project")
	project.Set("version", String("0.2.0"))

	_, err = n.Persist(context.Background(), PersistOptions{Formatter: failingFormatter{}})
	require.Error(t, err)

	after, err := os.ReadFile(n.Path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	n := New(dir, "fresh", "0.0.1")
	assert.Equal(t, filepath.Join(dir, FileName), n.Path)
	assert.Equal(t, "fresh", n.Name())
	deps, ok := n.Lookup("project", "dependencies")
	require.True(t, ok)
	assert.Equal(t, 0, deps.(*Array).Len())
}
