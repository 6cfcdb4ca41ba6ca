package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/reggie-db/reggie-build/internal/testutil"
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

// setupWorkspace creates a workspace with members a and b (b depends on a)
// and returns its root directory.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteManifest(t, dir, ".", rootManifest)
	testutil.WriteManifest(t, dir, "packages/a", testutil.Project("a", "requests"))
	testutil.WriteManifest(t, dir, "packages/b", testutil.Project("b", "a"))
	return dir
}

// noFormat disables the external formatters so tests do not depend on
// which tools are installed.
var noFormat = []string{"--format-python=false", "--format-pyproject=false"}

// execute runs the CLI with args against wsDir and returns stdout.
func execute(t *testing.T, wsDir string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := newRootCmd()
	root.SetOut(&buf)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--root", wsDir}, args...))
	err := root.Execute()
	return buf.String(), err
}

func manifestPath(wsDir, rel string) string {
	return filepath.Join(wsDir, filepath.FromSlash(rel), "pyproject.toml")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
