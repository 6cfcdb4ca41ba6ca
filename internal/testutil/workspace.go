package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteManifest writes a pyproject.toml with content into dir (relative to
// root), creating directories as needed. Returns the project directory.
func WriteManifest(t *testing.T, root, dir, content string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(dir))
	if err := os.MkdirAll(full, 0755); err != nil { //nolint:gosec // test dir
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(full, "pyproject.toml"), []byte(content), 0644); err != nil { //nolint:gosec // test file
		t.Fatal(err)
	}
	return full
}

// Project returns minimal manifest content for a project with the given
// name and dependencies.
func Project(name string, deps ...string) string {
	s := "[project]\nname = \"" + name + "\"\nversion = \"0.0.1\"\ndependencies = ["
	for i, d := range deps {
		if i > 0 {
			s += ", "
		}
		s += "\"" + d + "\""
	}
	return s + "]\n"
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test file
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
