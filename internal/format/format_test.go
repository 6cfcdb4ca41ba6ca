package format

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCommand_missingOptional(t *testing.T) {
	c := Command{Argv: []string{"reggie-build-no-such-formatter"}}
	if err := c.Run(context.Background(), t.TempDir()); err != nil {
		t.Fatalf("optional missing formatter should be skipped, got %v", err)
	}
}

func TestCommand_missingRequired(t *testing.T) {
	c := Command{Argv: []string{"reggie-build-no-such-formatter"}, Required: true}
	err := c.Run(context.Background(), t.TempDir())
	if !errors.Is(err, ErrFormatter) {
		t.Fatalf("Run() error = %v, want ErrFormatter", err)
	}
}

func TestCommand_empty(t *testing.T) {
	if err := (Command{}).Run(context.Background(), t.TempDir()); !errors.Is(err, ErrFormatter) {
		t.Fatalf("Run() error = %v, want ErrFormatter", err)
	}
}

func TestCommand_failure(t *testing.T) {
	c := Command{Argv: []string{"sh", "-c", "echo broken >&2; exit 3"}}
	err := c.Run(context.Background(), t.TempDir())
	if !errors.Is(err, ErrFormatter) {
		t.Fatalf("Run() error = %v, want ErrFormatter", err)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error should carry formatter output: %v", err)
	}
}

func TestManifest_Format(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pyproject.toml")
	if err := os.WriteFile(path, []byte("a = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := &Manifest{Command: Command{Argv: []string{"sh", "-c", `echo "# formatted" >> "$0"`}}}
	if err := m.Format(context.Background(), path); err != nil {
		t.Fatalf("Format() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a = 1\n# formatted\n" {
		t.Errorf("content = %q", data)
	}
}

func TestProject_FormatProject(t *testing.T) {
	dir := t.TempDir()
	p := &Project{Commands: []Command{
		{Argv: []string{"sh", "-c", "echo one >> log.txt"}},
		{Argv: []string{"sh", "-c", "echo two >> log.txt"}},
	}}
	if err := p.FormatProject(context.Background(), dir); err != nil {
		t.Fatalf("FormatProject() error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "one\ntwo\n" {
		t.Errorf("commands ran out of order: %q", data)
	}
}

func TestProject_stopsOnFailure(t *testing.T) {
	dir := t.TempDir()
	p := &Project{Commands: []Command{
		{Argv: []string{"false"}},
		{Argv: []string{"sh", "-c", "touch ran"}},
	}}
	if err := p.FormatProject(context.Background(), dir); !errors.Is(err, ErrFormatter) {
		t.Fatalf("FormatProject() error = %v, want ErrFormatter", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ran")); err == nil {
		t.Error("second command should not run after a failure")
	}
}

func TestDefaults(t *testing.T) {
	if got := DefaultManifest().Command.Name(); got != "taplo" {
		t.Errorf("DefaultManifest() binary = %q", got)
	}
	p := DefaultProject()
	if len(p.Commands) != 2 || p.Commands[0].String() != "ruff check --select UP007,UP006,F401,I --fix" {
		t.Errorf("DefaultProject() = %v", p.Commands)
	}
}
