package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse_valid(t *testing.T) {
	data := []byte(`
version: 1
default_version: "1.0.0"
readme: docs/README.md
formatters:
  manifest:
    cmd: ["taplo", "fmt", "--option", "align_entries=true"]
    required: true
  project:
    - cmd: ["ruff", "format"]
    - cmd: ["black", "."]
      required: true
`)
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.DefaultVersion != "1.0.0" {
		t.Errorf("default_version = %q", f.DefaultVersion)
	}
	if f.ReadmePath() != "docs/README.md" {
		t.Errorf("readme = %q", f.ReadmePath())
	}

	m := f.ManifestFormatter()
	if m.Command.String() != "taplo fmt --option align_entries=true" || !m.Command.Required {
		t.Errorf("manifest formatter = %+v", m.Command)
	}
	p := f.ProjectFormatter()
	if len(p.Commands) != 2 {
		t.Fatalf("project formatters = %d, want 2", len(p.Commands))
	}
	if p.Commands[0].Required || !p.Commands[1].Required {
		t.Errorf("required flags = %v, %v", p.Commands[0].Required, p.Commands[1].Required)
	}
}

func TestParse_invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "formatters: [\n"},
		{"unknown version", "version: 2\n"},
		{"empty manifest cmd", "formatters:\n  manifest:\n    required: true\n"},
		{"empty project cmd", "formatters:\n  project:\n    - required: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_missingUsesDefaults(t *testing.T) {
	f, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if f.ReadmePath() != "README.md" {
		t.Errorf("readme = %q", f.ReadmePath())
	}
	if got := f.ManifestFormatter().Command.Name(); got != "taplo" {
		t.Errorf("manifest formatter = %q, want taplo", got)
	}
	if got := len(f.ProjectFormatter().Commands); got != 2 {
		t.Errorf("project formatters = %d, want 2", got)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	f := &File{
		Version:        1,
		DefaultVersion: "0.2.0",
		Formatters: Formatters{
			Manifest: &Formatter{Cmd: []string{"taplo", "fmt"}},
		},
	}

	if err := Save(dir, f); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Fatal("file should exist after save")
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.DefaultVersion != "0.2.0" {
		t.Errorf("default_version = %q, want %q", loaded.DefaultVersion, "0.2.0")
	}
	if loaded.Formatters.Manifest == nil || loaded.Formatters.Manifest.Cmd[0] != "taplo" {
		t.Errorf("manifest formatter = %+v", loaded.Formatters.Manifest)
	}
}
