package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads .reggie-build.yaml from dir. A missing file yields the
// defaults.
func Load(dir string) (*File, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName)) //nolint:gosec // path is the workspace config file
	if errors.Is(err, fs.ErrNotExist) {
		return &File{Version: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses .reggie-build.yaml content.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	if f.Version == 0 {
		f.Version = 1
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported config version %d", f.Version)
	}
	if m := f.Formatters.Manifest; m != nil && len(m.Cmd) == 0 {
		return nil, fmt.Errorf("formatters.manifest: cmd is required")
	}
	for i, p := range f.Formatters.Project {
		if len(p.Cmd) == 0 {
			return nil, fmt.Errorf("formatters.project[%d]: cmd is required", i)
		}
	}
	return &f, nil
}

// Save writes the config file into dir.
func Save(dir string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling config file: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0644); err != nil { //nolint:gosec // config file needs to be readable
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
