package config

import "github.com/reggie-db/reggie-build/internal/format"

// FileName is the configuration file looked up in the workspace root.
const FileName = ".reggie-build.yaml"

// File represents .reggie-build.yaml.
type File struct {
	Version        int        `yaml:"version"`
	DefaultVersion string     `yaml:"default_version,omitempty"`
	Readme         string     `yaml:"readme,omitempty"`
	Formatters     Formatters `yaml:"formatters"`
}

// Formatters configures the external formatters.
type Formatters struct {
	Manifest *Formatter  `yaml:"manifest,omitempty"`
	Project  []Formatter `yaml:"project,omitempty"`
}

// Formatter is one external command.
type Formatter struct {
	Cmd      []string `yaml:"cmd"`
	Required bool     `yaml:"required,omitempty"`
}

// Command converts f to a runnable formatter command.
func (f Formatter) Command() format.Command {
	return format.Command{Argv: f.Cmd, Required: f.Required}
}

// ManifestFormatter returns the configured manifest formatter, or the
// default one.
func (f *File) ManifestFormatter() *format.Manifest {
	if f.Formatters.Manifest == nil {
		return format.DefaultManifest()
	}
	return &format.Manifest{Command: f.Formatters.Manifest.Command()}
}

// ProjectFormatter returns the configured project formatters, or the
// default ones.
func (f *File) ProjectFormatter() *format.Project {
	if len(f.Formatters.Project) == 0 {
		return format.DefaultProject()
	}
	p := &format.Project{}
	for _, c := range f.Formatters.Project {
		p.Commands = append(p.Commands, c.Command())
	}
	return p
}

// ReadmePath returns the configured README path, defaulting to README.md.
func (f *File) ReadmePath() string {
	if f.Readme == "" {
		return "README.md"
	}
	return f.Readme
}
