package format

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrFormatter is returned when a required formatter is missing or fails.
var ErrFormatter = errors.New("formatter failed")

// Command is one external formatter invocation. Arguments are passed
// directly to the binary, without shell expansion.
type Command struct {
	Argv     []string
	Required bool
}

// Name returns the binary name.
func (c Command) Name() string {
	if len(c.Argv) == 0 {
		return ""
	}
	return c.Argv[0]
}

func (c Command) String() string {
	return strings.Join(c.Argv, " ")
}

// Available reports whether the binary can be found on PATH.
func (c Command) Available() bool {
	if len(c.Argv) == 0 {
		return false
	}
	_, err := exec.LookPath(c.Argv[0])
	return err == nil
}

// Run executes the command in dir with extra appended to its arguments.
// A missing binary is skipped with a warning unless the command is required.
func (c Command) Run(ctx context.Context, dir string, extra ...string) error {
	if len(c.Argv) == 0 {
		return fmt.Errorf("%w: empty command", ErrFormatter)
	}
	if !c.Available() {
		if c.Required {
			return fmt.Errorf("%w: %s not found on PATH", ErrFormatter, c.Name())
		}
		log.Warn().Str("formatter", c.Name()).Msg("Formatter not installed, skipping")
		return nil
	}

	args := append(append([]string(nil), c.Argv[1:]...), extra...)
	cmd := exec.CommandContext(ctx, c.Argv[0], args...) //nolint:gosec // formatter commands come from configuration
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s: %v: %s", ErrFormatter, c, err, strings.TrimSpace(string(out)))
	}
	log.Debug().Str("formatter", c.String()).Str("dir", dir).Str("output", strings.TrimSpace(string(out))).Msg("Formatter finished")
	return nil
}

// Manifest formats a single manifest file by passing its path to Command.
type Manifest struct {
	Command Command
}

// DefaultManifest formats manifests with taplo.
func DefaultManifest() *Manifest {
	return &Manifest{Command: Command{Argv: []string{"taplo", "fmt"}}}
}

// Format runs the command in the file's directory so the formatter picks up
// the project's configuration.
func (m *Manifest) Format(ctx context.Context, path string) error {
	return m.Command.Run(ctx, filepath.Dir(path), path)
}

// Project runs a sequence of commands in a project directory.
type Project struct {
	Commands []Command
}

// DefaultProject applies ruff's import and typing fixes and then ruff format.
func DefaultProject() *Project {
	return &Project{Commands: []Command{
		{Argv: []string{"ruff", "check", "--select", "UP007,UP006,F401,I", "--fix"}},
		{Argv: []string{"ruff", "format"}},
	}}
}

// FormatProject runs every command in dir, stopping at the first failure.
func (p *Project) FormatProject(ctx context.Context, dir string) error {
	for _, c := range p.Commands {
		if err := c.Run(ctx, dir); err != nil {
			return err
		}
	}
	return nil
}
