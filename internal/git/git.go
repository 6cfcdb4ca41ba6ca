package git

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Repo runs git queries against the repository containing Dir.
type Repo struct {
	Dir string
}

// IsDirty reports whether the working tree has uncommitted changes.
func (r Repo) IsDirty() (bool, error) { return IsDirty(r.Dir) }

// ShortRevision returns the abbreviated hash of ref.
func (r Repo) ShortRevision(ref string) (string, error) { return ShortRevision(r.Dir, ref) }

// ShortRevision returns the abbreviated hash of ref (e.g. HEAD or HEAD~1).
func ShortRevision(repoDir, ref string) (string, error) {
	out, err := outputQuiet(repoDir, "rev-parse", "--short", ref)
	if err != nil {
		return "", err
	}
	rev := strings.TrimSpace(out)
	if rev == "" {
		return "", fmt.Errorf("git rev-parse --short %s: empty output", ref)
	}
	return rev, nil
}

// IsDirty returns true if the working tree has uncommitted changes.
func IsDirty(repoDir string) (bool, error) {
	out, err := outputQuiet(repoDir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// IsInsideRepo returns true if dir is inside a git working tree.
func IsInsideRepo(dir string) bool {
	out, err := outputQuiet(dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// TrackedFiles returns the absolute paths of files tracked under dir.
func TrackedFiles(dir string) ([]string, error) {
	out, err := outputQuiet(dir, "ls-files", "--full-name", "-z", "--", ".")
	if err != nil {
		return nil, err
	}
	top, err := outputQuiet(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, err
	}
	top = strings.TrimSpace(top)

	var files []string
	for _, f := range strings.Split(out, "\x00") {
		if f == "" {
			continue
		}
		files = append(files, filepath.Join(top, filepath.FromSlash(f)))
	}
	return files, nil
}

// IsGitInstalled returns true if git is available on the system PATH.
func IsGitInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// outputQuiet executes a git command and returns its stdout without printing to the console.
// Stderr is captured and included in the error message on failure.
func outputQuiet(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
