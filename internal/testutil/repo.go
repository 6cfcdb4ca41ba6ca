package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// CreateRepo initializes a git repository in dir with the given number of
// commits. Returns dir for convenience.
func CreateRepo(t *testing.T, dir string, commits int) string {
	t.Helper()
	run(t, dir, "git", "init", "-b", "main")
	run(t, dir, "git", "config", "user.email", "test@example.com")
	run(t, dir, "git", "config", "user.name", "Test")
	run(t, dir, "git", "config", "commit.gpgsign", "false")
	for i := 0; i < commits; i++ {
		Commit(t, dir, "commit "+string(rune('a'+i)))
	}
	return dir
}

// Commit writes a marker file and commits everything in the repository.
func Commit(t *testing.T, dir, message string) {
	t.Helper()
	marker := filepath.Join(dir, ".commit-marker")
	if err := os.WriteFile(marker, []byte(message+"\n"), 0644); err != nil { //nolint:gosec // test file
		t.Fatal(err)
	}
	run(t, dir, "git", "add", ".")
	run(t, dir, "git", "commit", "-m", message)
}

// RevParse returns the short hash of ref.
func RevParse(t *testing.T, dir, ref string) string {
	t.Helper()
	cmd := exec.Command("git", "rev-parse", "--short", ref)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git rev-parse %s: %v", ref, err)
	}
	return strings.TrimSpace(string(out))
}

func run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("command %s %v failed: %v", name, args, err)
	}
}
