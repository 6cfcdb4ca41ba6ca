package main

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/reggie-db/reggie-build/internal/config"
	"github.com/reggie-db/reggie-build/internal/format"
	"github.com/reggie-db/reggie-build/internal/git"
	"github.com/reggie-db/reggie-build/internal/manifest"
	"github.com/reggie-db/reggie-build/internal/syncer"
	"github.com/reggie-db/reggie-build/internal/ui"
	"github.com/reggie-db/reggie-build/internal/workspace"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the environment and workspace for common issues",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}
}

// check is one doctor result. Failed required checks make doctor fail.
type check struct {
	name     string
	ok       bool
	required bool
	detail   string
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	root, _ := cmd.Flags().GetString("root")

	var checks []check
	checks = append(checks, toolCheck("git", format.Command{Argv: []string{"git"}, Required: true}))

	cfg, err := config.Load(root)
	if err != nil {
		checks = append(checks, check{name: "config", required: true, detail: err.Error()})
		cfg = &config.File{Version: 1}
	}
	checks = append(checks, toolCheck("manifest formatter", cfg.ManifestFormatter().Command))
	for _, c := range cfg.ProjectFormatter().Commands {
		checks = append(checks, toolCheck("project formatter", c))
	}

	tree, err := workspace.Load(root)
	if err != nil {
		checks = append(checks, check{name: "workspace", required: true, detail: err.Error()})
	} else {
		checks = append(checks,
			check{name: "workspace", ok: true, required: true, detail: fmt.Sprintf("%s (%d members)", tree.Name(), len(tree.Members()))},
			memberPathsCheck(tree),
			trackedCheck(tree),
		)
	}

	out := cmd.OutOrStdout()
	tbl := ui.NewTable(out, "CHECK", "STATUS", "DETAIL")
	failed := false
	for _, c := range checks {
		tbl.Row(c.name, ui.Check(c.ok), c.detail)
		if c.required && !c.ok {
			failed = true
		}
	}
	if err := tbl.Flush(); err != nil {
		return err
	}

	if failed {
		_, _ = fmt.Fprintln(out, "\nSome checks failed. See above for details.")
		return fmt.Errorf("doctor checks failed")
	}
	_, _ = fmt.Fprintln(out, "\nAll required checks passed.")
	return nil
}

func toolCheck(name string, c format.Command) check {
	res := check{name: name, required: c.Required}
	path, err := exec.LookPath(c.Name())
	if err != nil {
		res.detail = c.Name() + " not found on PATH"
		return res
	}
	res.ok = true
	res.detail = path
	return res
}

// memberPathsCheck reports whether the root's member patterns match what a
// sync would write.
func memberPathsCheck(tree *workspace.Tree) check {
	res := check{name: "member paths", required: true}
	var dirs []string
	for _, m := range tree.Members() {
		dirs = append(dirs, m.Dir())
	}
	want, err := syncer.DeriveMemberPaths(tree.Dir(), dirs)
	if err != nil {
		res.detail = err.Error()
		return res
	}
	var have []string
	if v, ok := tree.Root().Lookup(workspace.MembersKey...); ok {
		if arr, ok := v.(*manifest.Array); ok {
			have = arr.Strings()
		}
	}
	if !slices.Equal(want, have) {
		res.detail = fmt.Sprintf("stale: have [%s], sync writes [%s]", strings.Join(have, ", "), strings.Join(want, ", "))
		return res
	}
	res.ok = true
	res.detail = "up to date"
	return res
}

// trackedCheck warns about manifests git does not track. It never fails
// doctor, since new members are legitimately untracked until committed.
func trackedCheck(tree *workspace.Tree) check {
	res := check{name: "tracked manifests"}
	if !git.IsGitInstalled() || !git.IsInsideRepo(tree.Dir()) {
		res.detail = "not a git repository"
		return res
	}
	files, err := git.TrackedFiles(tree.Dir())
	if err != nil {
		res.detail = err.Error()
		return res
	}
	tracked := make(map[string]bool, len(files))
	for _, f := range files {
		tracked[filepath.Clean(f)] = true
	}
	var untracked []string
	for _, p := range tree.Projects() {
		if !tracked[evalPath(p.Path)] && !tracked[filepath.Clean(p.Path)] {
			untracked = append(untracked, p.Name())
		}
	}
	if len(untracked) > 0 {
		res.detail = "untracked: " + strings.Join(untracked, ", ")
		return res
	}
	res.ok = true
	res.detail = fmt.Sprintf("%d manifests tracked", len(tree.Projects()))
	return res
}

func evalPath(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	return filepath.Clean(p)
}
