package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reggie-db/reggie-build/internal/manifest"
	"github.com/reggie-db/reggie-build/internal/syncer"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [DIR]",
		Short: "Create a new member project and sync the workspace",
		Long: `Create a pyproject.toml for a new member in DIR (relative to the workspace
root) and run a full sync, so the member receives the shared build-system and
tool settings and is covered by the workspace member patterns.

Without DIR, the directory is prompted for when stdin is a terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAdd,
	}
	cmd.Flags().String("project", "", "Project name (defaults to the directory name)")
	cmd.Flags().AddFlagSet(syncFlagSet(false))
	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	tree, cfg, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	projectName, _ := cmd.Flags().GetString("project")

	validate := memberDirValidator(tree)
	var rel string
	if len(args) == 0 {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("no directory provided and stdin is not a TTY; provide DIR as an argument")
		}
		rel, err = promptInput(
			"Enter the new member directory",
			"packages/my-lib",
			"relative to "+tree.Dir(),
			validate,
		)
		if err != nil {
			return fmt.Errorf("interactive add: %w", err)
		}
	} else {
		rel = strings.TrimSpace(args[0])
		if err := validate(rel); err != nil {
			return err
		}
	}

	dir := filepath.Join(tree.Dir(), filepath.Clean(filepath.FromSlash(rel)))
	if projectName == "" {
		projectName = filepath.Base(dir)
	}
	if err := tree.AddMember(manifest.New(dir, projectName, syncer.DefaultVersion)); err != nil {
		return err
	}

	report, err := syncer.Run(cmd.Context(), tree, syncOptions(cmd.Flags(), tree, cfg))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Added %s (%s)\n\n", projectName, filepath.ToSlash(rel))
	return printReport(out, tree.Dir(), report)
}
