package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/reggie-db/reggie-build/internal/syncer"
	"github.com/reggie-db/reggie-build/internal/ui"
	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize member manifests with the workspace root",
		Long: `Synchronize member manifests with the workspace root.

Runs, in order: version sync, build-system propagation, tool.member-project
merge, member dependency rewrite, member path derivation and formatting.
Only manifests whose content changed are written.`,
		Args: cobra.NoArgs,
		RunE: runSync,
	}
	cmd.Flags().AddFlagSet(syncFlagSet(true))
	cmd.Flags().Bool("json", false, "Output results as JSON")
	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	tree, cfg, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	opts := syncOptions(cmd.Flags(), tree, cfg)

	report, err := syncer.Run(cmd.Context(), tree, opts)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printReport(cmd.OutOrStdout(), tree.Dir(), report)
}

// printReport renders the per-project outcome of a run.
func printReport(out io.Writer, rootDir string, report *syncer.Report) error {
	tbl := ui.NewTable(out, "PROJECT", "PATH", "STATUS")
	for _, r := range report.Results {
		path := r.Path
		if rel, err := filepath.Rel(rootDir, r.Path); err == nil {
			path = rel
		}
		tbl.Row(r.Name, path, ui.Changed(r.Changed))
	}
	if err := tbl.Flush(); err != nil {
		return err
	}

	if report.Version != "" {
		_, _ = fmt.Fprintf(out, "\nVersion: %s\n", report.Version)
	}
	_, _ = fmt.Fprintf(out, "%d of %d project(s) updated.\n", len(report.Changed()), len(report.Results))
	return nil
}
