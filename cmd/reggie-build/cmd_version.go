package main

import (
	"github.com/reggie-db/reggie-build/internal/git"
	"github.com/reggie-db/reggie-build/internal/syncer"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version [VERSION]",
		Short: "Set the version of the workspace projects",
		Long: `Set project.version in the root and member manifests.

When VERSION is omitted it is derived from git as 0.0.1+g<hash>, using HEAD
when the working tree is dirty and HEAD~1 when it is clean.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runVersion,
	}
	cmd.Flags().StringSliceP("name", "n", nil, "Project to update (repeatable); all members when omitted")
	cmd.Flags().Bool("strict", false, "Fail when the version cannot be derived from git")
	return cmd
}

func runVersion(cmd *cobra.Command, args []string) error {
	tree, cfg, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	names, _ := cmd.Flags().GetStringSlice("name")
	strict, _ := cmd.Flags().GetBool("strict")

	opts := syncer.Options{
		Names:           names,
		Version:         true,
		FallbackVersion: cfg.DefaultVersion,
		Revisions:       git.Repo{Dir: tree.Dir()},
		StrictVersion:   strict,
	}
	if len(args) == 1 {
		opts.VersionString = args[0]
	}

	report, err := syncer.Run(cmd.Context(), tree, opts)
	if err != nil {
		return err
	}
	return printReport(cmd.OutOrStdout(), tree.Dir(), report)
}
