package main

import (
	"github.com/reggie-db/reggie-build/internal/config"
	"github.com/reggie-db/reggie-build/internal/git"
	"github.com/reggie-db/reggie-build/internal/syncer"
	"github.com/reggie-db/reggie-build/internal/workspace"
	"github.com/spf13/pflag"
)

// syncFlagSet returns the operation toggles shared by sync and add. The
// project selection flag is only offered where selecting makes sense.
func syncFlagSet(selection bool) *pflag.FlagSet {
	fs := pflag.NewFlagSet("sync", pflag.ContinueOnError)
	if selection {
		fs.StringSliceP("name", "n", nil, "Project to sync (repeatable); all members when omitted")
	}
	fs.Bool("version", true, "Sync project versions")
	fs.String("set-version", "", "Version to apply instead of deriving one from git")
	fs.Bool("strict-version", false, "Fail when the version cannot be derived from git")
	fs.Bool("build-system", true, "Copy the root build-system table into members")
	fs.Bool("member-project-tool", true, "Merge the root tool.member-project table into members")
	fs.Bool("member-project-dependencies", true, "Rewrite dependencies on workspace projects to file references")
	fs.Bool("member-paths", true, "Recompute the root tool.uv.workspace.members patterns")
	fs.Bool("format-python", true, "Run the Python formatters in each synced project")
	fs.Bool("format-pyproject", true, "Run the manifest formatter before writing")
	fs.StringP("output-dir", "o", "", "Write manifests under this directory instead of in place")
	_ = fs.MarkHidden("output-dir")
	return fs
}

// syncOptions builds run options from the parsed flags of fs.
func syncOptions(fs *pflag.FlagSet, tree *workspace.Tree, cfg *config.File) syncer.Options {
	opts := syncer.Options{
		FallbackVersion: cfg.DefaultVersion,
		Revisions:       git.Repo{Dir: tree.Dir()},
	}
	if fs.Lookup("name") != nil {
		opts.Names, _ = fs.GetStringSlice("name")
	}
	opts.Version, _ = fs.GetBool("version")
	opts.VersionString, _ = fs.GetString("set-version")
	opts.StrictVersion, _ = fs.GetBool("strict-version")
	opts.BuildSystem, _ = fs.GetBool("build-system")
	opts.ToolSettings, _ = fs.GetBool("member-project-tool")
	opts.Dependencies, _ = fs.GetBool("member-project-dependencies")
	opts.MemberPaths, _ = fs.GetBool("member-paths")
	opts.OutputDir, _ = fs.GetString("output-dir")

	if ok, _ := fs.GetBool("format-python"); ok {
		opts.ProjectFormatter = cfg.ProjectFormatter()
	}
	if ok, _ := fs.GetBool("format-pyproject"); ok {
		opts.ManifestFormatter = cfg.ManifestFormatter()
	}
	return opts
}
