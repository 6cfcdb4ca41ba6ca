package main

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/reggie-db/reggie-build/internal/manifest"
	"github.com/reggie-db/reggie-build/internal/syncer"
	"github.com/reggie-db/reggie-build/internal/ui"
	"github.com/reggie-db/reggie-build/internal/workspace"
	"github.com/spf13/cobra"
)

type memberInfo struct {
	Name         string   `json:"name"`
	Path         string   `json:"path"`
	Version      string   `json:"version,omitempty"`
	Root         bool     `json:"root,omitempty"`
	Dependencies []string `json:"dependencies"`
}

func newMembersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "List the workspace projects and their internal dependencies",
		Args:  cobra.NoArgs,
		RunE:  runMembers,
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func runMembers(cmd *cobra.Command, _ []string) error {
	tree, _, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	infos := collectMembers(tree)
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	tbl := ui.NewTable(out, "PROJECT", "PATH", "VERSION", "DEPENDS ON")
	for _, m := range infos {
		name := m.Name
		if m.Root {
			name += " (root)"
		}
		tbl.Row(name, m.Path, orDash(m.Version), orDash(strings.Join(m.Dependencies, ", ")))
	}
	return tbl.Flush()
}

func collectMembers(tree *workspace.Tree) []memberInfo {
	projects := tree.Projects()
	infos := make([]memberInfo, 0, len(projects))
	for _, p := range projects {
		rel, err := filepath.Rel(tree.Dir(), p.Dir())
		if err != nil {
			rel = p.Dir()
		}
		deps := syncer.InternalDependencies(tree, p)
		if deps == nil {
			deps = []string{}
		}
		infos = append(infos, memberInfo{
			Name:         p.Name(),
			Path:         filepath.ToSlash(rel),
			Version:      scalarString(p.Get("project.version", nil)),
			Root:         p == tree.Root(),
			Dependencies: deps,
		})
	}
	return infos
}

func scalarString(v manifest.Value) string {
	s, ok := v.(manifest.Scalar)
	if !ok {
		return ""
	}
	str, _ := s.Str()
	return str
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
