package syncer

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/reggie-db/reggie-build/internal/manifest"
	"github.com/reggie-db/reggie-build/internal/workspace"
	"github.com/rs/zerolog/log"
)

// ProjectRootToken is left in rewritten dependencies for the build tool to
// substitute with the depending project's directory.
const ProjectRootToken = "${PROJECT_ROOT}"

const workspaceKey = "workspace"

var (
	sourcesKey     = []string{"tool", "uv", "sources"}
	fileDependency = regexp.MustCompile(`^\s*([\w\-.\[\]]+)\s*@\s*file://`)
)

// DependencyName returns the project named by a dependency string: the
// name before "@ file://" for file references, the string itself otherwise.
func DependencyName(dep string) string {
	if m := fileDependency.FindStringSubmatch(dep); m != nil {
		return m[1]
	}
	return dep
}

// MemberDependency formats a file reference from the project in fromDir to
// the project name living in toDir.
func MemberDependency(name, fromDir, toDir string) (string, error) {
	rel, err := filepath.Rel(fromDir, toDir)
	if err != nil {
		return "", fmt.Errorf("relative path from %s to %s: %w", fromDir, toDir, err)
	}
	return fmt.Sprintf("%s @ file://%s/%s", name, ProjectRootToken, filepath.ToSlash(rel)), nil
}

// Dependencies rewrites dependencies on workspace projects to relative file
// references for every project selected by view, and reconciles each
// project's tool.uv.sources entries. full must be the unfiltered tree so
// that references to unselected members still resolve.
func Dependencies(full, view *workspace.Tree) error {
	if err := full.RequireFull(); err != nil {
		return fmt.Errorf("member dependency sync: %w", err)
	}
	for _, p := range view.Projects() {
		if err := syncDependencies(full, p); err != nil {
			return fmt.Errorf("member dependency sync %s: %w", p.Name(), err)
		}
	}
	return nil
}

func syncDependencies(full *workspace.Tree, p *manifest.Node) error {
	var internal []string
	managed := make(map[string]bool)
	for _, deps := range dependencyLists(p) {
		for i := 0; i < deps.Len(); i++ {
			s, ok := deps.At(i).(manifest.Scalar)
			if !ok {
				continue
			}
			dep, ok := s.Str()
			if !ok {
				continue
			}
			name := DependencyName(dep)
			target, ok := full.Lookup(name)
			if !ok {
				continue
			}
			rewritten, err := MemberDependency(name, p.Dir(), target.Dir())
			if err != nil {
				return err
			}
			deps.Set(i, manifest.String(rewritten))
			if !managed[name] {
				managed[name] = true
				internal = append(internal, name)
			}
		}
	}

	sources, err := p.Table(len(internal) > 0, sourcesKey...)
	if err != nil {
		return err
	}
	if sources == nil {
		return nil
	}
	for _, dep := range sources.Table.Keys() {
		if managed[dep] {
			continue
		}
		if entry, ok := sources.Table.Table(dep); ok && isWorkspaceSource(entry) {
			sources.Table.Delete(dep)
			log.Debug().Str("project", p.Name()).Str("dependency", dep).Msg("Removed workspace source")
		}
	}
	for _, dep := range internal {
		v, exists := sources.Table.Get(dep)
		if !exists {
			entry := manifest.NewTable()
			entry.Set(workspaceKey, manifest.Bool(true))
			sources.Table.Set(dep, entry)
			log.Debug().Str("project", p.Name()).Str("dependency", dep).Msg("Added workspace source")
			continue
		}
		if entry, ok := v.(*manifest.Table); !ok || !isWorkspaceSource(entry) {
			log.Warn().Str("project", p.Name()).Str("dependency", dep).Msg("Keeping user-defined source for workspace dependency")
		}
	}
	if sources.Prune() {
		log.Debug().Str("project", p.Name()).Msg("Pruned empty sources table")
	}
	return nil
}

// dependencyLists returns project.dependencies followed by every list in
// project.optional-dependencies and dependency-groups.
func dependencyLists(p *manifest.Node) []*manifest.Array {
	var lists []*manifest.Array
	if v, ok := p.Lookup("project", "dependencies"); ok {
		if arr, ok := v.(*manifest.Array); ok {
			lists = append(lists, arr)
		}
	}
	for _, keys := range [][]string{{"project", "optional-dependencies"}, {"dependency-groups"}} {
		v, ok := p.Lookup(keys...)
		if !ok {
			continue
		}
		groups, ok := v.(*manifest.Table)
		if !ok {
			continue
		}
		for _, g := range groups.Keys() {
			if arr, ok := groups.Array(g); ok {
				lists = append(lists, arr)
			}
		}
	}
	return lists
}

func isWorkspaceSource(entry *manifest.Table) bool {
	s, ok := entry.Scalar(workspaceKey)
	return ok && s.Equal(manifest.Bool(true))
}

// InternalDependencies returns the names of the workspace projects p
// depends on, in order of first appearance.
func InternalDependencies(full *workspace.Tree, p *manifest.Node) []string {
	var out []string
	seen := make(map[string]bool)
	for _, deps := range dependencyLists(p) {
		for _, dep := range deps.Strings() {
			name := DependencyName(dep)
			if seen[name] || name == p.Name() {
				continue
			}
			if _, ok := full.Lookup(name); ok {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
