package syncer

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/reggie-db/reggie-build/internal/manifest"
	"github.com/reggie-db/reggie-build/internal/workspace"
	"github.com/rs/zerolog/log"
)

// ErrPathBoundary is returned when a member directory is not under the
// workspace root.
var ErrPathBoundary = errors.New("member directory outside workspace root")

// MemberPaths recomputes the root's tool.uv.workspace.members from the
// directories of every member in full.
func MemberPaths(full *workspace.Tree) error {
	if err := full.RequireFull(); err != nil {
		return fmt.Errorf("member path sync: %w", err)
	}
	members := full.Members()
	dirs := make([]string, len(members))
	for i, m := range members {
		dirs[i] = m.Dir()
	}
	patterns, err := DeriveMemberPaths(full.Dir(), dirs)
	if err != nil {
		return fmt.Errorf("member path sync: %w", err)
	}

	root := full.Root()
	keys, key := workspace.MembersKey[:len(workspace.MembersKey)-1], workspace.MembersKey[len(workspace.MembersKey)-1]
	sec, err := root.Table(len(patterns) > 0, keys...)
	if err != nil {
		return err
	}
	if sec == nil {
		return nil
	}
	if len(patterns) == 0 {
		sec.Table.Delete(key)
		sec.Prune()
		return nil
	}
	sec.Table.Set(key, manifest.Strings(patterns...))
	log.Debug().Str("project", root.Name()).Strs("members", patterns).Msg("Synced member paths")
	return nil
}

// DeriveMemberPaths returns the fewest member patterns, relative to rootDir,
// that expand to exactly dirs. Exact patterns come first, then wildcard
// patterns, each group in lexical order. rootDir itself is never emitted.
func DeriveMemberPaths(rootDir string, dirs []string) ([]string, error) {
	members, err := relativeDirs(rootDir, dirs)
	if err != nil {
		return nil, err
	}
	paths := make(map[string]bool, len(members))
	for p := range members {
		paths[p] = true
	}
	collapse(rootDir, paths, members)

	var exact, wildcard []string
	for p := range paths {
		if members[p] || workspace.HasManifest(filepath.Join(rootDir, filepath.FromSlash(p))) {
			exact = append(exact, p)
		} else {
			wildcard = append(wildcard, p+"/*")
		}
	}
	sort.Strings(exact)
	sort.Strings(wildcard)
	return append(exact, wildcard...), nil
}

// relativeDirs converts dirs to slash-separated paths relative to rootDir,
// dropping rootDir itself.
func relativeDirs(rootDir string, dirs []string) (map[string]bool, error) {
	rootDir = filepath.Clean(rootDir)
	out := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		rel, err := filepath.Rel(rootDir, filepath.Clean(d))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrPathBoundary, d, err)
		}
		if rel == "." {
			continue
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
			return nil, fmt.Errorf("%w: %s is not under %s", ErrPathBoundary, d, rootDir)
		}
		out[filepath.ToSlash(rel)] = true
	}
	return out, nil
}

// collapse repeatedly replaces a group of sibling paths with their parent
// until no group qualifies. Every collapse shrinks the set, so the loop ends.
func collapse(rootDir string, paths, members map[string]bool) {
	for {
		parent, children, ok := collapsible(rootDir, paths, members)
		if !ok {
			return
		}
		for _, c := range children {
			delete(paths, c)
		}
		paths[parent] = true
		log.Debug().Str("parent", parent).Strs("children", children).Msg("Collapsed member paths")
	}
}

// collapsible finds the first parent whose children can be written as a
// single "parent/*" pattern. A group qualifies when its parent is not the
// root, it has more than one child, every child is a member directory, the
// parent holds no manifest of its own, and the parent has no other child
// directory with a manifest that the wildcard would pull in.
func collapsible(rootDir string, paths, members map[string]bool) (string, []string, bool) {
	groups := make(map[string][]string)
	for p := range paths {
		parent := path.Dir(p)
		groups[parent] = append(groups[parent], p)
	}
	parents := make([]string, 0, len(groups))
	for parent := range groups {
		parents = append(parents, parent)
	}
	sort.Strings(parents)

	for _, parent := range parents {
		children := groups[parent]
		if parent == "." || len(children) < 2 || members[parent] {
			continue
		}
		if !allMembers(children, members) {
			continue
		}
		parentDir := filepath.Join(rootDir, filepath.FromSlash(parent))
		if workspace.HasManifest(parentDir) || !coversManifestChildren(parentDir, parent, children) {
			continue
		}
		sort.Strings(children)
		return parent, children, true
	}
	return "", nil, false
}

func allMembers(paths []string, members map[string]bool) bool {
	for _, p := range paths {
		if !members[p] {
			return false
		}
	}
	return true
}

// coversManifestChildren reports whether every immediate subdirectory of
// parentDir holding a manifest is among children.
func coversManifestChildren(parentDir, parent string, children []string) bool {
	entries, err := os.ReadDir(parentDir)
	if err != nil {
		return true
	}
	have := make(map[string]bool, len(children))
	for _, c := range children {
		have[c] = true
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if workspace.HasManifest(filepath.Join(parentDir, e.Name())) && !have[path.Join(parent, e.Name())] {
			return false
		}
	}
	return true
}
