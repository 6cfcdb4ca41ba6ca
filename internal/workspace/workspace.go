package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/reggie-db/reggie-build/internal/manifest"
	"github.com/rs/zerolog/log"
)

var (
	// ErrDiscovery is returned when a declared member pattern cannot be
	// resolved to a manifest, or two manifests declare the same name.
	ErrDiscovery = errors.New("workspace discovery failed")

	// ErrFiltered is returned when an operation that needs every project
	// for reference is handed a filtered view.
	ErrFiltered = errors.New("unfiltered workspace tree required")

	// ErrUnknownProject is returned when a selection names no project.
	ErrUnknownProject = errors.New("unknown project")
)

// Key paths of the uv workspace settings in the root manifest.
var (
	MembersKey = []string{"tool", "uv", "workspace", "members"}
	ExcludeKey = []string{"tool", "uv", "workspace", "exclude"}
)

// Tree is a root project plus its members keyed by project name.
//
// A tree returned by Load or New is unfiltered. Filter returns a view that
// narrows which projects are mutated; the view shares nodes with the full
// tree and keeps a reference to it for cross-project lookups.
type Tree struct {
	root     *manifest.Node
	members  map[string]*manifest.Node
	filtered bool
	full     *Tree
}

// Load reads the root manifest in dir and every member it declares.
func Load(dir string) (*Tree, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}
	root, err := manifest.Load(filepath.Join(dir, manifest.FileName))
	if err != nil {
		return nil, err
	}
	members, err := discover(root)
	if err != nil {
		return nil, err
	}
	return New(root, members...)
}

// New builds an unfiltered tree from already loaded nodes.
func New(root *manifest.Node, members ...*manifest.Node) (*Tree, error) {
	t := &Tree{root: root, members: make(map[string]*manifest.Node, len(members))}
	for _, m := range members {
		if err := t.add(m); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// AddMember registers a new member, typically one synthesized for a
// directory that has no manifest yet.
func (t *Tree) AddMember(n *manifest.Node) error {
	if t.filtered {
		return fmt.Errorf("adding member %s: %w", n.Name(), ErrFiltered)
	}
	return t.add(n)
}

func (t *Tree) add(n *manifest.Node) error {
	name := n.Name()
	if name == t.root.Name() {
		return fmt.Errorf("%w: member %s reuses the root project name %q", ErrDiscovery, n.Path, name)
	}
	if prev, ok := t.members[name]; ok {
		return fmt.Errorf("%w: duplicate project name %q (%s, %s)", ErrDiscovery, name, prev.Path, n.Path)
	}
	t.members[name] = n
	return nil
}

// Dir returns the workspace root directory.
func (t *Tree) Dir() string { return t.root.Dir() }

// Name returns the root project name.
func (t *Tree) Name() string { return t.root.Name() }

// Root returns the root project node.
func (t *Tree) Root() *manifest.Node { return t.root }

// Filtered reports whether t is a filtered view.
func (t *Tree) Filtered() bool { return t.filtered }

// Full returns the unfiltered tree t was derived from, or t itself.
func (t *Tree) Full() *Tree {
	if t.full != nil {
		return t.full
	}
	return t
}

// RequireFull returns ErrFiltered when t is a filtered view.
func (t *Tree) RequireFull() error {
	if t.filtered {
		return ErrFiltered
	}
	return nil
}

// Member returns the member with the given project name.
func (t *Tree) Member(name string) (*manifest.Node, bool) {
	n, ok := t.members[name]
	return n, ok
}

// Lookup returns the root or member with the given project name.
func (t *Tree) Lookup(name string) (*manifest.Node, bool) {
	if name == t.root.Name() {
		return t.root, true
	}
	return t.Member(name)
}

// Members returns the members sorted by name.
func (t *Tree) Members() []*manifest.Node {
	names := make([]string, 0, len(t.members))
	for name := range t.members {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*manifest.Node, len(names))
	for i, name := range names {
		out[i] = t.members[name]
	}
	return out
}

// Projects returns the root followed by the members.
func (t *Tree) Projects() []*manifest.Node {
	return append([]*manifest.Node{t.root}, t.Members()...)
}

// Filter returns a view restricted to the named members. An empty selection
// keeps every member. Naming the root is allowed and selects no member.
func (t *Tree) Filter(names []string) (*Tree, error) {
	full := t.Full()
	view := &Tree{root: full.root, filtered: true, full: full}
	if len(names) == 0 {
		view.members = make(map[string]*manifest.Node, len(t.members))
		for name, n := range t.members {
			view.members[name] = n
		}
		return view, nil
	}
	view.members = make(map[string]*manifest.Node, len(names))
	for _, name := range names {
		if name == full.root.Name() {
			continue
		}
		n, ok := t.members[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProject, name)
		}
		view.members[name] = n
	}
	return view, nil
}

// discover expands the root's member patterns into member nodes.
func discover(root *manifest.Node) ([]*manifest.Node, error) {
	rootDir := root.Dir()
	patterns := stringList(root, MembersKey)
	excludes := stringList(root, ExcludeKey)

	seen := map[string]bool{rootDir: true}
	var members []*manifest.Node
	for _, pattern := range patterns {
		dirs, err := expand(rootDir, pattern)
		if err != nil {
			return nil, err
		}
		for _, dir := range dirs {
			if seen[dir] || excluded(rootDir, dir, excludes) {
				continue
			}
			seen[dir] = true
			n, err := manifest.Load(filepath.Join(dir, manifest.FileName))
			if err != nil {
				return nil, fmt.Errorf("loading member %s: %w", dir, err)
			}
			log.Debug().Str("pattern", pattern).Str("project", n.Name()).Str("dir", dir).Msg("Discovered member")
			members = append(members, n)
		}
	}
	return members, nil
}

// expand resolves one member pattern to project directories. Exact patterns
// must hold a manifest; glob patterns keep only matches that do.
func expand(rootDir, pattern string) ([]string, error) {
	full := filepath.Join(rootDir, filepath.FromSlash(pattern))
	if !IsGlob(pattern) {
		if !HasManifest(full) {
			return nil, fmt.Errorf("%w: member %q has no %s", ErrDiscovery, pattern, manifest.FileName)
		}
		return []string{full}, nil
	}
	matches, err := filepath.Glob(full)
	if err != nil {
		return nil, fmt.Errorf("%w: member pattern %q: %v", ErrDiscovery, pattern, err)
	}
	sort.Strings(matches)
	var dirs []string
	for _, m := range matches {
		if HasManifest(m) {
			dirs = append(dirs, m)
		}
	}
	return dirs, nil
}

func excluded(rootDir, dir string, excludes []string) bool {
	rel, err := filepath.Rel(rootDir, dir)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, ex := range excludes {
		if ok, _ := filepath.Match(ex, rel); ok {
			return true
		}
	}
	return false
}

// IsGlob reports whether a member pattern contains glob syntax.
func IsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// HasManifest reports whether dir directly contains a manifest file.
func HasManifest(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, manifest.FileName))
	return err == nil && !info.IsDir()
}

func stringList(n *manifest.Node, keys []string) []string {
	v, ok := n.Lookup(keys...)
	if !ok {
		return nil
	}
	arr, ok := v.(*manifest.Array)
	if !ok {
		return nil
	}
	return arr.Strings()
}
