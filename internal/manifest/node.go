package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the manifest file name inside every project directory.
const FileName = "pyproject.toml"

// Formatter rewrites a manifest file in place.
type Formatter interface {
	Format(ctx context.Context, path string) error
}

// Node is one project manifest together with the file it belongs to.
type Node struct {
	Path string
	Data *Table
}

// Load reads and parses the manifest at path.
func Load(path string) (*Node, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving manifest path: %w", err)
	}
	data, err := os.ReadFile(abs) //nolint:gosec // path comes from workspace discovery
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	t, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	return &Node{Path: abs, Data: t}, nil
}

// New synthesizes a manifest for a project directory that has none yet.
func New(dir, name, version string) *Node {
	project := NewTable()
	project.Set("name", String(name))
	if version != "" {
		project.Set("version", String(version))
	}
	project.Set("dependencies", NewArray())
	data := NewTable()
	data.Set("project", project)
	return &Node{Path: filepath.Join(dir, FileName), Data: data}
}

// Dir returns the project directory.
func (n *Node) Dir() string { return filepath.Dir(n.Path) }

// Name returns project.name, falling back to the directory name.
func (n *Node) Name() string {
	if v, ok := n.Lookup("project", "name"); ok {
		if s, ok := v.(Scalar); ok {
			if name, ok := s.Str(); ok && name != "" {
				return name
			}
		}
	}
	return filepath.Base(n.Dir())
}

func (n *Node) String() string {
	return n.Name()
}

// Lookup returns the value reached by walking keys through nested tables.
func (n *Node) Lookup(keys ...string) (Value, bool) {
	var cur Value = n.Data
	for _, k := range keys {
		t, ok := cur.(*Table)
		if !ok {
			return nil, false
		}
		if cur, ok = t.Get(k); !ok {
			return nil, false
		}
	}
	return cur, true
}

// Get returns the value at a dotted key path such as "project.version", or
// def when the path does not exist.
func (n *Node) Get(keyPath string, def Value) Value {
	if v, ok := n.Lookup(strings.Split(keyPath, ".")...); ok {
		return v
	}
	return def
}

// SetTable stores value at path, creating missing parent tables. When
// overwrite is false and a table already exists at path, value is merged
// into it instead.
func (n *Node) SetTable(path []string, value *Table, overwrite bool) error {
	if len(path) == 0 {
		return fmt.Errorf("set table: empty key path")
	}
	parent, err := n.Table(true, path[:len(path)-1]...)
	if err != nil {
		return err
	}
	key := path[len(path)-1]
	if !overwrite {
		if existing, ok := parent.Table.Table(key); ok {
			Merge(existing, value)
			return nil
		}
	}
	parent.Table.Set(key, value.Clone())
	return nil
}

// Section is a handle to a table nested inside a manifest.
type Section struct {
	Table *Table
	node  *Node
	keys  []string
}

// Table returns a handle to the table at keys. Missing tables are created
// when create is true; otherwise a nil section is returned. A key on the path
// that holds a non-table value is an error.
func (n *Node) Table(create bool, keys ...string) (*Section, error) {
	cur := n.Data
	for i, k := range keys {
		v, ok := cur.Get(k)
		if !ok {
			if !create {
				return nil, nil
			}
			sub := NewTable()
			cur.Set(k, sub)
			cur = sub
			continue
		}
		sub, ok := v.(*Table)
		if !ok {
			return nil, fmt.Errorf("%s: %s is a %s, not a table", n.Path, strings.Join(keys[:i+1], "."), v.Kind())
		}
		cur = sub
	}
	return &Section{Table: cur, node: n, keys: append([]string(nil), keys...)}, nil
}

// Keys returns the key path of the section.
func (s *Section) Keys() []string { return s.keys }

// Prune removes the section's table when it is empty, then each parent left
// empty by that removal. It stops at the first table still holding other keys
// and never removes the document root.
func (s *Section) Prune() bool {
	pruned := false
	for i := len(s.keys); i > 0; i-- {
		t := tableAt(s.node.Data, s.keys[:i])
		if t == nil || t.Len() > 0 {
			break
		}
		tableAt(s.node.Data, s.keys[:i-1]).Delete(s.keys[i-1])
		pruned = true
	}
	return pruned
}

func tableAt(root *Table, keys []string) *Table {
	cur := root
	for _, k := range keys {
		sub, ok := cur.Table(k)
		if !ok {
			return nil
		}
		cur = sub
	}
	return cur
}

// PersistOptions controls where and how a node is written.
type PersistOptions struct {
	// Destination overrides the node's own path.
	Destination string
	// Formatter, when set, is run over a changed manifest before writing.
	Formatter Formatter
}

// Persist writes the manifest when its content differs from the file
// currently at the destination. A destination holding the same document is
// left byte for byte as it is, comments and key order included; only a
// changed document is re-encoded. It reports whether a write happened.
func (n *Node) Persist(ctx context.Context, opts PersistOptions) (bool, error) {
	dest := opts.Destination
	if dest == "" {
		dest = n.Path
	}

	existing, err := os.ReadFile(dest) //nolint:gosec // destination is a workspace manifest path
	switch {
	case err == nil:
		if current, derr := Decode(existing); derr == nil && Equal(current, n.Data) {
			return false, nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("reading %s: %w", dest, err)
	}

	data, err := Encode(n.Data)
	if err != nil {
		return false, fmt.Errorf("%s: %w", n.Name(), err)
	}
	if opts.Formatter != nil {
		if data, err = formatContent(ctx, opts.Formatter, dest, data); err != nil {
			return false, fmt.Errorf("formatting %s: %w", dest, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, fmt.Errorf("creating directory for %s: %w", dest, err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil { //nolint:gosec // manifests must stay readable
		return false, fmt.Errorf("writing %s: %w", dest, err)
	}
	return true, nil
}

// formatContent runs f over data in a temporary file next to dest, so the
// formatter resolves the same configuration files it would for dest.
func formatContent(ctx context.Context, f Formatter, dest string, data []byte) ([]byte, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(dir, ".reggie-build-*.toml")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := f.Format(ctx, tmp.Name()); err != nil {
		return nil, err
	}
	return os.ReadFile(tmp.Name())
}
