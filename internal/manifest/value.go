package manifest

import (
	"fmt"
	"reflect"
	"sort"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindScalar Kind = iota
	KindArray
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindTable:
		return "table"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one node of a manifest document: a Scalar, an *Array or a *Table.
type Value interface {
	Kind() Kind
	Clone() Value
}

// Scalar holds a leaf value (string, int64, float64, bool or a TOML date/time).
type Scalar struct {
	v any
}

// NewScalar wraps v as a Scalar.
func NewScalar(v any) Scalar { return Scalar{v: v} }

// String returns a string Scalar.
func String(s string) Scalar { return Scalar{v: s} }

// Bool returns a boolean Scalar.
func Bool(b bool) Scalar { return Scalar{v: b} }

func (s Scalar) Kind() Kind { return KindScalar }
func (s Scalar) Clone() Value { return s }

// Interface returns the wrapped Go value.
func (s Scalar) Interface() any { return s.v }

// Str returns the wrapped string and whether the scalar holds one.
func (s Scalar) Str() (string, bool) {
	str, ok := s.v.(string)
	return str, ok
}

// Equal reports whether s and v hold the same scalar value.
func (s Scalar) Equal(v Value) bool {
	o, ok := v.(Scalar)
	if !ok {
		return false
	}
	return reflect.DeepEqual(s.v, o.v)
}

// Array is an ordered sequence of values.
type Array struct {
	items []Value
}

// NewArray returns an array holding items.
func NewArray(items ...Value) *Array {
	return &Array{items: items}
}

// Strings returns an array of string scalars.
func Strings(ss ...string) *Array {
	a := &Array{items: make([]Value, 0, len(ss))}
	for _, s := range ss {
		a.items = append(a.items, String(s))
	}
	return a
}

func (a *Array) Kind() Kind { return KindArray }

func (a *Array) Clone() Value {
	c := &Array{items: make([]Value, len(a.items))}
	for i, v := range a.items {
		c.items[i] = v.Clone()
	}
	return c
}

func (a *Array) Len() int { return len(a.items) }
func (a *Array) At(i int) Value { return a.items[i] }
func (a *Array) Set(i int, v Value) { a.items[i] = v }
func (a *Array) Append(v Value) { a.items = append(a.items, v) }

// Strings returns the string scalars of the array in order, skipping any
// other element kinds.
func (a *Array) Strings() []string {
	out := make([]string, 0, len(a.items))
	for _, v := range a.items {
		if s, ok := v.(Scalar); ok {
			if str, ok := s.Str(); ok {
				out = append(out, str)
			}
		}
	}
	return out
}

// Table is a mapping from keys to values.
type Table struct {
	entries map[string]Value
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string]Value)}
}

func (t *Table) Kind() Kind { return KindTable }

func (t *Table) Clone() Value {
	c := NewTable()
	for k, v := range t.entries {
		c.entries[k] = v.Clone()
	}
	return c
}

func (t *Table) Len() int { return len(t.entries) }

// Keys returns the table keys in lexical order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t *Table) Get(key string) (Value, bool) {
	v, ok := t.entries[key]
	return v, ok
}

func (t *Table) Has(key string) bool {
	_, ok := t.entries[key]
	return ok
}

func (t *Table) Set(key string, v Value) {
	t.entries[key] = v
}

// Delete removes key and reports whether it was present.
func (t *Table) Delete(key string) bool {
	if _, ok := t.entries[key]; !ok {
		return false
	}
	delete(t.entries, key)
	return true
}

// Table returns the sub-table at key if the key holds a table.
func (t *Table) Table(key string) (*Table, bool) {
	v, ok := t.entries[key]
	if !ok {
		return nil, false
	}
	sub, ok := v.(*Table)
	return sub, ok
}

// Array returns the array at key if the key holds an array.
func (t *Table) Array(key string) (*Array, bool) {
	v, ok := t.entries[key]
	if !ok {
		return nil, false
	}
	arr, ok := v.(*Array)
	return arr, ok
}

// Scalar returns the scalar at key if the key holds one.
func (t *Table) Scalar(key string) (Scalar, bool) {
	v, ok := t.entries[key]
	if !ok {
		return Scalar{}, false
	}
	s, ok := v.(Scalar)
	return s, ok
}

// Merge deep-merges src into dst. A table meeting a table is merged key by
// key; any other source value replaces the destination value. Keys only
// present in dst are kept.
func Merge(dst, src *Table) {
	for _, k := range src.Keys() {
		sv := src.entries[k]
		if st, ok := sv.(*Table); ok {
			if dt, ok := dst.Table(k); ok {
				Merge(dt, st)
				continue
			}
		}
		dst.entries[k] = sv.Clone()
	}
}

// Equal reports whether a and b hold the same document content. Key order
// and formatting play no part.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Scalar:
		return x.Equal(b)
	case *Array:
		y, ok := b.(*Array)
		if !ok || len(x.items) != len(y.items) {
			return false
		}
		for i := range x.items {
			if !Equal(x.items[i], y.items[i]) {
				return false
			}
		}
		return true
	case *Table:
		y, ok := b.(*Table)
		if !ok || len(x.entries) != len(y.entries) {
			return false
		}
		for k, v := range x.entries {
			w, ok := y.entries[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// FromAny converts decoded TOML data into a Value.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case map[string]any:
		t := NewTable()
		for k, e := range x {
			ev, err := FromAny(e)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			t.entries[k] = ev
		}
		return t, nil
	case []map[string]any:
		a := &Array{items: make([]Value, 0, len(x))}
		for i, e := range x {
			ev, err := FromAny(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			a.items = append(a.items, ev)
		}
		return a, nil
	case []any:
		a := &Array{items: make([]Value, 0, len(x))}
		for i, e := range x {
			ev, err := FromAny(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			a.items = append(a.items, ev)
		}
		return a, nil
	case []string:
		return Strings(x...), nil
	case nil:
		return nil, fmt.Errorf("nil value")
	default:
		return Scalar{v: x}, nil
	}
}

// Interface converts the table back into plain Go maps and slices. Arrays
// holding only tables become []map[string]any so they encode as arrays of
// tables.
func (t *Table) Interface() map[string]any {
	m := make(map[string]any, len(t.entries))
	for k, v := range t.entries {
		m[k] = toAny(v)
	}
	return m
}

func toAny(v Value) any {
	switch x := v.(type) {
	case *Table:
		return x.Interface()
	case *Array:
		if len(x.items) > 0 && allTables(x.items) {
			out := make([]map[string]any, len(x.items))
			for i, e := range x.items {
				out[i] = e.(*Table).Interface()
			}
			return out
		}
		out := make([]any, len(x.items))
		for i, e := range x.items {
			out[i] = toAny(e)
		}
		return out
	case Scalar:
		return x.v
	default:
		return nil
	}
}

func allTables(items []Value) bool {
	for _, v := range items {
		if _, ok := v.(*Table); !ok {
			return false
		}
	}
	return true
}
