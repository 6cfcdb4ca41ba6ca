package manifest

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Decode parses TOML manifest content into a table.
func Decode(data []byte) (*Table, error) {
	raw := make(map[string]any)
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("parsing manifest TOML: %w", err)
	}
	v, err := FromAny(raw)
	if err != nil {
		return nil, fmt.Errorf("converting manifest: %w", err)
	}
	return v.(*Table), nil
}

// Encode serializes a table as TOML. Keys are written in lexical order, so
// equal documents always encode to equal bytes.
func Encode(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(t.Interface()); err != nil {
		return nil, fmt.Errorf("encoding manifest TOML: %w", err)
	}
	return buf.Bytes(), nil
}
