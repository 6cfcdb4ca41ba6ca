// Package manifest models a single pyproject.toml document as a tree of
// tables, arrays and scalars. Nodes are mutated in memory and only reach
// disk through Persist, which skips the write when nothing changed.
package manifest
