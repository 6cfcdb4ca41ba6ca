// Package format runs the external formatters applied during a sync:
// a manifest formatter over each encoded pyproject.toml and the Python
// source formatters over each selected project directory.
package format
