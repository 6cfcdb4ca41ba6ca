// Package workspace discovers the root pyproject.toml and its uv workspace
// members and exposes them as a Tree. Filtered views narrow which projects
// an operation mutates while the full tree stays available for lookups.
package workspace
