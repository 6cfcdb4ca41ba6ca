// Package syncer implements the workspace synchronization operations:
// version stamping, build-system propagation, tool-settings merge,
// internal dependency rewriting, member-path derivation and the final
// persistence pass.
//
// Operations mutate manifest nodes in memory. Nothing is written until
// Persist runs, so a failing operation leaves every file untouched.
package syncer
