// Package git wraps the git CLI queries reggie-build needs: working tree
// state, short revisions and tracked files. It does not depend on other
// internal packages.
package git
