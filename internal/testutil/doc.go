// Package testutil holds helpers that build git repositories and workspace
// fixtures for tests.
package testutil
