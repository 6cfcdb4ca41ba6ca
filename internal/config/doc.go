// Package config handles the optional .reggie-build.yaml file at the
// workspace root. The file overrides the built-in formatter commands and
// defaults; command-line flags override the file.
package config
