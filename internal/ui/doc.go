// Package ui renders command output: aligned tables, status labels and a
// progress counter for parallel work.
package ui
