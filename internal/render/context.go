// Package render holds the presentation layer shared by the CLI commands:
// colour/tty detection and the box-drawing tree renderer. See spec.md §6
// "Tree output" and §9 "Global mutable state".
package render

import (
	"os"

	"golang.org/x/term"
)

// Context carries the one piece of process-wide state the engine itself
// never reads: whether output should be colourised. It is computed once
// by the CLI and threaded explicitly into every rendering call, rather
// than kept as a package-level singleton (spec.md §9).
type Context struct {
	Color bool
}

// DetectColor reports whether colour output should be enabled: stdout
// must be a tty, the NO_COLOR convention must be unset, and the caller
// must not have passed an explicit --no-color flag.
func DetectColor(noColor bool) bool {
	if noColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// NewContext builds a Context from the CLI's resolved colour-enable flag.
func NewContext(color bool) Context {
	return Context{Color: color}
}
