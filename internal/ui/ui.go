// Package ui renders batch progress and extraction results on the terminal.
// Interactive output is only used when the target is a TTY; otherwise plain
// text lines are written so output can be piped or logged.
package ui

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
