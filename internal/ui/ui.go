// Package ui provides terminal output helpers shared by all commands.
package ui

import "fmt"

// UI controls command output verbosity.
type UI struct {
	Verbose bool
	Quiet   bool
}

// NewUI creates a new UI instance
func NewUI(verbose, quiet bool) *UI {
	return &UI{Verbose: verbose, Quiet: quiet}
}

// Printf prints formatted output if not in quiet mode
func (u *UI) Printf(format string, args ...interface{}) {
	if !u.Quiet {
		fmt.Printf(format, args...)
	}
}

// Println prints a line if not in quiet mode
func (u *UI) Println(args ...interface{}) {
	if !u.Quiet {
		fmt.Println(args...)
	}
}

// VerbosePrintf prints formatted output only in verbose mode
func (u *UI) VerbosePrintf(format string, args ...interface{}) {
	if u.Verbose && !u.Quiet {
		fmt.Printf(format, args...)
	}
}

// Warningf prints a formatted warning message
func (u *UI) Warningf(format string, args ...interface{}) {
	if !u.Quiet {
		ShowWarning(fmt.Sprintf(format, args...))
	}
}

// Info prints an information message
func (u *UI) Info(message string) {
	if !u.Quiet {
		ShowInfo(message)
	}
}

// Success prints a success message
func (u *UI) Success(message string) {
	if !u.Quiet {
		ShowSuccess(message)
	}
}

// Error prints an error message
func (u *UI) Error(err error) {
	ShowError(err)
}
