// Package ui provides terminal output helpers for the brewery subcommands.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	// Colors for different message types
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan)
	Header  = color.New(color.FgMagenta, color.Bold)
	Muted   = color.New(color.FgHiBlack)

	// Colors for specific elements
	PackageName    = color.New(color.FgWhite, color.Bold)
	PackageVersion = color.New(color.FgGreen)
	Outdated       = color.New(color.FgYellow)
)

// Out is where messages and tables are written.
var Out io.Writer = color.Output

// UseColors represents whether colors should be used.
var UseColors = true

// UseUnicode represents whether unicode symbols should be used.
var UseUnicode = true

// Symbols for status indicators
var (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "!"
	SymbolInfo    = "→"
	SymbolArrow   = "→"
)

// Init initializes the UI settings based on configuration.
func Init(useColors, useUnicode bool) {
	UseColors = useColors && Interactive()
	UseUnicode = useUnicode

	if !UseColors || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	if !useUnicode {
		SymbolSuccess = "[OK]"
		SymbolError = "[ERROR]"
		SymbolWarning = "[WARN]"
		SymbolInfo = "->"
		SymbolArrow = "->"
	}
}

// Interactive reports whether stdin and stdout are both terminals.
func Interactive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SuccessMsg prints a success message.
func SuccessMsg(format string, args ...interface{}) {
	Success.Fprintf(Out, SymbolSuccess+" "+format+"\n", args...)
}

// ErrorMsg prints an error message.
func ErrorMsg(format string, args ...interface{}) {
	Error.Fprintf(Out, SymbolError+" "+format+"\n", args...)
}

// WarningMsg prints a warning message.
func WarningMsg(format string, args ...interface{}) {
	Warning.Fprintf(Out, SymbolWarning+" "+format+"\n", args...)
}

// InfoMsg prints an info message.
func InfoMsg(format string, args ...interface{}) {
	Info.Fprintf(Out, SymbolInfo+" "+format+"\n", args...)
}

// HeaderMsg prints a header message.
func HeaderMsg(format string, args ...interface{}) {
	Header.Fprintf(Out, "\n"+format+"\n", args...)
}

// MutedMsg prints a muted (dim) message.
func MutedMsg(format string, args ...interface{}) {
	Muted.Fprintf(Out, format+"\n", args...)
}

// Println prints a plain line with formatting.
func Println(format string, args ...interface{}) {
	fmt.Fprintf(Out, format+"\n", args...)
}

// Bold returns a bold string.
func Bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}

// Cyan returns a cyan string.
func Cyan(s string) string {
	return color.CyanString(s)
}
