package brew

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when Homebrew has no record of a package.
	ErrNotFound = errors.New("package not found")

	// ErrNothingToUpgrade is returned when an upgrade is requested with no targets.
	ErrNothingToUpgrade = errors.New("nothing to upgrade")
)

// CommandFailure describes an external command that exited non-zero or timed out.
type CommandFailure struct {
	Name     string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Err      error
}

// Error implements the error interface.
func (f *CommandFailure) Error() string {
	cmd := strings.TrimSpace(f.Name + " " + strings.Join(f.Args, " "))
	if f.TimedOut {
		return fmt.Sprintf("%s: timed out", cmd)
	}
	return fmt.Sprintf("%s: exit status %d: %s", cmd, f.ExitCode, f.Excerpt())
}

// Unwrap returns the underlying process error.
func (f *CommandFailure) Unwrap() error {
	return f.Err
}

// Excerpt returns a single line suitable for a status bar or activity entry.
func (f *CommandFailure) Excerpt() string {
	if f.TimedOut {
		return "timed out"
	}
	if line := firstLine(f.Stderr); line != "" {
		return line
	}
	if line := firstLine(f.Stdout); line != "" {
		return line
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	return fmt.Sprintf("exit status %d", f.ExitCode)
}

// Excerpt reduces any error to one short line.
func Excerpt(err error) string {
	if err == nil {
		return ""
	}
	var failure *CommandFailure
	if errors.As(err, &failure) {
		return failure.Excerpt()
	}
	if line := firstLine(err.Error()); line != "" {
		return line
	}
	return "unknown error"
}

// IsTimeout reports whether err is a timed out command.
func IsTimeout(err error) bool {
	var failure *CommandFailure
	return errors.As(err, &failure) && failure.TimedOut
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimPrefix(line, "Error: ")
		const max = 160
		if len(line) > max {
			line = line[:max-3] + "..."
		}
		return line
	}
	return ""
}
