package ui

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner wraps the spinner library for consistent styling.
type Spinner struct {
	s       *spinner.Spinner
	enabled bool
}

// NewSpinner creates a new spinner with the given message. It stays silent
// when stdout is not a terminal.
func NewSpinner(message string) *Spinner {
	charSet := spinner.CharSets[14] // ⣾⣽⣻⢿⡿⣟⣯⣷
	if !UseUnicode {
		charSet = spinner.CharSets[9] // |/-\
	}

	s := spinner.New(charSet, 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message

	if UseColors {
		_ = s.Color("cyan")
	}

	return &Spinner{s: s, enabled: isTerminal(os.Stderr)}
}

// Start starts the spinner.
func (sp *Spinner) Start() {
	if sp.enabled {
		sp.s.Start()
	}
}

// Stop stops the spinner.
func (sp *Spinner) Stop() {
	if sp.enabled {
		sp.s.Stop()
	}
}

// Success stops the spinner with a success message.
func (sp *Spinner) Success(message string) {
	sp.Stop()
	SuccessMsg("%s", message)
}

// Error stops the spinner with an error message.
func (sp *Spinner) Error(message string) {
	sp.Stop()
	ErrorMsg("%s", message)
}

// UpdateMessage updates the spinner message.
func (sp *Spinner) UpdateMessage(message string) {
	sp.s.Lock()
	sp.s.Suffix = " " + message
	sp.s.Unlock()
}

// WithSpinner runs a function with a spinner, showing success or error on completion.
func WithSpinner(message string, fn func() error) error {
	sp := NewSpinner(message)
	sp.Start()

	err := fn()

	if err != nil {
		sp.Error(err.Error())
		return err
	}

	sp.Success(message + " - done")
	return nil
}
