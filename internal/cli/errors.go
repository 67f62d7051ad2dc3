package cli

import "errors"

var (
	// ErrAborted is returned when the user aborts an operation.
	ErrAborted = errors.New("operation aborted by user")

	// ErrNeedsTerminal is returned when the dashboard is started without a terminal.
	ErrNeedsTerminal = errors.New("the dashboard needs an interactive terminal; try `brewery status`")

	// ErrUpToDate is returned by self-update when there is nothing newer.
	ErrUpToDate = errors.New("brewery is already up to date")
)
