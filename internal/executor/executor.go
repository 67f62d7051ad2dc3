// Package executor runs external programs and captures their output.
package executor

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"brewery/pkg/brew"
)

// Executor runs commands out of process for the brew client.
type Executor struct {
	verbose bool
	env     []string
}

// New creates a new Executor. Extra environment entries are appended to
// the inherited environment of every command.
func New(verbose bool, env ...string) *Executor {
	return &Executor{
		verbose: verbose,
		env:     env,
	}
}

// DefaultEnv keeps Homebrew output free of hints and colour codes.
func DefaultEnv() []string {
	return []string{
		"HOMEBREW_NO_ENV_HINTS=1",
		"HOMEBREW_NO_COLOR=1",
	}
}

// SetVerbose enables or disables verbose mode.
func (e *Executor) SetVerbose(verbose bool) {
	e.verbose = verbose
}

// Execute runs name with args, capturing stdout and stderr separately.
// Non-zero exits and context deadlines are returned as *brew.CommandFailure.
func (e *Executor) Execute(ctx context.Context, name string, args ...string) (brew.Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(e.env) > 0 {
		cmd.Env = append(os.Environ(), e.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if e.verbose {
		log.Printf("executing: %s %s", name, strings.Join(args, " "))
	}

	start := time.Now()
	err := cmd.Run()
	out := brew.Output{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}

	if e.verbose {
		log.Printf("finished: %s (exit %d, %s)", name, out.ExitCode, out.Duration.Round(time.Millisecond))
	}

	if err == nil {
		return out, nil
	}

	failure := &brew.CommandFailure{
		Name:     name,
		Args:     args,
		ExitCode: out.ExitCode,
		Stdout:   out.Stdout,
		Stderr:   out.Stderr,
		Err:      err,
	}
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		failure.TimedOut = true
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) && out.ExitCode == 0 {
		// the process never started
		failure.ExitCode = -1
	}
	return out, failure
}
