// Package brewtest provides a scripted brew.Runner for tests.
package brewtest

import (
	"context"
	"strings"
	"sync"

	"brewery/pkg/brew"
)

// Response is the canned result for one command line.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool

	// Gate, when set, blocks the call until it is closed or the context ends.
	Gate chan struct{}
}

// Runner answers Execute calls from a table keyed by the full command line
// ("brew info --json=v2 wget"). Unknown commands succeed with empty output.
type Runner struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     []string
}

// NewRunner creates an empty scripted runner.
func NewRunner() *Runner {
	return &Runner{responses: make(map[string]Response)}
}

// On registers the response for a command line.
func (r *Runner) On(cmdline string, resp Response) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[cmdline] = resp
	return r
}

// OnStdout registers a successful response.
func (r *Runner) OnStdout(cmdline, stdout string) *Runner {
	return r.On(cmdline, Response{Stdout: stdout})
}

// OnFailure registers a failing response.
func (r *Runner) OnFailure(cmdline, stderr string, code int) *Runner {
	return r.On(cmdline, Response{Stderr: stderr, ExitCode: code})
}

// Execute implements brew.Runner.
func (r *Runner) Execute(ctx context.Context, name string, args ...string) (brew.Output, error) {
	cmdline := strings.TrimSpace(name + " " + strings.Join(args, " "))

	r.mu.Lock()
	r.calls = append(r.calls, cmdline)
	resp := r.responses[cmdline]
	r.mu.Unlock()

	if resp.Gate != nil {
		select {
		case <-resp.Gate:
		case <-ctx.Done():
			return brew.Output{}, &brew.CommandFailure{Name: name, Args: args, TimedOut: true, Err: ctx.Err()}
		}
	}

	out := brew.Output{Stdout: resp.Stdout, Stderr: resp.Stderr, ExitCode: resp.ExitCode}
	if resp.TimedOut {
		return out, &brew.CommandFailure{Name: name, Args: args, TimedOut: true, ExitCode: -1}
	}
	if resp.ExitCode != 0 {
		return out, &brew.CommandFailure{
			Name:     name,
			Args:     args,
			ExitCode: resp.ExitCode,
			Stdout:   resp.Stdout,
			Stderr:   resp.Stderr,
		}
	}
	return out, nil
}

// Calls returns every command line executed so far.
func (r *Runner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Count returns how many times cmdline was executed.
func (r *Runner) Count(cmdline string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, call := range r.calls {
		if call == cmdline {
			n++
		}
	}
	return n
}
