// Package orchestrator runs external commands off the UI goroutine and
// delivers their results back to it, one in-flight command per key.
package orchestrator

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"brewery/internal/history"
	"brewery/pkg/brew"
)

// OutputLines is how much command output an activity entry keeps.
const OutputLines = 8

// Result is what an operation produced.
type Result struct {
	Op     Operation
	Value  any
	Output brew.Output
	Err    error

	Elapsed time.Duration
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Backend performs operations. Perform runs on a worker goroutine and must
// not touch UI state.
type Backend interface {
	Perform(ctx context.Context, op Operation) Result
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, op Operation) Result

// Perform calls f.
func (f BackendFunc) Perform(ctx context.Context, op Operation) Result {
	return f(ctx, op)
}

// Completion carries a finished result back to the owning goroutine.
type Completion struct {
	key    string
	gen    uint64
	result Result
}

// Key returns the coalescing key of the finished operation.
func (c Completion) Key() string {
	return c.key
}

// Result returns the finished result.
func (c Completion) Result() Result {
	return c.result
}

// Options tune an Orchestrator.
type Options struct {
	// FetchTimeout bounds passive fetches. Destructive and maintenance
	// commands are never timed out, and status refreshes bound each
	// diagnostic on their own.
	FetchTimeout time.Duration

	// Log receives one entry per user-initiated completion and per failed fetch.
	Log *history.Log

	// Record is called with every entry appended to Log, e.g. to persist it.
	Record func(history.Entry)

	// Now stamps entries. Defaults to time.Now.
	Now func() time.Time
}

type flight struct {
	gen     uint64
	op      Operation
	started time.Time
	waiters []func(Result)

	// stale flights still run to completion but their result is dropped.
	stale bool
}

// Orchestrator starts operations and tracks the ones in flight. Every method
// except the worker goroutines it spawns must be called from one goroutine.
type Orchestrator struct {
	backend Backend
	opts    Options

	completions chan Completion
	done        chan struct{}

	flights map[string]*flight
	gen     uint64
}

// New creates an orchestrator over backend.
func New(backend Backend, opts Options) *Orchestrator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		backend:     backend,
		opts:        opts,
		completions: make(chan Completion, 32),
		done:        make(chan struct{}),
		flights:     make(map[string]*flight),
	}
}

// Completions is the channel finished operations arrive on. Each value must
// be handed to Dispatch.
func (o *Orchestrator) Completions() <-chan Completion {
	return o.completions
}

// Run starts op unless an operation with the same key is already running, in
// which case onComplete joins that run. It never blocks. The return value
// reports whether a new command was started.
func (o *Orchestrator) Run(op Operation, onComplete func(Result)) bool {
	key := op.Key()
	if f, ok := o.flights[key]; ok {
		f.stale = false
		if onComplete != nil {
			f.waiters = append(f.waiters, onComplete)
		}
		log.Printf("orchestrator: %s joined in-flight run", key)
		return false
	}

	o.gen++
	f := &flight{gen: o.gen, op: op, started: o.opts.Now()}
	if onComplete != nil {
		f.waiters = append(f.waiters, onComplete)
	}
	o.flights[key] = f

	go o.work(key, f.gen, op)
	return true
}

func (o *Orchestrator) work(key string, gen uint64, op Operation) {
	ctx := context.Background()
	if op.Kind.bounded() && o.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.FetchTimeout)
		defer cancel()
	}

	start := time.Now()
	res := o.backend.Perform(ctx, op)
	res.Op = op
	res.Elapsed = time.Since(start)

	select {
	case o.completions <- Completion{key: key, gen: gen, result: res}:
	case <-o.done:
	}
}

// Cancel marks the run for key as no longer wanted. The command keeps going
// but its result is discarded when it arrives.
func (o *Orchestrator) Cancel(key string) {
	if f, ok := o.flights[key]; ok && !f.stale {
		f.stale = true
		f.waiters = nil
		log.Printf("orchestrator: %s cancelled", key)
	}
}

// Dispatch hands a completion to its waiters and appends the activity entry.
// It returns false when the result was stale and dropped.
func (o *Orchestrator) Dispatch(c Completion) bool {
	f, ok := o.flights[c.key]
	if !ok || f.gen != c.gen {
		log.Printf("orchestrator: dropping unknown completion %s", c.key)
		return false
	}
	delete(o.flights, c.key)

	res := c.result
	if f.stale {
		log.Printf("orchestrator: dropping stale result for %s", c.key)
		return false
	}

	if res.Err != nil {
		log.Printf("orchestrator: %s failed after %s: %v", c.key, res.Elapsed, res.Err)
	} else {
		log.Printf("orchestrator: %s finished in %s", c.key, res.Elapsed)
	}

	if entry, ok := o.entryFor(res); ok {
		o.append(entry)
	}

	for _, w := range f.waiters {
		w(res)
	}
	return true
}

func (o *Orchestrator) entryFor(res Result) (history.Entry, bool) {
	op := res.Op
	if !op.Kind.UserInitiated() && res.Err == nil {
		return history.Entry{}, false
	}

	var entry history.Entry
	if res.Err != nil {
		entry = history.NewEntryAt(o.opts.Now(), history.KindError, op.operation(), op.Target.Name, op.failureMessage(res.Err))
	} else {
		entry = history.NewEntryAt(o.opts.Now(), history.KindSuccess, op.operation(), op.Target.Name, op.successMessage())
	}
	if op.Kind.UserInitiated() {
		entry = entry.WithOutput(outputLines(res), OutputLines)
	}
	return entry, true
}

func (o *Orchestrator) append(entry history.Entry) {
	if o.opts.Log != nil {
		o.opts.Log.Append(entry)
	}
	if o.opts.Record != nil {
		o.opts.Record(entry)
	}
}

// Note appends an informational entry, e.g. for a cancelled confirmation.
func (o *Orchestrator) Note(op Operation, message string) history.Entry {
	entry := history.NewEntryAt(o.opts.Now(), history.KindInfo, op.operation(), op.Target.Name, message)
	o.append(entry)
	return entry
}

// InFlight returns the number of runs whose results are still wanted.
func (o *Orchestrator) InFlight() int {
	n := 0
	for _, f := range o.flights {
		if !f.stale {
			n++
		}
	}
	return n
}

// Running reports whether a run with key is in flight.
func (o *Orchestrator) Running(key string) bool {
	f, ok := o.flights[key]
	return ok && !f.stale
}

// Current returns the user-initiated operation running longest, if any.
func (o *Orchestrator) Current() (Operation, time.Time, bool) {
	var (
		op    Operation
		since time.Time
		found bool
	)
	for _, f := range o.flights {
		if f.op.Kind.UserInitiated() && (!found || f.started.Before(since)) {
			op, since, found = f.op, f.started, true
		}
	}
	return op, since, found
}

// Busy reports whether a user-initiated command is running.
func (o *Orchestrator) Busy() bool {
	for _, f := range o.flights {
		if f.op.Kind.UserInitiated() {
			return true
		}
	}
	return false
}

// Close releases worker goroutines blocked on delivering results. Commands
// already running are left to finish on their own.
func (o *Orchestrator) Close() {
	select {
	case <-o.done:
	default:
		close(o.done)
	}
}

func outputLines(res Result) []string {
	var lines []string
	for _, text := range []string{res.Output.Stdout, res.Output.Stderr} {
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimRight(line, " \r\t"); strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
	}
	if len(lines) == 0 {
		var failure *brew.CommandFailure
		if errors.As(res.Err, &failure) {
			return outputLines(Result{Output: brew.Output{Stdout: failure.Stdout, Stderr: failure.Stderr}})
		}
	}
	return lines
}
