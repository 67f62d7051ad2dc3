package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"brewery/internal/history"
	"brewery/pkg/brew"
	"brewery/pkg/brew/brewtest"
)

// next waits for one completion and dispatches it.
func next(t *testing.T, o *Orchestrator) (Completion, bool) {
	t.Helper()
	select {
	case c := <-o.Completions():
		return c, o.Dispatch(c)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a completion")
	}
	return Completion{}, false
}

func newBrewOrchestrator(runner *brewtest.Runner, activity *history.Log) *Orchestrator {
	backend := &BrewBackend{Client: brew.NewClient(runner, "brew")}
	return New(backend, Options{FetchTimeout: time.Second, Log: activity})
}

func TestRunCoalescesSameKey(t *testing.T) {
	gate := make(chan struct{})
	runner := brewtest.NewRunner().On("brew info --json=v2 wget", brewtest.Response{
		Stdout: `{"formulae":[{"desc":"Internet file retriever","versions":{"stable":"1.24.5"}}]}`,
		Gate:   gate,
	})
	o := newBrewOrchestrator(runner, nil)
	defer o.Close()

	var got []brew.PackageDetail
	onComplete := func(r Result) {
		if r.Err != nil {
			t.Errorf("unexpected error: %v", r.Err)
			return
		}
		got = append(got, r.Value.(brew.PackageDetail))
	}

	op := Operation{Kind: FetchDetails, Target: brew.Formula("wget")}
	if !o.Run(op, onComplete) {
		t.Fatal("first Run() should start a command")
	}
	if o.Run(op, onComplete) {
		t.Fatal("second Run() should join the first")
	}
	if o.InFlight() != 1 {
		t.Errorf("InFlight() = %d, want 1", o.InFlight())
	}

	close(gate)
	if _, ok := next(t, o); !ok {
		t.Fatal("completion was dropped")
	}

	if len(got) != 2 {
		t.Fatalf("callbacks = %d, want 2", len(got))
	}
	if got[0].Description != "Internet file retriever" || got[1].Description != got[0].Description {
		t.Errorf("callers saw different results: %+v", got)
	}
	if n := runner.Count("brew info --json=v2 wget"); n != 1 {
		t.Errorf("command ran %d times, want 1", n)
	}
	if o.InFlight() != 0 {
		t.Errorf("InFlight() after completion = %d", o.InFlight())
	}
}

func TestRunDetailsAndDepsShareKey(t *testing.T) {
	basic := Operation{Kind: FetchDetails, Target: brew.Formula("wget")}
	full := Operation{Kind: FetchDeps, Target: brew.Formula("wget")}
	if basic.Key() != full.Key() {
		t.Errorf("keys differ: %q vs %q", basic.Key(), full.Key())
	}
	cask := Operation{Kind: FetchDetails, Target: brew.CaskRef("wget")}
	if basic.Key() == cask.Key() {
		t.Error("formula and cask with the same name must not share a key")
	}
}

func TestRunDoesNotSerializeUnrelated(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	runner := brewtest.NewRunner().
		On("brew leaves", brewtest.Response{Stdout: "wget\n", Gate: gate}).
		OnStdout("brew list --cask", "iterm2\n")
	o := newBrewOrchestrator(runner, nil)
	defer o.Close()

	o.Run(Operation{Kind: FetchLeaves}, nil)
	o.Run(Operation{Kind: FetchCasks}, nil)

	c, _ := next(t, o)
	if c.Result().Op.Kind != FetchCasks {
		t.Errorf("first completion = %s, want casks while leaves is blocked", c.Result().Op.Kind)
	}
}

func TestCancelDropsResult(t *testing.T) {
	gate := make(chan struct{})
	runner := brewtest.NewRunner().On("brew info --json=v2 wget", brewtest.Response{Stdout: "{}", Gate: gate})
	o := newBrewOrchestrator(runner, nil)
	defer o.Close()

	called := false
	op := Operation{Kind: FetchDetails, Target: brew.Formula("wget")}
	o.Run(op, func(Result) { called = true })
	o.Cancel(op.Key())

	if o.InFlight() != 0 || o.Running(op.Key()) {
		t.Error("cancelled run still counted as wanted")
	}

	close(gate)
	if _, ok := next(t, o); ok {
		t.Error("stale completion was delivered")
	}
	if called {
		t.Error("waiter ran for a cancelled request")
	}
	if n := runner.Count("brew info --json=v2 wget"); n != 1 {
		t.Errorf("process ran %d times, want 1 (cancel must not kill or restart it)", n)
	}
}

func TestRunRevivesCancelledFlight(t *testing.T) {
	gate := make(chan struct{})
	runner := brewtest.NewRunner().On("brew info --json=v2 wget", brewtest.Response{Stdout: "{}", Gate: gate})
	o := newBrewOrchestrator(runner, nil)
	defer o.Close()

	op := Operation{Kind: FetchDetails, Target: brew.Formula("wget")}
	o.Run(op, nil)
	o.Cancel(op.Key())

	called := false
	if o.Run(op, func(Result) { called = true }) {
		t.Error("Run() should rejoin the running command")
	}
	close(gate)
	if _, ok := next(t, o); !ok || !called {
		t.Error("revived request did not receive its result")
	}
}

func TestDispatchLogsUserInitiated(t *testing.T) {
	runner := brewtest.NewRunner().
		OnStdout("brew install wget", "==> Pouring wget--1.24.5.bottle.tar.gz\n🍺  wget was successfully installed!\n").
		OnFailure("brew uninstall jq", "Error: Refusing to uninstall jq\nbecause it is required by yq.", 1)
	activity := history.NewLog(10)

	var recorded []history.Entry
	o := New(&BrewBackend{Client: brew.NewClient(runner, "brew")}, Options{
		Log:    activity,
		Record: func(e history.Entry) { recorded = append(recorded, e) },
	})
	defer o.Close()

	o.Run(Operation{Kind: Install, Target: brew.Formula("wget")}, nil)
	next(t, o)
	o.Run(Operation{Kind: Uninstall, Target: brew.Formula("jq")}, nil)
	next(t, o)

	entries := activity.Entries()
	if len(entries) != 2 || len(recorded) != 2 {
		t.Fatalf("entries = %d, recorded = %d, want 2 each", len(entries), len(recorded))
	}

	if entries[0].Kind != history.KindSuccess || entries[0].Message != "installed wget" {
		t.Errorf("install entry = %+v", entries[0])
	}
	if len(entries[0].Output) != 2 {
		t.Errorf("install output = %v", entries[0].Output)
	}

	if entries[1].Kind != history.KindError {
		t.Errorf("uninstall entry kind = %s", entries[1].Kind)
	}
	if want := "uninstall jq failed: Refusing to uninstall jq"; entries[1].Message != want {
		t.Errorf("uninstall message = %q, want %q", entries[1].Message, want)
	}
	if len(entries[1].Output) != 2 {
		t.Errorf("failure output = %v", entries[1].Output)
	}
}

func TestDispatchPassiveFetches(t *testing.T) {
	runner := brewtest.NewRunner().
		OnStdout("brew leaves", "wget\n").
		OnFailure("brew list --cask", "Error: cask support unavailable", 1)
	activity := history.NewLog(10)
	o := newBrewOrchestrator(runner, activity)
	defer o.Close()

	o.Run(Operation{Kind: FetchLeaves}, nil)
	next(t, o)
	if activity.Len() != 0 {
		t.Fatalf("successful fetch logged %d entries", activity.Len())
	}

	o.Run(Operation{Kind: FetchCasks}, nil)
	next(t, o)
	last, ok := activity.Last()
	if !ok || last.Kind != history.KindError {
		t.Fatalf("failed fetch not logged: %+v", last)
	}
	if !strings.Contains(last.Message, "cask support unavailable") {
		t.Errorf("message = %q", last.Message)
	}
}

func TestFetchTimeout(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	runner := brewtest.NewRunner().On("brew leaves", brewtest.Response{Gate: gate})
	o := New(&BrewBackend{Client: brew.NewClient(runner, "brew")}, Options{FetchTimeout: 20 * time.Millisecond})
	defer o.Close()

	var res Result
	o.Run(Operation{Kind: FetchLeaves}, func(r Result) { res = r })
	next(t, o)

	if !brew.IsTimeout(res.Err) {
		t.Errorf("err = %v, want timeout", res.Err)
	}
}

func TestRunsWithoutOrchestratorDeadline(t *testing.T) {
	tests := []Operation{
		{Kind: Upgrade, Target: brew.Formula("wget")},
		{Kind: RefreshStatus},
	}

	for _, op := range tests {
		t.Run(op.Kind.String(), func(t *testing.T) {
			var deadline bool
			o := New(BackendFunc(func(ctx context.Context, op Operation) Result {
				_, deadline = ctx.Deadline()
				return Result{}
			}), Options{FetchTimeout: time.Millisecond})
			defer o.Close()

			o.Run(op, nil)
			next(t, o)
			if deadline {
				t.Errorf("%s ran with a deadline", op.Kind)
			}
		})
	}
}

func TestBusy(t *testing.T) {
	release := make(chan struct{})
	o := New(BackendFunc(func(ctx context.Context, op Operation) Result {
		<-release
		return Result{}
	}), Options{})
	defer o.Close()

	o.Run(Operation{Kind: FetchSizes}, nil)
	if o.Busy() {
		t.Error("a background fetch should not make the orchestrator busy")
	}
	o.Run(Operation{Kind: Cleanup}, nil)
	if !o.Busy() {
		t.Error("cleanup should make the orchestrator busy")
	}

	close(release)
	next(t, o)
	next(t, o)
	if o.Busy() || o.InFlight() != 0 {
		t.Error("orchestrator still busy after all completions")
	}
}

func TestUnknownKind(t *testing.T) {
	o := New(&BrewBackend{Client: brew.NewClient(brewtest.NewRunner(), "brew")}, Options{})
	defer o.Close()

	var res Result
	o.Run(Operation{Kind: RefreshStatus}, func(r Result) { res = r })
	next(t, o)
	if !errors.Is(res.Err, ErrUnknownKind) {
		t.Errorf("err = %v, want ErrUnknownKind", res.Err)
	}
}

func TestNote(t *testing.T) {
	activity := history.NewLog(10)
	o := New(BackendFunc(func(context.Context, Operation) Result { return Result{} }), Options{Log: activity})
	defer o.Close()

	e := o.Note(Operation{Kind: Install, Target: brew.Formula("wget")}, "install wget cancelled")
	if e.Kind != history.KindInfo || activity.Len() != 1 {
		t.Errorf("Note() = %+v, log len %d", e, activity.Len())
	}
}
