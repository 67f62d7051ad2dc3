package action

import (
	"errors"
	"strings"
	"testing"
	"time"

	"brewery/internal/orchestrator"
	"brewery/pkg/brew"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func install(name string) Descriptor {
	return Descriptor{Kind: orchestrator.Install, Target: brew.Formula(name), Key: "i"}
}

func TestConfirmFlow(t *testing.T) {
	m := New(5 * time.Second)

	if got := m.Trigger(install("wget"), t0); got != OutcomeArmed {
		t.Fatalf("first trigger = %v, want armed", got)
	}
	if m.State() != Armed {
		t.Fatalf("State() = %v", m.State())
	}
	if p := m.Prompt(); !strings.Contains(p, "Install formula wget?") || !strings.Contains(p, "Press i again") {
		t.Errorf("Prompt() = %q", p)
	}

	if got := m.Trigger(install("wget"), t0.Add(time.Second)); got != OutcomeExecute {
		t.Fatalf("second trigger = %v, want execute", got)
	}
	if m.State() != Executing {
		t.Fatalf("State() = %v, want executing", m.State())
	}
	d, ok := m.Pending()
	if !ok || d.Target.Name != "wget" {
		t.Errorf("Pending() = %+v, %v", d, ok)
	}
	if m.Prompt() != "" {
		t.Error("no prompt while executing")
	}

	m.Complete()
	if m.State() != Idle {
		t.Errorf("State() after Complete = %v", m.State())
	}
	if _, ok := m.Pending(); ok {
		t.Error("Pending() should be empty after completion")
	}
}

func TestArmedDisarms(t *testing.T) {
	tests := []struct {
		name  string
		apply func(m *Machine) bool
	}{
		{"cancel", func(m *Machine) bool { return m.Cancel() }},
		{"other key", func(m *Machine) bool { return m.Other() }},
		{"timeout", func(m *Machine) bool { return m.Expire(t0.Add(5 * time.Second)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(5 * time.Second)
			m.Trigger(install("wget"), t0)

			if !tt.apply(m) {
				t.Error("expected the armed action to be disarmed")
			}
			if m.State() != Idle {
				t.Errorf("State() = %v, want idle", m.State())
			}
			if got := m.Trigger(install("wget"), t0.Add(6*time.Second)); got != OutcomeArmed {
				t.Errorf("next trigger = %v, want armed again", got)
			}
		})
	}
}

func TestExpireBeforeTimeout(t *testing.T) {
	m := New(5 * time.Second)
	m.Trigger(install("wget"), t0)

	if m.Expire(t0.Add(4 * time.Second)) {
		t.Error("Expire() fired early")
	}
	if got := m.Remaining(t0.Add(4 * time.Second)); got != time.Second {
		t.Errorf("Remaining() = %v, want 1s", got)
	}
}

func TestMismatchedTriggersNeverExecute(t *testing.T) {
	m := New(5 * time.Second)
	uninstall := Descriptor{Kind: orchestrator.Uninstall, Target: brew.Formula("wget")}

	seq := []Descriptor{install("wget"), uninstall, install("jq"), install("wget"), uninstall}
	want := []Outcome{OutcomeArmed, OutcomeDisarmed, OutcomeArmed, OutcomeDisarmed, OutcomeArmed}

	for i, d := range seq {
		got := m.Trigger(d, t0.Add(time.Duration(i)*100*time.Millisecond))
		if got != want[i] {
			t.Errorf("trigger %d = %v, want %v", i, got, want[i])
		}
		if m.State() == Executing {
			t.Fatalf("trigger %d reached executing", i)
		}
	}
}

func TestSameKindDifferentTargetDisarms(t *testing.T) {
	m := New(5 * time.Second)
	m.Trigger(install("wget"), t0)

	cask := Descriptor{Kind: orchestrator.Install, Target: brew.CaskRef("wget")}
	if got := m.Trigger(cask, t0); got != OutcomeDisarmed {
		t.Errorf("trigger = %v, want disarmed", got)
	}
}

func TestTriggerAfterExpiryRearms(t *testing.T) {
	m := New(5 * time.Second)
	m.Trigger(install("wget"), t0)

	if got := m.Trigger(install("wget"), t0.Add(10*time.Second)); got != OutcomeArmed {
		t.Errorf("late confirmation = %v, want armed", got)
	}
}

func TestBusyWhileExecuting(t *testing.T) {
	m := New(5 * time.Second)
	m.Trigger(install("wget"), t0)
	m.Trigger(install("wget"), t0)

	got := m.Trigger(install("jq"), t0)
	if got != OutcomeBusy || !errors.Is(got.Err(), ErrBusy) {
		t.Errorf("trigger while executing = %v (%v)", got, got.Err())
	}
	if m.Cancel() || m.Other() {
		t.Error("an executing action cannot be cancelled")
	}
	if m.State() != Executing {
		t.Errorf("State() = %v", m.State())
	}
}

func TestUpgradeAllCapturesTargets(t *testing.T) {
	m := New(5 * time.Second)
	outdated := []string{"jq", "wget"}
	d := Descriptor{Kind: orchestrator.UpgradeAll, Names: outdated, Key: "U"}

	if got := m.Trigger(d, t0); got != OutcomeArmed {
		t.Fatalf("trigger = %v", got)
	}
	outdated[0] = "openssl@3"

	// A refresh between the two presses must not change the set.
	refreshed := Descriptor{Kind: orchestrator.UpgradeAll, Names: []string{"jq", "wget", "node"}, Key: "U"}
	if got := m.Trigger(refreshed, t0.Add(time.Second)); got != OutcomeExecute {
		t.Fatalf("confirm = %v", got)
	}

	pending, _ := m.Pending()
	op := pending.Operation()
	if len(op.Names) != 2 || op.Names[0] != "jq" || op.Names[1] != "wget" {
		t.Errorf("executing names = %v, want [jq wget]", op.Names)
	}
}

func TestUpgradeAllWithNothingOutdated(t *testing.T) {
	m := New(5 * time.Second)
	got := m.Trigger(Descriptor{Kind: orchestrator.UpgradeAll}, t0)
	if got != OutcomeNothing || !errors.Is(got.Err(), ErrNothingToUpgrade) {
		t.Errorf("trigger = %v", got)
	}
	if m.State() != Idle {
		t.Errorf("State() = %v", m.State())
	}
}

func TestReadOnlyExecutesImmediately(t *testing.T) {
	m := New(5 * time.Second)
	m.Trigger(install("wget"), t0)

	if got := m.Trigger(Descriptor{Kind: orchestrator.Cleanup}, t0); got != OutcomeExecute {
		t.Errorf("cleanup = %v, want execute", got)
	}
	if m.State() != Idle {
		t.Errorf("a read-only action must leave the machine idle, got %v", m.State())
	}
}

func TestQuestion(t *testing.T) {
	tests := []struct {
		d    Descriptor
		want string
	}{
		{install("wget"), "Install formula wget?"},
		{Descriptor{Kind: orchestrator.Uninstall, Target: brew.CaskRef("iterm2")}, "Uninstall cask iterm2?"},
		{Descriptor{Kind: orchestrator.UpgradeAll, Names: []string{"a", "b", "c", "d"}}, "Upgrade 4 outdated (a, b, c, +1 more)?"},
		{Descriptor{Kind: orchestrator.SelfUpdate}, "Update brewery to the latest release?"},
	}

	for _, tt := range tests {
		if got := tt.d.Question(); got != tt.want {
			t.Errorf("Question() = %q, want %q", got, tt.want)
		}
	}
}
