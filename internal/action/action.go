// Package action gates destructive commands behind a confirming second keypress.
package action

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"brewery/internal/orchestrator"
	"brewery/pkg/brew"
)

// DefaultTimeout disarms an action nobody confirmed.
const DefaultTimeout = 5 * time.Second

var (
	// ErrBusy is reported when an action is triggered while another executes.
	ErrBusy = errors.New("another action is still running")

	// ErrNothingToUpgrade is reported when upgrade-all has no targets.
	ErrNothingToUpgrade = errors.New("no outdated packages to upgrade")
)

// State is the machine's position.
type State int

const (
	Idle State = iota
	Armed
	Executing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Executing:
		return "executing"
	}
	return "unknown"
}

// Outcome is what a trigger did.
type Outcome int

const (
	// OutcomeArmed means the action now waits for confirmation.
	OutcomeArmed Outcome = iota
	// OutcomeExecute means the caller must run Pending() now.
	OutcomeExecute
	// OutcomeDisarmed means a different action was triggered while armed.
	OutcomeDisarmed
	// OutcomeBusy means another action is executing.
	OutcomeBusy
	// OutcomeNothing means upgrade-all was triggered with no targets.
	OutcomeNothing
)

func (o Outcome) String() string {
	switch o {
	case OutcomeArmed:
		return "armed"
	case OutcomeExecute:
		return "execute"
	case OutcomeDisarmed:
		return "disarmed"
	case OutcomeBusy:
		return "busy"
	case OutcomeNothing:
		return "nothing"
	}
	return "unknown"
}

// Err returns the error a rejected trigger should surface, if any.
func (o Outcome) Err() error {
	switch o {
	case OutcomeBusy:
		return ErrBusy
	case OutcomeNothing:
		return ErrNothingToUpgrade
	}
	return nil
}

// Descriptor identifies one action.
type Descriptor struct {
	Kind   orchestrator.Kind
	Target brew.PackageRef

	// Names is the upgrade-all target set, captured when the action is armed.
	Names []string

	// Key is the trigger key shown in the confirmation prompt.
	Key string
}

// Matches reports whether d and other are the same action.
func (d Descriptor) Matches(other Descriptor) bool {
	return d.Kind == other.Kind && d.Target == other.Target
}

// Operation converts the descriptor into an orchestrator operation.
func (d Descriptor) Operation() orchestrator.Operation {
	return orchestrator.Operation{
		Kind:   d.Kind,
		Target: d.Target,
		Names:  append([]string(nil), d.Names...),
	}
}

// Question is the confirmation question, e.g. "Install formula wget?".
func (d Descriptor) Question() string {
	switch d.Kind {
	case orchestrator.UpgradeAll:
		return fmt.Sprintf("Upgrade %d outdated (%s)?", len(d.Names), summarize(d.Names, 3))
	case orchestrator.SelfUpdate:
		return "Update brewery to the latest release?"
	}
	return fmt.Sprintf("%s %s %s?", d.Kind.Title(), d.Target.Kind(), d.Target.Name)
}

func summarize(names []string, max int) string {
	if len(names) <= max {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s, +%d more", strings.Join(names[:max], ", "), len(names)-max)
}

// Machine is the Idle, Armed, Executing state machine. It is owned by the UI
// goroutine and holds no locks.
type Machine struct {
	timeout time.Duration

	state   State
	pending Descriptor
	armedAt time.Time
}

// New creates an idle machine whose armed actions expire after timeout.
func New(timeout time.Duration) *Machine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Machine{timeout: timeout}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Pending returns the armed or executing action.
func (m *Machine) Pending() (Descriptor, bool) {
	if m.state == Idle {
		return Descriptor{}, false
	}
	return m.pending, true
}

// Trigger handles a trigger keypress for d at now. Read-only kinds never arm
// and always execute.
func (m *Machine) Trigger(d Descriptor, now time.Time) Outcome {
	if m.state == Executing {
		return OutcomeBusy
	}

	if !d.Kind.Destructive() {
		m.disarm()
		return OutcomeExecute
	}

	if m.state == Armed {
		if m.expired(now) {
			m.disarm()
		} else if m.pending.Matches(d) {
			m.state = Executing
			return OutcomeExecute
		} else {
			m.disarm()
			return OutcomeDisarmed
		}
	}

	if d.Kind == orchestrator.UpgradeAll && len(d.Names) == 0 {
		return OutcomeNothing
	}
	d.Names = append([]string(nil), d.Names...)
	m.state = Armed
	m.pending = d
	m.armedAt = now
	return OutcomeArmed
}

// Cancel disarms an armed action. It reports whether anything was armed.
func (m *Machine) Cancel() bool {
	if m.state != Armed {
		return false
	}
	m.disarm()
	return true
}

// Other handles any keypress that is not a trigger. An armed action is
// disarmed without running.
func (m *Machine) Other() bool {
	return m.Cancel()
}

// Expire disarms an action left unconfirmed past the timeout.
func (m *Machine) Expire(now time.Time) bool {
	if m.state != Armed || !m.expired(now) {
		return false
	}
	m.disarm()
	return true
}

// Remaining returns how long the armed action stays armed.
func (m *Machine) Remaining(now time.Time) time.Duration {
	if m.state != Armed {
		return 0
	}
	if left := m.timeout - now.Sub(m.armedAt); left > 0 {
		return left
	}
	return 0
}

// Complete returns an executing machine to Idle.
func (m *Machine) Complete() {
	if m.state == Executing {
		m.disarm()
	}
}

// Prompt is the confirmation indicator for the armed action, or "".
func (m *Machine) Prompt() string {
	if m.state != Armed {
		return ""
	}
	key := m.pending.Key
	if key == "" {
		key = "the same key"
	}
	return fmt.Sprintf("%s Press %s again to confirm, Esc to cancel.", m.pending.Question(), key)
}

func (m *Machine) expired(now time.Time) bool {
	return now.Sub(m.armedAt) >= m.timeout
}

func (m *Machine) disarm() {
	m.state = Idle
	m.pending = Descriptor{}
	m.armedAt = time.Time{}
}
