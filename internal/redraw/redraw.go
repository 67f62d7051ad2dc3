// Package redraw decides when the dashboard needs repainting.
package redraw

import "time"

// Config holds the two repaint cadences.
type Config struct {
	// Idle is the slow cadence. The header clock is rendered at this
	// granularity, so idle repaints never happen more often.
	Idle time.Duration

	// Active is the fast cadence used while a command runs or input changes.
	Active time.Duration

	// InputActive is how long after the last keypress input counts as changing.
	InputActive time.Duration
}

// DefaultConfig returns a one-second idle cadence and an 80ms active one.
func DefaultConfig() Config {
	return Config{
		Idle:        time.Second,
		Active:      80 * time.Millisecond,
		InputActive: 500 * time.Millisecond,
	}
}

// Scheduler tracks the dirty flag and the time of the last repaint.
type Scheduler struct {
	cfg Config

	dirty     bool
	lastPaint time.Time
	lastInput time.Time
	paints    int
}

// New creates a scheduler. The first Tick always repaints.
func New(cfg Config) *Scheduler {
	def := DefaultConfig()
	if cfg.Idle <= 0 {
		cfg.Idle = def.Idle
	}
	if cfg.Active <= 0 || cfg.Active > cfg.Idle {
		cfg.Active = def.Active
	}
	if cfg.InputActive < 0 {
		cfg.InputActive = def.InputActive
	}
	return &Scheduler{cfg: cfg, dirty: true}
}

// MarkDirty records a state change that must be painted.
func (s *Scheduler) MarkDirty() {
	s.dirty = true
}

// NoteInput records a keypress, which also dirties the state.
func (s *Scheduler) NoteInput(now time.Time) {
	s.lastInput = now
	s.dirty = true
}

// Active reports whether the fast cadence applies.
func (s *Scheduler) Active(now time.Time, busy bool) bool {
	return busy || (!s.lastInput.IsZero() && now.Sub(s.lastInput) < s.cfg.InputActive)
}

// Interval returns the pump period to use until the next tick.
func (s *Scheduler) Interval(now time.Time, busy bool) time.Duration {
	if s.Active(now, busy) {
		return s.cfg.Active
	}
	return s.cfg.Idle
}

// Tick reports whether a repaint is due at now and, if so, records it.
// busy is true while at least one command is in flight.
func (s *Scheduler) Tick(now time.Time, busy bool) bool {
	due := s.dirty ||
		s.clockAdvanced(now) ||
		(s.Active(now, busy) && now.Sub(s.lastPaint) >= s.cfg.Active)
	if !due {
		return false
	}
	s.dirty = false
	s.lastPaint = now
	s.paints++
	return true
}

// Paints returns how many repaints Tick has granted.
func (s *Scheduler) Paints() int {
	return s.paints
}

func (s *Scheduler) clockAdvanced(now time.Time) bool {
	return !now.Truncate(s.cfg.Idle).Equal(s.lastPaint.Truncate(s.cfg.Idle))
}
