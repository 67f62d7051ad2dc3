// Package debounce decides when navigation and typing should turn into fetches.
package debounce

import "time"

// Decision is the immediate verdict for one navigation event.
type Decision int

const (
	// Fire means fetch now; only returned when no settle delay is configured.
	Fire Decision = iota
	// Defer means the fetch is scheduled for when the selection settles.
	Defer
	// Suppress means the user is scrolling rapidly and nothing is scheduled
	// until the scroll stops.
	Suppress
)

func (d Decision) String() string {
	switch d {
	case Fire:
		return "fire"
	case Defer:
		return "defer"
	case Suppress:
		return "suppress"
	}
	return "unknown"
}

// Config holds the controller tunables.
type Config struct {
	// Settle is the quiet period after the last navigation before details are fetched.
	Settle time.Duration

	// RapidThreshold is how many selection changes may arrive within one
	// settle window before scrolling counts as rapid.
	RapidThreshold int

	// SearchSettle is the quiet period after the last keystroke before a search runs.
	SearchSettle time.Duration
}

// DefaultConfig returns the stock timings.
func DefaultConfig() Config {
	return Config{
		Settle:         300 * time.Millisecond,
		RapidThreshold: 2,
		SearchSettle:   300 * time.Millisecond,
	}
}

// Controller tracks navigation and text input on the owning goroutine.
// It is not safe for concurrent use.
type Controller struct {
	cfg Config

	navKey     string
	navPending bool
	lastNav    time.Time
	burst      int

	query        string
	queryPending bool
	lastInput    time.Time
}

// New creates a Controller.
func New(cfg Config) *Controller {
	if cfg.RapidThreshold <= 0 {
		cfg.RapidThreshold = DefaultConfig().RapidThreshold
	}
	return &Controller{cfg: cfg}
}

// OnNavigate records that the selection moved to key at now.
func (c *Controller) OnNavigate(key string, now time.Time) Decision {
	if !c.lastNav.IsZero() && now.Sub(c.lastNav) > c.cfg.Settle {
		c.burst = 0
	}
	c.burst++
	c.lastNav = now
	c.navKey = key
	c.navPending = true

	if c.burst > c.cfg.RapidThreshold {
		return Suppress
	}
	if c.cfg.Settle <= 0 {
		c.navPending = false
		return Fire
	}
	return Defer
}

// Poll returns the resting selection once it has been quiet for the settle
// period. Each navigation is returned at most once.
func (c *Controller) Poll(now time.Time) (string, bool) {
	if !c.navPending || now.Sub(c.lastNav) < c.cfg.Settle {
		return "", false
	}
	c.navPending = false
	c.burst = 0
	return c.navKey, true
}

// Rapid reports whether the current navigation burst is being suppressed.
func (c *Controller) Rapid() bool {
	return c.navPending && c.burst > c.cfg.RapidThreshold
}

// Cancel drops a scheduled detail fetch.
func (c *Controller) Cancel() {
	c.navPending = false
	c.burst = 0
}

// OnInput records the filter or search text after a keystroke.
func (c *Controller) OnInput(query string, now time.Time) {
	c.query = query
	c.queryPending = true
	c.lastInput = now
}

// PollInput returns the query once typing has paused for the search settle period.
func (c *Controller) PollInput(now time.Time) (string, bool) {
	if !c.queryPending || now.Sub(c.lastInput) < c.cfg.SearchSettle {
		return "", false
	}
	c.queryPending = false
	return c.query, true
}

// CancelInput drops a scheduled search.
func (c *Controller) CancelInput() {
	c.queryPending = false
}

// Pending reports whether a fetch or search is waiting to settle.
func (c *Controller) Pending() bool {
	return c.navPending || c.queryPending
}
