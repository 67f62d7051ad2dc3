package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"

	"brewery/internal/action"
	"brewery/internal/cache"
	"brewery/internal/config"
	"brewery/internal/debounce"
	"brewery/internal/history"
	"brewery/internal/orchestrator"
	"brewery/internal/redraw"
	"brewery/internal/status"
	"brewery/internal/watcher"
	"brewery/pkg/brew"
)

// Panel is a focusable region of the dashboard.
type Panel int

const (
	PanelPackages Panel = iota
	PanelDetails
	PanelSizes
	PanelStatus
)

var panelNames = [...]string{"Packages", "Details", "Sizes", "Status"}

func (p Panel) String() string {
	return panelNames[p]
}

// StatusTab selects the content of the status panel.
type StatusTab int

const (
	TabActivity StatusTab = iota
	TabIssues
	TabOutdated
)

var statusTabNames = [...]string{"Activity", "Issues", "Outdated"}

func (t StatusTab) String() string {
	return statusTabNames[t]
}

// FilterMode selects which list the filter text applies to.
type FilterMode int

const (
	// FilterInstalled narrows the installed list as the user types.
	FilterInstalled FilterMode = iota
	// SearchAll searches every formula and cask Homebrew knows.
	SearchAll
)

// Filter is the text, mode and outdated-only toggle that decide which
// packages are visible.
type Filter struct {
	Text         string
	Mode         FilterMode
	OutdatedOnly bool
}

// ViewMode selects how much of a package's details is shown.
type ViewMode int

const (
	ViewFull ViewMode = iota
	ViewCompact
)

type toast struct {
	text  string
	kind  history.Kind
	until time.Time
}

// Options are the collaborators and settings a Model is built from.
type Options struct {
	Config       *config.Config
	Orchestrator *orchestrator.Orchestrator
	Activity     *history.Log

	// Watcher is optional.
	Watcher *watcher.Watcher

	// Version is shown in the header.
	Version string

	// Now is replaced in tests.
	Now func() time.Time
}

// Model is the state store. Only the bubbletea Update goroutine touches it.
type Model struct {
	ready    bool
	quitting bool

	width  int
	height int

	cfg     *config.Config
	version string
	now     func() time.Time

	// Collaborators
	orch     *orchestrator.Orchestrator
	cache    *cache.Cache
	debounce *debounce.Controller
	machine  *action.Machine
	redraw   *redraw.Scheduler
	activity *history.Log
	watcher  *watcher.Watcher

	// Installed lists
	leaves       []string
	casks        []string
	leavesLoaded bool
	casksLoaded  bool
	caskMode     bool

	// Filtering and selection
	filter       Filter
	visible      []brew.PackageRef
	cursor       int
	scroll       int
	results      []brew.SearchResult
	resultCursor int
	searchKey    string
	searching    bool

	// detailsKey is the orchestrator key of the details fetch for the selection.
	detailsKey  string
	wantFull    string
	detailsErrs map[string]string

	// Status
	snapshot    *status.Snapshot
	sizes       []brew.SizeEntry
	sizesLoaded bool
	sizesErr    string
	statusTab   StatusTab

	// Presentation
	focus      Panel
	viewMode   ViewMode
	styles     *Styles
	icons      Icons
	asciiIcons bool
	keys       KeyMap
	help       help.Model
	showHelp   bool
	input      textinput.Model
	message    string
	toast      *toast
	lastOutput []string
	scrolls    map[Panel]int

	// frame is the last painted view; the scheduler decides when it is rebuilt.
	frame string
}

// NewModel creates the state store and its engine components.
func NewModel(opts Options) (*Model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	c, err := cache.New(cfg.Engine.CacheCapacity)
	if err != nil {
		return nil, err
	}

	activity := opts.Activity
	if activity == nil {
		activity = history.NewLog(cfg.Engine.ActivityRetention)
	}

	ti := textinput.New()
	ti.CharLimit = 100
	ti.Width = 30

	m := &Model{
		cfg:     cfg,
		version: opts.Version,
		now:     now,
		orch:    opts.Orchestrator,
		cache:   c,
		debounce: debounce.New(debounce.Config{
			Settle:         cfg.Engine.DetailsDebounce.Duration,
			RapidThreshold: cfg.Engine.RapidScrollThreshold,
			SearchSettle:   cfg.Engine.SearchDebounce.Duration,
		}),
		machine: action.New(cfg.Engine.ConfirmTimeout.Duration),
		redraw: redraw.New(redraw.Config{
			Idle:        cfg.Display.IdleTick.Duration,
			Active:      cfg.Display.ActiveTick.Duration,
			InputActive: cfg.Display.InputActive.Duration,
		}),
		activity:    activity,
		watcher:     opts.Watcher,
		detailsErrs: make(map[string]string),
		asciiIcons:  cfg.UseASCIIIcons(),
		keys:        DefaultKeyMap(),
		help:        help.New(),
		input:       ti,
		message:     "Ready",
		scrolls:     make(map[Panel]int),
	}
	m.setPalette(DetectPalette())
	m.setIcons(m.asciiIcons)
	return m, nil
}

func (m *Model) setPalette(p Palette) {
	m.styles = NewStyles(p)
	m.input.PromptStyle = m.styles.InputPrompt
	m.redraw.MarkDirty()
}

func (m *Model) setIcons(ascii bool) {
	m.asciiIcons = ascii
	if ascii {
		m.icons = ASCIIIcons
	} else {
		m.icons = NerdIcons
	}
	m.redraw.MarkDirty()
}

// SetSize sets the terminal size
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.ready = true
	m.redraw.MarkDirty()
}

// Filter returns the current filter state.
func (m *Model) Filter() Filter {
	return m.filter
}

// Cache returns the detail cache.
func (m *Model) Cache() *cache.Cache {
	return m.cache
}

// Machine returns the action state machine.
func (m *Model) Machine() *action.Machine {
	return m.machine
}

// Snapshot returns the last status snapshot, or nil.
func (m *Model) Snapshot() *status.Snapshot {
	return m.snapshot
}

// Message returns the status-line text.
func (m *Model) Message() string {
	return m.message
}

func (m *Model) setMessage(text string) {
	m.message = text
	m.redraw.MarkDirty()
}

// Visible returns the installed packages that pass the filter. The list is
// rebuilt by the reducer through refreshVisible; reading it changes nothing.
func (m *Model) Visible() []brew.PackageRef {
	return m.visible
}

// refreshVisible rebuilds the visible list after the underlying list or the
// filter changed, and keeps the cursor on it.
func (m *Model) refreshVisible() {
	names, mk := m.leaves, brew.Formula
	if m.caskMode {
		names, mk = m.casks, brew.CaskRef
	}

	needle := ""
	if m.filter.Mode == FilterInstalled {
		needle = strings.ToLower(m.filter.Text)
	}

	visible := make([]brew.PackageRef, 0, len(names))
	for _, name := range names {
		if m.filter.OutdatedOnly && (m.caskMode || !m.snapshot.IsOutdated(name)) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(name), needle) {
			continue
		}
		visible = append(visible, mk(name))
	}
	m.visible = visible
	m.clampCursor()
	m.redraw.MarkDirty()
}

// listChanged rebuilds the visible list and treats a selection that moved
// as navigation, so its details are fetched.
func (m *Model) listChanged(now time.Time) {
	before, had := m.Selected()
	m.refreshVisible()
	if after, has := m.Selected(); has != had || after != before {
		m.selectionChanged(now)
	}
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// showingResults reports whether the package list shows search results.
func (m *Model) showingResults() bool {
	return m.filter.Mode == SearchAll && len(m.results) > 0
}

// Selected returns the package under the cursor.
func (m *Model) Selected() (brew.PackageRef, bool) {
	if m.showingResults() {
		if m.resultCursor >= 0 && m.resultCursor < len(m.results) {
			return m.results[m.resultCursor].Ref, true
		}
		return brew.PackageRef{}, false
	}
	visible := m.Visible()
	if m.cursor >= 0 && m.cursor < len(visible) {
		return visible[m.cursor], true
	}
	return brew.PackageRef{}, false
}

// listLen returns the length of the list the cursor moves over.
func (m *Model) listLen() int {
	if m.showingResults() {
		return len(m.results)
	}
	return len(m.Visible())
}

// moveCursor moves the package cursor by delta and reports whether the
// selection changed.
func (m *Model) moveCursor(delta int) bool {
	n := m.listLen()
	if n == 0 {
		return false
	}
	pos := &m.cursor
	if m.showingResults() {
		pos = &m.resultCursor
	}
	next := *pos + delta
	if next < 0 {
		next = 0
	}
	if next >= n {
		next = n - 1
	}
	if next == *pos {
		return false
	}
	*pos = next
	m.redraw.MarkDirty()
	return true
}

// Detail returns the cached detail for the selection without touching its recency.
func (m *Model) Detail(ref brew.PackageRef) (brew.PackageDetail, bool) {
	return m.cache.Peek(ref.Key())
}

// isOutdated reports whether ref is an outdated leaf in the last snapshot.
func (m *Model) isOutdated(ref brew.PackageRef) bool {
	return !ref.Cask && m.snapshot.IsOutdated(ref.Name)
}

// busy reports whether any command whose result is wanted is in flight.
func (m *Model) busy() bool {
	return m.orch != nil && m.orch.InFlight() > 0
}

func (m *Model) setToast(kind history.Kind, text string) {
	m.toast = &toast{
		text:  text,
		kind:  kind,
		until: m.now().Add(m.cfg.Display.ToastDuration.Duration),
	}
	m.redraw.MarkDirty()
}

func (m *Model) expireToast(now time.Time) {
	if m.toast != nil && !now.Before(m.toast.until) {
		m.toast = nil
		m.redraw.MarkDirty()
	}
}

func (m *Model) cycleFocus(delta int) {
	n := len(panelNames)
	m.focus = Panel((int(m.focus) + delta + n) % n)
	m.redraw.MarkDirty()
}

func (m *Model) setStatusTab(tab StatusTab) {
	m.statusTab = tab
	m.scrolls[PanelStatus] = 0
	m.redraw.MarkDirty()
}

func (m *Model) scrollPanel(p Panel, delta int) {
	next := m.scrolls[p] + delta
	if next < 0 {
		next = 0
	}
	m.scrolls[p] = next
	m.redraw.MarkDirty()
}
