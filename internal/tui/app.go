package tui

import (
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"brewery/internal/action"
	"brewery/internal/orchestrator"
)

// Messages delivered to Update
type (
	startMsg struct{}

	completionMsg struct {
		completion orchestrator.Completion
	}

	tickMsg struct {
		chain int
		at    time.Time
	}

	watchMsg struct{}
)

// App wraps the Model with the bubbletea plumbing.
type App struct {
	*Model

	// tickChain identifies the live tick pump; ticks from older chains are dropped.
	tickChain int
	tickEvery time.Duration
}

// NewApp creates a new TUI application
func NewApp(opts Options) (*App, error) {
	m, err := NewModel(opts)
	if err != nil {
		return nil, err
	}
	return &App{Model: m}, nil
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return startMsg{} },
		a.listen(),
		a.watch(),
		a.restartTicks(a.now()),
	)
}

// listen waits for the next finished command.
func (a *App) listen() tea.Cmd {
	if a.orch == nil {
		return nil
	}
	ch := a.orch.Completions()
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return completionMsg{completion: c}
	}
}

// watch waits for the Cellar to change outside the dashboard.
func (a *App) watch() tea.Cmd {
	if a.watcher == nil {
		return nil
	}
	ch := a.watcher.Changes()
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return watchMsg{}
	}
}

func (a *App) tick(d time.Duration) tea.Cmd {
	chain := a.tickChain
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg{chain: chain, at: t}
	})
}

// restartTicks starts a new pump at the scheduler's current cadence.
func (a *App) restartTicks(now time.Time) tea.Cmd {
	a.tickChain++
	a.tickEvery = a.redraw.Interval(now, a.busy())
	return a.tick(a.tickEvery)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	now := a.now()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetSize(msg.Width, msg.Height)

	case startMsg:
		a.requestLeaves()
		a.requestStatus()

	case tea.KeyMsg:
		a.redraw.NoteInput(now)
		if a.isQuit(msg) {
			a.quit()
			return a, tea.Quit
		}
		if cmd := a.handleKey(msg, now); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case completionMsg:
		a.orch.Dispatch(msg.completion)
		a.redraw.MarkDirty()
		cmds = append(cmds, a.listen())

	case watchMsg:
		a.externalChange()
		cmds = append(cmds, a.watch())

	case tickMsg:
		if msg.chain != a.tickChain {
			return a, nil
		}
		a.onTick(now)
		a.tickEvery = a.redraw.Interval(now, a.busy())
		cmds = append(cmds, a.tick(a.tickEvery))

	default:
		if a.searching {
			var cmd tea.Cmd
			a.input, cmd = a.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if a.redraw.Interval(now, a.busy()) < a.tickEvery {
		cmds = append(cmds, a.restartTicks(now))
	}
	a.paint(now)
	return a, tea.Batch(cmds...)
}

// onTick runs the timers that only advance when the pump fires.
func (a *App) onTick(now time.Time) {
	if key, ok := a.debounce.Poll(now); ok {
		if ref, ok := a.Selected(); ok && ref.Key() == key {
			a.requestDetails(ref, false)
		}
	}
	if query, ok := a.debounce.PollInput(now); ok {
		if a.filter.Mode == SearchAll && query == a.filter.Text {
			a.runSearch(query)
		}
	}
	if a.machine.Expire(now) {
		a.setMessage("Canceled")
	}
	a.expireToast(now)
}

// paint rebuilds the frame when the scheduler says a repaint is due.
func (a *App) paint(now time.Time) {
	if !a.ready || a.quitting {
		return
	}
	if a.redraw.Tick(now, a.busy()) {
		a.frame = a.render(now)
	}
}

// View implements tea.Model
func (a *App) View() string {
	if a.quitting {
		return ""
	}
	if !a.ready {
		return "Loading..."
	}
	return a.frame
}

func (a *App) handleKey(msg tea.KeyMsg, now time.Time) tea.Cmd {
	if a.searching {
		return a.handleInput(msg, now)
	}

	if key.Matches(msg, a.keys.Cancel) {
		a.cancel()
		return nil
	}
	if !a.keys.isTrigger(msg.String()) && a.machine.Other() {
		a.setMessage("Canceled")
	}

	switch {
	case key.Matches(msg, a.keys.Help):
		a.showHelp = !a.showHelp
		a.redraw.MarkDirty()

	// Navigation
	case key.Matches(msg, a.keys.Up):
		a.navigate(-1, now)
	case key.Matches(msg, a.keys.Down):
		a.navigate(1, now)
	case key.Matches(msg, a.keys.Top):
		a.navigate(-a.listLen(), now)
	case key.Matches(msg, a.keys.Bottom):
		a.navigate(a.listLen(), now)
	case key.Matches(msg, a.keys.Focus):
		a.cycleFocus(1)
	case key.Matches(msg, a.keys.BackFocus):
		a.cycleFocus(-1)
	case key.Matches(msg, a.keys.Left):
		a.setStatusTab((a.statusTab + 2) % 3)
	case key.Matches(msg, a.keys.Right):
		a.setStatusTab((a.statusTab + 1) % 3)
	case key.Matches(msg, a.keys.Tab1):
		a.setStatusTab(TabActivity)
	case key.Matches(msg, a.keys.Tab2):
		a.setStatusTab(TabIssues)
	case key.Matches(msg, a.keys.Tab3):
		a.setStatusTab(TabOutdated)

	// Views
	case key.Matches(msg, a.keys.Enter):
		if ref, ok := a.Selected(); ok {
			a.debounce.Cancel()
			a.requestDetails(ref, false)
			a.focus = PanelDetails
		}
	case key.Matches(msg, a.keys.Deps):
		if ref, ok := a.Selected(); ok {
			a.debounce.Cancel()
			a.requestDetails(ref, true)
		}
	case key.Matches(msg, a.keys.Filter):
		return a.startInput(FilterInstalled, a.filter.Text)
	case key.Matches(msg, a.keys.Search):
		return a.startInput(SearchAll, "")
	case key.Matches(msg, a.keys.Outdated):
		a.toggleOutdated(now)
	case key.Matches(msg, a.keys.Casks):
		a.toggleCasks(now)
	case key.Matches(msg, a.keys.Sizes):
		a.focus = PanelSizes
		a.requestSizes()
	case key.Matches(msg, a.keys.Status):
		if a.orch != nil && a.orch.Running(orchestrator.Operation{Kind: orchestrator.RefreshStatus}.Key()) {
			a.setMessage("Status refresh already running")
			break
		}
		a.setMessage("Refreshing status...")
		a.requestStatus()
	case key.Matches(msg, a.keys.Refresh):
		a.setMessage("Refreshing...")
		a.cache.Purge()
		a.detailsErrs = make(map[string]string)
		a.requestLeaves()
		if a.casksLoaded {
			a.requestCasks()
		}
		a.requestStatus()
	case key.Matches(msg, a.keys.ViewMode):
		a.viewMode = 1 - a.viewMode
		a.redraw.MarkDirty()
	case key.Matches(msg, a.keys.Theme):
		if a.styles.Palette.Name == DarkPalette.Name {
			a.setPalette(LightPalette)
		} else {
			a.setPalette(DarkPalette)
		}
	case key.Matches(msg, a.keys.IconMode):
		a.setIcons(!a.asciiIcons)

	// Actions
	case key.Matches(msg, a.keys.Install):
		a.triggerSelected(orchestrator.Install, msg.String(), now)
	case key.Matches(msg, a.keys.Uninstall):
		a.triggerSelected(orchestrator.Uninstall, msg.String(), now)
	case key.Matches(msg, a.keys.Upgrade):
		if a.focus == PanelStatus && a.statusTab == TabOutdated {
			a.trigger(action.Descriptor{
				Kind:  orchestrator.UpgradeAll,
				Names: a.snapshot.OutdatedNames(),
				Key:   msg.String(),
			}, now)
		} else {
			a.triggerSelected(orchestrator.Upgrade, msg.String(), now)
		}
	case key.Matches(msg, a.keys.SelfUpdate):
		a.trigger(action.Descriptor{Kind: orchestrator.SelfUpdate, Key: msg.String()}, now)
	case key.Matches(msg, a.keys.Cleanup):
		a.trigger(action.Descriptor{Kind: orchestrator.Cleanup}, now)
	case key.Matches(msg, a.keys.Autoremove):
		a.trigger(action.Descriptor{Kind: orchestrator.Autoremove}, now)
	case key.Matches(msg, a.keys.Bundle):
		a.trigger(action.Descriptor{Kind: orchestrator.BundleDump}, now)
	}
	return nil
}

// handleInput routes keys to the filter/search box while it has focus.
func (a *App) handleInput(msg tea.KeyMsg, now time.Time) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		a.input.Blur()
		a.searching = false
		a.clearFilter()
		return nil
	case tea.KeyEnter:
		a.input.Blur()
		a.searching = false
		if a.filter.Mode == SearchAll {
			a.runSearch(a.filter.Text)
		}
		a.redraw.MarkDirty()
		return nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	text := a.input.Value()
	if text == a.filter.Text {
		return cmd
	}
	a.filter.Text = text

	switch a.filter.Mode {
	case FilterInstalled:
		a.cursor = 0
		a.refreshVisible()
		a.selectionChanged(now)
	case SearchAll:
		a.queueSearch(text, now)
		a.redraw.MarkDirty()
	}
	return cmd
}

func (a *App) startInput(mode FilterMode, value string) tea.Cmd {
	if mode != a.filter.Mode {
		a.clearFilter()
	}
	a.filter.Mode = mode
	a.filter.Text = value
	a.searching = true
	switch mode {
	case SearchAll:
		a.input.Placeholder = "search all formulae and casks"
	default:
		a.input.Placeholder = "filter installed"
	}
	a.input.SetValue(value)
	a.input.CursorEnd()
	a.redraw.MarkDirty()
	return a.input.Focus()
}

// cancel is Esc outside the input box.
func (a *App) cancel() {
	switch {
	case a.machine.Cancel():
		a.setMessage("Canceled")
	case a.showHelp:
		a.showHelp = false
		a.redraw.MarkDirty()
	case a.filter.Text != "" || a.filter.Mode == SearchAll:
		a.clearFilter()
	default:
		a.setMessage("")
	}
}

// clearFilter returns to the unfiltered installed list.
func (a *App) clearFilter() {
	a.debounce.CancelInput()
	if a.searchKey != "" && a.orch != nil {
		a.orch.Cancel(a.searchKey)
	}
	a.searchKey = ""
	a.results = nil
	a.resultCursor = 0
	a.filter.Text = ""
	a.filter.Mode = FilterInstalled
	a.input.SetValue("")
	a.cursor = 0
	a.refreshVisible()
	a.selectionChanged(a.now())
}

func (a *App) navigate(delta int, now time.Time) {
	if a.focus != PanelPackages {
		a.scrollPanel(a.focus, delta)
		return
	}
	if a.moveCursor(delta) {
		a.selectionChanged(now)
	}
}

func (a *App) toggleOutdated(now time.Time) {
	a.filter.OutdatedOnly = !a.filter.OutdatedOnly
	if a.filter.OutdatedOnly && a.snapshot == nil {
		a.requestStatus()
	}
	a.cursor = 0
	a.refreshVisible()
	a.selectionChanged(now)
}

func (a *App) toggleCasks(now time.Time) {
	a.caskMode = !a.caskMode
	if a.caskMode && !a.casksLoaded {
		a.requestCasks()
	}
	a.cursor = 0
	a.refreshVisible()
	a.selectionChanged(now)
}

func (a *App) triggerSelected(kind orchestrator.Kind, keyStr string, now time.Time) {
	ref, ok := a.Selected()
	if !ok {
		a.machine.Cancel()
		a.setMessage(fmt.Sprintf("Select a package to %s", kind))
		return
	}
	a.trigger(action.Descriptor{Kind: kind, Target: ref, Key: keyStr}, now)
}

// isQuit reports whether msg ends the program. Plain q types into the input box.
func (a *App) isQuit(msg tea.KeyMsg) bool {
	return key.Matches(msg, a.keys.Quit) && (!a.searching || msg.Type == tea.KeyCtrlC)
}

func (a *App) quit() {
	a.quitting = true
	a.machine.Cancel()
	if a.orch != nil {
		if op, _, ok := a.orch.Current(); ok && a.orch.Busy() {
			log.Printf("tui: quitting while %s runs", op.Key())
		}
		a.orch.Close()
	}
	log.Printf("tui: %d paints, %d details cached, %d evicted",
		a.redraw.Paints(), a.cache.Len(), a.cache.Evicted())
}

// Run starts the dashboard and blocks until the user quits.
func Run(opts Options) error {
	app, err := NewApp(opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

var _ tea.Model = (*App)(nil)
