package tui

import (
	"fmt"
	"log"
	"time"

	"brewery/internal/action"
	"brewery/internal/debounce"
	"brewery/internal/history"
	"brewery/internal/orchestrator"
	"brewery/internal/status"
	"brewery/pkg/brew"
)

// run hands op to the orchestrator. It is a no-op without one so the model
// can be exercised on its own.
func (m *Model) run(op orchestrator.Operation, onComplete func(orchestrator.Result)) {
	if m.orch == nil {
		return
	}
	m.orch.Run(op, onComplete)
	m.redraw.MarkDirty()
}

func (m *Model) requestLeaves() {
	m.run(orchestrator.Operation{Kind: orchestrator.FetchLeaves}, func(res orchestrator.Result) {
		if res.Err != nil {
			m.setMessage("Leaves unavailable: " + brew.Excerpt(res.Err))
			return
		}
		m.leaves = res.Value.([]string)
		m.leavesLoaded = true
		m.refreshVisible()
		m.selectionChanged(m.now())
	})
}

func (m *Model) requestCasks() {
	m.run(orchestrator.Operation{Kind: orchestrator.FetchCasks}, func(res orchestrator.Result) {
		if res.Err != nil {
			m.setMessage("Casks unavailable: " + brew.Excerpt(res.Err))
			return
		}
		m.casks = res.Value.([]string)
		m.casksLoaded = true
		m.refreshVisible()
		if m.caskMode {
			m.selectionChanged(m.now())
		}
	})
}

func (m *Model) requestStatus() {
	m.run(orchestrator.Operation{Kind: orchestrator.RefreshStatus}, func(res orchestrator.Result) {
		if res.Err != nil {
			m.setMessage("Status refresh failed: " + brew.Excerpt(res.Err))
			return
		}
		m.snapshot = res.Value.(*status.Snapshot)
		if m.filter.OutdatedOnly {
			m.listChanged(m.now())
		}
		m.redraw.MarkDirty()
	})
}

func (m *Model) requestSizes() {
	m.setMessage("Measuring Cellar...")
	m.run(orchestrator.Operation{Kind: orchestrator.FetchSizes}, func(res orchestrator.Result) {
		if res.Err != nil {
			m.sizesErr = brew.Excerpt(res.Err)
			m.setMessage("Sizes unavailable: " + m.sizesErr)
			return
		}
		m.sizes = res.Value.([]brew.SizeEntry)
		m.sizesLoaded = true
		m.sizesErr = ""
		for _, s := range m.sizes {
			key := brew.Formula(s.Name).Key()
			if m.cache.Contains(key) {
				m.cache.Put(key, brew.PackageDetail{Name: s.Name, HasSize: true, SizeKB: s.SizeKB})
			}
		}
		m.setMessage(fmt.Sprintf("Measured %d kegs", len(m.sizes)))
	})
}

// selectionChanged runs after every cursor move or list change. The details
// fetch is left to the debounce controller.
func (m *Model) selectionChanged(now time.Time) {
	ref, ok := m.Selected()
	if !ok {
		m.debounce.Cancel()
		m.cancelDetails("")
		return
	}

	key := orchestrator.Operation{Kind: orchestrator.FetchDetails, Target: ref}.Key()
	m.cancelDetails(key)

	if d, ok := m.cache.Peek(ref.Key()); ok && d.HasInfo {
		m.debounce.Cancel()
		return
	}
	if m.debounce.OnNavigate(ref.Key(), now) == debounce.Fire {
		m.requestDetails(ref, false)
	}
}

// cancelDetails drops interest in the pending details fetch unless it is for keep.
func (m *Model) cancelDetails(keep string) {
	if m.detailsKey != "" && m.detailsKey != keep {
		if m.orch != nil {
			m.orch.Cancel(m.detailsKey)
		}
		m.detailsKey = ""
	}
}

// requestDetails fetches ref unless the cache already holds what is asked for.
func (m *Model) requestDetails(ref brew.PackageRef, full bool) {
	if full && ref.Cask {
		m.setMessage("Dependencies are only tracked for formulae")
		full = false
	}
	if full {
		m.wantFull = ref.Key()
	}

	if d, ok := m.cache.Get(ref.Key()); ok && d.HasInfo && (!full || d.HasDeps) {
		return
	}

	kind := orchestrator.FetchDetails
	if full {
		kind = orchestrator.FetchDeps
	}
	op := orchestrator.Operation{Kind: kind, Target: ref}
	m.detailsKey = op.Key()
	delete(m.detailsErrs, ref.Key())
	m.run(op, func(res orchestrator.Result) { m.detailsLoaded(ref, res) })
}

func (m *Model) detailsLoaded(ref brew.PackageRef, res orchestrator.Result) {
	if m.detailsKey == res.Op.Key() {
		m.detailsKey = ""
	}
	if res.Err != nil {
		m.detailsErrs[ref.Key()] = brew.Excerpt(res.Err)
		m.redraw.MarkDirty()
		return
	}

	m.cache.Put(ref.Key(), res.Value.(brew.PackageDetail))
	m.redraw.MarkDirty()

	// A full request that joined a basic fetch still lacks dependencies.
	if m.wantFull == ref.Key() {
		if d, ok := m.cache.Peek(ref.Key()); ok && !d.HasDeps {
			m.requestDetails(ref, true)
		} else {
			m.wantFull = ""
		}
	}
}

// queueSearch schedules a search once typing pauses.
func (m *Model) queueSearch(query string, now time.Time) {
	m.results = nil
	m.resultCursor = 0
	m.debounce.OnInput(query, now)
}

func (m *Model) runSearch(query string) {
	m.debounce.CancelInput()
	if query == "" {
		m.setMessage("Enter a package name")
		return
	}

	op := orchestrator.Operation{Kind: orchestrator.Search, Query: query}
	if m.searchKey != "" && m.searchKey != op.Key() && m.orch != nil {
		m.orch.Cancel(m.searchKey)
	}
	m.searchKey = op.Key()
	m.setMessage(fmt.Sprintf("Searching for %q...", query))

	m.run(op, func(res orchestrator.Result) {
		if m.searchKey == res.Op.Key() {
			m.searchKey = ""
		}
		if m.filter.Mode != SearchAll || m.filter.Text != res.Op.Query {
			log.Printf("tui: ignoring results for %q", res.Op.Query)
			return
		}
		if res.Err != nil {
			m.setMessage("Search failed: " + brew.Excerpt(res.Err))
			return
		}
		m.results = res.Value.([]brew.SearchResult)
		m.resultCursor = 0
		if len(m.results) == 0 {
			m.setMessage(fmt.Sprintf("No packages match %q", res.Op.Query))
		} else {
			m.setMessage(fmt.Sprintf("%d results for %q", len(m.results), res.Op.Query))
		}
		m.selectionChanged(m.now())
	})
}

// trigger feeds an action key through the state machine.
func (m *Model) trigger(d action.Descriptor, now time.Time) {
	outcome := m.machine.Trigger(d, now)
	switch outcome {
	case action.OutcomeArmed:
		m.setMessage(m.machine.Prompt())
	case action.OutcomeExecute:
		if pending, ok := m.machine.Pending(); ok {
			d = pending
		}
		m.execute(d)
	case action.OutcomeDisarmed:
		m.setMessage("Canceled")
	default:
		m.setMessage(outcome.Err().Error())
	}
}

// execute runs a confirmed or read-only action.
func (m *Model) execute(d action.Descriptor) {
	op := d.Operation()
	m.setMessage(op.Kind.Title() + " running...")
	if m.watcher != nil && op.Kind.Destructive() {
		m.watcher.Pause(true)
	}
	m.run(op, func(res orchestrator.Result) { m.actionDone(res) })
}

func (m *Model) actionDone(res orchestrator.Result) {
	op := res.Op
	if op.Kind.Destructive() {
		m.machine.Complete()
		if m.watcher != nil {
			m.watcher.Pause(false)
		}
	}

	if last, ok := m.activity.Last(); ok {
		m.lastOutput = last.Output
	}

	subject := op.Target.Name
	if subject == "" {
		subject = op.Label()
	}
	if res.Err != nil {
		text := fmt.Sprintf("%s failed for %s: %s", op.Kind.Title(), subject, brew.Excerpt(res.Err))
		m.setToast(history.KindError, text)
		m.setMessage(text)
		return
	}
	text := fmt.Sprintf("%s succeeded for %s", op.Kind.Title(), subject)
	m.setToast(history.KindSuccess, text)
	m.setMessage(text)

	switch op.Kind {
	case orchestrator.Install, orchestrator.Uninstall, orchestrator.Upgrade:
		m.cache.Invalidate(op.Target.Key())
		m.refreshAfterAction(op.Target.Cask)
		if op.Kind == orchestrator.Upgrade {
			m.requestDetails(op.Target, m.wantFull == op.Target.Key())
		}
	case orchestrator.UpgradeAll:
		for _, name := range op.Names {
			m.cache.Invalidate(brew.Formula(name).Key())
		}
		m.refreshAfterAction(false)
	case orchestrator.SelfUpdate:
		m.setMessage("brewery updated; restart to use the new version")
	case orchestrator.Autoremove:
		m.requestLeaves()
	}
}

func (m *Model) refreshAfterAction(cask bool) {
	if cask {
		m.requestCasks()
	} else {
		m.requestLeaves()
	}
	m.requestStatus()
}

// externalChange reacts to the Cellar or Caskroom changing under us.
func (m *Model) externalChange() {
	if m.orch != nil {
		m.orch.Note(orchestrator.Operation{Kind: orchestrator.FetchLeaves}, "Cellar changed outside brewery; refreshing")
	}
	m.requestLeaves()
	if m.casksLoaded {
		m.requestCasks()
	}
	m.requestStatus()
}
