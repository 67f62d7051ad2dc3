package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"brewery/internal/history"
	"brewery/internal/status"
	"brewery/pkg/brew"
)

// render paints one frame. It reads the model and never changes what it shows.
func (m *Model) render(now time.Time) string {
	if m.width < 20 || m.height < 8 {
		return "Terminal too small"
	}
	if m.showHelp {
		return m.renderHelp()
	}

	header := m.renderHeader(now)
	footer := m.renderFooter(now)
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 4 {
		bodyHeight = 4
	}

	leftWidth := m.width / 3
	if leftWidth < 24 {
		leftWidth = 24
	}
	rightWidth := m.width - leftWidth
	topHeight := bodyHeight / 2
	if m.viewMode == ViewCompact {
		topHeight = bodyHeight / 3
	}

	var top string
	if m.focus == PanelSizes {
		top = m.panel(PanelSizes, "Sizes", m.sizesLines(), rightWidth, topHeight)
	} else {
		top = m.panel(PanelDetails, "Details", m.detailLines(now), rightWidth, topHeight)
	}
	bottom := m.panel(PanelStatus, m.statusTitle(), m.statusLines(), rightWidth, bodyHeight-topHeight)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.packagesPanel(now, leftWidth, bodyHeight),
		lipgloss.JoinVertical(lipgloss.Left, top, bottom),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// spinnerFrame picks the spinner glyph for now, so repaints animate it.
func (m *Model) spinnerFrame(now time.Time) string {
	s := spinner.Dot
	if !m.cfg.Display.Unicode {
		s = spinner.Line
	}
	return s.Frames[int(now.UnixNano()/int64(s.FPS))%len(s.Frames)]
}

func (m *Model) renderHeader(now time.Time) string {
	title := m.styles.Header.Render("brewery " + m.version)

	var right []string
	if m.orch != nil {
		if op, since, ok := m.orch.Current(); ok {
			right = append(right, m.styles.Spinner.Render(m.spinnerFrame(now))+" "+
				fmt.Sprintf("%s (%s)", op.Label(), now.Sub(since).Truncate(time.Second)))
		} else if m.busy() {
			right = append(right, m.styles.Spinner.Render(m.spinnerFrame(now)))
		}
	}
	if s := m.snapshot; s != nil && s.Version != "" {
		right = append(right, m.styles.Description.Render(s.Version))
	}
	right = append(right, m.styles.Label.Render(m.icons.Clock+" "+now.Format("15:04:05")))

	rightText := strings.Join(right, "  ")
	padding := m.width - lipgloss.Width(title) - lipgloss.Width(rightText) - 1
	if padding < 1 {
		padding = 1
	}
	return title + strings.Repeat(" ", padding) + rightText
}

func (m *Model) renderFooter(now time.Time) string {
	var line string
	switch {
	case m.machine.Prompt() != "":
		left := m.machine.Remaining(now).Round(time.Second)
		line = m.styles.Prompt.Render(fmt.Sprintf("%s (%s)", m.machine.Prompt(), left))
	case m.toast != nil:
		style := m.styles.Success
		if m.toast.kind == history.KindError {
			style = m.styles.Error
		}
		line = style.Render(m.toast.text)
	default:
		line = m.styles.StatusBar.Render(m.message)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().MaxWidth(m.width).Render(line),
		m.styles.Footer.Render(m.help.View(m.keys)),
	)
}

func (m *Model) renderHelp() string {
	content := m.styles.Title.Render("Keyboard Shortcuts") + "\n\n" +
		m.help.FullHelpView(m.keys.FullHelp()) + "\n\n" +
		m.styles.Description.Render("Press ? or Esc to close")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		m.styles.Dialog.Render(content))
}

// panel draws a bordered box with lines scrolled by the panel's offset.
func (m *Model) panel(p Panel, title string, lines []string, width, height int) string {
	style := m.styles.Panel
	if m.focus == p {
		style = m.styles.PanelActive
	}
	inner := height - 3
	if inner < 1 {
		inner = 1
	}
	lines = window(lines, m.scrolls[p], inner)
	content := m.styles.PanelTitle.Render(title) + "\n" + strings.Join(lines, "\n")
	return style.
		Width(width - 2).
		Height(height - 2).
		MaxHeight(height).
		Render(lipgloss.NewStyle().MaxWidth(width - 4).Render(content))
}

// window returns at most n lines starting at offset, clamping offset.
func window(lines []string, offset, n int) []string {
	if offset > len(lines)-n {
		offset = len(lines) - n
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + n
	if end > len(lines) {
		end = len(lines)
	}
	return lines[offset:end]
}

func (m *Model) packagesPanel(now time.Time, width, height int) string {
	var title string
	switch {
	case m.filter.Mode == SearchAll:
		title = fmt.Sprintf("Search (%d)", len(m.results))
	case m.caskMode:
		title = fmt.Sprintf("Casks (%d)", len(m.Visible()))
	default:
		title = fmt.Sprintf("Formulae (%d)", len(m.Visible()))
	}
	if m.filter.OutdatedOnly {
		title += " outdated"
	}

	var lines []string
	if m.searching || m.filter.Text != "" {
		if m.searching {
			lines = append(lines, m.input.View())
		} else {
			lines = append(lines, m.styles.InputPrompt.Render("> ")+m.filter.Text)
		}
	}

	rows := height - 3 - len(lines)
	if rows < 1 {
		rows = 1
	}
	lines = append(lines, m.packageRows(now, rows)...)

	style := m.styles.Panel
	if m.focus == PanelPackages {
		style = m.styles.PanelActive
	}
	content := m.styles.PanelTitle.Render(title) + "\n" + strings.Join(lines, "\n")
	return style.
		Width(width - 2).
		Height(height - 2).
		MaxHeight(height).
		Render(lipgloss.NewStyle().MaxWidth(width - 4).Render(content))
}

func (m *Model) packageRows(now time.Time, rows int) []string {
	var (
		refs   []brew.PackageRef
		cursor int
	)
	if m.showingResults() {
		for _, r := range m.results {
			refs = append(refs, r.Ref)
		}
		cursor = m.resultCursor
	} else {
		refs = m.Visible()
		cursor = m.cursor
	}

	if len(refs) == 0 {
		return []string{m.styles.Description.Render(m.emptyListText(now))}
	}

	start := 0
	if cursor >= rows {
		start = cursor - rows + 1
	}
	end := start + rows
	if end > len(refs) {
		end = len(refs)
	}

	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		ref := refs[i]
		icon := m.icons.Formula
		if ref.Cask {
			icon = m.icons.Cask
		}
		name := ref.Name
		if m.isOutdated(ref) {
			name += " " + m.styles.Outdated.Render(m.icons.Outdated)
		}
		if i == cursor {
			out = append(out, m.styles.ListItemSelected.Render(m.icons.Cursor+" "+icon+" "+ref.Name)+strings.TrimPrefix(name, ref.Name))
		} else {
			out = append(out, m.styles.ListItem.Render("  "+icon+" ")+name)
		}
	}
	return out
}

func (m *Model) emptyListText(now time.Time) string {
	switch {
	case m.filter.Mode == SearchAll && m.searchKey != "":
		return m.spinnerFrame(now) + " Searching..."
	case m.filter.Mode == SearchAll:
		return "Type to search, Enter to run now"
	case m.caskMode && !m.casksLoaded, !m.caskMode && !m.leavesLoaded:
		return m.spinnerFrame(now) + " Loading..."
	case m.filter.Text != "" || m.filter.OutdatedOnly:
		return "No packages match"
	}
	return "Nothing installed"
}

func (m *Model) detailLines(now time.Time) []string {
	ref, ok := m.Selected()
	if !ok {
		return []string{m.styles.Description.Render("No package selected")}
	}

	d, cached := m.Detail(ref)
	lines := []string{m.styles.PackageName.Render(ref.Name) + " " + m.styles.Description.Render(ref.Kind())}

	if msg, failed := m.detailsErrs[ref.Key()]; failed && !d.HasInfo {
		return append(lines, m.styles.Error.Render(m.icons.Fail+" "+msg))
	}
	if !cached || !d.HasInfo {
		if m.detailsKey == "" && m.debounce.Rapid() {
			return append(lines, m.styles.Description.Render("Scrolling..."))
		}
		if m.detailsKey != "" || m.debounce.Pending() {
			return append(lines, m.styles.Spinner.Render(m.spinnerFrame(now))+" Loading details...")
		}
		return append(lines, m.styles.Description.Render("Press enter to load details"))
	}

	if d.Description != "" {
		lines = append(lines, d.Description)
	}
	if d.Homepage != "" && m.viewMode == ViewFull {
		lines = append(lines, m.styles.Description.Render(d.Homepage))
	}
	lines = append(lines, "")
	if v := d.InstalledVersion(); v != "" {
		lines = append(lines, m.styles.Label.Render("Installed: ")+m.styles.PackageVersion.Render(v))
	} else {
		lines = append(lines, m.styles.Label.Render("Installed: ")+m.styles.Description.Render("no"))
	}
	if d.Latest != "" {
		lines = append(lines, m.styles.Label.Render("Latest:    ")+d.Latest)
	}
	if m.isOutdated(ref) {
		lines = append(lines, m.styles.Outdated.Render(m.icons.Outdated+" update available"))
	}
	if d.HasSize {
		lines = append(lines, m.styles.Label.Render("Size:      ")+humanize.Bytes(uint64(d.SizeKB)*1024))
	}

	switch {
	case d.HasDeps && m.viewMode == ViewCompact:
		lines = append(lines, fmt.Sprintf("%d dependencies, used by %d", len(d.Deps), len(d.Uses)))
	case d.HasDeps:
		lines = append(lines, "", m.styles.Subtitle.Render(fmt.Sprintf("Dependencies (%d)", len(d.Deps))))
		lines = append(lines, indent(d.Deps, "none")...)
		lines = append(lines, m.styles.Subtitle.Render(fmt.Sprintf("Used by (%d)", len(d.Uses))))
		lines = append(lines, indent(d.Uses, "nothing")...)
	case !ref.Cask && m.wantFull == ref.Key():
		lines = append(lines, "", m.styles.Spinner.Render(m.spinnerFrame(now))+" Loading dependencies...")
	case !ref.Cask:
		lines = append(lines, "", m.styles.Description.Render("Press d for dependencies"))
	}
	return lines
}

func indent(items []string, empty string) []string {
	if len(items) == 0 {
		return []string{"  " + empty}
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = "  " + item
	}
	return out
}

func (m *Model) sizesLines() []string {
	switch {
	case m.sizesErr != "":
		return []string{m.styles.Error.Render(m.icons.Fail + " " + m.sizesErr)}
	case !m.sizesLoaded:
		return []string{m.styles.Description.Render("Press s to measure the Cellar")}
	case len(m.sizes) == 0:
		return []string{m.styles.Description.Render("The Cellar is empty")}
	}

	var total uint64
	for _, s := range m.sizes {
		total += s.Bytes()
	}
	lines := []string{m.styles.Label.Render(fmt.Sprintf("%d kegs, %s total", len(m.sizes), humanize.Bytes(total)))}
	for _, s := range m.sizes {
		lines = append(lines, fmt.Sprintf("%9s  %s", humanize.Bytes(s.Bytes()), s.Name))
	}
	return lines
}

func (m *Model) statusTitle() string {
	var tabs []string
	for i, name := range statusTabNames {
		style := m.styles.TabInactive
		if StatusTab(i) == m.statusTab {
			style = m.styles.TabActive
		}
		label := name
		switch StatusTab(i) {
		case TabIssues:
			if s := m.snapshot; s != nil && len(s.DoctorIssues) > 0 {
				label = fmt.Sprintf("%s (%d)", name, len(s.DoctorIssues))
			}
		case TabOutdated:
			if s := m.snapshot; s != nil && len(s.Outdated) > 0 {
				label = fmt.Sprintf("%s (%d)", name, len(s.Outdated))
			}
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("[%d] %s", i+1, label)))
	}
	return "Status  " + strings.Join(tabs, " ")
}

func (m *Model) statusLines() []string {
	lines := m.summaryLines()
	lines = append(lines, "")

	switch m.statusTab {
	case TabActivity:
		lines = append(lines, m.activityLines()...)
	case TabIssues:
		lines = append(lines, m.issueLines()...)
	case TabOutdated:
		lines = append(lines, m.outdatedLines()...)
	}
	return lines
}

func (m *Model) summaryLines() []string {
	s := m.snapshot
	if s == nil {
		return []string{m.styles.Description.Render("Checking Homebrew...")}
	}

	unavailable := m.styles.Description.Render("unavailable")
	var lines []string

	health := unavailable
	switch {
	case s.Section(status.SectionDoctor) != status.SectionOK:
	case s.DoctorOK:
		health = m.styles.Success.Render(m.icons.OK + " ready to brew")
	default:
		health = m.styles.Warning.Render(fmt.Sprintf("%s %d warnings", m.icons.Info, len(s.DoctorIssues)))
	}
	lines = append(lines, m.styles.Label.Render("Doctor:   ")+health)

	update := unavailable
	if s.Section(status.SectionUpdate) == status.SectionOK {
		update = s.Update.String()
		if !s.LastUpdate.IsZero() {
			update += " (" + humanize.RelTime(s.LastUpdate, s.CheckedAt, "ago", "from now") + ")"
		}
		if s.Update == status.UpdateRecommended {
			update = m.styles.Warning.Render(update)
		}
	}
	lines = append(lines, m.styles.Label.Render("Taps:     ")+update)

	outdated := unavailable
	switch s.Section(status.SectionOutdated) {
	case status.SectionOK:
		outdated = fmt.Sprintf("%d of %d leaves", len(s.Outdated), len(s.Leaves))
		if len(s.Outdated) > 0 {
			outdated = m.styles.Outdated.Render(outdated)
		}
	case status.SectionSkipped:
		outdated = m.styles.Description.Render("not checked")
	}
	lines = append(lines, m.styles.Label.Render("Outdated: ")+outdated)

	if s.Section(status.SectionRemote) != status.SectionSkipped {
		self := s.SelfVersion
		switch {
		case s.Section(status.SectionRemote) == status.SectionFailed:
			self += " " + unavailable
		case s.SelfUpdateAvailable:
			self += " " + m.styles.Outdated.Render(m.icons.Outdated+" "+s.SelfLatest+" available, press P")
		default:
			self += " " + m.styles.Description.Render("latest")
		}
		lines = append(lines, m.styles.Label.Render("brewery:  ")+self)
	}

	if s.Summary != "" && m.viewMode == ViewFull {
		lines = append(lines, m.styles.Description.Render(s.Summary))
	}
	return lines
}

func (m *Model) activityLines() []string {
	entries := m.activity.Recent(0)
	if len(entries) == 0 {
		return []string{m.styles.Description.Render("No activity yet")}
	}

	lines := make([]string, 0, len(entries)+len(m.lastOutput))
	for _, e := range entries {
		icon, style := m.icons.Info, m.styles.Info
		switch e.Kind {
		case history.KindSuccess:
			icon, style = m.icons.OK, m.styles.Success
		case history.KindError:
			icon, style = m.icons.Fail, m.styles.Error
		}
		lines = append(lines, m.styles.Description.Render(e.Clock())+" "+style.Render(icon)+" "+e.Message)
	}
	if len(m.lastOutput) > 0 && m.viewMode == ViewFull {
		lines = append(lines, "", m.styles.Subtitle.Render("Last output"))
		lines = append(lines, indent(m.lastOutput, "")...)
	}
	return lines
}

func (m *Model) issueLines() []string {
	s := m.snapshot
	switch {
	case s == nil:
		return nil
	case s.Section(status.SectionDoctor) != status.SectionOK:
		return []string{m.styles.Error.Render(m.icons.Fail + " brew doctor " + s.Section(status.SectionDoctor).String())}
	case len(s.DoctorIssues) == 0:
		return []string{m.styles.Success.Render(m.icons.OK + " Your system is ready to brew.")}
	}
	lines := make([]string, 0, len(s.DoctorIssues))
	for _, issue := range s.DoctorIssues {
		lines = append(lines, m.styles.Warning.Render(m.icons.Info)+" "+issue)
	}
	return lines
}

func (m *Model) outdatedLines() []string {
	s := m.snapshot
	switch {
	case s == nil:
		return nil
	case s.Section(status.SectionOutdated) == status.SectionSkipped:
		return []string{m.styles.Description.Render("Outdated check is disabled")}
	case s.Section(status.SectionOutdated) == status.SectionFailed:
		return []string{m.styles.Error.Render(m.icons.Fail + " brew outdated unavailable")}
	case len(s.Outdated) == 0:
		return []string{m.styles.Success.Render(m.icons.OK + " All leaves are up to date")}
	}
	lines := make([]string, 0, len(s.Outdated)+1)
	for _, o := range s.Outdated {
		line := fmt.Sprintf("%s %s -> %s", o.Ref.Name, o.Installed, m.styles.PackageVersion.Render(o.Available))
		if o.Pinned {
			line += m.styles.Description.Render(" (pinned)")
		}
		lines = append(lines, m.styles.Outdated.Render(m.icons.Outdated)+" "+line)
	}
	lines = append(lines, "", m.styles.Description.Render("Press U to upgrade all"))
	return lines
}
