package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"brewery/internal/history"
	"brewery/internal/status"
	"brewery/pkg/brew"
)

// Table wraps tabwriter for consistent styling.
type Table struct {
	writer  *tabwriter.Writer
	headers []string
}

// NewTable creates a new table that writes to Out.
func NewTable(header []string) *Table {
	return NewTableWriter(Out, header)
}

// NewTableWriter creates a new table that writes to a specific writer.
func NewTableWriter(w io.Writer, header []string) *Table {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	t := &Table{
		writer:  tw,
		headers: header,
	}
	if len(header) > 0 {
		row := make([]string, len(header))
		for i, h := range header {
			row[i] = Bold(strings.ToUpper(h))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return t
}

// AddRow adds a row to the table.
func (t *Table) AddRow(row ...string) {
	fmt.Fprintln(t.writer, strings.Join(row, "\t"))
}

// Render flushes the table.
func (t *Table) Render() {
	t.writer.Flush()
}

// PrintHistory prints activity entries, newest first.
func PrintHistory(entries []history.Entry) {
	if len(entries) == 0 {
		MutedMsg("No activity recorded")
		return
	}

	t := NewTable([]string{"id", "when", "", "operation", "message"})
	for _, e := range entries {
		t.AddRow(Muted.Sprint(e.ShortID()), Muted.Sprint(e.Ago()), kindSymbol(e.Kind), string(e.Operation), e.Message)
	}
	t.Render()
}

// PrintEntry prints one entry in full, followed by its captured output.
func PrintEntry(e history.Entry) {
	fmt.Fprintf(Out, "%s %s\n", kindSymbol(e.Kind), Bold(e.Message))
	fmt.Fprintf(Out, "  %-10s %s\n", Cyan("ID:"), e.ID)
	fmt.Fprintf(Out, "  %-10s %s (%s)\n", Cyan("When:"), e.FormatTime(), e.Ago())
	fmt.Fprintf(Out, "  %-10s %s\n", Cyan("Command:"), e.Operation)
	if e.Target != "" {
		fmt.Fprintf(Out, "  %-10s %s\n", Cyan("Package:"), e.Target)
	}
	if len(e.Output) == 0 {
		return
	}
	fmt.Fprintln(Out)
	for _, line := range e.Output {
		fmt.Fprintln(Out, Muted.Sprint("  | ")+line)
	}
}

func kindSymbol(k history.Kind) string {
	switch k {
	case history.KindSuccess:
		return Success.Sprint(SymbolSuccess)
	case history.KindError:
		return Error.Sprint(SymbolError)
	}
	return Info.Sprint(SymbolInfo)
}

// PrintSnapshot prints a status refresh section by section.
func PrintSnapshot(s *status.Snapshot) {
	HeaderMsg("Homebrew status")

	printField("Version", s.Version, s.Section(status.SectionVersion))
	printField("Summary", s.Summary, s.Section(status.SectionInfo))
	printField("Leaves", fmt.Sprintf("%d", len(s.Leaves)), s.Section(status.SectionLeaves))

	doctor := Success.Sprint(SymbolSuccess + " ready to brew")
	if !s.DoctorOK {
		doctor = Warning.Sprintf("%s %d warnings", SymbolWarning, len(s.DoctorIssues))
	}
	printField("Doctor", doctor, s.Section(status.SectionDoctor))

	update := s.Update.String()
	if !s.LastUpdate.IsZero() {
		update += " (fetched " + humanize.RelTime(s.LastUpdate, s.CheckedAt, "ago", "from now") + ")"
	}
	printField("Taps", update, s.Section(status.SectionUpdate))

	outdated := fmt.Sprintf("%d", len(s.Outdated))
	if len(s.Outdated) > 0 {
		outdated = Outdated.Sprint(outdated)
	}
	printField("Outdated", outdated, s.Section(status.SectionOutdated))

	self := s.SelfVersion + " (latest)"
	if s.SelfUpdateAvailable {
		self = fmt.Sprintf("%s %s %s", s.SelfVersion, SymbolArrow, Outdated.Sprint(s.SelfLatest))
	}
	printField("brewery", self, s.Section(status.SectionRemote))

	for _, issue := range s.DoctorIssues {
		MutedMsg("    %s", issue)
	}
	if len(s.Outdated) > 0 {
		fmt.Fprintln(Out)
		PrintOutdated(s.Outdated)
	}
}

// printField prints a single field, or why it is missing.
func printField(label, value string, state status.SectionState) {
	switch state {
	case status.SectionFailed:
		value = Error.Sprint(state.String())
	case status.SectionSkipped:
		value = Muted.Sprint(state.String())
	}
	fmt.Fprintf(Out, "  %-9s %s\n", Cyan(label+":"), value)
}

// PrintOutdated prints outdated leaves with their versions.
func PrintOutdated(leaves []status.OutdatedLeaf) {
	t := NewTable([]string{"name", "installed", "available"})
	for _, o := range leaves {
		available := PackageVersion.Sprint(o.Available)
		if o.Pinned {
			available += Muted.Sprint(" (pinned)")
		}
		t.AddRow(PackageName.Sprint(o.Ref.Name), o.Installed, available)
	}
	t.Render()
}

// PrintSizes prints Cellar usage, largest first, with a total.
func PrintSizes(sizes []brew.SizeEntry) {
	if len(sizes) == 0 {
		MutedMsg("The Cellar is empty")
		return
	}

	var total uint64
	t := NewTable([]string{"size", "keg"})
	for _, s := range sizes {
		total += s.Bytes()
		t.AddRow(humanize.Bytes(s.Bytes()), s.Name)
	}
	t.Render()
	MutedMsg("%d kegs, %s total", len(sizes), humanize.Bytes(total))
}
