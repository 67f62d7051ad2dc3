package status

import (
	"sort"
	"time"

	"brewery/pkg/brew"
)

// Section names one diagnostic of the status battery.
type Section string

const (
	SectionVersion  Section = "version"
	SectionInfo     Section = "info"
	SectionLeaves   Section = "leaves"
	SectionDoctor   Section = "doctor"
	SectionOutdated Section = "outdated"
	SectionUpdate   Section = "update"
	SectionRemote   Section = "remote"
)

// Sections lists every section in display order.
var Sections = []Section{
	SectionVersion, SectionInfo, SectionLeaves, SectionDoctor,
	SectionOutdated, SectionUpdate, SectionRemote,
}

// SectionState reports how a section fared in the last refresh.
type SectionState int

const (
	SectionOK SectionState = iota
	SectionFailed
	SectionSkipped
)

func (s SectionState) String() string {
	switch s {
	case SectionOK:
		return "ok"
	case SectionFailed:
		return "unavailable"
	case SectionSkipped:
		return "skipped"
	}
	return "unknown"
}

// UpdateState summarises how recently Homebrew fetched its taps.
type UpdateState int

const (
	UpdateUnknown UpdateState = iota
	UpToDate
	UpdateRecommended
)

func (u UpdateState) String() string {
	switch u {
	case UpToDate:
		return "Up to date"
	case UpdateRecommended:
		return "Update recommended"
	}
	return "Unknown"
}

// OutdatedLeaf is an installed leaf with a newer version available.
type OutdatedLeaf struct {
	Ref       brew.PackageRef
	Installed string
	Available string
	Pinned    bool
}

// Snapshot is one fully merged status refresh. It is never modified after
// Refresh returns it.
type Snapshot struct {
	Version string
	Summary string
	Leaves  []string

	DoctorOK     bool
	DoctorIssues []string

	Outdated []OutdatedLeaf

	Update     UpdateState
	LastUpdate time.Time

	SelfVersion         string
	SelfLatest          string
	SelfUpdateAvailable bool

	CheckedAt time.Time

	Failures map[Section]error
	Skipped  map[Section]bool
}

// Section reports whether sec produced data.
func (s *Snapshot) Section(sec Section) SectionState {
	if s == nil {
		return SectionSkipped
	}
	if s.Skipped[sec] {
		return SectionSkipped
	}
	if s.Failures[sec] != nil {
		return SectionFailed
	}
	return SectionOK
}

// Err returns the failure recorded for sec, if any.
func (s *Snapshot) Err(sec Section) error {
	if s == nil {
		return nil
	}
	return s.Failures[sec]
}

// OutdatedNames returns the outdated leaf names, sorted.
func (s *Snapshot) OutdatedNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Outdated))
	for _, o := range s.Outdated {
		names = append(names, o.Ref.Name)
	}
	sort.Strings(names)
	return names
}

// IsOutdated reports whether the named formula is an outdated leaf.
func (s *Snapshot) IsOutdated(name string) bool {
	if s == nil {
		return false
	}
	for _, o := range s.Outdated {
		if o.Ref.Name == name {
			return true
		}
	}
	return false
}

// Available counts the sections that produced data.
func (s *Snapshot) Available() int {
	n := 0
	for _, sec := range Sections {
		if s.Section(sec) == SectionOK {
			n++
		}
	}
	return n
}
