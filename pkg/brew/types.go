package brew

import "strings"

// PackageRef identifies an installed or searchable package.
type PackageRef struct {
	Name string
	Cask bool
}

// Formula returns a reference to a formula.
func Formula(name string) PackageRef {
	return PackageRef{Name: name}
}

// CaskRef returns a reference to a cask.
func CaskRef(name string) PackageRef {
	return PackageRef{Name: name, Cask: true}
}

// Key uniquely identifies the reference across formulae and casks.
func (r PackageRef) Key() string {
	if r.Cask {
		return "cask/" + r.Name
	}
	return r.Name
}

// Kind returns "cask" or "formula".
func (r PackageRef) Kind() string {
	if r.Cask {
		return "cask"
	}
	return "formula"
}

func (r PackageRef) String() string {
	return r.Name
}

// IsZero reports whether the reference names nothing.
func (r PackageRef) IsZero() bool {
	return r.Name == ""
}

// PackageDetail is an incrementally populated description of one package.
// The Has* flags record which groups of fields a fetch actually filled in.
type PackageDetail struct {
	Name string

	HasInfo     bool
	Description string
	Homepage    string
	Latest      string
	Installed   []string

	HasDeps bool
	Deps    []string
	Uses    []string

	HasSize bool
	SizeKB  int64
}

// Merge overlays the field groups present in other onto d.
func (d *PackageDetail) Merge(other PackageDetail) {
	if d.Name == "" {
		d.Name = other.Name
	}
	if other.HasInfo {
		d.HasInfo = true
		d.Description = other.Description
		d.Homepage = other.Homepage
		d.Latest = other.Latest
		d.Installed = other.Installed
	}
	if other.HasDeps {
		d.HasDeps = true
		d.Deps = other.Deps
		d.Uses = other.Uses
	}
	if other.HasSize {
		d.HasSize = true
		d.SizeKB = other.SizeKB
	}
}

// InstalledVersion returns the newest installed version, or "" when not installed.
func (d PackageDetail) InstalledVersion() string {
	if len(d.Installed) == 0 {
		return ""
	}
	return d.Installed[len(d.Installed)-1]
}

// SizeEntry is the disk usage of one Cellar keg.
type SizeEntry struct {
	Name   string
	SizeKB int64
}

// Bytes returns the size in bytes.
func (s SizeEntry) Bytes() uint64 {
	if s.SizeKB < 0 {
		return 0
	}
	return uint64(s.SizeKB) * 1024
}

// OutdatedEntry is one line of `brew outdated --verbose`.
type OutdatedEntry struct {
	Name      string
	Installed string
	Available string
	Pinned    bool
}

// SearchResult is a ranked match from `brew search`.
type SearchResult struct {
	Ref      PackageRef
	Distance int
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
