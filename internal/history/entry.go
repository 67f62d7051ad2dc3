// Package history records activity entries in memory and in BoltDB.
package history

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Kind classifies an activity entry.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Operation names the command an entry is about, e.g. "install".
type Operation string

// Entry is one immutable line of the activity log.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"kind"`
	Operation Operation `json:"operation"`
	Target    string    `json:"target,omitempty"`
	Message   string    `json:"message"`

	// Output keeps the tail of the command output for failed or noisy commands.
	Output []string `json:"output,omitempty"`
}

// NewEntry creates a new entry stamped with the current time.
func NewEntry(kind Kind, op Operation, target, message string) Entry {
	return NewEntryAt(time.Now(), kind, op, target, message)
}

// NewEntryAt creates a new entry with an explicit timestamp.
func NewEntryAt(at time.Time, kind Kind, op Operation, target, message string) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Timestamp: at,
		Kind:      kind,
		Operation: op,
		Target:    target,
		Message:   message,
	}
}

// Info creates an informational entry.
func Info(op Operation, message string) Entry {
	return NewEntry(KindInfo, op, "", message)
}

// Success reports whether the entry records a successful command.
func (e Entry) Success() bool {
	return e.Kind == KindSuccess
}

// WithOutput returns a copy of e carrying the last max lines of output.
func (e Entry) WithOutput(lines []string, max int) Entry {
	if max > 0 && len(lines) > max {
		lines = lines[len(lines)-max:]
	}
	e.Output = append([]string(nil), lines...)
	return e
}

// FormatTime returns a human-readable timestamp.
func (e Entry) FormatTime() string {
	return e.Timestamp.Format("2006-01-02 15:04:05")
}

// Clock returns the time of day for the activity panel.
func (e Entry) Clock() string {
	return e.Timestamp.Format("15:04:05")
}

// ShortID returns the leading part of the ID printed in listings. Store.Get
// accepts it as long as it stays unique.
func (e Entry) ShortID() string {
	if len(e.ID) > 8 {
		return e.ID[:8]
	}
	return e.ID
}

// Ago returns the relative age of the entry, e.g. "3 minutes ago".
func (e Entry) Ago() string {
	return humanize.Time(e.Timestamp)
}

// Summary returns a brief one-line description of the entry.
func (e Entry) Summary() string {
	return e.FormatTime() + " [" + string(e.Kind) + "] " + e.Message
}
