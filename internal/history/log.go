package history

// DefaultRetention bounds the in-memory activity log when none is configured.
const DefaultRetention = 100

// Log is the bounded in-memory activity log owned by the UI goroutine.
type Log struct {
	entries   []Entry
	retention int
}

// NewLog creates a log keeping at most retention entries.
func NewLog(retention int) *Log {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Log{retention: retention}
}

// Append adds e, evicting the oldest entries beyond the retention bound.
func (l *Log) Append(e Entry) {
	l.entries = append(l.entries, e)
	if over := len(l.entries) - l.retention; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
}

// Entries returns the entries oldest first. The slice must not be modified.
func (l *Log) Entries() []Entry {
	return l.entries
}

// Recent returns up to n entries, newest first.
func (l *Log) Recent(n int) []Entry {
	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, 0, n)
	for i := len(l.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// Last returns the newest entry.
func (l *Log) Last() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Errors returns how many retained entries are errors.
func (l *Log) Errors() int {
	n := 0
	for _, e := range l.entries {
		if e.Kind == KindError {
			n++
		}
	}
	return n
}
