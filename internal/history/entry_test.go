package history

import (
	"strings"
	"testing"
	"time"
)

func TestNewEntry(t *testing.T) {
	entry := NewEntry(KindSuccess, "install", "wget", "installed wget")

	if entry.ID == "" {
		t.Error("entry ID should not be empty")
	}
	if entry.Timestamp.IsZero() {
		t.Error("entry timestamp should be set")
	}
	if !entry.Success() {
		t.Error("success entry should report Success()")
	}

	other := NewEntry(KindSuccess, "install", "wget", "installed wget")
	if other.ID == entry.ID {
		t.Error("entry IDs should be unique")
	}
}

func TestInfo(t *testing.T) {
	entry := Info("watch", "Cellar changed")
	if entry.Kind != KindInfo || entry.Success() {
		t.Errorf("Info() = %+v", entry)
	}
}

func TestWithOutput(t *testing.T) {
	lines := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}
	entry := NewEntry(KindError, "upgrade", "node", "upgrade node failed").WithOutput(lines, 8)

	if len(entry.Output) != 8 {
		t.Fatalf("expected 8 lines, got %d", len(entry.Output))
	}
	if entry.Output[0] != "3" || entry.Output[7] != "10" {
		t.Errorf("Output should keep the tail: %v", entry.Output)
	}

	lines[9] = "changed"
	if entry.Output[7] != "10" {
		t.Error("WithOutput should copy the lines")
	}
}

func TestFormatting(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)
	entry := NewEntryAt(at, KindError, "install", "wget", "install wget failed: offline")

	if entry.FormatTime() != "2026-03-04 05:06:07" {
		t.Errorf("FormatTime() = %s", entry.FormatTime())
	}
	if entry.Clock() != "05:06:07" {
		t.Errorf("Clock() = %s", entry.Clock())
	}
	if !strings.Contains(entry.Summary(), "[error] install wget failed: offline") {
		t.Errorf("Summary() = %s", entry.Summary())
	}
	if !strings.HasSuffix(NewEntry(KindInfo, "x", "", "").Ago(), "now") {
		t.Errorf("Ago() for a fresh entry = %s", NewEntry(KindInfo, "x", "", "").Ago())
	}
}
