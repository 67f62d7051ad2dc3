package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"brewery/internal/history"
	"brewery/internal/status"
	"brewery/pkg/brew"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevNoColor := Out, color.NoColor
	Out, color.NoColor = &buf, true
	t.Cleanup(func() {
		Out, color.NoColor = prevOut, prevNoColor
	})
	return &buf
}

func TestParseSelection(t *testing.T) {
	items := []string{"jq", "wget", "git"}

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"all", "jq,wget,git"},
		{"ALL", "jq,wget,git"},
		{"2", "wget"},
		{"3 1", "git,jq"},
		{"1,2", "jq,wget"},
		{"1 1 9 x 0", "jq"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := strings.Join(ParseSelection(tt.input, items), ",")
			if got != tt.want {
				t.Errorf("ParseSelection(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPrintSnapshot(t *testing.T) {
	buf := captureOutput(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	PrintSnapshot(&status.Snapshot{
		Version:      "Homebrew 4.4.0",
		DoctorOK:     false,
		DoctorIssues: []string{"Warning: Some installed formulae are deprecated."},
		Outdated:     []status.OutdatedLeaf{{Ref: brew.Formula("wget"), Installed: "1.24.4", Available: "1.24.5", Pinned: true}},
		Update:       status.UpToDate,
		LastUpdate:   now.Add(-2 * time.Hour),
		CheckedAt:    now,
		Failures:     map[status.Section]error{status.SectionInfo: errors.New("boom")},
		Skipped:      map[status.Section]bool{status.SectionRemote: true},
	})

	out := buf.String()
	for _, want := range []string{
		"Homebrew 4.4.0",
		"1 warnings",
		"Some installed formulae are deprecated.",
		"Up to date (fetched 2 hours ago)",
		"unavailable",
		"skipped",
		"1.24.5 (pinned)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintHistory(t *testing.T) {
	buf := captureOutput(t)

	PrintHistory(nil)
	if !strings.Contains(buf.String(), "No activity recorded") {
		t.Errorf("empty history output = %q", buf.String())
	}

	buf.Reset()
	PrintHistory([]history.Entry{
		history.NewEntry(history.KindSuccess, "install", "wget", "installed wget"),
		history.NewEntry(history.KindError, "uninstall", "jq", "uninstall jq failed: in use"),
	})
	out := buf.String()
	for _, want := range []string{"OPERATION", "installed wget", "uninstall jq failed: in use"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   history.Entry
		want    []string
		notWant []string
	}{
		{
			name:  "failure with output",
			entry: history.NewEntry(history.KindError, "uninstall", "jq", "uninstall jq failed: in use").WithOutput([]string{"Error: Refusing to uninstall jq", "because it is required by yq"}, 10),
			want:  []string{"uninstall jq failed: in use", "Package:", "jq", "Refusing to uninstall jq", "required by yq"},
		},
		{
			name:    "maintenance command",
			entry:   history.NewEntry(history.KindSuccess, "cleanup", "", "cleaned up"),
			want:    []string{"cleaned up", "cleanup"},
			notWant: []string{"Package:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureOutput(t)
			PrintEntry(tt.entry)
			out := buf.String()
			for _, want := range append(tt.want, tt.entry.ID) {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(out, nw) {
					t.Errorf("output has %q:\n%s", nw, out)
				}
			}
		})
	}
}

func TestPrintSizes(t *testing.T) {
	buf := captureOutput(t)

	PrintSizes([]brew.SizeEntry{{Name: "llvm", SizeKB: 2048000}, {Name: "jq", SizeKB: 1024}})
	out := buf.String()
	for _, want := range []string{"llvm", "2.1 GB", "1.0 MB", "2 kegs"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
