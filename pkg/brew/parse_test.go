package brew

import (
	"errors"
	"testing"
)

func TestParseInfoFormula(t *testing.T) {
	data := `{"formulae":[{"name":"wget","desc":"Internet file retriever","homepage":"https://www.gnu.org/software/wget/",
	"versions":{"stable":"1.24.5"},"installed":[{"version":"1.21.4"},{"version":"1.24.5"}]}],"casks":[]}`

	detail, err := parseInfo(Formula("wget"), []byte(data))
	if err != nil {
		t.Fatalf("parseInfo() error: %v", err)
	}

	if !detail.HasInfo {
		t.Error("HasInfo should be set")
	}
	if detail.HasDeps {
		t.Error("HasDeps should not be set by an info fetch")
	}
	if detail.Description != "Internet file retriever" {
		t.Errorf("Description = %q", detail.Description)
	}
	if detail.Latest != "1.24.5" {
		t.Errorf("Latest = %q", detail.Latest)
	}
	if detail.InstalledVersion() != "1.24.5" {
		t.Errorf("InstalledVersion() = %q", detail.InstalledVersion())
	}
}

func TestParseInfoCask(t *testing.T) {
	data := `{"formulae":[],"casks":[{"token":"iterm2","desc":"Terminal emulator","homepage":"https://iterm2.com/","version":"3.5.0","installed":"3.4.23"}]}`

	detail, err := parseInfo(CaskRef("iterm2"), []byte(data))
	if err != nil {
		t.Fatalf("parseInfo() error: %v", err)
	}
	if detail.Latest != "3.5.0" || detail.InstalledVersion() != "3.4.23" {
		t.Errorf("versions = %q/%q", detail.Latest, detail.InstalledVersion())
	}
}

func TestParseInfoMissing(t *testing.T) {
	_, err := parseInfo(Formula("nope"), []byte(`{"formulae":[],"casks":[]}`))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("parseInfo() error = %v, want ErrNotFound", err)
	}

	if _, err := parseInfo(Formula("nope"), []byte(`not json`)); err == nil {
		t.Error("parseInfo() should fail on invalid json")
	}
}

func TestParseOutdated(t *testing.T) {
	text := `wget (1.21.3) < 1.24.5
node (20.1.0, 20.2.0) < 21.0.0
jq (1.6) != 1.7.1 [pinned at 1.6]

plainname
`
	entries := parseOutdated(text)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d: %+v", len(entries), entries)
	}

	tests := []struct {
		idx       int
		name      string
		installed string
		available string
		pinned    bool
	}{
		{0, "wget", "1.21.3", "1.24.5", false},
		{1, "node", "20.2.0", "21.0.0", false},
		{2, "jq", "1.6", "1.7.1", true},
		{3, "plainname", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := entries[tt.idx]
			if got.Name != tt.name || got.Installed != tt.installed || got.Available != tt.available || got.Pinned != tt.pinned {
				t.Errorf("entry = %+v", got)
			}
		})
	}
}

func TestParseDoctor(t *testing.T) {
	text := `Please note that these warnings are just used to help the Homebrew maintainers.
Warning: Some installed formulae are deprecated.
  You should find replacements.
Error: Unbrewed dylibs were found.
Warning: one
Warning: two
Warning: three
Warning: four
`
	issues := parseDoctor(text)
	if len(issues) != maxDoctorIssues {
		t.Fatalf("expected %d issues, got %d", maxDoctorIssues, len(issues))
	}
	if issues[0] != "Warning: Some installed formulae are deprecated." {
		t.Errorf("issues[0] = %q", issues[0])
	}
	if issues[1] != "Error: Unbrewed dylibs were found." {
		t.Errorf("issues[1] = %q", issues[1])
	}
}

func TestParseSearchSections(t *testing.T) {
	text := `==> Formulae
wget
wget2

==> Casks
wget-gui
`
	refs := parseSearch(text)
	if len(refs) != 3 {
		t.Fatalf("expected 3 refs, got %d", len(refs))
	}
	if refs[0].Cask || refs[1].Cask {
		t.Error("formulae should not be marked as casks")
	}
	if !refs[2].Cask {
		t.Error("wget-gui should be a cask")
	}
}

func TestRankSearch(t *testing.T) {
	refs := []PackageRef{Formula("libwget"), Formula("wget2"), Formula("wget"), Formula("gwget")}

	results := rankSearch("wget", refs)

	want := []string{"wget", "wget2", "gwget", "libwget"}
	for i, name := range want {
		if results[i].Ref.Name != name {
			t.Errorf("results[%d] = %s, want %s", i, results[i].Ref.Name, name)
		}
	}
	if results[0].Distance != 0 {
		t.Errorf("exact match distance = %d", results[0].Distance)
	}
}

func TestParseSizes(t *testing.T) {
	text := "120\t/opt/homebrew/Cellar/jq\n98000\t/opt/homebrew/Cellar/node\nbogus line\n4096\t/opt/homebrew/Cellar/wget/\n"

	sizes := parseSizes(text)
	if len(sizes) != 3 {
		t.Fatalf("expected 3 sizes, got %d", len(sizes))
	}
	if sizes[0].Name != "node" || sizes[1].Name != "wget" || sizes[2].Name != "jq" {
		t.Errorf("sizes not sorted descending: %+v", sizes)
	}
	if sizes[2].Bytes() != 120*1024 {
		t.Errorf("Bytes() = %d", sizes[2].Bytes())
	}
}

func TestMergeKeepsAbsentGroups(t *testing.T) {
	detail := PackageDetail{Name: "wget", HasInfo: true, Description: "Internet file retriever"}

	detail.Merge(PackageDetail{Name: "wget", HasDeps: true, Deps: []string{"openssl@3"}, Uses: []string{}})

	if detail.Description != "Internet file retriever" {
		t.Error("deps-only merge erased the description")
	}
	if !detail.HasDeps || len(detail.Deps) != 1 {
		t.Errorf("deps not merged: %+v", detail)
	}

	detail.Merge(PackageDetail{HasSize: true, SizeKB: 42})
	if !detail.HasDeps || detail.SizeKB != 42 || detail.Name != "wget" {
		t.Errorf("size merge clobbered other groups: %+v", detail)
	}
}

func TestCommandFailureExcerpt(t *testing.T) {
	tests := []struct {
		name    string
		failure CommandFailure
		want    string
	}{
		{"stderr first line", CommandFailure{Stderr: "\nError: No available formula with the name \"wgett\".\nDid you mean?", ExitCode: 1}, `No available formula with the name "wgett".`},
		{"stdout fallback", CommandFailure{Stdout: "something broke", ExitCode: 2}, "something broke"},
		{"exit status", CommandFailure{ExitCode: 3}, "exit status 3"},
		{"timeout", CommandFailure{TimedOut: true, Stderr: "partial"}, "timed out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.failure.Excerpt(); got != tt.want {
				t.Errorf("Excerpt() = %q, want %q", got, tt.want)
			}
			if got := Excerpt(&tt.failure); got != tt.want {
				t.Errorf("Excerpt(err) = %q, want %q", got, tt.want)
			}
		})
	}

	if got := Excerpt(errors.New("plain\nsecond")); got != "plain" {
		t.Errorf("Excerpt(plain) = %q", got)
	}
}

func TestNewerThan(t *testing.T) {
	tests := []struct {
		latest, current string
		want            bool
	}{
		{"v0.3.0", "0.2.0", true},
		{"v0.2.0", "v0.2.0", false},
		{"v0.3.0", "0.3.0-dev", false},
		{"", "0.2.0", false},
	}
	for _, tt := range tests {
		if got := NewerThan(tt.latest, tt.current); got != tt.want {
			t.Errorf("NewerThan(%q, %q) = %v, want %v", tt.latest, tt.current, got, tt.want)
		}
	}
}
