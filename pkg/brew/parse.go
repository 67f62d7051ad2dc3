package brew

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

type infoV2 struct {
	Formulae []struct {
		Name     string `json:"name"`
		Desc     string `json:"desc"`
		Homepage string `json:"homepage"`
		Versions struct {
			Stable string `json:"stable"`
		} `json:"versions"`
		Installed []struct {
			Version string `json:"version"`
		} `json:"installed"`
	} `json:"formulae"`
	Casks []struct {
		Token     string  `json:"token"`
		Desc      string  `json:"desc"`
		Homepage  string  `json:"homepage"`
		Version   string  `json:"version"`
		Installed *string `json:"installed"`
	} `json:"casks"`
}

func parseInfo(ref PackageRef, data []byte) (PackageDetail, error) {
	var info infoV2
	if err := json.Unmarshal(data, &info); err != nil {
		return PackageDetail{}, fmt.Errorf("failed to parse info for %s: %w", ref.Name, err)
	}

	detail := PackageDetail{Name: ref.Name, HasInfo: true}

	if ref.Cask {
		if len(info.Casks) == 0 {
			return PackageDetail{}, fmt.Errorf("%w: cask %s", ErrNotFound, ref.Name)
		}
		cask := info.Casks[0]
		detail.Description = cask.Desc
		detail.Homepage = cask.Homepage
		detail.Latest = cask.Version
		if cask.Installed != nil && *cask.Installed != "" {
			detail.Installed = []string{*cask.Installed}
		}
		return detail, nil
	}

	if len(info.Formulae) == 0 {
		return PackageDetail{}, fmt.Errorf("%w: formula %s", ErrNotFound, ref.Name)
	}
	formula := info.Formulae[0]
	detail.Description = formula.Desc
	detail.Homepage = formula.Homepage
	detail.Latest = formula.Versions.Stable
	for _, installed := range formula.Installed {
		detail.Installed = append(detail.Installed, installed.Version)
	}
	return detail, nil
}

// Matches "wget (1.21.3) < 1.21.4" and "foo (1.0, 1.1) != 1.2 [pinned at 1.0]".
var outdatedPattern = regexp.MustCompile(`^(\S+)\s+\(([^)]*)\)\s+(?:<|!=)\s+(\S+)(\s+\[pinned.*\])?`)

func parseOutdated(text string) []OutdatedEntry {
	var entries []OutdatedEntry
	for _, line := range nonEmptyLines(text) {
		if m := outdatedPattern.FindStringSubmatch(line); m != nil {
			installed := strings.Split(m[2], ",")
			entries = append(entries, OutdatedEntry{
				Name:      m[1],
				Installed: strings.TrimSpace(installed[len(installed)-1]),
				Available: m[3],
				Pinned:    m[4] != "",
			})
			continue
		}
		if fields := strings.Fields(line); len(fields) > 0 {
			entries = append(entries, OutdatedEntry{Name: fields[0]})
		}
	}
	return entries
}

const maxDoctorIssues = 5

func parseDoctor(text string) []string {
	var issues []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Warning:") || strings.HasPrefix(line, "Error:") {
			issues = append(issues, line)
			if len(issues) == maxDoctorIssues {
				break
			}
		}
	}
	return issues
}

func parseSearch(text string) []PackageRef {
	var refs []PackageRef
	cask := false
	for _, line := range nonEmptyLines(text) {
		if strings.HasPrefix(line, "==>") {
			cask = strings.Contains(strings.ToLower(line), "cask")
			continue
		}
		for _, name := range strings.Fields(line) {
			refs = append(refs, PackageRef{Name: name, Cask: cask})
		}
	}
	return refs
}

// rankSearch orders exact matches first, then prefix matches, then by edit distance.
func rankSearch(query string, refs []PackageRef) []SearchResult {
	q := lowerTrim(query)
	results := make([]SearchResult, 0, len(refs))
	for _, ref := range refs {
		results = append(results, SearchResult{
			Ref:      ref,
			Distance: levenshtein.ComputeDistance(q, strings.ToLower(ref.Name)),
		})
	}

	tier := func(r SearchResult) int {
		name := strings.ToLower(r.Ref.Name)
		switch {
		case name == q:
			return 0
		case strings.HasPrefix(name, q):
			return 1
		default:
			return 2
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		ti, tj := tier(results[i]), tier(results[j])
		if ti != tj {
			return ti < tj
		}
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Ref.Name < results[j].Ref.Name
	})
	return results
}

func parseSizes(text string) []SizeEntry {
	var sizes []SizeEntry
	for _, line := range nonEmptyLines(text) {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		kb, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			continue
		}
		path := strings.TrimRight(strings.Join(fields[1:], " "), "/")
		name := path[strings.LastIndex(path, "/")+1:]
		sizes = append(sizes, SizeEntry{Name: name, SizeKB: kb})
	}

	sort.SliceStable(sizes, func(i, j int) bool {
		if sizes[i].SizeKB != sizes[j].SizeKB {
			return sizes[i].SizeKB > sizes[j].SizeKB
		}
		return sizes[i].Name < sizes[j].Name
	})
	return sizes
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func firstNonEmpty(text string) string {
	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}
