package orchestrator

import (
	"fmt"
	"strings"

	"brewery/internal/history"
	"brewery/pkg/brew"
)

// Kind enumerates every external operation the dashboard can issue.
type Kind int

const (
	FetchLeaves Kind = iota
	FetchCasks
	FetchDetails
	FetchDeps
	FetchSizes
	Search
	RefreshStatus
	CheckRemote
	Install
	Uninstall
	Upgrade
	UpgradeAll
	SelfUpdate
	Cleanup
	Autoremove
	BundleDump
)

var kindNames = [...]string{
	FetchLeaves:   "fetch-leaves",
	FetchCasks:    "fetch-casks",
	FetchDetails:  "fetch-details",
	FetchDeps:     "fetch-deps",
	FetchSizes:    "fetch-sizes",
	Search:        "search",
	RefreshStatus: "refresh-status",
	CheckRemote:   "check-remote",
	Install:       "install",
	Uninstall:     "uninstall",
	Upgrade:       "upgrade",
	UpgradeAll:    "upgrade-all",
	SelfUpdate:    "self-update",
	Cleanup:       "cleanup",
	Autoremove:    "autoremove",
	BundleDump:    "bundle-dump",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Destructive reports whether the kind changes installed packages and
// therefore needs a confirming second keypress.
func (k Kind) Destructive() bool {
	switch k {
	case Install, Uninstall, Upgrade, UpgradeAll, SelfUpdate:
		return true
	}
	return false
}

// UserInitiated reports whether completions of this kind are always logged.
// Background fetches are only logged when they fail.
func (k Kind) UserInitiated() bool {
	switch k {
	case Install, Uninstall, Upgrade, UpgradeAll, SelfUpdate, Cleanup, Autoremove, BundleDump:
		return true
	}
	return false
}

// bounded reports whether FetchTimeout applies. Status refreshes time each
// of their diagnostics themselves so one slow check cannot void the rest.
func (k Kind) bounded() bool {
	return !k.UserInitiated() && k != RefreshStatus
}

// verb is the imperative used in failure messages and prompts.
func (k Kind) verb() string {
	switch k {
	case FetchLeaves:
		return "load leaves"
	case FetchCasks:
		return "load casks"
	case FetchDetails:
		return "load details"
	case FetchDeps:
		return "load dependencies"
	case FetchSizes:
		return "load sizes"
	case RefreshStatus:
		return "refresh status"
	case CheckRemote:
		return "check for brewery updates"
	case UpgradeAll:
		return "upgrade all"
	case BundleDump:
		return "bundle dump"
	}
	return k.String()
}

// Title is the capitalised verb, e.g. "Install".
func (k Kind) Title() string {
	v := k.verb()
	return strings.ToUpper(v[:1]) + v[1:]
}

// Operation names one external action and its parameters.
type Operation struct {
	Kind   Kind
	Target brew.PackageRef

	// Names lists the formulae for UpgradeAll.
	Names []string

	// Query is the search text for Search.
	Query string
}

// Key identifies the operation for in-flight coalescing. Every fetch about
// one package shares a key, so at most one runs per package.
func (o Operation) Key() string {
	switch o.Kind {
	case FetchDetails, FetchDeps:
		return "details/" + o.Target.Key()
	case Search:
		return "search/" + o.Query
	case UpgradeAll:
		return "upgrade-all/" + strings.Join(o.Names, ",")
	}
	if !o.Target.IsZero() {
		return o.Kind.String() + "/" + o.Target.Key()
	}
	return o.Kind.String()
}

// Label describes the operation for prompts and logs, e.g. "install wget".
func (o Operation) Label() string {
	switch {
	case o.Kind == UpgradeAll:
		return fmt.Sprintf("upgrade %d outdated %s", len(o.Names), plural(len(o.Names), "package"))
	case o.Kind == SelfUpdate:
		return "update brewery"
	case o.Kind == Search:
		return fmt.Sprintf("search %q", o.Query)
	case !o.Target.IsZero():
		return o.Kind.verb() + " " + o.Target.Name
	}
	return o.Kind.verb()
}

// successMessage is the past-tense activity line, e.g. "installed wget".
func (o Operation) successMessage() string {
	name := o.Target.Name
	switch o.Kind {
	case Install:
		return "installed " + name
	case Uninstall:
		return "uninstalled " + name
	case Upgrade:
		return "upgraded " + name
	case UpgradeAll:
		return fmt.Sprintf("upgraded %d %s", len(o.Names), plural(len(o.Names), "package"))
	case SelfUpdate:
		return "updated brewery"
	case Cleanup:
		return "cleaned up"
	case Autoremove:
		return "removed unused dependencies"
	case BundleDump:
		return "dumped Brewfile"
	}
	return o.Label() + " done"
}

func (o Operation) failureMessage(err error) string {
	return o.Label() + " failed: " + brew.Excerpt(err)
}

func (o Operation) operation() history.Operation {
	return history.Operation(o.Kind.String())
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
