// Package status runs the Homebrew diagnostic battery concurrently and
// merges the results into a single Snapshot.
package status

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"brewery/pkg/brew"
)

// DefaultRemoteTTL is how long a remote version check is reused.
const DefaultRemoteTTL = 10 * time.Minute

// DefaultParallel is how many diagnostics run at once.
const DefaultParallel = 4

// updateWindow is how recent FETCH_HEAD must be to count as up to date.
const updateWindow = 24 * time.Hour

// coreTap is the tap whose checkout also records fetch times.
const coreTap = "homebrew/core"

// Options tune an Aggregator.
type Options struct {
	// Outdated enables the `brew outdated` check.
	Outdated bool

	// RemoteTTL bounds how often the remote version check runs.
	RemoteTTL time.Duration

	// CheckTimeout bounds each diagnostic separately. Zero means no limit
	// beyond the caller's context.
	CheckTimeout time.Duration

	// Parallel caps the diagnostics running at once.
	Parallel int

	// SelfVersion is the running brewery version compared against the remote.
	SelfVersion string

	// Stat and Now are replaced in tests.
	Stat func(name string) (os.FileInfo, error)
	Now  func() time.Time
}

type remoteResult struct {
	version string
	err     error
}

// Aggregator produces status snapshots. Refresh and RemoteLatest are safe to
// call from worker goroutines.
type Aggregator struct {
	client *brew.Client
	gotool *brew.GoTool
	opts   Options

	remote *expirable.LRU[string, remoteResult]
	group  singleflight.Group
}

// NewAggregator creates an aggregator. gotool may be nil to skip the remote check.
func NewAggregator(client *brew.Client, gotool *brew.GoTool, opts Options) *Aggregator {
	if opts.RemoteTTL <= 0 {
		opts.RemoteTTL = DefaultRemoteTTL
	}
	if opts.Parallel <= 0 {
		opts.Parallel = DefaultParallel
	}
	if opts.Stat == nil {
		opts.Stat = os.Stat
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Aggregator{
		client: client,
		gotool: gotool,
		opts:   opts,
		remote: expirable.NewLRU[string, remoteResult](1, nil, opts.RemoteTTL),
	}
}

// staging collects sub-results; each goroutine writes only its own fields.
type staging struct {
	version    string
	versionErr error

	summary    string
	summaryErr error

	leaves    []string
	leavesErr error

	doctorOK     bool
	doctorIssues []string
	doctorErr    error

	outdated    []brew.OutdatedEntry
	outdatedErr error

	repos    [2]string
	repoErrs [2]error

	latest    string
	latestErr error
}

// Refresh runs every diagnostic concurrently and waits for all of them. Each
// diagnostic gets its own CheckTimeout; one that fails or times out is
// recorded in the snapshot. The refresh itself only fails when ctx is
// cancelled, in which case the remaining diagnostics are abandoned.
func (a *Aggregator) Refresh(ctx context.Context) (*Snapshot, error) {
	var st staging
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Parallel)

	check := func(fn func(ctx context.Context)) {
		g.Go(func() error {
			cctx, cancel := a.checkContext(gctx)
			defer cancel()
			fn(cctx)
			return cancelled(ctx)
		})
	}

	check(func(ctx context.Context) { st.version, st.versionErr = a.client.Version(ctx) })
	check(func(ctx context.Context) { st.summary, st.summaryErr = a.client.Summary(ctx) })
	check(func(ctx context.Context) { st.leaves, st.leavesErr = a.client.Leaves(ctx) })
	check(func(ctx context.Context) {
		st.doctorOK, st.doctorIssues, st.doctorErr = a.client.Doctor(ctx)
	})
	check(func(ctx context.Context) { st.repos[0], st.repoErrs[0] = a.client.Repository(ctx, "") })
	check(func(ctx context.Context) { st.repos[1], st.repoErrs[1] = a.client.Repository(ctx, coreTap) })
	if a.opts.Outdated {
		check(func(ctx context.Context) { st.outdated, st.outdatedErr = a.client.Outdated(ctx) })
	}
	if a.gotool != nil {
		check(func(ctx context.Context) { st.latest, st.latestErr = a.RemoteLatest(ctx) })
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("status refresh: %w", err)
	}
	return a.merge(&st), nil
}

// checkContext bounds one diagnostic.
func (a *Aggregator) checkContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.opts.CheckTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.opts.CheckTimeout)
}

// cancelled returns ctx's error when it was cancelled. An expired deadline
// only fails the diagnostics that were still running.
func cancelled(ctx context.Context) error {
	if err := ctx.Err(); errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *Aggregator) merge(st *staging) *Snapshot {
	snap := &Snapshot{
		Version:      st.version,
		Summary:      st.summary,
		Leaves:       st.leaves,
		DoctorOK:     st.doctorOK,
		DoctorIssues: st.doctorIssues,
		SelfVersion:  a.opts.SelfVersion,
		CheckedAt:    a.opts.Now(),
		Failures:     make(map[Section]error),
		Skipped:      make(map[Section]bool),
	}

	fail := func(sec Section, err error) {
		if err != nil {
			snap.Failures[sec] = err
			log.Printf("status: %s unavailable: %v", sec, err)
		}
	}
	fail(SectionVersion, st.versionErr)
	fail(SectionInfo, st.summaryErr)
	fail(SectionLeaves, st.leavesErr)
	fail(SectionDoctor, st.doctorErr)

	if a.opts.Outdated {
		fail(SectionOutdated, st.outdatedErr)
		snap.Outdated = filterLeaves(st.outdated, st.leaves, st.leavesErr == nil)
	} else {
		snap.Skipped[SectionOutdated] = true
	}

	if st.repoErrs[0] != nil && st.repoErrs[1] != nil {
		fail(SectionUpdate, st.repoErrs[0])
	}
	snap.LastUpdate = a.lastFetch(st.repos[:])
	switch {
	case snap.LastUpdate.IsZero():
		snap.Update = UpdateUnknown
	case snap.CheckedAt.Sub(snap.LastUpdate) <= updateWindow:
		snap.Update = UpToDate
	default:
		snap.Update = UpdateRecommended
	}

	if a.gotool == nil {
		snap.Skipped[SectionRemote] = true
	} else {
		fail(SectionRemote, st.latestErr)
		snap.SelfLatest = st.latest
		snap.SelfUpdateAvailable = brew.NewerThan(st.latest, a.opts.SelfVersion)
	}
	return snap
}

// lastFetch returns the newest FETCH_HEAD modification time among repos.
func (a *Aggregator) lastFetch(repos []string) time.Time {
	var latest time.Time
	for _, repo := range repos {
		if repo == "" {
			continue
		}
		info, err := a.opts.Stat(filepath.Join(repo, ".git", "FETCH_HEAD"))
		if err != nil {
			continue
		}
		if mod := info.ModTime(); mod.After(latest) {
			latest = mod
		}
	}
	return latest
}

// filterLeaves keeps outdated entries that are leaves. Without a leaf list
// every outdated formula is kept.
func filterLeaves(outdated []brew.OutdatedEntry, leaves []string, haveLeaves bool) []OutdatedLeaf {
	set := make(map[string]bool, len(leaves))
	for _, l := range leaves {
		set[l] = true
	}

	var out []OutdatedLeaf
	for _, o := range outdated {
		if haveLeaves && !set[o.Name] {
			continue
		}
		out = append(out, OutdatedLeaf{
			Ref:       brew.Formula(o.Name),
			Installed: o.Installed,
			Available: o.Available,
			Pinned:    o.Pinned,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref.Name < out[j].Ref.Name })
	return out
}

// RemoteLatest returns the newest published brewery version. The answer,
// success or failure, is reused until the TTL expires, and concurrent
// callers share one query.
func (a *Aggregator) RemoteLatest(ctx context.Context) (string, error) {
	if a.gotool == nil {
		return "", fmt.Errorf("remote check: %w", brew.ErrNotFound)
	}
	key := a.gotool.Module()
	if res, ok := a.remote.Get(key); ok {
		return res.version, res.err
	}

	v, _, _ := a.group.Do(key, func() (any, error) {
		if res, ok := a.remote.Get(key); ok {
			return res, nil
		}
		version, err := a.gotool.Latest(ctx)
		res := remoteResult{version: version, err: err}
		if ctx.Err() == nil {
			a.remote.Add(key, res)
		}
		return res, nil
	})
	res := v.(remoteResult)
	return res.version, res.err
}

// ForgetRemote drops the cached remote answer, e.g. after a self-update.
func (a *Aggregator) ForgetRemote() {
	a.remote.Purge()
}
