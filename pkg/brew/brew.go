// Package brew exposes the Homebrew command line as typed operations.
package brew

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Output is the captured result of one external command.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes a named program out of process.
// A non-zero exit or timeout is reported as a *CommandFailure; the Output
// is populated either way.
type Runner interface {
	Execute(ctx context.Context, name string, args ...string) (Output, error)
}

// Client issues Homebrew operations through a Runner.
type Client struct {
	runner  Runner
	binary  string
	readDir func(string) ([]os.DirEntry, error)
}

// NewClient creates a client that invokes binary (normally "brew").
func NewClient(runner Runner, binary string) *Client {
	if binary == "" {
		binary = "brew"
	}
	return &Client{
		runner:  runner,
		binary:  binary,
		readDir: os.ReadDir,
	}
}

// Binary returns the Homebrew executable this client invokes.
func (c *Client) Binary() string {
	return c.binary
}

func (c *Client) run(ctx context.Context, args ...string) (Output, error) {
	return c.runner.Execute(ctx, c.binary, args...)
}

func (c *Client) lines(ctx context.Context, args ...string) ([]string, error) {
	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return nonEmptyLines(out.Stdout), nil
}

// Leaves lists installed formulae that no other installed formula depends on.
func (c *Client) Leaves(ctx context.Context) ([]string, error) {
	return c.lines(ctx, "leaves")
}

// Casks lists installed casks.
func (c *Client) Casks(ctx context.Context) ([]string, error) {
	return c.lines(ctx, "list", "--cask")
}

// Info fetches description, homepage and versions for ref.
func (c *Client) Info(ctx context.Context, ref PackageRef) (PackageDetail, error) {
	args := []string{"info", "--json=v2"}
	if ref.Cask {
		args = append(args, "--cask")
	}
	args = append(args, ref.Name)

	out, err := c.run(ctx, args...)
	if err != nil {
		return PackageDetail{}, err
	}
	return parseInfo(ref, []byte(out.Stdout))
}

// DepsUses fetches the installed dependencies and dependents of a formula.
func (c *Client) DepsUses(ctx context.Context, ref PackageRef) (PackageDetail, error) {
	detail := PackageDetail{Name: ref.Name, HasDeps: true}
	if ref.Cask {
		return detail, nil
	}

	deps, err := c.lines(ctx, "deps", "--installed", ref.Name)
	if err != nil {
		return PackageDetail{}, err
	}
	uses, err := c.lines(ctx, "uses", "--installed", ref.Name)
	if err != nil {
		return PackageDetail{}, err
	}

	detail.Deps = deps
	detail.Uses = uses
	return detail, nil
}

// Details fetches the basic record, plus dependencies when full is set.
func (c *Client) Details(ctx context.Context, ref PackageRef, full bool) (PackageDetail, error) {
	detail, err := c.Info(ctx, ref)
	if err != nil {
		return PackageDetail{}, err
	}
	if !full {
		return detail, nil
	}

	deps, err := c.DepsUses(ctx, ref)
	if err != nil {
		return PackageDetail{}, err
	}
	detail.Merge(deps)
	return detail, nil
}

// Cellar returns the Cellar directory.
func (c *Client) Cellar(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "--cellar")
	if err != nil {
		return "", err
	}
	path := firstNonEmpty(out.Stdout)
	if path == "" {
		return "", &CommandFailure{Name: c.binary, Args: []string{"--cellar"}, Stdout: out.Stdout, Err: ErrNotFound}
	}
	return path, nil
}

// Sizes measures each keg in the Cellar, largest first.
func (c *Client) Sizes(ctx context.Context) ([]SizeEntry, error) {
	cellar, err := c.Cellar(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := c.readDir(cellar)
	if err != nil {
		return nil, err
	}

	args := []string{"-sk"}
	for _, entry := range entries {
		if entry.IsDir() {
			args = append(args, filepath.Join(cellar, entry.Name()))
		}
	}
	if len(args) == 1 {
		return nil, nil
	}

	out, err := c.runner.Execute(ctx, "du", args...)
	if err != nil {
		return nil, err
	}
	return parseSizes(out.Stdout), nil
}

// Search finds formulae and casks matching query, ranked by closeness.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	out, err := c.run(ctx, "search", query)
	if err != nil {
		// brew search exits non-zero when nothing matches
		var failure *CommandFailure
		if errors.As(err, &failure) && !failure.TimedOut && out.Stdout == "" {
			return nil, nil
		}
		return nil, err
	}
	return rankSearch(query, parseSearch(out.Stdout)), nil
}

// Outdated lists installed formulae with a newer version available.
func (c *Client) Outdated(ctx context.Context) ([]OutdatedEntry, error) {
	out, err := c.run(ctx, "outdated", "--formula", "--verbose")
	if err != nil {
		return nil, err
	}
	return parseOutdated(out.Stdout), nil
}

// Doctor runs `brew doctor`. A failing doctor is reported through ok and
// issues; err is only set when the command could not produce a verdict.
func (c *Client) Doctor(ctx context.Context) (ok bool, issues []string, err error) {
	out, err := c.run(ctx, "doctor")
	if err == nil {
		return true, nil, nil
	}
	var failure *CommandFailure
	if errors.As(err, &failure) && !failure.TimedOut {
		text := out.Stderr
		if text == "" {
			text = out.Stdout
		}
		return false, parseDoctor(text), nil
	}
	return false, nil, err
}

// Version returns the first line of `brew --version`.
func (c *Client) Version(ctx context.Context) (string, error) {
	lines, err := c.lines(ctx, "--version")
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", nil
	}
	return lines[0], nil
}

// Summary returns the first line of `brew info`, e.g. "180 kegs, 1.2GB".
func (c *Client) Summary(ctx context.Context) (string, error) {
	lines, err := c.lines(ctx, "info")
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", nil
	}
	return lines[0], nil
}

// Repository returns the git checkout of Homebrew itself, or of tap when given.
func (c *Client) Repository(ctx context.Context, tap string) (string, error) {
	args := []string{"--repository"}
	if tap != "" {
		args = append(args, tap)
	}
	out, err := c.run(ctx, args...)
	if err != nil {
		return "", err
	}
	return firstNonEmpty(out.Stdout), nil
}

// Install installs ref.
func (c *Client) Install(ctx context.Context, ref PackageRef) (Output, error) {
	return c.run(ctx, withCask("install", ref)...)
}

// Uninstall removes ref.
func (c *Client) Uninstall(ctx context.Context, ref PackageRef) (Output, error) {
	return c.run(ctx, withCask("uninstall", ref)...)
}

// Upgrade upgrades ref.
func (c *Client) Upgrade(ctx context.Context, ref PackageRef) (Output, error) {
	return c.run(ctx, withCask("upgrade", ref)...)
}

// UpgradeAll upgrades exactly the named formulae.
func (c *Client) UpgradeAll(ctx context.Context, names []string) (Output, error) {
	if len(names) == 0 {
		return Output{}, ErrNothingToUpgrade
	}
	args := append([]string{"upgrade", "--formula"}, names...)
	return c.run(ctx, args...)
}

// Cleanup removes stale downloads and old versions.
func (c *Client) Cleanup(ctx context.Context) (Output, error) {
	return c.run(ctx, "cleanup", "-s")
}

// Autoremove uninstalls formulae that were only installed as dependencies.
func (c *Client) Autoremove(ctx context.Context) (Output, error) {
	return c.run(ctx, "autoremove")
}

// BundleDump writes a Brewfile of everything installed, overwriting any existing one.
func (c *Client) BundleDump(ctx context.Context, file string) (Output, error) {
	args := []string{"bundle", "dump", "--force"}
	if file != "" {
		args = append(args, "--file="+file)
	}
	return c.run(ctx, args...)
}

func withCask(verb string, ref PackageRef) []string {
	if ref.Cask {
		return []string{verb, "--cask", ref.Name}
	}
	return []string{verb, ref.Name}
}
