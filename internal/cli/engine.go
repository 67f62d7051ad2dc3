package cli

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"brewery/internal/config"
	"brewery/internal/executor"
	"brewery/internal/history"
	"brewery/internal/status"
	"brewery/pkg/brew"
)

// engine holds the external-command collaborators every subcommand shares.
type engine struct {
	client *brew.Client
	gotool *brew.GoTool
	status *status.Aggregator
}

func newEngine(c *config.Config) *engine {
	exec := executor.New(c.General.DebugLog, executor.DefaultEnv()...)
	client := brew.NewClient(exec, c.General.BrewBinary)

	var gotool *brew.GoTool
	if c.General.SelfModule != "" {
		gotool = brew.NewGoTool(exec, c.General.GoBinary, c.General.SelfModule)
	}

	return &engine{
		client: client,
		gotool: gotool,
		status: status.NewAggregator(client, gotool, status.Options{
			Outdated:     c.Engine.OutdatedCheck,
			RemoteTTL:    c.Engine.RemoteCheckTTL.Duration,
			CheckTimeout: c.Engine.FetchTimeout.Duration,
			SelfVersion:  Version,
		}),
	}
}

// fetchContext bounds a read-only brew call by the configured fetch timeout.
func fetchContext(c *config.Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.Engine.FetchTimeout.Duration)
}

// watchDirs returns the Cellar and the Caskroom next to it.
func (e *engine) watchDirs(ctx context.Context) []string {
	cellar, err := e.client.Cellar(ctx)
	if err != nil || cellar == "" {
		log.Printf("cli: cellar unavailable, not watching: %v", err)
		return nil
	}
	return []string{cellar, filepath.Join(filepath.Dir(cellar), "Caskroom")}
}

// openHistory opens the persistent activity store and prunes old entries.
// It returns nil when persistence is disabled.
func openHistory(c *config.Config) (*history.Store, error) {
	if !c.History.Persist {
		return nil, nil
	}
	store, err := history.Open()
	if err != nil {
		return nil, err
	}
	if maxAge := c.History.MaxAge.Duration; maxAge > 0 {
		if n, err := store.Prune(maxAge); err != nil {
			log.Printf("cli: pruning history: %v", err)
		} else if n > 0 {
			log.Printf("cli: pruned %d history entries older than %s", n, maxAge)
		}
	}
	return store, nil
}

// record appends entry to store, logging instead of failing.
func record(store *history.Store, entry history.Entry) {
	if store == nil {
		return
	}
	if err := store.Record(entry); err != nil {
		log.Printf("cli: recording %q: %v", entry.Summary(), err)
	}
}

// seedActivity loads the most recent persisted entries, oldest first.
func seedActivity(store *history.Store, activity *history.Log, limit int) {
	if store == nil {
		return
	}
	entries, err := store.List(limit)
	if err != nil {
		log.Printf("cli: loading history: %v", err)
		return
	}
	for i := len(entries) - 1; i >= 0; i-- {
		activity.Append(entries[i])
	}
}

func describeDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
