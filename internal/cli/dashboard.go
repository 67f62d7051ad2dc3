package cli

import (
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"brewery/internal/config"
	"brewery/internal/history"
	"brewery/internal/orchestrator"
	"brewery/internal/tui"
	"brewery/internal/ui"
	"brewery/internal/watcher"
)

func runDashboard(cmd *cobra.Command, args []string) error {
	if !ui.Interactive() {
		return ErrNeedsTerminal
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	if !cfg.ShouldUseColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	eng := newEngine(cfg)

	store, err := openHistory(cfg)
	if err != nil {
		ui.WarningMsg("Could not open history: %v", err)
		// Continue without persistence
	}
	defer func() {
		if store != nil {
			store.Close()
		}
	}()

	activity := history.NewLog(cfg.Engine.ActivityRetention)
	seedActivity(store, activity, cfg.Engine.ActivityRetention)

	orch := orchestrator.New(&orchestrator.BrewBackend{
		Client: eng.client,
		GoTool: eng.gotool,
		Status: eng.status,
	}, orchestrator.Options{
		FetchTimeout: cfg.Engine.FetchTimeout.Duration,
		Log:          activity,
		Record:       func(e history.Entry) { record(store, e) },
	})
	defer orch.Close()

	ctx, cancel := fetchContext(cfg)
	dirs := eng.watchDirs(ctx)
	cancel()

	var w *watcher.Watcher
	if len(dirs) > 0 {
		w, err = watcher.New(dirs, watcher.DefaultSettle)
		if err != nil {
			log.Printf("cli: not watching the Cellar: %v", err)
		} else {
			log.Printf("cli: watching %v", w.Watching())
			defer w.Close()
		}
	}

	return tui.Run(tui.Options{
		Config:       cfg,
		Orchestrator: orch,
		Activity:     activity,
		Watcher:      w,
		Version:      Version,
	})
}

// setupLogging sends the standard logger to the debug log file, or discards
// it: anything written to the terminal would corrupt the dashboard.
func setupLogging(c *config.Config) (func(), error) {
	if !c.General.DebugLog {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	if err := config.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	f, err := tea.LogToFile(config.LogPath(), "brewery")
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	log.Printf("brewery %s starting", Version)
	return func() { f.Close() }, nil
}

