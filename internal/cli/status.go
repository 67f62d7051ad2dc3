package cli

import (
	"github.com/spf13/cobra"

	"brewery/internal/status"
	"brewery/internal/ui"
)

var skipOutdated bool

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"doctor"},
	Short:   "Print a one-shot Homebrew status report",
	Long: `Run the dashboard's status checks once and print the result:
Homebrew version, brew doctor, tap freshness, outdated leaves and
whether a newer brewery is available. Checks that fail are reported
as unavailable; the rest are still shown.

Examples:
  brewery status                  # Full report
  brewery status --no-outdated    # Skip the brew outdated check`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&skipOutdated, "no-outdated", false, "skip the brew outdated check")
}

func runStatus(cmd *cobra.Command, args []string) error {
	if skipOutdated {
		cfg.Engine.OutdatedCheck = false
	}
	eng := newEngine(cfg)

	ctx, cancel := fetchContext(cfg)
	defer cancel()

	sp := ui.NewSpinner("Checking Homebrew...")
	sp.Start()
	snapshot, err := eng.status.Refresh(ctx)
	sp.Stop()
	if err != nil {
		return err
	}

	ui.PrintSnapshot(snapshot)
	if n := len(status.Sections) - snapshot.Available(); n > 0 {
		ui.MutedMsg("\n%d of %d checks unavailable or skipped", n, len(status.Sections))
	}
	return nil
}
