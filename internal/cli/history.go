package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"brewery/internal/history"
	"brewery/internal/ui"
)

var (
	historyLimit  int
	historyErrors bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded dashboard activity",
	Long: `Display the actions brewery has run: installs, uninstalls,
upgrades, maintenance commands and failed background fetches.

Examples:
  brewery history              # Show recent history
  brewery history -l 20        # Show last 20 entries
  brewery history --errors     # Only failures
  brewery history show 3f2a    # Full record, including command output
  brewery history clear        # Forget everything`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one entry with its captured output",
	Long: `Show a recorded entry in full. The ID may be abbreviated to any prefix
that matches a single entry, as printed by 'brewery history'.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded activity",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 10, "number of entries to show")
	historyCmd.Flags().BoolVar(&historyErrors, "errors", false, "only show failures")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.Open()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	var kinds []history.Kind
	if historyErrors {
		kinds = append(kinds, history.KindError)
	}
	entries, err := store.List(historyLimit, kinds...)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	ui.HeaderMsg("Activity History")
	ui.PrintHistory(entries)

	total, _ := store.Count()
	ui.MutedMsg("\nShowing %d of %d total entries", len(entries), total)

	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := history.Open()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	entry, err := store.Get(args[0])
	if err != nil {
		return err
	}
	ui.PrintEntry(entry)
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	store, err := history.Open()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	total, err := store.Count()
	if err != nil {
		return err
	}
	if total == 0 {
		ui.MutedMsg("History is already empty")
		return nil
	}

	if !yes {
		ok, err := ui.Confirm(fmt.Sprintf("Delete %d history entries?", total), false)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAborted
		}
	}

	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	ui.SuccessMsg("Deleted %d history entries", total)
	return nil
}
