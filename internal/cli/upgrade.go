package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"brewery/internal/history"
	"brewery/internal/orchestrator"
	"brewery/internal/status"
	"brewery/internal/ui"
	"brewery/pkg/brew"
)

var upgradeAll bool

var upgradeCmd = &cobra.Command{
	Use:   "upgrade [formula...]",
	Short: "Upgrade outdated leaves",
	Long: `Upgrade outdated leaf formulae. Without arguments the outdated
leaves are listed and you pick which ones to upgrade.

Examples:
  brewery upgrade             # Pick from the outdated leaves
  brewery upgrade --all -y    # Upgrade every outdated leaf
  brewery upgrade wget jq     # Upgrade the named leaves if outdated`,
	RunE: runUpgrade,
}

func init() {
	upgradeCmd.Flags().BoolVarP(&upgradeAll, "all", "a", false, "upgrade every outdated leaf")
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	cfg.Engine.OutdatedCheck = true
	eng := newEngine(cfg)

	ctx, cancel := fetchContext(cfg)
	sp := ui.NewSpinner("Checking for outdated leaves...")
	sp.Start()
	snapshot, err := eng.status.Refresh(ctx)
	sp.Stop()
	cancel()
	if err != nil {
		return err
	}
	if err := snapshot.Err(status.SectionOutdated); err != nil {
		return fmt.Errorf("brew outdated: %s", brew.Excerpt(err))
	}

	names, err := chooseUpgrades(snapshot.OutdatedNames(), args)
	if err != nil {
		return err
	}

	store, err := openHistory(cfg)
	if err != nil {
		ui.WarningMsg("Could not open history: %v", err)
	}
	defer func() {
		if store != nil {
			store.Close()
		}
	}()

	op := orchestrator.Operation{Kind: orchestrator.UpgradeAll, Names: names}
	sp = ui.NewSpinner(fmt.Sprintf("Upgrading %s...", strings.Join(names, ", ")))
	sp.Start()
	out, err := eng.client.UpgradeAll(context.Background(), names)
	if err != nil {
		sp.Error(fmt.Sprintf("Upgrade failed: %s", brew.Excerpt(err)))
		record(store, history.NewEntry(history.KindError, history.Operation(op.Kind.String()), "", op.Label()+" failed: "+brew.Excerpt(err)))
		return err
	}
	sp.Success(fmt.Sprintf("Upgraded %d package(s) in %s", len(names), describeDuration(out.Duration)))
	record(store, history.NewEntry(history.KindSuccess, history.Operation(op.Kind.String()), "", fmt.Sprintf("upgraded %d package(s)", len(names))))
	return nil
}

// chooseUpgrades narrows the outdated leaves to what the user asked for.
func chooseUpgrades(outdated, requested []string) ([]string, error) {
	if len(outdated) == 0 {
		return nil, brew.ErrNothingToUpgrade
	}

	if len(requested) > 0 {
		set := make(map[string]bool, len(outdated))
		for _, name := range outdated {
			set[name] = true
		}
		var names []string
		for _, name := range requested {
			if set[name] {
				names = append(names, name)
			} else {
				ui.MutedMsg("%s is not an outdated leaf, skipping", name)
			}
		}
		if len(names) == 0 {
			return nil, brew.ErrNothingToUpgrade
		}
		return confirmUpgrades(names)
	}

	if upgradeAll {
		return confirmUpgrades(outdated)
	}

	names, err := ui.SelectMultiple(outdated, "Outdated leaves:")
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrAborted
	}
	return names, nil
}

func confirmUpgrades(names []string) ([]string, error) {
	if yes {
		return names, nil
	}
	ok, err := ui.Confirm(fmt.Sprintf("Upgrade %s?", strings.Join(names, ", ")), true)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAborted
	}
	return names, nil
}
