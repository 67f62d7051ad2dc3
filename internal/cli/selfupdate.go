package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"brewery/internal/history"
	"brewery/internal/ui"
	"brewery/pkg/brew"
)

var forceUpdate bool

var selfUpdateCmd = &cobra.Command{
	Use:     "self-update",
	Aliases: []string{"selfupdate"},
	Short:   "Update brewery to the latest release",
	Long: `Ask the Go module proxy for the newest brewery release and
install it with go install.

Requirements:
  - go: to build the binary

Examples:
  brewery self-update            # Update if a newer release exists
  brewery self-update --force    # Reinstall the latest release`,
	RunE: runSelfUpdate,
}

func init() {
	selfUpdateCmd.Flags().BoolVar(&forceUpdate, "force", false, "update even if already on latest version")
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	eng := newEngine(cfg)
	if eng.gotool == nil {
		return fmt.Errorf("general.self_module is not set")
	}

	ui.HeaderMsg("brewery self-update")
	ui.InfoMsg("Current version: %s", Version)

	ctx, cancel := fetchContext(cfg)
	defer cancel()

	var latest string
	err := ui.WithSpinner("Checking the module proxy", func() error {
		var err error
		latest, err = eng.gotool.Latest(ctx)
		return err
	})
	if err != nil {
		return err
	}
	ui.InfoMsg("Latest version:  %s", latest)

	if !forceUpdate && !brew.NewerThan(latest, Version) {
		ui.SuccessMsg("%s", ErrUpToDate)
		return nil
	}

	if !yes {
		ok, err := ui.Confirm(fmt.Sprintf("Install brewery %s?", latest), true)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAborted
		}
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

	sp := ui.NewSpinner("Installing " + eng.gotool.Module() + "/cmd@latest...")
	sp.Start()
	if _, err := eng.gotool.SelfUpdate(context.Background()); err != nil {
		sp.Error("Update failed: " + brew.Excerpt(err))
		record(store, history.NewEntry(history.KindError, "self-update", "", "update brewery failed: "+brew.Excerpt(err)))
		return err
	}
	sp.Success("Installed brewery " + latest)
	record(store, history.NewEntry(history.KindSuccess, "self-update", "", "updated brewery"))
	return nil
}
