// Package cli implements the command-line interface for brewery.
package cli

import (
	"brewery/internal/config"
	"brewery/internal/ui"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	yes     bool
	verbose bool
	noColor bool
	ascii   bool

	// Global state
	cfg *config.Config
)

// Build metadata - set at build time via ldflags
var (
	Version   = "0.1.0-dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "brewery",
	Short: "A live terminal dashboard for Homebrew",
	Long: `brewery is a terminal dashboard for Homebrew. Browse and search
formulae and casks, inspect dependencies and disk usage, keep an eye on
brew doctor and outdated packages, and install, uninstall or upgrade
without leaving the terminal.

Destructive actions are armed by the first keypress and run on the
second; any other key cancels them.

Examples:
  brewery                     # Open the dashboard
  brewery status              # Print a one-shot status report
  brewery upgrade             # Pick outdated leaves to upgrade
  brewery history -l 20       # Show the last 20 recorded actions`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeApp()
	},
	RunE: runDashboard,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "assume yes to all prompts")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write a debug log")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&ascii, "ascii", false, "use ASCII icons instead of Nerd Font glyphs")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sizesCmd)
	rootCmd.AddCommand(upgradeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(selfUpdateCmd)
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		ui.ErrorMsg("%v", err)
	}
	return err
}

// initializeApp loads the configuration and applies the global flags.
func initializeApp() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	// Apply global flag overrides
	if verbose {
		cfg.General.DebugLog = true
	}
	if noColor {
		cfg.Display.Color = false
	}
	if ascii {
		cfg.Display.Icons = config.IconsASCII
	}

	ui.Init(cfg.ShouldUseColor(), cfg.Display.Unicode)
	return nil
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print brewery version",
	Run: func(cmd *cobra.Command, args []string) {
		ui.InfoMsg("brewery version %s", Version)
		if Commit != "unknown" {
			ui.MutedMsg("  Commit: %s", Commit)
		}
		if BuildTime != "unknown" {
			ui.MutedMsg("  Built:  %s", BuildTime)
		}
	},
}
