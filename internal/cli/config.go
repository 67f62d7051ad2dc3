package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"brewery/internal/config"
	"brewery/internal/ui"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the brewery configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print where brewery keeps its files",
	Run: func(cmd *cobra.Command, args []string) {
		path := cfgFile
		if path == "" {
			path = config.ConfigPath()
		}
		ui.Println("config:  %s", path)
		ui.Println("history: %s", config.HistoryPath())
		ui.Println("log:     %s", config.LogPath())
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		if err := config.EnsureConfigDir(); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		path = config.ConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !forceInit {
		return fmt.Errorf("%s already exists; pass --force to overwrite it", path)
	}

	if err := config.Default().SaveTo(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	ui.SuccessMsg("Wrote %s", path)
	return nil
}
