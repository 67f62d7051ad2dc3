package cli

import (
	"github.com/spf13/cobra"

	"brewery/internal/ui"
	"brewery/pkg/brew"
)

var sizesLimit int

var sizesCmd = &cobra.Command{
	Use:   "sizes",
	Short: "Show disk usage of installed kegs",
	Long: `Measure every keg in the Cellar and list them largest first.

Examples:
  brewery sizes           # All kegs
  brewery sizes -l 10     # The ten largest`,
	RunE: runSizes,
}

func init() {
	sizesCmd.Flags().IntVarP(&sizesLimit, "limit", "l", 0, "number of kegs to show (0 for all)")
}

func runSizes(cmd *cobra.Command, args []string) error {
	eng := newEngine(cfg)

	ctx, cancel := fetchContext(cfg)
	defer cancel()

	var sizes []brew.SizeEntry
	err := ui.WithSpinner("Measuring Cellar", func() error {
		var err error
		sizes, err = eng.client.Sizes(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if sizesLimit > 0 && len(sizes) > sizesLimit {
		sizes = sizes[:sizesLimit]
	}
	ui.PrintSizes(sizes)
	return nil
}
