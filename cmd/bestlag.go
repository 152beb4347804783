package cmd

import (
	"github.com/huangsam/lagscan/core"
	"github.com/huangsam/lagscan/internal/contract"
	"github.com/spf13/cobra"
)

// bestlagCmd finds the best lag for a single window.
var bestlagCmd = &cobra.Command{
	Use:   "bestlag <dataset>",
	Short: "Find the best lag over a single window of a country pair.",
	Long: `Evaluate every lag from 0 to --max-lag over rows --start-row..--window-end
and print the one with the highest correlation. Ties go to the smaller lag.

Examples:
  # Whole dataset as one window
  lagscan bestlag arrivals.csv --source Greece --target Macedonia

  # A specific stretch of rows
  lagscan bestlag arrivals.csv --source Greece --target Macedonia --start-row 100 --window-end 160`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBestLag(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot find best lag", err)
		}
	},
}
