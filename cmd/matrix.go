package cmd

import (
	"github.com/huangsam/lagscan/core"
	"github.com/huangsam/lagscan/internal/contract"
	"github.com/spf13/cobra"
)

// matrixCmd scans every ordered pair of countries.
var matrixCmd = &cobra.Command{
	Use:   "matrix <dataset>",
	Short: "Rank every country pair by how well a lag explains it.",
	Long: `Scan every ordered pair of the selected countries and summarize each scan
by its dominant lag and correlation. Pairs are ranked by mean correlation.

Examples:
  # All columns of the dataset
  lagscan matrix arrivals.csv

  # A subset, top 10 pairs
  lagscan matrix arrivals.csv --countries Greece,Macedonia,Serbia,Croatia --limit 10`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMatrix(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run lag matrix", err)
		}
	},
}
