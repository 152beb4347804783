package cmd

import (
	"github.com/huangsam/lagscan/core"
	"github.com/huangsam/lagscan/internal/contract"
	"github.com/spf13/cobra"
)

// scanCmd performs the windowed lag scan for one country pair.
var scanCmd = &cobra.Command{
	Use:   "scan <dataset>",
	Short: "Show the best lag for every trailing window of a country pair.",
	Long: `Slide a trailing window over two daily arrival series and report, for each
window, the lag in days that maximizes the Pearson correlation between the
source shifted forward and the target.

Missing observations are filled with K-nearest-neighbour imputation first.
Windows where every lag candidate is flat are reported as skipped.

Examples:
  # Scan Greece into Macedonia with the defaults (max lag 20, window 30)
  lagscan scan arrivals.csv --source Greece --target Macedonia

  # Shorter windows, wider lag search
  lagscan scan arrivals.csv --source Greece --target Macedonia --window-size 21 --max-lag 14

  # Export every window to CSV
  lagscan scan arrivals.xlsx --source Greece --target Serbia --output csv --output-file lags.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteScan(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run lag scan", err)
		}
	},
}
