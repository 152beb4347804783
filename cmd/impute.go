package cmd

import (
	"github.com/huangsam/lagscan/core"
	"github.com/huangsam/lagscan/internal/contract"
	"github.com/spf13/cobra"
)

// imputeCmd prints the dataset with missing values filled.
var imputeCmd = &cobra.Command{
	Use:   "impute <dataset>",
	Short: "Fill missing daily arrivals with nearest-neighbour imputation.",
	Long: `Fill every missing observation with the mean of the --neighbors closest
days, measured on the other selected columns. Imputed cells are marked.

Examples:
  # Impute every column
  lagscan impute arrivals.csv

  # Impute a pair and save as Parquet
  lagscan impute arrivals.csv --source Greece --target Macedonia --output parquet --output-file filled.parquet`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteImpute(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot impute dataset", err)
		}
	},
}
