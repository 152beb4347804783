// Package cmd defines the command-line interface for lagscan.
package cmd

import (
	"github.com/huangsam/lagscan/internal/contract"
	"github.com/huangsam/lagscan/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(bestlagCmd)
	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(imputeCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("source", "", "Origin country column")
	rootCmd.PersistentFlags().String("target", "", "Destination country column")
	rootCmd.PersistentFlags().String("countries", "", "Comma-separated list of country columns (default: all)")
	rootCmd.PersistentFlags().Int("max-lag", schema.DefaultMaxLag, "Largest lag in days to consider")
	rootCmd.PersistentFlags().Int("window-size", schema.DefaultWindowSize, "Rows per trailing window")
	rootCmd.PersistentFlags().Int("neighbors", schema.DefaultNeighbors, "Nearest neighbours used to impute missing values")
	rootCmd.PersistentFlags().String("date-column", "", "Name of the date column (default: first column)")
	rootCmd.PersistentFlags().String("sheet", "", "XLSX sheet to read (default: first sheet)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format: console or json")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Analysis tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for analysis tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of bestlagCmd to Viper
	bestlagCmd.Flags().Int("start-row", 0, "First row of the window")
	bestlagCmd.Flags().Int("window-end", -1, "Last row of the window (-1 = last row)")
	if err := viper.BindPFlags(bestlagCmd.Flags()); err != nil {
		contract.LogFatal("Error binding bestlag flags", err)
	}

	// Bind all flags of matrixCmd to Viper
	matrixCmd.Flags().IntP("limit", "l", 0, "Number of pairs to display (0 = all)")
	if err := viper.BindPFlags(matrixCmd.Flags()); err != nil {
		contract.LogFatal("Error binding matrix flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 = latest)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding migrate flags", err)
	}
}
