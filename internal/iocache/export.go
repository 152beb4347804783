package iocache

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/huangsam/lagscan/internal/parquet"
)

// ExecuteAnalysisExport writes the recorded runs and lag results to Parquet files.
func ExecuteAnalysisExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetAnalysisStore()
	if store == nil {
		return errors.New("analysis store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total lag records: %d\n", status.TableRowCounts[lagResultsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	lagResults, err := store.GetAllLagResults()
	if err != nil {
		return fmt.Errorf("failed to retrieve lag results: %w", err)
	}

	parquetRuns := parquet.ConvertScanRunRecords(runs)
	parquetLagResults := parquet.ConvertLagResultRecords(lagResults)

	base := strings.TrimSuffix(outputFile, filepath.Ext(outputFile))
	runsFile := base + ".scan_runs.parquet"
	if err := parquet.WriteScanRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	lagResultsFile := base + ".lag_results.parquet"
	if err := parquet.WriteLagResultsParquet(parquetLagResults, lagResultsFile); err != nil {
		return fmt.Errorf("failed to write lag results: %w", err)
	}
	fmt.Printf("Exported %d lag records to: %s\n", len(parquetLagResults), lagResultsFile)

	fmt.Println("\nExport complete! The Parquet files can be read by DuckDB, pandas, Spark or any Parquet-compatible tool.")
	return nil
}
