package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/lagscan/internal/contract"
	"github.com/huangsam/lagscan/schema"
)

// WriteBestLagResult outputs the winner of a single window. The result holds
// exactly one LagResult.
func WriteBestLagResult(result schema.ScanResult, cfg *contract.Config, duration time.Duration) error {
	if len(result.Results) != 1 {
		return fmt.Errorf("expected one lag result, got %d", len(result.Results))
	}
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVScan(w, result, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeParquetScans(cfg.OutputFile, result); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBestLagText(w, result, cfg, fmtFloat, duration)
		}, "Wrote text")
	}
	return nil
}

func writeBestLagText(w io.Writer, result schema.ScanResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	r := result.Results[0]
	lines := []string{
		fmt.Sprintf("Pair:        %s → %s", result.Source, result.Target),
		fmt.Sprintf("Window:      rows %d..%d (ending %s)", r.StartRow, r.WindowEnd, formatDate(r.Date)),
		fmt.Sprintf("Best lag:    %d days (searched 0..%d)", r.Lag, result.Params.MaxLag),
		fmt.Sprintf("Correlation: %s %s", fmtFloat(r.Correlation), contract.GetColorLabel(r.Correlation)),
		fmt.Sprintf("Completed in %v. Cache backend: %s", duration, cfg.CacheBackend),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
