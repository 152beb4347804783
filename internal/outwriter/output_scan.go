package outwriter

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/lagscan/core/lag"
	"github.com/huangsam/lagscan/internal/contract"
	"github.com/huangsam/lagscan/internal/parquet"
	"github.com/huangsam/lagscan/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteScanResults outputs a scan, dispatching based on the output format configured.
func WriteScanResults(result schema.ScanResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtPct := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONScan(w, result)
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
			return writeScanTable(w, result, cfg, fmtFloat, fmtPct, duration)
		}, "Wrote table")
	}
	return nil
}

// writeScanTable generates and writes the human-readable table.
func writeScanTable(w io.Writer, result schema.ScanResult, cfg *contract.Config, fmtFloat, fmtPct func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Start", "End", "Date", "Lag", "Correlation", "Strength"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(result.Results))
	for _, r := range result.Results {
		data = append(data, []string{
			strconv.Itoa(r.StartRow),
			strconv.Itoa(r.WindowEnd),
			formatDate(r.Date),
			strconv.Itoa(r.Lag),
			fmtFloat(r.Correlation),
			contract.GetColorLabel(r.Correlation),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(result.Results) == 0 && len(result.Skipped) == 0 && !result.Truncated {
		if _, err := fmt.Fprintf(w, "No windows scanned: the dataset needs more than window-size (%d) rows\n", result.Params.WindowSize); err != nil {
			return err
		}
	}

	summary := lag.Summarize(result)
	if summary.DominantLag >= 0 {
		if _, err := fmt.Fprintf(w, "Dominant lag: %d days (%s of windows, median %s, mean correlation %s)\n",
			summary.DominantLag, fmtPct(summary.DominantShare), fmtFloat(summary.MedianLag), fmtFloat(summary.MeanCorrelation)); err != nil {
			return err
		}
	}
	if len(result.Skipped) > 0 {
		if _, err := fmt.Fprintf(w, "Skipped %d windows with no valid lag\n", len(result.Skipped)); err != nil {
			return err
		}
	}
	if result.Truncated {
		if _, err := fmt.Fprintf(w, "Scan stopped early: %s\n", result.StopReason); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Scan completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend)
	return err
}

// writeCSVScan writes one row per evaluated window, skipped windows included.
func writeCSVScan(w io.Writer, result schema.ScanResult, fmtFloat func(float64) string) error {
	header := []string{"source", "target", "start_row", "window_end", "date", "lag", "correlation", "strength", "skipped", "reason"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		return writeCSVScanRows(cw, result, fmtFloat)
	})
}

// writeCSVScanRows interleaves results and skipped windows by start row.
func writeCSVScanRows(cw *csv.Writer, result schema.ScanResult, fmtFloat func(float64) string) error {
	type row struct {
		startRow int
		rec      []string
	}
	rows := make([]row, 0, len(result.Results)+len(result.Skipped))
	for _, r := range result.Results {
		rows = append(rows, row{r.StartRow, []string{
			result.Source,
			result.Target,
			strconv.Itoa(r.StartRow),
			strconv.Itoa(r.WindowEnd),
			formatDate(r.Date),
			strconv.Itoa(r.Lag),
			fmtFloat(r.Correlation),
			contract.GetPlainLabel(r.Correlation),
			"false",
			"",
		}})
	}
	for _, sk := range result.Skipped {
		rows = append(rows, row{sk.StartRow, []string{
			result.Source,
			result.Target,
			strconv.Itoa(sk.StartRow),
			strconv.Itoa(sk.StartRow + result.Params.WindowSize - 1),
			"",
			"",
			"",
			"",
			"true",
			sk.Reason,
		}})
	}
	slices.SortStableFunc(rows, func(a, b row) int { return cmp.Compare(a.startRow, b.startRow) })

	for _, r := range rows {
		if err := cw.Write(r.rec); err != nil {
			return err
		}
	}
	return nil
}

// writeJSONScan writes the scan together with its summary.
func writeJSONScan(w io.Writer, result schema.ScanResult) error {
	type jsonScan struct {
		schema.ScanResult
		Summary schema.LagSummary `json:"summary"`
	}
	return writeJSON(w, jsonScan{ScanResult: result, Summary: lag.Summarize(result)})
}

// writeParquetScans writes every window of the given scans to one Parquet file.
func writeParquetScans(outputFile string, results ...schema.ScanResult) error {
	rows := parquet.ConvertScanResults(0, results)
	if err := parquet.WriteLagResultsParquet(rows, outputFile); err != nil {
		return err
	}
	fmt.Printf("💾 Wrote %d lag rows to %s\n", len(rows), outputFile)
	return nil
}
