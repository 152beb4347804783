package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/lagscan/internal/contract"
	"github.com/huangsam/lagscan/internal/parquet"
	"github.com/huangsam/lagscan/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteMatrixResults outputs pair summaries, dispatching based on the output format configured.
func WriteMatrixResults(result schema.MatrixResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtPct := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVMatrix(w, result, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		rows := parquet.ConvertLagSummaries(result.Summaries)
		if err := parquet.WriteLagSummariesParquet(rows, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Printf("💾 Wrote %d pair summaries to %s\n", len(rows), cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMatrixTable(w, result, cfg, fmtFloat, fmtPct, duration)
		}, "Wrote table")
	}
	return nil
}

// writeMatrixTable writes one row per ordered pair, in ranked order.
func writeMatrixTable(w io.Writer, result schema.MatrixResult, cfg *contract.Config, fmtFloat, fmtPct func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Source", "Target", "Lag", "Share", "Median", "Mean Corr", "Max Corr", "Strength", "Windows", "Skipped"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	data := make([][]string, 0, len(result.Summaries))
	for i, s := range result.Summaries {
		lagStr := "-"
		if s.DominantLag >= 0 {
			lagStr = strconv.Itoa(s.DominantLag)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateName(s.Source, nameWidth),
			contract.TruncateName(s.Target, nameWidth),
			lagStr,
			fmtPct(s.DominantShare),
			fmtFloat(s.MedianLag),
			fmtFloat(s.MeanCorrelation),
			fmtFloat(s.MaxCorrelation),
			contract.GetColorLabel(s.MeanCorrelation),
			strconv.Itoa(s.Windows),
			strconv.Itoa(s.Skipped),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d pairs (max lag %d, window %d)\n", len(result.Summaries), result.Params.MaxLag, result.Params.WindowSize); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Matrix completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend)
	return err
}

// writeCSVMatrix writes the pair summaries in CSV format.
func writeCSVMatrix(w io.Writer, result schema.MatrixResult, fmtFloat func(float64) string) error {
	header := []string{"rank", "source", "target", "dominant_lag", "dominant_share", "median_lag", "mean_correlation", "max_correlation", "strength", "windows", "skipped"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, s := range result.Summaries {
			rec := []string{
				strconv.Itoa(i + 1),
				s.Source,
				s.Target,
				strconv.Itoa(s.DominantLag),
				fmtFloat(s.DominantShare),
				fmtFloat(s.MedianLag),
				fmtFloat(s.MeanCorrelation),
				fmtFloat(s.MaxCorrelation),
				contract.GetPlainLabel(s.MeanCorrelation),
				strconv.Itoa(s.Windows),
				strconv.Itoa(s.Skipped),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
