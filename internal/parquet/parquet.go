// Package parquet provides data structures and functions for reading arrival
// tables from and exporting lag scan data to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"cmp"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/huangsam/lagscan/schema"
	"github.com/parquet-go/parquet-go"
)

// ArrivalRecord is one row of a long-format arrivals table.
type ArrivalRecord struct {
	// Date is the day of the observation
	Date time.Time `parquet:"date,snappy"`

	// Country names the column the value belongs to
	Country string `parquet:"country,snappy,dict"`

	// Arrivals is the daily count, null when not reported
	Arrivals *float64 `parquet:"arrivals,optional,snappy"`
}

// ScanRun represents a single lagscan run with metadata.
// This struct maps to the lagscan_runs database table.
type ScanRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the globally unique tag of this run
	RunUUID string `parquet:"run_uuid,snappy"`

	// Command is the CLI command that started the run
	Command string `parquet:"command,snappy,dict"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalPairs is the number of country pairs scanned
	TotalPairs int32 `parquet:"total_pairs,snappy"`

	// TotalResults is the number of lag results recorded
	TotalResults int32 `parquet:"total_results,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// LagResultRow is one window of a scan, or one skipped window.
// This struct maps to the lagscan_lag_results database table.
type LagResultRow struct {
	RunID       int64      `parquet:"run_id,snappy"`
	Source      string     `parquet:"source,snappy,dict"`
	Target      string     `parquet:"target,snappy,dict"`
	StartRow    int32      `parquet:"start_row,snappy"`
	WindowEnd   int32      `parquet:"window_end,snappy"`
	WindowDate  *time.Time `parquet:"window_date,optional,snappy"`
	Lag         int32      `parquet:"lag,snappy"`
	Correlation float64    `parquet:"correlation,snappy"`
	Skipped     bool       `parquet:"skipped,snappy"`
	Reason      *string    `parquet:"reason,optional,snappy"`
}

// LagSummaryRow is the per-pair summary written by the matrix command.
type LagSummaryRow struct {
	Source          string  `parquet:"source,snappy,dict"`
	Target          string  `parquet:"target,snappy,dict"`
	Windows         int32   `parquet:"windows,snappy"`
	Skipped         int32   `parquet:"skipped,snappy"`
	DominantLag     int32   `parquet:"dominant_lag,snappy"`
	DominantShare   float64 `parquet:"dominant_share,snappy"`
	MedianLag       float64 `parquet:"median_lag,snappy"`
	MeanCorrelation float64 `parquet:"mean_correlation,snappy"`
	MaxCorrelation  float64 `parquet:"max_correlation,snappy"`
}

// writeRows writes rows of any tagged struct type to a new Parquet file.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteScanRunsParquet writes a slice of ScanRun structs to a Parquet file.
func WriteScanRunsParquet(data []ScanRun, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteLagResultsParquet writes a slice of LagResultRow structs to a Parquet file.
func WriteLagResultsParquet(data []LagResultRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteLagSummariesParquet writes a slice of LagSummaryRow structs to a Parquet file.
func WriteLagSummariesParquet(data []LagSummaryRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteArrivalsParquet writes a long-format arrivals table.
func WriteArrivalsParquet(data []ArrivalRecord, outputPath string) error {
	return writeRows(data, outputPath)
}

// ReadArrivalsParquet reads a long-format arrivals table.
func ReadArrivalsParquet(path string) ([]ArrivalRecord, error) {
	rows, err := parquet.ReadFile[ArrivalRecord](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file %s: %w", path, err)
	}
	return rows, nil
}

// ConvertScanRunRecords converts schema.ScanRunRecord to ScanRun for Parquet export.
func ConvertScanRunRecords(records []schema.ScanRunRecord) []ScanRun {
	result := make([]ScanRun, len(records))
	for i, record := range records {
		result[i] = ScanRun{
			RunID:         record.RunID,
			RunUUID:       record.RunUUID,
			Command:       record.Command,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalPairs:    record.TotalPairs,
			TotalResults:  record.TotalResults,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertLagResultRecords converts schema.LagResultRecord to LagResultRow for Parquet export.
func ConvertLagResultRecords(records []schema.LagResultRecord) []LagResultRow {
	result := make([]LagResultRow, len(records))
	for i, record := range records {
		result[i] = LagResultRow(record)
	}
	return result
}

// ConvertScanResults flattens scan results into rows, skipped windows included.
func ConvertScanResults(runID int64, results []schema.ScanResult) []LagResultRow {
	var rows []LagResultRow
	for _, r := range results {
		first := len(rows)
		for _, lr := range r.Results {
			row := LagResultRow{
				RunID:       runID,
				Source:      r.Source,
				Target:      r.Target,
				StartRow:    int32(lr.StartRow),
				WindowEnd:   int32(lr.WindowEnd),
				Lag:         int32(lr.Lag),
				Correlation: lr.Correlation,
			}
			if !lr.Date.IsZero() {
				d := lr.Date
				row.WindowDate = &d
			}
			rows = append(rows, row)
		}
		for _, sk := range r.Skipped {
			reason := sk.Reason
			rows = append(rows, LagResultRow{
				RunID:     runID,
				Source:    r.Source,
				Target:    r.Target,
				StartRow:  int32(sk.StartRow),
				WindowEnd: int32(sk.StartRow + r.Params.WindowSize - 1),
				Lag:       -1,
				Skipped:   true,
				Reason:    &reason,
			})
		}
		slices.SortStableFunc(rows[first:], func(a, b LagResultRow) int {
			return cmp.Compare(a.StartRow, b.StartRow)
		})
	}
	return rows
}

// ConvertLagSummaries converts matrix summaries for Parquet export.
func ConvertLagSummaries(summaries []schema.LagSummary) []LagSummaryRow {
	rows := make([]LagSummaryRow, len(summaries))
	for i, s := range summaries {
		rows[i] = LagSummaryRow{
			Source:          s.Source,
			Target:          s.Target,
			Windows:         int32(s.Windows),
			Skipped:         int32(s.Skipped),
			DominantLag:     int32(s.DominantLag),
			DominantShare:   s.DominantShare,
			MedianLag:       s.MedianLag,
			MeanCorrelation: s.MeanCorrelation,
			MaxCorrelation:  s.MaxCorrelation,
		}
	}
	return rows
}
