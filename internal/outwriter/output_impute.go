package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/lagscan/internal/contract"
	"github.com/huangsam/lagscan/internal/parquet"
	"github.com/huangsam/lagscan/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// imputedMarker flags estimated cells in the text table.
const imputedMarker = "*"

// WriteImputeResults outputs the imputed columns, dispatching based on the output format configured.
func WriteImputeResults(result schema.ImputeResult, cfg *contract.Config, duration time.Duration) error {
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
			return writeCSVImpute(w, result, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		rows := toArrivalRecords(result)
		if err := parquet.WriteArrivalsParquet(rows, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Printf("💾 Wrote %d arrival rows to %s\n", len(rows), cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeImputeTable(w, result, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writeImputeTable writes a wide table with one column per country.
func writeImputeTable(w io.Writer, result schema.ImputeResult, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	headers := []string{"Date"}
	for _, s := range result.Series {
		headers = append(headers, s.Name)
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	filled := 0
	data := make([][]string, 0, len(result.Dates))
	for i, d := range result.Dates {
		row := []string{formatDate(d)}
		for _, s := range result.Series {
			cell := fmtFloat(s.Values[i])
			if s.Imputed[i] {
				cell += imputedMarker
				filled++
			}
			row = append(row, cell)
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Imputed %d values (marked %s) using %d nearest neighbours\n", filled, imputedMarker, result.Neighbors); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Imputation completed in %v\n", duration)
	return err
}

// writeCSVImpute writes the dense wide table, followed by a flag column per series.
func writeCSVImpute(w io.Writer, result schema.ImputeResult, fmtFloat func(float64) string) error {
	header := []string{"date"}
	for _, s := range result.Series {
		header = append(header, s.Name)
	}
	for _, s := range result.Series {
		header = append(header, s.Name+"_imputed")
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, d := range result.Dates {
			rec := []string{formatDate(d)}
			for _, s := range result.Series {
				rec = append(rec, fmtFloat(s.Values[i]))
			}
			for _, s := range result.Series {
				rec = append(rec, fmt.Sprintf("%t", s.Imputed[i]))
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// toArrivalRecords flattens the imputed table to long format, the same
// layout the Parquet loader reads.
func toArrivalRecords(result schema.ImputeResult) []parquet.ArrivalRecord {
	rows := make([]parquet.ArrivalRecord, 0, len(result.Dates)*len(result.Series))
	for i, d := range result.Dates {
		for _, s := range result.Series {
			v := s.Values[i]
			rows = append(rows, parquet.ArrivalRecord{Date: d, Country: s.Name, Arrivals: &v})
		}
	}
	return rows
}
