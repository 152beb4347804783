// Package dataset loads daily arrival tables from CSV, XLSX and Parquet files.
package dataset

import (
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/huangsam/lagscan/internal/parquet"
	"github.com/huangsam/lagscan/schema"
	"github.com/xuri/excelize/v2"
)

// Options tune how a file is read.
type Options struct {
	DateColumn string // defaults to the first column
	Sheet      string // XLSX only, defaults to the first sheet
}

// Load reads a dataset, choosing the reader by file extension.
func Load(path string, opts Options) (*schema.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		return LoadCSV(f, opts)
	case ".xlsx":
		return LoadXLSX(path, opts)
	case ".parquet":
		return LoadParquet(path)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q (expected .csv, .xlsx or .parquet)", filepath.Ext(path))
	}
}

// LoadCSV reads a wide CSV table with a header row.
func LoadCSV(r io.Reader, opts Options) (*schema.Dataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingTokens),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", df.Err)
	}

	header := df.Names()
	rows := make([][]string, df.Nrow())
	for i := range rows {
		rows[i] = make([]string, len(header))
	}
	for c, name := range header {
		col := df.Col(name)
		records := col.Records()
		missing := col.IsNaN()
		for i := range rows {
			if !missing[i] {
				rows[i][c] = records[i]
			}
		}
	}

	t, err := fromRecords(header, rows, opts.DateColumn)
	if err != nil {
		return nil, err
	}
	return t.Reindex()
}

// LoadXLSX reads a wide table from a workbook sheet. The first row is the header.
func LoadXLSX(path string, opts Options) (*schema.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}

	// Trailing blank rows are common in hand-edited sheets.
	body := rows[1:]
	for len(body) > 0 && blank(body[len(body)-1]) {
		body = body[:len(body)-1]
	}

	t, err := fromRecords(rows[0], body, opts.DateColumn)
	if err != nil {
		return nil, err
	}
	return t.Reindex()
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// LoadParquet reads a long-format (date, country, arrivals) table and pivots
// it to one column per country, ordered by name.
func LoadParquet(path string) (*schema.Dataset, error) {
	records, err := parquet.ReadArrivalsParquet(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	dateSet := make(map[time.Time]struct{})
	countrySet := make(map[string]struct{})
	for _, r := range records {
		dateSet[day(r.Date.UTC())] = struct{}{}
		countrySet[r.Country] = struct{}{}
	}
	dates := slices.SortedFunc(maps.Keys(dateSet), func(a, b time.Time) int { return a.Compare(b) })
	countries := slices.Sorted(maps.Keys(countrySet))

	t := &table{dates: dates, columns: countries, values: make([][]float64, len(countries))}
	for c := range countries {
		t.values[c] = make([]float64, len(dates))
		for i := range dates {
			t.values[c][i] = math.NaN()
		}
	}

	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		d := day(r.Date.UTC())
		key := d.Format(time.DateOnly) + "\x00" + r.Country
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate row for %s on %s", r.Country, d.Format(time.DateOnly))
		}
		seen[key] = struct{}{}
		if r.Arrivals == nil {
			continue
		}
		row, _ := slices.BinarySearchFunc(dates, d, func(a, b time.Time) int { return a.Compare(b) })
		col, _ := slices.BinarySearch(countries, r.Country)
		t.values[col][row] = *r.Arrivals
	}
	return t.Reindex()
}
