package dataset

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/lagscan/schema"
)

// ErrEmptyDataset is returned when a source has a header but no data rows.
var ErrEmptyDataset = errors.New("dataset has no rows")

// MaxSpanDays caps the calendar span of a dataset.
const MaxSpanDays = 100 * 366

// missingTokens are cell values read as a missing observation.
var missingTokens = []string{"", "NA", "N/A", "NaN", "nan", "null", "-"}

// table is a wide dataset before cadence checks. Values are NaN where missing.
type table struct {
	dates   []time.Time
	columns []string
	values  [][]float64 // values[col][row]
}

// fromRecords builds a table from a header and string rows. The date column
// is dateColumn, or the first column when empty.
func fromRecords(header []string, rows [][]string, dateColumn string) (*table, error) {
	if len(header) < 2 {
		return nil, fmt.Errorf("need a date column and at least one value column, got %d columns", len(header))
	}
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}

	dateIdx := 0
	if dateColumn != "" {
		dateIdx = slices.Index(header, dateColumn)
		if dateIdx < 0 {
			return nil, fmt.Errorf("date column %q: %w", dateColumn, schema.ErrColumnNotFound)
		}
	}

	t := &table{dates: make([]time.Time, len(rows))}
	var valueIdx []int
	for i, name := range header {
		if i == dateIdx {
			continue
		}
		t.columns = append(t.columns, strings.TrimSpace(name))
		t.values = append(t.values, make([]float64, len(rows)))
		valueIdx = append(valueIdx, i)
	}

	for r, row := range rows {
		d, err := ParseDate(cell(row, dateIdx))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", r+1, err)
		}
		t.dates[r] = d
		for c, idx := range valueIdx {
			v, err := parseValue(cell(row, idx))
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", r+1, t.columns[c], err)
			}
			t.values[c][r] = v
		}
	}
	return t, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// parseValue reads a count, allowing thousands separators. Missing cells are NaN.
func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if slices.Contains(missingTokens, s) {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// Reindex checks that dates strictly increase and fills calendar gaps with
// missing observations, producing a dataset with a daily cadence.
func (t *table) Reindex() (*schema.Dataset, error) {
	if len(t.dates) == 0 {
		return nil, ErrEmptyDataset
	}
	for i := 1; i < len(t.dates); i++ {
		if !t.dates[i].After(t.dates[i-1]) {
			return nil, fmt.Errorf("row %d: date %s is not after %s", i+1,
				t.dates[i].Format(time.DateOnly), t.dates[i-1].Format(time.DateOnly))
		}
	}

	first, last := t.dates[0], t.dates[len(t.dates)-1]
	span := daysBetween(first, last)
	if span >= MaxSpanDays {
		return nil, fmt.Errorf("dates %s to %s span %d days, more than the %d day limit",
			first.Format(time.DateOnly), last.Format(time.DateOnly), span+1, MaxSpanDays)
	}
	n := int(span) + 1
	ds := &schema.Dataset{
		Dates:   make([]time.Time, n),
		Columns: slices.Clone(t.columns),
		Series:  make([]schema.TimeSeries, len(t.columns)),
	}
	for i := range n {
		ds.Dates[i] = first.AddDate(0, 0, i)
	}

	for c, name := range t.columns {
		obs := make([]schema.Observation, n)
		for i, d := range ds.Dates {
			obs[i] = schema.Observation{Date: d}
		}
		for r, d := range t.dates {
			v := t.values[c][r]
			if math.IsNaN(v) {
				continue
			}
			i := int(daysBetween(first, d))
			obs[i].Value = v
			obs[i].Valid = true
		}
		ds.Series[c] = schema.TimeSeries{Name: name, Observations: obs}
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// daysBetween counts calendar days from a to b. Both are midnight UTC.
// Unix seconds stay exact past the ~292 year range of time.Duration.
func daysBetween(a, b time.Time) int64 {
	return (b.Unix() - a.Unix()) / 86400
}
