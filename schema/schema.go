// Package schema has models and constants shared by all parts of lagscan.
package schema

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// Day is the uniform cadence of every series.
const Day = 24 * time.Hour

// ErrColumnNotFound is returned when a dataset has no column with the requested name.
var ErrColumnNotFound = errors.New("column not found")

// Observation is one day of arrivals for one country.
// A missing count has Valid == false and Value == 0; it is never treated as zero arrivals.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Valid bool      `json:"valid"`
}

// TimeSeries is an ordered daily sequence of observations for one country.
type TimeSeries struct {
	Name         string        `json:"name"`
	Observations []Observation `json:"observations"`
}

// Len returns the number of observations.
func (ts TimeSeries) Len() int {
	return len(ts.Observations)
}

// MissingCount returns how many observations are absent.
func (ts TimeSeries) MissingCount() int {
	n := 0
	for _, o := range ts.Observations {
		if !o.Valid {
			n++
		}
	}
	return n
}

// Values returns the series as a dense slice where missing entries are NaN.
func (ts TimeSeries) Values() []float64 {
	out := make([]float64, len(ts.Observations))
	for i, o := range ts.Observations {
		if o.Valid {
			out[i] = o.Value
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Validate checks that dates are strictly increasing with a daily cadence.
func (ts TimeSeries) Validate() error {
	for i := 1; i < len(ts.Observations); i++ {
		prev, cur := ts.Observations[i-1].Date, ts.Observations[i].Date
		if !cur.After(prev) {
			return fmt.Errorf("series %q: date %s at row %d is not after %s", ts.Name, cur.Format(time.DateOnly), i, prev.Format(time.DateOnly))
		}
		if cur.Sub(prev) != Day {
			return fmt.Errorf("series %q: gap between %s and %s at row %d", ts.Name, prev.Format(time.DateOnly), cur.Format(time.DateOnly), i)
		}
	}
	return nil
}

// Dataset is a table of aligned daily series keyed by column name.
type Dataset struct {
	Dates   []time.Time  `json:"dates"`
	Columns []string     `json:"columns"`
	Series  []TimeSeries `json:"series"`
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Dates)
}

// Lookup returns the series for the given column name.
func (d *Dataset) Lookup(name string) (TimeSeries, error) {
	for i, c := range d.Columns {
		if c == name {
			return d.Series[i], nil
		}
	}
	return TimeSeries{}, fmt.Errorf("%w: %q (available: %v)", ErrColumnNotFound, name, d.Columns)
}

// Validate checks alignment and cadence of every series.
func (d *Dataset) Validate() error {
	if len(d.Columns) != len(d.Series) {
		return fmt.Errorf("dataset has %d columns but %d series", len(d.Columns), len(d.Series))
	}
	for _, s := range d.Series {
		if s.Len() != len(d.Dates) {
			return fmt.Errorf("series %q has %d rows, expected %d", s.Name, s.Len(), len(d.Dates))
		}
		for i, o := range s.Observations {
			if !o.Date.Equal(d.Dates[i]) {
				return fmt.Errorf("series %q is not aligned with the dataset at row %d", s.Name, i)
			}
		}
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Hash returns a stable digest of the dataset contents, used for cache keys.
func (d *Dataset) Hash() string {
	h := sha256.New()
	buf := make([]byte, 8)
	for _, t := range d.Dates {
		binary.LittleEndian.PutUint64(buf, uint64(t.Unix()))
		h.Write(buf)
	}
	for i, c := range d.Columns {
		h.Write([]byte(c))
		for _, o := range d.Series[i].Observations {
			if o.Valid {
				binary.LittleEndian.PutUint64(buf, math.Float64bits(o.Value))
			} else {
				binary.LittleEndian.PutUint64(buf, math.MaxUint64)
			}
			h.Write(buf)
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// ImputedSeries is a dense series with every missing value filled.
type ImputedSeries struct {
	Name    string    `json:"name"`
	Values  []float64 `json:"values"`
	Imputed []bool    `json:"imputed"` // true where the value was estimated
}
