// Package impute fills missing observations in aligned daily series.
package impute

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// ErrNoObservations is returned when a column has no observed value to learn from.
var ErrNoObservations = errors.New("column has no observed values")

// ErrRaggedColumns is returned when columns do not share one length.
var ErrRaggedColumns = errors.New("columns must have equal length")

// KNNImputer fills each missing entry with the mean of the K nearest rows
// that observe that column. Distance is the NaN-aware Euclidean distance
// over the coordinates both rows observe, scaled up by ncols/ncommon.
type KNNImputer struct {
	K int
}

type donor struct {
	row  int
	dist float64
}

// Impute returns copies of columns with every NaN replaced. Inputs are not modified.
func (k KNNImputer) Impute(columns ...[]float64) ([][]float64, error) {
	if k.K < 1 {
		return nil, fmt.Errorf("neighbors must be at least 1, got %d", k.K)
	}
	if len(columns) == 0 {
		return nil, nil
	}
	n := len(columns[0])
	for _, c := range columns[1:] {
		if len(c) != n {
			return nil, ErrRaggedColumns
		}
	}

	means := make([]float64, len(columns))
	for j, c := range columns {
		m, ok := observedMean(c)
		if !ok {
			return nil, fmt.Errorf("column %d: %w", j, ErrNoObservations)
		}
		means[j] = m
	}

	out := make([][]float64, len(columns))
	for j, c := range columns {
		out[j] = slices.Clone(c)
	}

	for i := range n {
		var cache []donor
		for j, c := range columns {
			if !math.IsNaN(c[i]) {
				continue
			}
			if cache == nil {
				cache = k.rank(columns, i)
			}
			out[j][i] = k.fill(columns, cache, j, means[j])
		}
	}
	return out, nil
}

// rank orders every other row by distance to row i. Rows sharing no observed
// coordinate with row i are left out. Ties keep the lower row index first.
func (k KNNImputer) rank(columns [][]float64, i int) []donor {
	donors := make([]donor, 0, len(columns[0]))
	for r := range columns[0] {
		if r == i {
			continue
		}
		if d, ok := nanEuclidean(columns, i, r); ok {
			donors = append(donors, donor{row: r, dist: d})
		}
	}
	slices.SortStableFunc(donors, func(a, b donor) int {
		switch {
		case a.dist < b.dist:
			return -1
		case a.dist > b.dist:
			return 1
		default:
			return a.row - b.row
		}
	})
	return donors
}

// fill averages column j over the first K ranked donors that observe it.
func (k KNNImputer) fill(columns [][]float64, ranked []donor, j int, fallback float64) float64 {
	vals := make([]float64, 0, k.K)
	for _, d := range ranked {
		v := columns[j][d.row]
		if math.IsNaN(v) {
			continue
		}
		vals = append(vals, v)
		if len(vals) == k.K {
			break
		}
	}
	if len(vals) == 0 {
		return fallback
	}
	return floats.Sum(vals) / float64(len(vals))
}

func nanEuclidean(columns [][]float64, a, b int) (float64, bool) {
	var sum float64
	common := 0
	for _, c := range columns {
		if math.IsNaN(c[a]) || math.IsNaN(c[b]) {
			continue
		}
		diff := c[a] - c[b]
		sum += diff * diff
		common++
	}
	if common == 0 {
		return 0, false
	}
	return math.Sqrt(sum * float64(len(columns)) / float64(common)), true
}

func observedMean(c []float64) (float64, bool) {
	var sum float64
	count := 0
	for _, v := range c {
		if !math.IsNaN(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}
