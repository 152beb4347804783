// Package lag finds the travel-time lag between two daily arrival series.
package lag

import (
	"math"

	"github.com/huangsam/lagscan/schema"
	"gonum.org/v1/gonum/stat"
)

// tieEpsilon is the margin a later lag must beat to replace the current best.
const tieEpsilon = 1e-12

// BestLag returns the lag in [0, maxLag] that maximizes the Pearson correlation
// between source shifted forward by the lag and target.
//
// Every candidate is compared over rows max(startRow, maxLag)..windowEnd, so all
// lags share one sample size and no shifted value falls before row zero.
// Candidates with zero variance are excluded. Ties go to the smallest lag.
func BestLag(source, target []float64, startRow, maxLag, windowEnd int) (schema.LagResult, error) {
	if len(source) != len(target) {
		return schema.LagResult{}, ErrLengthMismatch
	}
	if startRow < 0 || maxLag < 0 || windowEnd >= len(source) || startRow+maxLag > windowEnd {
		return schema.LagResult{}, &InsufficientDataError{
			StartRow:  startRow,
			MaxLag:    maxLag,
			WindowEnd: windowEnd,
			Length:    len(source),
		}
	}

	from := max(startRow, maxLag)
	y := target[from : windowEnd+1]

	best := schema.LagResult{StartRow: startRow, WindowEnd: windowEnd, Lag: -1}
	var causes []error
	for t := 0; t <= maxLag; t++ {
		x := source[from-t : windowEnd+1-t]
		r, ok := correlation(x, y)
		if !ok {
			causes = append(causes, &DegenerateSeriesError{Lag: t})
			continue
		}
		if best.Lag < 0 || r > best.Correlation+tieEpsilon {
			best.Lag = t
			best.Correlation = r
		}
	}
	if best.Lag < 0 {
		return schema.LagResult{}, &NoValidLagError{StartRow: startRow, Causes: causes}
	}
	return best, nil
}

// correlation returns false when either side has fewer than two points or no variance.
func correlation(x, y []float64) (float64, bool) {
	if len(x) < 2 || constant(x) || constant(y) {
		return 0, false
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

func constant(xs []float64) bool {
	for _, v := range xs[1:] {
		if v != xs[0] {
			return false
		}
	}
	return true
}
