package lag

import (
	"slices"

	"github.com/huangsam/lagscan/schema"
)

// Summarize condenses a scan into its dominant lag and correlation statistics.
// The dominant lag is the most frequent winner; ties go to the smaller lag.
func Summarize(r schema.ScanResult) schema.LagSummary {
	s := schema.LagSummary{
		Source:      r.Source,
		Target:      r.Target,
		Windows:     len(r.Results),
		Skipped:     len(r.Skipped),
		DominantLag: -1,
	}
	if len(r.Results) == 0 {
		return s
	}

	counts := make(map[int]int)
	lags := make([]int, 0, len(r.Results))
	var sum float64
	s.MaxCorrelation = r.Results[0].Correlation
	for _, res := range r.Results {
		counts[res.Lag]++
		lags = append(lags, res.Lag)
		sum += res.Correlation
		s.MaxCorrelation = max(s.MaxCorrelation, res.Correlation)
	}
	s.MeanCorrelation = sum / float64(len(r.Results))

	slices.Sort(lags)
	mid := len(lags) / 2
	if len(lags)%2 == 0 {
		s.MedianLag = float64(lags[mid-1]+lags[mid]) / 2
	} else {
		s.MedianLag = float64(lags[mid])
	}

	best := 0
	for _, l := range lags {
		if counts[l] > best {
			best = counts[l]
			s.DominantLag = l
		}
	}
	s.DominantShare = float64(best) / float64(len(r.Results))
	return s
}
