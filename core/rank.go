package core

import (
	"cmp"
	"slices"

	"github.com/huangsam/lagscan/schema"
)

// RankSummaries sorts pair summaries by mean correlation in descending order
// and returns the top 'limit' pairs. A limit of zero or more than the number
// of pairs returns all of them. Pairs without results sort last.
func RankSummaries(summaries []schema.LagSummary, limit int) []schema.LagSummary {
	slices.SortStableFunc(summaries, func(a, b schema.LagSummary) int {
		if c := cmp.Compare(hasResults(b), hasResults(a)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.MeanCorrelation, a.MeanCorrelation); c != 0 {
			return c
		}
		if c := cmp.Compare(b.MaxCorrelation, a.MaxCorrelation); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return cmp.Compare(a.Target, b.Target)
	})
	if limit > 0 && len(summaries) > limit {
		return summaries[:limit]
	}
	return summaries
}

func hasResults(s schema.LagSummary) int {
	if s.Windows > 0 {
		return 1
	}
	return 0
}
