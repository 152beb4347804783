package core

import (
	"testing"

	"github.com/huangsam/lagscan/schema"
	"github.com/stretchr/testify/assert"
)

func TestRankSummaries(t *testing.T) {
	summaries := []schema.LagSummary{
		{Source: "A", Target: "B", Windows: 10, MeanCorrelation: 0.4, MaxCorrelation: 0.9},
		{Source: "B", Target: "A", Windows: 0, DominantLag: -1},
		{Source: "A", Target: "C", Windows: 10, MeanCorrelation: 0.8, MaxCorrelation: 0.9},
		{Source: "C", Target: "A", Windows: 10, MeanCorrelation: 0.4, MaxCorrelation: 0.95},
		{Source: "B", Target: "C", Windows: 5, MeanCorrelation: -0.2, MaxCorrelation: 0.1},
	}

	tests := []struct {
		name     string
		limit    int
		expected []string
	}{
		{"all pairs", 0, []string{"A>C", "C>A", "A>B", "B>C", "B>A"}},
		{"top two", 2, []string{"A>C", "C>A"}},
		{"limit above length", 10, []string{"A>C", "C>A", "A>B", "B>C", "B>A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := make([]schema.LagSummary, len(summaries))
			copy(input, summaries)

			ranked := RankSummaries(input, tt.limit)
			var got []string
			for _, s := range ranked {
				got = append(got, s.Source+">"+s.Target)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}
