package lag

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/huangsam/lagscan/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withFlatStretch returns noise whose rows from..to are all zero.
func withFlatStretch(r *rand.Rand, n, from, to int) []float64 {
	out := noise(r, n)
	for i := from; i <= to; i++ {
		out[i] = 0
	}
	return out
}

func TestScanShiftedPair(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	source := noise(r, 40)
	target := shifted(source, 3)

	res, err := Collect(Scan(source, target, ScanOptions{MaxLag: 5, WindowSize: 10}))
	require.NoError(t, err)
	require.Len(t, res.Results, 30)
	assert.Empty(t, res.Skipped)
	assert.False(t, res.Truncated)
	assert.Equal(t, schema.StopCompleted, res.StopReason)

	for i, lr := range res.Results {
		assert.Equal(t, i+1, lr.StartRow)
		assert.Equal(t, lr.StartRow+9, lr.WindowEnd)
		assert.Equal(t, 3, lr.Lag)
		assert.InDelta(t, 1.0, lr.Correlation, 1e-9)
	}
}

func TestScanAtMostNMinusW(t *testing.T) {
	r := rand.New(rand.NewPCG(8, 13))
	for _, w := range []int{6, 10, 25} {
		source, target := noise(r, 50), noise(r, 50)
		res, err := Collect(Scan(source, target, ScanOptions{MaxLag: 4, WindowSize: w}))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(res.Results), 50-w)
		for i := 1; i < len(res.Results); i++ {
			assert.Greater(t, res.Results[i].StartRow, res.Results[i-1].StartRow)
		}
	}
}

func TestScanRestartable(t *testing.T) {
	r := rand.New(rand.NewPCG(4, 4))
	source, target := noise(r, 30), noise(r, 30)
	seq := Scan(source, target, ScanOptions{MaxLag: 3, WindowSize: 8})

	first, err := Collect(seq)
	require.NoError(t, err)
	second, err := Collect(seq)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScanEarlyBreak(t *testing.T) {
	r := rand.New(rand.NewPCG(6, 1))
	source, target := noise(r, 30), noise(r, 30)

	var rows []int
	for res, err := range Scan(source, target, ScanOptions{MaxLag: 3, WindowSize: 8}) {
		require.NoError(t, err)
		rows = append(rows, res.StartRow)
		if len(rows) == 3 {
			break
		}
	}
	assert.Equal(t, []int{1, 2, 3}, rows)
}

func TestScanSkipsRowsWithoutValidLag(t *testing.T) {
	r := rand.New(rand.NewPCG(9, 9))
	source := withFlatStretch(r, 30, 10, 20)
	target := noise(r, 30)

	res, err := Collect(Scan(source, target, ScanOptions{MaxLag: 1, WindowSize: 6}))
	require.NoError(t, err)
	require.Len(t, res.Skipped, 5)
	assert.Len(t, res.Results, 19)
	for i, sk := range res.Skipped {
		assert.Equal(t, 11+i, sk.StartRow)
		assert.Contains(t, sk.Reason, "no valid lag")
	}
	assert.False(t, res.Truncated)
}

func TestScanInsufficientBeforeFirstRow(t *testing.T) {
	r := rand.New(rand.NewPCG(2, 2))
	source, target := noise(r, 20), noise(r, 20)

	_, err := Collect(Scan(source, target, ScanOptions{MaxLag: 5, WindowSize: 5}))
	var insufficient *InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 1, insufficient.StartRow)
}

func TestScanTruncatedAfterValidRows(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 3))
	source, target := noise(r, 20), noise(r, 20)

	res, err := Collect(Scan(source, target, ScanOptions{MaxLag: 2, WindowSize: 5, DatasetLength: 25}))
	require.NoError(t, err)
	assert.Len(t, res.Results, 15)
	assert.True(t, res.Truncated)
	assert.Equal(t, schema.StopInsufficient, res.StopReason)
}

func TestScanLengthMismatch(t *testing.T) {
	_, err := Collect(Scan([]float64{1, 2, 3, 4}, []float64{1, 2, 3}, ScanOptions{MaxLag: 1, WindowSize: 2}))
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestScanStampsDates(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	source, target := noise(r, 12), noise(r, 12)
	start := time.Date(2016, 2, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, 12)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}

	res, err := Collect(Scan(source, target, ScanOptions{MaxLag: 2, WindowSize: 5, Dates: dates}))
	require.NoError(t, err)
	require.NotEmpty(t, res.Results)
	for _, lr := range res.Results {
		assert.Equal(t, dates[lr.WindowEnd], lr.Date)
	}
}

func TestScanParallelMatchesSequential(t *testing.T) {
	r := rand.New(rand.NewPCG(10, 20))
	tests := []struct {
		name   string
		source []float64
		target []float64
		opts   ScanOptions
	}{
		{"noise", noise(r, 60), noise(r, 60), ScanOptions{MaxLag: 6, WindowSize: 15}},
		{"skipped", withFlatStretch(r, 30, 10, 20), noise(r, 30), ScanOptions{MaxLag: 1, WindowSize: 6}},
		{"truncated", noise(r, 20), noise(r, 20), ScanOptions{MaxLag: 2, WindowSize: 5, DatasetLength: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, wantErr := Collect(Scan(tt.source, tt.target, tt.opts))
			got, gotErr := ScanParallel(context.Background(), tt.source, tt.target, tt.opts, 4)
			assert.Equal(t, wantErr, gotErr)
			assert.Equal(t, want, got)
		})
	}
}

func TestScanParallelCanceled(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 12))
	source, target := noise(r, 200), noise(r, 200)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ScanParallel(ctx, source, target, ScanOptions{MaxLag: 5, WindowSize: 20}, 4)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize(t *testing.T) {
	res := schema.ScanResult{
		Source: "Greece",
		Target: "Macedonia",
		Results: []schema.LagResult{
			{StartRow: 1, Lag: 2, Correlation: 0.9},
			{StartRow: 2, Lag: 2, Correlation: 0.7},
			{StartRow: 3, Lag: 4, Correlation: 0.5},
			{StartRow: 4, Lag: 1, Correlation: 0.3},
		},
		Skipped: []schema.SkippedRow{{StartRow: 5}},
	}

	s := Summarize(res)
	assert.Equal(t, "Greece", s.Source)
	assert.Equal(t, 4, s.Windows)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 2, s.DominantLag)
	assert.InDelta(t, 0.5, s.DominantShare, 1e-12)
	assert.InDelta(t, 2.0, s.MedianLag, 1e-12)
	assert.InDelta(t, 0.6, s.MeanCorrelation, 1e-12)
	assert.InDelta(t, 0.9, s.MaxCorrelation, 1e-12)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(schema.ScanResult{Source: "A", Target: "B"})
	assert.Equal(t, -1, s.DominantLag)
	assert.Zero(t, s.Windows)
}
