package impute

import (
	"math"
	"testing"
	"time"

	"github.com/huangsam/lagscan/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func TestImputeNoMissing(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{4, 5, 6}

	out, err := KNNImputer{K: 2}.Impute(a, b)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{a, b}, out)
}

func TestImputeNearestNeighbors(t *testing.T) {
	// Row 2 is missing in b; rows 1 and 3 are closest on a.
	a := []float64{0, 10, 11, 12, 50}
	b := []float64{100, 20, nan, 24, 500}

	out, err := KNNImputer{K: 2}.Impute(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 22.0, out[1][2], 1e-12)
	assert.Equal(t, a, out[0])
	assert.True(t, math.IsNaN(b[2]), "input must not be modified")
}

func TestImputeTiesByRowIndex(t *testing.T) {
	// Rows 0 and 2 are equally far from row 1; K=1 picks row 0.
	a := []float64{1, 2, 3}
	b := []float64{10, nan, 30}

	out, err := KNNImputer{K: 1}.Impute(a, b)
	require.NoError(t, err)
	assert.Equal(t, 10.0, out[1][1])
}

func TestImputeFallsBackToMean(t *testing.T) {
	// Row 1 observes nothing, so no distance can be computed.
	a := []float64{1, nan, 3}
	b := []float64{10, nan, 30}

	out, err := KNNImputer{K: 3}.Impute(a, b)
	require.NoError(t, err)
	assert.Equal(t, 2.0, out[0][1])
	assert.Equal(t, 20.0, out[1][1])
}

func TestImputeDeterministic(t *testing.T) {
	a := []float64{3, nan, 7, 1, nan, 9, 4}
	b := []float64{nan, 2, 6, 1, 5, nan, 3}

	first, err := KNNImputer{K: 2}.Impute(a, b)
	require.NoError(t, err)
	for range 3 {
		again, err := KNNImputer{K: 2}.Impute(a, b)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	for _, c := range first {
		for _, v := range c {
			assert.False(t, math.IsNaN(v))
		}
	}
}

func TestImputeErrors(t *testing.T) {
	_, err := KNNImputer{K: 0}.Impute([]float64{1})
	assert.ErrorContains(t, err, "at least 1")

	_, err = KNNImputer{K: 1}.Impute([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrRaggedColumns)

	_, err = KNNImputer{K: 1}.Impute([]float64{1, 2}, []float64{nan, nan})
	assert.ErrorIs(t, err, ErrNoObservations)
}

func TestImputeSeries(t *testing.T) {
	start := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(name string, vals ...float64) schema.TimeSeries {
		ts := schema.TimeSeries{Name: name}
		for i, v := range vals {
			o := schema.Observation{Date: start.AddDate(0, 0, i), Valid: !math.IsNaN(v)}
			if o.Valid {
				o.Value = v
			}
			ts.Observations = append(ts.Observations, o)
		}
		return ts
	}

	out, err := KNNImputer{K: 1}.ImputeSeries(mk("Greece", 1, 2, 3), mk("Italy", 10, nan, 30))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Italy", out[1].Name)
	assert.Equal(t, []bool{false, true, false}, out[1].Imputed)
	assert.Equal(t, 10.0, out[1].Values[1])
}
