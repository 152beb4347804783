package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/lagscan/internal/contract"
	"github.com/huangsam/lagscan/internal/parquet"
	"github.com/huangsam/lagscan/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleScan() schema.ScanResult {
	return schema.ScanResult{
		Source: "Greece",
		Target: "Macedonia",
		Params: schema.ScanParams{MaxLag: 3, WindowSize: 10, Neighbors: 5},
		Results: []schema.LagResult{
			{StartRow: 1, WindowEnd: 10, Lag: 2, Correlation: 0.91, Date: day0.AddDate(0, 0, 10)},
			{StartRow: 2, WindowEnd: 11, Lag: 2, Correlation: 0.85, Date: day0.AddDate(0, 0, 11)},
			{StartRow: 4, WindowEnd: 13, Lag: 1, Correlation: 0.30, Date: day0.AddDate(0, 0, 13)},
		},
		Skipped:    []schema.SkippedRow{{StartRow: 3, Reason: "no valid lag at start row 3"}},
		StopReason: schema.StopCompleted,
	}
}

func testConfig() *contract.Config {
	return &contract.Config{
		Precision:    3,
		Workers:      2,
		Width:        120,
		CacheBackend: schema.NoneBackend,
		MaxLag:       3,
		WindowSize:   10,
	}
}

func TestWriteScanTable(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, fmtPct := createFormatters(3)
	require.NoError(t, writeScanTable(&buf, sampleScan(), testConfig(), fmtFloat, fmtPct, time.Second))

	out := buf.String()
	assert.Contains(t, out, "2016-01-11")
	assert.Contains(t, out, "0.910")
	assert.Contains(t, out, "Strong")
	assert.Contains(t, out, "Weak")
	assert.Contains(t, out, "Dominant lag: 2 days (66.7% of windows")
	assert.Contains(t, out, "Skipped 1 windows")
	assert.NotContains(t, out, "stopped early")
	assert.Contains(t, out, "with 2 workers")
}

func TestWriteScanTable_Truncated(t *testing.T) {
	scan := sampleScan()
	scan.Truncated = true
	scan.StopReason = schema.StopInsufficient

	var buf bytes.Buffer
	fmtFloat, fmtPct := createFormatters(3)
	require.NoError(t, writeScanTable(&buf, scan, testConfig(), fmtFloat, fmtPct, time.Second))
	assert.Contains(t, buf.String(), "Scan stopped early: insufficient-data")
}

func TestWriteScanTable_NoWindows(t *testing.T) {
	scan := sampleScan()
	scan.Results = nil
	scan.Skipped = nil

	var buf bytes.Buffer
	fmtFloat, fmtPct := createFormatters(3)
	require.NoError(t, writeScanTable(&buf, scan, testConfig(), fmtFloat, fmtPct, time.Second))
	assert.Contains(t, buf.String(), "No windows scanned: the dataset needs more than window-size (10) rows")
	assert.NotContains(t, buf.String(), "Dominant lag")
}

func TestWriteCSVScan(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, _ := createFormatters(2)
	require.NoError(t, writeCSVScan(&buf, sampleScan(), fmtFloat))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5) // header + 3 results + 1 skipped

	assert.Equal(t, []string{"source", "target", "start_row", "window_end", "date", "lag", "correlation", "strength", "skipped", "reason"}, records[0])
	assert.Equal(t, []string{"Greece", "Macedonia", "1", "10", "2016-01-11", "2", "0.91", "Strong", "false", ""}, records[1])

	var startRows []string
	for _, rec := range records[1:] {
		startRows = append(startRows, rec[2])
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, startRows, "windows stay in start row order")

	skipped := records[3]
	assert.Equal(t, "3", skipped[2])
	assert.Equal(t, "12", skipped[3])
	assert.Equal(t, "true", skipped[8])
	assert.Contains(t, skipped[9], "no valid lag")
}

func TestWriteJSONScan(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSONScan(&buf, sampleScan()))

	var decoded struct {
		Source  string             `json:"source"`
		Results []schema.LagResult `json:"results"`
		Summary schema.LagSummary  `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Greece", decoded.Source)
	assert.Len(t, decoded.Results, 3)
	assert.Equal(t, 2, decoded.Summary.DominantLag)
	assert.Equal(t, 1, decoded.Summary.Skipped)
}

func TestWriteScanResults_Parquet(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.ParquetOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "scan.parquet")

	require.NoError(t, WriteScanResults(sampleScan(), cfg, time.Second))
	assert.FileExists(t, cfg.OutputFile)
}

func TestWriteScanResults_CSVFile(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "scan.csv")

	require.NoError(t, NewOutWriter().WriteScan(sampleScan(), cfg, time.Second))
	assert.FileExists(t, cfg.OutputFile)
}

func TestWriteBestLagResult(t *testing.T) {
	single := sampleScan()
	single.Results = single.Results[:1]
	single.Skipped = nil

	var buf bytes.Buffer
	fmtFloat, _ := createFormatters(3)
	require.NoError(t, writeBestLagText(&buf, single, testConfig(), fmtFloat, time.Millisecond))
	out := buf.String()
	assert.Contains(t, out, "Greece → Macedonia")
	assert.Contains(t, out, "Best lag:    2 days (searched 0..3)")
	assert.Contains(t, out, "0.910")

	// Anything but exactly one result is rejected
	err := WriteBestLagResult(sampleScan(), testConfig(), time.Millisecond)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected one lag result")
}

func sampleMatrix() schema.MatrixResult {
	return schema.MatrixResult{
		Params: schema.ScanParams{MaxLag: 3, WindowSize: 10},
		Summaries: []schema.LagSummary{
			{Source: "Greece", Target: "Macedonia", Windows: 20, Skipped: 1, DominantLag: 2, DominantShare: 0.6, MedianLag: 2, MeanCorrelation: 0.8, MaxCorrelation: 0.95},
			{Source: "Macedonia", Target: "Greece", Windows: 0, Skipped: 21, DominantLag: -1},
		},
	}
}

func TestWriteMatrixTable(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, fmtPct := createFormatters(2)
	require.NoError(t, writeMatrixTable(&buf, sampleMatrix(), testConfig(), fmtFloat, fmtPct, time.Second))

	out := buf.String()
	assert.Contains(t, out, "Macedonia")
	assert.Contains(t, out, "60.0%")
	assert.Contains(t, out, "0.95")
	assert.Contains(t, out, "Showing 2 pairs (max lag 3, window 10)")
}

func TestWriteCSVMatrix(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, _ := createFormatters(2)
	require.NoError(t, writeCSVMatrix(&buf, sampleMatrix(), fmtFloat))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"1", "Greece", "Macedonia", "2", "0.60", "2.00", "0.80", "0.95", "Strong", "20", "1"}, records[1])
	assert.Equal(t, "-1", records[2][3])
}

func TestWriteMatrixResults_Parquet(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.ParquetOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "matrix.parquet")

	require.NoError(t, NewOutWriter().WriteMatrix(sampleMatrix(), cfg, time.Second))
	assert.FileExists(t, cfg.OutputFile)
}

func sampleImpute() schema.ImputeResult {
	return schema.ImputeResult{
		Dates:     []time.Time{day0, day0.AddDate(0, 0, 1), day0.AddDate(0, 0, 2)},
		Neighbors: 2,
		Series: []schema.ImputedSeries{
			{Name: "Greece", Values: []float64{1, 2, 3}, Imputed: []bool{false, true, false}},
			{Name: "Italy", Values: []float64{4, 5, 6}, Imputed: []bool{false, false, false}},
		},
	}
}

func TestWriteImputeTable(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, _ := createFormatters(1)
	require.NoError(t, writeImputeTable(&buf, sampleImpute(), fmtFloat, time.Second))

	out := buf.String()
	assert.Contains(t, out, "2.0*")
	assert.Contains(t, out, "Imputed 1 values")
	assert.Contains(t, out, "2 nearest neighbours")
}

func TestWriteCSVImpute(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, _ := createFormatters(1)
	require.NoError(t, writeCSVImpute(&buf, sampleImpute(), fmtFloat))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"date", "Greece", "Italy", "Greece_imputed", "Italy_imputed"}, records[0])
	assert.Equal(t, []string{"2016-01-02", "2.0", "5.0", "true", "false"}, records[2])
}

func TestWriteImputeResults_ParquetRoundTrip(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.ParquetOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "imputed.parquet")

	require.NoError(t, NewOutWriter().WriteImpute(sampleImpute(), cfg, time.Second))

	rows, err := parquet.ReadArrivalsParquet(cfg.OutputFile)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "Greece", rows[0].Country)
	require.NotNil(t, rows[2].Arrivals)
	assert.Equal(t, 2.0, *rows[2].Arrivals)
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{width: 40, expected: 8},
		{width: 121, expected: 18},
		{width: 400, expected: 30},
	}
	for _, tt := range tests {
		cfg := &contract.Config{Width: tt.width}
		assert.Equal(t, tt.expected, GetMaxTableNameWidth(cfg), "width %d", tt.width)
	}
}
