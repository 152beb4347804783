package mcp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/lagscan/internal/contract"
	mcp_internal "github.com/huangsam/lagscan/internal/mcp"
	"github.com/huangsam/lagscan/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDataset writes a CSV where B repeats A three days later.
func writeDataset(t *testing.T) string {
	t.Helper()
	values := make([]float64, 50)
	for i := range values {
		values[i] = float64((i*37)%23 + (i*11)%7)
	}
	var sb strings.Builder
	sb.WriteString("Date,A,B\n")
	start := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		b := 0.0
		if i >= 3 {
			b = values[i-3]
		}
		fmt.Fprintf(&sb, "%s,%g,%g\n", start.AddDate(0, 0, i).Format(time.DateOnly), v, b)
	}
	path := filepath.Join(t.TempDir(), "arrivals.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o600))
	return path
}

func baseConfig(path string) *contract.Config {
	return &contract.Config{
		DatasetPath: path,
		MaxLag:      5,
		WindowSize:  12,
		Neighbors:   schema.DefaultNeighbors,
		WindowEnd:   -1,
		Workers:     2,
		Output:      schema.JSONOut,
	}
}

func call(t *testing.T, ctx context.Context, tool string, cfg *contract.Config, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var mgr contract.CacheManager
	s := mcp_internal.NewMCPServer(cfg, mgr)
	st := s.GetTool(tool)
	require.NotNil(t, st, "Tool %s should exist", tool)

	res, err := st.Handler(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: tool, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	cfg := baseConfig(writeDataset(t))
	ctx := context.Background()

	t.Run("scan_lags missing target", func(t *testing.T) {
		res := call(t, ctx, "scan_lags", cfg, map[string]any{"source": "A"})
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, text(res), "--source and --target are required")
	})

	t.Run("scan_lags lag not below window", func(t *testing.T) {
		res := call(t, ctx, "scan_lags", cfg, map[string]any{"source": "A", "target": "B", "max_lag": 12.0})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "must be smaller than window-size")
	})

	t.Run("best_lag missing dataset", func(t *testing.T) {
		res := call(t, ctx, "best_lag", cfg, map[string]any{"source": "A", "target": "B", "dataset_path": "/nope.csv"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "cannot read dataset")
	})

	t.Run("lag_matrix unknown country", func(t *testing.T) {
		res := call(t, ctx, "lag_matrix", cfg, map[string]any{"countries": "A,Atlantis"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "column not found")
	})
}

func TestMCPServerHandlers_Results(t *testing.T) {
	cfg := baseConfig(writeDataset(t))
	ctx := context.Background()

	t.Run("scan_lags", func(t *testing.T) {
		res := call(t, ctx, "scan_lags", cfg, map[string]any{"source": "A", "target": "B"})
		require.False(t, res.IsError, text(res))

		var out struct {
			Summary schema.LagSummary `json:"summary"`
			Scan    schema.ScanResult `json:"scan"`
		}
		require.NoError(t, json.Unmarshal([]byte(text(res)), &out))
		assert.Equal(t, 3, out.Summary.DominantLag)
		assert.Len(t, out.Scan.Results, 50-12)
	})

	t.Run("best_lag", func(t *testing.T) {
		res := call(t, ctx, "best_lag", cfg, map[string]any{"source": "A", "target": "B", "start_row": 5.0, "window_end": 30.0})
		require.False(t, res.IsError, text(res))

		var out schema.LagResult
		require.NoError(t, json.Unmarshal([]byte(text(res)), &out))
		assert.Equal(t, 3, out.Lag)
		assert.Equal(t, 30, out.WindowEnd)
	})

	t.Run("lag_matrix", func(t *testing.T) {
		res := call(t, ctx, "lag_matrix", cfg, map[string]any{"limit": 1.0})
		require.False(t, res.IsError, text(res))

		var out schema.MatrixResult
		require.NoError(t, json.Unmarshal([]byte(text(res)), &out))
		require.Len(t, out.Summaries, 1)
		assert.Equal(t, "A", out.Summaries[0].Source)
		assert.Equal(t, "B", out.Summaries[0].Target)
	})

	t.Run("impute_series", func(t *testing.T) {
		res := call(t, ctx, "impute_series", cfg, map[string]any{"countries": "B"})
		require.False(t, res.IsError, text(res))

		var out schema.ImputeResult
		require.NoError(t, json.Unmarshal([]byte(text(res)), &out))
		require.Len(t, out.Series, 1)
		assert.Equal(t, "B", out.Series[0].Name)
		assert.Len(t, out.Dates, 50)
	})

	t.Run("base config is not mutated", func(t *testing.T) {
		_ = call(t, ctx, "scan_lags", cfg, map[string]any{"source": "A", "target": "B", "window_size": 20.0})
		assert.Equal(t, 12, cfg.WindowSize)
		assert.Empty(t, cfg.Source)
	})
}
