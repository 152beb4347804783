// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/lagscan/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the lagscan MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Lagscan Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: scan_lags ---
	s.AddTool(mcp.NewTool("scan_lags",
		mcp.WithDescription("Scan trailing windows of a country pair and report the best lag (in days) for each window."),
		mcp.WithString("source", mcp.Description("Origin country column."), mcp.Required()),
		mcp.WithString("target", mcp.Description("Destination country column."), mcp.Required()),
		mcp.WithString("dataset_path", mcp.Description("Path to a CSV, XLSX or Parquet dataset (defaults to the server's dataset).")),
		mcp.WithNumber("max_lag", mcp.Description("Largest lag in days to consider.")),
		mcp.WithNumber("window_size", mcp.Description("Rows per trailing window.")),
		mcp.WithNumber("neighbors", mcp.Description("Neighbours used to impute missing values.")),
	), h.handleScanLags)

	// --- 2. Tool: best_lag ---
	s.AddTool(mcp.NewTool("best_lag",
		mcp.WithDescription("Find the lag that maximizes correlation over a single window of a country pair."),
		mcp.WithString("source", mcp.Description("Origin country column."), mcp.Required()),
		mcp.WithString("target", mcp.Description("Destination country column."), mcp.Required()),
		mcp.WithString("dataset_path", mcp.Description("Path to the dataset.")),
		mcp.WithNumber("start_row", mcp.Description("First row of the window. Defaults to 0.")),
		mcp.WithNumber("window_end", mcp.Description("Last row of the window. -1 means the last row.")),
		mcp.WithNumber("max_lag", mcp.Description("Largest lag in days to consider.")),
		mcp.WithNumber("neighbors", mcp.Description("Neighbours used to impute missing values.")),
	), h.handleBestLag)

	// --- 3. Tool: lag_matrix ---
	s.AddTool(mcp.NewTool("lag_matrix",
		mcp.WithDescription("Scan every ordered pair of countries and rank them by mean correlation."),
		mcp.WithString("countries", mcp.Description("Comma-separated countries (defaults to every column).")),
		mcp.WithString("dataset_path", mcp.Description("Path to the dataset.")),
		mcp.WithNumber("max_lag", mcp.Description("Largest lag in days to consider.")),
		mcp.WithNumber("window_size", mcp.Description("Rows per trailing window.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of pairs returned.")),
	), h.handleLagMatrix)

	// --- 4. Tool: impute_series ---
	s.AddTool(mcp.NewTool("impute_series",
		mcp.WithDescription("Fill missing daily arrivals with K-nearest-neighbour imputation."),
		mcp.WithString("countries", mcp.Description("Comma-separated countries (defaults to every column).")),
		mcp.WithString("dataset_path", mcp.Description("Path to the dataset.")),
		mcp.WithNumber("neighbors", mcp.Description("Neighbours used to impute missing values.")),
	), h.handleImputeSeries)

	return s
}

// StartMCPServer starts the lagscan MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
