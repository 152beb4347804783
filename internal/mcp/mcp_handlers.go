package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/lagscan/core"
	"github.com/huangsam/lagscan/core/lag"
	"github.com/huangsam/lagscan/internal/contract"
	"github.com/huangsam/lagscan/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// configFromRequest clones the base config and applies the request overrides.
func (h *toolHandler) configFromRequest(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("dataset_path", ""); p != "" {
		cfg.DatasetPath = p
	}
	if s := request.GetString("source", ""); s != "" {
		cfg.Source = s
	}
	if t := request.GetString("target", ""); t != "" {
		cfg.Target = t
	}
	if c := request.GetString("countries", ""); c != "" {
		cfg.Countries = contract.ParseCountries(c)
	}
	cfg.MaxLag = request.GetInt("max_lag", cfg.MaxLag)
	cfg.WindowSize = request.GetInt("window_size", cfg.WindowSize)
	cfg.Neighbors = request.GetInt("neighbors", cfg.Neighbors)
	cfg.StartRow = request.GetInt("start_row", cfg.StartRow)
	cfg.WindowEnd = request.GetInt("window_end", cfg.WindowEnd)
	cfg.ResultLimit = request.GetInt("limit", cfg.ResultLimit)

	if err := contract.RevalidateScan(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (h *toolHandler) handleScanLags(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid scan parameters: %v", err)), nil
	}

	result, err := core.GetScanResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	out := struct {
		Summary schema.LagSummary `json:"summary"`
		Scan    schema.ScanResult `json:"scan"`
	}{lag.Summarize(result), result}
	jsonData, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleBestLag(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid best lag parameters: %v", err)), nil
	}

	result, err := core.GetBestLagResult(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("best lag failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result.Results[0], "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleLagMatrix(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid matrix parameters: %v", err)), nil
	}

	result, err := core.GetMatrixResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("matrix failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleImputeSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid impute parameters: %v", err)), nil
	}

	result, err := core.GetImputeResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("imputation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
