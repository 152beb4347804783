// Package core has core logic for lag scanning, imputation and ranking.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/lagscan/core/lag"
	"github.com/huangsam/lagscan/internal/contract"
	"github.com/huangsam/lagscan/internal/outwriter"
	"github.com/huangsam/lagscan/schema"
)

// ExecutorFunc defines the function signature for executing different scan modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteScan runs the windowed lag scan for one pair and prints the results.
// It serves as the main entry point for the 'scan' mode.
func ExecuteScan(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := GetScanResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteScan(result, cfg, time.Since(start))
}

// ExecuteBestLag finds the best lag for a single window and prints it.
func ExecuteBestLag(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := GetBestLagResult(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteBestLag(result, cfg, time.Since(start))
}

// ExecuteMatrix scans every ordered pair of the selected countries and
// prints the ranked summaries.
func ExecuteMatrix(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := GetMatrixResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteMatrix(result, cfg, time.Since(start))
}

// ExecuteImpute fills missing observations and prints the dense columns.
func ExecuteImpute(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := GetImputeResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteImpute(result, cfg, time.Since(start))
}

// GetScanResults runs the scan for cfg.Source and cfg.Target without printing.
// This is used by the MCP server and by ExecuteScan.
func GetScanResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.ScanResult, error) {
	if err := cfg.RequirePair(); err != nil {
		return schema.ScanResult{}, err
	}
	if err := cfg.RequireWindow(); err != nil {
		return schema.ScanResult{}, err
	}
	ds, err := loadDataset(cfg)
	if err != nil {
		return schema.ScanResult{}, err
	}
	warnShortDataset(ds, cfg)
	if showHeader(ctx, cfg) {
		outwriter.LogScanHeader(cfg, ds)
	}

	names := []string{cfg.Source, cfg.Target}
	imputed, err := imputeColumns(ds, names, cfg.Neighbors)
	if err != nil {
		return schema.ScanResult{}, err
	}

	ctx = beginRun(ctx, mgr, "scan", cfg)
	ps := newPairScanner(cfg, ds, names, mgr)
	result, err := ps.scan(ctx, imputed[0], imputed[1], cfg.Workers)
	if err != nil {
		endRun(ctx, mgr, 1, 0)
		return schema.ScanResult{}, err
	}
	recordScan(ctx, mgr, result)
	endRun(ctx, mgr, 1, len(result.Results))
	return result, nil
}

// GetBestLagResult evaluates the single window cfg.StartRow..cfg.WindowEnd.
// The returned ScanResult holds exactly one LagResult.
func GetBestLagResult(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.ScanResult, error) {
	if err := cfg.RequirePair(); err != nil {
		return schema.ScanResult{}, err
	}
	ds, err := loadDataset(cfg)
	if err != nil {
		return schema.ScanResult{}, err
	}
	if showHeader(ctx, cfg) {
		outwriter.LogScanHeader(cfg, ds)
	}

	imputed, err := imputeColumns(ds, []string{cfg.Source, cfg.Target}, cfg.Neighbors)
	if err != nil {
		return schema.ScanResult{}, err
	}

	windowEnd := cfg.WindowEnd
	if windowEnd < 0 {
		windowEnd = ds.Len() - 1
	}
	best, err := lag.BestLag(imputed[0].Values, imputed[1].Values, cfg.StartRow, cfg.MaxLag, windowEnd)
	if err != nil {
		return schema.ScanResult{}, fmt.Errorf("best lag %s → %s failed: %w", cfg.Source, cfg.Target, err)
	}
	best.Date = ds.Dates[windowEnd]

	result := schema.ScanResult{
		Source:     cfg.Source,
		Target:     cfg.Target,
		Params:     cfg.Params(),
		Results:    []schema.LagResult{best},
		Skipped:    []schema.SkippedRow{},
		StopReason: schema.StopCompleted,
	}
	ctx = beginRun(ctx, mgr, "bestlag", cfg)
	recordScan(ctx, mgr, result)
	endRun(ctx, mgr, 1, 1)
	return result, nil
}

// GetMatrixResults scans every ordered pair of the selected countries (all
// columns when none are selected) and returns summaries ranked by mean
// correlation. The first failing pair, in pair order, aborts the matrix.
func GetMatrixResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.MatrixResult, error) {
	if err := cfg.RequireWindow(); err != nil {
		return schema.MatrixResult{}, err
	}
	ds, err := loadDataset(cfg)
	if err != nil {
		return schema.MatrixResult{}, err
	}
	warnShortDataset(ds, cfg)
	countries := cfg.Countries
	if len(countries) == 0 {
		countries = ds.Columns
	}
	if len(countries) < 2 {
		return schema.MatrixResult{}, fmt.Errorf("matrix needs at least two countries (got %d)", len(countries))
	}
	if showHeader(ctx, cfg) {
		outwriter.LogMatrixHeader(cfg, ds, countries)
	}

	imputed, err := imputeColumns(ds, countries, cfg.Neighbors)
	if err != nil {
		return schema.MatrixResult{}, err
	}
	series := make(map[string]schema.ImputedSeries, len(imputed))
	for _, s := range imputed {
		series[s.Name] = s
	}

	ctx = beginRun(ctx, mgr, "matrix", cfg)
	ps := newPairScanner(cfg, ds, countries, mgr)
	pairs := orderedPairs(countries)
	outcomes := scanPairs(ctx, cfg, ps, series, pairs)

	summaries := make([]schema.LagSummary, 0, len(outcomes))
	totalResults := 0
	for _, o := range outcomes {
		if o.err != nil {
			endRun(ctx, mgr, len(pairs), totalResults)
			return schema.MatrixResult{}, o.err
		}
		recordScan(ctx, mgr, o.result)
		totalResults += len(o.result.Results)
		summaries = append(summaries, lag.Summarize(o.result))
	}
	endRun(ctx, mgr, len(pairs), totalResults)

	return schema.MatrixResult{
		Params:    cfg.Params(),
		Summaries: RankSummaries(summaries, cfg.ResultLimit),
	}, nil
}

// GetImputeResults fills missing observations for the pair when one is given,
// else for the selected countries, else for every column.
func GetImputeResults(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) (schema.ImputeResult, error) {
	if err := ctx.Err(); err != nil {
		return schema.ImputeResult{}, err
	}
	ds, err := loadDataset(cfg)
	if err != nil {
		return schema.ImputeResult{}, err
	}

	var names []string
	switch {
	case cfg.Source != "" || cfg.Target != "":
		if err := cfg.RequirePair(); err != nil {
			return schema.ImputeResult{}, err
		}
		names = []string{cfg.Source, cfg.Target}
	case len(cfg.Countries) > 0:
		names = cfg.Countries
	default:
		names = ds.Columns
	}

	imputed, err := imputeColumns(ds, names, cfg.Neighbors)
	if err != nil {
		return schema.ImputeResult{}, err
	}
	return schema.ImputeResult{
		Dates:     ds.Dates,
		Neighbors: cfg.Neighbors,
		Series:    imputed,
	}, nil
}

// showHeader reports whether progress headers belong on stdout. Structured
// output modes keep stdout clean for the data.
func showHeader(ctx context.Context, cfg *contract.Config) bool {
	return !shouldSuppressHeader(ctx) && (cfg.Output == schema.TextOut || cfg.Output == "")
}
