package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/lagscan/core/impute"
	"github.com/huangsam/lagscan/core/lag"
	"github.com/huangsam/lagscan/internal/contract"
	"github.com/huangsam/lagscan/internal/dataset"
	"github.com/huangsam/lagscan/schema"
)

// loadDataset reads the dataset named by the config.
func loadDataset(cfg *contract.Config) (*schema.Dataset, error) {
	ds, err := dataset.Load(cfg.DatasetPath, dataset.Options{DateColumn: cfg.DateColumn, Sheet: cfg.Sheet})
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	contract.Logger().Info().
		Str("path", cfg.DatasetPath).
		Int("rows", ds.Len()).
		Int("columns", len(ds.Columns)).
		Msg("dataset loaded")
	return ds, nil
}

// warnShortDataset logs when no sliding window fits, since the scan then
// completes with zero windows.
func warnShortDataset(ds *schema.Dataset, cfg *contract.Config) {
	if ds.Len() > cfg.WindowSize {
		return
	}
	contract.Logger().Warn().
		Int("rows", ds.Len()).
		Int("window_size", cfg.WindowSize).
		Msg("dataset needs more rows than window-size for any window to be scanned")
}

// imputeColumns looks up the named columns and fills their gaps jointly.
func imputeColumns(ds *schema.Dataset, names []string, neighbors int) ([]schema.ImputedSeries, error) {
	series := make([]schema.TimeSeries, len(names))
	missing := 0
	for i, name := range names {
		ts, err := ds.Lookup(name)
		if err != nil {
			return nil, err
		}
		series[i] = ts
		missing += ts.MissingCount()
	}

	imputed, err := impute.KNNImputer{K: neighbors}.ImputeSeries(series...)
	if err != nil {
		return nil, fmt.Errorf("failed to impute %v: %w", names, err)
	}
	contract.Logger().Debug().
		Strs("columns", names).
		Int("missing", missing).
		Int("neighbors", neighbors).
		Msg("imputed missing observations")
	return imputed, nil
}

// pairScanner scans pairs of imputed series, consulting the scan cache first.
type pairScanner struct {
	cfg         *contract.Config
	ds          *schema.Dataset
	datasetHash string
	imputedWith []string
	store       contract.CacheStore
}

func newPairScanner(cfg *contract.Config, ds *schema.Dataset, imputedWith []string, mgr contract.CacheManager) *pairScanner {
	ps := &pairScanner{cfg: cfg, ds: ds, datasetHash: ds.Hash(), imputedWith: imputedWith}
	if mgr != nil {
		ps.store = mgr.GetScanStore()
	}
	return ps
}

// scan returns the ordered windowed scan of source against target.
func (ps *pairScanner) scan(ctx context.Context, source, target schema.ImputedSeries, workers int) (schema.ScanResult, error) {
	params := ps.cfg.Params()
	key := generateCacheKey(ps.datasetHash, ps.imputedWith, source.Name, target.Name, params)
	return cachedScan(ctx, ps.store, key, func(ctx context.Context) (schema.ScanResult, error) {
		opts := lag.ScanOptions{
			MaxLag:        ps.cfg.MaxLag,
			WindowSize:    ps.cfg.WindowSize,
			DatasetLength: ps.ds.Len(),
			Dates:         ps.ds.Dates,
		}
		result, err := lag.ScanParallel(ctx, source.Values, target.Values, opts, workers)
		if err != nil {
			return result, fmt.Errorf("scan %s → %s failed: %w", source.Name, target.Name, err)
		}
		result.Source = source.Name
		result.Target = target.Name
		result.Params = params
		return result, nil
	})
}

// analysisStoreOf returns the run tracking store, or nil when tracking is off.
func analysisStoreOf(mgr contract.CacheManager) contract.AnalysisStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetAnalysisStore()
}

// beginRun starts run tracking (if configured) and stores the run ID in the context.
func beginRun(ctx context.Context, mgr contract.CacheManager, command string, cfg *contract.Config) context.Context {
	store := analysisStoreOf(mgr)
	if store == nil {
		return ctx
	}
	configParams := map[string]any{
		"dataset":     cfg.DatasetPath,
		"source":      cfg.Source,
		"target":      cfg.Target,
		"countries":   cfg.Countries,
		"max_lag":     cfg.MaxLag,
		"window_size": cfg.WindowSize,
		"neighbors":   cfg.Neighbors,
		"workers":     cfg.Workers,
	}
	runID, err := store.BeginRun(command, time.Now(), configParams)
	if err != nil {
		contract.LogWarn("Analysis tracking initialization failed", err)
		return ctx
	}
	if runID <= 0 {
		return ctx
	}
	return withRunID(ctx, runID)
}

// recordScan stores a scan under the current run, if one is tracked.
func recordScan(ctx context.Context, mgr contract.CacheManager, result schema.ScanResult) {
	runID, ok := getRunID(ctx)
	store := analysisStoreOf(mgr)
	if !ok || store == nil {
		return
	}
	if err := store.RecordScanResult(runID, result); err != nil {
		contract.LogWarn("Failed to record scan result", err)
	}
}

// endRun finalizes the current run, if one is tracked.
func endRun(ctx context.Context, mgr contract.CacheManager, totalPairs, totalResults int) {
	runID, ok := getRunID(ctx)
	store := analysisStoreOf(mgr)
	if !ok || store == nil {
		return
	}
	if err := store.EndRun(runID, time.Now(), totalPairs, totalResults); err != nil {
		contract.LogWarn("Failed to finalize analysis tracking", err)
	}
}

// orderedPairs lists every ordered pair of distinct countries.
func orderedPairs(countries []string) [][2]string {
	pairs := make([][2]string, 0, len(countries)*(len(countries)-1))
	for _, s := range countries {
		for _, t := range countries {
			if s != t {
				pairs = append(pairs, [2]string{s, t})
			}
		}
	}
	return pairs
}

// pairOutcome is the scan of one ordered pair, kept at its index in the pair list.
type pairOutcome struct {
	result schema.ScanResult
	err    error
}

// scanPairs scans every pair using a worker pool. Each worker scans its pair
// sequentially, so parallelism comes from the number of pairs in flight.
// Outcomes are returned in pair order.
func scanPairs(ctx context.Context, cfg *contract.Config, ps *pairScanner, series map[string]schema.ImputedSeries, pairs [][2]string) []pairOutcome {
	outcomes := make([]pairOutcome, len(pairs))
	idxCh := make(chan int, len(pairs))
	var wg sync.WaitGroup

	for range max(cfg.Workers, 1) {
		wg.Go(func() {
			for i := range idxCh {
				if err := ctx.Err(); err != nil {
					outcomes[i] = pairOutcome{err: err}
					continue
				}
				// Each worker writes a unique index, so no locking is needed.
				pair := pairs[i]
				result, err := ps.scan(ctx, series[pair[0]], series[pair[1]], 1)
				outcomes[i] = pairOutcome{result: result, err: err}
			}
		})
	}

	for i := range pairs {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()
	return outcomes
}
