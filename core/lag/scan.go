package lag

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/huangsam/lagscan/schema"
	"golang.org/x/sync/errgroup"
)

// ScanOptions controls a scan over one source and target pair.
type ScanOptions struct {
	MaxLag     int
	WindowSize int

	// DatasetLength bounds the last start row. Zero means len(source).
	DatasetLength int

	// Dates, when set, stamps each result with the date of its window end.
	Dates []time.Time
}

func (o ScanOptions) length(source []float64) int {
	if o.DatasetLength > 0 {
		return o.DatasetLength
	}
	return len(source)
}

// lastStartRow is the final start row whose window fits in the dataset.
func (o ScanOptions) lastStartRow(source []float64) int {
	return o.length(source) - o.WindowSize
}

func (o ScanOptions) evaluate(source, target []float64, startRow int) (schema.LagResult, error) {
	windowEnd := startRow + o.WindowSize - 1
	res, err := BestLag(source, target, startRow, o.MaxLag, windowEnd)
	if err != nil {
		return schema.LagResult{StartRow: startRow, WindowEnd: windowEnd}, err
	}
	if windowEnd < len(o.Dates) {
		res.Date = o.Dates[windowEnd]
	}
	return res, nil
}

// Scan lazily yields the best lag for every start row from 1 through
// DatasetLength-WindowSize. A row with no valid lag is yielded with a
// *NoValidLagError and the sequence continues. Any other error is yielded
// once and ends the sequence. Ranging again recomputes from scratch.
func Scan(source, target []float64, opts ScanOptions) iter.Seq2[schema.LagResult, error] {
	return func(yield func(schema.LagResult, error) bool) {
		for startRow := 1; startRow <= opts.lastStartRow(source); startRow++ {
			res, err := opts.evaluate(source, target, startRow)
			if !yield(res, err) {
				return
			}
			if err != nil && !isNoValidLag(err) {
				return
			}
		}
	}
}

// Collect drains a scan sequence into a ScanResult. Rows without a valid lag
// are recorded as skipped. A terminal error before the first valid row is
// returned; after it, the result is marked truncated.
func Collect(seq iter.Seq2[schema.LagResult, error]) (schema.ScanResult, error) {
	out := schema.ScanResult{
		Results:    []schema.LagResult{},
		Skipped:    []schema.SkippedRow{},
		StopReason: schema.StopCompleted,
	}
	for res, err := range seq {
		if err == nil {
			out.Results = append(out.Results, res)
			continue
		}
		if isNoValidLag(err) {
			out.Skipped = append(out.Skipped, schema.SkippedRow{StartRow: res.StartRow, Reason: err.Error()})
			continue
		}
		if len(out.Results) == 0 {
			return out, err
		}
		var insufficient *InsufficientDataError
		if errors.As(err, &insufficient) {
			out.Truncated = true
			out.StopReason = schema.StopInsufficient
			return out, nil
		}
		return out, err
	}
	return out, nil
}

// ScanParallel evaluates every start row concurrently and returns the same
// result Collect(Scan(...)) would. Workers below one run sequentially.
func ScanParallel(ctx context.Context, source, target []float64, opts ScanOptions, workers int) (schema.ScanResult, error) {
	last := opts.lastStartRow(source)
	if workers <= 1 || last < 1 {
		return Collect(Scan(source, target, opts))
	}

	type outcome struct {
		res schema.LagResult
		err error
	}
	outcomes := make([]outcome, last)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for startRow := 1; startRow <= last; startRow++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := opts.evaluate(source, target, startRow)
			outcomes[startRow-1] = outcome{res: res, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return schema.ScanResult{}, err
	}

	return Collect(func(yield func(schema.LagResult, error) bool) {
		for _, o := range outcomes {
			if !yield(o.res, o.err) {
				return
			}
			if o.err != nil && !isNoValidLag(o.err) {
				return
			}
		}
	})
}

func isNoValidLag(err error) bool {
	var noValid *NoValidLagError
	return errors.As(err, &noValid)
}
