package heightmap

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the maximum number of points sent in a single request.
const DefaultBatchSize = 50

var noData = math.NaN()

// A Progress is advanced by one unit per batch.
type Progress interface {
	Add(n int) error
}

// A BatchError records a batch that could not be fetched.
type BatchError struct {
	Index int // Batch index.
	Start int // Index of the first point.
	End   int // Index after the last point.
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d (points %d-%d): %v", e.Index, e.Start, e.End-1, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// A FetchReport summarizes a call to FetchAll.
type FetchReport struct {
	Batches int
	Failed  []*BatchError
}

// Fetched returns the number of batches fetched successfully.
func (r *FetchReport) Fetched() int {
	return r.Batches - len(r.Failed)
}

type fetchOptions struct {
	batchSize int
	workers   int
	progress  Progress
	logger    *slog.Logger
}

// A FetchOption sets an option on FetchAll.
type FetchOption func(*fetchOptions)

// WithBatchSize sets the maximum number of points per batch.
func WithBatchSize(batchSize int) FetchOption {
	return func(o *fetchOptions) {
		o.batchSize = batchSize
	}
}

// WithWorkers sets the number of batches fetched concurrently. The default,
// one, fetches batches sequentially in order.
func WithWorkers(workers int) FetchOption {
	return func(o *fetchOptions) {
		o.workers = workers
	}
}

// WithProgress sets the progress advanced after each batch.
func WithProgress(progress Progress) FetchOption {
	return func(o *fetchOptions) {
		o.progress = progress
	}
}

// WithLogger sets the logger used to report failed batches.
func WithLogger(logger *slog.Logger) FetchOption {
	return func(o *fetchOptions) {
		o.logger = logger
	}
}

// FetchAll fetches the elevations of points in batches using fetcher.
//
// FetchAll is best effort: a batch that fails is logged and recorded in the
// returned report, and the elevations of its points are NaN. The returned
// elevations always have the same length and order as points.
func FetchAll(ctx context.Context, fetcher Fetcher, points []Point, options ...FetchOption) ([]float64, *FetchReport) {
	o := fetchOptions{
		batchSize: DefaultBatchSize,
		workers:   1,
		logger:    slog.Default(),
	}
	for _, option := range options {
		option(&o)
	}
	o.batchSize = max(o.batchSize, 1)
	o.workers = max(o.workers, 1)

	elevations := make([]float64, len(points))
	batches := (len(points) + o.batchSize - 1) / o.batchSize
	batchErrs := make([]*BatchError, batches)

	fetchBatch := func(index int) {
		start := index * o.batchSize
		end := min(start+o.batchSize, len(points))
		batchElevations, err := fetchBatchElevations(ctx, fetcher, points[start:end])
		if err != nil {
			batchesFailed.Inc()
			for i := start; i < end; i++ {
				elevations[i] = noData
			}
			batchErrs[index] = &BatchError{Index: index, Start: start, End: end, Err: err}
			o.logger.Warn("batch failed", "batch", index, "start", start, "end", end, "err", err)
		} else {
			batchesFetched.Inc()
			pointsFetched.Add(float64(len(batchElevations)))
			copy(elevations[start:end], batchElevations)
		}
		if o.progress != nil {
			_ = o.progress.Add(1)
		}
	}

	if o.workers == 1 {
		for index := range batches {
			fetchBatch(index)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(o.workers)
		for index := range batches {
			g.Go(func() error {
				fetchBatch(index)
				return nil
			})
		}
		_ = g.Wait()
	}

	report := &FetchReport{
		Batches: batches,
	}
	for _, batchErr := range batchErrs {
		if batchErr != nil {
			report.Failed = append(report.Failed, batchErr)
		}
	}
	return elevations, report
}

func fetchBatchElevations(ctx context.Context, fetcher Fetcher, batch []Point) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	elevations, err := fetcher.Fetch(ctx, batch)
	switch {
	case err != nil:
		return nil, err
	case len(elevations) != len(batch):
		return nil, fmt.Errorf("%w: got %d, want %d", errElevationCount, len(elevations), len(batch))
	default:
		return elevations, nil
	}
}
