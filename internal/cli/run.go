package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/twpayne/go-heightmap"
	"github.com/twpayne/go-heightmap/internal/config"
)

// run builds the grid, fetches its elevations, and writes the dataset and
// the optional image.
func run(ctx context.Context, cfg config.Config, deps Dependencies, stderr io.Writer) error {
	if deps.CreateContainer == nil {
		return errNoContainerFactory
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).
		With("run_id", uuid.NewString())

	grid, err := heightmap.BuildGrid(
		cfg.Latitude, cfg.Longitude, cfg.Size, cfg.Resolution,
		heightmap.WithMetersPerDegree(cfg.MetersPerDegree),
	)
	if err != nil {
		return fmt.Errorf("%w: size %v, resolution %v", err, cfg.Size, cfg.Resolution)
	}
	points := grid.Points()
	logger.Info("calculated positions", "side", grid.Side(), "points", len(points))

	fetcher, err := newFetcher(cfg, deps, logger)
	if err != nil {
		return err
	}

	fetchOptions := []heightmap.FetchOption{
		heightmap.WithBatchSize(cfg.BatchSize),
		heightmap.WithWorkers(cfg.Workers),
		heightmap.WithLogger(logger),
	}
	var bar *progressbar.ProgressBar
	if !cfg.NoProgress {
		batches := (len(points) + cfg.BatchSize - 1) / cfg.BatchSize
		bar = progressbar.NewOptions(batches,
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionSetDescription("fetching elevations"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		fetchOptions = append(fetchOptions, heightmap.WithProgress(bar))
	}

	logger.Info("fetching elevations", "endpoint", cfg.Endpoint)
	heights, report := heightmap.FetchAll(ctx, fetcher, points, fetchOptions...)
	if bar != nil {
		_ = bar.Finish()
	}
	logger.Info("fetched elevations", "batches", report.Batches, "failed", len(report.Failed))

	logger.Info("saving dataset", "path", cfg.Output)
	container, err := deps.CreateContainer(cfg.Output)
	if err != nil {
		return fmt.Errorf("create %s: %w", cfg.Output, err)
	}
	dataset := &heightmap.Dataset{
		Heights:    heights,
		Positions:  points,
		Resolution: cfg.Resolution,
	}
	if err := heightmap.WriteDataset(container, dataset); err != nil {
		return fmt.Errorf("save %s: %w", cfg.Output, err)
	}

	if cfg.Image != "" {
		logger.Info("rendering image", "path", cfg.Image)
		img, err := heightmap.RenderImage(heights, grid.Side())
		if err != nil {
			return fmt.Errorf("render %s: %w", cfg.Image, err)
		}
		if err := heightmap.SaveImage(cfg.Image, img); err != nil {
			return fmt.Errorf("save %s: %w", cfg.Image, err)
		}
	}

	if cfg.MetricsTextfile != "" {
		if err := heightmap.WriteMetricsTextfile(cfg.MetricsTextfile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	return nil
}

func newFetcher(cfg config.Config, deps Dependencies, logger *slog.Logger) (heightmap.Fetcher, error) {
	options := []heightmap.IGNClientOption{
		heightmap.WithEndpoint(cfg.Endpoint),
		heightmap.WithClientLogger(logger),
	}
	if cfg.Timeout > 0 {
		options = append(options, heightmap.WithTimeout(cfg.Timeout))
	}
	if deps.HTTPClient != nil {
		options = append(options, heightmap.WithHTTPClient(deps.HTTPClient))
	}
	var fetcher heightmap.Fetcher = heightmap.NewIGNClient(options...)

	if cfg.CacheSize > 0 {
		cachedFetcher, err := heightmap.NewCachedFetcher(fetcher, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		fetcher = cachedFetcher
	}
	return fetcher, nil
}
