package heightmap

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// A CachedFetcher caches the elevations returned by another Fetcher, point by
// point. Only points that are not cached are forwarded. Failures are not
// cached.
type CachedFetcher struct {
	fetcher Fetcher
	cache   *lru.Cache[Point, float64]
}

// NewCachedFetcher returns a new CachedFetcher that caches up to size points
// fetched by fetcher.
func NewCachedFetcher(fetcher Fetcher, size int) (*CachedFetcher, error) {
	cache, err := lru.New[Point, float64](size)
	if err != nil {
		return nil, err
	}
	return &CachedFetcher{
		fetcher: fetcher,
		cache:   cache,
	}, nil
}

// Fetch implements Fetcher.Fetch.
func (f *CachedFetcher) Fetch(ctx context.Context, points []Point) ([]float64, error) {
	elevations := make([]float64, len(points))

	// Collect the points that are not cached, remembering where they go.
	var missingPoints []Point
	var missingIndexes []int
	for index, point := range points {
		if elevation, ok := f.cache.Get(point); ok {
			pointCacheHits.Inc()
			elevations[index] = elevation
			continue
		}
		pointCacheMisses.Inc()
		missingPoints = append(missingPoints, point)
		missingIndexes = append(missingIndexes, index)
	}
	if len(missingPoints) == 0 {
		return elevations, nil
	}

	fetched, err := f.fetcher.Fetch(ctx, missingPoints)
	if err != nil {
		return nil, err
	}
	if len(fetched) != len(missingPoints) {
		return nil, &FetchError{Cause: errElevationCount}
	}
	for i, index := range missingIndexes {
		elevations[index] = fetched[i]
		if eviction := f.cache.Add(missingPoints[i], fetched[i]); eviction {
			pointCacheEvictions.Inc()
		}
	}
	return elevations, nil
}

// Len returns the number of cached points.
func (f *CachedFetcher) Len() int {
	return f.cache.Len()
}
