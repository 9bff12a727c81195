package heightmap_test

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-heightmap"
)

func TestCachedFetcher(t *testing.T) {
	fetcher := &recordingFetcher{}
	cachedFetcher, err := heightmap.NewCachedFetcher(fetcher, 4)
	assert.NoError(t, err)

	points := indexedPoints(6)

	actual, err := cachedFetcher.Fetch(t.Context(), points[0:3])
	assert.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, actual)
	assert.Equal(t, []int{3}, fetcher.batchSizes)
	assert.Equal(t, 3, cachedFetcher.Len())

	actual, err = cachedFetcher.Fetch(t.Context(), []heightmap.Point{points[2], points[3], points[1]})
	assert.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 1}, actual)
	assert.Equal(t, []int{3, 1}, fetcher.batchSizes)
	assert.Equal(t, 4, cachedFetcher.Len())

	actual, err = cachedFetcher.Fetch(t.Context(), points[1:4])
	assert.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, actual)
	assert.Equal(t, []int{3, 1}, fetcher.batchSizes)

	actual, err = cachedFetcher.Fetch(t.Context(), points[4:6])
	assert.NoError(t, err)
	assert.Equal(t, []float64{4, 5}, actual)
	assert.Equal(t, 4, cachedFetcher.Len())
}

func TestCachedFetcher_DoesNotCacheFailures(t *testing.T) {
	calls := 0
	fetcher := heightmap.FetcherFunc(func(ctx context.Context, points []heightmap.Point) ([]float64, error) {
		calls++
		if calls == 1 {
			return nil, errTestBatch
		}
		return make([]float64, len(points)), nil
	})
	cachedFetcher, err := heightmap.NewCachedFetcher(fetcher, 16)
	assert.NoError(t, err)

	_, err = cachedFetcher.Fetch(t.Context(), indexedPoints(2))
	assert.IsError(t, err, errTestBatch)
	assert.Equal(t, 0, cachedFetcher.Len())

	actual, err := cachedFetcher.Fetch(t.Context(), indexedPoints(2))
	assert.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, actual)
	assert.Equal(t, 2, calls)
}

func TestNewCachedFetcher_InvalidSize(t *testing.T) {
	_, err := heightmap.NewCachedFetcher(&recordingFetcher{}, 0)
	assert.Error(t, err)
}
