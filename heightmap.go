// Package heightmap builds regular grids of elevation samples around a center
// coordinate, fetches their elevations from a remote service, and writes them
// out as datasets and images.
package heightmap

import "context"

// A Point is a sample position in degrees.
type Point struct {
	Lon float64
	Lat float64
}

// A Fetcher returns the elevations of points, in meters, in the same order as
// points. Missing elevations are represented by NaNs.
type Fetcher interface {
	Fetch(ctx context.Context, points []Point) ([]float64, error)
}

// A FetcherFunc is a function that implements Fetcher.
type FetcherFunc func(ctx context.Context, points []Point) ([]float64, error)

// Fetch implements Fetcher.Fetch.
func (f FetcherFunc) Fetch(ctx context.Context, points []Point) ([]float64, error) {
	return f(ctx, points)
}
