package heightmap

import (
	"errors"
	"math"
)

// DefaultMetersPerDegree is the length of one degree of latitude used by the
// flat-Earth approximation.
const DefaultMetersPerDegree = 111000

// ErrDegenerateGrid is returned when the size and resolution do not yield at
// least one sample per axis.
var ErrDegenerateGrid = errors.New("degenerate grid")

// A Grid is a square grid of sample points centered on a coordinate.
type Grid struct {
	Lons       []float64
	Lats       []float64
	Resolution float64
}

type gridOptions struct {
	metersPerDegree float64
}

// A GridOption sets an option on BuildGrid.
type GridOption func(*gridOptions)

// WithMetersPerDegree sets the number of meters per degree of latitude.
func WithMetersPerDegree(metersPerDegree float64) GridOption {
	return func(o *gridOptions) {
		o.metersPerDegree = metersPerDegree
	}
}

// BuildGrid returns the grid of floor(size/resolution) by
// floor(size/resolution) points spaced resolution meters apart and centered on
// (centerLat, centerLon).
//
// Meters are converted to degrees with a local flat-Earth approximation, which
// is only accurate for small sizes away from the poles.
func BuildGrid(centerLat, centerLon, size, resolution float64, options ...GridOption) (*Grid, error) {
	o := gridOptions{
		metersPerDegree: DefaultMetersPerDegree,
	}
	for _, option := range options {
		option(&o)
	}

	if !(size > 0) || !(resolution > 0) || math.IsInf(size, 0) || math.IsInf(resolution, 0) {
		return nil, ErrDegenerateGrid
	}
	// Meridians converge at the poles, where a longitude axis has no length.
	if !(math.Abs(centerLat) < 90) {
		return nil, ErrDegenerateGrid
	}
	n := int(math.Floor(size / resolution))
	if n <= 0 {
		return nil, ErrDegenerateGrid
	}

	metersPerLonDegree := o.metersPerDegree * math.Cos(centerLat*math.Pi/180)
	g := &Grid{
		Lons:       make([]float64, n),
		Lats:       make([]float64, n),
		Resolution: resolution,
	}
	for i := range n {
		offset := 0.5*size - float64(i)*resolution
		g.Lons[i] = centerLon - offset/metersPerLonDegree
		g.Lats[i] = centerLat - offset/o.metersPerDegree
	}
	return g, nil
}

// Side returns the number of points along each axis of g.
func (g *Grid) Side() int {
	return len(g.Lons)
}

// Points returns all of g's points. Longitude varies slowest.
func (g *Grid) Points() []Point {
	points := make([]Point, 0, len(g.Lons)*len(g.Lats))
	for _, lon := range g.Lons {
		for _, lat := range g.Lats {
			points = append(points, Point{Lon: lon, Lat: lat})
		}
	}
	return points
}
