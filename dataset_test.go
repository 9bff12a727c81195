package heightmap_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-heightmap"
)

var errTestWrite = errors.New("test write error")

// A memContainer is an in-memory heightmap.Container.
type memContainer struct {
	float64s map[string][]float64
	points   map[string][]heightmap.Point
	uint8s   map[string][]uint8
	scalars  map[string]float64
	failOn   string
	closed   bool
}

func newMemContainer() *memContainer {
	return &memContainer{
		float64s: make(map[string][]float64),
		points:   make(map[string][]heightmap.Point),
		uint8s:   make(map[string][]uint8),
		scalars:  make(map[string]float64),
	}
}

func (c *memContainer) WriteFloat64s(name string, values []float64) error {
	if name == c.failOn {
		return errTestWrite
	}
	c.float64s[name] = append([]float64(nil), values...)
	return nil
}

func (c *memContainer) WritePoints(name string, points []heightmap.Point) error {
	if name == c.failOn {
		return errTestWrite
	}
	c.points[name] = append([]heightmap.Point(nil), points...)
	return nil
}

func (c *memContainer) WriteUint8s(name string, values []uint8) error {
	if name == c.failOn {
		return errTestWrite
	}
	c.uint8s[name] = append([]uint8(nil), values...)
	return nil
}

func (c *memContainer) WriteFloat64(name string, value float64) error {
	if name == c.failOn {
		return errTestWrite
	}
	c.scalars[name] = value
	return nil
}

func (c *memContainer) Close() error {
	c.closed = true
	return nil
}

func TestWriteDataset(t *testing.T) {
	grid, err := heightmap.BuildGrid(45, 5, 100, 50)
	assert.NoError(t, err)
	points := grid.Points()

	container := newMemContainer()
	assert.NoError(t, heightmap.WriteDataset(container, &heightmap.Dataset{
		Heights:    []float64{10, 20, 30, 40},
		Positions:  points,
		Resolution: 50,
	}))

	assert.True(t, container.closed)
	assert.Equal(t, []float64{10, 20, 30, 40}, container.float64s[heightmap.FieldHeights])
	assert.Equal(t, points, container.points[heightmap.FieldPositions])
	assert.Equal(t, 50.0, container.scalars[heightmap.FieldResolution])
	assert.Equal(t, []uint8{1, 1, 1, 1}, container.uint8s[heightmap.FieldValid])
}

func TestWriteDataset_MissingHeights(t *testing.T) {
	nan := math.NaN()
	container := newMemContainer()
	assert.NoError(t, heightmap.WriteDataset(container, &heightmap.Dataset{
		Heights:    []float64{nan, nan, 3, math.Inf(1)},
		Positions:  indexedPoints(4),
		Resolution: 25,
	}))
	assert.Equal(t, 4, len(container.float64s[heightmap.FieldHeights]))
	assert.Equal(t, 4, len(container.points[heightmap.FieldPositions]))
	assert.Equal(t, []uint8{0, 0, 1, 0}, container.uint8s[heightmap.FieldValid])
}

func TestWriteDataset_Errors(t *testing.T) {
	for _, field := range []string{
		heightmap.FieldHeights,
		heightmap.FieldPositions,
		heightmap.FieldResolution,
		heightmap.FieldValid,
	} {
		t.Run(field, func(t *testing.T) {
			container := newMemContainer()
			container.failOn = field
			err := heightmap.WriteDataset(container, &heightmap.Dataset{
				Heights:    []float64{1, 2},
				Positions:  indexedPoints(2),
				Resolution: 50,
			})
			assert.IsError(t, err, errTestWrite)
			assert.True(t, strings.Contains(err.Error(), field))
			assert.True(t, container.closed)
		})
	}
}

func TestWriteDataset_LengthMismatch(t *testing.T) {
	container := newMemContainer()
	err := heightmap.WriteDataset(container, &heightmap.Dataset{
		Heights:    []float64{1},
		Positions:  indexedPoints(2),
		Resolution: 50,
	})
	assert.Error(t, err)
	assert.Equal(t, 0, len(container.float64s))
	assert.True(t, container.closed)
}
