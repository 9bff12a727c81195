package heightmap

import (
	"errors"
	"fmt"
	"math"
)

// Names of the fields written by WriteDataset.
const (
	FieldHeights    = "heights"
	FieldPositions  = "positions"
	FieldResolution = "resolution"
	FieldValid      = "valid"
)

var errLengthMismatch = errors.New("heights and positions have different lengths")

// A Container is a structured output file holding named datasets.
type Container interface {
	WriteFloat64s(name string, values []float64) error
	WritePoints(name string, points []Point) error
	WriteUint8s(name string, values []uint8) error
	WriteFloat64(name string, value float64) error
	Close() error
}

// A Dataset is the result of a run. Heights[i] is the elevation of
// Positions[i], or NaN if it could not be fetched.
type Dataset struct {
	Heights    []float64
	Positions  []Point
	Resolution float64
}

// Valid returns a mask with 1 for every finite height and 0 otherwise.
func (d *Dataset) Valid() []uint8 {
	valid := make([]uint8, len(d.Heights))
	for i, height := range d.Heights {
		if !math.IsNaN(height) && !math.IsInf(height, 0) {
			valid[i] = 1
		}
	}
	return valid
}

// WriteDataset writes d to c and closes c. Any error aborts the write and the
// container should be considered invalid.
func WriteDataset(c Container, d *Dataset) (err error) {
	defer func() {
		if closeErr := c.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close: %w", closeErr)
		}
	}()

	if len(d.Heights) != len(d.Positions) {
		return fmt.Errorf("%w: %d heights, %d positions", errLengthMismatch, len(d.Heights), len(d.Positions))
	}
	if err := c.WriteFloat64s(FieldHeights, d.Heights); err != nil {
		return fmt.Errorf("write %s: %w", FieldHeights, err)
	}
	if err := c.WritePoints(FieldPositions, d.Positions); err != nil {
		return fmt.Errorf("write %s: %w", FieldPositions, err)
	}
	if err := c.WriteFloat64(FieldResolution, d.Resolution); err != nil {
		return fmt.Errorf("write %s: %w", FieldResolution, err)
	}
	if err := c.WriteUint8s(FieldValid, d.Valid()); err != nil {
		return fmt.Errorf("write %s: %w", FieldValid, err)
	}
	return nil
}
