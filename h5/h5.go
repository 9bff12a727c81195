// Package h5 stores heightmap datasets in HDF5 files.
package h5

import (
	"fmt"

	"gonum.org/v1/hdf5"

	"github.com/twpayne/go-heightmap"
)

// A position is the on-disk layout of a heightmap.Point.
type position struct {
	Lon float64 `hdf5:"lon"`
	Lat float64 `hdf5:"lat"`
}

// A File is an HDF5 file. It implements heightmap.Container.
type File struct {
	file *hdf5.File
}

// Create creates an HDF5 file at path, truncating any existing file.
func Create(path string) (*File, error) {
	file, err := hdf5.CreateFile(path, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &File{file: file}, nil
}

// Open opens the HDF5 file at path for reading.
func Open(path string) (*File, error) {
	file, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &File{file: file}, nil
}

// Close closes f.
func (f *File) Close() error {
	return f.file.Close()
}

// WriteFloat64s writes values as a one-dimensional dataset of doubles.
func (f *File) WriteFloat64s(name string, values []float64) error {
	return f.writeSlice(name, hdf5.T_NATIVE_DOUBLE, len(values), &values)
}

// WriteUint8s writes values as a one-dimensional dataset of bytes.
func (f *File) WriteUint8s(name string, values []uint8) error {
	return f.writeSlice(name, hdf5.T_NATIVE_UINT8, len(values), &values)
}

// WritePoints writes points as a one-dimensional dataset of compound
// {lon, lat} doubles.
func (f *File) WritePoints(name string, points []heightmap.Point) error {
	positions := make([]position, len(points))
	for i, point := range points {
		positions[i] = position{Lon: point.Lon, Lat: point.Lat}
	}
	dtype, err := hdf5.NewDatatypeFromValue(position{})
	if err != nil {
		return err
	}
	defer dtype.Close()
	return f.writeSlice(name, dtype, len(positions), &positions)
}

// WriteFloat64 writes value as a scalar double dataset.
func (f *File) WriteFloat64(name string, value float64) error {
	space, err := hdf5.CreateDataspace(hdf5.S_SCALAR)
	if err != nil {
		return err
	}
	defer space.Close()
	dset, err := f.file.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return err
	}
	if err := dset.Write(&value); err != nil {
		_ = dset.Close()
		return err
	}
	return dset.Close()
}

// Float64s reads the one-dimensional dataset of doubles name.
func (f *File) Float64s(name string) ([]float64, error) {
	dset, n, err := f.openSlice(name)
	if err != nil {
		return nil, err
	}
	defer dset.Close()
	values := make([]float64, n)
	if n == 0 {
		return values, nil
	}
	if err := dset.Read(&values); err != nil {
		return nil, err
	}
	return values, nil
}

// Uint8s reads the one-dimensional dataset of bytes name.
func (f *File) Uint8s(name string) ([]uint8, error) {
	dset, n, err := f.openSlice(name)
	if err != nil {
		return nil, err
	}
	defer dset.Close()
	values := make([]uint8, n)
	if n == 0 {
		return values, nil
	}
	if err := dset.Read(&values); err != nil {
		return nil, err
	}
	return values, nil
}

// Points reads the one-dimensional dataset of positions name.
func (f *File) Points(name string) ([]heightmap.Point, error) {
	dset, n, err := f.openSlice(name)
	if err != nil {
		return nil, err
	}
	defer dset.Close()
	positions := make([]position, n)
	if n > 0 {
		if err := dset.Read(&positions); err != nil {
			return nil, err
		}
	}
	points := make([]heightmap.Point, n)
	for i, position := range positions {
		points[i] = heightmap.Point{Lon: position.Lon, Lat: position.Lat}
	}
	return points, nil
}

// Float64 reads the scalar double dataset name.
func (f *File) Float64(name string) (float64, error) {
	dset, err := f.file.OpenDataset(name)
	if err != nil {
		return 0, err
	}
	defer dset.Close()
	var value float64
	if err := dset.Read(&value); err != nil {
		return 0, err
	}
	return value, nil
}

// Dataset reads a complete heightmap.Dataset from f.
func (f *File) Dataset() (*heightmap.Dataset, error) {
	heights, err := f.Float64s(heightmap.FieldHeights)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", heightmap.FieldHeights, err)
	}
	positions, err := f.Points(heightmap.FieldPositions)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", heightmap.FieldPositions, err)
	}
	resolution, err := f.Float64(heightmap.FieldResolution)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", heightmap.FieldResolution, err)
	}
	return &heightmap.Dataset{
		Heights:    heights,
		Positions:  positions,
		Resolution: resolution,
	}, nil
}

// writeSlice writes the n elements pointed to by data. Empty datasets are
// created but not written, as HDF5 rejects writes from an empty buffer.
func (f *File) writeSlice(name string, dtype *hdf5.Datatype, n int, data any) error {
	space, err := hdf5.CreateSimpleDataspace([]uint{uint(n)}, nil)
	if err != nil {
		return err
	}
	defer space.Close()
	dset, err := f.file.CreateDataset(name, dtype, space)
	if err != nil {
		return err
	}
	if n > 0 {
		if err := dset.Write(data); err != nil {
			_ = dset.Close()
			return err
		}
	}
	return dset.Close()
}

func (f *File) openSlice(name string) (*hdf5.Dataset, int, error) {
	dset, err := f.file.OpenDataset(name)
	if err != nil {
		return nil, 0, err
	}
	space := dset.Space()
	defer space.Close()
	return dset, space.SimpleExtentNPoints(), nil
}
