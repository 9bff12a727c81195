package heightmap_test

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/google/tiff"
	_ "github.com/google/tiff/geotiff"
	xtiff "golang.org/x/image/tiff"

	"github.com/twpayne/go-heightmap"
)

func TestNormalize(t *testing.T) {
	nan := math.NaN()
	for _, tc := range []struct {
		name     string
		heights  []float64
		expected []uint8
	}{
		{
			name:     "linear",
			heights:  []float64{10, 20, 30, 40},
			expected: []uint8{0, 85, 170, 255},
		},
		{
			name:     "unordered",
			heights:  []float64{300, 100, 200},
			expected: []uint8{255, 0, 128},
		},
		{
			name:     "uniform",
			heights:  []float64{12.5, 12.5, 12.5},
			expected: []uint8{128, 128, 128},
		},
		{
			name:     "missing",
			heights:  []float64{nan, 0, 64, nan},
			expected: []uint8{0, 0, 255, 0},
		},
		{
			name:     "single_finite",
			heights:  []float64{nan, 7},
			expected: []uint8{0, 128},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := heightmap.Normalize(tc.heights)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestNormalize_NoElevations(t *testing.T) {
	for _, heights := range [][]float64{
		nil,
		{math.NaN(), math.NaN()},
	} {
		_, err := heightmap.Normalize(heights)
		assert.IsError(t, err, heightmap.ErrNoElevations)
	}
}

func TestNormalize_ScaleInvariant(t *testing.T) {
	heights := []float64{3, 141, 59, 26, 535, 89, 79, 323, 846}
	expected, err := heightmap.Normalize(heights)
	assert.NoError(t, err)
	for _, scale := range []float64{2, 4, 0.5, 1024} {
		scaled := make([]float64, len(heights))
		for i, height := range heights {
			scaled[i] = scale * height
		}
		actual, err := heightmap.Normalize(scaled)
		assert.NoError(t, err)
		assert.Equal(t, expected, actual)
	}
}

func TestRenderImage(t *testing.T) {
	// Heights are in grid order: index lonIndex*side + latIndex.
	img, err := heightmap.RenderImage([]float64{10, 20, 30, 40}, 2)
	assert.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())

	// North is up and east is right.
	assert.Equal(t, uint8(85), img.GrayAt(0, 0).Y)  // West, north.
	assert.Equal(t, uint8(255), img.GrayAt(1, 0).Y) // East, north.
	assert.Equal(t, uint8(0), img.GrayAt(0, 1).Y)   // West, south.
	assert.Equal(t, uint8(170), img.GrayAt(1, 1).Y) // East, south.
}

func TestRenderImage_Rotation(t *testing.T) {
	side := 3
	heights := make([]float64, side*side)
	for i := range heights {
		heights[i] = float64(i)
	}
	img, err := heightmap.RenderImage(heights, side)
	assert.NoError(t, err)
	values, err := heightmap.Normalize(heights)
	assert.NoError(t, err)
	for lonIndex := range side {
		for latIndex := range side {
			expected := values[lonIndex*side+latIndex]
			assert.Equal(t, expected, img.GrayAt(lonIndex, side-1-latIndex).Y)
		}
	}
}

func TestRenderImage_Errors(t *testing.T) {
	_, err := heightmap.RenderImage([]float64{1, 2, 3}, 2)
	assert.IsError(t, err, heightmap.ErrShape)

	_, err = heightmap.RenderImage(nil, 0)
	assert.IsError(t, err, heightmap.ErrShape)

	_, err = heightmap.RenderImage([]float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()}, 2)
	assert.IsError(t, err, heightmap.ErrNoElevations)
}

func TestSaveImage(t *testing.T) {
	img, err := heightmap.RenderImage([]float64{10, 20, 30, 40, 50, 60, 70, 80, 90}, 3)
	assert.NoError(t, err)

	tempDir := t.TempDir()
	for _, name := range []string{"map.png", "map.jpg", "map.jpeg", "map.gif", "map.bmp", "map.tif", "map.TIFF"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(tempDir, name)
			assert.NoError(t, heightmap.SaveImage(path, img))
			file, err := os.Open(path)
			assert.NoError(t, err)
			defer file.Close()
			config, _, err := image.DecodeConfig(file)
			assert.NoError(t, err)
			assert.Equal(t, 3, config.Width)
			assert.Equal(t, 3, config.Height)
		})
	}
}

func TestSaveImage_PNGRoundTrip(t *testing.T) {
	img, err := heightmap.RenderImage([]float64{10, 20, 30, 40}, 2)
	assert.NoError(t, err)

	path := filepath.Join(t.TempDir(), "map.png")
	assert.NoError(t, heightmap.SaveImage(path, img))
	file, err := os.Open(path)
	assert.NoError(t, err)
	defer file.Close()
	decoded, err := png.Decode(file)
	assert.NoError(t, err)
	gray, ok := decoded.(*image.Gray)
	assert.True(t, ok)
	assert.Equal(t, img.Pix, gray.Pix)
}

func TestCheckImageFormat(t *testing.T) {
	for _, tc := range []struct {
		path      string
		supported bool
	}{
		{path: "map.png", supported: true},
		{path: "out/map.JPEG", supported: true},
		{path: "map.tif", supported: true},
		{path: "map.webp"},
		{path: "map"},
		{path: "png"},
	} {
		t.Run(tc.path, func(t *testing.T) {
			err := heightmap.CheckImageFormat(tc.path)
			if tc.supported {
				assert.NoError(t, err)
			} else {
				assert.IsError(t, err, heightmap.ErrUnsupportedFormat)
			}
		})
	}
}

func TestSaveImage_UnsupportedFormat(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	for _, name := range []string{"map.webp", "map"} {
		path := filepath.Join(t.TempDir(), name)
		assert.IsError(t, heightmap.SaveImage(path, img), heightmap.ErrUnsupportedFormat)
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	}
}

func TestEncodeImage_TIFF(t *testing.T) {
	img, err := heightmap.RenderImage([]float64{10, 20, 30, 40}, 2)
	assert.NoError(t, err)

	var buffer bytes.Buffer
	assert.NoError(t, heightmap.EncodeImage(&buffer, img, ".tiff"))

	parsed, err := tiff.Parse(bytes.NewReader(buffer.Bytes()), tiff.GetTagSpace("GeoTIFF"), nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(parsed.IFDs()))
	ifd := parsed.IFDs()[0]
	assert.True(t, ifd.HasField(256)) // ImageWidth.
	assert.True(t, ifd.HasField(257)) // ImageLength.
	assert.True(t, ifd.HasField(259)) // Compression.

	decoded, err := xtiff.Decode(bytes.NewReader(buffer.Bytes()))
	assert.NoError(t, err)
	gray, ok := decoded.(*image.Gray)
	assert.True(t, ok)
	assert.Equal(t, img.Pix, gray.Pix)
}
