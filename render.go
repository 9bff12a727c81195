package heightmap

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// uniformGray is the intensity of every pixel when all heights are equal.
const uniformGray = 128

var (
	ErrShape             = errors.New("heights do not form a square raster")
	ErrNoElevations      = errors.New("no elevations")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Normalize maps heights to 8-bit intensities, with the lowest finite height
// at 0 and the highest at 255. NaNs map to 0. If all finite heights are equal,
// they map to mid-gray.
func Normalize(heights []float64) ([]uint8, error) {
	minHeight, maxHeight := math.Inf(1), math.Inf(-1)
	for _, height := range heights {
		if math.IsNaN(height) || math.IsInf(height, 0) {
			continue
		}
		minHeight = min(minHeight, height)
		maxHeight = max(maxHeight, height)
	}
	if minHeight > maxHeight {
		return nil, ErrNoElevations
	}

	values := make([]uint8, len(heights))
	for i, height := range heights {
		switch {
		case math.IsNaN(height) || math.IsInf(height, 0):
			values[i] = 0
		case maxHeight == minHeight:
			values[i] = uniformGray
		default:
			values[i] = uint8(min(math.Floor(256*(height-minHeight)/(maxHeight-minHeight)), 255))
		}
	}
	return values, nil
}

// RenderImage returns a side by side grayscale image of heights, which must be
// in Grid.Points order. The image is oriented with north up and east right.
func RenderImage(heights []float64, side int) (*image.Gray, error) {
	if side <= 0 || len(heights) != side*side {
		return nil, fmt.Errorf("%w: %d heights, side %d", ErrShape, len(heights), side)
	}
	values, err := Normalize(heights)
	if err != nil {
		return nil, err
	}
	raster := &image.Gray{
		Pix:    values,
		Stride: side,
		Rect:   image.Rect(0, 0, side, side),
	}
	return rotate270(raster), nil
}

// rotate270 returns src rotated by 270 degrees clockwise.
func rotate270(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, height, width))
	for y := range height {
		for x := range width {
			dst.SetGray(y, width-1-x, src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return dst
}

type encodeFunc func(io.Writer, image.Image) error

// encoderFor returns the encoder for the file extension ext.
func encoderFor(ext string) (encodeFunc, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return png.Encode, nil
	case "jpg", "jpeg":
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
		}, nil
	case "gif":
		return func(w io.Writer, img image.Image) error {
			return gif.Encode(w, img, nil)
		}, nil
	case "bmp":
		return bmp.Encode, nil
	case "tif", "tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// EncodeImage writes img to w in the format implied by the file extension
// ext.
func EncodeImage(w io.Writer, img image.Image, ext string) error {
	encode, err := encoderFor(ext)
	if err != nil {
		return err
	}
	return encode(w, img)
}

// CheckImageFormat returns an error wrapping ErrUnsupportedFormat if SaveImage
// cannot infer a format from path's extension.
func CheckImageFormat(path string) error {
	_, err := encoderFor(filepath.Ext(path))
	return err
}

// SaveImage writes img to path, inferring the format from path's extension.
func SaveImage(path string, img image.Image) (err error) {
	encode, err := encoderFor(filepath.Ext(path))
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return encode(file, img)
}
