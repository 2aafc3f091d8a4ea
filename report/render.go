package report

import (
	"errors"
	"image"
	"image/color"
	"math"
)

// ErrNotSquare is returned when centroids cannot be reshaped into square
// images.
var ErrNotSquare = errors.New("report: centroid dimension is not a perfect square")

// squareSide returns s with s*s == dim.
func squareSide(dim int) (int, bool) {
	s := int(math.Round(math.Sqrt(float64(dim))))
	return s, s > 0 && s*s == dim
}

// CentroidImage renders each centroid as a square grayscale tile, laid out
// left to right. Values are clamped to [0,1].
func CentroidImage(centroids [][]float32) (*image.Gray, error) {
	if len(centroids) == 0 {
		return nil, errors.New("report: no centroids")
	}
	side, ok := squareSide(len(centroids[0]))
	if !ok {
		return nil, ErrNotSquare
	}

	const gap = 2
	width := len(centroids)*(side+gap) - gap
	img := image.NewGray(image.Rect(0, 0, width, side))
	for j, c := range centroids {
		x0 := j * (side + gap)
		for d, v := range c {
			img.SetGray(x0+d%side, d/side, color.Gray{Y: toGray(float64(v))})
		}
	}
	return img, nil
}

// HeatmapImage renders a percentage matrix with one cell×cell block per entry.
// 100% is white.
func HeatmapImage(acc [][]float64, cell int) *image.Gray {
	if cell <= 0 {
		cell = 16
	}
	cols := 0
	for _, row := range acc {
		cols = max(cols, len(row))
	}

	img := image.NewGray(image.Rect(0, 0, cols*cell, len(acc)*cell))
	for r, row := range acc {
		for c, v := range row {
			g := color.Gray{Y: toGray(v / 100)}
			for y := r * cell; y < (r+1)*cell; y++ {
				for x := c * cell; x < (c+1)*cell; x++ {
					img.SetGray(x, y, g)
				}
			}
		}
	}
	return img
}

func toGray(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(math.Round(v * 255))
	}
}
