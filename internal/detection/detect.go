package detection

import (
	"image"
	"math"

	"github.com/ironsheep/image-decompose/internal/geometry"
)

// Bounds is a rectangular bounding box in pixel coordinates.
//
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Box converts the bounds to the engine's floating-point box type.
func (b Bounds) Box() geometry.Box {
	return geometry.Box{X0: float64(b.X1), Y0: float64(b.Y1), X1: float64(b.X2), Y1: float64(b.Y2)}
}

// Area returns the bounds area in square pixels.
func (b Bounds) Area() int {
	return (b.X2 - b.X1) * (b.Y2 - b.Y1)
}

// Point is a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Region is one proposed element region.
type Region struct {
	// Bounds is the proposal's bounding box.
	Bounds Bounds `json:"bounds"`

	// Type is the proposed element type tag: "text", "figure" or "chart".
	Type string `json:"type"`

	// Confidence indicates proposal quality (0.0 to 1.0).
	Confidence float64 `json:"confidence"`
}

// detectEdges performs simple gradient-based edge detection.
//
// Pixels where the grayscale difference to the right or lower neighbor
// exceeds the threshold are marked as edges. Border pixels are never edges.
func detectEdges(img image.Image, width, height int) [][]bool {
	bounds := img.Bounds()
	edges := make([][]bool, height)
	threshold := 30.0

	for y := 0; y < height; y++ {
		edges[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				continue
			}

			c := grayValue(img, x+bounds.Min.X, y+bounds.Min.Y)
			cx := grayValue(img, x+1+bounds.Min.X, y+bounds.Min.Y)
			cy := grayValue(img, x+bounds.Min.X, y+1+bounds.Min.Y)

			dx := math.Abs(float64(c) - float64(cx))
			dy := math.Abs(float64(c) - float64(cy))

			if dx > threshold || dy > threshold {
				edges[y][x] = true
			}
		}
	}

	return edges
}

// grayValue converts a pixel to grayscale using ITU-R BT.601 luminance weights.
func grayValue(img image.Image, x, y int) uint8 {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(float64(r>>8)*0.299 + float64(g>>8)*0.587 + float64(b>>8)*0.114)
}

// regionsOverlap checks whether two bounds intersect.
func regionsOverlap(a, b Bounds) bool {
	return a.X1 < b.X2 && a.X2 > b.X1 && a.Y1 < b.Y2 && a.Y2 > b.Y1
}

// mergeBounds returns the union of two bounds.
func mergeBounds(a, b Bounds) Bounds {
	return Bounds{
		X1: min(a.X1, b.X1),
		Y1: min(a.Y1, b.Y1),
		X2: max(a.X2, b.X2),
		Y2: max(a.Y2, b.Y2),
	}
}
