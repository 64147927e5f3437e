package repair

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"

	"github.com/ironsheep/image-decompose/internal/geometry"
	"github.com/ironsheep/image-decompose/internal/imaging"
)

// Mask fills erased regions locally: each region is painted with the
// average color of the pixels ringing it, then the fill is blurred so
// seams do not show. It needs no network and is the default strategy.
type Mask struct {
	// BlurRadius controls how aggressively fills are smoothed into
	// their surroundings.
	BlurRadius float64
}

// NewMask returns a mask strategy with the default blur radius.
func NewMask() *Mask {
	return &Mask{BlurRadius: 8}
}

// Repair implements Strategy.
func (m *Mask) Repair(ctx context.Context, req Request) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Boxes) == 0 {
		return req.Image, nil
	}

	src := zeroRGBA(req.Image)
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	mask := BuildMask(width, height, req.Boxes)

	filled := clone.AsRGBA(src)
	for _, box := range req.Boxes {
		paintBox(filled, box, ringColor(src, box, req.Boxes))
	}

	blurred := blur.Gaussian(filled, m.BlurRadius)

	result := clone.AsRGBA(src)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mask.GrayAt(x, y).Y > 0 {
				result.Set(x, y, blurred.At(x, y))
			}
		}
	}

	if req.SaveMaskPath != "" {
		if err := imaging.WritePNG(mask, req.SaveMaskPath); err != nil {
			return nil, fmt.Errorf("failed to save erase mask: %w", err)
		}
	}

	return result, nil
}

// BuildMask rasterizes the erase boxes into a binary mask, white inside.
func BuildMask(width, height int, boxes []geometry.Box) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, width, height))
	for _, box := range boxes {
		x0, y0, x1, y1 := clampBox(box, width, height)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return mask
}

// zeroRGBA copies an image into a zero-origin RGBA so box coordinates
// index pixels directly.
func zeroRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// ringColor averages the pixels in a 2px band just outside the box,
// skipping any that fall inside another erase box.
func ringColor(img *image.RGBA, box geometry.Box, boxes []geometry.Box) color.RGBA {
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	x0, y0, x1, y1 := clampBox(box, width, height)

	var rSum, gSum, bSum, count uint64
	sample := func(x, y int) {
		if x < 0 || y < 0 || x >= width || y >= height {
			return
		}
		for _, other := range boxes {
			if float64(x) >= other.X0 && float64(x) < other.X1 &&
				float64(y) >= other.Y0 && float64(y) < other.Y1 {
				return
			}
		}
		px := img.RGBAAt(x, y)
		rSum += uint64(px.R)
		gSum += uint64(px.G)
		bSum += uint64(px.B)
		count++
	}

	for offset := 1; offset <= 2; offset++ {
		for x := x0 - offset; x < x1+offset; x++ {
			sample(x, y0-offset)
			sample(x, y1+offset-1)
		}
		for y := y0; y < y1; y++ {
			sample(x0-offset, y)
			sample(x1+offset-1, y)
		}
	}

	if count == 0 {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return color.RGBA{
		R: uint8(rSum / count),
		G: uint8(gSum / count),
		B: uint8(bSum / count),
		A: 255,
	}
}

func paintBox(img *image.RGBA, box geometry.Box, fill color.RGBA) {
	b := img.Bounds()
	x0, y0, x1, y1 := clampBox(box, b.Dx(), b.Dy())
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
}

func clampBox(box geometry.Box, width, height int) (x0, y0, x1, y1 int) {
	x0 = int(box.X0)
	y0 = int(box.Y0)
	x1 = int(box.X1 + 0.5)
	y1 = int(box.Y1 + 0.5)
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > width {
		x1 = width
	}
	if y1 > height {
		y1 = height
	}
	return x0, y0, x1, y1
}
