package imaging

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/ironsheep/image-decompose/internal/geometry"
)

// SubImage extracts the region described by box from img.
//
// The box is rounded to whole pixels and clamped to the image bounds before
// cropping. An error is returned if the clamped region is empty.
func SubImage(img image.Image, box geometry.Box) (image.Image, error) {
	rect, err := clampToBounds(box, img.Bounds())
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, rect), nil
}

// CropToFile extracts the region described by box from img and writes it as
// a PNG file at path, creating parent directories as needed.
//
// This is how sub-images are materialized for recursive analysis: the child
// frame's pixels are cut from the parent's so that a recursion step always
// points at real pixel data distinct from the parent file.
func CropToFile(img image.Image, box geometry.Box, path string) error {
	cropped, err := SubImage(img, box)
	if err != nil {
		return err
	}
	return WritePNG(cropped, path)
}

// WritePNG encodes img as PNG at path, creating parent directories as needed.
func WritePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// clampToBounds rounds a box to whole pixels and clamps it to rect.
func clampToBounds(box geometry.Box, rect image.Rectangle) (image.Rectangle, error) {
	r := image.Rect(int(box.X0), int(box.Y0), int(box.X1+0.5), int(box.Y1+0.5))
	r = r.Intersect(rect)
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("crop region (%.0f,%.0f)-(%.0f,%.0f) outside image bounds %v",
			box.X0, box.Y0, box.X1, box.Y1, rect)
	}
	return r, nil
}
