// Package repair produces clean background images by removing extracted
// foreground elements from a frame. Strategies fill the erased regions so
// the result can serve as an editable backdrop behind regenerated
// elements.
package repair

import (
	"context"
	"errors"
	"image"

	"github.com/ironsheep/image-decompose/internal/geometry"
)

// ErrNoResult indicates the strategy ran but could not produce a usable
// background, for example when a remote provider returns an empty image.
var ErrNoResult = errors.New("repair: no background produced")

// Request describes one background repair job.
type Request struct {
	// Image is the frame whose foreground elements should be erased.
	Image image.Image

	// Boxes are the regions to erase, in the frame's pixel coordinates.
	// Callers expand them by Margin before strategies see stale edges.
	Boxes []geometry.Box

	// Margin is the expansion already applied to Boxes, recorded for
	// providers that want to reproduce the erase geometry remotely.
	Margin float64

	// CropBox, when set, locates Image inside RootImage. Generative
	// providers use the surrounding pixels as context so the filled
	// background blends with the parent frame.
	CropBox *geometry.Box

	// RootImage is the top-level frame. Nil when Image is the root.
	RootImage image.Image

	// SaveMaskPath, when non-empty, asks the strategy to write the
	// binary erase mask there as a PNG for inspection.
	SaveMaskPath string
}

// Strategy fills erased regions of a frame.
type Strategy interface {
	Repair(ctx context.Context, req Request) (image.Image, error)
}
