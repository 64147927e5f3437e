// Package extract defines the element-extraction capability and its
// implementations: a network-backed layout extractor (Google Document AI),
// a local heuristic extractor for clean renderings, and a ruling-line table
// extractor for table sub-images.
//
// Extractors return elements whose boxes are expressed in the pixel frame of
// the image they were given. Frame-to-root coordinate mapping is the
// recursion controller's job, not the extractor's.
package extract

import (
	"context"
	"errors"
	"image"

	"github.com/ironsheep/image-decompose/internal/geometry"
)

// ErrNoElements reports that a backend produced nothing resolvable for a
// frame. The recursion controller recovers from this locally: the frame
// proceeds with zero elements and an error annotation.
var ErrNoElements = errors.New("extract: no usable elements")

// Request describes one frame to extract elements from.
type Request struct {
	// Image holds the frame's decoded pixels.
	Image image.Image

	// Ref is the frame's source file path, used for artifact naming and
	// logging only.
	Ref string

	// Size is the frame's pixel dimensions (a size hint for backends that
	// rescale internally).
	Size geometry.Size

	// WorkDir is the directory where the extractor may materialize
	// sub-image crops and other intermediate artifacts for this frame.
	WorkDir string
}

// RawElement is one detected region, before tree assembly.
type RawElement struct {
	// Type is the open element type tag ("text", "table", "figure", ...).
	Type string

	// BBox is expressed in the pixel frame of the extracted image.
	BBox geometry.Box

	// Content holds extracted text or markup, if any.
	Content string

	// SubImage is the path of a materialized sub-image file for
	// container-like elements, empty otherwise.
	SubImage string

	// Meta carries extractor-specific provenance.
	Meta map[string]any
}

// Extractor is the extraction capability dispatched by element type tag.
//
// Implementations must be safely callable from multiple batch workers
// concurrently: stateless per call or internally synchronized.
type Extractor interface {
	Extract(ctx context.Context, req Request) ([]RawElement, error)
}
