package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ironsheep/image-decompose/internal/detection"
	"github.com/ironsheep/image-decompose/internal/geometry"
	"github.com/ironsheep/image-decompose/internal/imaging"
	"github.com/ironsheep/image-decompose/internal/ocr"
)

// Heuristic extracts elements without any network backend. Text regions
// come from edge-density proposals confirmed by OCR; figures and charts
// come from contour proposals. It trades layout fidelity for zero
// external dependencies, so it doubles as the fallback when no layout
// processor is configured.
type Heuristic struct {
	OCR ocr.Recognizer
	Log *slog.Logger

	// MinProposalConfidence filters edge-density text proposals before
	// OCR is consulted.
	MinProposalConfidence float64

	// MinTextConfidence discards OCR results below this mean word
	// confidence; proposals that fail it are treated as non-text.
	MinTextConfidence float64

	// MinFigureArea filters contour proposals smaller than this many
	// square pixels.
	MinFigureArea int
}

// NewHeuristic returns a heuristic extractor with workable defaults.
func NewHeuristic(rec ocr.Recognizer, log *slog.Logger) *Heuristic {
	return &Heuristic{
		OCR:                   rec,
		Log:                   log,
		MinProposalConfidence: 0.3,
		MinTextConfidence:     0.35,
		MinFigureArea:         2500,
	}
}

// Extract implements Extractor.
func (h *Heuristic) Extract(ctx context.Context, req Request) ([]RawElement, error) {
	var elements []RawElement

	textRegions := detection.ProposeTextRegions(req.Image, h.MinProposalConfidence)
	for _, region := range textRegions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		el, ok := h.confirmText(region, req)
		if ok {
			elements = append(elements, el)
		}
	}

	figureRegions := detection.ProposeFigureRegions(req.Image, h.MinFigureArea)
	for i, region := range figureRegions {
		if regionOverlapsAny(region.Bounds.Box(), elements) {
			continue
		}
		el := RawElement{
			Type: region.Type,
			BBox: region.Bounds.Box(),
			Meta: map[string]any{"confidence": region.Confidence},
		}
		h.materializeCrop(&el, req, i)
		elements = append(elements, el)
	}

	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: no regions survived filtering", ErrNoElements)
	}

	sort.SliceStable(elements, func(i, j int) bool {
		if elements[i].BBox.Y0 != elements[j].BBox.Y0 {
			return elements[i].BBox.Y0 < elements[j].BBox.Y0
		}
		return elements[i].BBox.X0 < elements[j].BBox.X0
	})

	h.Log.Debug("heuristic extraction complete",
		"ref", req.Ref, "elements", len(elements))
	return elements, nil
}

// confirmText runs OCR over a proposed text region and keeps it only when
// recognition produces non-empty text with adequate confidence.
func (h *Heuristic) confirmText(region detection.Region, req Request) (RawElement, bool) {
	crop, err := imaging.SubImage(req.Image, region.Bounds.Box())
	if err != nil {
		return RawElement{}, false
	}
	result, err := h.OCR.Recognize(crop)
	if err != nil {
		h.Log.Debug("ocr failed on text proposal", "ref", req.Ref, "error", err)
		return RawElement{}, false
	}
	text := strings.TrimSpace(result.Text)
	if text == "" || meanConfidence(result) < h.MinTextConfidence {
		return RawElement{}, false
	}
	return RawElement{
		Type:    "text",
		BBox:    region.Bounds.Box(),
		Content: text,
		Meta:    map[string]any{"confidence": meanConfidence(result)},
	}, true
}

func (h *Heuristic) materializeCrop(el *RawElement, req Request, idx int) {
	if req.WorkDir == "" {
		return
	}
	path := filepath.Join(req.WorkDir, "crops", fmt.Sprintf("%s_%d.png", el.Type, idx))
	if err := imaging.CropToFile(req.Image, el.BBox, path); err != nil {
		h.Log.Warn("failed to materialize sub-image", "ref", req.Ref, "error", err)
		return
	}
	el.SubImage = path
}

// meanConfidence averages word confidences, falling back to zero for
// results without word detail.
func meanConfidence(result *ocr.Result) float64 {
	if len(result.Words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range result.Words {
		sum += w.Confidence
	}
	return sum / float64(len(result.Words))
}

// regionOverlapsAny reports whether box intersects any already-accepted
// element. Figure proposals that land on confirmed text are discarded to
// avoid double-reporting the same pixels.
func regionOverlapsAny(box geometry.Box, elements []RawElement) bool {
	for _, el := range elements {
		if box.X0 < el.BBox.X1 && box.X1 > el.BBox.X0 &&
			box.Y0 < el.BBox.Y1 && box.Y1 > el.BBox.Y0 {
			return true
		}
	}
	return false
}
