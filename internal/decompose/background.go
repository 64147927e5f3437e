package decompose

import (
	"context"
	"image"
	"log/slog"
	"path/filepath"

	"github.com/ironsheep/image-decompose/internal/geometry"
	"github.com/ironsheep/image-decompose/internal/imaging"
	"github.com/ironsheep/image-decompose/internal/repair"
	"github.com/ironsheep/image-decompose/internal/tree"
)

// composeBackground produces the frame's clean background: it erases the
// frame's own top-level element boxes via the configured repair strategy
// and writes the result under the frame's artifact directory. Any
// failure is logged and reported as "no clean background", never as a
// frame failure.
func (c *Controller) composeBackground(ctx context.Context, img image.Image, f frame, elements []tree.Element, workDir string, log *slog.Logger) string {
	if c.repairers == nil || !c.repairers.Configured() || workDir == "" {
		return ""
	}

	frameSize := geometry.Size{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	boxes := EraseBoxes(elements, frameSize, c.cfg.EraseCoverageCutoff, c.cfg.EraseMargin)
	if len(boxes) == 0 {
		log.Debug("no erasable boxes after coverage filtering")
		return ""
	}

	strategy, err := c.repairers.Resolve(f.typeHint)
	if err != nil {
		log.Warn("no repair strategy for frame", "type_hint", f.typeHint, "error", err)
		return ""
	}

	req := repair.Request{
		Image:  img,
		Boxes:  boxes,
		Margin: c.cfg.EraseMargin,
	}
	if f.parentBoxGlobal != nil {
		req.CropBox = f.parentBoxGlobal
		req.RootImage = f.rootImage
	}
	if c.cfg.SaveMasks {
		req.SaveMaskPath = filepath.Join(workDir, "erase_mask.png")
	}

	clean, err := strategy.Repair(ctx, req)
	if err != nil {
		log.Warn("background repair failed", "error", err)
		return ""
	}
	if clean == nil {
		log.Warn("background repair produced no image")
		return ""
	}

	path := filepath.Join(workDir, "clean_background.png")
	if err := imaging.WritePNG(clean, path); err != nil {
		log.Warn("failed to write clean background", "error", err)
		return ""
	}
	return path
}

// EraseBoxes builds the erase set for one frame from its top-level
// elements: child regions are deliberately ignored (they belong to the
// child's own frame), boxes covering at least the cutoff fraction of the
// frame are dropped as false-positive whole-frame detections, and the
// survivors are expanded by margin, clamped to the frame.
func EraseBoxes(elements []tree.Element, frameSize geometry.Size, coverageCutoff, margin float64) []geometry.Box {
	frameArea := frameSize.Area()
	if frameArea <= 0 {
		return nil
	}

	var boxes []geometry.Box
	for _, el := range elements {
		if el.BBox.Area()/frameArea >= coverageCutoff {
			continue
		}
		boxes = append(boxes, el.BBox.Expand(margin, float64(frameSize.Width), float64(frameSize.Height)))
	}
	return boxes
}
