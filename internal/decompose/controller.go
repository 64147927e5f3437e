// Package decompose implements the recursive decomposition engine: it
// turns one raster image into a tree of editable elements, descending
// into embedded sub-images and mapping every bounding box back into the
// root image's coordinate frame.
package decompose

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ironsheep/image-decompose/internal/extract"
	"github.com/ironsheep/image-decompose/internal/geometry"
	"github.com/ironsheep/image-decompose/internal/imaging"
	"github.com/ironsheep/image-decompose/internal/registry"
	"github.com/ironsheep/image-decompose/internal/repair"
	"github.com/ironsheep/image-decompose/internal/textattr"
	"github.com/ironsheep/image-decompose/internal/tree"
)

// Metadata keys written by the controller.
const (
	// MetaResolvedPath is the absolute sub-image path an element's
	// recursion actually loaded.
	MetaResolvedPath = "resolved_path"

	// MetaChildLayoutDir is the artifact directory of the child frame
	// produced by recursing into an element.
	MetaChildLayoutDir = "child_layout_dir"

	// MetaGeometryError marks elements whose global box could not be
	// computed; they keep their local box and are never recursed into.
	MetaGeometryError = "geometry_error"
)

// Controller runs the recursive analysis. All strategy lookups go
// through the capability registries, so element types route to
// interchangeable backends without the controller naming any concretely.
//
// A Controller is safe for concurrent use; per-call state lives on the
// stack of each Analyze invocation and the registries and image cache
// are internally synchronized.
type Controller struct {
	cfg   Config
	log   *slog.Logger
	cache *imaging.Cache

	extractors *registry.Registry[extract.Extractor]
	repairers  *registry.Registry[repair.Strategy]
	textAttrs  *registry.Registry[textattr.Strategy]
}

// NewController validates the configuration and wires the capability
// registries. The extraction registry must have at least a default
// strategy; repair and text-attribute registries may be empty, which
// disables those stages.
func NewController(
	cfg Config,
	log *slog.Logger,
	extractors *registry.Registry[extract.Extractor],
	repairers *registry.Registry[repair.Strategy],
	textAttrs *registry.Registry[textattr.Strategy],
) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if extractors == nil || !extractors.Configured() {
		return nil, fmt.Errorf("extraction registry: %w", registry.ErrNoStrategy)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		cfg:        cfg,
		log:        log,
		cache:      imaging.NewCache(),
		extractors: extractors,
		repairers:  repairers,
		textAttrs:  textAttrs,
	}, nil
}

// TextAttributes infers styling for a text crop, routed through the
// text-attribute registry by type tag. It is a service surface for
// downstream export; the recursion core does not call it.
func (c *Controller) TextAttributes(imageRef, typeTag string) (textattr.Attributes, error) {
	if c.textAttrs == nil {
		return textattr.Attributes{}, registry.ErrNoStrategy
	}
	strategy, err := c.textAttrs.Resolve(typeTag)
	if err != nil {
		return textattr.Attributes{}, err
	}
	img, err := c.cache.Load(imageRef)
	if err != nil {
		return textattr.Attributes{}, fmt.Errorf("failed to load %s: %w", imageRef, err)
	}
	return strategy.Analyze(img)
}

// frame is the per-recursion-level call state. Root size, reference and
// pixels are fixed at depth zero and carried unchanged down the tree.
type frame struct {
	ref             string
	depth           int
	parentID        string
	parentBoxGlobal *geometry.Box
	typeHint        string

	rootRef   string
	rootSize  geometry.Size
	rootImage image.Image
}

// Analyze decomposes one top-level image into its element tree.
//
// Extraction and repair failures degrade the affected frame (empty
// elements or missing clean background, with an error annotation) rather
// than failing the call; only image-load and configuration errors
// surface.
func (c *Controller) Analyze(ctx context.Context, imageRef string) (tree.ImageNode, error) {
	return c.analyze(ctx, frame{ref: imageRef})
}

func (c *Controller) analyze(ctx context.Context, f frame) (tree.ImageNode, error) {
	nodeID := tree.NewID()
	log := c.log.With("node", nodeID, "depth", f.depth, "ref", f.ref)

	img, size, err := c.cache.LoadWithSize(f.ref)
	if err != nil {
		return tree.ImageNode{}, fmt.Errorf("failed to load %s: %w", f.ref, err)
	}
	if f.depth == 0 {
		f.rootRef = f.ref
		f.rootSize = size
		f.rootImage = img
	}

	workDir := ""
	if c.cfg.WorkDir != "" {
		workDir = filepath.Join(c.cfg.WorkDir, nodeID)
	}

	node := tree.ImageNode{
		ID:             nodeID,
		SourceImage:    f.ref,
		Width:          size.Width,
		Height:         size.Height,
		Depth:          f.depth,
		ParentID:       f.parentID,
		LayoutArtifact: workDir,
	}

	extractor, err := c.extractors.Resolve(f.typeHint)
	if err != nil {
		// Neither a type entry nor a default: a configuration error,
		// not a per-frame failure.
		return tree.ImageNode{}, err
	}

	raw, err := extractor.Extract(ctx, extract.Request{
		Image:   img,
		Ref:     f.ref,
		Size:    size,
		WorkDir: workDir,
	})
	if err != nil {
		log.Warn("extraction failed, leaving frame unedited", "error", err)
		node.Metadata = map[string]any{tree.MetaError: err.Error()}
		return node, nil
	}

	elements := c.buildElements(nodeID, raw, f, size, log)

	if workDir != "" && len(elements) > 0 {
		c.writeOverlay(img, elements, workDir, log)
	}

	if len(elements) > 0 {
		node.CleanBackground = c.composeBackground(ctx, img, f, elements, workDir, log)
	}

	if f.depth < c.cfg.MaxDepth {
		for i := range elements {
			elements[i] = c.recurseInto(ctx, elements[i], f, nodeID, size, log)
		}
	}

	node.Elements = elements
	log.Info("frame analyzed",
		"elements", len(elements), "clean_background", node.CleanBackground != "")
	return node, nil
}

// buildElements converts raw extractor output into tree elements with
// global boxes in the root frame.
func (c *Controller) buildElements(nodeID string, raw []extract.RawElement, f frame, size geometry.Size, log *slog.Logger) []tree.Element {
	elements := make([]tree.Element, 0, len(raw))
	for idx, r := range raw {
		el := tree.Element{
			ID:          tree.ElementID(nodeID, idx),
			Type:        r.Type,
			BBox:        r.BBox,
			Content:     r.Content,
			SourceImage: r.SubImage,
			Metadata:    r.Meta,
		}

		if f.parentBoxGlobal == nil {
			el.BBoxGlobal = r.BBox
		} else {
			global, err := geometry.LocalToGlobal(r.BBox, *f.parentBoxGlobal, size)
			if err != nil {
				log.Warn("global box conversion failed", "element", el.ID, "error", err)
				el.BBoxGlobal = r.BBox
				el = el.WithMeta(MetaGeometryError, err.Error())
			} else {
				el.BBoxGlobal = global
			}
		}

		elements = append(elements, el)
	}
	return elements
}

// writeOverlay renders the detected boxes onto the frame as a numbered
// inspection artifact. Failures only cost the artifact.
func (c *Controller) writeOverlay(img image.Image, elements []tree.Element, workDir string, log *slog.Logger) {
	boxes := make([]geometry.Box, len(elements))
	for i, el := range elements {
		boxes[i] = el.BBox
	}
	overlay, err := imaging.DrawBoxes(img, boxes, "#ff3030")
	if err != nil {
		log.Debug("failed to render layout overlay", "error", err)
		return
	}
	path := filepath.Join(workDir, "layout_overlay.png")
	if err := imaging.WritePNG(overlay, path); err != nil {
		log.Debug("failed to write layout overlay", "error", err)
	}
}

// recurseInto applies the recursion-termination policy to one element
// and, when it qualifies, analyzes its sub-image as a child frame. A
// failed child analysis leaves the element as an annotated leaf; it
// never disturbs siblings.
func (c *Controller) recurseInto(ctx context.Context, el tree.Element, f frame, nodeID string, frameSize geometry.Size, log *slog.Logger) tree.Element {
	resolved, ok := c.shouldRecurse(el, frameSize, log)
	if !ok {
		return el
	}

	el = el.WithMeta(MetaResolvedPath, resolved)

	child, err := c.analyze(ctx, frame{
		ref:             resolved,
		depth:           f.depth + 1,
		parentID:        nodeID,
		parentBoxGlobal: &el.BBoxGlobal,
		typeHint:        el.Type,
		rootRef:         f.rootRef,
		rootSize:        f.rootSize,
		rootImage:       f.rootImage,
	})
	if err != nil {
		log.Warn("recursion into element failed", "element", el.ID, "error", err)
		return el.WithMeta(tree.MetaError, err.Error())
	}

	if child.LayoutArtifact != "" {
		el = el.WithMeta(MetaChildLayoutDir, child.LayoutArtifact)
	}
	return el.WithChildren(child.Elements, child.CleanBackground)
}

// shouldRecurse implements the termination policy. Checks run cheapest
// first and short-circuit; the returned string is the resolved absolute
// sub-image path when all checks pass.
func (c *Controller) shouldRecurse(el tree.Element, frameSize geometry.Size, log *slog.Logger) (string, bool) {
	if len(el.Children) > 0 {
		return "", false
	}
	if !c.cfg.isContainer(el.Type) {
		return "", false
	}
	if _, bad := el.Metadata[MetaGeometryError]; bad {
		return "", false
	}

	width, height := el.BBox.Width(), el.BBox.Height()
	if width < c.cfg.MinSize || height < c.cfg.MinSize {
		log.Debug("element below minimum size", "element", el.ID,
			"width", width, "height", height)
		return "", false
	}
	if el.BBox.Area() < c.cfg.MinArea {
		log.Debug("element below minimum area", "element", el.ID, "area", el.BBox.Area())
		return "", false
	}

	frameArea := frameSize.Area()
	if frameArea <= 0 {
		return "", false
	}
	if coverage := el.BBox.Area() / frameArea; coverage > c.cfg.MaxCoverageRatio {
		log.Debug("element covers the frame", "element", el.ID, "coverage", coverage)
		return "", false
	}

	if el.SourceImage == "" {
		return "", false
	}
	resolved, err := filepath.Abs(el.SourceImage)
	if err != nil {
		return "", false
	}
	if _, err := os.Stat(resolved); err != nil {
		log.Debug("sub-image not resolvable", "element", el.ID, "error", err)
		return "", false
	}
	return resolved, true
}
