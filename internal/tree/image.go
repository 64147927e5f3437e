package tree

import (
	"fmt"

	"github.com/ironsheep/image-decompose/internal/geometry"
)

// MetaError is the metadata key carrying a recovered failure annotation.
// A node with this key set degraded to "leave this region unedited" instead
// of aborting its siblings or ancestors.
const MetaError = "error"

// ImageNode is the per-recursion-level result record.
//
// One node is created per call into the recursion controller, fully populated
// before return and immutable afterwards.
type ImageNode struct {
	// ID is unique within the whole tree.
	ID string `json:"id"`

	// SourceImage is the analyzed image file.
	SourceImage string `json:"source_image"`

	// Width and Height are the image's pixel dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Depth is the recursion depth; 0 is the root.
	Depth int `json:"depth"`

	// ParentID identifies the node whose element this frame was cropped
	// from. Empty at the root.
	ParentID string `json:"parent_id,omitempty"`

	// Elements are the regions detected in this frame, in extraction order.
	Elements []Element `json:"elements"`

	// CleanBackground references the whole-frame repaired background, if
	// one was produced.
	CleanBackground string `json:"clean_background,omitempty"`

	// LayoutArtifact is an opaque handle to whatever intermediate artifact
	// the extraction backend produced (a result directory, typically).
	// Needed later for resolving sub-image file paths.
	LayoutArtifact string `json:"layout_artifact,omitempty"`

	// Metadata is an open provenance bag; see MetaError.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Size returns the node's pixel dimensions.
func (n ImageNode) Size() geometry.Size {
	return geometry.Size{Width: n.Width, Height: n.Height}
}

// Err returns the recovered failure annotation, if any.
func (n ImageNode) Err() (string, bool) {
	if n.Metadata == nil {
		return "", false
	}
	msg, ok := n.Metadata[MetaError].(string)
	return msg, ok && msg != ""
}

// Walk calls fn for every element in the tree, depth-first in document order.
func (n ImageNode) Walk(fn func(Element)) {
	for _, el := range n.Elements {
		el.Walk(fn)
	}
}

// Validate checks the structural invariants of a finished tree:
// element ids are unique across the whole tree, and every element with
// children carries a resolved sub-image reference.
func (n ImageNode) Validate() error {
	seen := make(map[string]struct{})
	var err error
	n.Walk(func(el Element) {
		if err != nil {
			return
		}
		if _, dup := seen[el.ID]; dup {
			err = fmt.Errorf("tree: duplicate element id %q", el.ID)
			return
		}
		seen[el.ID] = struct{}{}
		if len(el.Children) > 0 && el.SourceImage == "" {
			err = fmt.Errorf("tree: element %q has children but no source image", el.ID)
		}
	})
	return err
}
