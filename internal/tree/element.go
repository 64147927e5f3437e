// Package tree defines the element tree produced by recursive image
// decomposition.
//
// An ImageNode describes one analyzed image frame (the root slide bitmap or
// any embedded sub-image). Its Elements carry two boxes each: BBox in the
// frame they were detected in, and BBoxGlobal re-expressed in the root
// image's frame. Elements that were recursed into carry the child frame's
// elements as Children.
//
// Nodes and elements are result values: each subtree is exclusively owned by
// the call that produced it and is never mutated after being returned. Parent
// linkage is conveyed by ParentID and by BBoxGlobal already being in the root
// frame; there are no back-pointers.
package tree

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ironsheep/image-decompose/internal/geometry"
)

// Element is one detected region within the image it was extracted from.
type Element struct {
	// ID is unique within the whole tree.
	ID string `json:"id"`

	// Type is an open tag such as "text", "table_cell", "image", "figure"
	// or "chart". The capability registries key on this value; new types
	// need no code changes in the recursion controller.
	Type string `json:"type"`

	// BBox is the region in the frame of the image it was extracted from.
	BBox geometry.Box `json:"bbox"`

	// BBoxGlobal is the same region in the root image's frame.
	BBoxGlobal geometry.Box `json:"bbox_global"`

	// Content holds extracted text or markup, if any.
	Content string `json:"content,omitempty"`

	// SourceImage references a sub-image file, present only for
	// container-like types (image/table/figure/chart).
	SourceImage string `json:"source_image,omitempty"`

	// Children is populated only by recursion into this element's own
	// sub-image; empty for leaves.
	Children []Element `json:"children,omitempty"`

	// RepairedBackground references the cleaned version of this element's
	// own sub-image, set only when recursion occurred.
	RepairedBackground string `json:"repaired_background,omitempty"`

	// Metadata is an open provenance bag (resolved file paths, raw
	// extractor payload, error annotations).
	Metadata map[string]any `json:"metadata,omitempty"`
}

// WithChildren returns a copy of the element carrying the given child
// subtree and repaired background. The receiver is not modified; recursion
// results are attached functionally, never by back-mutation.
func (e Element) WithChildren(children []Element, repairedBackground string) Element {
	out := e
	out.Children = children
	out.RepairedBackground = repairedBackground
	return out
}

// WithMeta returns a copy of the element with one metadata key set.
// The metadata map is copied so sibling copies never alias.
func (e Element) WithMeta(key string, value any) Element {
	out := e
	out.Metadata = make(map[string]any, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		out.Metadata[k] = v
	}
	out.Metadata[key] = value
	return out
}

// Walk calls fn for this element and every descendant, depth-first in
// document order.
func (e Element) Walk(fn func(Element)) {
	fn(e)
	for _, child := range e.Children {
		child.Walk(fn)
	}
}

// NewID returns a short opaque identifier for elements and nodes.
func NewID() string {
	return uuid.NewString()[:8]
}

// ElementID derives a child element identifier from its node's identifier
// and the element's index within the frame.
func ElementID(nodeID string, idx int) string {
	return fmt.Sprintf("%s_%d", nodeID, idx)
}
