package decompose

import (
	"testing"

	"github.com/ironsheep/image-decompose/internal/geometry"
	"github.com/ironsheep/image-decompose/internal/tree"
)

func TestEraseBoxes_CoverageCutoff(t *testing.T) {
	frame := geometry.Size{Width: 1000, Height: 1000}

	tests := []struct {
		name     string
		box      geometry.Box
		included bool
	}{
		{
			name:     "94 percent coverage is erased",
			box:      geometry.Box{X0: 0, Y0: 0, X1: 1000, Y1: 940},
			included: true,
		},
		{
			name:     "95 percent coverage is a whole-frame false positive",
			box:      geometry.Box{X0: 0, Y0: 0, X1: 1000, Y1: 950},
			included: false,
		},
		{
			name:     "full frame excluded",
			box:      geometry.Box{X0: 0, Y0: 0, X1: 1000, Y1: 1000},
			included: false,
		},
		{
			name:     "small box included",
			box:      geometry.Box{X0: 10, Y0: 10, X1: 100, Y1: 50},
			included: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			elements := []tree.Element{{ID: "e", Type: "text", BBox: tc.box}}
			boxes := EraseBoxes(elements, frame, 0.95, 0)
			if got := len(boxes) == 1; got != tc.included {
				t.Errorf("included = %v, want %v", got, tc.included)
			}
		})
	}
}

func TestEraseBoxes_MarginExpansionClamped(t *testing.T) {
	frame := geometry.Size{Width: 200, Height: 100}
	elements := []tree.Element{{
		ID: "e", Type: "text",
		BBox: geometry.Box{X0: 5, Y0: 40, X1: 150, Y1: 60},
	}}

	boxes := EraseBoxes(elements, frame, 0.95, 10)
	if len(boxes) != 1 {
		t.Fatalf("got %d boxes, want 1", len(boxes))
	}
	b := boxes[0]
	if b.X0 != 0 {
		t.Errorf("left edge should clamp to the frame, got %g", b.X0)
	}
	if b.Y0 != 30 || b.X1 != 160 || b.Y1 != 70 {
		t.Errorf("expanded box = %+v, want (0,30,160,70)", b)
	}
}

func TestEraseBoxes_ChildBoxesIgnored(t *testing.T) {
	frame := geometry.Size{Width: 500, Height: 500}
	elements := []tree.Element{{
		ID: "parent", Type: "figure",
		BBox: geometry.Box{X0: 0, Y0: 0, X1: 300, Y1: 300},
		Children: []tree.Element{
			{ID: "child", Type: "text", BBox: geometry.Box{X0: 10, Y0: 10, X1: 50, Y1: 50}},
		},
	}}

	boxes := EraseBoxes(elements, frame, 0.95, 0)
	if len(boxes) != 1 {
		t.Fatalf("child regions must not contribute erase boxes: got %d", len(boxes))
	}
}

func TestEraseBoxes_DegenerateFrame(t *testing.T) {
	elements := []tree.Element{{ID: "e", BBox: geometry.Box{X1: 10, Y1: 10}}}
	if boxes := EraseBoxes(elements, geometry.Size{}, 0.95, 0); boxes != nil {
		t.Errorf("zero-area frame should erase nothing, got %v", boxes)
	}
}
