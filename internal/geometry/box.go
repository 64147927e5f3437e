// Package geometry provides the axis-aligned box type and the coordinate
// frame conversions used throughout the decomposition engine.
//
// # Coordinate System
//
// All coordinates follow the standard image convention:
//   - Origin (0, 0) at the top-left corner
//   - X increases rightward
//   - Y increases downward
//
// A "frame" is the pixel coordinate space of one specific image. Boxes are
// always expressed relative to a frame; converting a box between the frame of
// a sub-image and the frame of an ancestor image is the job of LocalToGlobal
// and GlobalToLocal.
package geometry

// Box is an axis-aligned bounding box with floating-point bounds.
//
// The invariant X1 >= X0 and Y1 >= Y0 is expected but not enforced;
// degenerate boxes are legal and carry zero area.
type Box struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box.
func (b Box) Height() float64 { return b.Y1 - b.Y0 }

// Area returns Width() * Height().
func (b Box) Area() float64 { return b.Width() * b.Height() }

// Scale returns a copy of the box with all bounds multiplied by the given
// per-axis factors. The receiver is not modified.
func (b Box) Scale(sx, sy float64) Box {
	return Box{
		X0: b.X0 * sx,
		Y0: b.Y0 * sy,
		X1: b.X1 * sx,
		Y1: b.Y1 * sy,
	}
}

// Translate returns a copy of the box shifted by the given offsets.
// The receiver is not modified.
func (b Box) Translate(dx, dy float64) Box {
	return Box{
		X0: b.X0 + dx,
		Y0: b.Y0 + dy,
		X1: b.X1 + dx,
		Y1: b.Y1 + dy,
	}
}

// Inset returns a copy of the box shrunk inward by the given amount on every
// side. The result may be degenerate or inverted; callers that care should
// check Width/Height afterwards.
func (b Box) Inset(amount float64) Box {
	return Box{
		X0: b.X0 + amount,
		Y0: b.Y0 + amount,
		X1: b.X1 - amount,
		Y1: b.Y1 - amount,
	}
}

// Expand returns a copy of the box grown outward by the given amount on every
// side, clamped to the frame [0, w] x [0, h].
func (b Box) Expand(amount, w, h float64) Box {
	out := Box{
		X0: b.X0 - amount,
		Y0: b.Y0 - amount,
		X1: b.X1 + amount,
		Y1: b.Y1 + amount,
	}
	if out.X0 < 0 {
		out.X0 = 0
	}
	if out.Y0 < 0 {
		out.Y0 = 0
	}
	if out.X1 > w {
		out.X1 = w
	}
	if out.Y1 > h {
		out.Y1 = h
	}
	return out
}

// Size holds pixel dimensions of an image frame.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns Width * Height as a float for ratio math.
func (s Size) Area() float64 { return float64(s.Width) * float64(s.Height) }
