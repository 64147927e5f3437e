package geometry

import (
	"errors"
	"fmt"
)

// ErrDegenerateFrame reports a coordinate conversion against a zero-area
// parent box or an empty local image. Callers must not attempt to map through
// such a frame; the conversion would otherwise produce infinities.
var ErrDegenerateFrame = errors.New("geometry: degenerate parent frame")

// LocalToGlobal converts a box from the frame of a sub-image into the frame
// that parentBox is expressed in.
//
// parentBox is the sub-image's position within the target frame, and
// localSize is the sub-image's own pixel dimensions. The conversion scales
// the local box by parentBox size / localSize and then translates it to
// parentBox's origin.
//
// The function is pure. It fails with ErrDegenerateFrame if parentBox has a
// non-positive width or height, or if localSize is empty.
func LocalToGlobal(local Box, parentBox Box, localSize Size) (Box, error) {
	if err := checkFrame(parentBox, localSize); err != nil {
		return Box{}, err
	}
	sx := parentBox.Width() / float64(localSize.Width)
	sy := parentBox.Height() / float64(localSize.Height)
	return local.Scale(sx, sy).Translate(parentBox.X0, parentBox.Y0), nil
}

// GlobalToLocal is the exact algebraic inverse of LocalToGlobal: it converts
// a box from parentBox's frame back into the sub-image's own pixel frame.
//
// Round-tripping GlobalToLocal(LocalToGlobal(b)) returns b up to
// floating-point tolerance.
func GlobalToLocal(global Box, parentBox Box, localSize Size) (Box, error) {
	if err := checkFrame(parentBox, localSize); err != nil {
		return Box{}, err
	}
	sx := float64(localSize.Width) / parentBox.Width()
	sy := float64(localSize.Height) / parentBox.Height()
	return global.Translate(-parentBox.X0, -parentBox.Y0).Scale(sx, sy), nil
}

func checkFrame(parentBox Box, localSize Size) error {
	if parentBox.Width() <= 0 || parentBox.Height() <= 0 {
		return fmt.Errorf("%w: parent box %.1fx%.1f", ErrDegenerateFrame, parentBox.Width(), parentBox.Height())
	}
	if localSize.Width <= 0 || localSize.Height <= 0 {
		return fmt.Errorf("%w: local image %dx%d", ErrDegenerateFrame, localSize.Width, localSize.Height)
	}
	return nil
}
