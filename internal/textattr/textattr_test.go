package textattr

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// textCrop paints vertical strokes of the given width and slant onto a
// white canvas, roughly imitating rendered glyph stems.
func textCrop(width, height, strokeWidth int, slantPerRow float64, ink color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	for start := 10; start < width-10; start += 16 {
		for y := 4; y < height-4; y++ {
			shift := int(float64(height-y) * slantPerRow)
			for dx := 0; dx < strokeWidth; dx++ {
				x := start + shift + dx
				if x >= 0 && x < width {
					img.SetRGBA(x, y, ink)
				}
			}
		}
	}
	return img
}

func TestHeuristic_InkColor(t *testing.T) {
	ink := color.RGBA{R: 180, G: 20, B: 30, A: 255}
	img := textCrop(200, 40, 2, 0, ink)

	attrs, err := NewHeuristic().Analyze(img)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if attrs.Color == "" || attrs.Color[0] != '#' {
		t.Fatalf("expected hex color, got %q", attrs.Color)
	}
	// Red channel dominates a dark red ink.
	if attrs.Color[1] == '0' {
		t.Errorf("ink color %q lost the red channel", attrs.Color)
	}
	if attrs.Confidence <= 0 {
		t.Errorf("confidence should be positive, got %f", attrs.Confidence)
	}
}

func TestHeuristic_BoldDetection(t *testing.T) {
	black := color.RGBA{A: 255}

	thin := textCrop(200, 40, 2, 0, black)
	attrs, err := NewHeuristic().Analyze(thin)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if attrs.Bold {
		t.Error("2px strokes flagged bold")
	}

	heavy := textCrop(200, 40, 6, 0, black)
	attrs, err = NewHeuristic().Analyze(heavy)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !attrs.Bold {
		t.Error("6px strokes not flagged bold")
	}
}

func TestHeuristic_ItalicDetection(t *testing.T) {
	black := color.RGBA{A: 255}

	upright := textCrop(200, 40, 2, 0, black)
	attrs, err := NewHeuristic().Analyze(upright)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if attrs.Italic {
		t.Error("upright strokes flagged italic")
	}

	slanted := textCrop(200, 40, 2, 0.25, black)
	attrs, err = NewHeuristic().Analyze(slanted)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !attrs.Italic {
		t.Error("slanted strokes not flagged italic")
	}
}

func TestHeuristic_BlankCrop(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 50; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	if _, err := NewHeuristic().Analyze(img); !errors.Is(err, ErrNoInk) {
		t.Fatalf("expected ErrNoInk, got %v", err)
	}
}

func TestHeuristic_EmptyImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if _, err := NewHeuristic().Analyze(img); !errors.Is(err, ErrNoInk) {
		t.Fatalf("expected ErrNoInk, got %v", err)
	}
}

func TestMeanRunLength(t *testing.T) {
	mask := [][]bool{
		{true, true, false, true, true, true, false},
		{false, false, false, false, false, false, false},
	}
	got := meanRunLength(mask)
	if got != 2.5 {
		t.Errorf("meanRunLength = %f, want 2.5", got)
	}
}
