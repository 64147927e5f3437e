// Package textattr estimates rendering attributes of text captured in a
// raster crop: ink color, boldness, and slant. The estimates feed element
// metadata so regenerated text can match the source styling.
package textattr

import (
	"errors"
	"image"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrNoInk indicates the crop contains no pixels that look like text.
var ErrNoInk = errors.New("textattr: no ink pixels found")

// Attributes describes the visual styling of a text crop.
type Attributes struct {
	// Color is the dominant ink color as a #rrggbb hex string.
	Color string `json:"color"`

	Bold   bool `json:"bold"`
	Italic bool `json:"italic"`

	// Confidence reflects how cleanly ink separated from background,
	// in [0,1].
	Confidence float64 `json:"confidence"`
}

// Strategy analyzes a text crop. Implementations must be safe for
// concurrent use.
type Strategy interface {
	Analyze(img image.Image) (Attributes, error)
}

// Heuristic estimates attributes from pixel statistics alone: ink is the
// minority luminance cluster, boldness comes from stroke run lengths, and
// slant from the horizontal drift of ink between the top and bottom of
// the crop.
type Heuristic struct {
	// BoldRunLength is the mean horizontal ink run, in pixels, above
	// which strokes count as bold.
	BoldRunLength float64

	// ItalicSlant is the horizontal centroid drift, as a fraction of
	// crop height, above which the text counts as slanted.
	ItalicSlant float64
}

// NewHeuristic returns a heuristic analyzer with the default thresholds.
func NewHeuristic() *Heuristic {
	return &Heuristic{
		BoldRunLength: 3.5,
		ItalicSlant:   0.08,
	}
}

// Analyze implements Strategy.
func (h *Heuristic) Analyze(img image.Image) (Attributes, error) {
	ink, bg, mask, err := splitInk(img)
	if err != nil {
		return Attributes{}, err
	}

	attrs := Attributes{
		Color:      ink.Clamped().Hex(),
		Bold:       meanRunLength(mask) >= h.BoldRunLength,
		Italic:     slantRatio(mask) >= h.ItalicSlant,
		Confidence: clamp01(ink.DistanceLab(bg)),
	}
	return attrs, nil
}

// splitInk partitions pixels into ink and background clusters around the
// mean luminance and averages each side. The minority cluster is the ink.
func splitInk(img image.Image) (ink, bg colorful.Color, mask [][]bool, err error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return ink, bg, nil, ErrNoInk
	}

	lum := make([][]float64, height)
	var total float64
	for y := 0; y < height; y++ {
		lum[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			c, _ := colorful.MakeColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			_, _, l := c.Hsl()
			lum[y][x] = l
			total += l
		}
	}
	threshold := total / float64(width*height)

	var darkSum, lightSum colorSum
	dark := make([][]bool, height)
	for y := 0; y < height; y++ {
		dark[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			c, _ := colorful.MakeColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			if lum[y][x] < threshold {
				dark[y][x] = true
				darkSum.add(c)
			} else {
				lightSum.add(c)
			}
		}
	}

	if darkSum.n == 0 || lightSum.n == 0 {
		return ink, bg, nil, ErrNoInk
	}

	// Text crops are mostly background; the smaller cluster is ink.
	if darkSum.n <= lightSum.n {
		return darkSum.mean(), lightSum.mean(), dark, nil
	}
	inverted := make([][]bool, height)
	for y := range dark {
		inverted[y] = make([]bool, width)
		for x := range dark[y] {
			inverted[y][x] = !dark[y][x]
		}
	}
	return lightSum.mean(), darkSum.mean(), inverted, nil
}

type colorSum struct {
	r, g, b float64
	n       int
}

func (s *colorSum) add(c colorful.Color) {
	s.r += c.R
	s.g += c.G
	s.b += c.B
	s.n++
}

func (s *colorSum) mean() colorful.Color {
	n := float64(s.n)
	return colorful.Color{R: s.r / n, G: s.g / n, B: s.b / n}
}

// meanRunLength averages the horizontal ink run lengths, a proxy for
// stroke width.
func meanRunLength(mask [][]bool) float64 {
	var sum, runs int
	for _, row := range mask {
		run := 0
		for _, ink := range row {
			if ink {
				run++
				continue
			}
			if run > 0 {
				sum += run
				runs++
				run = 0
			}
		}
		if run > 0 {
			sum += run
			runs++
		}
	}
	if runs == 0 {
		return 0
	}
	return float64(sum) / float64(runs)
}

// slantRatio measures how far the ink's horizontal centroid drifts from
// the bottom third of the crop to the top third, relative to crop height.
// Upright text drifts near zero; italics lean right going up.
func slantRatio(mask [][]bool) float64 {
	height := len(mask)
	if height < 3 {
		return 0
	}
	third := height / 3

	topX, topN := centroidX(mask[:third])
	bottomX, bottomN := centroidX(mask[height-third:])
	if topN == 0 || bottomN == 0 {
		return 0
	}

	drift := topX - bottomX
	if drift < 0 {
		drift = -drift
	}
	return drift / float64(height)
}

func centroidX(rows [][]bool) (float64, int) {
	var sum float64
	var n int
	for _, row := range rows {
		for x, ink := range row {
			if ink {
				sum += float64(x)
				n++
			}
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
