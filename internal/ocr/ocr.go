// Package ocr provides optical character recognition via Tesseract
// (gosseract bindings), used by the offline extractors to attach text
// content to proposed regions and table cells.
//
// OCR is CPU-intensive; callers crop to regions of interest before
// recognizing rather than running whole images through Tesseract per region.
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Word is one recognized word with its location and confidence.
type Word struct {
	// Text is the recognized word.
	Text string `json:"text"`

	// Confidence is the recognition confidence (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// X1, Y1, X2, Y2 bound the word in the recognized image's pixels.
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Result holds the outcome of recognizing one image or region.
type Result struct {
	// Text is all recognized text with original spacing preserved,
	// trimmed of surrounding whitespace.
	Text string `json:"text"`

	// Words holds word-level results. May be empty when word geometry is
	// unavailable; Text is still populated in that case.
	Words []Word `json:"words,omitempty"`
}

// Recognizer turns pixel regions into text. The interface exists so
// extractors can be tested without a Tesseract installation.
type Recognizer interface {
	Recognize(img image.Image) (*Result, error)
}

// Tesseract is the production Recognizer. The zero value uses Tesseract's
// default language; set Language to override (e.g. "eng", "deu").
//
// Each Recognize call uses a fresh gosseract client, so a single Tesseract
// value is safe for concurrent use by batch workers.
type Tesseract struct {
	Language string
}

// Recognize runs OCR over the whole image and returns the recognized text
// with word-level boxes in the image's own pixel frame.
func (t Tesseract) Recognize(img image.Image) (*Result, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if t.Language != "" {
		if err := client.SetLanguage(t.Language); err != nil {
			return nil, fmt.Errorf("failed to set language: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	result := &Result{Text: strings.TrimSpace(text)}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Word geometry is best-effort; the text alone is still useful.
		return result, nil
	}

	min := img.Bounds().Min
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		result.Words = append(result.Words, Word{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			X1:         box.Box.Min.X - min.X,
			Y1:         box.Box.Min.Y - min.Y,
			X2:         box.Box.Max.X - min.X,
			Y2:         box.Box.Max.Y - min.Y,
		})
	}

	return result, nil
}
