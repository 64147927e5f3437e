package extract

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"codeberg.org/go-pdf/fpdf"
)

// imageToPDF wraps a single image into a one-page PDF whose page size in
// points equals the image size in pixels, so that layout coordinates coming
// back from the backend map 1:1 onto the image's pixel frame.
//
// The layout backend accepts PDFs only; this is the preprocessing step in
// front of it.
func imageToPDF(img image.Image) ([]byte, error) {
	w := float64(img.Bounds().Dx())
	h := float64(img.Bounds().Dy())
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("cannot convert empty image to PDF")
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("failed to encode page image: %w", err)
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("frame", opts, bytes.NewReader(pngBuf.Bytes()))
	pdf.ImageOptions("frame", 0, 0, w, h, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
