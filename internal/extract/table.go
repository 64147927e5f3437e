package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ironsheep/image-decompose/internal/detection"
	"github.com/ironsheep/image-decompose/internal/imaging"
	"github.com/ironsheep/image-decompose/internal/ocr"
)

// Table decomposes a ruled table image into per-cell elements. It is
// registered for frames already classified as tables, where generic layout
// extraction would lump the whole grid into one block.
type Table struct {
	OCR ocr.Recognizer
	Log *slog.Logger

	// MinLineFill is the fraction of a row or column that must be edge
	// pixels for it to count as a ruling line.
	MinLineFill float64

	// CellInset shrinks each cell box before OCR so the ruling strokes
	// do not pollute recognition.
	CellInset float64
}

// NewTable returns a table extractor with workable defaults.
func NewTable(rec ocr.Recognizer, log *slog.Logger) *Table {
	return &Table{
		OCR:         rec,
		Log:         log,
		MinLineFill: 0.5,
		CellInset:   4,
	}
}

// Extract implements Extractor.
func (t *Table) Extract(ctx context.Context, req Request) ([]RawElement, error) {
	grid := detection.DetectCellGrid(req.Image, t.MinLineFill)
	if grid == nil {
		return nil, fmt.Errorf("%w: no ruling grid detected", ErrNoElements)
	}

	var elements []RawElement
	for _, cell := range grid.Cells {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		box := cell.Bounds.Box().Inset(t.CellInset)
		if box.Width() <= 0 || box.Height() <= 0 {
			continue
		}
		crop, err := imaging.SubImage(req.Image, box)
		if err != nil {
			continue
		}
		result, err := t.OCR.Recognize(crop)
		if err != nil {
			t.Log.Debug("ocr failed on cell", "ref", req.Ref,
				"row", cell.Row, "col", cell.Col, "error", err)
			continue
		}
		text := strings.TrimSpace(result.Text)
		if text == "" {
			continue
		}
		elements = append(elements, RawElement{
			Type:    "table_cell",
			BBox:    box,
			Content: text,
			Meta: map[string]any{
				"row": cell.Row,
				"col": cell.Col,
			},
		})
	}

	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: grid detected but no cell yielded text", ErrNoElements)
	}

	t.Log.Debug("table extraction complete", "ref", req.Ref,
		"rows", len(grid.RowLines)-1, "cols", len(grid.ColLines)-1,
		"cells", len(elements))
	return elements, nil
}
