package detection

import "image"

// CellGrid describes a recovered table structure: the ruling-line positions
// and the cell boxes between them.
type CellGrid struct {
	// RowLines are the Y positions of horizontal ruling lines, ascending.
	RowLines []int `json:"row_lines"`

	// ColLines are the X positions of vertical ruling lines, ascending.
	ColLines []int `json:"col_lines"`

	// Cells holds one entry per grid cell, row-major. Row and Col are
	// 0-based grid coordinates.
	Cells []Cell `json:"cells"`
}

// Cell is one table cell recovered from ruling lines.
type Cell struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Bounds Bounds `json:"bounds"`
}

// DetectCellGrid recovers a table's cell structure from its ruling lines.
//
// Edge pixels are projected onto each axis; rows and columns where the edge
// fraction exceeds minLineFill are treated as ruling lines. Adjacent line
// positions are collapsed to their first position, and the rectangles
// between consecutive rulings become cells.
//
// Returns nil if fewer than two rulings are found on either axis, i.e. the
// image does not look like a ruled table.
func DetectCellGrid(img image.Image, minLineFill float64) *CellGrid {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width < 2 || height < 2 {
		return nil
	}

	edges := detectEdges(img, width, height)

	rowLines := projectLines(height, width, minLineFill, func(i, j int) bool { return edges[i][j] })
	colLines := projectLines(width, height, minLineFill, func(i, j int) bool { return edges[j][i] })

	if len(rowLines) < 2 || len(colLines) < 2 {
		return nil
	}

	grid := &CellGrid{RowLines: rowLines, ColLines: colLines}
	for r := 0; r < len(rowLines)-1; r++ {
		for c := 0; c < len(colLines)-1; c++ {
			grid.Cells = append(grid.Cells, Cell{
				Row: r,
				Col: c,
				Bounds: Bounds{
					X1: colLines[c] + bounds.Min.X,
					Y1: rowLines[r] + bounds.Min.Y,
					X2: colLines[c+1] + bounds.Min.X,
					Y2: rowLines[r+1] + bounds.Min.Y,
				},
			})
		}
	}
	return grid
}

// projectLines scans the primary axis (length n, cross-axis length m) and
// returns positions where at least minFill of the cross-axis pixels are
// edges. A ruling stroke produces edge responses on both of its sides, so
// positions closer than a few pixels are collapsed into one ruling.
func projectLines(n, m int, minFill float64, edgeAt func(i, j int) bool) []int {
	const minGap = 4

	var lines []int
	for i := 0; i < n; i++ {
		count := 0
		for j := 0; j < m; j++ {
			if edgeAt(i, j) {
				count++
			}
		}
		if float64(count)/float64(m) < minFill {
			continue
		}
		if len(lines) > 0 && i-lines[len(lines)-1] < minGap {
			continue
		}
		lines = append(lines, i)
	}
	return lines
}
