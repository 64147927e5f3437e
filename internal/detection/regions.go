package detection

import (
	"image"
	"math"
	"sort"
)

// ProposeTextRegions finds regions likely to contain text using a
// sliding-window edge-density scan.
//
// Text shows medium edge density with predominantly horizontal structure;
// windows of several typical line sizes are scored and overlapping hits are
// merged. Proposals below minConfidence are dropped.
func ProposeTextRegions(img image.Image, minConfidence float64) []Region {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	edges := detectEdges(img, width, height)

	windowSizes := []struct{ w, h int }{
		{80, 25},  // very small text
		{100, 30}, // small text
		{150, 40}, // medium text
		{200, 50}, // large text
	}

	var candidates []Region

	for _, ws := range windowSizes {
		stepX := ws.w / 2
		stepY := ws.h / 2

		for y := 0; y <= height-ws.h; y += stepY {
			for x := 0; x <= width-ws.w; x += stepX {
				edgeCount := 0
				for wy := 0; wy < ws.h; wy++ {
					for wx := 0; wx < ws.w; wx++ {
						if edges[y+wy][x+wx] {
							edgeCount++
						}
					}
				}

				density := float64(edgeCount) / float64(ws.w*ws.h)

				// Text has medium density: not sparse, not solid.
				if density < 0.05 || density > 0.4 {
					continue
				}

				horizontalScore := horizontalRunScore(edges, x, y, ws.w, ws.h)
				confidence := horizontalScore * (1.0 - math.Abs(density-0.2)/0.2)

				if confidence >= minConfidence {
					candidates = append(candidates, Region{
						Bounds: Bounds{
							X1: x + bounds.Min.X,
							Y1: y + bounds.Min.Y,
							X2: x + ws.w + bounds.Min.X,
							Y2: y + ws.h + bounds.Min.Y,
						},
						Type:       "text",
						Confidence: math.Round(confidence*1000) / 1000,
					})
				}
			}
		}
	}

	merged := mergeOverlapping(candidates)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Bounds.Y1 < merged[j].Bounds.Y1 ||
			(merged[i].Bounds.Y1 == merged[j].Bounds.Y1 && merged[i].Bounds.X1 < merged[j].Bounds.X1)
	})
	return merged
}

// ProposeFigureRegions finds large connected shapes and proposes them as
// figure or chart regions.
//
// Connected edge contours are grouped, bounded, and classified by
// rectangularity: contours whose length closely matches their bounding-box
// perimeter are framed content ("figure"); large irregular contours are
// plotted content ("chart"). Contours with bounding area below minArea are
// ignored.
func ProposeFigureRegions(img image.Image, minArea int) []Region {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	edges := detectEdges(img, width, height)
	contours := findContours(edges, width, height)

	var proposals []Region

	for _, contour := range contours {
		if len(contour) < 4 {
			continue
		}

		minX, minY := width, height
		maxX, maxY := 0, 0
		for _, p := range contour {
			minX = min(minX, p.X)
			maxX = max(maxX, p.X)
			minY = min(minY, p.Y)
			maxY = max(maxY, p.Y)
		}

		rectWidth := maxX - minX
		rectHeight := maxY - minY
		if rectWidth*rectHeight < minArea {
			continue
		}

		// A contour tracing a clean frame has length close to the
		// bounding-box perimeter; plotted content wanders well past it.
		expectedPerimeter := 2 * (rectWidth + rectHeight)
		rectangularity := 1.0 - math.Abs(float64(len(contour)-expectedPerimeter))/float64(expectedPerimeter)

		regionType := "figure"
		confidence := rectangularity
		if rectangularity < 0.6 {
			regionType = "chart"
			confidence = 1.0 - math.Max(0, rectangularity)
			if confidence > 1 {
				confidence = 1
			}
		}
		if confidence < 0.2 {
			continue
		}

		proposals = append(proposals, Region{
			Bounds: Bounds{
				X1: minX + bounds.Min.X,
				Y1: minY + bounds.Min.Y,
				X2: maxX + bounds.Min.X,
				Y2: maxY + bounds.Min.Y,
			},
			Type:       regionType,
			Confidence: math.Round(confidence*1000) / 1000,
		})
	}

	sort.Slice(proposals, func(i, j int) bool {
		return proposals[i].Bounds.Area() > proposals[j].Bounds.Area()
	})
	return proposals
}

// horizontalRunScore measures how "horizontal" the edge distribution is
// inside a window. Text typically has more horizontal runs than vertical.
func horizontalRunScore(edges [][]bool, x, y, w, h int) float64 {
	horizontalRuns := 0
	verticalRuns := 0

	for row := y; row < y+h; row++ {
		inRun := false
		for col := x; col < x+w; col++ {
			if edges[row][col] {
				if !inRun {
					horizontalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	for col := x; col < x+w; col++ {
		inRun := false
		for row := y; row < y+h; row++ {
			if edges[row][col] {
				if !inRun {
					verticalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	if horizontalRuns+verticalRuns == 0 {
		return 0
	}
	return float64(horizontalRuns) / float64(horizontalRuns+verticalRuns)
}

// mergeOverlapping combines overlapping proposals of the same type into
// their union, keeping the higher confidence.
func mergeOverlapping(regions []Region) []Region {
	if len(regions) == 0 {
		return regions
	}

	merged := make([]Region, 0)

	for _, r := range regions {
		foundMerge := false
		for i := range merged {
			if merged[i].Type == r.Type && regionsOverlap(r.Bounds, merged[i].Bounds) {
				merged[i].Bounds = mergeBounds(r.Bounds, merged[i].Bounds)
				merged[i].Confidence = math.Max(r.Confidence, merged[i].Confidence)
				foundMerge = true
				break
			}
		}
		if !foundMerge {
			merged = append(merged, r)
		}
	}

	return merged
}

// findContours finds connected components in a binary edge image using
// 8-connected flood fill. Contours smaller than 10 pixels are discarded as
// noise.
func findContours(edges [][]bool, width, height int) [][]Point {
	visited := make([][]bool, height)
	for y := 0; y < height; y++ {
		visited[y] = make([]bool, width)
	}

	contours := make([][]Point, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges[y][x] && !visited[y][x] {
				contour := make([]Point, 0)
				floodFill(edges, visited, x, y, width, height, &contour)
				if len(contour) >= 10 {
					contours = append(contours, contour)
				}
			}
		}
	}

	return contours
}

// floodFill performs iterative stack-based flood fill from a starting point,
// marking visited pixels and appending them to the contour.
func floodFill(edges, visited [][]bool, startX, startY, width, height int, contour *[]Point) {
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !edges[p.Y][p.X] {
			continue
		}

		visited[p.Y][p.X] = true
		*contour = append(*contour, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
}
