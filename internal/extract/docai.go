package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/ironsheep/image-decompose/internal/geometry"
	"github.com/ironsheep/image-decompose/internal/imaging"
)

// LayoutConfig identifies the Document AI layout processor to call.
type LayoutConfig struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"`
	ProcessorID string `yaml:"processor_id"`

	// CredentialsFile is a service-account key file. Empty uses the
	// ambient application default credentials.
	CredentialsFile string `yaml:"credentials_file"`
}

// Enabled reports whether the config names a processor.
func (c LayoutConfig) Enabled() bool {
	return c.ProjectID != "" && c.ProcessorID != ""
}

// Layout extracts elements by sending the frame to a Google Document AI
// layout processor. This is a slow, rate-limited network call; the
// recursion controller serializes calls within one image tree and bounds
// concurrency across trees.
//
// The frame is wrapped into a single-page PDF sized 1pt per pixel before
// upload, so returned layout coordinates translate directly to the frame's
// pixels.
type Layout struct {
	cfg LayoutConfig
	log *slog.Logger
}

// NewLayout returns a Document AI backed extractor.
func NewLayout(cfg LayoutConfig, log *slog.Logger) *Layout {
	return &Layout{cfg: cfg, log: log}
}

// Extract implements Extractor.
func (l *Layout) Extract(ctx context.Context, req Request) ([]RawElement, error) {
	pdfBytes, err := imageToPDF(req.Image)
	if err != nil {
		return nil, err
	}

	doc, err := l.process(ctx, pdfBytes)
	if err != nil {
		return nil, err
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%w: backend returned no pages", ErrNoElements)
	}

	page := doc.Pages[0]
	var elements []RawElement

	for _, para := range page.Paragraphs {
		box, ok := layoutBox(para.Layout, req.Size)
		if !ok {
			continue
		}
		content := strings.TrimSpace(textFromLayout(para.Layout, doc.Text))
		if content == "" {
			continue
		}
		elements = append(elements, RawElement{
			Type:    "text",
			BBox:    box,
			Content: content,
		})
	}

	for _, table := range page.Tables {
		box, ok := layoutBox(table.Layout, req.Size)
		if !ok {
			continue
		}
		el := RawElement{
			Type: "table",
			BBox: box,
			Meta: map[string]any{
				"rows": len(table.BodyRows),
			},
		}
		l.materializeCrop(&el, req, len(elements))
		elements = append(elements, el)
	}

	for _, visual := range page.VisualElements {
		box, ok := layoutBox(visual.Layout, req.Size)
		if !ok {
			continue
		}
		elType := "figure"
		if visual.Type == "image" {
			elType = "image"
		}
		el := RawElement{Type: elType, BBox: box}
		l.materializeCrop(&el, req, len(elements))
		elements = append(elements, el)
	}

	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: page had no mappable layout entities", ErrNoElements)
	}

	l.log.Debug("layout extraction complete",
		"ref", req.Ref, "elements", len(elements))
	return elements, nil
}

// process sends PDF bytes to Document AI and returns the document proto.
func (l *Layout) process(ctx context.Context, pdfBytes []byte) (*documentaipb.Document, error) {
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", l.cfg.Location)

	opts := []option.ClientOption{option.WithEndpoint(endpoint)}
	if l.cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(l.cfg.CredentialsFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}
	defer client.Close()

	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		l.cfg.ProjectID, l.cfg.Location, l.cfg.ProcessorID)

	resp, err := client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  pdfBytes,
				MimeType: "application/pdf",
			},
		},
		SkipHumanReview: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}

	return resp.Document, nil
}

// materializeCrop cuts the element's region out of the frame and records it
// as the element's sub-image, so recursion has real pixel data to descend
// into. Failures are logged and leave the element without a sub-image,
// which simply disqualifies it from recursion.
func (l *Layout) materializeCrop(el *RawElement, req Request, idx int) {
	if req.WorkDir == "" {
		return
	}
	path := filepath.Join(req.WorkDir, "crops", fmt.Sprintf("%s_%d.png", el.Type, idx))
	if err := imaging.CropToFile(req.Image, el.BBox, path); err != nil {
		l.log.Warn("failed to materialize sub-image", "ref", req.Ref, "error", err)
		return
	}
	el.SubImage = path
}

// layoutBox converts a layout's normalized bounding polygon to a pixel box
// in the frame. Degenerate or missing polygons report ok=false.
func layoutBox(layout *documentaipb.Document_Page_Layout, size geometry.Size) (geometry.Box, bool) {
	if layout == nil || layout.BoundingPoly == nil || len(layout.BoundingPoly.NormalizedVertices) < 4 {
		return geometry.Box{}, false
	}
	v := layout.BoundingPoly.NormalizedVertices
	box := geometry.Box{
		X0: float64(v[0].X) * float64(size.Width),
		Y0: float64(v[0].Y) * float64(size.Height),
		X1: float64(v[2].X) * float64(size.Width),
		Y1: float64(v[2].Y) * float64(size.Height),
	}
	if box.Width() <= 0 || box.Height() <= 0 {
		return geometry.Box{}, false
	}
	return box, true
}

// textFromLayout resolves a layout's text anchor segments against the
// document's full text.
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	if layout == nil || layout.TextAnchor == nil {
		return ""
	}
	runes := []rune(fullText)
	var sb strings.Builder
	for _, seg := range layout.TextAnchor.TextSegments {
		start := int(seg.StartIndex)
		end := int(seg.EndIndex)
		if start < 0 {
			start = 0
		}
		if end > len(runes) {
			end = len(runes)
		}
		if start > end {
			start = end
		}
		sb.WriteString(string(runes[start:end]))
	}
	return sb.String()
}
