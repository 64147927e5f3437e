package repair

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/ironsheep/image-decompose/internal/geometry"
	"github.com/ironsheep/image-decompose/internal/imaging"
)

// GenerativeConfig points at an image-editing inpaint endpoint.
type GenerativeConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`

	// Timeout bounds a single inpaint call. Zero uses a 60s default.
	Timeout time.Duration `yaml:"timeout"`
}

// Enabled reports whether an endpoint is configured.
func (c GenerativeConfig) Enabled() bool { return c.Endpoint != "" }

// Generative delegates background filling to a remote inpainting model.
// The frame and its erase mask are uploaded; for nested frames the root
// image and crop box ride along so the model can match the surrounding
// slide, not just the crop.
type Generative struct {
	cfg    GenerativeConfig
	client *http.Client
}

// NewGenerative returns a strategy backed by the configured endpoint.
func NewGenerative(cfg GenerativeConfig) *Generative {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Generative{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type inpaintRequest struct {
	Image  string          `json:"image"`
	Mask   string          `json:"mask"`
	Prompt string          `json:"prompt"`
	Root   string          `json:"context_image,omitempty"`
	Crop   *inpaintCropBox `json:"context_crop,omitempty"`
}

type inpaintCropBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

type inpaintResponse struct {
	Image string `json:"image"`
	Error string `json:"error,omitempty"`
}

// Repair implements Strategy.
func (g *Generative) Repair(ctx context.Context, req Request) (image.Image, error) {
	if len(req.Boxes) == 0 {
		return req.Image, nil
	}

	bounds := req.Image.Bounds()
	mask := BuildMask(bounds.Dx(), bounds.Dy(), req.Boxes)
	if req.SaveMaskPath != "" {
		if err := imaging.WritePNG(mask, req.SaveMaskPath); err != nil {
			return nil, fmt.Errorf("failed to save erase mask: %w", err)
		}
	}

	payload := inpaintRequest{
		Prompt: "Remove the masked elements and reconstruct the background behind them.",
	}
	var err error
	if payload.Image, err = encodePNG(req.Image); err != nil {
		return nil, err
	}
	if payload.Mask, err = encodePNG(mask); err != nil {
		return nil, err
	}
	if req.RootImage != nil && req.CropBox != nil {
		if payload.Root, err = encodePNG(req.RootImage); err != nil {
			return nil, err
		}
		payload.Crop = cropBoxPayload(*req.CropBox)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inpaint request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build inpaint request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("inpaint call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inpaint endpoint returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var result inpaintResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode inpaint response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrNoResult, result.Error)
	}
	if result.Image == "" {
		return nil, ErrNoResult
	}

	raw, err := base64.StdEncoding.DecodeString(result.Image)
	if err != nil {
		return nil, fmt.Errorf("inpaint response is not valid base64: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("inpaint response is not a PNG: %w", err)
	}
	return img, nil
}

func cropBoxPayload(box geometry.Box) *inpaintCropBox {
	return &inpaintCropBox{X0: box.X0, Y0: box.Y0, X1: box.X1, Y1: box.Y1}
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
