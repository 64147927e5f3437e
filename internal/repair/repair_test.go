package repair

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/image-decompose/internal/geometry"
)

// solidImage returns a uniformly colored RGBA canvas.
func solidImage(width, height int, fill color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	return img
}

func TestMask_FillsErasedRegion(t *testing.T) {
	bg := color.RGBA{R: 200, G: 220, B: 240, A: 255}
	img := solidImage(200, 150, bg)
	// A dark "element" to erase.
	for y := 40; y < 90; y++ {
		for x := 50; x < 140; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 10, G: 10, B: 10, A: 255})
		}
	}

	strategy := NewMask()
	result, err := strategy.Repair(context.Background(), Request{
		Image: img,
		Boxes: []geometry.Box{{X0: 50, Y0: 40, X1: 140, Y1: 90}},
	})
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}

	// Center of the erased region should now look like the background.
	r, g, b, _ := result.At(95, 65).RGBA()
	if diff(int(r>>8), int(bg.R)) > 20 || diff(int(g>>8), int(bg.G)) > 20 || diff(int(b>>8), int(bg.B)) > 20 {
		t.Errorf("erased region kept foreground color: got (%d,%d,%d), want near (%d,%d,%d)",
			r>>8, g>>8, b>>8, bg.R, bg.G, bg.B)
	}

	// Pixels far outside the erase box are untouched.
	r, g, b, _ = result.At(10, 10).RGBA()
	if int(r>>8) != int(bg.R) || int(g>>8) != int(bg.G) || int(b>>8) != int(bg.B) {
		t.Errorf("pixel outside erase box changed: got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestMask_NoBoxesReturnsOriginal(t *testing.T) {
	img := solidImage(50, 50, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	result, err := NewMask().Repair(context.Background(), Request{Image: img})
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if result != image.Image(img) {
		t.Error("expected the original image back when there is nothing to erase")
	}
}

func TestMask_SavesMaskArtifact(t *testing.T) {
	dir := t.TempDir()
	maskPath := filepath.Join(dir, "artifacts", "erase_mask.png")

	img := solidImage(80, 60, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	_, err := NewMask().Repair(context.Background(), Request{
		Image:        img,
		Boxes:        []geometry.Box{{X0: 10, Y0: 10, X1: 40, Y1: 30}},
		SaveMaskPath: maskPath,
	})
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}

	f, err := os.Open(maskPath)
	if err != nil {
		t.Fatalf("mask artifact not written: %v", err)
	}
	defer f.Close()
	saved, err := png.Decode(f)
	if err != nil {
		t.Fatalf("mask artifact is not a PNG: %v", err)
	}
	if saved.Bounds().Dx() != 80 || saved.Bounds().Dy() != 60 {
		t.Errorf("mask dimensions %v, want 80x60", saved.Bounds())
	}
}

func TestBuildMask(t *testing.T) {
	mask := BuildMask(100, 100, []geometry.Box{
		{X0: 10, Y0: 10, X1: 30, Y1: 30},
		{X0: -5, Y0: 90, X1: 200, Y1: 200},
	})

	if mask.GrayAt(20, 20).Y != 255 {
		t.Error("inside first box should be white")
	}
	if mask.GrayAt(50, 50).Y != 0 {
		t.Error("outside boxes should be black")
	}
	if mask.GrayAt(0, 95).Y != 255 {
		t.Error("clamped box should still mark in-frame pixels")
	}
}

func TestMask_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	img := solidImage(40, 40, color.RGBA{A: 255})
	_, err := NewMask().Repair(ctx, Request{
		Image: img,
		Boxes: []geometry.Box{{X1: 10, Y1: 10}},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerative_RoundTrip(t *testing.T) {
	want := solidImage(64, 48, color.RGBA{R: 77, G: 88, B: 99, A: 255})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing auth header, got %q", r.Header.Get("Authorization"))
		}
		var req inpaintRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Image == "" || req.Mask == "" {
			t.Error("request missing image or mask")
		}
		if req.Root == "" || req.Crop == nil {
			t.Error("nested repair should carry root context")
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, want); err != nil {
			t.Fatalf("encode: %v", err)
		}
		json.NewEncoder(w).Encode(inpaintResponse{
			Image: base64.StdEncoding.EncodeToString(buf.Bytes()),
		})
	}))
	defer server.Close()

	strategy := NewGenerative(GenerativeConfig{Endpoint: server.URL, APIKey: "test-key"})
	crop := geometry.Box{X0: 100, Y0: 50, X1: 164, Y1: 98}
	result, err := strategy.Repair(context.Background(), Request{
		Image:     solidImage(64, 48, color.RGBA{A: 255}),
		Boxes:     []geometry.Box{{X0: 5, Y0: 5, X1: 20, Y1: 20}},
		CropBox:   &crop,
		RootImage: solidImage(640, 480, color.RGBA{A: 255}),
	})
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}

	r, g, b, _ := result.At(30, 20).RGBA()
	if uint8(r>>8) != 77 || uint8(g>>8) != 88 || uint8(b>>8) != 99 {
		t.Errorf("unexpected pixel (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestGenerative_EndpointError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	strategy := NewGenerative(GenerativeConfig{Endpoint: server.URL})
	_, err := strategy.Repair(context.Background(), Request{
		Image: solidImage(32, 32, color.RGBA{A: 255}),
		Boxes: []geometry.Box{{X1: 8, Y1: 8}},
	})
	if err == nil {
		t.Fatal("expected an error from a 503 response")
	}
}

func TestGenerative_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(inpaintResponse{})
	}))
	defer server.Close()

	strategy := NewGenerative(GenerativeConfig{Endpoint: server.URL})
	_, err := strategy.Repair(context.Background(), Request{
		Image: solidImage(32, 32, color.RGBA{A: 255}),
		Boxes: []geometry.Box{{X1: 8, Y1: 8}},
	})
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func diff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
