package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ironsheep/image-decompose/internal/geometry"
)

// writeTestImage creates a solid-color PNG file inside dir and returns its path.
func writeTestImage(t *testing.T, dir string, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestCache_Load(t *testing.T) {
	cache := NewCache()
	path := writeTestImage(t, t.TempDir(), 40, 30, color.RGBA{255, 0, 0, 255})

	img, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
		t.Errorf("dimensions: got %v", img.Bounds())
	}
	if cache.Len() != 1 {
		t.Errorf("cache size: got %d, want 1", cache.Len())
	}

	// Second load must come from the cache even after the file disappears.
	os.Remove(path)
	if _, err := cache.Load(path); err != nil {
		t.Errorf("cached load failed: %v", err)
	}
}

func TestCache_LoadMissingFile(t *testing.T) {
	cache := NewCache()
	if _, err := cache.Load(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("Load should fail for a missing file")
	}
}

func TestCache_LoadWithSize(t *testing.T) {
	cache := NewCache()
	path := writeTestImage(t, t.TempDir(), 200, 150, color.White)

	_, size, err := cache.LoadWithSize(path)
	if err != nil {
		t.Fatalf("LoadWithSize failed: %v", err)
	}
	want := geometry.Size{Width: 200, Height: 150}
	if size != want {
		t.Errorf("size: got %+v, want %+v", size, want)
	}
}

func TestCache_EvictAndClear(t *testing.T) {
	cache := NewCache()
	dir := t.TempDir()
	path := writeTestImage(t, dir, 10, 10, color.Black)

	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cache.Evict(path)
	if cache.Len() != 0 {
		t.Errorf("after Evict: got %d entries", cache.Len())
	}

	if _, err := cache.Load(path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear: got %d entries", cache.Len())
	}
}

func TestCache_ConcurrentLoad(t *testing.T) {
	cache := NewCache()
	path := writeTestImage(t, t.TempDir(), 20, 20, color.White)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				t.Errorf("concurrent Load failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("cache size after concurrent loads: got %d, want 1", cache.Len())
	}
}
