package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	"github.com/ironsheep/image-decompose/internal/geometry"
)

// Cache provides thread-safe caching of decoded images to avoid redundant
// disk reads.
//
// Decoded image.Image values are keyed by file path. Once an image is
// loaded, subsequent Load calls for the same path return the cached copy
// without disk I/O. During a batch run the same sub-image can be requested
// by extraction, repair and recursion in quick succession; the cache keeps
// that to a single decode.
//
// Cached images remain in memory until explicitly removed via Evict or
// Clear. Long-running processes handling many images should clear between
// batches to bound memory growth.
type Cache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewCache creates an empty image cache, ready for concurrent use.
func NewCache() *Cache {
	return &Cache{images: make(map[string]image.Image)}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// The image is cached using the exact path string provided; different paths
// to the same file result in separate entries. Supported formats are PNG,
// JPEG and GIF.
func (c *Cache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadWithSize loads an image and returns it with its pixel dimensions.
func (c *Cache) LoadWithSize(path string) (image.Image, geometry.Size, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, geometry.Size{}, err
	}
	b := img.Bounds()
	return img, geometry.Size{Width: b.Dx(), Height: b.Dy()}, nil
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path. If the path is
// not cached, Evict does nothing.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}
