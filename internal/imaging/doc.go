// Package imaging handles image file access for the decomposition engine:
// loading with an in-process cache, writing sub-image crops for recursive
// analysis, and rendering debug overlays of detected regions.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x0,y0) is inclusive (top-left), (x1,y1) is exclusive
//     (bottom-right)
//
// # Thread Safety
//
// The Cache type is safe for concurrent use; batch workers share one cache.
// Individual image operations are stateless and can be called concurrently
// on different images.
//
// # Caching
//
// Decoded images are cached by file path for the lifetime of the process.
// Sub-image crops written during recursion are distinct files and get their
// own cache entries. There is no persistent cache of analysis results; the
// cache only avoids redundant decodes within one run.
package imaging
