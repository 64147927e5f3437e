// Package detection provides the local region-proposal algorithms backing
// the offline extractors: text-region proposal, figure/chart proposal, and
// table cell-grid recovery.
//
// # Algorithm Overview
//
// All detectors follow a similar pipeline:
//
//  1. Edge detection: convert to grayscale and mark pixels whose gradient
//     exceeds a threshold
//  2. Feature extraction: sliding-window density scan (text), connected
//     contour analysis (figures), or projection profiles (table rulings)
//  3. Filtering: drop candidates below size or confidence thresholds,
//     merge overlapping proposals
//
// # Coordinate System
//
// All coordinates use the standard image convention: origin (0, 0) at the
// top-left corner, X rightward, Y downward. Bounding boxes use inclusive
// top-left and exclusive bottom-right corners.
//
// # Confidence Scores
//
// Proposals carry a confidence from 0.0 to 1.0. For text regions it combines
// edge density with horizontal run structure; for figures it is the
// rectangularity of the contour. Callers filter with a minimum confidence
// suited to their input material.
//
// # Limitations
//
// These heuristics work best on clean, high-contrast renderings such as
// slide bitmaps. Photographic content produces noisy proposals; for such
// material the network-backed layout extractor is the better choice.
package detection
