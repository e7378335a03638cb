// Package detection suggests where a watermark may sit in an image.
//
// Overlaid text and logo watermarks leave a band of moderately dense,
// mostly horizontal edges. SuggestRegions slides windows of several sizes
// across an edge map, keeps windows whose edge density and structure look
// like text, merges overlapping hits and returns them as rectangles that can
// be handed straight to a removal.
//
// # Algorithm Overview
//
//  1. Edge detection: grayscale conversion (bild/effect) followed by a simple
//     gradient threshold against the right and lower neighbours
//  2. Window scoring: a summed-area table gives each window's edge density in
//     constant time; run counting gives its horizontal score
//  3. Merging: overlapping windows are folded into their union
//  4. Output: optional padding, clamped to the image, strongest first
//
// # Coordinate System
//
// Coordinates are 0-based from the top-left corner. Bounds use an inclusive
// top-left and exclusive bottom-right corner; Rect uses origin and size.
//
// # Limitations
//
// This is a heuristic. It works best on semi-transparent text over smooth
// backgrounds and will miss faint watermarks or flag busy photo areas. The
// ocr package offers a Tesseract-based alternative for text watermarks.
package detection
