// Package watermark erases rectangular regions from an image.
//
// A removal takes an image, a list of rectangles and a Method. The rectangles
// are clamped to the image, merged into a binary mask, and erased with one of
// four strategies:
//
//   - MethodInpaint: reconstruct the masked pixels from their surroundings
//     (radius 3) through an Inpainter
//   - MethodBlur: replace each rectangle with a Gaussian-blurred copy of itself
//   - MethodFill: paint each rectangle with the mean color of a 5 pixel ring
//     around it
//   - MethodClone: copy the most similar patch found on a 10 pixel grid
//     elsewhere in the image
//
// # Inpainting Backends
//
// The default build uses DiffusionInpainter, written in pure Go. Building with
// -tags opencv switches DefaultInpainter to OpenCV's Telea algorithm through
// gocv, which requires OpenCV 4 to be installed.
//
// # Clone Search
//
// The clone search always reads the original pixels, so later rectangles never
// sample patches written by earlier ones. Rows of candidates are scored in
// parallel; the winner is the same one a sequential row-major scan would
// pick. A rectangle without any candidate is left as is and reported in
// Result.Unmatched, or fails with ErrNoMatch when Options.Strict is set.
//
// # Errors
//
// Remove and RemoveFile return errors that wrap ErrUnsupportedMethod,
// ErrNoMatch, ErrInpaint, imaging.ErrLoad or imaging.ErrWrite. Cancellation
// of the context is checked between rectangles and returned as ctx.Err().
//
// # Thread Safety
//
// The package has no mutable global state. Concurrent calls on different
// images are safe; the input image is never modified.
package watermark
