// Package imaging provides the image I/O and buffer plumbing used by the
// watermark tools.
//
// It owns everything on the edges of a removal: decoding files into memory,
// normalising them into zero-origin NRGBA buffers the removal strategies can
// index directly, and encoding results back to disk. It also keeps the
// path-keyed ImageCache and the region overlay helper
// served over MCP.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based with the origin at the
// top-left corner. For regions, (x1,y1) is inclusive and (x2,y2) is exclusive.
//
// # Formats
//
// Decoding supports JPEG, PNG, GIF, BMP, TIFF and WebP. Encoding supports the
// same set except WebP; such outputs are written as PNG (see OutputPath).
//
// # Error Handling
//
// Load failures wrap ErrLoad and write failures wrap ErrWrite so callers can
// tell them apart with errors.Is. Save writes through a temporary file and a
// rename, so a failed write never leaves a partial output behind.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The remaining functions are
// stateless and may be called concurrently on different images.
package imaging
