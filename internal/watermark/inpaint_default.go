//go:build !opencv

package watermark

// DefaultInpainter returns the inpainter used when Options.Inpainter is nil.
// Build with -tags opencv to use OpenCV's Telea implementation instead.
func DefaultInpainter() Inpainter {
	return DiffusionInpainter{}
}

// InpainterName identifies the inpainting backend compiled into the binary.
const InpainterName = "diffusion"
