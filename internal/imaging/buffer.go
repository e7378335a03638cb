package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// ToNRGBA returns a fresh, zero-origin *image.NRGBA copy of img.
//
// The removal strategies index Pix directly, so every buffer they touch is
// normalised here first. The source is never aliased.
func ToNRGBA(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// CopyRegion copies the w×h block at (sx, sy) in src to (dx, dy) in dst.
// Both buffers must be zero-origin and the block must lie inside both.
func CopyRegion(dst *image.NRGBA, dx, dy int, src *image.NRGBA, sx, sy, w, h int) {
	rowBytes := w * 4
	for row := 0; row < h; row++ {
		so := src.PixOffset(sx, sy+row)
		do := dst.PixOffset(dx, dy+row)
		copy(dst.Pix[do:do+rowBytes], src.Pix[so:so+rowBytes])
	}
}
