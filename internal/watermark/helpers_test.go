package watermark

import (
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"
)

// createSolidImage returns a zero-origin NRGBA filled with c.
func createSolidImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func colorGray(v uint8) color.NRGBA {
	return color.NRGBA{v, v, v, 255}
}

// createNoiseImage returns an opaque image of seeded random colors with
// channel values in [lo, hi].
func createNoiseImage(width, height int, seed int64, lo, hi int) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(lo + rng.Intn(hi-lo+1))
		img.Pix[i+1] = uint8(lo + rng.Intn(hi-lo+1))
		img.Pix[i+2] = uint8(lo + rng.Intn(hi-lo+1))
		img.Pix[i+3] = 255
	}
	return img
}

// copyPatch copies the w×h block at (sx, sy) to (dx, dy) within img.
func copyPatch(img *image.NRGBA, sx, sy, dx, dy, w, h int) {
	patch := make([]uint8, 0, w*h*4)
	for y := 0; y < h; y++ {
		o := img.PixOffset(sx, sy+y)
		patch = append(patch, img.Pix[o:o+w*4]...)
	}
	for y := 0; y < h; y++ {
		o := img.PixOffset(dx, dy+y)
		copy(img.Pix[o:o+w*4], patch[y*w*4:(y+1)*w*4])
	}
}

// regionEqual reports whether the w×h blocks at (ax, ay) in a and (bx, by) in b match.
func regionEqual(a *image.NRGBA, ax, ay int, b *image.NRGBA, bx, by, w, h int) bool {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if a.NRGBAAt(ax+x, ay+y) != b.NRGBAAt(bx+x, by+y) {
				return false
			}
		}
	}
	return true
}

// assertOutsideUnchanged fails if any pixel outside r differs between a and b.
func assertOutsideUnchanged(t *testing.T, a, b *image.NRGBA, r Rect) {
	t.Helper()
	bounds := a.Bounds()
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if r.containsOrigin(x, y) {
				continue
			}
			if a.NRGBAAt(x, y) != b.NRGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d) outside %s changed: %v -> %v", x, y, r, a.NRGBAAt(x, y), b.NRGBAAt(x, y))
			}
		}
	}
}

// sequentialBestMatch is a direct transcription of the clone search used to
// cross-check the concurrent implementation.
func sequentialBestMatch(img *image.NRGBA, x, y, w, h int) (int, int, float64, bool) {
	height, width := img.Bounds().Dy(), img.Bounds().Dx()
	best := math.Inf(1)
	bx, by, found := 0, 0, false
	for i := 0; i < height-h; i += CloneStride {
		for j := 0; j < width-w; j += CloneStride {
			if y <= i && i < y+h && x <= j && j < x+w {
				continue
			}
			var sum float64
			for dy := 0; dy < h; dy++ {
				for dx := 0; dx < w; dx++ {
					a := img.NRGBAAt(x+dx, y+dy)
					b := img.NRGBAAt(j+dx, i+dy)
					sum += math.Abs(float64(a.R)-float64(b.R)) +
						math.Abs(float64(a.G)-float64(b.G)) +
						math.Abs(float64(a.B)-float64(b.B))
				}
			}
			diff := sum / float64(w*h*3)
			if diff < best {
				best, bx, by, found = diff, j, i, true
			}
		}
	}
	return bx, by, best, found
}
