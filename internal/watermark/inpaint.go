package watermark

import (
	"fmt"
	"image"
	"math"
)

// InpaintRadius is the neighbourhood radius, in pixels, handed to the
// inpainting primitive.
const InpaintRadius = 3

// Inpainter reconstructs the pixels of img where mask is non-zero from the
// pixels around them. Implementations return a new image and leave img as is.
type Inpainter interface {
	Inpaint(img *image.NRGBA, mask *image.Gray, radius int) (*image.NRGBA, error)
}

// InpainterFunc adapts a function to the Inpainter interface.
type InpainterFunc func(img *image.NRGBA, mask *image.Gray, radius int) (*image.NRGBA, error)

// Inpaint calls f.
func (f InpainterFunc) Inpaint(img *image.NRGBA, mask *image.Gray, radius int) (*image.NRGBA, error) {
	return f(img, mask, radius)
}

// DiffusionInpainter fills masked pixels from the outside in. On each pass
// every unknown pixel touching a known one becomes the inverse-square
// distance weighted mean of the known pixels within the radius; the pass's
// results only become known once the pass ends, so the output does not depend
// on scan order.
//
// It is the pure-Go stand-in for OpenCV's Telea inpainting used when the
// binary is built without the opencv tag.
type DiffusionInpainter struct{}

// Inpaint implements Inpainter.
func (DiffusionInpainter) Inpaint(img *image.NRGBA, mask *image.Gray, radius int) (*image.NRGBA, error) {
	if img == nil || mask == nil {
		return nil, fmt.Errorf("%w: nil image or mask", ErrInpaint)
	}
	b := img.Bounds()
	if !mask.Bounds().Eq(b) || b.Min != (image.Point{}) {
		return nil, fmt.Errorf("%w: mask bounds %v do not match image bounds %v", ErrInpaint, mask.Bounds(), b)
	}
	if radius < 1 {
		radius = 1
	}

	width, height := b.Dx(), b.Dy()
	out := image.NewNRGBA(b)
	copy(out.Pix, img.Pix)

	known := make([]bool, width*height)
	remaining := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mask.Pix[y*mask.Stride+x] == 0 {
				known[y*width+x] = true
			} else {
				remaining++
			}
		}
	}
	if remaining == width*height {
		// Nothing to sample from.
		return out, nil
	}

	type update struct {
		idx int
		px  [4]uint8
	}

	for remaining > 0 {
		var front []update
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if known[y*width+x] || !touchesKnown(known, width, height, x, y) {
					continue
				}
				front = append(front, update{idx: y*width + x, px: weightedMean(out, known, width, height, x, y, radius)})
			}
		}
		if len(front) == 0 {
			break
		}
		for _, u := range front {
			copy(out.Pix[u.idx*4:u.idx*4+4], u.px[:])
			known[u.idx] = true
		}
		remaining -= len(front)
	}

	return out, nil
}

// touchesKnown reports whether any 8-neighbour of (x, y) is known.
func touchesKnown(known []bool, width, height, x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			if (dx == 0 && dy == 0) || nx < 0 || ny < 0 || nx >= width || ny >= height {
				continue
			}
			if known[ny*width+nx] {
				return true
			}
		}
	}
	return false
}

// weightedMean averages the known pixels within radius of (x, y), weighting
// each by the inverse square of its distance.
func weightedMean(img *image.NRGBA, known []bool, width, height, x, y, radius int) [4]uint8 {
	var acc [4]float64
	var total float64
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := dx*dx + dy*dy
			nx, ny := x+dx, y+dy
			if d2 == 0 || d2 > r2 || nx < 0 || ny < 0 || nx >= width || ny >= height || !known[ny*width+nx] {
				continue
			}
			w := 1 / float64(d2)
			p := img.Pix[img.PixOffset(nx, ny):]
			for c := 0; c < 4; c++ {
				acc[c] += w * float64(p[c])
			}
			total += w
		}
	}

	var px [4]uint8
	for c := 0; c < 4; c++ {
		px[c] = uint8(math.Round(acc[c] / total))
	}
	return px
}
