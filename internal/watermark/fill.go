package watermark

import (
	"image"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// FillPadding is the width of the ring sampled around each rectangle.
const FillPadding = 5

// FillColor records the flat color painted over a rectangle.
type FillColor struct {
	Target  Rect        `json:"target"`
	Color   color.NRGBA `json:"-"`
	Hex     string      `json:"hex"`
	Samples int         `json:"samples"`
}

// ringMean averages, per channel, every pixel of src within FillPadding of r
// that is not inside r. The ring is clipped to the image. The mean is
// truncated toward zero. ok is false when the ring holds no pixels.
func ringMean(src *image.NRGBA, r Rect) (c color.NRGBA, n int, ok bool) {
	b := src.Bounds()
	y0 := max(0, r.Y-FillPadding)
	y1 := min(b.Dy(), r.Y+r.Height+FillPadding)
	x0 := max(0, r.X-FillPadding)
	x1 := min(b.Dx(), r.X+r.Width+FillPadding)

	var sum [4]int64
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if r.containsOrigin(x, y) {
				continue
			}
			p := src.Pix[src.PixOffset(x, y):]
			sum[0] += int64(p[0])
			sum[1] += int64(p[1])
			sum[2] += int64(p[2])
			sum[3] += int64(p[3])
			n++
		}
	}
	if n == 0 {
		return color.NRGBA{}, 0, false
	}

	d := int64(n)
	return color.NRGBA{
		R: uint8(sum[0] / d),
		G: uint8(sum[1] / d),
		B: uint8(sum[2] / d),
		A: uint8(sum[3] / d),
	}, n, true
}

// fillRegions paints each rectangle of dst with the ring mean computed from
// src. Rectangles with an empty ring are left alone.
func fillRegions(src, dst *image.NRGBA, rects []Rect, check func() error) ([]FillColor, error) {
	fills := make([]FillColor, 0, len(rects))
	for _, r := range rects {
		if err := check(); err != nil {
			return nil, err
		}

		c, n, ok := ringMean(src, r)
		if !ok {
			continue
		}

		for y := r.Y; y < r.Y+r.Height; y++ {
			for x := r.X; x < r.X+r.Width; x++ {
				dst.SetNRGBA(x, y, c)
			}
		}

		fills = append(fills, FillColor{
			Target:  r,
			Color:   c,
			Hex:     hexOf(c),
			Samples: n,
		})
	}
	return fills, nil
}

// hexOf renders the color channels as "#rrggbb".
func hexOf(c color.NRGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}
