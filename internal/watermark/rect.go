package watermark

import (
	"fmt"
	"image"
)

// Rect is an axis-aligned region in pixel coordinates with its origin at the
// top-left corner of the image.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// String formats the rectangle as "(x, y, w, h)".
func (r Rect) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", r.X, r.Y, r.Width, r.Height)
}

// Bounds converts the rectangle to an image.Rectangle.
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// containsOrigin reports whether (x, y) lies inside r.
func (r Rect) containsOrigin(x, y int) bool {
	return r.X <= x && x < r.X+r.Width && r.Y <= y && y < r.Y+r.Height
}

// ClampRect fits r into a width×height image.
//
// The origin is clamped to the last valid pixel and the size is cut to what
// remains to the right of and below it:
//
//	x' = clamp(x, 0, width-1)    w' = min(w, width-x')
//	y' = clamp(y, 0, height-1)   h' = min(h, height-y')
//
// The second result is false when the clamped rectangle is empty; such a
// rectangle must be skipped. Nothing fits into an image without pixels.
func ClampRect(r Rect, width, height int) (Rect, bool) {
	if width <= 0 || height <= 0 {
		return Rect{}, false
	}

	x := clamp(r.X, 0, width-1)
	y := clamp(r.Y, 0, height-1)
	w := min(r.Width, width-x)
	h := min(r.Height, height-y)

	c := Rect{X: x, Y: y, Width: w, Height: h}
	return c, !c.Empty()
}

// ClampRects clamps every rectangle to the image and silently drops the
// ones left empty. Order is preserved.
func ClampRects(rects []Rect, width, height int) []Rect {
	out := make([]Rect, 0, len(rects))
	for _, r := range rects {
		if c, ok := ClampRect(r, width, height); ok {
			out = append(out, c)
		}
	}
	return out
}

// BuildMask returns a width×height mask that is 255 inside the union of rects
// and 0 elsewhere. Rectangles are clamped first; overlaps are harmless.
func BuildMask(width, height int, rects []Rect) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, width, height))
	for _, r := range ClampRects(rects, width, height) {
		for y := r.Y; y < r.Y+r.Height; y++ {
			row := mask.Pix[y*mask.Stride+r.X : y*mask.Stride+r.X+r.Width]
			for i := range row {
				row[i] = 255
			}
		}
	}
	return mask
}

// clamp constrains an integer value to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
