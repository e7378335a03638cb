package watermark

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// BlurRadius gives bild's Gaussian a 15-tap kernel (2*radius+1).
const BlurRadius = 7.0

// blurRegions replaces each rectangle of img with a Gaussian-blurred copy of
// itself. Only pixels inside the rectangle feed the blur; edges are extended.
// Rectangles are processed in order on the same buffer, so overlapping
// regions are blurred more than once.
func blurRegions(img *image.NRGBA, rects []Rect, check func() error) error {
	for _, r := range rects {
		if err := check(); err != nil {
			return err
		}

		roi := imaging.Crop(img, r.Bounds())
		blurred := blur.Gaussian(roi, BlurRadius)
		draw.Draw(img, r.Bounds(), blurred, blurred.Bounds().Min, draw.Src)
	}
	return nil
}
