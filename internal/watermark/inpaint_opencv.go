//go:build opencv

package watermark

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// DefaultInpainter returns the inpainter used when Options.Inpainter is nil.
func DefaultInpainter() Inpainter {
	return TeleaInpainter{}
}

// InpainterName identifies the inpainting backend compiled into the binary.
const InpainterName = "opencv-telea"

// TeleaInpainter runs OpenCV's fast marching (Telea) inpainting through gocv.
// Alpha is carried over from the input unchanged.
type TeleaInpainter struct{}

// Inpaint implements Inpainter.
func (TeleaInpainter) Inpaint(img *image.NRGBA, mask *image.Gray, radius int) (*image.NRGBA, error) {
	if img == nil || mask == nil {
		return nil, fmt.Errorf("%w: nil image or mask", ErrInpaint)
	}
	b := img.Bounds()
	if !mask.Bounds().Eq(b) || b.Min != (image.Point{}) {
		return nil, fmt.Errorf("%w: mask bounds %v do not match image bounds %v", ErrInpaint, mask.Bounds(), b)
	}
	width, height := b.Dx(), b.Dy()
	if img.Stride != width*4 || mask.Stride != width {
		return nil, fmt.Errorf("%w: buffers must be tightly packed", ErrInpaint)
	}

	rgba, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC4, img.Pix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInpaint, err)
	}
	defer rgba.Close()

	m, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, mask.Pix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInpaint, err)
	}
	defer m.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Inpaint(bgr, m, &dst, float32(radius), gocv.Telea)
	if dst.Empty() {
		return nil, fmt.Errorf("%w: OpenCV returned an empty image", ErrInpaint)
	}

	back := gocv.NewMat()
	defer back.Close()
	gocv.CvtColor(dst, &back, gocv.ColorBGRToRGBA)

	out := image.NewNRGBA(b)
	copy(out.Pix, back.ToBytes())
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = img.Pix[i]
	}
	return out, nil
}
