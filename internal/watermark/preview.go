package watermark

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	wmimaging "github.com/ironsheep/watermark-tools-mcp/internal/imaging"
)

// PreviewOptions controls how a region is rendered for inspection.
type PreviewOptions struct {
	// Margin adds this many pixels of context on every side of the region,
	// clipped to the image.
	Margin int

	// Scale resizes the rendering; 0 means 1. Small watermarks are easier to
	// check at 2 or 4.
	Scale float64
}

// Preview is a PNG rendering of one region of an image.
type Preview struct {
	// Region is the area actually rendered: clamped, then grown by the margin.
	Region      Rect   `json:"region"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Comparison holds the same region rendered from an image before and after
// removal.
type Comparison struct {
	Before *Preview `json:"before"`
	After  *Preview `json:"after"`
}

// RenderPreview clamps r to img the same way Remove does and returns that
// region, with opts.Margin pixels of context, as a base64 PNG.
func RenderPreview(img image.Image, r Rect, opts PreviewOptions) (*Preview, error) {
	src := wmimaging.ToNRGBA(img)
	region, scale, err := previewRegion(r, src.Bounds().Dx(), src.Bounds().Dy(), opts)
	if err != nil {
		return nil, err
	}
	return render(src, region, scale)
}

// ComparePreview renders the same region from before and after. Both images
// must have the same size, as a removal never changes it.
func ComparePreview(before, after image.Image, r Rect, opts PreviewOptions) (*Comparison, error) {
	a, b := wmimaging.ToNRGBA(before), wmimaging.ToNRGBA(after)
	if a.Bounds().Size() != b.Bounds().Size() {
		return nil, fmt.Errorf("cannot compare a %v image with a %v image", a.Bounds().Size(), b.Bounds().Size())
	}

	region, scale, err := previewRegion(r, a.Bounds().Dx(), a.Bounds().Dy(), opts)
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{}
	if cmp.Before, err = render(a, region, scale); err != nil {
		return nil, err
	}
	if cmp.After, err = render(b, region, scale); err != nil {
		return nil, err
	}
	return cmp, nil
}

func previewRegion(r Rect, width, height int, opts PreviewOptions) (Rect, float64, error) {
	if opts.Margin < 0 {
		return Rect{}, 0, fmt.Errorf("margin must not be negative, got %d", opts.Margin)
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	if scale < 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return Rect{}, 0, fmt.Errorf("invalid scale %v", opts.Scale)
	}

	c, ok := ClampRect(r, width, height)
	if !ok {
		return Rect{}, 0, fmt.Errorf("%w: %s in a %dx%d image", ErrEmptyRegion, r, width, height)
	}

	b := c.Bounds().Inset(-opts.Margin).Intersect(image.Rect(0, 0, width, height))
	return Rect{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()}, scale, nil
}

func render(src *image.NRGBA, region Rect, scale float64) (*Preview, error) {
	out := imaging.Crop(src, region.Bounds())
	if scale != 1 {
		w := max(1, int(float64(region.Width)*scale))
		h := max(1, int(float64(region.Height)*scale))
		out = imaging.Resize(out, w, h, imaging.Lanczos)
	}

	encoded, err := wmimaging.EncodeBase64PNG(out)
	if err != nil {
		return nil, err
	}
	return &Preview{
		Region:      region,
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}
