package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/watermark-tools-mcp/internal/imaging"
	"github.com/ironsheep/watermark-tools-mcp/internal/watermark"
)

// DefaultLanguage is the Tesseract language used when none is given.
const DefaultLanguage = "eng"

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion is a word or block found by Tesseract.
type TextRegion struct {
	// Text is the recognized text. Empty for block-level detections.
	Text string `json:"text,omitempty"`

	// Confidence is Tesseract's confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the box Tesseract reported.
	Bounds Bounds `json:"bounds"`

	// Rect is Bounds grown by the requested padding and clamped to the
	// image, ready to pass to a removal.
	Rect watermark.Rect `json:"rect"`
}

// Options controls text watermark detection.
type Options struct {
	// Language is a Tesseract language code such as "eng" or "chi_sim".
	// Defaults to DefaultLanguage.
	Language string

	// MinConfidence drops detections below this score (0.0 to 1.0).
	MinConfidence float64

	// Match keeps only words containing this text, compared
	// case-insensitively. Empty keeps every word.
	Match string

	// Padding grows every rectangle on all sides so anti-aliased glyph edges
	// are covered too.
	Padding int

	// Blocks reports paragraph-level blocks instead of words.
	Blocks bool
}

// Result holds the text regions found in an image.
type Result struct {
	FullText string       `json:"full_text,omitempty"`
	Regions  []TextRegion `json:"regions"`
	Count    int          `json:"count"`
	Width    int          `json:"width"`
	Height   int          `json:"height"`
}

// Rects returns the padded rectangle of every region, in order.
func (r *Result) Rects() []watermark.Rect {
	rects := make([]watermark.Rect, 0, len(r.Regions))
	for _, reg := range r.Regions {
		rects = append(rects, reg.Rect)
	}
	return rects
}

// FindText locates text in the image at imagePath.
//
// The image is decoded with imaging.Load (EXIF orientation applied) and
// handed to Tesseract as PNG, so the returned coordinates match those used
// by a removal on the same file.
//
// # Word and Block Levels
//
// By default Tesseract's RIL_WORD level is used and each region carries its
// text, which allows opts.Match to pick out a known watermark such as a
// site name. With opts.Blocks the faster RIL_BLOCK level is used instead and
// opts.Match is ignored.
//
// # Errors
//
// Load failures wrap imaging.ErrLoad. Tesseract failures (missing language
// data, unreadable image) are returned as is.
func FindText(imagePath string, opts Options) (*Result, error) {
	img, _, err := imaging.Load(imagePath)
	if err != nil {
		return nil, err
	}
	return FindTextInImage(img, opts)
}

// FindTextInImage is FindText for an image already in memory.
func FindTextInImage(img image.Image, opts Options) (*Result, error) {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(opts.Language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	level := gosseract.RIL_WORD
	if opts.Blocks {
		level = gosseract.RIL_BLOCK
	}
	boxes, err := client.GetBoundingBoxes(level)
	if err != nil {
		return nil, fmt.Errorf("failed to get text regions: %w", err)
	}

	var fullText string
	if !opts.Blocks {
		// Text is best effort; the boxes already carry each word.
		fullText, _ = client.Text()
	}

	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	regions := make([]TextRegion, 0, len(boxes))
	for _, box := range boxes {
		region := TextRegion{
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		}
		if !opts.Blocks {
			region.Text = strings.TrimSpace(box.Word)
		}
		regions = append(regions, region)
	}

	regions = filterRegions(regions, opts)
	for i := range regions {
		regions[i].Rect = padRect(regions[i].Bounds, opts.Padding, width, height)
	}

	return &Result{
		FullText: fullText,
		Regions:  regions,
		Count:    len(regions),
		Width:    width,
		Height:   height,
	}, nil
}

// filterRegions applies the confidence threshold, drops empty words and, at
// word level, keeps only words containing opts.Match.
func filterRegions(regions []TextRegion, opts Options) []TextRegion {
	match := strings.ToLower(strings.TrimSpace(opts.Match))

	out := make([]TextRegion, 0, len(regions))
	for _, r := range regions {
		if r.Confidence < opts.MinConfidence {
			continue
		}
		if !opts.Blocks {
			if r.Text == "" {
				continue
			}
			if match != "" && !strings.Contains(strings.ToLower(r.Text), match) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// padRect grows b by pad on every side and clamps the result to the image.
// An empty box yields a zero Rect.
func padRect(b Bounds, pad, width, height int) watermark.Rect {
	r := watermark.Rect{
		X:      b.X1 - pad,
		Y:      b.Y1 - pad,
		Width:  b.X2 - b.X1 + 2*pad,
		Height: b.Y2 - b.Y1 + 2*pad,
	}
	if r.X < 0 {
		r.Width += r.X
		r.X = 0
	}
	if r.Y < 0 {
		r.Height += r.Y
		r.Y = 0
	}
	clamped, ok := watermark.ClampRect(r, width, height)
	if !ok {
		return watermark.Rect{}
	}
	return clamped
}
