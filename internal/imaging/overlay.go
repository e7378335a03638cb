package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// OverlayResult contains the image with the watermark regions highlighted
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Regions     int    `json:"regions"`
}

// OverlayRegions draws each region onto a copy of img: a translucent fill, a
// solid one-pixel outline and the region's 1-based index in the top-left
// corner. It lets a client confirm rectangle coordinates before removing.
func OverlayRegions(img image.Image, regions []image.Rectangle, colorHex string) (*OverlayResult, error) {
	bounds := img.Bounds()

	outline, err := parseHexColor(colorHex)
	if err != nil {
		outline = color.RGBA{255, 0, 0, 255} // Default: red
	}
	fill := image.NewUniform(color.NRGBA{outline.R, outline.G, outline.B, 64})

	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	labelColor := color.RGBA{255, 255, 255, 255}
	bgColor := color.RGBA{0, 0, 0, 180}

	for i, r := range regions {
		r = r.Intersect(bounds)
		if r.Empty() {
			continue
		}

		draw.Draw(result, r, fill, image.Point{}, draw.Over)

		for x := r.Min.X; x < r.Max.X; x++ {
			result.Set(x, r.Min.Y, outline)
			result.Set(x, r.Max.Y-1, outline)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			result.Set(r.Min.X, y, outline)
			result.Set(r.Max.X-1, y, outline)
		}

		drawLabel(result, r.Min.X+2, r.Min.Y+2, strconv.Itoa(i+1), labelColor, bgColor)
	}

	encoded, err := EncodeBase64PNG(result)
	if err != nil {
		return nil, err
	}

	return &OverlayResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
		Regions:     len(regions),
	}, nil
}

// parseHexColor parses "#RRGGBB" or "#RGB"; the leading '#' is optional.
// The result is always opaque.
func parseHexColor(hex string) (color.RGBA, error) {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// drawLabel draws a small numeric label at the given position using a
// built-in 3x5 pixel font. Characters without a glyph advance the cursor.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.Set(px, py, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
						img.Set(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
