package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/watermark-tools-mcp/internal/watermark"
)

// Bounds is a box in pixel coordinates; (X1, Y1) is inclusive and (X2, Y2)
// exclusive.
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect converts b to a watermark rectangle.
func (b Bounds) Rect() watermark.Rect {
	return watermark.Rect{X: b.X1, Y: b.Y1, Width: b.X2 - b.X1, Height: b.Y2 - b.Y1}
}

// Region is a candidate watermark area.
type Region struct {
	// Rect is the padded area, clamped to the image, ready to pass to a removal.
	Rect watermark.Rect `json:"rect"`

	// Bounds is the unpadded detection.
	Bounds Bounds `json:"bounds"`

	// Confidence combines edge density and horizontal structure (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Area of Bounds in square pixels.
	Area int `json:"area"`

	// Position names the ninth of the image the region's center falls in,
	// e.g. "bottom-right". Overlaid watermarks tend to sit near corners.
	Position string `json:"position"`
}

// Options tunes SuggestRegions.
type Options struct {
	// MinConfidence drops weaker candidates. Default 0.3.
	MinConfidence float64

	// Padding grows every suggested rectangle on all sides. Default 0.
	Padding int

	// MaxRegions caps the number of suggestions. 0 means no limit.
	MaxRegions int
}

// Result contains suggested regions, strongest first.
type Result struct {
	Regions []Region `json:"regions"`
	Count   int      `json:"count"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
}

// DefaultMinConfidence is used when Options.MinConfidence is zero.
const DefaultMinConfidence = 0.3

// windowSizes are the sliding windows scanned, sized for typical text and
// logo watermarks.
var windowSizes = []struct{ w, h int }{
	{100, 30},
	{150, 40},
	{200, 50},
	{80, 25},
}

// SuggestRegions looks for areas likely to hold a text or logo watermark.
//
// Windows of several sizes slide over the image at half their size. A window
// is a candidate when its edge density is between 5% and 40% (text is
// neither blank nor noise); its confidence rewards densities near 20% and a
// mostly horizontal edge structure. Overlapping candidates are merged.
func SuggestRegions(img image.Image, opts Options) *Result {
	if opts.MinConfidence == 0 {
		opts.MinConfidence = DefaultMinConfidence
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	edges := detectEdges(img)
	sat := edges.integral()

	var candidates []Region
	for _, ws := range windowSizes {
		stepX, stepY := ws.w/2, ws.h/2
		for y := 0; y <= height-ws.h; y += stepY {
			for x := 0; x <= width-ws.w; x += stepX {
				area := ws.w * ws.h
				density := float64(countIn(sat, x, y, ws.w, ws.h)) / float64(area)
				if density < 0.05 || density > 0.4 {
					continue
				}

				confidence := horizontalScore(edges.edges, x, y, ws.w, ws.h) * (1.0 - math.Abs(density-0.2)/0.2)
				if confidence < opts.MinConfidence {
					continue
				}
				candidates = append(candidates, Region{
					Bounds:     Bounds{X1: x, Y1: y, X2: x + ws.w, Y2: y + ws.h},
					Confidence: math.Round(confidence*1000) / 1000,
					Area:       area,
				})
			}
		}
	}

	merged := mergeOverlapping(candidates)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})
	if opts.MaxRegions > 0 && len(merged) > opts.MaxRegions {
		merged = merged[:opts.MaxRegions]
	}

	for i := range merged {
		merged[i].Rect = padRect(merged[i].Bounds, opts.Padding, width, height)
		merged[i].Position = position(merged[i].Bounds, width, height)
	}

	return &Result{Regions: merged, Count: len(merged), Width: width, Height: height}
}

// Rects returns the padded rectangles of every region, in order.
func (r *Result) Rects() []watermark.Rect {
	rects := make([]watermark.Rect, 0, len(r.Regions))
	for _, reg := range r.Regions {
		rects = append(rects, reg.Rect)
	}
	return rects
}

// horizontalScore is the share of horizontal edge runs among all runs in the
// window. Text lines produce more horizontal than vertical structure.
func horizontalScore(edges [][]bool, x, y, w, h int) float64 {
	horizontalRuns, verticalRuns := 0, 0

	for row := y; row < y+h; row++ {
		inRun := false
		for col := x; col < x+w; col++ {
			if edges[row][col] && !inRun {
				horizontalRuns++
			}
			inRun = edges[row][col]
		}
	}

	for col := x; col < x+w; col++ {
		inRun := false
		for row := y; row < y+h; row++ {
			if edges[row][col] && !inRun {
				verticalRuns++
			}
			inRun = edges[row][col]
		}
	}

	if horizontalRuns+verticalRuns == 0 {
		return 0
	}
	return float64(horizontalRuns) / float64(horizontalRuns+verticalRuns)
}

// mergeOverlapping folds each region into the first earlier region it
// overlaps, keeping the higher confidence.
func mergeOverlapping(regions []Region) []Region {
	merged := make([]Region, 0, len(regions))

	for _, r := range regions {
		found := false
		for i := range merged {
			if !overlaps(r.Bounds, merged[i].Bounds) {
				continue
			}
			b := union(r.Bounds, merged[i].Bounds)
			merged[i].Bounds = b
			merged[i].Confidence = math.Max(r.Confidence, merged[i].Confidence)
			merged[i].Area = (b.X2 - b.X1) * (b.Y2 - b.Y1)
			found = true
			break
		}
		if !found {
			merged = append(merged, r)
		}
	}

	return merged
}

func overlaps(a, b Bounds) bool {
	return a.X1 < b.X2 && a.X2 > b.X1 && a.Y1 < b.Y2 && a.Y2 > b.Y1
}

func union(a, b Bounds) Bounds {
	return Bounds{
		X1: min(a.X1, b.X1),
		Y1: min(a.Y1, b.Y1),
		X2: max(a.X2, b.X2),
		Y2: max(a.Y2, b.Y2),
	}
}

// padRect grows b by pad on every side and clamps it to the image.
func padRect(b Bounds, pad, width, height int) watermark.Rect {
	grown := Bounds{X1: max(0, b.X1-pad), Y1: max(0, b.Y1-pad), X2: b.X2 + pad, Y2: b.Y2 + pad}
	r, ok := watermark.ClampRect(grown.Rect(), width, height)
	if !ok {
		return b.Rect()
	}
	return r
}

// position names the cell of a 3×3 grid containing the center of b.
func position(b Bounds, width, height int) string {
	cx, cy := (b.X1+b.X2)/2, (b.Y1+b.Y2)/2
	col := min(2, cx*3/max(1, width))
	row := min(2, cy*3/max(1, height))

	vertical := [3]string{"top", "", "bottom"}[row]
	horizontal := [3]string{"left", "", "right"}[col]
	switch {
	case vertical == "" && horizontal == "":
		return "center"
	case vertical == "":
		return horizontal
	case horizontal == "":
		return vertical
	}
	return vertical + "-" + horizontal
}
