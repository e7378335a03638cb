package watermark

import (
	"image"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/watermark-tools-mcp/internal/imaging"
)

// CloneStride is the step, in pixels, between candidate origins in the clone
// search, on both axes.
const CloneStride = 10

// Match describes the source patch chosen to cover a target rectangle.
type Match struct {
	Target Rect    `json:"target"`
	X      int     `json:"source_x"`
	Y      int     `json:"source_y"`
	Score  float64 `json:"score"`
}

// candidate is the best origin found so far on one row of the scan.
type candidate struct {
	sum   int64 // total absolute difference, exact
	order int   // position in row-major scan order
	x, y  int
	found bool
}

// better reports whether c beats best: strictly lower difference, or the
// same difference reached earlier in the scan.
func (c candidate) better(best candidate) bool {
	if !best.found {
		return c.found
	}
	if !c.found {
		return false
	}
	if c.sum != best.sum {
		return c.sum < best.sum
	}
	return c.order < best.order
}

// FindBestMatch searches src for the w×h patch most similar to the pixels
// currently under target.
//
// Candidate origins (j, i) lie on a CloneStride grid with i in [0, H-h) and
// j in [0, W-w), scanned row by row. Origins that fall inside target are
// skipped. Each candidate is scored by the mean absolute difference of the
// R, G and B channels against the target patch; the lowest score wins and
// ties go to the candidate met first in row-major order.
//
// Rows are scored concurrently, each against its own running minimum, and
// the per-row winners are reduced in row order, so the answer is the same
// as a sequential scan. src is only read.
//
// The second result is false when no candidate exists, for example when the
// image is not larger than the rectangle in some dimension.
func FindBestMatch(src *image.NRGBA, target Rect) (Match, bool) {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	w, h := target.Width, target.Height
	if target.Empty() {
		return Match{}, false
	}

	cols := ceilDiv(width-w, CloneStride)
	rows := ceilDiv(height-h, CloneStride)
	if rows <= 0 || cols <= 0 {
		return Match{}, false
	}

	rowBest := make([]candidate, rows)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for r := 0; r < rows; r++ {
		r := r
		g.Go(func() error {
			rowBest[r] = scanRow(src, target, r*CloneStride, r*cols, cols)
			return nil
		})
	}
	_ = g.Wait()

	var best candidate
	for _, c := range rowBest {
		if c.better(best) {
			best = c
		}
	}
	if !best.found {
		return Match{}, false
	}

	return Match{
		Target: target,
		X:      best.x,
		Y:      best.y,
		Score:  float64(best.sum) / float64(w*h*3),
	}, true
}

// scanRow scores every candidate origin on row i of the search grid.
func scanRow(src *image.NRGBA, target Rect, i, orderBase, cols int) candidate {
	var best candidate
	for c := 0; c < cols; c++ {
		j := c * CloneStride
		if target.containsOrigin(j, i) {
			continue
		}

		limit := int64(math.MaxInt64)
		if best.found {
			limit = best.sum
		}
		sum, ok := patchDiff(src, target, j, i, limit)
		if !ok {
			continue
		}
		if !best.found || sum < best.sum {
			best = candidate{sum: sum, order: orderBase + c, x: j, y: i, found: true}
		}
	}
	return best
}

// patchDiff sums |a-b| over the colour channels of the target patch and the
// patch at (sx, sy). It gives up, returning false, once the running sum
// reaches limit, since such a candidate can no longer win on its row.
func patchDiff(src *image.NRGBA, target Rect, sx, sy int, limit int64) (int64, bool) {
	b := src.Bounds()
	if sx+target.Width > b.Dx() || sy+target.Height > b.Dy() {
		return 0, false
	}

	var sum int64
	rowBytes := target.Width * 4
	for row := 0; row < target.Height; row++ {
		a := src.Pix[src.PixOffset(target.X, target.Y+row):][:rowBytes]
		c := src.Pix[src.PixOffset(sx, sy+row):][:rowBytes]
		for k := 0; k < rowBytes; k += 4 {
			sum += absDiff(a[k], c[k]) + absDiff(a[k+1], c[k+1]) + absDiff(a[k+2], c[k+2])
		}
		if sum >= limit {
			return sum, false
		}
	}
	return sum, true
}

// cloneRegions patches every rectangle in dst with its best match from src.
// All reads come from src, so earlier patches never feed later searches.
// Rectangles without a match are returned in unmatched and left as they are.
func cloneRegions(src, dst *image.NRGBA, rects []Rect, check func() error) (matches []Match, unmatched []Rect, err error) {
	for _, r := range rects {
		if err := check(); err != nil {
			return nil, nil, err
		}

		m, ok := FindBestMatch(src, r)
		if !ok {
			unmatched = append(unmatched, r)
			continue
		}
		imaging.CopyRegion(dst, r.X, r.Y, src, m.X, m.Y, r.Width, r.Height)
		matches = append(matches, m)
	}
	return matches, unmatched, nil
}

func absDiff(a, b uint8) int64 {
	if a > b {
		return int64(a - b)
	}
	return int64(b - a)
}

// ceilDiv returns the number of stride steps starting at 0 that stay below n.
func ceilDiv(n, stride int) int {
	if n <= 0 {
		return 0
	}
	return (n + stride - 1) / stride
}
