package detection

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// edgeThreshold is the grayscale step, in levels, that marks an edge.
const edgeThreshold = 30

// edgeMap marks pixels whose grayscale value differs from their right or
// lower neighbour by more than edgeThreshold. Border pixels are never edges.
type edgeMap struct {
	width, height int
	edges         [][]bool
}

// detectEdges converts img to grayscale and marks its edges.
func detectEdges(img image.Image) *edgeMap {
	gray := effect.Grayscale(img)
	width, height := gray.Bounds().Dx(), gray.Bounds().Dy()

	m := &edgeMap{width: width, height: height, edges: make([][]bool, height)}
	for y := 0; y < height; y++ {
		m.edges[y] = make([]bool, width)
		if y == 0 || y == height-1 {
			continue
		}
		row := gray.Pix[y*gray.Stride:]
		below := gray.Pix[(y+1)*gray.Stride:]
		for x := 1; x < width-1; x++ {
			c := int(row[x])
			if absInt(c-int(row[x+1])) > edgeThreshold || absInt(c-int(below[x])) > edgeThreshold {
				m.edges[y][x] = true
			}
		}
	}
	return m
}

// integral returns the summed-area table of the edge map: entry (y, x) holds
// the number of edge pixels above and to the left of (x, y).
func (m *edgeMap) integral() [][]int {
	sat := make([][]int, m.height+1)
	sat[0] = make([]int, m.width+1)
	for y := 0; y < m.height; y++ {
		sat[y+1] = make([]int, m.width+1)
		rowSum := 0
		for x := 0; x < m.width; x++ {
			if m.edges[y][x] {
				rowSum++
			}
			sat[y+1][x+1] = sat[y][x+1] + rowSum
		}
	}
	return sat
}

// countIn returns the number of edge pixels in the w×h window at (x, y).
func countIn(sat [][]int, x, y, w, h int) int {
	return sat[y+h][x+w] - sat[y][x+w] - sat[y+h][x] + sat[y][x]
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
