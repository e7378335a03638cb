package watermark

import (
	"context"
	"errors"
	"testing"
)

func TestFindBestMatch_ExactDuplicate(t *testing.T) {
	img := createNoiseImage(100, 100, 1, 0, 255)
	target := Rect{X: 50, Y: 50, Width: 10, Height: 10}

	// Plant a copy of the target on the search grid
	copyPatch(img, 50, 50, 20, 30, 10, 10)

	m, ok := FindBestMatch(img, target)
	if !ok {
		t.Fatal("FindBestMatch found no candidate")
	}
	if m.X != 20 || m.Y != 30 {
		t.Errorf("match origin: got (%d,%d), want (20,30)", m.X, m.Y)
	}
	if m.Score != 0 {
		t.Errorf("match score: got %f, want 0", m.Score)
	}
	if m.Target != target {
		t.Errorf("match target: got %s, want %s", m.Target, target)
	}
}

func TestFindBestMatch_TieKeepsFirstInRowMajorOrder(t *testing.T) {
	tests := []struct {
		name         string
		first, later [2]int // (x, y) origins of identical duplicates
	}{
		{"same row", [2]int{20, 10}, [2]int{60, 10}},
		{"earlier row wins over smaller x", [2]int{70, 10}, [2]int{10, 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createNoiseImage(100, 100, 2, 0, 255)
			target := Rect{X: 45, Y: 65, Width: 10, Height: 10}

			copyPatch(img, target.X, target.Y, tt.first[0], tt.first[1], 10, 10)
			copyPatch(img, target.X, target.Y, tt.later[0], tt.later[1], 10, 10)

			m, ok := FindBestMatch(img, target)
			if !ok {
				t.Fatal("FindBestMatch found no candidate")
			}
			if m.X != tt.first[0] || m.Y != tt.first[1] {
				t.Errorf("match origin: got (%d,%d), want (%d,%d)", m.X, m.Y, tt.first[0], tt.first[1])
			}
		})
	}
}

func TestFindBestMatch_UniformImagePicksOrigin(t *testing.T) {
	img := createSolidImage(60, 60, colorGray(128))

	m, ok := FindBestMatch(img, Rect{X: 30, Y: 30, Width: 10, Height: 10})
	if !ok {
		t.Fatal("FindBestMatch found no candidate")
	}
	if m.X != 0 || m.Y != 0 || m.Score != 0 {
		t.Errorf("got (%d,%d) score %f, want (0,0) score 0", m.X, m.Y, m.Score)
	}
}

func TestFindBestMatch_SkipsTargetOrigins(t *testing.T) {
	// Every grid origin except those inside the target is far from the target
	img := createSolidImage(60, 60, colorGray(0))
	target := Rect{X: 0, Y: 0, Width: 25, Height: 25}
	for y := 0; y < 25; y++ {
		for x := 0; x < 25; x++ {
			img.SetNRGBA(x, y, colorGray(255))
		}
	}

	m, ok := FindBestMatch(img, target)
	if !ok {
		t.Fatal("FindBestMatch found no candidate")
	}
	if target.containsOrigin(m.X, m.Y) {
		t.Errorf("match origin (%d,%d) lies inside the target", m.X, m.Y)
	}
}

func TestFindBestMatch_NoCandidate(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		target        Rect
	}{
		{"rect as wide as image", 50, 100, Rect{0, 10, 50, 10}},
		{"rect as tall as image", 100, 50, Rect{10, 0, 10, 50}},
		{"only candidates are inside the target", 20, 20, Rect{0, 0, 15, 15}},
		{"empty target", 100, 100, Rect{10, 10, 0, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createNoiseImage(tt.width, tt.height, 3, 0, 255)
			if _, ok := FindBestMatch(img, tt.target); ok {
				t.Error("FindBestMatch should report no candidate")
			}
		})
	}
}

func TestFindBestMatch_AgreesWithSequentialScan(t *testing.T) {
	targets := []Rect{
		{13, 17, 9, 7},
		{0, 0, 12, 12},
		{70, 40, 20, 15},
		{5, 60, 30, 8},
		{88, 51, 11, 11},
	}

	for seed := int64(10); seed < 14; seed++ {
		// Coarse noise produces plenty of near ties
		img := createNoiseImage(100, 75, seed, 100, 104)
		for _, target := range targets {
			target, ok := ClampRect(target, 100, 75)
			if !ok {
				continue
			}
			wantX, wantY, wantScore, wantOK := sequentialBestMatch(img, target.X, target.Y, target.Width, target.Height)
			m, gotOK := FindBestMatch(img, target)

			if gotOK != wantOK {
				t.Fatalf("seed %d %s: found = %v, want %v", seed, target, gotOK, wantOK)
			}
			if !wantOK {
				continue
			}
			if m.X != wantX || m.Y != wantY || m.Score != wantScore {
				t.Errorf("seed %d %s: got (%d,%d) %.6f, want (%d,%d) %.6f",
					seed, target, m.X, m.Y, m.Score, wantX, wantY, wantScore)
			}
		}
	}
}

func TestRemove_CloneCopiesDuplicate(t *testing.T) {
	img := createNoiseImage(100, 100, 4, 0, 255)
	target := Rect{X: 50, Y: 50, Width: 10, Height: 10}
	copyPatch(img, 50, 50, 20, 30, 10, 10)

	original := createNoiseImage(100, 100, 4, 0, 255)
	copyPatch(original, 50, 50, 20, 30, 10, 10)

	res, err := Remove(context.Background(), img, Options{Method: MethodClone, Rectangles: []Rect{target}})
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(res.Matches) != 1 || res.Matches[0].X != 20 || res.Matches[0].Y != 30 {
		t.Fatalf("matches: got %+v, want one match at (20,30)", res.Matches)
	}
	if !regionEqual(res.Image, 50, 50, original, 20, 30, 10, 10) {
		t.Error("target region does not equal the duplicate's original pixels")
	}
	assertOutsideUnchanged(t, original, res.Image, target)
}

func TestRemove_CloneReadsOriginalForEveryRectangle(t *testing.T) {
	img := createNoiseImage(100, 100, 5, 10, 240)

	a := Rect{X: 50, Y: 50, Width: 10, Height: 10}
	b := Rect{X: 55, Y: 50, Width: 10, Height: 10} // overlaps the right half of a

	// A near-duplicate of a, so patching a changes its pixels
	copyPatch(img, a.X, a.Y, 20, 20, 10, 10)
	for y := 20; y < 30; y++ {
		for x := 20; x < 30; x++ {
			c := img.NRGBAAt(x, y)
			c.R += 3
			c.G += 3
			c.B += 3
			img.SetNRGBA(x, y, c)
		}
	}

	// An exact duplicate of b's original content
	copyPatch(img, b.X, b.Y, 20, 70, 10, 10)

	res, err := Remove(context.Background(), img, Options{Method: MethodClone, Rectangles: []Rect{a, b}})
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(res.Matches) != 2 {
		t.Fatalf("matches: got %d, want 2", len(res.Matches))
	}

	ma, mb := res.Matches[0], res.Matches[1]
	if ma.X != 20 || ma.Y != 20 || ma.Score != 3 {
		t.Errorf("first match: got (%d,%d) %.2f, want (20,20) 3.00", ma.X, ma.Y, ma.Score)
	}
	if mb.X != 20 || mb.Y != 70 || mb.Score != 0 {
		t.Errorf("second match: got (%d,%d) %.2f, want (20,70) 0.00; search saw patched pixels", mb.X, mb.Y, mb.Score)
	}
	if !regionEqual(res.Image, b.X, b.Y, img, 20, 70, 10, 10) {
		t.Error("second rectangle does not hold its source patch")
	}
}

func TestRemove_CloneNoMatch(t *testing.T) {
	img := createNoiseImage(30, 30, 6, 0, 255)
	rect := Rect{X: 0, Y: 0, Width: 30, Height: 10}

	res, err := Remove(context.Background(), img, Options{Method: MethodClone, Rectangles: []Rect{rect}})
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(res.Unmatched) != 1 || res.Unmatched[0] != rect {
		t.Errorf("unmatched: got %v, want [%s]", res.Unmatched, rect)
	}
	if len(res.Warnings()) != 1 {
		t.Errorf("warnings: got %v, want one", res.Warnings())
	}
	if !regionEqual(res.Image, 0, 0, img, 0, 0, 30, 30) {
		t.Error("image changed although no match was found")
	}
}

func TestRemove_CloneNoMatchStrict(t *testing.T) {
	img := createNoiseImage(30, 30, 6, 0, 255)

	_, err := Remove(context.Background(), img, Options{
		Method:     MethodClone,
		Rectangles: []Rect{{X: 0, Y: 0, Width: 30, Height: 10}},
		Strict:     true,
	})
	if err == nil {
		t.Fatal("strict Remove should fail without a clone source")
	}
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("error should wrap ErrNoMatch, got %v", err)
	}
}
