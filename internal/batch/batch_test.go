package batch

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/watermark-tools-mcp/internal/config"
	"github.com/ironsheep/watermark-tools-mcp/internal/watermark"
)

// writeTestImage writes a small opaque PNG with a bright square in the middle.
func writeTestImage(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			c := color.NRGBA{30, 60, 90, 255}
			if x >= 15 && x < 25 && y >= 15 && y < 25 {
				c = color.NRGBA{250, 250, 250, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func setupSourceDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"c.png", "a.png", "b.PNG"} {
		writeTestImage(t, filepath.Join(dir, name))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not an image"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))
	return dir
}

var fillCenter = config.Config{
	Rectangles: []watermark.Rect{{X: 15, Y: 15, Width: 10, Height: 10}},
	Method:     watermark.MethodFill,
}

func TestListImages(t *testing.T) {
	dir := setupSourceDir(t)

	files, err := ListImages(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{"a.png", "b.PNG", "broken.png", "c.png"}, names)
}

func TestListImages_MissingDir(t *testing.T) {
	_, err := ListImages(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOutputName(t *testing.T) {
	tests := map[string]string{
		"photo.jpg":          "photo_no_watermark.jpg",
		"/tmp/x/scan.PNG":    "scan_no_watermark.PNG",
		"archive.tar.png":    "archive.tar_no_watermark.png",
		"dir/name_with.webp": "name_with_no_watermark.webp",
	}
	for in, want := range tests {
		assert.Equal(t, want, OutputName(in), in)
	}
}

func TestPlanOutputs(t *testing.T) {
	dst := "out"
	files := []string{
		"src/logo.png",
		"src/logo.webp",
		"src/logo_webp.png",
		"src/photo.jpg",
		"src/scan.webp",
	}

	assert.Equal(t, []string{
		filepath.Join(dst, "logo_no_watermark.png"),
		filepath.Join(dst, "logo_webp_no_watermark.png"),
		// Its plain name was taken by logo.webp above.
		filepath.Join(dst, "logo_webp_png_no_watermark.png"),
		filepath.Join(dst, "photo_no_watermark.jpg"),
		filepath.Join(dst, "scan_no_watermark.png"),
	}, planOutputs(dst, files))
}

func TestPlanOutputs_CounterWhenQualifiedNameIsTaken(t *testing.T) {
	files := []string{"a/x.png", "a/x_webp.png", "a/x.webp"}

	// x.webp wants x_no_watermark.png, then x_webp_no_watermark.png; both are
	// taken, so a counter is added.
	assert.Equal(t, []string{
		"x_no_watermark.png",
		"x_webp_no_watermark.png",
		"x_webp_2_no_watermark.png",
	}, basenames(planOutputs("out", files)))
}

func basenames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

func TestRun_SameNameDifferentFormat(t *testing.T) {
	src := t.TempDir()
	writeTestImage(t, filepath.Join(src, "x.png"))
	// PNG bytes under a .webp name; decoding sniffs the content.
	writeTestImage(t, filepath.Join(src, "x.webp"))
	dst := t.TempDir()

	stats, err := Run(context.Background(), src, dst, fillCenter, Options{Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Success)
	assert.Equal(t, []string{
		filepath.Join(dst, "x_no_watermark.png"),
		filepath.Join(dst, "x_webp_no_watermark.png"),
	}, stats.Outputs)
	for _, out := range stats.Outputs {
		assert.FileExists(t, out)
	}

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRun_CountsFailuresWithoutStopping(t *testing.T) {
	src := setupSourceDir(t)
	dst := filepath.Join(t.TempDir(), "out")

	stats, err := Run(context.Background(), src, dst, fillCenter, Options{})
	require.NoError(t, err)

	assert.NotEmpty(t, stats.RunID)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Success)
	assert.Equal(t, 1, stats.Failed)
	require.Len(t, stats.Failures, 1)
	assert.Equal(t, filepath.Join(src, "broken.png"), stats.Failures[0].Path)

	for _, name := range []string{"a_no_watermark.png", "b_no_watermark.PNG", "c_no_watermark.png"} {
		path := filepath.Join(dst, name)
		assert.FileExists(t, path)
		assert.Contains(t, stats.Outputs, path)
	}
	assert.NoFileExists(t, filepath.Join(dst, "broken_no_watermark.png"))
}

func TestRun_RemovesWatermark(t *testing.T) {
	src := t.TempDir()
	writeTestImage(t, filepath.Join(src, "one.png"))
	dst := t.TempDir()

	_, err := Run(context.Background(), src, dst, fillCenter, Options{})
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dst, "one_no_watermark.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	r, g, b, _ := img.At(20, 20).RGBA()
	assert.Equal(t, []uint32{30, 60, 90}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestRun_ParallelWorkersMatchSequential(t *testing.T) {
	src := setupSourceDir(t)

	seq, err := Run(context.Background(), src, t.TempDir(), fillCenter, Options{Workers: 1})
	require.NoError(t, err)
	par, err := Run(context.Background(), src, t.TempDir(), fillCenter, Options{Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, seq.Total, par.Total)
	assert.Equal(t, seq.Success, par.Success)
	assert.Equal(t, seq.Failed, par.Failed)
	assert.NotEqual(t, seq.RunID, par.RunID)
}

func TestRun_UnsupportedMethodFailsUpFront(t *testing.T) {
	src := setupSourceDir(t)
	dst := filepath.Join(t.TempDir(), "out")

	_, err := Run(context.Background(), src, dst, config.Config{Method: "smudge"}, Options{})
	assert.ErrorIs(t, err, watermark.ErrUnsupportedMethod)
	assert.NoDirExists(t, dst)
}

func TestRun_EmptyDirectory(t *testing.T) {
	stats, err := Run(context.Background(), t.TempDir(), t.TempDir(), fillCenter, Options{})
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.Success)
	assert.Zero(t, stats.Failed)
}

func TestRun_MissingSource(t *testing.T) {
	_, err := Run(context.Background(), filepath.Join(t.TempDir(), "missing"), t.TempDir(), fillCenter, Options{})
	assert.Error(t, err)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := Run(ctx, setupSourceDir(t), t.TempDir(), fillCenter, Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Success)
}
