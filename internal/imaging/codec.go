package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrWrite is returned (wrapped) when an output image cannot be encoded or
// persisted, including when its directory cannot be created.
var ErrWrite = errors.New("image write failed")

// jpegQuality matches the quality OpenCV uses by default when writing JPEG.
const jpegQuality = 95

// supportedExtensions lists the file extensions treated as images when
// scanning directories.
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".webp": true,
}

// IsSupportedImage reports whether name has an image extension this tool
// reads. The comparison is case-insensitive.
func IsSupportedImage(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// OutputPath returns the path an image destined for path will actually be
// written to. Formats that can be decoded but not encoded (WebP) get a ".png"
// extension so the file contents match the name.
func OutputPath(path string) string {
	if _, err := imaging.FormatFromFilename(path); err == nil {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
}

// Save encodes img to path, choosing the format from the extension.
//
// The parent directory is created if needed. The image is first written to a
// temporary file in the same directory and then renamed over path, so a failed
// encode never leaves a truncated file behind. Paths whose extension cannot be
// encoded are rewritten by OutputPath; the final path is returned.
//
// # Errors
//
// Every failure wraps ErrWrite.
func Save(path string, img image.Image) (string, error) {
	path = OutputPath(path)

	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: failed to create output directory: %v", ErrWrite, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return "", fmt.Errorf("%w: failed to create temp file: %v", ErrWrite, err)
	}
	tmpName := tmp.Name()

	encErr := imaging.Encode(tmp, img, format, imaging.JPEGQuality(jpegQuality))
	closeErr := tmp.Close()
	if encErr != nil || closeErr != nil {
		os.Remove(tmpName)
		if encErr == nil {
			encErr = closeErr
		}
		return "", fmt.Errorf("%w: failed to encode %s: %v", ErrWrite, path, encErr)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: failed to move output into place: %v", ErrWrite, err)
	}

	return path, nil
}

// EncodeBase64PNG encodes img as PNG and returns it base64 encoded, the
// representation MCP clients receive for previews.
func EncodeBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
