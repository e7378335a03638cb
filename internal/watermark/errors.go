package watermark

import "errors"

var (
	// ErrUnsupportedMethod is returned before any pixel work when the method
	// selector is not one of inpaint, blur, fill or clone.
	ErrUnsupportedMethod = errors.New("unsupported removal method")

	// ErrNoMatch is returned in strict mode when the clone search finds no
	// candidate patch for at least one rectangle.
	ErrNoMatch = errors.New("no clone source found")

	// ErrInpaint wraps failures reported by the inpainting primitive.
	ErrInpaint = errors.New("inpainting failed")

	// ErrEmptyRegion is returned by the preview functions when a region
	// clamps to nothing.
	ErrEmptyRegion = errors.New("region does not cover the image")
)
