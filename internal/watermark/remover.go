package watermark

import (
	"context"
	"fmt"
	"image"

	"github.com/rs/zerolog"

	"github.com/ironsheep/watermark-tools-mcp/internal/imaging"
)

// Options configures a single removal. It is passed explicitly to every entry
// point; the package keeps no global state.
type Options struct {
	// Method selects the removal strategy. Required.
	Method Method

	// Rectangles are the regions to erase, in the order they are processed.
	// They are clamped to the image; empty results are skipped.
	Rectangles []Rect

	// Inpainter overrides DefaultInpainter for MethodInpaint.
	Inpainter Inpainter

	// Strict turns a clone search without any candidate into ErrNoMatch
	// instead of leaving that rectangle untouched.
	Strict bool

	// Logger receives progress messages. Nil disables logging.
	Logger *zerolog.Logger
}

// Result is the outcome of a removal.
type Result struct {
	// Image is the processed image, a new buffer independent of the input.
	Image *image.NRGBA `json:"-"`

	// Mask marks the clamped regions with 255.
	Mask *image.Gray `json:"-"`

	Method Method `json:"method"`

	// Applied lists the clamped, non-empty rectangles that were processed.
	Applied []Rect `json:"applied"`

	// Skipped counts requested rectangles that clamped to nothing.
	Skipped int `json:"skipped"`

	// Matches holds the clone source chosen for each patched rectangle.
	Matches []Match `json:"matches,omitempty"`

	// Unmatched lists clone targets left as they were because no candidate
	// patch existed.
	Unmatched []Rect `json:"unmatched,omitempty"`

	// Fills holds the color painted over each rectangle by MethodFill.
	Fills []FillColor `json:"fills,omitempty"`

	// Output is the path written by RemoveFile.
	Output string `json:"output,omitempty"`
}

// Warnings describes recoverable conditions the caller may want to surface.
func (r *Result) Warnings() []string {
	var out []string
	for _, u := range r.Unmatched {
		out = append(out, fmt.Sprintf("no clone source for rectangle %s; left unchanged", u))
	}
	if r.Method == MethodFill && len(r.Fills) < len(r.Applied) {
		out = append(out, fmt.Sprintf("%d rectangle(s) had no surrounding pixels to sample; left unchanged", len(r.Applied)-len(r.Fills)))
	}
	return out
}

// Remove erases the configured rectangles from img and returns the result.
// img is never modified.
//
// The method is validated before any pixel work. ctx is checked between
// rectangles; cancellation returns ctx.Err() and no result.
//
// For MethodClone every search reads the original pixels, never the output
// of an earlier rectangle. A rectangle with no candidate is reported in
// Result.Unmatched, or fails the call with ErrNoMatch when opts.Strict is set.
func Remove(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	if !opts.Method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, opts.Method)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", imaging.ErrLoad)
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	src := imaging.ToNRGBA(img)
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	log.Debug().Int("width", width).Int("height", height).Str("method", string(opts.Method)).Msg("removing watermark")

	rects := ClampRects(opts.Rectangles, width, height)
	for _, r := range rects {
		log.Debug().Stringer("rect", r).Msg("region added")
	}

	res := &Result{
		Mask:    BuildMask(width, height, rects),
		Method:  opts.Method,
		Applied: rects,
		Skipped: len(opts.Rectangles) - len(rects),
	}

	check := func() error { return ctx.Err() }
	if err := check(); err != nil {
		return nil, err
	}

	switch opts.Method {
	case MethodInpaint:
		inpainter := opts.Inpainter
		if inpainter == nil {
			inpainter = DefaultInpainter()
		}
		if len(rects) == 0 {
			res.Image = src
			break
		}
		out, err := inpainter.Inpaint(src, res.Mask, InpaintRadius)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInpaint, err)
		}
		res.Image = out

	case MethodBlur:
		if err := blurRegions(src, rects, check); err != nil {
			return nil, err
		}
		res.Image = src

	case MethodFill:
		dst := imaging.ToNRGBA(src)
		fills, err := fillRegions(src, dst, rects, check)
		if err != nil {
			return nil, err
		}
		res.Fills = fills
		res.Image = dst

	case MethodClone:
		dst := imaging.ToNRGBA(src)
		matches, unmatched, err := cloneRegions(src, dst, rects, check)
		if err != nil {
			return nil, err
		}
		res.Matches = matches
		res.Unmatched = unmatched
		res.Image = dst

		for _, m := range matches {
			log.Debug().Stringer("rect", m.Target).Int("source_x", m.X).Int("source_y", m.Y).Float64("score", m.Score).Msg("clone source found")
		}
		if len(unmatched) > 0 {
			if opts.Strict {
				return nil, fmt.Errorf("%w: %d rectangle(s), first %s", ErrNoMatch, len(unmatched), unmatched[0])
			}
			for _, u := range unmatched {
				log.Warn().Stringer("rect", u).Msg("no clone source found; region left unchanged")
			}
		}
	}

	log.Info().Str("method", string(opts.Method)).Int("regions", len(rects)).Int("skipped", res.Skipped).Msg("watermark removal complete")
	return res, nil
}

// RemoveFile loads in, removes the configured rectangles and writes the
// result to out. Failures wrap imaging.ErrLoad, ErrUnsupportedMethod or
// imaging.ErrWrite so callers can tell them apart. The path actually written
// (see imaging.OutputPath) is stored in Result.Output.
func RemoveFile(ctx context.Context, in, out string, opts Options) (*Result, error) {
	if !opts.Method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, opts.Method)
	}

	img, _, err := imaging.Load(in)
	if err != nil {
		return nil, err
	}

	res, err := Remove(ctx, img, opts)
	if err != nil {
		return nil, err
	}

	written, err := imaging.Save(out, res.Image)
	if err != nil {
		return nil, err
	}
	res.Output = written

	if opts.Logger != nil {
		opts.Logger.Info().Str("input", in).Str("output", written).Msg("watermark removed")
	}
	return res, nil
}
