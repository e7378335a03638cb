// Package batch removes the same watermark from every image in a directory.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/watermark-tools-mcp/internal/config"
	"github.com/ironsheep/watermark-tools-mcp/internal/imaging"
	"github.com/ironsheep/watermark-tools-mcp/internal/watermark"
)

// OutputSuffix is inserted between the base name and the extension of every
// output file.
const OutputSuffix = "_no_watermark"

// Options tunes a batch run.
type Options struct {
	// Workers is the number of images processed at once. Values below 1
	// mean 1, which processes images in name order.
	Workers int

	// Strict is passed through to every removal.
	Strict bool

	// Inpainter overrides the default inpainting backend.
	Inpainter watermark.Inpainter

	// Logger receives per-image progress. Nil disables logging.
	Logger *zerolog.Logger
}

// Failure records an image that could not be processed.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Stats summarises a batch run.
type Stats struct {
	RunID    string        `json:"run_id"`
	Total    int           `json:"total"`
	Success  int           `json:"success"`
	Failed   int           `json:"failed"`
	Failures []Failure     `json:"failures,omitempty"`
	Outputs  []string      `json:"outputs,omitempty"`
	Elapsed  time.Duration `json:"elapsed_ns"`
}

// ListImages returns the regular files in dir with a supported image
// extension, sorted by name. Subdirectories are not descended into.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !imaging.IsSupportedImage(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// OutputName returns "<name>_no_watermark<ext>" for the base name of path.
func OutputName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + OutputSuffix + ext
}

// planOutputs assigns each input its output path in dst, after the WebP to
// PNG rewrite. Inputs that would land on the same file, such as logo.png and
// logo.webp, keep the plain name for the first in order; later ones get their
// source extension folded into the name (logo_webp_no_watermark.png).
func planOutputs(dst string, files []string) []string {
	outs := make([]string, len(files))
	claimed := make(map[string]bool, len(files))
	for i, in := range files {
		out := imaging.OutputPath(filepath.Join(dst, OutputName(in)))
		for n := 1; claimed[out]; n++ {
			out = imaging.OutputPath(filepath.Join(dst, qualifiedOutputName(in, n)))
		}
		claimed[out] = true
		outs[i] = out
	}
	return outs
}

// qualifiedOutputName is OutputName with the source extension, and from the
// second attempt on a counter, appended to the base name.
func qualifiedOutputName(path string, attempt int) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext) + "_" + strings.ToLower(strings.TrimPrefix(ext, "."))
	if attempt > 1 {
		name += fmt.Sprintf("_%d", attempt)
	}
	return name + OutputSuffix + ext
}

// Run applies cfg to every image in src and writes the results to dst,
// creating it if needed.
//
// A failing image is counted, logged and recorded in Stats.Failures; the
// remaining images are still processed. Run itself only fails when the
// method is unsupported, src cannot be listed, dst cannot be created, or ctx
// is canceled. In the last case the stats gathered so far are returned along
// with ctx.Err().
//
// Every image gets its own output file; see planOutputs for how names that
// would collide are told apart.
func Run(ctx context.Context, src, dst string, cfg config.Config, opts Options) (Stats, error) {
	stats := Stats{RunID: ksuid.New().String()}

	if !cfg.Method.Valid() {
		return stats, fmt.Errorf("%w: %q", watermark.ErrUnsupportedMethod, cfg.Method)
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	log = log.With().Str("run_id", stats.RunID).Logger()

	files, err := ListImages(src)
	if err != nil {
		return stats, err
	}
	stats.Total = len(files)
	if len(files) == 0 {
		log.Warn().Str("dir", src).Msg("no images found")
		return stats, nil
	}

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return stats, fmt.Errorf("%w: failed to create output directory: %v", imaging.ErrWrite, err)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	start := time.Now()
	log.Info().Int("images", len(files)).Int("workers", workers).Str("method", string(cfg.Method)).Msg("batch started")

	removeOpts := cfg.Options()
	removeOpts.Strict = opts.Strict
	removeOpts.Inpainter = opts.Inpainter
	removeOpts.Logger = &log

	planned := planOutputs(dst, files)
	for i, in := range files {
		if filepath.Base(planned[i]) != imaging.OutputPath(OutputName(in)) {
			log.Warn().Str("file", in).Str("output", planned[i]).Msg("output name taken, writing under a qualified name")
		}
	}

	// Each worker writes only its own index.
	outputs := make([]string, len(files))
	failures := make([]*Failure, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range files {
		if gctx.Err() != nil {
			break
		}
		i, in := i, in
		g.Go(func() error {
			out := planned[i]
			log.Info().Int("index", i+1).Int("total", len(files)).Str("file", filepath.Base(in)).Msg("processing image")

			res, err := watermark.RemoveFile(gctx, in, out, removeOpts)
			if err != nil {
				// Cancellation stops the run; any other error only fails this image.
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Error().Err(err).Str("file", in).Msg("failed to process image")
				failures[i] = &Failure{Path: in, Error: err.Error()}
				return nil
			}

			for _, w := range res.Warnings() {
				log.Warn().Str("file", in).Msg(w)
			}
			outputs[i] = res.Output
			return nil
		})
	}
	runErr := g.Wait()
	if runErr == nil {
		runErr = ctx.Err()
	}

	for i := range files {
		switch {
		case failures[i] != nil:
			stats.Failed++
			stats.Failures = append(stats.Failures, *failures[i])
		case outputs[i] != "":
			stats.Success++
			stats.Outputs = append(stats.Outputs, outputs[i])
		}
	}
	stats.Elapsed = time.Since(start)

	log.Info().
		Int("total", stats.Total).
		Int("success", stats.Success).
		Int("failed", stats.Failed).
		Dur("elapsed", stats.Elapsed).
		Msg("batch finished")

	return stats, runErr
}
