package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ironsheep/watermark-tools-mcp/internal/batch"
	"github.com/ironsheep/watermark-tools-mcp/internal/config"
	"github.com/ironsheep/watermark-tools-mcp/internal/watermark"
)

// regionFlags are shared by remove and batch. Explicit flags override the
// values read from --config.
type regionFlags struct {
	Rect   []string `short:"r" sep:"none" placeholder:"X,Y,W,H" help:"Rectangle to erase; repeat for more."`
	Method string   `short:"m" help:"Removal method: inpaint, blur, fill, clone or 1-4."`
	Config string   `short:"c" type:"existingfile" help:"JSON or YAML file with rectangles and method."`
	Strict bool     `help:"Fail when the clone method finds no source patch."`
}

func (f regionFlags) resolve() (config.Config, error) {
	cfg := config.Config{Method: watermark.MethodInpaint}
	if f.Config != "" {
		loaded, err := config.Load(f.Config)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	} else if len(f.Rect) == 0 {
		return config.Config{}, fmt.Errorf("%w: give at least one --rect or a --config file", config.ErrInvalid)
	}

	if len(f.Rect) > 0 {
		rects, err := config.ParseRects(f.Rect)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Rectangles = rects
	}
	if f.Method != "" {
		m, err := watermark.ParseMethod(f.Method)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Method = m
	}
	return cfg, nil
}

type removeCmd struct {
	In      string      `short:"i" required:"" type:"existingfile" help:"Input image."`
	Out     string      `short:"o" help:"Output image. Defaults to <name>_no_watermark<ext> next to the input."`
	Regions regionFlags `embed:""`
}

func (c *removeCmd) Run(g *globals) error {
	cfg, err := c.Regions.resolve()
	if err != nil {
		return err
	}

	out := c.Out
	if out == "" {
		out = filepath.Join(filepath.Dir(c.In), batch.OutputName(c.In))
	}

	opts := cfg.Options()
	opts.Strict = c.Regions.Strict
	opts.Logger = &g.log

	res, err := watermark.RemoveFile(g.ctx, c.In, out, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(g.out, "%s -> %s (%s, %d region(s)", c.In, res.Output, res.Method, len(res.Applied))
	if res.Skipped > 0 {
		fmt.Fprintf(g.out, ", %d outside the image", res.Skipped)
	}
	fmt.Fprintln(g.out, ")")
	for _, w := range res.Warnings() {
		fmt.Fprintf(g.out, "warning: %s\n", w)
	}
	return nil
}

type batchCmd struct {
	Src     string      `required:"" type:"existingdir" help:"Directory of input images."`
	Dst     string      `required:"" help:"Directory for cleaned images; created if missing."`
	Workers int         `short:"w" default:"1" help:"Images processed at once."`
	Regions regionFlags `embed:""`
}

func (c *batchCmd) Run(g *globals) error {
	cfg, err := c.Regions.resolve()
	if err != nil {
		return err
	}

	stats, err := batch.Run(g.ctx, c.Src, c.Dst, cfg, batch.Options{
		Workers: c.Workers,
		Strict:  c.Regions.Strict,
		Logger:  &g.log,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(g.out, "run %s: %d image(s), %d cleaned, %d failed in %s\n",
		stats.RunID, stats.Total, stats.Success, stats.Failed, stats.Elapsed.Round(time.Millisecond))
	for _, f := range stats.Failures {
		fmt.Fprintf(g.out, "failed: %s: %s\n", f.Path, f.Error)
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d image(s) failed", stats.Failed, stats.Total)
	}
	return nil
}

type configCmd struct {
	Save configSaveCmd `cmd:"" help:"Write rectangles and method to a file."`
	Show configShowCmd `cmd:"" help:"Print the contents of a configuration file."`
}

type configSaveCmd struct {
	Path   string   `arg:"" help:"File to write (.json, .yaml or .yml)."`
	Rect   []string `short:"r" sep:"none" required:"" placeholder:"X,Y,W,H" help:"Rectangle to erase; repeat for more."`
	Method string   `short:"m" default:"inpaint" help:"Removal method: inpaint, blur, fill, clone or 1-4."`
}

func (c *configSaveCmd) Run(g *globals) error {
	rects, err := config.ParseRects(c.Rect)
	if err != nil {
		return err
	}
	m, err := watermark.ParseMethod(c.Method)
	if err != nil {
		return err
	}

	if err := config.Save(c.Path, config.Config{Rectangles: rects, Method: m}); err != nil {
		return err
	}
	g.log.Info().Str("path", c.Path).Int("rectangles", len(rects)).Msg("configuration saved")
	fmt.Fprintf(g.out, "saved %d rectangle(s) with method %s to %s\n", len(rects), m, c.Path)
	return nil
}

type configShowCmd struct {
	Path string `arg:"" type:"existingfile" help:"File to read."`
	JSON bool   `help:"Print as JSON instead of a table."`
}

func (c *configShowCmd) Run(g *globals) error {
	cfg, err := config.Load(c.Path)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(g.out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Rectangles []watermark.Rect `json:"rectangles"`
			Method     watermark.Method `json:"method"`
		}{cfg.Rectangles, cfg.Method})
	}

	fmt.Fprintf(g.out, "method: %s\n", cfg.Method)
	if len(cfg.Rectangles) == 0 {
		fmt.Fprintln(g.out, "no rectangles")
	}
	for i, r := range cfg.Rectangles {
		fmt.Fprintf(g.out, "%3d  x=%d y=%d w=%d h=%d\n", i+1, r.X, r.Y, r.Width, r.Height)
	}
	return nil
}
