package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/ironsheep/watermark-tools-mcp/internal/config"
	"github.com/ironsheep/watermark-tools-mcp/internal/imaging"
	"github.com/ironsheep/watermark-tools-mcp/internal/logging"
	"github.com/ironsheep/watermark-tools-mcp/internal/watermark"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const description = `Erase watermarks from images by painting over rectangles.

Rectangles are given as x,y,width,height in pixels. Methods:
  inpaint (1)  reconstruct from surrounding pixels (default)
  blur    (2)  Gaussian blur each rectangle
  fill    (3)  paint with the mean color around each rectangle
  clone   (4)  copy the most similar patch from elsewhere in the image`

// globals is bound into every command's Run method.
type globals struct {
	ctx context.Context
	log zerolog.Logger
	out io.Writer
}

// CLI is the command tree parsed by kong.
type CLI struct {
	LogLevel  string `help:"Log level (debug, info, warn, error)." env:"WATERMARK_LOG_LEVEL" default:"info"`
	LogFormat string `help:"Log format." env:"WATERMARK_LOG_FORMAT" enum:"json,console" default:"console"`

	Version kong.VersionFlag `short:"v" help:"Print version information and exit."`

	Remove removeCmd `cmd:"" help:"Remove a watermark from one image."`
	Batch  batchCmd  `cmd:"" help:"Remove the same watermark from every image in a directory."`
	Config configCmd `cmd:"" help:"Save or show a watermark configuration file."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("watermark-remover"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Vars{"version": versionString()},
	)

	log := logging.Stderr(logging.Options{Level: cli.LogLevel, Console: cli.LogFormat == "console"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := kctx.Run(&globals{ctx: ctx, log: log, out: os.Stdout}); err != nil {
		fmt.Fprintf(os.Stderr, "watermark-remover: %s: %v\n", errorKind(err), err)
		stop()
		os.Exit(1)
	}
}

func versionString() string {
	return fmt.Sprintf("watermark-remover %s (built %s, commit %s, inpainter %s)",
		Version, BuildTime, GitCommit, watermark.InpainterName)
}

// errorKind names the class of failure so scripts can tell them apart.
func errorKind(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, watermark.ErrUnsupportedMethod):
		return "unsupported method"
	case errors.Is(err, imaging.ErrLoad):
		return "load error"
	case errors.Is(err, imaging.ErrWrite):
		return "write error"
	case errors.Is(err, watermark.ErrNoMatch):
		return "no clone source"
	case errors.Is(err, watermark.ErrInpaint):
		return "inpaint error"
	case errors.Is(err, config.ErrInvalid):
		return "invalid config"
	default:
		return "error"
	}
}
