package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/watermark-tools-mcp/internal/logging"
	"github.com/ironsheep/watermark-tools-mcp/internal/server"
	"github.com/ironsheep/watermark-tools-mcp/internal/watermark"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("watermark-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  Inpainter:  %s\n", watermark.InpainterName)
			return
		case "--help", "-h", "help":
			fmt.Println("watermark-mcp - MCP server for watermark removal")
			fmt.Println()
			fmt.Println("Usage: watermark-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Printf("  %s=debug|info|warn|error    Log level (default info)\n", logging.EnvLevel)
			fmt.Printf("  %s=console                 Human readable logs instead of JSON\n", logging.EnvFormat)
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Logs are written to stderr.")
			return
		}
	}

	// stdout is for MCP protocol
	log := logging.Stderr(logging.FromEnv())
	log.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Str("inpainter", watermark.InpainterName).
		Msg("starting watermark MCP server")

	server.Version = Version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(log)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
