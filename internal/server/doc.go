// Package server implements the MCP (Model Context Protocol) server for the
// watermark removal tools.
//
// This package provides a JSON-RPC 2.0 server that exposes watermark removal
// through the MCP protocol, so an assistant can look at an image, work out
// where a watermark sits and erase it.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_crop: Render a clamped region as PNG, optionally before and after removal
//
// Watermark Removal:
//   - watermark_remove: Erase regions from one image
//   - watermark_batch: Erase the same regions from every image in a directory
//
// Planning Helpers:
//   - watermark_mask_preview: Highlight the clamped regions on the image
//   - watermark_find_match: Show which patch the clone method would copy
//   - watermark_suggest_regions: Guess watermark locations (edge heuristic or OCR)
//
// Configuration:
//   - watermark_config_save: Persist rectangles and method (JSON or YAML)
//   - watermark_config_load: Read them back
//
// Rectangles are given as [x, y, width, height] arrays or as objects with
// x, y, width and height keys.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images keyed by path.
// Files written by a removal are evicted so later inspection sees the new
// contents.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC error responses with:
//   - code: -32602 for malformed or missing arguments, -32000 for any other
//     tool failure, or the standard JSON-RPC codes for protocol errors
//   - message: Human-readable error description
//   - data: The Go error string, which names the failure kind ("image load
//     failed", "unsupported removal method", "image write failed", ...)
//
// # Usage
//
//	srv := server.New(logger)
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal().Err(err).Msg("server error")
//	}
package server
