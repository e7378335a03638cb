package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/watermark-tools-mcp/internal/batch"
	"github.com/ironsheep/watermark-tools-mcp/internal/config"
	"github.com/ironsheep/watermark-tools-mcp/internal/detection"
	"github.com/ironsheep/watermark-tools-mcp/internal/imaging"
	"github.com/ironsheep/watermark-tools-mcp/internal/ocr"
	"github.com/ironsheep/watermark-tools-mcp/internal/watermark"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "watermark_remove").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// paramsError marks a tool failure caused by malformed or missing arguments.
type paramsError struct {
	err error
}

func (e *paramsError) Error() string { return e.err.Error() }
func (e *paramsError) Unwrap() error { return e.err }

func invalidParams(format string, args ...interface{}) error {
	return &paramsError{err: fmt.Errorf(format, args...)}
}

// decodeArgs unmarshals tool arguments, reporting failures as invalid params.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &paramsError{err: err}
	}
	return nil
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Malformed arguments return a JSON-RPC error with code -32602; any other
// tool failure returns code -32000 with the error text as data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		var pe *paramsError
		if errors.As(err, &pe) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the appropriate imaging/watermark/batch/config function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_crop":
		return s.handleImageCrop(args)

	// Watermark Removal
	case "watermark_remove":
		return s.handleWatermarkRemove(ctx, args)
	case "watermark_batch":
		return s.handleWatermarkBatch(ctx, args)

	// Planning Helpers
	case "watermark_mask_preview":
		return s.handleMaskPreview(args)
	case "watermark_find_match":
		return s.handleFindMatch(ctx, args)
	case "watermark_suggest_regions":
		return s.handleSuggestRegions(args)

	// Configuration
	case "watermark_config_save":
		return s.handleConfigSave(args)
	case "watermark_config_load":
		return s.handleConfigLoad(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// rectArg accepts a rectangle as [x, y, width, height] or as an object.
type rectArg watermark.Rect

func (r *rectArg) UnmarshalJSON(data []byte) error {
	var arr []int
	if err := json.Unmarshal(data, &arr); err == nil {
		if len(arr) != 4 {
			return fmt.Errorf("rectangle %s: want [x, y, width, height]", data)
		}
		*r = rectArg{X: arr[0], Y: arr[1], Width: arr[2], Height: arr[3]}
		return nil
	}

	var obj struct {
		X      *int `json:"x"`
		Y      *int `json:"y"`
		Width  *int `json:"width"`
		Height *int `json:"height"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("rectangle %s: %w", data, err)
	}
	if obj.X == nil || obj.Y == nil || obj.Width == nil || obj.Height == nil {
		return fmt.Errorf("rectangle %s: x, y, width and height are required", data)
	}
	*r = rectArg{X: *obj.X, Y: *obj.Y, Width: *obj.Width, Height: *obj.Height}
	return nil
}

func toRects(args []rectArg) []watermark.Rect {
	rects := make([]watermark.Rect, len(args))
	for i, r := range args {
		rects[i] = watermark.Rect(r)
	}
	return rects
}

// removalArgs are the arguments shared by watermark_remove and watermark_batch.
type removalArgs struct {
	Rectangles *[]rectArg `json:"rectangles"`
	Method     string     `json:"method"`
	Config     string     `json:"config"`
	Strict     bool       `json:"strict"`
}

// resolve merges the optional config file with explicit arguments; explicit
// rectangles and method win.
func (a removalArgs) resolve() (config.Config, error) {
	cfg := config.Config{Method: watermark.MethodInpaint}
	if a.Config != "" {
		loaded, err := config.Load(a.Config)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	} else if a.Rectangles == nil {
		return config.Config{}, invalidParams("rectangles or config is required")
	}

	if a.Rectangles != nil {
		cfg.Rectangles = toRects(*a.Rectangles)
	}
	if a.Method != "" {
		m, err := watermark.ParseMethod(a.Method)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Method = m
	}
	return cfg, nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidParams("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidParams("path is required")
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageCropArgs struct {
	Path   string  `json:"path"`
	After  string  `json:"after"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Margin int     `json:"margin"`
	Scale  float64 `json:"scale"`
}

// handleImageCrop renders a region the way watermark_remove would clamp it.
// With after set, the same region is rendered from both images.
func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidParams("path is required")
	}
	if a.Margin < 0 {
		return nil, invalidParams("margin must not be negative")
	}
	if a.Scale < 0 {
		return nil, invalidParams("scale must not be negative")
	}

	r := watermark.Rect{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height}
	opts := watermark.PreviewOptions{Margin: a.Margin, Scale: a.Scale}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	var result interface{}
	if a.After == "" {
		result, err = watermark.RenderPreview(img, r, opts)
	} else {
		after, lerr := s.cache.Load(a.After)
		if lerr != nil {
			return nil, lerr
		}
		result, err = watermark.ComparePreview(img, after, r, opts)
	}
	if errors.Is(err, watermark.ErrEmptyRegion) {
		return nil, &paramsError{err: err}
	}
	return result, err
}

// === Watermark Removal Handlers ===

type watermarkRemoveArgs struct {
	Path   string `json:"path"`
	Output string `json:"output"`
	removalArgs
}

type watermarkRemoveResult struct {
	*watermark.Result
	Input    string   `json:"input"`
	Warnings []string `json:"warnings,omitempty"`
}

func (s *Server) handleWatermarkRemove(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a watermarkRemoveArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" || a.Output == "" {
		return nil, invalidParams("path and output are required")
	}

	cfg, err := a.resolve()
	if err != nil {
		return nil, err
	}

	opts := cfg.Options()
	opts.Strict = a.Strict
	opts.Inpainter = s.inpainter
	opts.Logger = &s.log

	res, err := watermark.RemoveFile(ctx, a.Path, a.Output, opts)
	if err != nil {
		return nil, err
	}
	// The output may replace an image a client inspected earlier.
	s.cache.Evict(res.Output)

	return &watermarkRemoveResult{Result: res, Input: a.Path, Warnings: res.Warnings()}, nil
}

type watermarkBatchArgs struct {
	SourceDir string `json:"source_dir"`
	OutputDir string `json:"output_dir"`
	Workers   int    `json:"workers"`
	removalArgs
}

func (s *Server) handleWatermarkBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a watermarkBatchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.SourceDir == "" || a.OutputDir == "" {
		return nil, invalidParams("source_dir and output_dir are required")
	}

	cfg, err := a.resolve()
	if err != nil {
		return nil, err
	}

	stats, err := batch.Run(ctx, a.SourceDir, a.OutputDir, cfg, batch.Options{
		Workers:   a.Workers,
		Strict:    a.Strict,
		Inpainter: s.inpainter,
		Logger:    &s.log,
	})
	if err != nil {
		return nil, err
	}
	for _, out := range stats.Outputs {
		s.cache.Evict(out)
	}
	return stats, nil
}

// === Planning Helper Handlers ===

type regionsArgs struct {
	Path       string    `json:"path"`
	Rectangles []rectArg `json:"rectangles"`
	Color      string    `json:"color"`
}

type maskPreviewResult struct {
	*imaging.OverlayResult
	Applied []watermark.Rect `json:"applied"`
	Skipped int              `json:"skipped"`
}

func (s *Server) handleMaskPreview(args json.RawMessage) (interface{}, error) {
	var a regionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = "#FF0000"
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	rects := watermark.ClampRects(toRects(a.Rectangles), b.Dx(), b.Dy())
	regions := make([]image.Rectangle, len(rects))
	for i, r := range rects {
		regions[i] = r.Bounds().Add(b.Min)
	}

	overlay, err := imaging.OverlayRegions(img, regions, a.Color)
	if err != nil {
		return nil, err
	}
	return &maskPreviewResult{
		OverlayResult: overlay,
		Applied:       rects,
		Skipped:       len(a.Rectangles) - len(rects),
	}, nil
}

type findMatchResult struct {
	Matches   []watermark.Match `json:"matches"`
	Unmatched []watermark.Rect  `json:"unmatched,omitempty"`
	Skipped   int               `json:"skipped"`
}

func (s *Server) handleFindMatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a regionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	src := imaging.ToNRGBA(img)
	rects := watermark.ClampRects(toRects(a.Rectangles), src.Bounds().Dx(), src.Bounds().Dy())

	res := &findMatchResult{
		Matches: make([]watermark.Match, 0, len(rects)),
		Skipped: len(a.Rectangles) - len(rects),
	}
	for _, r := range rects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if m, ok := watermark.FindBestMatch(src, r); ok {
			res.Matches = append(res.Matches, m)
		} else {
			res.Unmatched = append(res.Unmatched, r)
		}
	}
	return res, nil
}

type suggestRegionsArgs struct {
	Path          string  `json:"path"`
	Engine        string  `json:"engine"`
	MinConfidence float64 `json:"min_confidence"`
	Padding       int     `json:"padding"`
	MaxRegions    int     `json:"max_regions"`
	Match         string  `json:"match"`
	Language      string  `json:"language"`
}

type suggestRegionsResult struct {
	Engine     string           `json:"engine"`
	Rectangles []watermark.Rect `json:"rectangles"`
	Details    interface{}      `json:"details"`
}

func (s *Server) handleSuggestRegions(args json.RawMessage) (interface{}, error) {
	var a suggestRegionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Padding < 0 {
		return nil, invalidParams("padding must not be negative")
	}

	switch strings.ToLower(a.Engine) {
	case "", "edges":
		img, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, err
		}
		res := detection.SuggestRegions(img, detection.Options{
			MinConfidence: a.MinConfidence,
			Padding:       a.Padding,
			MaxRegions:    a.MaxRegions,
		})
		return &suggestRegionsResult{Engine: "edges", Rectangles: res.Rects(), Details: res}, nil

	case "ocr":
		res, err := ocr.FindText(a.Path, ocr.Options{
			Language:      a.Language,
			MinConfidence: a.MinConfidence,
			Match:         a.Match,
			Padding:       a.Padding,
		})
		if err != nil {
			return nil, err
		}
		return &suggestRegionsResult{Engine: "ocr", Rectangles: res.Rects(), Details: res}, nil

	default:
		return nil, invalidParams("unknown engine %q (want edges or ocr)", a.Engine)
	}
}

// === Configuration Handlers ===

type configSaveArgs struct {
	Path       string    `json:"path"`
	Rectangles []rectArg `json:"rectangles"`
	Method     string    `json:"method"`
}

type configResult struct {
	Path       string           `json:"path"`
	Rectangles []watermark.Rect `json:"rectangles"`
	Method     watermark.Method `json:"method"`
}

func (s *Server) handleConfigSave(args json.RawMessage) (interface{}, error) {
	var a configSaveArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidParams("path is required")
	}

	cfg := config.Config{Rectangles: toRects(a.Rectangles), Method: watermark.MethodInpaint}
	if a.Method != "" {
		m, err := watermark.ParseMethod(a.Method)
		if err != nil {
			return nil, err
		}
		cfg.Method = m
	}

	if err := config.Save(a.Path, cfg); err != nil {
		return nil, err
	}
	return &configResult{Path: a.Path, Rectangles: cfg.Rectangles, Method: cfg.Method}, nil
}

func (s *Server) handleConfigLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidParams("path is required")
	}

	cfg, err := config.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return &configResult{Path: a.Path, Rectangles: cfg.Rectangles, Method: cfg.Method}, nil
}
