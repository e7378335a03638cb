package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty describes an image path argument.
func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// rectanglesProperty describes a list of rectangles, each either an
// [x, y, width, height] array or an {x, y, width, height} object.
func rectanglesProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Regions to erase. Each is [x, y, width, height] or {\"x\", \"y\", \"width\", \"height\"}, in pixels from the top-left corner. Regions are clamped to the image.",
		"items": map[string]interface{}{
			"oneOf": []interface{}{
				map[string]interface{}{
					"type":     "array",
					"items":    map[string]interface{}{"type": "integer"},
					"minItems": 4,
					"maxItems": 4,
				},
				map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"x":      map[string]interface{}{"type": "integer"},
						"y":      map[string]interface{}{"type": "integer"},
						"width":  map[string]interface{}{"type": "integer"},
						"height": map[string]interface{}{"type": "integer"},
					},
					"required": []string{"x", "y", "width", "height"},
				},
			},
		},
	}
}

// methodProperty describes the removal method argument.
func methodProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"inpaint", "blur", "fill", "clone"},
		"description": "Removal method: inpaint reconstructs from surroundings, blur smooths the region, fill paints the surrounding mean color, clone copies the most similar patch. Default inpaint",
		"default":     "inpaint",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_crop",
			Description: "Render a region of an image as base64-encoded PNG, clamped exactly as watermark_remove clamps rectangles. Use this to zoom into a watermark and check its extent. Pass 'after' with the cleaned output to get the same region before and after removal.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty("Absolute path to the image file"),
					"after": pathProperty("Optional path to the cleaned image; returns before and after previews of the same region"),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Region width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Region height in pixels",
					},
					"margin": map[string]interface{}{
						"type":        "integer",
						"description": "Optional pixels of surrounding context on each side. Default 0",
						"default":     0,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "x", "y", "width", "height"},
			},
		},

		// Watermark Removal
		{
			Name:        "watermark_remove",
			Description: "Erase rectangular watermark regions from an image and write the result. Rectangles and method come from the arguments or from a saved config file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":       pathProperty("Absolute path to the input image"),
					"output":     pathProperty("Absolute path to write the result to. WebP outputs are written as PNG"),
					"rectangles": rectanglesProperty(),
					"method":     methodProperty(),
					"config":     pathProperty("Optional config file (JSON or YAML) providing rectangles and method; explicit arguments take precedence"),
					"strict": map[string]interface{}{
						"type":        "boolean",
						"description": "With the clone method, fail when a region has no candidate source patch instead of leaving it unchanged. Default false",
						"default":     false,
					},
				},
				"required": []string{"path", "output"},
			},
		},
		{
			Name:        "watermark_batch",
			Description: "Erase the same watermark regions from every image in a directory. Outputs are named <name>_no_watermark<ext>. Failing images are counted and do not stop the batch.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source_dir": pathProperty("Directory containing the input images"),
					"output_dir": pathProperty("Directory to write results to; created if missing"),
					"rectangles": rectanglesProperty(),
					"method":     methodProperty(),
					"config":     pathProperty("Optional config file (JSON or YAML) providing rectangles and method"),
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Images processed in parallel. Default 1",
						"default":     1,
					},
					"strict": map[string]interface{}{
						"type":        "boolean",
						"description": "Treat a clone region without source patch as a failure. Default false",
						"default":     false,
					},
				},
				"required": []string{"source_dir", "output_dir"},
			},
		},

		// Planning Helpers
		{
			Name:        "watermark_mask_preview",
			Description: "Highlight the regions that would be erased, after clamping to the image, and return the preview as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":       pathProperty("Absolute path to the image file"),
					"rectangles": rectanglesProperty(),
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Highlight color in hex format (e.g., '#FF0000'). Default red",
						"default":     "#FF0000",
					},
				},
				"required": []string{"path", "rectangles"},
			},
		},
		{
			Name:        "watermark_find_match",
			Description: "Report the source patch the clone method would copy into each region, with its mean absolute difference score, without modifying anything.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":       pathProperty("Absolute path to the image file"),
					"rectangles": rectanglesProperty(),
				},
				"required": []string{"path", "rectangles"},
			},
		},
		{
			Name:        "watermark_suggest_regions",
			Description: "Suggest rectangles likely to contain a text or logo watermark. The edges engine is a fast heuristic; the ocr engine uses Tesseract and can filter by the watermark's text.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
					"engine": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"edges", "ocr"},
						"description": "Detection engine. Default edges",
						"default":     "edges",
					},
					"min_confidence": map[string]interface{}{
						"type":        "number",
						"description": "Minimum confidence (0-1). Default 0.3 for edges, 0 for ocr",
					},
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels added around every suggestion. Default 0",
						"default":     0,
					},
					"max_regions": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of suggestions (edges engine). Default unlimited",
					},
					"match": map[string]interface{}{
						"type":        "string",
						"description": "Keep only words containing this text (ocr engine)",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code (ocr engine). Default eng",
						"default":     "eng",
					},
				},
				"required": []string{"path"},
			},
		},

		// Configuration
		{
			Name:        "watermark_config_save",
			Description: "Save rectangles and method to a config file for reuse. The format (JSON or YAML) follows the file extension.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":       pathProperty("Absolute path of the config file (.json, .yaml or .yml)"),
					"rectangles": rectanglesProperty(),
					"method":     methodProperty(),
				},
				"required": []string{"path", "rectangles"},
			},
		},
		{
			Name:        "watermark_config_load",
			Description: "Load a saved config file and return its rectangles and method.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path of the config file"),
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
