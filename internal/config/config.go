// Package config persists removal settings so the same rectangles can be
// reused across runs and batches.
//
// Files ending in .yaml or .yml are read and written as YAML; everything
// else is JSON. Rectangles are stored as [x, y, width, height] arrays:
//
//	{
//	  "rectangles": [[10, 10, 120, 40]],
//	  "method": "inpaint"
//	}
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/watermark-tools-mcp/internal/watermark"
)

// ErrInvalid is returned (wrapped) when a configuration file or rectangle
// string cannot be interpreted.
var ErrInvalid = errors.New("invalid watermark configuration")

// Config holds the rectangles to erase and the method to erase them with.
type Config struct {
	Rectangles []watermark.Rect
	Method     watermark.Method
}

// file is the on-disk shape of Config.
type file struct {
	Rectangles [][]int `json:"rectangles" yaml:"rectangles"`
	Method     string  `json:"method,omitempty" yaml:"method,omitempty"`
}

// Options converts the configuration into removal options.
func (c Config) Options() watermark.Options {
	return watermark.Options{Method: c.Method, Rectangles: c.Rectangles}
}

// Load reads the configuration at path. A missing method defaults to
// watermark.MethodInpaint.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var f file
	if isYAML(path) {
		err = yaml.Unmarshal(data, &f)
	} else {
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}

	cfg := Config{Method: watermark.MethodInpaint}
	if f.Method != "" {
		m, err := watermark.ParseMethod(f.Method)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		cfg.Method = m
	}

	for i, r := range f.Rectangles {
		if len(r) != 4 {
			return Config{}, fmt.Errorf("%w: %s: rectangle %d has %d values, want 4", ErrInvalid, path, i, len(r))
		}
		cfg.Rectangles = append(cfg.Rectangles, watermark.Rect{X: r[0], Y: r[1], Width: r[2], Height: r[3]})
	}

	return cfg, nil
}

// Save writes cfg to path, creating the parent directory if needed.
func Save(path string, cfg Config) error {
	f := file{
		Rectangles: make([][]int, 0, len(cfg.Rectangles)),
		Method:     string(cfg.Method),
	}
	for _, r := range cfg.Rectangles {
		f.Rectangles = append(f.Rectangles, []int{r.X, r.Y, r.Width, r.Height})
	}

	var data []byte
	var err error
	if isYAML(path) {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(f); err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	} else {
		data, err = json.MarshalIndent(f, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ParseRect parses "x,y,w,h" into a rectangle. Spaces around the values are
// ignored.
func ParseRect(s string) (watermark.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return watermark.Rect{}, fmt.Errorf("%w: rectangle %q: want x,y,w,h", ErrInvalid, s)
	}

	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return watermark.Rect{}, fmt.Errorf("%w: rectangle %q: %v", ErrInvalid, s, err)
		}
		v[i] = n
	}
	return watermark.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

// ParseRects parses each element with ParseRect.
func ParseRects(values []string) ([]watermark.Rect, error) {
	rects := make([]watermark.Rect, 0, len(values))
	for _, s := range values {
		r, err := ParseRect(s)
		if err != nil {
			return nil, err
		}
		rects = append(rects, r)
	}
	return rects, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
