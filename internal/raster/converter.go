// Package raster turns PDF pages into page images for OCR. It runs an
// ordered cascade of conversion strategies and returns the output of the
// first one that covers every expected page.
package raster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
)

// PageImage is a rendered page on disk.
type PageImage struct {
	Page int    `json:"page"` // 1-based
	Path string `json:"path"`
}

// Rendering is the outcome of a successful conversion. Cleanup removes the
// backing directory and must run on every exit path of the caller.
type Rendering struct {
	Dir      string      `json:"dir"`
	Pages    []PageImage `json:"pages"`
	Strategy string      `json:"strategy"`
}

// Cleanup removes the rendering's temp directory.
func (r *Rendering) Cleanup() {
	if r != nil && r.Dir != "" {
		_ = os.RemoveAll(r.Dir)
	}
}

// Config holds rasterization settings.
type Config struct {
	DPI int `mapstructure:"dpi" yaml:"dpi" json:"dpi"`
}

// DefaultConfig returns the rasterization defaults.
func DefaultConfig() Config {
	return Config{DPI: 300}
}

// Converter runs the conversion cascade.
type Converter struct {
	cfg        Config
	logger     *slog.Logger
	strategies []strategy
}

// NewConverter creates a converter with the standard strategy order:
// pdfcpu embedded-image extraction, pdftoppm, Ghostscript.
func NewConverter(cfg Config, logger *slog.Logger) *Converter {
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultConfig().DPI
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Converter{cfg: cfg, logger: logger}
	c.strategies = []strategy{
		{name: "pdfcpu-extract", run: c.extractEmbedded},
		{name: "pdftoppm", run: c.runPdftoppm},
		{name: "ghostscript", run: c.runGhostscript},
	}
	return c
}

// Convert renders every page of the PDF at path. Each strategy gets its own
// temp directory; a failed strategy's directory is removed before the next
// one runs. When all strategies fail their errors are joined into one.
func (c *Converter) Convert(ctx context.Context, pdfPath string, pageCount int) (*Rendering, error) {
	if pageCount < 1 {
		return nil, fmt.Errorf("page count must be positive, got %d", pageCount)
	}

	var failures []error
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir, err := os.MkdirTemp("", "tabula-raster-*")
		if err != nil {
			return nil, fmt.Errorf("create raster temp dir: %w", err)
		}

		pages, err := s.run(ctx, pdfPath, dir, pageCount)
		if err == nil && len(pages) >= pageCount {
			sort.Slice(pages, func(i, j int) bool { return pages[i].Page < pages[j].Page })
			c.logger.Debug("rasterization succeeded", "strategy", s.name, "pages", len(pages))
			return &Rendering{Dir: dir, Pages: pages, Strategy: s.name}, nil
		}

		_ = os.RemoveAll(dir)
		if err == nil {
			err = fmt.Errorf("produced %d of %d pages", len(pages), pageCount)
		}
		c.logger.Debug("rasterization strategy failed", "strategy", s.name, "error", err)
		failures = append(failures, fmt.Errorf("%s: %w", s.name, err))
	}

	return nil, errors.Join(failures...)
}

type strategy struct {
	name string
	run  func(ctx context.Context, pdfPath, dir string, pageCount int) ([]PageImage, error)
}
