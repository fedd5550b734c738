package raster

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// extractEmbedded pulls the images embedded in the PDF via pdfcpu. Scanned
// documents typically carry one full-page image per page, which is exactly
// what OCR needs; born-digital documents have few or none and the strategy
// reports the shortfall.
func (c *Converter) extractEmbedded(_ context.Context, pdfPath, dir string, _ int) ([]PageImage, error) {
	if err := api.ExtractImagesFile(pdfPath, dir, nil, nil); err != nil {
		return nil, fmt.Errorf("extract embedded images: %w", err)
	}
	return collectPageImages(dir)
}

// collectPageImages walks dir for pdfcpu's page_<num>_image_<idx>.<ext>
// files and keeps the first image of each page.
func collectPageImages(dir string) ([]PageImage, error) {
	seen := make(map[int]string)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		pageNum, perr := parsePageFromName(info.Name())
		if perr != nil {
			return nil
		}
		if _, ok := seen[pageNum]; !ok {
			seen[pageNum] = path
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	pages := make([]PageImage, 0, len(seen))
	for pageNum, path := range seen {
		pages = append(pages, PageImage{Page: pageNum, Path: path})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Page < pages[j].Page })
	return pages, nil
}

// parsePageFromName extracts the page number from a pdfcpu extract filename
// like page_3_image_1.png.
func parsePageFromName(name string) (int, error) {
	if !strings.HasPrefix(name, "page_") {
		return 0, errors.New("not a page file")
	}
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return 0, errors.New("invalid filename format")
	}
	pageNum, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, errors.New("invalid page number")
	}
	return pageNum, nil
}

// runPdftoppm renders pages with poppler's pdftoppm.
func (c *Converter) runPdftoppm(ctx context.Context, pdfPath, dir string, _ int) ([]PageImage, error) {
	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-png", "-r", strconv.Itoa(c.cfg.DPI), pdfPath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return collectOrderedImages(dir, "page-*.png")
}

// runGhostscript renders pages with Ghostscript's png16m device.
func (c *Converter) runGhostscript(ctx context.Context, pdfPath, dir string, _ int) ([]PageImage, error) {
	outPattern := filepath.Join(dir, "page-%d.png")
	cmd := exec.CommandContext(ctx, "gs",
		"-dNOPAUSE", "-dBATCH", "-dQUIET", "-dSAFER",
		"-sDEVICE=png16m",
		fmt.Sprintf("-r%d", c.cfg.DPI),
		"-sOutputFile="+outPattern,
		pdfPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ghostscript: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return collectOrderedImages(dir, "page-*.png")
}

// collectOrderedImages globs rendered files and assigns page numbers from
// the numeric suffix in the filename. Both pdftoppm (zero-padded) and
// ghostscript (plain) suffixes parse the same way.
func collectOrderedImages(dir, pattern string) ([]PageImage, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}

	pages := make([]PageImage, 0, len(matches))
	for _, path := range matches {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		idx := strings.LastIndex(base, "-")
		if idx < 0 {
			continue
		}
		pageNum, err := strconv.Atoi(base[idx+1:])
		if err != nil {
			continue
		}
		pages = append(pages, PageImage{Page: pageNum, Path: path})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Page < pages[j].Page })
	return pages, nil
}
