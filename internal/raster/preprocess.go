package raster

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// minOCRWidth is the render width below which recognition quality degrades
// noticeably; narrower images are upscaled before OCR.
const minOCRWidth = 1000

// PrepareForOCR grayscales a page image and upscales small renders, writing
// the result next to the input with an "_ocr.png" suffix. The returned path
// lives in the same temp directory as the input and is removed with it.
func PrepareForOCR(path string) (string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", fmt.Errorf("open page image: %w", err)
	}

	img = imaging.Grayscale(img)
	if img.Bounds().Dx() < minOCRWidth {
		img = imaging.Resize(img, img.Bounds().Dx()*2, 0, imaging.Lanczos)
	}

	out := strings.TrimSuffix(path, filepath.Ext(path)) + "_ocr.png"
	if err := imaging.Save(img, out); err != nil {
		return "", fmt.Errorf("save preprocessed image: %w", err)
	}
	return out, nil
}
