// Package geometry provides the positioned-item model shared by the text-layer
// and OCR extraction paths. Items live in a top-down page coordinate space:
// the origin is the top-left corner of the page and Y grows downward.
package geometry

import (
	"math"
	"strings"
)

// Source identifies which extraction path produced an item.
type Source string

const (
	// SourceText marks items lifted from the PDF's embedded text layer.
	SourceText Source = "text"
	// SourceOCR marks items recognized from a rasterized page image.
	SourceOCR Source = "ocr"
)

// Default page dimensions in PDF points (US Letter), used when the
// document does not expose a usable MediaBox.
const (
	DefaultPageWidth  = 612.0
	DefaultPageHeight = 792.0
)

// Item is a single piece of positioned text on a page.
type Item struct {
	Text       string  `json:"text"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"` // 0-100
	Page       int     `json:"page"`       // 1-based
	Source     Source  `json:"source"`
}

// NewItem builds an item from bottom-up PDF coordinates, flipping Y into
// top-down page space and rounding coordinates to two decimals. It returns
// false when the text is empty after trimming; such fragments carry no
// information and would only distort row grouping.
func NewItem(text string, x, yBottomUp, width, height, pageHeight, confidence float64, page int, source Source) (Item, bool) {
	if strings.TrimSpace(text) == "" {
		return Item{}, false
	}
	if pageHeight <= 0 {
		pageHeight = DefaultPageHeight
	}
	return Item{
		Text:       text,
		X:          Round2(x),
		Y:          Round2(pageHeight - yBottomUp),
		Width:      Round2(width),
		Height:     Round2(height),
		Confidence: confidence,
		Page:       page,
		Source:     source,
	}, true
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Within reports whether a and b differ by no more than tolerance.
func Within(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
