// Package testutil provides shared fixtures for extraction tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/tabula/internal/geometry"
)

// Item builds a text-layer item at the given position with full confidence.
func Item(text string, x, y float64) geometry.Item {
	return geometry.Item{
		Text:       text,
		X:          x,
		Y:          y,
		Confidence: 100,
		Page:       1,
		Source:     geometry.SourceText,
	}
}

// OCRItem builds an OCR item at the given position and confidence.
func OCRItem(text string, x, y, confidence float64) geometry.Item {
	return geometry.Item{
		Text:       text,
		X:          x,
		Y:          y,
		Confidence: confidence,
		Page:       1,
		Source:     geometry.SourceOCR,
	}
}

// RowItems lays out items left to right on one line, spaced 100 apart.
func RowItems(y float64, texts ...string) []geometry.Item {
	items := make([]geometry.Item, len(texts))
	for i, text := range texts {
		items[i] = Item(text, float64(50+i*100), y)
	}
	return items
}

// minimalPDF is a single empty page, enough for header and structure checks.
const minimalPDF = `%PDF-1.4
1 0 obj
<< /Type /Catalog /Pages 2 0 R >>
endobj
2 0 obj
<< /Type /Pages /Kids [3 0 R] /Count 1 >>
endobj
3 0 obj
<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>
endobj
trailer
<< /Size 4 /Root 1 0 R >>
%%EOF`

// WriteMinimalPDF writes a structurally minimal one-page PDF and returns its
// path. Parsers with xref repair accept it; it carries no text layer.
func WriteMinimalPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "minimal.pdf")
	require.NoError(t, os.WriteFile(path, []byte(minimalPDF), 0o600))
	return path
}

// MinimalPDFBytes returns the minimal PDF as a byte slice.
func MinimalPDFBytes() []byte {
	return []byte(minimalPDF)
}
