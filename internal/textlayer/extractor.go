// Package textlayer extracts positioned text from a PDF's embedded text
// layer and provides the cheap probe used to decide between the text and OCR
// paths.
package textlayer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dslipak/pdf"

	"github.com/MeKo-Tech/tabula/internal/geometry"
)

// ProbePages is how many leading pages the probe samples.
const ProbePages = 3

// Page holds the items and plain text extracted from one page.
type Page struct {
	Number int             `json:"number"`
	Items  []geometry.Item `json:"items"`
	Text   string          `json:"text"`
}

// ProbeResult summarizes the text layer of a document's leading pages.
type ProbeResult struct {
	Pages int `json:"pages"` // total pages in the document
	Chars int `json:"chars"` // trimmed characters across the probed pages
}

// Extractor reads the embedded text layer via dslipak/pdf.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates a text-layer extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Probe opens the document and gathers the plain text of the first
// ProbePages pages. An unopenable document is a parse failure.
func (e *Extractor) Probe(path string) (ProbeResult, error) {
	reader, err := pdf.Open(path)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("open pdf for probe: %w", err)
	}
	total := reader.NumPage()

	chars := 0
	limit := ProbePages
	if total < limit {
		limit = total
	}
	for pageNum := 1; pageNum <= limit; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(make(map[string]*pdf.Font))
		if err != nil {
			e.logger.Debug("probe: page text unavailable", "page", pageNum, "error", err)
			continue
		}
		chars += len(strings.TrimSpace(text))
	}
	return ProbeResult{Pages: total, Chars: chars}, nil
}

// Extract pulls positioned items and plain text for every page. Pages that
// fail to parse are skipped; only an unopenable document is an error.
func (e *Extractor) Extract(path string) ([]Page, error) {
	reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	pages := make([]Page, 0, total)
	for pageNum := 1; pageNum <= total; pageNum++ {
		page, err := e.extractPage(reader, pageNum)
		if err != nil {
			e.logger.Warn("text layer: skipping page", "page", pageNum, "error", err)
			continue
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (e *Extractor) extractPage(reader *pdf.Reader, pageNum int) (result Page, err error) {
	// dslipak/pdf panics on some malformed content streams
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: content parse panic: %v", pageNum, r)
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return Page{}, fmt.Errorf("page %d is null", pageNum)
	}

	content := page.Content()
	items := itemsFromContent(content.Text, pageNum)

	text, err := page.GetPlainText(make(map[string]*pdf.Font))
	if err != nil {
		text = joinItems(items)
	}

	return Page{Number: pageNum, Items: items, Text: text}, nil
}

// itemsFromContent coalesces raw content-stream fragments into word runs and
// converts them to top-down page items. Fragments sharing a baseline merge
// when the horizontal gap between them is below a third of the font size.
func itemsFromContent(texts []pdf.Text, pageNum int) []geometry.Item {
	var items []geometry.Item

	var run strings.Builder
	var runX, runY, runEnd, runSize float64

	flush := func() {
		if run.Len() == 0 {
			return
		}
		item, ok := geometry.NewItem(
			run.String(), runX, runY, runEnd-runX, runSize,
			geometry.DefaultPageHeight, 100, pageNum, geometry.SourceText,
		)
		if ok {
			items = append(items, item)
		}
		run.Reset()
	}

	for _, t := range texts {
		if t.S == "" {
			continue
		}
		gap := t.X - runEnd
		sameLine := run.Len() > 0 && geometry.Within(t.Y, runY, 0.5)
		if sameLine && gap >= -0.5 && gap <= maxGap(runSize) {
			run.WriteString(t.S)
			runEnd = t.X + t.W
			continue
		}
		flush()
		run.WriteString(t.S)
		runX, runY, runSize = t.X, t.Y, t.FontSize
		runEnd = t.X + t.W
	}
	flush()
	return items
}

func maxGap(fontSize float64) float64 {
	if fontSize <= 0 {
		return 2
	}
	return fontSize / 3
}

func joinItems(items []geometry.Item) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.Text
	}
	return strings.Join(parts, " ")
}
