// Package extract orchestrates document processing: validation, the
// text-vs-OCR strategy decision, per-page extraction, table inference,
// classification, and result assembly.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/tabula/internal/classify"
	"github.com/MeKo-Tech/tabula/internal/geometry"
	"github.com/MeKo-Tech/tabula/internal/ocr"
	"github.com/MeKo-Tech/tabula/internal/raster"
	"github.com/MeKo-Tech/tabula/internal/tableinfer"
	"github.com/MeKo-Tech/tabula/internal/textlayer"
)

// Method selects the extraction path for a request.
type Method string

const (
	// MethodAuto probes the text layer and picks the path automatically.
	MethodAuto Method = "auto"
	// ForceText skips the probe and uses the text layer.
	ForceText Method = "text"
	// ForceOCR skips the probe and rasterizes for recognition.
	ForceOCR Method = "ocr"
)

var pdfHeader = []byte("%PDF-")

// Options holds engine-level limits.
type Options struct {
	MaxFileSize  int64 `mapstructure:"max_file_size"  yaml:"max_file_size"  json:"max_file_size"`
	MinTextChars int   `mapstructure:"min_text_chars" yaml:"min_text_chars" json:"min_text_chars"`
}

// DefaultOptions returns the engine defaults: a 50MB size cap and the
// 100-character probe threshold.
func DefaultOptions() Options {
	return Options{
		MaxFileSize:  50 << 20,
		MinTextChars: 100,
	}
}

// EngineConfig aggregates the component configurations.
type EngineConfig struct {
	Options  Options           `mapstructure:"options"  yaml:"options"  json:"options"`
	Table    tableinfer.Config `mapstructure:"table"    yaml:"table"    json:"table"`
	OCR      ocr.Config        `mapstructure:"ocr"      yaml:"ocr"      json:"ocr"`
	Raster   raster.Config     `mapstructure:"raster"   yaml:"raster"   json:"raster"`
	Classify classify.Config   `mapstructure:"classify" yaml:"classify" json:"classify"`
}

// DefaultEngineConfig returns the full default configuration tree.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Options:  DefaultOptions(),
		Table:    tableinfer.DefaultConfig(),
		OCR:      ocr.DefaultConfig(),
		Raster:   raster.DefaultConfig(),
		Classify: classify.DefaultConfig(),
	}
}

// Request describes one document to process.
type Request struct {
	Data     []byte
	FileName string
	Method   Method
	TypeHint string // skips classification when set
}

// Engine processes documents sequentially. An engine owns one OCR worker;
// run independent engines for concurrent documents.
type Engine struct {
	opts       Options
	logger     *slog.Logger
	text       *textlayer.Extractor
	tables     *tableinfer.Engine
	classifier *classify.Classifier
	worker     *ocr.Worker
	converter  *raster.Converter
}

// NewEngine validates the configuration and assembles an engine.
func NewEngine(cfg EngineConfig, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Options.MaxFileSize <= 0 {
		cfg.Options.MaxFileSize = DefaultOptions().MaxFileSize
	}
	if cfg.Options.MinTextChars <= 0 {
		cfg.Options.MinTextChars = DefaultOptions().MinTextChars
	}
	if cfg.Table == (tableinfer.Config{}) {
		cfg.Table = tableinfer.DefaultConfig()
	}
	if err := cfg.Table.Validate(); err != nil {
		return nil, fmt.Errorf("table config: %w", err)
	}
	if cfg.OCR == (ocr.Config{}) {
		cfg.OCR = ocr.DefaultConfig()
	}
	if err := cfg.OCR.Validate(); err != nil {
		return nil, fmt.Errorf("ocr config: %w", err)
	}

	classifier, err := classify.New(cfg.Classify)
	if err != nil {
		return nil, err
	}

	return &Engine{
		opts:       cfg.Options,
		logger:     logger,
		text:       textlayer.NewExtractor(logger),
		tables:     tableinfer.NewEngine(cfg.Table),
		classifier: classifier,
		worker:     ocr.NewWorker(cfg.OCR, logger),
		converter:  raster.NewConverter(cfg.Raster, logger),
	}, nil
}

// ProcessPDF runs the full pipeline for one document. The returned result is
// always non-nil; on failure it carries the error message and, for
// rasterization failures, the manual-extraction flag. Temp files are removed
// on every exit path and panics surface as internal errors.
func (e *Engine) ProcessPDF(ctx context.Context, req Request) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			xerr := NewError(KindInternal, fmt.Sprintf("panic during processing: %v", r), nil)
			e.logger.Error("extraction panic", "file", req.FileName, "panic", r)
			result, err = failedResult(req.FileName, xerr), xerr
		}
	}()

	if xerr := e.validateRequest(req); xerr != nil {
		return failedResult(req.FileName, xerr), xerr
	}

	tmpPath, cleanup, werr := writeTempPDF(req.Data)
	if werr != nil {
		xerr := NewError(KindInternal, "stage input file", werr)
		return failedResult(req.FileName, xerr), xerr
	}
	defer cleanup()

	pdfCtx, rerr := readPDFContext(tmpPath)
	if rerr != nil {
		xerr := NewError(KindValidation, "document is not a parseable PDF", rerr)
		return failedResult(req.FileName, xerr), xerr
	}
	pageCount := pdfCtx.PageCount
	if pageCount < 1 {
		xerr := NewError(KindValidation, "document has no pages", nil)
		return failedResult(req.FileName, xerr), xerr
	}

	formFields, ferr := extractFormFields(pdfCtx)
	if ferr != nil {
		e.logger.Warn("form field extraction failed", "file", req.FileName, "error", ferr)
	}

	method := e.chooseMethod(tmpPath, req.Method)

	var (
		pages    []PageResult
		rendered int
	)
	if method == MethodText {
		var perr error
		pages, perr = e.processTextLayer(ctx, tmpPath)
		if perr != nil || len(pages) == 0 {
			e.logger.Info("text layer unusable, falling back to ocr",
				"file", req.FileName, "error", perr)
			method = MethodOCR
		}
	}
	if method == MethodOCR {
		var xerr *Error
		pages, rendered, xerr = e.processOCR(ctx, tmpPath, pageCount)
		if xerr != nil {
			return failedResult(req.FileName, xerr), xerr
		}
	}
	if cerr := ctx.Err(); cerr != nil {
		xerr := NewError(KindInternal, "processing cancelled", cerr)
		return failedResult(req.FileName, xerr), xerr
	}

	attachFormFields(pages, formFields)

	classification := classify.Result{DocumentType: req.TypeHint}
	if req.TypeHint == "" {
		classification = e.classifier.Classify(AggregateText(pages))
	}

	return assembleResult(req.FileName, method, pages, classification, rendered), nil
}

func (e *Engine) validateRequest(req Request) *Error {
	switch req.Method {
	case MethodAuto, ForceText, ForceOCR, "":
	default:
		return NewError(KindValidation, fmt.Sprintf("unknown method %q", req.Method), nil)
	}
	if len(req.Data) == 0 {
		return NewError(KindValidation, "empty input", nil)
	}
	if int64(len(req.Data)) > e.opts.MaxFileSize {
		return NewError(KindValidation,
			fmt.Sprintf("file size %d exceeds limit %d", len(req.Data), e.opts.MaxFileSize), nil)
	}
	if !bytes.HasPrefix(req.Data, pdfHeader) {
		return NewError(KindValidation, "input is not a PDF document", nil)
	}
	return nil
}

// chooseMethod honors a forced method and otherwise probes the text layer:
// enough characters on the leading pages selects the text path.
func (e *Engine) chooseMethod(path string, requested Method) string {
	switch requested {
	case ForceText:
		return MethodText
	case ForceOCR:
		return MethodOCR
	}
	probe, err := e.text.Probe(path)
	if err != nil {
		e.logger.Debug("probe failed, using ocr", "error", err)
		return MethodOCR
	}
	if probe.Chars >= e.opts.MinTextChars {
		return MethodText
	}
	return MethodOCR
}

func (e *Engine) processTextLayer(ctx context.Context, path string) ([]PageResult, error) {
	tlPages, err := e.text.Extract(path)
	if err != nil {
		return nil, NewError(KindParse, "text layer extraction failed", err)
	}

	tolerance := e.tables.ToleranceFor(geometry.SourceText)
	pages := make([]PageResult, 0, len(tlPages))
	itemCount := 0
	for _, page := range tlPages {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		itemCount += len(page.Items)
		pages = append(pages, PageResult{
			PageNumber: page.Number,
			Items:      page.Items,
			Tables:     e.tables.DetectTables(page.Items, tolerance),
			Method:     MethodText,
		})
	}
	if itemCount == 0 {
		return nil, NewError(KindParse, "text layer produced no items", nil)
	}
	return pages, nil
}

// processOCR rasterizes the document, brings the worker up, and recognizes
// pages sequentially. A page whose recognition attempts are exhausted is
// marked failed without failing the document, unless every page ends that
// way: a document with no recognized page at all fails outright.
func (e *Engine) processOCR(ctx context.Context, path string, pageCount int) ([]PageResult, int, *Error) {
	rendering, err := e.converter.Convert(ctx, path, pageCount)
	if err != nil {
		return nil, 0, NewError(KindRasterization, "all PDF-to-image conversion methods failed", err)
	}
	defer rendering.Cleanup()

	if err := e.worker.Initialize(ctx); err != nil {
		return nil, 0, NewError(KindOCRInit, "recognition worker failed to initialize", err)
	}
	defer e.worker.Terminate()

	tolerance := e.tables.ToleranceFor(geometry.SourceOCR)
	pages := make([]PageResult, 0, len(rendering.Pages))
	var lastErr *Error
	for _, pageImage := range rendering.Pages {
		if cerr := ctx.Err(); cerr != nil {
			return nil, 0, NewError(KindInternal, "processing cancelled", cerr)
		}
		page, perr := e.recognizePage(ctx, pageImage, tolerance)
		if perr != nil {
			lastErr = perr
		}
		pages = append(pages, page)
	}
	if allPagesFailed(pages) {
		kind, cause := KindWorkerCommunication, error(nil)
		if lastErr != nil {
			kind, cause = lastErr.Kind, lastErr
		}
		return nil, 0, NewError(kind, "recognition failed on every page", cause)
	}
	return pages, len(rendering.Pages), nil
}

func (e *Engine) recognizePage(ctx context.Context, pageImage raster.PageImage, tolerance float64) (PageResult, *Error) {
	imagePath := pageImage.Path
	if prepared, err := raster.PrepareForOCR(imagePath); err == nil {
		imagePath = prepared
	} else {
		e.logger.Debug("ocr preprocessing failed, using raw render",
			"page", pageImage.Page, "error", err)
	}

	pageText, err := e.worker.RecognizePage(ctx, imagePath)
	if err != nil {
		e.logger.Warn("page recognition failed", "page", pageImage.Page, "error", err)
		xerr := pageError(err)
		return PageResult{
			PageNumber: pageImage.Page,
			Method:     MethodOCRFailed,
			Err:        xerr.Error(),
		}, xerr
	}

	items := e.wordsToItems(pageText.Words, pageImage.Page)
	return PageResult{
		PageNumber: pageImage.Page,
		Items:      items,
		Tables:     e.tables.DetectTables(items, tolerance),
		Method:     MethodOCR,
	}, nil
}

// wordsToItems filters low-confidence words and converts survivors to page
// items. Image coordinates are already top-down, so no Y flip happens here.
func (e *Engine) wordsToItems(words []ocr.Word, page int) []geometry.Item {
	kept := e.worker.FilterWords(words)
	items := make([]geometry.Item, 0, len(kept))
	for _, word := range kept {
		items = append(items, geometry.Item{
			Text:       word.Text,
			X:          geometry.Round2(word.X),
			Y:          geometry.Round2(word.Y),
			Width:      geometry.Round2(word.Width),
			Height:     geometry.Round2(word.Height),
			Confidence: word.Confidence,
			Page:       page,
			Source:     geometry.SourceOCR,
		})
	}
	return items
}

// pageError maps a page-local recognition failure onto the error taxonomy.
// These kinds annotate the page; they fail the document only when no page
// recognized at all.
func pageError(err error) *Error {
	switch {
	case errors.Is(err, ocr.ErrRecognitionTimeout):
		return NewError(KindOCRTimeout, "page recognition timed out", err)
	case errors.Is(err, ocr.ErrWorkerCommunication):
		return NewError(KindWorkerCommunication, "recognition worker failed", err)
	case errors.Is(err, ocr.ErrInit):
		return NewError(KindOCRInit, "worker reinitialization failed", err)
	default:
		return NewError(KindWorkerCommunication, "page recognition failed", err)
	}
}

// attachFormFields assigns fields to their page's result, defaulting to the
// first page when the field's page is out of range.
func attachFormFields(pages []PageResult, fields []FormField) {
	if len(pages) == 0 || len(fields) == 0 {
		return
	}
	byNumber := make(map[int]int, len(pages))
	for i, page := range pages {
		byNumber[page.PageNumber] = i
	}
	for _, field := range fields {
		idx, ok := byNumber[field.Page]
		if !ok {
			idx = 0
		}
		pages[idx].FormFields = append(pages[idx].FormFields, field)
	}
}

func writeTempPDF(data []byte) (string, func(), error) {
	file, err := os.CreateTemp("", "tabula-input-*.pdf")
	if err != nil {
		return "", nil, err
	}
	path := file.Name()
	cleanup := func() { _ = os.Remove(path) }

	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		cleanup()
		return "", nil, err
	}
	if err := file.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
