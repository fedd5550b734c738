package extract

import (
	"strings"

	"github.com/MeKo-Tech/tabula/internal/classify"
	"github.com/MeKo-Tech/tabula/internal/geometry"
	"github.com/MeKo-Tech/tabula/internal/tableinfer"
)

// Page processing methods.
const (
	MethodText      = "text"
	MethodOCR       = "ocr"
	MethodOCRFailed = "ocr-failed"
)

// FormField is an interactive AcroForm field found in the document.
type FormField struct {
	Name     string `json:"field_name"`
	Type     string `json:"field_type"`
	Value    string `json:"field_value"`
	Page     int    `json:"page"`
	ReadOnly bool   `json:"read_only"`
}

// PageResult holds everything extracted from one page.
type PageResult struct {
	PageNumber int                `json:"page_number"`
	Items      []geometry.Item    `json:"items"`
	Tables     []tableinfer.Table `json:"tables"`
	FormFields []FormField        `json:"form_fields,omitempty"`
	Method     string             `json:"method"`
	Err        string             `json:"error,omitempty"`
}

// Summary gives a consumer a cheap preview of the extraction.
type Summary struct {
	TotalTextItems  int      `json:"total_text_items"`
	TotalTables     int      `json:"total_tables"`
	TotalImages     int      `json:"total_images"`
	TotalFormFields int      `json:"total_form_fields"`
	SampleContent   []string `json:"sample_content,omitempty"`
	TablePreview    []string `json:"table_preview,omitempty"`
}

// Result is the complete outcome of processing one document.
type Result struct {
	Success                  bool         `json:"success"`
	FileName                 string       `json:"file_name,omitempty"`
	PagesProcessed           int          `json:"pages_processed"`
	DocumentType             string       `json:"document_type,omitempty"`
	ClassifierMatches        int          `json:"classifier_matches,omitempty"`
	Pages                    []PageResult `json:"pages,omitempty"`
	ProcessingMethod         string       `json:"processing_method,omitempty"`
	Err                      string       `json:"error,omitempty"`
	RequiresManualExtraction bool         `json:"requires_manual_extraction,omitempty"`
	Summary                  *Summary     `json:"summary,omitempty"`
}

const (
	sampleItemLimit  = 20
	tablePreviewRows = 3
)

// assembleResult folds page results and the classification into the final
// document result. It is a pure function of its inputs.
func assembleResult(fileName, method string, pages []PageResult, classification classify.Result, renderedImages int) *Result {
	res := &Result{
		Success:           true,
		FileName:          fileName,
		PagesProcessed:    len(pages),
		DocumentType:      classification.DocumentType,
		ClassifierMatches: classification.Matches,
		Pages:             pages,
		ProcessingMethod:  method,
	}
	res.Summary = buildSummary(pages, renderedImages)
	return res
}

func buildSummary(pages []PageResult, renderedImages int) *Summary {
	s := &Summary{TotalImages: renderedImages}
	for _, page := range pages {
		s.TotalTextItems += len(page.Items)
		s.TotalTables += len(page.Tables)
		s.TotalFormFields += len(page.FormFields)
	}

	if len(pages) > 0 {
		for _, item := range pages[0].Items {
			if len(s.SampleContent) == sampleItemLimit {
				break
			}
			s.SampleContent = append(s.SampleContent, item.Text)
		}
	}

	if table := firstTable(pages); table != nil {
		for i, row := range table.Rows {
			if i == tablePreviewRows {
				break
			}
			s.TablePreview = append(s.TablePreview, joinRow(row))
		}
	}
	return s
}

func firstTable(pages []PageResult) *tableinfer.Table {
	for _, page := range pages {
		if len(page.Tables) > 0 {
			return &page.Tables[0]
		}
	}
	return nil
}

func joinRow(row tableinfer.Row) string {
	cells := make([]string, len(row))
	for i, item := range row {
		cells[i] = item.Text
	}
	return strings.Join(cells, " | ")
}

// failedResult wraps an extraction error into a terminal result.
func failedResult(fileName string, err *Error) *Result {
	return &Result{
		Success:                  false,
		FileName:                 fileName,
		Err:                      err.Error(),
		RequiresManualExtraction: requiresManualExtraction(err.Kind),
	}
}

// requiresManualExtraction reports whether a document-level failure is one
// no automatic retry can recover: rasterization exhaustion or an OCR
// failure that took the whole document down. Recognition kinds only reach
// the document level when every page failed.
func requiresManualExtraction(kind Kind) bool {
	switch kind {
	case KindRasterization, KindOCRInit, KindOCRTimeout, KindWorkerCommunication:
		return true
	default:
		return false
	}
}

// allPagesFailed reports whether OCR produced no usable page at all.
func allPagesFailed(pages []PageResult) bool {
	for _, page := range pages {
		if page.Method == MethodOCR {
			return false
		}
	}
	return len(pages) > 0
}

// AggregateText concatenates every item text across pages for
// classification.
func AggregateText(pages []PageResult) string {
	var b strings.Builder
	for _, page := range pages {
		for _, item := range page.Items {
			b.WriteString(item.Text)
			b.WriteByte(' ')
		}
	}
	return b.String()
}
