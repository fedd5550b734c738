package extract

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Form field types as reported to consumers.
const (
	FieldTypeText      = "text"
	FieldTypeCheckbox  = "checkbox"
	FieldTypeRadio     = "radio"
	FieldTypeButton    = "button"
	FieldTypeSelect    = "select"
	FieldTypeSignature = "signature"
	FieldTypeUnknown   = "unknown"
)

// readPDFContext opens the document with relaxed validation; scanned and
// generator-mangled PDFs frequently fail strict checks but still extract.
func readPDFContext(path string) (*model.Context, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = file.Close() }()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("ensure page count: %w", err)
	}
	return ctx, nil
}

// extractFormFields walks the catalog's AcroForm field tree. A document
// without an AcroForm yields an empty slice; individual malformed fields are
// skipped.
func extractFormFields(ctx *model.Context) ([]FormField, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil || acroFormDict == nil {
		return nil, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return nil, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("dereference fields array: %w", err)
	}

	var fields []FormField
	for i, fieldRef := range fieldsArray {
		field, ok := readField(ctx, fieldRef, i)
		if ok {
			fields = append(fields, field)
		}
	}
	return fields, nil
}

func readField(ctx *model.Context, fieldObj types.Object, index int) (FormField, bool) {
	fieldDict, err := ctx.DereferenceDict(fieldObj)
	if err != nil || fieldDict == nil {
		return FormField{}, false
	}

	field := FormField{Page: 1}

	if nameObj, found := fieldDict.Find("T"); found {
		if name, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil {
			field.Name = name
		}
	}
	if field.Name == "" {
		field.Name = fmt.Sprintf("field_%d", index)
	}

	field.Type = fieldType(ctx, fieldDict)

	if valueObj, found := fieldDict.Find("V"); found {
		field.Value = fieldValue(ctx, valueObj, field.Type)
	}

	if flagsObj, found := fieldDict.Find("Ff"); found {
		if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
			field.ReadOnly = (*flags & 1) != 0
		}
	}

	return field, true
}

// fieldType resolves the FT entry, walking up to the parent for inherited
// types and splitting Btn into checkbox, radio, and pushbutton by flags.
func fieldType(ctx *model.Context, fieldDict types.Dict) string {
	ftObj, found := fieldDict.Find("FT")
	if !found {
		if parentObj, ok := fieldDict.Find("Parent"); ok {
			if parentDict, err := ctx.DereferenceDict(parentObj); err == nil && parentDict != nil {
				return fieldType(ctx, parentDict)
			}
		}
		return FieldTypeUnknown
	}

	ftName, err := ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return FieldTypeUnknown
	}

	switch ftName {
	case "Btn":
		if flagsObj, found := fieldDict.Find("Ff"); found {
			if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
				if (*flags & (1 << 15)) != 0 {
					return FieldTypeRadio
				}
				if (*flags & (1 << 16)) != 0 {
					return FieldTypeButton
				}
			}
		}
		return FieldTypeCheckbox
	case "Tx":
		return FieldTypeText
	case "Ch":
		return FieldTypeSelect
	case "Sig":
		return FieldTypeSignature
	default:
		return FieldTypeUnknown
	}
}

func fieldValue(ctx *model.Context, valueObj types.Object, kind string) string {
	switch kind {
	case FieldTypeCheckbox, FieldTypeRadio:
		if name, err := ctx.DereferenceName(valueObj, model.V10, nil); err == nil {
			return name
		}
	default:
		if val, err := ctx.DereferenceStringOrHexLiteral(valueObj, model.V10, nil); err == nil {
			return val
		}
	}
	return ""
}
