package extract

import (
	"errors"
	"fmt"
)

// Kind identifies the failure class of an extraction error. The class
// determines whether the document fails, falls back, or keeps going with a
// degraded page.
type Kind int

const (
	// KindValidation rejects input before any processing; never retried.
	KindValidation Kind = iota + 1
	// KindParse means the text layer could not be read; triggers OCR fallback.
	KindParse
	// KindRasterization means no strategy produced page images; the document
	// fails and is flagged for manual extraction.
	KindRasterization
	// KindOCRInit means the recognition worker never came up.
	KindOCRInit
	// KindOCRTimeout is a page-local recognition timeout.
	KindOCRTimeout
	// KindWorkerCommunication is a page-local worker failure.
	KindWorkerCommunication
	// KindInternal covers panics and programming errors at the boundary.
	KindInternal
)

// String returns the stable identifier for a kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindParse:
		return "ParseError"
	case KindRasterization:
		return "RasterizationError"
	case KindOCRInit:
		return "OCRInitError"
	case KindOCRTimeout:
		return "OCRRecognitionTimeout"
	case KindWorkerCommunication:
		return "WorkerCommunicationError"
	case KindInternal:
		return "InternalError"
	default:
		return "UnknownError"
	}
}

// Error is an extraction failure with its kind and wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// NewError builds an extraction error; cause may be nil.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.Kind == e.Kind
}

// KindOf returns the kind carried by err, or zero when err is not an
// extraction error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
