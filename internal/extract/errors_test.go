package extract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "ValidationError", KindValidation.String())
	assert.Equal(t, "ParseError", KindParse.String())
	assert.Equal(t, "RasterizationError", KindRasterization.String())
	assert.Equal(t, "OCRInitError", KindOCRInit.String())
	assert.Equal(t, "OCRRecognitionTimeout", KindOCRTimeout.String())
	assert.Equal(t, "WorkerCommunicationError", KindWorkerCommunication.String())
	assert.Equal(t, "InternalError", KindInternal.String())
	assert.Equal(t, "UnknownError", Kind(0).String())
}

func TestError(t *testing.T) {
	t.Run("message includes kind and cause", func(t *testing.T) {
		cause := errors.New("underlying")
		err := NewError(KindParse, "could not read text layer", cause)
		assert.Contains(t, err.Error(), "ParseError")
		assert.Contains(t, err.Error(), "could not read text layer")
		assert.Contains(t, err.Error(), "underlying")
	})

	t.Run("unwraps its cause", func(t *testing.T) {
		cause := errors.New("root")
		err := fmt.Errorf("wrapped: %w", NewError(KindValidation, "bad input", cause))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("errors of the same kind match", func(t *testing.T) {
		err := NewError(KindRasterization, "all PDF-to-image conversion methods failed", nil)
		assert.ErrorIs(t, err, NewError(KindRasterization, "", nil))
		assert.NotErrorIs(t, err, NewError(KindValidation, "", nil))
	})

	t.Run("KindOf digs through wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", NewError(KindOCRInit, "init failed", nil))
		assert.Equal(t, KindOCRInit, KindOf(err))
		assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	})
}
