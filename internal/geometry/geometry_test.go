package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewItem(t *testing.T) {
	t.Run("flips Y into top-down space", func(t *testing.T) {
		item, ok := NewItem("Total", 100, 700, 40, 12, 792, 100, 1, SourceText)
		assert.True(t, ok)
		assert.InDelta(t, 92.0, item.Y, 0.001)
		assert.InDelta(t, 100.0, item.X, 0.001)
	})

	t.Run("rounds coordinates to two decimals", func(t *testing.T) {
		item, ok := NewItem("x", 10.12345, 700.6789, 1.005, 2.999, 792, 100, 1, SourceText)
		assert.True(t, ok)
		assert.InDelta(t, 10.12, item.X, 0.0001)
		assert.InDelta(t, 91.32, item.Y, 0.0001)
		assert.InDelta(t, 1.0, item.Width, 0.011)
		assert.InDelta(t, 3.0, item.Height, 0.0001)
	})

	t.Run("rejects empty trimmed text", func(t *testing.T) {
		_, ok := NewItem("   ", 0, 0, 0, 0, 792, 100, 1, SourceText)
		assert.False(t, ok)
		_, ok = NewItem("", 0, 0, 0, 0, 792, 100, 1, SourceOCR)
		assert.False(t, ok)
	})

	t.Run("defaults page height when unknown", func(t *testing.T) {
		item, ok := NewItem("x", 0, 792, 0, 0, 0, 100, 1, SourceText)
		assert.True(t, ok)
		assert.InDelta(t, 0.0, item.Y, 0.001)
	})

	t.Run("carries page and source", func(t *testing.T) {
		item, ok := NewItem("x", 0, 0, 0, 0, 792, 87.5, 3, SourceOCR)
		assert.True(t, ok)
		assert.Equal(t, 3, item.Page)
		assert.Equal(t, SourceOCR, item.Source)
		assert.InDelta(t, 87.5, item.Confidence, 0.001)
	})
}

func TestWithin(t *testing.T) {
	assert.True(t, Within(10, 14, 5))
	assert.True(t, Within(14, 10, 5))
	assert.True(t, Within(10, 15, 5))
	assert.False(t, Within(10, 15.01, 5))
}
