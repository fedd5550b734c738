package textlayer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dslipak/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/tabula/internal/geometry"
)

func TestItemsFromContent(t *testing.T) {
	t.Run("adjacent fragments on one baseline merge", func(t *testing.T) {
		texts := []pdf.Text{
			{S: "Tot", X: 100, Y: 700, W: 15, FontSize: 12},
			{S: "al", X: 115, Y: 700, W: 10, FontSize: 12},
		}
		items := itemsFromContent(texts, 1)
		require.Len(t, items, 1)
		assert.Equal(t, "Total", items[0].Text)
		assert.InDelta(t, 100, items[0].X, 0.001)
		assert.InDelta(t, 25, items[0].Width, 0.001)
	})

	t.Run("wide gap starts a new item", func(t *testing.T) {
		texts := []pdf.Text{
			{S: "Date", X: 100, Y: 700, W: 20, FontSize: 12},
			{S: "Amount", X: 300, Y: 700, W: 40, FontSize: 12},
		}
		items := itemsFromContent(texts, 1)
		require.Len(t, items, 2)
		assert.Equal(t, "Date", items[0].Text)
		assert.Equal(t, "Amount", items[1].Text)
	})

	t.Run("baseline change starts a new item", func(t *testing.T) {
		texts := []pdf.Text{
			{S: "Header", X: 100, Y: 700, W: 30, FontSize: 12},
			{S: "Body", X: 100, Y: 680, W: 25, FontSize: 12},
		}
		items := itemsFromContent(texts, 1)
		require.Len(t, items, 2)
	})

	t.Run("y flipped into top-down space", func(t *testing.T) {
		texts := []pdf.Text{{S: "x", X: 10, Y: 700, W: 5, FontSize: 10}}
		items := itemsFromContent(texts, 1)
		require.Len(t, items, 1)
		assert.InDelta(t, 92, items[0].Y, 0.001)
	})

	t.Run("whitespace-only fragments are dropped", func(t *testing.T) {
		texts := []pdf.Text{
			{S: "  ", X: 100, Y: 700, W: 5, FontSize: 12},
			{S: "", X: 110, Y: 700, W: 0, FontSize: 12},
		}
		assert.Empty(t, itemsFromContent(texts, 1))
	})

	t.Run("items carry the text source and full confidence", func(t *testing.T) {
		items := itemsFromContent([]pdf.Text{{S: "x", X: 1, Y: 1, W: 1, FontSize: 10}}, 4)
		require.Len(t, items, 1)
		assert.Equal(t, geometry.SourceText, items[0].Source)
		assert.InDelta(t, 100.0, items[0].Confidence, 0.001)
		assert.Equal(t, 4, items[0].Page)
	})
}

func TestExtractorOpenFailures(t *testing.T) {
	e := NewExtractor(nil)

	t.Run("missing file", func(t *testing.T) {
		_, err := e.Extract(filepath.Join(t.TempDir(), "missing.pdf"))
		assert.Error(t, err)
	})

	t.Run("garbage bytes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "junk.pdf")
		require.NoError(t, os.WriteFile(path, []byte("not a pdf at all"), 0o600))
		_, err := e.Probe(path)
		assert.Error(t, err)
	})
}
