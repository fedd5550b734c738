package tableinfer

import (
	"testing"

	"github.com/MeKo-Tech/tabula/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(text string, x, y float64) geometry.Item {
	return geometry.Item{Text: text, X: x, Y: y, Confidence: 100, Page: 1, Source: geometry.SourceText}
}

func TestGroupRows(t *testing.T) {
	t.Run("empty input yields no rows", func(t *testing.T) {
		assert.Nil(t, GroupRows(nil, 5))
	})

	t.Run("items within tolerance share a row", func(t *testing.T) {
		items := []geometry.Item{
			item("b", 200, 102),
			item("a", 100, 100),
			item("c", 300, 98),
		}
		rows := GroupRows(items, 5)
		require.Len(t, rows, 1)
		require.Len(t, rows[0], 3)
	})

	t.Run("rows sorted ascending by x", func(t *testing.T) {
		items := []geometry.Item{
			item("c", 300, 100),
			item("a", 100, 100),
			item("b", 200, 100),
		}
		rows := GroupRows(items, 5)
		require.Len(t, rows, 1)
		assert.Equal(t, "a b c", rows[0].Text())
	})

	t.Run("tolerance anchored at row start", func(t *testing.T) {
		// 104 is within 5 of the 100 anchor, 107 is not even though it is
		// within 5 of 104.
		items := []geometry.Item{
			item("a", 100, 107),
			item("b", 100, 104),
			item("c", 100, 100),
		}
		rows := GroupRows(items, 5)
		require.Len(t, rows, 2)
		assert.Equal(t, "a b", rows[0].Text())
		assert.Equal(t, "c", rows[1].Text())
	})

	t.Run("walk order is descending y", func(t *testing.T) {
		items := []geometry.Item{
			item("low", 100, 50),
			item("high", 100, 500),
		}
		rows := GroupRows(items, 5)
		require.Len(t, rows, 2)
		assert.Equal(t, "high", rows[0].Text())
		assert.Equal(t, "low", rows[1].Text())
	})

	t.Run("deterministic over permutations", func(t *testing.T) {
		a := []geometry.Item{item("a", 100, 100), item("b", 200, 100), item("c", 100, 80), item("d", 200, 80)}
		b := []geometry.Item{a[3], a[1], a[2], a[0]}
		assert.Equal(t, GroupRows(a, 5), GroupRows(b, 5))
	})

	t.Run("input slice is not reordered", func(t *testing.T) {
		items := []geometry.Item{item("low", 100, 50), item("high", 100, 500)}
		_ = GroupRows(items, 5)
		assert.Equal(t, "low", items[0].Text)
	})
}
