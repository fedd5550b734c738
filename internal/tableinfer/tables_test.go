package tableinfer

import (
	"testing"

	"github.com/MeKo-Tech/tabula/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowAt builds a row of single-character items at the given x positions,
// already sorted the way GroupRows would leave it.
func rowAt(y float64, xs ...float64) Row {
	row := make(Row, len(xs))
	for i, x := range xs {
		row[i] = item("v", x, y)
	}
	return row
}

func TestRowsSimilar(t *testing.T) {
	e := NewEngine(DefaultConfig())

	t.Run("aligned rows are similar", func(t *testing.T) {
		a := rowAt(100, 50, 150, 250)
		b := rowAt(80, 52, 148, 251)
		assert.True(t, e.RowsSimilar(a, b, 5))
	})

	t.Run("rows with fewer than two items never match", func(t *testing.T) {
		a := rowAt(100, 50)
		b := rowAt(80, 50, 150)
		assert.False(t, e.RowsSimilar(a, b, 5))
		assert.False(t, e.RowsSimilar(b, a, 5))
	})

	t.Run("length drift above two rejects", func(t *testing.T) {
		a := rowAt(100, 50, 150)
		b := rowAt(80, 50, 150, 250, 350, 450)
		assert.False(t, e.RowsSimilar(a, b, 5))
	})

	t.Run("below sixty percent alignment rejects", func(t *testing.T) {
		a := rowAt(100, 50, 150, 250)
		b := rowAt(80, 51, 400, 500)
		assert.False(t, e.RowsSimilar(a, b, 5))
	})

	t.Run("symmetric", func(t *testing.T) {
		a := rowAt(100, 50, 150, 250, 350)
		b := rowAt(80, 50, 150)
		assert.Equal(t, e.RowsSimilar(a, b, 5), e.RowsSimilar(b, a, 5))
	})
}

func TestDetectTables(t *testing.T) {
	e := NewEngine(DefaultConfig())

	t.Run("two aligned rows form one table", func(t *testing.T) {
		items := append([]geometry.Item{}, rowAt(100, 50, 150, 250)...)
		items = append(items, rowAt(80, 50, 150, 250)...)
		tables := e.DetectTables(items, 5)
		require.Len(t, tables, 1)
		assert.Equal(t, 2, tables[0].RowCount)
		assert.Equal(t, 3, tables[0].ColumnCount)
	})

	t.Run("fewer than two rows yields no table", func(t *testing.T) {
		tables := e.DetectTables(rowAt(100, 50, 150, 250), 5)
		assert.Empty(t, tables)
	})

	t.Run("extension tests against last accepted row", func(t *testing.T) {
		// each row drifts 4px from the previous; only chaining against the
		// last accepted row keeps the run alive
		rows := []Row{
			rowAt(100, 50, 150),
			rowAt(90, 54, 154),
			rowAt(80, 58, 158),
			rowAt(70, 62, 162),
		}
		tables := e.DetectTablesInRows(rows, 5)
		require.Len(t, tables, 1)
		assert.Equal(t, 4, tables[0].RowCount)
		assert.Equal(t, 0, tables[0].StartRow)
		assert.Equal(t, 3, tables[0].EndRow)
	})

	t.Run("column count is the widest row", func(t *testing.T) {
		// similar rows whose last cells sit at different x: the boundary
		// union grows to four, the logical column count stays three
		rows := []Row{
			rowAt(100, 50, 150, 250),
			rowAt(80, 50, 150, 380),
		}
		tables := e.DetectTablesInRows(rows, 5)
		require.Len(t, tables, 1)
		assert.Equal(t, 3, tables[0].ColumnCount)
		assert.Len(t, tables[0].Columns, 4)
	})

	t.Run("scan resumes after emitted table", func(t *testing.T) {
		rows := []Row{
			rowAt(100, 50, 150),
			rowAt(90, 50, 150),
			rowAt(80, 400, 600, 700),
			rowAt(70, 400, 600, 700),
		}
		tables := e.DetectTablesInRows(rows, 5)
		require.Len(t, tables, 2)
		assert.Equal(t, 0, tables[0].StartRow)
		assert.Equal(t, 1, tables[0].EndRow)
		assert.Equal(t, 2, tables[1].StartRow)
		assert.Equal(t, 3, tables[1].EndRow)
	})

	t.Run("dissimilar rows yield nothing", func(t *testing.T) {
		rows := []Row{
			rowAt(100, 50, 150),
			rowAt(90, 400, 600, 700),
			rowAt(80, 10, 900),
		}
		assert.Empty(t, e.DetectTablesInRows(rows, 5))
	})
}

func TestDetectColumns(t *testing.T) {
	e := NewEngine(DefaultConfig())

	t.Run("dedupes positions within tolerance", func(t *testing.T) {
		rows := []Row{
			rowAt(100, 50, 150, 250),
			rowAt(80, 52, 149, 253),
		}
		cols := e.DetectColumns(rows)
		require.Len(t, cols, 3)
		assert.InDelta(t, 50, cols[0].X, 0.001)
		assert.InDelta(t, 149, cols[1].X, 0.001)
		assert.InDelta(t, 250, cols[2].X, 0.001)
	})

	t.Run("widths span to next boundary with fixed last width", func(t *testing.T) {
		cols := e.DetectColumns([]Row{rowAt(100, 50, 150), rowAt(80, 50, 150)})
		require.Len(t, cols, 2)
		assert.InDelta(t, 100, cols[0].Width, 0.001)
		assert.InDelta(t, 100, cols[1].Width, 0.001)
	})

	t.Run("no items no columns", func(t *testing.T) {
		assert.Nil(t, e.DetectColumns(nil))
	})
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.MinMatchRatio = 1.5
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.TextTolerance = 0
	assert.Error(t, bad.Validate())
}
