package tableinfer

import (
	"sort"

	"github.com/MeKo-Tech/tabula/internal/geometry"
)

// Column is an inferred vertical boundary with the horizontal span to the
// next boundary.
type Column struct {
	X     float64 `json:"x"`
	Width float64 `json:"width"`
}

// Table is a maximal run of at least two consecutive similar rows.
// ColumnCount is the widest row's length; Columns holds the deduplicated
// x-boundaries and can be longer when similar rows only partially overlap.
type Table struct {
	Rows        []Row    `json:"rows"`
	Columns     []Column `json:"columns"`
	StartRow    int      `json:"start_row"`
	EndRow      int      `json:"end_row"`
	RowCount    int      `json:"row_count"`
	ColumnCount int      `json:"column_count"`
}

// Engine runs table inference with a fixed configuration.
type Engine struct {
	cfg Config
}

// NewEngine returns an inference engine, substituting defaults for a zero
// configuration.
func NewEngine(cfg Config) *Engine {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg}
}

// ToleranceFor returns the grouping tolerance appropriate for an item source.
func (e *Engine) ToleranceFor(source geometry.Source) float64 {
	if source == geometry.SourceOCR {
		return e.cfg.OCRTolerance
	}
	return e.cfg.TextTolerance
}

// DetectTables groups the page's items into rows at the given tolerance and
// extracts every maximal run of similar rows as a table.
func (e *Engine) DetectTables(items []geometry.Item, tolerance float64) []Table {
	rows := GroupRows(items, tolerance)
	return e.DetectTablesInRows(rows, tolerance)
}

// DetectTablesInRows scans consecutive row pairs; when a pair is similar it
// greedily extends the run, testing each following row against the last
// accepted row. The scan resumes after the emitted run, so no row belongs to
// two tables.
func (e *Engine) DetectTablesInRows(rows []Row, tolerance float64) []Table {
	var tables []Table
	for i := 0; i < len(rows)-1; {
		if !e.RowsSimilar(rows[i], rows[i+1], tolerance) {
			i++
			continue
		}
		run := []Row{rows[i], rows[i+1]}
		j := i + 2
		for j < len(rows) && e.RowsSimilar(run[len(run)-1], rows[j], tolerance) {
			run = append(run, rows[j])
			j++
		}
		tables = append(tables, e.buildTable(run, i, j-1))
		i = j
	}
	return tables
}

func (e *Engine) buildTable(rows []Row, start, end int) Table {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return Table{
		Rows:        rows,
		Columns:     e.DetectColumns(rows),
		StartRow:    start,
		EndRow:      end,
		RowCount:    len(rows),
		ColumnCount: width,
	}
}

// RowsSimilar reports whether two rows share enough structure to belong to
// the same table: both have at least two items, their lengths differ by no
// more than the configured drift, and at least the configured ratio of the
// shorter row's x-positions find a counterpart in the other row within
// tolerance. Walking the shorter row makes the test symmetric.
func (e *Engine) RowsSimilar(a, b Row, tolerance float64) bool {
	if len(a) < 2 || len(b) < 2 {
		return false
	}
	drift := len(a) - len(b)
	if drift < 0 {
		drift = -drift
	}
	if drift > e.cfg.MaxLengthDrift {
		return false
	}

	shorter, longer := a, b
	if len(b) < len(a) {
		shorter, longer = b, a
	}
	matches := 0
	for _, x := range shorter.xPositions() {
		for _, other := range longer.xPositions() {
			if geometry.Within(x, other, tolerance) {
				matches++
				break
			}
		}
	}
	return float64(matches) >= e.cfg.MinMatchRatio*float64(len(shorter))
}

// DetectColumns unions the x-positions of every item across the rows,
// deduplicates positions within the column tolerance, and turns the sorted
// survivors into column boundaries. The last column has no next boundary and
// falls back to a fixed width.
func (e *Engine) DetectColumns(rows []Row) []Column {
	var xs []float64
	for _, row := range rows {
		xs = append(xs, row.xPositions()...)
	}
	if len(xs) == 0 {
		return nil
	}
	sort.Float64s(xs)

	var kept []float64
	for _, x := range xs {
		if len(kept) == 0 || !geometry.Within(x, kept[len(kept)-1], e.cfg.ColumnTolerance) {
			kept = append(kept, x)
		}
	}

	columns := make([]Column, len(kept))
	for i, x := range kept {
		width := e.cfg.LastColumnWidth
		if i < len(kept)-1 {
			width = kept[i+1] - x
		}
		columns[i] = Column{X: x, Width: width}
	}
	return columns
}
