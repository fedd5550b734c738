// Package tableinfer infers tabular structure from positioned text items.
// It groups items into visual rows by vertical proximity, finds runs of
// structurally similar rows, and derives column boundaries from the
// horizontal positions observed across a run.
package tableinfer

import (
	"sort"

	"github.com/MeKo-Tech/tabula/internal/geometry"
)

// Row is a horizontal band of items, sorted ascending by X.
type Row []geometry.Item

// GroupRows partitions items into rows. Items are walked in descending-Y
// order; an item opens a new row when its Y is more than tolerance away from
// the Y that anchored the current row. Each finished row is sorted left to
// right. The input slice is not modified.
func GroupRows(items []geometry.Item, tolerance float64) []Row {
	if len(items) == 0 {
		return nil
	}

	sorted := make([]geometry.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var rows []Row
	var current Row
	anchorY := sorted[0].Y

	flush := func() {
		if len(current) == 0 {
			return
		}
		sort.SliceStable(current, func(i, j int) bool {
			return current[i].X < current[j].X
		})
		rows = append(rows, current)
	}

	for _, item := range sorted {
		if len(current) == 0 || geometry.Within(item.Y, anchorY, tolerance) {
			if len(current) == 0 {
				anchorY = item.Y
			}
			current = append(current, item)
			continue
		}
		flush()
		current = Row{item}
		anchorY = item.Y
	}
	flush()
	return rows
}

// Text concatenates the row's item texts separated by single spaces.
func (r Row) Text() string {
	var out string
	for i, item := range r {
		if i > 0 {
			out += " "
		}
		out += item.Text
	}
	return out
}

// xPositions returns the X coordinate of every item in the row.
func (r Row) xPositions() []float64 {
	xs := make([]float64, len(r))
	for i, item := range r {
		xs[i] = item.X
	}
	return xs
}
