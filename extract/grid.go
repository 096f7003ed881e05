// Package extract turns raw menu documents (legacy .xls sheets, modern
// .xlsx sheets and PDF page tables) into a day-indexed map of canonical
// category to dish text. Extraction is best effort: cells that cannot be
// interpreted are skipped and the remaining data is kept.
package extract

import (
	"time"

	"github.com/crwntec/mensaLog/plan"
)

// CellKind discriminates how a sheet cell's value was stored.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellTime
)

// Cell is one sheet cell, decoupled from the reading library.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

// IsEmpty reports whether the cell carries no usable value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty || (c.Kind == CellText && c.Text == "")
}

// Grid is a rectangular-ish sheet snapshot. Out-of-range lookups return an
// empty cell so sniffers never have to bounds-check.
type Grid struct {
	rows [][]Cell
}

// NewGrid wraps pre-built rows. Rows may be ragged.
func NewGrid(rows [][]Cell) *Grid {
	return &Grid{rows: rows}
}

// At returns the cell at (row, col), or an empty cell when out of range.
func (g *Grid) At(row, col int) Cell {
	if g == nil || row < 0 || row >= len(g.rows) {
		return Cell{}
	}
	r := g.rows[row]
	if col < 0 || col >= len(r) {
		return Cell{}
	}
	return r[col]
}

// Rows returns the number of rows in the grid.
func (g *Grid) Rows() int {
	if g == nil {
		return 0
	}
	return len(g.rows)
}

// Days is the extractor output: ISO date (YYYY-MM-DD) to day schedule.
type Days map[string]plan.Day

// merge copies all entries of other into d, later entries winning.
func (d Days) merge(other Days) {
	for date, day := range other {
		d[date] = day
	}
}
