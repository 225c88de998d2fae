package game

import (
	"strings"

	"github.com/pkreuzt/jamb/internal/scoring"
)

// Column is one of the four fill-order disciplines a board applies to the
// twelve categories.
type Column string

const (
	ColumnDown      Column = "down" // strictly in category order
	ColumnFree      Column = "free" // any empty cell
	ColumnUp        Column = "up"   // strictly in reverse category order
	ColumnAnnounced Column = "ang"  // only the announced category
)

// Columns lists every column of a board.
var Columns = []Column{ColumnDown, ColumnFree, ColumnUp, ColumnAnnounced}

// CellsPerBoard is the number of writable cells: 12 categories x 4 columns.
var CellsPerBoard = len(scoring.Categories) * len(Columns)

// ValidColumn reports whether col names a real column.
func ValidColumn(col Column) bool {
	switch col {
	case ColumnDown, ColumnFree, ColumnUp, ColumnAnnounced:
		return true
	}
	return false
}

// Board maps cell keys ("<category>,<column>") to point values. A cell, once
// present, is immutable except through the correction flow.
type Board map[string]int

// CellKey builds the board key for a category/column pair.
func CellKey(cat scoring.Category, col Column) string {
	return string(cat) + "," + string(col)
}

// splitCellKey is the inverse of CellKey; ok is false for foreign keys.
func splitCellKey(key string) (scoring.Category, Column, bool) {
	i := strings.IndexByte(key, ',')
	if i < 0 {
		return "", "", false
	}
	cat, col := scoring.Category(key[:i]), Column(key[i+1:])
	if !scoring.Valid(cat) || !ValidColumn(col) {
		return "", "", false
	}
	return cat, col, true
}

// Filled reports whether the cell for cat/col has been written.
func (b Board) Filled(cat scoring.Category, col Column) bool {
	_, ok := b[CellKey(cat, col)]
	return ok
}

// Remaining returns the number of empty cells on the board.
func (b Board) Remaining() int {
	return CellsPerBoard - len(b)
}

// NextRequired returns the next category a down/up column must fill, or ""
// when the column is complete. Down traverses the category list top to
// bottom, up traverses it in reverse.
func (b Board) NextRequired(col Column) scoring.Category {
	if col == ColumnDown {
		for _, cat := range scoring.Categories {
			if !b.Filled(cat, col) {
				return cat
			}
		}
		return ""
	}
	for i := len(scoring.Categories) - 1; i >= 0; i-- {
		if cat := scoring.Categories[i]; !b.Filled(cat, col) {
			return cat
		}
	}
	return ""
}

// byColumn regroups the flat cell map into per-column category maps for the
// totals math in the scoring package.
func (b Board) byColumn() map[string]map[scoring.Category]int {
	out := make(map[string]map[scoring.Category]int, len(Columns))
	for _, col := range Columns {
		out[string(col)] = make(map[scoring.Category]int)
	}
	for key, v := range b {
		cat, col, ok := splitCellKey(key)
		if !ok {
			continue
		}
		out[string(col)][cat] = v
	}
	return out
}

// Total computes the board's grand total, including upper bonus and the
// ones x (max-min) product per column.
func (b Board) Total() int {
	return scoring.BoardTotal(b.byColumn())
}
