package game

import (
	"fmt"

	"github.com/pkreuzt/jamb/internal/scoring"
)

// CanWriteNow reports whether the actor may write the given cell right now,
// and if not, why. It is a pure predicate: the caller applies the result.
//
// Rule order:
//  1. category and column must be real,
//  2. a board with exactly one empty cell waives every column restriction
//     (the game must be able to terminate),
//  3. an active announcement restricts the whole turn to the announced
//     category in the announced column,
//  4. the free column accepts anything,
//  5. the announced column without an announcement accepts a write only
//     directly after the first roll (implicit announcement path),
//  6. down/up columns accept only their next unfilled category.
func (r *Room) CanWriteNow(playerID string, cat scoring.Category, col Column) (bool, string) {
	if !scoring.Valid(cat) {
		return false, "this cell is not writable"
	}
	if !ValidColumn(col) {
		return false, "unknown column"
	}

	board := r.boardFor(playerID)
	if board.Remaining() == 1 {
		return true, ""
	}

	if r.Announced != "" {
		if col != ColumnAnnounced {
			return false, fmt.Sprintf("announcement active: only %s in the announced column is allowed", r.Announced)
		}
		if cat != r.Announced {
			return false, fmt.Sprintf("announced category is %s, not %s", r.Announced, cat)
		}
		return true, ""
	}

	switch col {
	case ColumnFree:
		return true, ""

	case ColumnAnnounced:
		if r.RollsUsed == 1 {
			return true, ""
		}
		return false, "no announcement active"

	case ColumnDown, ColumnUp:
		next := board.NextRequired(col)
		if next == "" {
			return false, "column is already complete"
		}
		if cat != next {
			return false, fmt.Sprintf("next cell in this column must be %s", next)
		}
		return true, ""
	}
	return false, "unknown column"
}
