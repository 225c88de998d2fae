package game

import (
	"errors"
	"fmt"

	"github.com/pkreuzt/jamb/internal/scoring"
)

// RequestCorrection opens the one-shot correction of the actor's most recent
// write. The prior write's dice and poker metadata are frozen and the dice
// become the room's visible dice again. Assumes lock is held.
//
// Preconditions, in order: correction enabled (multi-player rooms only), no
// correction already in flight, a prior write exists, that write is the
// room's most recent one, it was not made under an announcement (announced
// writes are final), it is not the requester's own turn, and the next actor
// has not rolled yet.
func (r *Room) RequestCorrection(playerID string) error {
	if r.Mode == ModeSolo {
		return ErrCorrectionSolo
	}
	if r.Correction != nil {
		return ErrCorrectionActive
	}
	lw := r.lastWrites[playerID]
	if lw == nil {
		return ErrNoPriorWrite
	}
	if r.lastWriterID != playerID {
		return ErrNotLatestWriter
	}
	if lw.Announced != "" {
		return ErrAnnouncedWriteFinal
	}
	if r.Turn == nil || r.currentPlayerID() == playerID {
		return ErrCorrectionOwnTurn
	}
	if r.RollsUsed > 0 {
		return ErrCorrectionAfterRoll
	}

	r.Correction = &Correction{
		PlayerID:  playerID,
		Dice:      lw.Dice,
		RollIndex: lw.RollIndex,
		First4OAK: lw.First4OAK,
	}
	r.Dice = lw.Dice
	r.touch()
	return nil
}

// CancelCorrection discards the frozen state and restores the zeroed dice
// display. Always legal while a correction is active. Assumes lock is held.
func (r *Room) CancelCorrection() error {
	if r.Correction == nil {
		return ErrNoCorrection
	}
	r.Correction = nil
	r.Dice = [5]int{}
	r.touch()
	return nil
}

// WriteCorrection removes the corrected cell, re-validates the new target
// against the current board state and commits the re-scored value using the
// frozen dice and metadata. Correction mode ends unconditionally: a final
// rejection returns the room to normal play just like a commit does.
// Assumes lock is held.
func (r *Room) WriteCorrection(playerID string, cat scoring.Category, col Column, strike bool) error {
	if r.Mode == ModeSolo {
		return ErrCorrectionSolo
	}
	corr := r.Correction
	if corr == nil || corr.PlayerID != playerID {
		return ErrNoCorrection
	}
	if !scoring.Valid(cat) {
		return ErrInvalidCategory
	}
	if !ValidColumn(col) {
		return ErrInvalidColumn
	}
	lw := r.lastWrites[playerID]
	if lw == nil {
		r.exitCorrection()
		return ErrNoPriorWrite
	}

	board := r.boardFor(playerID)
	oldKey := CellKey(lw.Cat, lw.Col)
	oldValue, hadOld := board[oldKey]
	// The old cell counts as empty for the re-validation below; it is
	// restored verbatim if the rewrite is rejected.
	delete(board, oldKey)

	reject := func(err error) error {
		if hadOld {
			board[oldKey] = oldValue
		}
		r.exitCorrection()
		return err
	}

	if col == ColumnDown || col == ColumnUp {
		next := board.NextRequired(col)
		if next == "" {
			return reject(errors.New("column is already complete"))
		}
		// Re-confirming the original slot is allowed even when it is no
		// longer the nominal next row.
		if cat != next && !(cat == lw.Cat && col == lw.Col) {
			return reject(fmt.Errorf("next cell in this column must be %s", next))
		}
	}
	newKey := CellKey(cat, col)
	if _, occupied := board[newKey]; occupied {
		return reject(ErrCellOccupied)
	}

	// No poker timing downgrade here: the frozen dice are the evidence.
	// If they show four of a kind it existed in the corrected turn, so a
	// poker rewrite scores regardless of which roll the mistaken entry
	// happened on. Zeroing a rewrite based on live turn context was the
	// bug this flow exists to avoid.
	value := 0
	if !strike {
		value = scoring.Score(cat, corr.Dice[:])
	}
	board[newKey] = value

	r.exitCorrection()
	if r.boardsComplete() {
		r.finish()
	}
	r.touch()
	return nil
}

// exitCorrection leaves correction mode, zeroes the dice display without
// arming the solo auto-roll, and retires the targeted write: a correction,
// once acted upon, cannot be requested again. Assumes lock is held.
func (r *Room) exitCorrection() {
	if r.Correction != nil {
		delete(r.lastWrites, r.Correction.PlayerID)
		if r.lastWriterID == r.Correction.PlayerID {
			r.lastWriterID = ""
		}
	}
	r.Correction = nil
	r.Dice = [5]int{}
}
