package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreFaces(t *testing.T) {
	dice := []int{3, 3, 3, 5, 1}
	assert.Equal(t, 1, Score(CatOnes, dice))
	assert.Equal(t, 0, Score(CatTwos, dice))
	assert.Equal(t, 9, Score(CatThrees, dice))
	assert.Equal(t, 5, Score(CatFives, dice))
	assert.Equal(t, 0, Score(CatSixes, dice))

	// Unset dice never count.
	assert.Equal(t, 0, Score(CatOnes, []int{0, 0, 0, 0, 0}))
}

func TestScoreMaxMin(t *testing.T) {
	assert.Equal(t, 27, Score(CatMax, []int{6, 6, 6, 5, 4}))
	assert.Equal(t, 7, Score(CatMin, []int{1, 1, 1, 2, 2}))
	// Both cells are the raw sum; the threshold advice lives elsewhere.
	assert.Equal(t, Score(CatMax, []int{2, 3, 4, 5, 6}), Score(CatMin, []int{2, 3, 4, 5, 6}))
}

func TestScoreKenter(t *testing.T) {
	assert.Equal(t, 35, Score(CatKenter, []int{1, 2, 3, 4, 5}))
	assert.Equal(t, 35, Score(CatKenter, []int{2, 3, 4, 5, 6}))
	assert.Equal(t, 0, Score(CatKenter, []int{1, 2, 3, 4, 4}))
}

func TestScoreFull(t *testing.T) {
	assert.Equal(t, 49, Score(CatFull, []int{3, 3, 3, 2, 2}))
	// Five of a kind counts as a full of its face.
	assert.Equal(t, 58, Score(CatFull, []int{6, 6, 6, 6, 6}))
	// Four plus one is not a full house.
	assert.Equal(t, 0, Score(CatFull, []int{4, 4, 4, 4, 1}))
	assert.Equal(t, 0, Score(CatFull, []int{1, 2, 3, 4, 5}))
}

func TestScorePoker(t *testing.T) {
	assert.Equal(t, 66, Score(CatPoker, []int{4, 4, 4, 4, 1}))
	// Five matching dice still qualify as poker.
	assert.Equal(t, 70, Score(CatPoker, []int{5, 5, 5, 5, 5}))
	assert.Equal(t, 0, Score(CatPoker, []int{4, 4, 4, 1, 1}))
}

func TestScoreSixty(t *testing.T) {
	assert.Equal(t, 65, Score(CatSixty, []int{1, 1, 1, 1, 1}))
	assert.Equal(t, 90, Score(CatSixty, []int{6, 6, 6, 6, 6}))
	assert.Equal(t, 0, Score(CatSixty, []int{6, 6, 6, 6, 5}))
}

func TestScorePanicsOnUnknownCategory(t *testing.T) {
	assert.Panics(t, func() { Score(Category("yatzy"), []int{1, 2, 3, 4, 5}) })
}

func TestHasNOfAKind(t *testing.T) {
	assert.True(t, HasNOfAKind([]int{2, 2, 2, 2, 5}, 4))
	assert.True(t, HasNOfAKind([]int{2, 2, 2, 2, 2}, 4))
	assert.False(t, HasNOfAKind([]int{2, 2, 2, 3, 3}, 4))
	assert.False(t, HasNOfAKind([]int{0, 0, 0, 0, 0}, 1))
}

func TestColumnSubtotals(t *testing.T) {
	cells := map[Category]int{
		CatOnes: 4, CatTwos: 8, CatThrees: 12,
		CatFours: 16, CatFives: 20, CatSixes: 24,
		CatMax: 28, CatMin: 8,
		CatKenter: 35, CatFull: 49, CatPoker: 66, CatSixty: 0,
	}
	got := ColumnSubtotals(cells)
	assert.Equal(t, 84, got.SumTop)
	assert.Equal(t, 30, got.BonusTop)
	assert.Equal(t, 114, got.TotalTop)
	assert.Equal(t, 4*(28-8), got.SumPairs)
	assert.Equal(t, 150, got.SumLower)
	assert.Equal(t, 114+80+150, got.Total)
}

func TestColumnSubtotalsBonusThreshold(t *testing.T) {
	cells := map[Category]int{CatSixes: 30, CatFives: 29}
	assert.Equal(t, 0, ColumnSubtotals(cells).BonusTop)
	cells[CatOnes] = 1
	assert.Equal(t, 30, ColumnSubtotals(cells).BonusTop)
}

func TestColumnSubtotalsPairsNeedAllThreeCells(t *testing.T) {
	cells := map[Category]int{CatOnes: 3, CatMax: 25}
	assert.Equal(t, 0, ColumnSubtotals(cells).SumPairs)

	cells[CatMin] = 9
	assert.Equal(t, 3*(25-9), ColumnSubtotals(cells).SumPairs)

	// A struck min (zero) still completes the triple.
	cells[CatMin] = 0
	assert.Equal(t, 75, ColumnSubtotals(cells).SumPairs)
}

func TestBoardTotalSumsColumns(t *testing.T) {
	columns := map[string]map[Category]int{
		"down": {CatKenter: 35},
		"free": {CatOnes: 2, CatMax: 20, CatMin: 6},
		"up":   {},
		"ang":  {CatPoker: 54},
	}
	assert.Equal(t, 35+(2+2*(20-6))+54, BoardTotal(columns))
}
