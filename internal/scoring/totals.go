package scoring

// ColumnTotals holds the subtotal breakdown of one column of a board.
type ColumnTotals struct {
	SumTop   int `json:"sum_top"`   // faces 1..6
	BonusTop int `json:"bonus_top"` // 30 when SumTop reaches the bonus threshold
	TotalTop int `json:"total_top"`
	SumPairs int `json:"sum_pairs"` // ones x (max - min), only once all three cells exist
	SumLower int `json:"sum_lower"` // kenter + full + poker + 60
	Total    int `json:"total"`
}

// upperBonusThreshold is the face-sum at which the 30-point bonus is granted.
const upperBonusThreshold = 60

// ColumnSubtotals computes the subtotal breakdown of a single column, given
// the written cells of that column (missing cells count as 0, except that
// the max/min product requires all of 1, max and min to be present).
func ColumnSubtotals(cells map[Category]int) ColumnTotals {
	var t ColumnTotals
	for _, c := range []Category{CatOnes, CatTwos, CatThrees, CatFours, CatFives, CatSixes} {
		t.SumTop += cells[c]
	}
	if t.SumTop >= upperBonusThreshold {
		t.BonusTop = 30
	}
	t.TotalTop = t.SumTop + t.BonusTop

	ones, haveOnes := cells[CatOnes]
	max, haveMax := cells[CatMax]
	min, haveMin := cells[CatMin]
	if haveOnes && haveMax && haveMin {
		t.SumPairs = ones * (max - min)
	}

	t.SumLower = cells[CatKenter] + cells[CatFull] + cells[CatPoker] + cells[CatSixty]
	t.Total = t.TotalTop + t.SumPairs + t.SumLower
	return t
}

// BoardTotal sums the subtotals of every column of a board, keyed by column
// name. The iteration set is caller-defined so this package stays free of
// board-layout knowledge.
func BoardTotal(columns map[string]map[Category]int) int {
	total := 0
	for _, cells := range columns {
		total += ColumnSubtotals(cells).Total
	}
	return total
}
