// Package scoring computes point values for the twelve writable categories
// of a board. It is pure and server-authoritative; clients only render
// previews of the numbers produced here.
package scoring

import "fmt"

// Category is one of the twelve writable scoring categories.
type Category string

const (
	CatOnes   Category = "1"
	CatTwos   Category = "2"
	CatThrees Category = "3"
	CatFours  Category = "4"
	CatFives  Category = "5"
	CatSixes  Category = "6"
	CatMax    Category = "max"
	CatMin    Category = "min"
	CatKenter Category = "kenter" // straight: five distinct faces
	CatFull   Category = "full"   // full house or five of a kind
	CatPoker  Category = "poker"  // four (or five) of a kind
	CatSixty  Category = "60"     // five of a kind
)

// Categories is the fixed board order: top-down columns fill in exactly this
// order, bottom-up columns in the reverse of it.
var Categories = []Category{
	CatOnes, CatTwos, CatThrees, CatFours, CatFives, CatSixes,
	CatMax, CatMin, CatKenter, CatFull, CatPoker, CatSixty,
}

var categorySet = func() map[Category]bool {
	m := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		m[c] = true
	}
	return m
}()

// Valid reports whether c is one of the twelve writable categories.
func Valid(c Category) bool {
	return categorySet[c]
}

// FaceValue returns the die face for a face category ("1".."6"), or 0.
func (c Category) FaceValue() int {
	if len(c) == 1 && c[0] >= '1' && c[0] <= '6' {
		return int(c[0] - '0')
	}
	return 0
}

// counts tallies face occurrences; unset dice (0) are ignored so a fresh
// turn's zeroed dice never score.
func counts(dice []int) map[int]int {
	c := make(map[int]int, 6)
	for _, d := range dice {
		if d > 0 {
			c[d]++
		}
	}
	return c
}

// Sum returns the pip total of all set dice.
func Sum(dice []int) int {
	total := 0
	for _, d := range dice {
		if d > 0 {
			total += d
		}
	}
	return total
}

// HasNOfAKind reports whether at least n dice show the same face.
func HasNOfAKind(dice []int, n int) bool {
	for _, v := range counts(dice) {
		if v >= n {
			return true
		}
	}
	return false
}

// Score maps (category, dice) to a point value. It is total over the twelve
// categories and panics on anything else: an unknown category here is a
// programming error, not user input.
//
// Whether a nonzero poker value may actually be committed in the current
// roll is a turn-legality concern handled by the game package, not here.
func Score(c Category, dice []int) int {
	cnt := counts(dice)

	if face := c.FaceValue(); face > 0 {
		return cnt[face] * face
	}

	switch c {
	case CatMax, CatMin:
		// Same raw sum; the two cells differ only in the suggestion
		// thresholds applied elsewhere.
		return Sum(dice)

	case CatKenter:
		if len(cnt) == 5 {
			return 35
		}
		return 0

	case CatFull:
		// 3+2 or five of a kind. 4+1 does not qualify.
		mostFace, mostN := 0, 0
		four := false
		for face, n := range cnt {
			if n > mostN || (n == mostN && face > mostFace) {
				mostFace, mostN = face, n
			}
			if n == 4 {
				four = true
			}
		}
		if (len(cnt) == 2 && !four) || mostN == 5 {
			return 40 + 3*mostFace
		}
		return 0

	case CatPoker:
		// Five of a kind also counts as poker; the matching face scores.
		for face, n := range cnt {
			if n >= 4 {
				return 50 + 4*face
			}
		}
		return 0

	case CatSixty:
		for face, n := range cnt {
			if n == 5 {
				return 60 + 5*face
			}
		}
		return 0
	}

	panic(fmt.Sprintf("scoring: unknown category %q", c))
}
