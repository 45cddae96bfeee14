package battle

// DrawSpace is the exclusive upper bound of a weight draw; draws are uniform
// integers in [0, 100].
const DrawSpace = 101

// Source is the randomness a Generator consumes. *rand.Rand from math/rand/v2
// satisfies it.
type Source interface {
	IntN(n int) int
}

// Choose walks weights cumulatively and returns the first category whose
// cumulative bound is >= draw. Categories with weight <= 0 are skipped
// outright so they can never absorb a boundary draw. A draw beyond the total
// falls into the last non-zero category. Choose returns -1 when every weight
// is zero.
func Choose(weights []int, draw int) int {
	cum := 0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		last = i
		if draw <= cum {
			return i
		}
	}
	return last
}

// Draw picks a category from weights using one uniform draw from src.
func Draw(src Source, weights []int) int {
	return Choose(weights, src.IntN(DrawSpace))
}
