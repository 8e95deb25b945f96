package collatz

import (
	"math"

	"github.com/matzehuels/collatz/pkg/errors"
)

// Predecessors returns the values that map to n in one Collatz step.
//
// The even predecessor 2n always exists and comes first. The odd
// predecessor (n-1)/3 follows when n > 1, n mod 3 == 1 and the quotient is
// itself odd, since only odd inputs take the 3n+1 branch.
//
//	Predecessors(1) == [2]
//	Predecessors(4) == [8 1]
//	Predecessors(16) == [32 5]
//
// Returns an ErrCodeArithmeticOverflow error when 2n does not fit in a uint64.
func Predecessors(n uint64) ([]uint64, error) {
	if n == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "value must be positive, got 0")
	}
	if n > math.MaxUint64/2 {
		return nil, errors.New(errors.ErrCodeArithmeticOverflow, "2×%d overflows uint64", n)
	}

	preds := []uint64{2 * n}
	if n > 1 && n%3 == 1 {
		if p := (n - 1) / 3; p%2 == 1 {
			preds = append(preds, p)
		}
	}
	return preds, nil
}
