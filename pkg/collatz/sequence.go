package collatz

import (
	"math"

	"github.com/matzehuels/collatz/pkg/errors"
)

// maxOddInput is the largest odd n for which 3n+1 fits in a uint64.
const maxOddInput = (math.MaxUint64 - 1) / 3

// Step applies the Collatz map once: n/2 for even n, 3n+1 for odd n.
//
// Returns an ErrCodeInvalidInput error for n == 0 and an
// ErrCodeArithmeticOverflow error when 3n+1 does not fit in a uint64.
func Step(n uint64) (uint64, error) {
	if n == 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "value must be positive, got 0")
	}
	if n%2 == 0 {
		return n / 2, nil
	}
	if n > maxOddInput {
		return 0, errors.New(errors.ErrCodeArithmeticOverflow, "3×%d+1 overflows uint64", n)
	}
	return 3*n + 1, nil
}

// Sequence returns the trajectory of n: n itself followed by each
// successive Step result, ending with the first 1.
//
//	Sequence(1) == [1]
//	Sequence(3) == [3 10 5 16 8 4 2 1]
//
// A zero start is rejected rather than looping forever on 0/2 == 0. Any
// overflow along the way aborts the whole sequence.
func Sequence(n uint64) ([]uint64, error) {
	if n == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "starting value must be positive, got 0")
	}

	seq := []uint64{n}
	for n != 1 {
		next, err := Step(n)
		if err != nil {
			return nil, err
		}
		n = next
		seq = append(seq, n)
	}
	return seq, nil
}

// Stats summarizes a trajectory.
type Stats struct {
	Start uint64 // First value
	Steps int    // Number of steps until 1 (total stopping time)
	Peak  uint64 // Largest value reached
}

// Summarize computes Stats for a sequence as returned by [Sequence].
// An empty sequence yields the zero Stats.
func Summarize(seq []uint64) Stats {
	if len(seq) == 0 {
		return Stats{}
	}
	s := Stats{Start: seq[0], Steps: len(seq) - 1}
	for _, v := range seq {
		s.Peak = max(s.Peak, v)
	}
	return s
}
