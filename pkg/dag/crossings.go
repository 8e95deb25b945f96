package dag

import "slices"

// CountCrossings returns the total number of edge crossings for the given
// level orderings. orders[i] holds the handles of level i in left-to-right
// order; crossings are summed over each pair of consecutive levels. Edges
// that skip levels or point upward are ignored.
//
// The layout engine reports this number; it never reorders nodes to reduce it.
func CountCrossings(g *DAG, orders [][]NodeID) int {
	crossings := 0
	for i := 0; i+1 < len(orders); i++ {
		crossings += CountLayerCrossings(g, orders[i], orders[i+1])
	}
	return crossings
}

// CountLayerCrossings counts crossings between the edges joining upper to
// lower. Edges (a, b) and (c, d) cross when a is left of c but b is right
// of d, so the count is the number of inversions among target positions
// once edges are sorted by source position. Parallel edges count once per
// copy.
func CountLayerCrossings(g *DAG, upper, lower []NodeID) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := PosMap(lower)
	var targets []int // lower positions, grouped by upper position
	for _, id := range upper {
		start := len(targets)
		for _, child := range g.Children(id) {
			if pos, ok := lowerPos[child]; ok {
				targets = append(targets, pos)
			}
		}
		slices.Sort(targets[start:])
	}

	seen := make(fenwick, len(lower)+1)
	crossings := 0
	for i, pos := range targets {
		crossings += i - seen.prefix(pos)
		seen.add(pos)
	}
	return crossings
}

// fenwick is a binary indexed tree over positions 0..len-2.
type fenwick []int

// prefix returns how many added positions are <= pos.
func (f fenwick) prefix(pos int) int {
	n := 0
	for i := pos + 1; i > 0; i -= i & -i {
		n += f[i]
	}
	return n
}

func (f fenwick) add(pos int) {
	for i := pos + 1; i < len(f); i += i & -i {
		f[i]++
	}
}
