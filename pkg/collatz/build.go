package collatz

import (
	"fmt"

	"github.com/matzehuels/collatz/pkg/dag"
	"github.com/matzehuels/collatz/pkg/errors"
)

const (
	// MaxTreeValue caps the predecessors explored by [BuildInverseTree].
	// Larger candidates are dropped silently; the start value is exempt.
	MaxTreeValue uint64 = 1_000_000

	// DefaultDepth is the inverse tree depth used when none is given.
	DefaultDepth = 5
)

// Graph modes stored under [dag.MetaMode].
const (
	ModeSequence = "sequence"
	ModeInverse  = "inverse"
)

// Index maps each value in a graph to the handle of its node.
type Index map[uint64]dag.NodeID

// node returns the handle for v, creating the node on first sight.
func (idx Index) node(g *dag.DAG, v uint64) dag.NodeID {
	if id, ok := idx[v]; ok {
		return id
	}
	id := g.AddNode(v)
	idx[v] = id
	return id
}

// BuildSequenceGraph turns a trajectory into a graph with one node per
// distinct value and one edge per consecutive pair.
//
// Nodes are created in first-occurrence order. Edges are added for every
// pair, including pairs that revisit a value, so the edge count is always
// len(seq)-1.
func BuildSequenceGraph(seq []uint64) (*dag.DAG, Index, error) {
	if len(seq) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "sequence is empty")
	}

	g := dag.New(nil)
	idx := make(Index, len(seq))
	for _, v := range seq {
		idx.node(g, v)
	}
	for i := 0; i+1 < len(seq); i++ {
		if err := g.AddEdge(dag.Edge{From: idx[seq[i]], To: idx[seq[i+1]]}); err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "add edge %d→%d", seq[i], seq[i+1])
		}
	}
	return g, idx, nil
}

type pending struct {
	value uint64
	id    dag.NodeID
	depth int
}

// BuildInverseTree explores the predecessors of start up to maxDepth steps
// back. Edges point from predecessor to successor, matching the forward
// direction of the map.
//
// The worklist is LIFO, so exploration is depth-first. A predecessor above
// [MaxTreeValue] is dropped. Otherwise its node is reused or created, an
// edge to the current value is added, and it is queued at depth+1 unless
// the same value is already waiting in the worklist. Values that have been
// expanded before may be queued again, which is how the 1→4→2→1 loop shows
// up as repeated edges in trees rooted at 1, 2 or 4.
func BuildInverseTree(start uint64, maxDepth int) (*dag.DAG, Index, error) {
	if start == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "starting value must be positive, got 0")
	}
	if maxDepth < 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "depth must not be negative, got %d", maxDepth)
	}

	g := dag.New(nil)
	idx := make(Index)
	root := idx.node(g, start)

	stack := []pending{{value: start, id: root}}
	queued := map[uint64]struct{}{start: {}}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		delete(queued, curr.value)

		if curr.depth >= maxDepth {
			continue
		}

		preds, err := Predecessors(curr.value)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range preds {
			if p > MaxTreeValue {
				continue
			}
			id := idx.node(g, p)
			if err := g.AddEdge(dag.Edge{From: id, To: curr.id}); err != nil {
				return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "add edge %d→%d", p, curr.value)
			}
			if _, ok := queued[p]; ok {
				continue
			}
			queued[p] = struct{}{}
			stack = append(stack, pending{value: p, id: id, depth: curr.depth + 1})
		}
	}
	return g, idx, nil
}

// SequenceTitle is the display title of the sequence graph for n.
func SequenceTitle(n uint64) string {
	return fmt.Sprintf("Collatz Sequence starting from %d", n)
}

// InverseTitle is the display title of the inverse tree for n.
func InverseTitle(n uint64, depth int) string {
	return fmt.Sprintf("Inverse Collatz Tree leading to %d (depth: %d)", n, depth)
}

// SequenceGraph computes the trajectory of n and builds its graph, with
// title, mode and start recorded in the graph metadata.
func SequenceGraph(n uint64) (*dag.DAG, Index, error) {
	seq, err := Sequence(n)
	if err != nil {
		return nil, nil, err
	}
	g, idx, err := BuildSequenceGraph(seq)
	if err != nil {
		return nil, nil, err
	}
	meta := g.Meta()
	meta[dag.MetaTitle] = SequenceTitle(n)
	meta[dag.MetaMode] = ModeSequence
	meta[dag.MetaStart] = n
	return g, idx, nil
}

// InverseTree builds the inverse tree of n with the given depth, with
// title, mode, start and depth recorded in the graph metadata.
func InverseTree(n uint64, depth int) (*dag.DAG, Index, error) {
	g, idx, err := BuildInverseTree(n, depth)
	if err != nil {
		return nil, nil, err
	}
	meta := g.Meta()
	meta[dag.MetaTitle] = InverseTitle(n, depth)
	meta[dag.MetaMode] = ModeInverse
	meta[dag.MetaStart] = n
	meta[dag.MetaDepth] = depth
	return g, idx, nil
}
