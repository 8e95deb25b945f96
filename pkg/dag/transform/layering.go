package transform

import "github.com/matzehuels/collatz/pkg/dag"

// AssignLevels groups nodes into horizontal levels by breadth-first distance
// from the graph's roots and returns the groups, level 0 first.
//
// Roots are the nodes without incoming edges, in creation order. A graph
// with nodes but no roots (every node sits on a cycle) falls back to its
// first node. From there the traversal follows outgoing edges in insertion
// order and a node keeps the level it was first discovered at, so:
//   - Roots are at level 0
//   - Every other node is one level below the node that discovered it
//   - Levels are contiguous, with no empty groups between them
//
// Within a level, handles appear in discovery order. Nodes that no root can
// reach start another traversal at level 0, in creation order, so that
// every node is levelled.
//
// g is only read.
//
// # Nil Handling
//
// AssignLevels panics if g is nil. An empty graph yields nil.
//
// # Performance
//
// Time complexity is O(V + E). Space complexity is O(V) for the queue and
// level table.
func AssignLevels(g *dag.DAG) [][]dag.NodeID {
	n := g.NodeCount()
	if n == 0 {
		return nil
	}

	level := make([]int, n)
	for i := range level {
		level[i] = -1
	}
	var groups [][]dag.NodeID

	place := func(id dag.NodeID, l int) {
		level[id] = l
		for len(groups) <= l {
			groups = append(groups, nil)
		}
		groups[l] = append(groups[l], id)
	}

	bfs := func(roots []dag.NodeID) {
		queue := make([]dag.NodeID, 0, len(roots))
		for _, r := range roots {
			if level[r] < 0 {
				place(r, 0)
				queue = append(queue, r)
			}
		}
		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			for _, child := range g.Children(curr) {
				if level[child] >= 0 {
					continue
				}
				place(child, level[curr]+1)
				queue = append(queue, child)
			}
		}
	}

	roots := g.Sources()
	if len(roots) == 0 {
		roots = []dag.NodeID{0}
	}
	bfs(roots)

	for i := range n {
		if level[i] < 0 {
			bfs([]dag.NodeID{dag.NodeID(i)})
		}
	}

	return groups
}
