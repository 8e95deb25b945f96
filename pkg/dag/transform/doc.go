// Package transform computes the level structure that layered layouts are
// drawn from.
//
// # Layer Assignment
//
// [AssignLevels] walks the graph breadth-first from its roots (nodes without
// incoming edges) and groups nodes by the pass in which they were first
// reached. The first assignment wins, so a node reachable along several
// paths sits at its shortest distance from a root. Collatz graphs can
// contain the 1→4→2→1 loop; the traversal never revisits a levelled node,
// so cycles terminate naturally and are not broken or reported.
//
// Graphs without any root fall back to their first node. Nodes that remain
// unreachable seed further traversals at level 0 so the result always
// covers every node exactly once.
//
// # Usage
//
//	levels := transform.AssignLevels(g)
//	for i, ids := range levels {
//		fmt.Println(i, g.Values(ids))
//	}
package transform
