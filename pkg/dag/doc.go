// Package dag provides the graph arena that every Collatz graph is built in.
//
// # Overview
//
// Nodes live in a slice and are addressed by small integer handles
// ([NodeID]). Edges and adjacency lists store handles only, so the graph
// never holds pointers between nodes and can be copied, serialized and
// compared by value. Each node carries the Collatz value it represents and
// the row (level) assigned to it by layering.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [DAG.AddNode] (which returns the
// new handle) and connect them with [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	a := g.AddNode(6)
//	b := g.AddNode(3)
//	_ = g.AddEdge(dag.Edge{From: a, To: b})
//
// The arena does not deduplicate values. Builders in the collatz package
// keep a value-to-handle index while constructing a graph and hand it back
// to the caller; [DAG.Validate] checks the one-handle-per-value invariant
// afterwards.
//
// Query the structure with [DAG.Children], [DAG.Parents], [DAG.Sources],
// [DAG.NodesInRow] and friends. Adjacency lists preserve insertion order and
// keep parallel edges, which is what makes layouts reproducible.
//
// # Rows
//
// Rows start at zero for every node and change only through [DAG.SetRows],
// which decoders use to restore the rows of a serialized graph. The
// layering pass in the [transform] subpackage returns levels without
// touching them.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count crossings between
// consecutive rows with a Fenwick tree in O(E log V). Layouts report the
// number as a quality hint.
//
// # Concurrency
//
// DAG instances are not safe for concurrent mutation. Once a builder returns
// the graph is treated as read-only and may be shared between goroutines.
//
// [transform]: github.com/matzehuels/collatz/pkg/dag/transform
package dag
