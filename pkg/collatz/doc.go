// Package collatz builds graphs of the Collatz map.
//
// # Overview
//
// The Collatz map sends an even n to n/2 and an odd n to 3n+1. This package
// provides the arithmetic ([Step], [Sequence], [Predecessors]) and two graph
// builders on top of it:
//
//   - [BuildSequenceGraph] turns one trajectory into a path-shaped graph
//   - [BuildInverseTree] explores the predecessors of a value, bounded by
//     depth and by [MaxTreeValue]
//
// Both return a [dag.DAG] together with an [Index] from value to node
// handle. [SequenceGraph] and [InverseTree] wrap the builders and record the
// display title in the graph metadata.
//
// # Arithmetic
//
// All values are uint64. Zero is rejected with an INVALID_INPUT error, and a
// step that would exceed the integer width fails with ARITHMETIC_OVERFLOW
// instead of wrapping. Predecessors above [MaxTreeValue] are pruned during
// tree building; that is policy, not an error.
//
// # Usage
//
//	g, idx, err := collatz.SequenceGraph(6)
//	if err != nil {
//		return err
//	}
//	fmt.Println(g.Title(), g.NodeCount(), idx[16])
//
// The package is pure: it performs no I/O and never logs.
package collatz
