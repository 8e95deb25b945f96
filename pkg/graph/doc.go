// Package graph provides serialization types for Collatz graphs and layouts.
//
// This package defines the wire format used for JSON files, API responses
// and cache entries.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Graph], [Layout]: Serialization types (this package)
//   - pkg/dag.DAG: Internal graph representation
//   - pkg/layout.Layout: Internal layout (positions, levels)
//
// Use [FromDAG]/[ToDAG] and layout.Layout.Export to convert between them.
//
// # Constants
//
//	graph.VizTypeLevels     // "levels"
//	graph.VizTypeNodelink   // "nodelink"
//
// # Graph Serialization
//
// Graphs use a node-link JSON format. IDs are the in-memory node handles:
//
//	{
//	  "meta": {"title": "Collatz Sequence starting from 2"},
//	  "nodes": [{"id": 0, "value": 2, "row": 0}, {"id": 1, "value": 1, "row": 1}],
//	  "edges": [{"from": 0, "to": 1}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("graph.json")   // File → DAG
//	graph.WriteGraphFile(g, "output.json")      // DAG → File
//	data, _ := graph.MarshalGraph(g)            // DAG → []byte
//	parsed, _ := graph.UnmarshalGraph(data)     // []byte → Graph
//
// # Layout Serialization
//
// Layouts add node coordinates, the level grouping and the frame size.
// Nodelink layouts also carry the DOT source handed to Graphviz:
//
//	layout, _ := graph.UnmarshalLayout(data)
//	if layout.IsNodelink() {
//	    // Use layout.DOT for Graphviz rendering
//	}
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
