package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math"
	"strconv"

	"github.com/matzehuels/collatz/pkg/dag"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Visualization types.
const (
	VizTypeLevels   = "levels"
	VizTypeNodelink = "nodelink"
)

// VizTypes lists the supported visualization types.
var VizTypes = []string{VizTypeLevels, VizTypeNodelink}

// =============================================================================
// Graph - Collatz Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for Collatz graphs.
// Used for API responses, caching, and files written with --format json.
//
// Node IDs are the handles of the in-memory graph, so they are dense and
// appear in creation order. A decoded graph reproduces the same handles.
type Graph struct {
	Meta  map[string]any `json:"meta,omitempty"`
	Nodes []Node         `json:"nodes"`
	Edges []Edge         `json:"edges"`
}

// =============================================================================
// Node and Edge
// =============================================================================

// Node is a serialized vertex.
type Node struct {
	ID    int    `json:"id"`
	Value uint64 `json:"value"`
	Row   int    `json:"row"` // Level assigned by layout
}

// Label returns the text drawn for the node.
func (n Node) Label() string { return fmt.Sprintf("%d", n.Value) }

// Edge represents a directed edge, predecessor to successor.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// =============================================================================
// DAG ↔ Graph Conversion
// =============================================================================

// FromDAG converts a DAG to its serialization format.
// Nodes and edges keep their in-memory order.
func FromDAG(g *dag.DAG) Graph {
	nodes := g.Nodes()
	edges := g.Edges()

	out := Graph{
		Meta:  copyMeta(g.Meta()),
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
	}
	for i, n := range nodes {
		out.Nodes[i] = nodeFromDAG(n)
	}
	for i, e := range edges {
		out.Edges[i] = Edge{From: int(e.From), To: int(e.To)}
	}
	return out
}

// ToDAG converts a Graph to a DAG.
// Node IDs must equal their position in the node list, which is what
// FromDAG produces. Start and depth metadata decoded from JSON are converted
// back to the uint64 and int the builders store.
func ToDAG(gj Graph) (*dag.DAG, error) {
	meta, err := normalizeMeta(gj.Meta)
	if err != nil {
		return nil, err
	}
	d := dag.New(meta)

	rows := make(map[dag.NodeID]int, len(gj.Nodes))
	for i, nj := range gj.Nodes {
		if nj.ID != i {
			return nil, fmt.Errorf("node %d: id out of sequence (want %d)", nj.ID, i)
		}
		id := d.AddNode(nj.Value)
		rows[id] = nj.Row
	}
	d.SetRows(rows)

	for _, ej := range gj.Edges {
		if err := d.AddEdge(dag.Edge{From: dag.NodeID(ej.From), To: dag.NodeID(ej.To)}); err != nil {
			return nil, fmt.Errorf("add edge %d→%d: %w", ej.From, ej.To, err)
		}
	}

	return d, nil
}

// UnmarshalGraph deserializes JSON bytes to a Graph. Numbers in the
// metadata are kept as [json.Number], so 64-bit start values survive.
func UnmarshalGraph(data []byte) (Graph, error) {
	return decodeGraph(bytes.NewReader(data))
}

func decodeGraph(r io.Reader) (Graph, error) {
	var g Graph
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func nodeFromDAG(n dag.Node) Node {
	return Node{ID: int(n.ID), Value: n.Value, Row: n.Row}
}

// copyMeta creates a shallow copy of metadata to avoid mutation.
func copyMeta(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}

func normalizeMeta(m map[string]any) (dag.Metadata, error) {
	out := dag.Metadata(copyMeta(m))
	if out == nil {
		return nil, nil
	}
	if v, ok := out[dag.MetaStart]; ok {
		n, err := metaUint(v)
		if err != nil {
			return nil, fmt.Errorf("meta %s: %w", dag.MetaStart, err)
		}
		out[dag.MetaStart] = n
	}
	if v, ok := out[dag.MetaDepth]; ok {
		n, err := metaUint(v)
		if err != nil || n > math.MaxInt32 {
			return nil, fmt.Errorf("meta %s: invalid depth %v", dag.MetaDepth, v)
		}
		out[dag.MetaDepth] = int(n)
	}
	return out, nil
}

// metaUint reads a non-negative integer from decoded metadata. Numbers come
// from a UseNumber decoder or from an in-memory map built by the caller.
func metaUint(v any) (uint64, error) {
	switch n := v.(type) {
	case json.Number:
		return strconv.ParseUint(n.String(), 10, 64)
	case uint64:
		return n, nil
	case int:
		if n >= 0 {
			return uint64(n), nil
		}
	case float64:
		if n >= 0 && n < 1<<53 && n == math.Trunc(n) {
			return uint64(n), nil
		}
	}
	return 0, fmt.Errorf("not a non-negative integer: %v", v)
}
