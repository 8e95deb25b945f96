package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
)

// =============================================================================
// Layout - Unified Visualization Format
// =============================================================================

// Layout is the serialization format for a positioned graph.
//
// Check VizType to determine which fields matter to a renderer:
//
//	Levels ("levels"):
//	  - Nodes carry x/y coordinates from the layered layout
//
//	Nodelink ("nodelink"):
//	  - DOT: Graphviz DOT string for rendering
//
// Shared fields (both types):
//   - Title: display heading
//   - Width, Height: frame dimensions including margins
//   - Nodes, Edges: graph structure
//   - Levels: node IDs per level, left to right
//   - Crossings: edge crossings between consecutive levels
//
// The in-memory counterpart is pkg/layout.Layout; use its Export method to
// produce one.
type Layout struct {
	// Discriminator
	VizType string `json:"viz_type"`

	Title  string  `json:"title,omitempty"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Graph structure (shared)
	Nodes     []LayoutNode `json:"nodes"`
	Edges     []Edge       `json:"edges"`
	Levels    [][]int      `json:"levels"`
	Crossings int          `json:"crossings"`

	// Nodelink-specific
	DOT string `json:"dot,omitempty"`
}

// LayoutNode is a node together with its position. Coordinates are node
// centers; y grows downward.
type LayoutNode struct {
	Node
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsLevels returns true if this is a layered layout.
func (l *Layout) IsLevels() bool { return l.VizType == VizTypeLevels }

// IsNodelink returns true if this is a nodelink layout.
func (l *Layout) IsNodelink() bool { return l.VizType == VizTypeNodelink }

// NodeByID returns the node with the given id.
func (l *Layout) NodeByID(id int) (LayoutNode, bool) {
	if id >= 0 && id < len(l.Nodes) && l.Nodes[id].ID == id {
		return l.Nodes[id], true
	}
	i := slices.IndexFunc(l.Nodes, func(n LayoutNode) bool { return n.ID == id })
	if i < 0 {
		return LayoutNode{}, false
	}
	return l.Nodes[i], true
}

// Predecessors returns the IDs of nodes with an edge into id, in edge order.
func (l *Layout) Predecessors(id int) []int {
	var out []int
	for _, e := range l.Edges {
		if e.To == id {
			out = append(out, e.From)
		}
	}
	return out
}

// Successors returns the IDs of nodes that id has an edge to, in edge order.
func (l *Layout) Successors(id int) []int {
	var out []int
	for _, e := range l.Edges {
		if e.From == id {
			out = append(out, e.To)
		}
	}
	return out
}

// Graph strips the positions and returns the underlying graph. Metadata is
// not part of a layout, so the result has none.
func (l *Layout) Graph() Graph {
	nodes := make([]Node, len(l.Nodes))
	for i, n := range l.Nodes {
		nodes[i] = n.Node
	}
	return Graph{Nodes: nodes, Edges: slices.Clone(l.Edges)}
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates that required fields are present for the viz type.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	if l.VizType == "" {
		l.VizType = VizTypeLevels
	}
	if !slices.Contains(VizTypes, l.VizType) {
		return Layout{}, fmt.Errorf("unknown viz type %q", l.VizType)
	}
	if len(l.Nodes) == 0 {
		return Layout{}, fmt.Errorf("layout must contain nodes")
	}
	if l.IsNodelink() && l.DOT == "" {
		return Layout{}, fmt.Errorf("nodelink layout must contain DOT string")
	}

	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
