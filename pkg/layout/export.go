package layout

import (
	"github.com/matzehuels/collatz/pkg/dag"
	"github.com/matzehuels/collatz/pkg/graph"
)

// Margin is the space kept around the outermost node centers when the
// frame size is computed.
const Margin = 60.0

// Export converts the layout of g into its serialized form. Each node's row
// is its level in l. The frame size is the node bounding box plus Margin on
// every side.
func (l Layout) Export(g *dag.DAG, vizType string) graph.Layout {
	if vizType == "" {
		vizType = graph.VizTypeLevels
	}

	b := l.Bounds()
	out := graph.Layout{
		VizType:   vizType,
		Title:     g.Title(),
		Width:     b.Width() + 2*Margin,
		Height:    b.Height() + 2*Margin,
		Crossings: l.Crossings,
	}

	wire := graph.FromDAG(g)
	out.Edges = wire.Edges
	out.Levels = make([][]int, len(l.Levels))
	row := make(map[int]int, len(wire.Nodes))
	for i, ids := range l.Levels {
		out.Levels[i] = make([]int, len(ids))
		for j, id := range ids {
			out.Levels[i][j] = int(id)
			row[int(id)] = i
		}
	}

	out.Nodes = make([]graph.LayoutNode, len(wire.Nodes))
	for i, n := range wire.Nodes {
		n.Row = row[n.ID]
		p := l.Positions[dag.NodeID(n.ID)]
		out.Nodes[i] = graph.LayoutNode{Node: n, X: p.X, Y: p.Y}
	}
	return out
}
