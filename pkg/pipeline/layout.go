package pipeline

import (
	"github.com/matzehuels/collatz/pkg/dag"
	"github.com/matzehuels/collatz/pkg/graph"
	"github.com/matzehuels/collatz/pkg/layout"
	"github.com/matzehuels/collatz/pkg/render/nodelink"
)

// GenerateLayout computes the serialized layout of g. g is not modified.
//
// Nodelink layouts also carry the DOT source, so rendering needs nothing
// but the layout.
func GenerateLayout(g *dag.DAG, opts Options) (graph.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, err
	}

	l := layout.Compute(g, opts.LayoutOptions()...)
	out := l.Export(g, opts.VizType)
	if opts.IsNodelink() {
		out.DOT = nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed, Levels: l.Levels})
	}

	opts.Logger.Debug("computed layout", "viz_type", opts.VizType,
		"levels", len(out.Levels), "crossings", out.Crossings)
	return out, nil
}

// levelHandles converts the levels of a serialized layout back to handles.
func levelHandles(l graph.Layout) [][]dag.NodeID {
	out := make([][]dag.NodeID, len(l.Levels))
	for i, ids := range l.Levels {
		out[i] = make([]dag.NodeID, len(ids))
		for j, id := range ids {
			out[i][j] = dag.NodeID(id)
		}
	}
	return out
}
