package pipeline

import (
	"github.com/matzehuels/collatz/pkg/collatz"
	"github.com/matzehuels/collatz/pkg/dag"
)

// Build generates the graph described by opts without caching.
func Build(opts Options) (*dag.DAG, error) {
	if err := opts.ValidateForBuild(); err != nil {
		return nil, err
	}

	var (
		g   *dag.DAG
		err error
	)
	switch opts.Mode {
	case collatz.ModeInverse:
		g, _, err = collatz.InverseTree(opts.Number, opts.Depth)
	default:
		g, _, err = collatz.SequenceGraph(opts.Number)
	}
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("built graph", "mode", opts.Mode, "start", opts.Number,
		"nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, nil
}
