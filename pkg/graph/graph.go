package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/collatz/pkg/dag"
	"github.com/matzehuels/collatz/pkg/errors"
)

// MarshalGraph returns the indented JSON form of g. Nodes are listed in
// handle order, so equal graphs marshal to equal bytes.
func MarshalGraph(g *dag.DAG) ([]byte, error) {
	data, err := json.MarshalIndent(FromDAG(g), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteGraph writes the JSON form of g to w.
func WriteGraph(g *dag.DAG, w io.Writer) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteGraphFile writes the JSON form of g to path, replacing any existing file.
func WriteGraphFile(g *dag.DAG, path string) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadGraph decodes a graph written by [WriteGraph]. Malformed input is
// reported as INVALID_INPUT.
func ReadGraph(r io.Reader) (*dag.DAG, error) {
	wire, err := decodeGraph(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph")
	}
	g, err := ToDAG(wire)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph")
	}
	return g, nil
}

// ReadGraphFile decodes the graph stored at path.
func ReadGraphFile(path string) (*dag.DAG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}
