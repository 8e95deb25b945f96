package sink

import (
	"github.com/matzehuels/collatz/pkg/graph"
)

// RenderJSON exports the layout as a pretty-printed JSON document in the
// [graph.Layout] wire format. The output can be read back with
// graph.UnmarshalLayout and rendered again without recomputing anything.
func RenderJSON(l graph.Layout) ([]byte, error) {
	data, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
