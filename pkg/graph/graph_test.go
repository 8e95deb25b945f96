package graph

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/collatz/pkg/dag"
)

func chain(values ...uint64) *dag.DAG {
	g := dag.New(dag.Metadata{dag.MetaTitle: "test", dag.MetaStart: values[0]})
	for _, v := range values {
		g.AddNode(v)
	}
	for i := 0; i+1 < len(values); i++ {
		_ = g.AddEdge(dag.Edge{From: dag.NodeID(i), To: dag.NodeID(i + 1)})
	}
	return g
}

func TestMarshalGraph(t *testing.T) {
	tests := []struct {
		name      string
		build     func() *dag.DAG
		wantNodes int
		wantEdges int
		check     func(t *testing.T, g Graph)
	}{
		{
			name:      "Empty",
			build:     func() *dag.DAG { return dag.New(nil) },
			wantNodes: 0,
			wantEdges: 0,
			check: func(t *testing.T, g Graph) {
				if g.Meta != nil {
					t.Errorf("meta = %v, want omitted", g.Meta)
				}
			},
		},
		{
			name:      "Chain",
			build:     func() *dag.DAG { return chain(4, 2, 1) },
			wantNodes: 3,
			wantEdges: 2,
			check: func(t *testing.T, g Graph) {
				if g.Nodes[1].ID != 1 || g.Nodes[1].Value != 2 {
					t.Errorf("node 1 = %+v", g.Nodes[1])
				}
				if g.Edges[1] != (Edge{From: 1, To: 2}) {
					t.Errorf("edge 1 = %+v", g.Edges[1])
				}
			},
		},
		{
			name: "PreservesMetadata",
			build: func() *dag.DAG {
				return dag.New(dag.Metadata{dag.MetaTitle: "Collatz Sequence starting from 1"})
			},
			check: func(t *testing.T, g Graph) {
				if g.Meta["title"] != "Collatz Sequence starting from 1" {
					t.Errorf("title = %v", g.Meta["title"])
				}
			},
		},
		{
			name: "ParallelEdges",
			build: func() *dag.DAG {
				g := chain(2, 1)
				_ = g.AddEdge(dag.Edge{From: 0, To: 1})
				return g
			},
			wantNodes: 2,
			wantEdges: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalGraph(tt.build())
			if err != nil {
				t.Fatalf("MarshalGraph: %v", err)
			}

			var result Graph
			if err := json.Unmarshal(data, &result); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if got := len(result.Nodes); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := len(result.Edges); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
			if tt.check != nil {
				tt.check(t, result)
			}
		})
	}
}

func TestReadGraph(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNodes int
		wantEdges int
		wantErr   bool
		check     func(t *testing.T, g *dag.DAG)
	}{
		{
			name: "Valid",
			input: `{
				"meta": {"title": "t", "start": 16, "depth": 1},
				"nodes": [
					{"id": 0, "value": 16, "row": 1},
					{"id": 1, "value": 32}
				],
				"edges": [
					{"from": 1, "to": 0}
				]
			}`,
			wantNodes: 2,
			wantEdges: 1,
			check: func(t *testing.T, g *dag.DAG) {
				n, ok := g.Node(0)
				if !ok || n.Value != 16 || n.Row != 1 {
					t.Errorf("node 0 = %+v", n)
				}
				if g.Meta()[dag.MetaStart] != uint64(16) {
					t.Errorf("start = %#v, want uint64(16)", g.Meta()[dag.MetaStart])
				}
				if g.Meta()[dag.MetaDepth] != 1 {
					t.Errorf("depth = %#v, want 1", g.Meta()[dag.MetaDepth])
				}
			},
		},
		{
			name:      "Empty",
			input:     `{"nodes": [], "edges": []}`,
			wantNodes: 0,
			wantEdges: 0,
		},
		{
			name:    "Invalid",
			input:   `{invalid json}`,
			wantErr: true,
		},
		{
			name:    "SparseIDs",
			input:   `{"nodes": [{"id": 3, "value": 1}], "edges": []}`,
			wantErr: true,
		},
		{
			name:    "NegativeStart",
			input:   `{"meta": {"start": -4}, "nodes": [], "edges": []}`,
			wantErr: true,
		},
		{
			name:    "FractionalDepth",
			input:   `{"meta": {"depth": 1.5}, "nodes": [], "edges": []}`,
			wantErr: true,
		},
		{
			name:    "DanglingEdge",
			input:   `{"nodes": [{"id": 0, "value": 1}], "edges": [{"from": 0, "to": 5}]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ReadGraph(strings.NewReader(tt.input))

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadGraph: %v", err)
			}

			if got := g.NodeCount(); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := g.EdgeCount(); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
			if tt.check != nil {
				tt.check(t, g)
			}
		})
	}
}

func TestGraphRoundTrip(t *testing.T) {
	g := chain(6, 3, 10, 5, 16, 8, 4, 2, 1)

	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}
	back, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}

	if back.NodeCount() != g.NodeCount() || back.EdgeCount() != g.EdgeCount() {
		t.Fatalf("got %d/%d, want %d/%d", back.NodeCount(), back.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}
	for i, e := range g.Edges() {
		if back.Edges()[i] != e {
			t.Errorf("edge %d = %+v, want %+v", i, back.Edges()[i], e)
		}
	}
	if back.Title() != "test" {
		t.Errorf("Title() = %q", back.Title())
	}
}

func TestGraphRoundTripLargeStart(t *testing.T) {
	tests := []struct {
		name  string
		start uint64
	}{
		{"AboveFloatPrecision", 1<<53 + 1},
		{"MaxUint64", 18446744073709551615},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := chain(tt.start)
			g.Meta()[dag.MetaDepth] = 7

			data, err := MarshalGraph(g)
			if err != nil {
				t.Fatalf("MarshalGraph: %v", err)
			}
			back, err := ReadGraph(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("ReadGraph: %v", err)
			}
			if got := back.Meta()[dag.MetaStart]; got != tt.start {
				t.Errorf("start = %#v, want %d", got, tt.start)
			}
			if got := back.Meta()[dag.MetaDepth]; got != 7 {
				t.Errorf("depth = %#v, want 7", got)
			}

			again, err := MarshalGraph(back)
			if err != nil {
				t.Fatalf("MarshalGraph: %v", err)
			}
			if !bytes.Equal(data, again) {
				t.Errorf("re-encoded graph differs:\n%s\n%s", data, again)
			}

			parsed, err := UnmarshalGraph(data)
			if err != nil {
				t.Fatalf("UnmarshalGraph: %v", err)
			}
			if _, err := ToDAG(parsed); err != nil {
				t.Fatalf("ToDAG: %v", err)
			}
		})
	}
}

func TestReadGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteGraphFile(chain(2, 1), path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}

	g, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if g.NodeCount() != 2 {
		t.Errorf("nodes = %d, want 2", g.NodeCount())
	}
}

func TestReadGraphFileNotFound(t *testing.T) {
	if _, err := ReadGraphFile("nonexistent.json"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestUnmarshalLayout(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, l Layout)
	}{
		{
			name:  "DefaultsToLevels",
			input: `{"nodes": [{"id": 0, "value": 1, "row": 0, "x": 400, "y": 100}], "edges": []}`,
			check: func(t *testing.T, l Layout) {
				if !l.IsLevels() {
					t.Errorf("VizType = %q", l.VizType)
				}
				if l.Nodes[0].X != 400 || l.Nodes[0].Value != 1 {
					t.Errorf("node = %+v", l.Nodes[0])
				}
			},
		},
		{
			name:    "NoNodes",
			input:   `{"viz_type": "levels", "nodes": []}`,
			wantErr: true,
		},
		{
			name:    "NodelinkWithoutDOT",
			input:   `{"viz_type": "nodelink", "nodes": [{"id": 0, "value": 1}]}`,
			wantErr: true,
		},
		{
			name:    "UnknownVizType",
			input:   `{"viz_type": "tower", "nodes": [{"id": 0, "value": 1}]}`,
			wantErr: true,
		},
		{
			name:    "Malformed",
			input:   `[`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := UnmarshalLayout([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalLayout: %v", err)
			}
			if tt.check != nil {
				tt.check(t, l)
			}
		})
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	l := Layout{
		VizType: VizTypeLevels,
		Title:   "Inverse Collatz Tree leading to 16 (depth: 1)",
		Nodes: []LayoutNode{
			{Node: Node{ID: 0, Value: 16, Row: 1}, X: 400, Y: 180},
			{Node: Node{ID: 1, Value: 32}, X: 340, Y: 100},
			{Node: Node{ID: 2, Value: 5}, X: 460, Y: 100},
		},
		Edges:  []Edge{{From: 1, To: 0}, {From: 2, To: 0}},
		Levels: [][]int{{1, 2}, {0}},
	}

	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if got.Title != l.Title || len(got.Nodes) != 3 || got.Nodes[2].X != 460 {
		t.Errorf("round trip = %+v", got)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("stat: %v", err)
	}
}

func TestLayoutAdjacency(t *testing.T) {
	l := Layout{
		Nodes: []LayoutNode{
			{Node: Node{ID: 0, Value: 16}},
			{Node: Node{ID: 1, Value: 32}},
			{Node: Node{ID: 2, Value: 5}},
		},
		Edges: []Edge{{From: 1, To: 0}, {From: 2, To: 0}},
	}

	if got := l.Predecessors(0); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Predecessors(0) = %v", got)
	}
	if got := l.Successors(2); len(got) != 1 || got[0] != 0 {
		t.Errorf("Successors(2) = %v", got)
	}
	if n, ok := l.NodeByID(2); !ok || n.Value != 5 {
		t.Errorf("NodeByID(2) = %+v, %v", n, ok)
	}
	if _, ok := l.NodeByID(7); ok {
		t.Error("NodeByID(7) should not be found")
	}
	if got := l.Nodes[1].Label(); got != "32" {
		t.Errorf("Label() = %q", got)
	}
}

func TestLayoutGraph(t *testing.T) {
	l := Layout{
		Nodes: []LayoutNode{
			{Node: Node{ID: 0, Value: 2, Row: 0}, X: 400, Y: 100},
			{Node: Node{ID: 1, Value: 1, Row: 1}, X: 400, Y: 180},
		},
		Edges: []Edge{{From: 0, To: 1}},
	}

	g, err := ToDAG(l.Graph())
	if err != nil {
		t.Fatalf("ToDAG: %v", err)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Fatalf("got %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
	if n, _ := g.Node(1); n.Row != 1 {
		t.Errorf("row of node 1 = %d, want 1", n.Row)
	}
}
