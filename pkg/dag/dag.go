package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From handle
	// does not refer to a node in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To handle
	// does not refer to a node in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrDuplicateValue is returned by [DAG.Validate] when two handles carry
	// the same value. Builders keep a value index to prevent this.
	ErrDuplicateValue = errors.New("duplicate node value")

	// ErrInvalidEdgeEndpoint is returned by [DAG.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	// Inverse trees rooted at 1, 2 or 4 legitimately contain the 1→4→2→1
	// loop, so callers decide whether this is fatal.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to the graph, such as
// the display title and the build parameters.
type Metadata map[string]any

// Well-known graph metadata keys.
const (
	MetaTitle = "title"
	MetaMode  = "mode"
	MetaStart = "start"
	MetaDepth = "depth"
)

// NodeID is an opaque handle for a node. Handles are assigned densely from
// zero in creation order and are only meaningful within the graph that
// issued them.
type NodeID int

// Node is a vertex carrying a Collatz value. Row holds the level assigned
// by layering (0 = top) and is zero until [DAG.SetRows] runs.
type Node struct {
	ID    NodeID
	Value uint64
	Row   int
}

// Edge is a directed connection between two handles. Edges carry no payload
// and parallel edges are allowed.
type Edge struct {
	From NodeID
	To   NodeID
}

// DAG is an arena of nodes addressed by [NodeID] handles with insertion
// ordered adjacency lists. Edges reference handles only, never node pointers.
//
// The zero value is not usable - use New to create a valid instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    []Node
	edges    []Edge
	outgoing [][]NodeID // handle -> successor handles
	incoming [][]NodeID // handle -> predecessor handles
	rows     map[int][]NodeID
	meta     Metadata
}

// New creates an empty graph with optional graph-level metadata.
// The metadata parameter can be nil, in which case an empty map is created.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		rows: make(map[int][]NodeID),
		meta: meta,
	}
}

// Meta returns the graph-level metadata map.
// The returned map is never nil and can be safely modified.
func (d *DAG) Meta() Metadata { return d.meta }

// Title returns the display title stored in the metadata, or "" if unset.
func (d *DAG) Title() string {
	t, _ := d.meta[MetaTitle].(string)
	return t
}

// AddNode appends a node carrying value and returns its handle. The arena
// does not deduplicate; builders own the value index.
func (d *DAG) AddNode(value uint64) NodeID {
	id := NodeID(len(d.nodes))
	d.nodes = append(d.nodes, Node{ID: id, Value: value})
	d.outgoing = append(d.outgoing, nil)
	d.incoming = append(d.incoming, nil)
	d.rows[0] = append(d.rows[0], id)
	return id
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode if the From handle is out of range, or
// ErrUnknownTargetNode if the To handle is. Parallel edges are recorded
// every time.
func (d *DAG) AddEdge(e Edge) error {
	if !d.has(e.From) {
		return ErrUnknownSourceNode
	}
	if !d.has(e.To) {
		return ErrUnknownTargetNode
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

func (d *DAG) has(id NodeID) bool { return id >= 0 && int(id) < len(d.nodes) }

// SetRows updates the row assignments for nodes and rebuilds the row index.
// Nodes not present in the rows map retain their current row assignment.
// Within a row, handles are indexed in creation order.
func (d *DAG) SetRows(rows map[NodeID]int) {
	d.rows = make(map[int][]NodeID)
	for i := range d.nodes {
		n := &d.nodes[i]
		if r, ok := rows[n.ID]; ok {
			n.Row = r
		}
		d.rows[n.Row] = append(d.rows[n.Row], n.ID)
	}
}

// Nodes returns all nodes in creation order.
// The returned slice is a copy; modifying it does not affect the graph.
func (d *DAG) Nodes() []Node { return slices.Clone(d.nodes) }

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Node returns the node with the given handle and true, or the zero Node
// and false if the handle is out of range.
func (d *DAG) Node(id NodeID) (Node, bool) {
	if !d.has(id) {
		return Node{}, false
	}
	return d.nodes[id], true
}

// Value returns the value carried by id, or 0 and false for unknown handles.
func (d *DAG) Value(id NodeID) (uint64, bool) {
	n, ok := d.Node(id)
	return n.Value, ok
}

// Children returns the handles this node has edges to, in insertion order.
// Parallel edges yield repeated handles. The returned slice should not be
// modified.
func (d *DAG) Children(id NodeID) []NodeID {
	if !d.has(id) {
		return nil
	}
	return d.outgoing[id]
}

// Parents returns the handles with edges to this node, in insertion order.
// The returned slice should not be modified.
func (d *DAG) Parents(id NodeID) []NodeID {
	if !d.has(id) {
		return nil
	}
	return d.incoming[id]
}

// OutDegree returns the number of outgoing edges from the node.
// Returns 0 if the node doesn't exist.
func (d *DAG) OutDegree(id NodeID) int { return len(d.Children(id)) }

// InDegree returns the number of incoming edges to the node.
// Returns 0 if the node doesn't exist.
func (d *DAG) InDegree(id NodeID) int { return len(d.Parents(id)) }

// NodesInRow returns the handles assigned to the given row in creation order.
func (d *DAG) NodesInRow(row int) []NodeID { return d.rows[row] }

// RowCount returns the number of distinct rows (layers) in the graph.
func (d *DAG) RowCount() int { return len(d.rows) }

// RowIDs returns all row indices in sorted ascending order.
func (d *DAG) RowIDs() []int {
	return slices.Sorted(maps.Keys(d.rows))
}

// MaxRow returns the highest row index, or 0 if the graph is empty.
func (d *DAG) MaxRow() int {
	if len(d.rows) == 0 {
		return 0
	}
	rowIDs := d.RowIDs()
	return rowIDs[len(rowIDs)-1]
}

// Sources returns the handles of nodes with no incoming edges, in creation
// order. In an inverse tree these are the deepest predecessors; in a
// sequence graph it is the starting value.
func (d *DAG) Sources() []NodeID {
	var sources []NodeID
	for i := range d.nodes {
		if len(d.incoming[i]) == 0 {
			sources = append(sources, NodeID(i))
		}
	}
	return sources
}

// Sinks returns the handles of nodes with no outgoing edges, in creation order.
func (d *DAG) Sinks() []NodeID {
	var sinks []NodeID
	for i := range d.nodes {
		if len(d.outgoing[i]) == 0 {
			sinks = append(sinks, NodeID(i))
		}
	}
	return sinks
}

// Validate checks graph integrity and returns nil if valid.
// It verifies three constraints:
//
//  1. All edges connect existing nodes
//  2. No two nodes carry the same value
//  3. The graph is acyclic
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (d *DAG) Validate() error {
	if err := d.validateEdgeConsistency(); err != nil {
		return err
	}
	if err := d.validateValues(); err != nil {
		return err
	}
	return d.detectCycles()
}

func (d *DAG) validateEdgeConsistency() error {
	for _, e := range d.edges {
		if !d.has(e.From) || !d.has(e.To) {
			return ErrInvalidEdgeEndpoint
		}
	}
	return nil
}

func (d *DAG) validateValues() error {
	seen := make(map[uint64]struct{}, len(d.nodes))
	for _, n := range d.nodes {
		if _, dup := seen[n.Value]; dup {
			return ErrDuplicateValue
		}
		seen[n.Value] = struct{}{}
	}
	return nil
}

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id NodeID)
	dfs = func(id NodeID) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for i := range d.nodes {
		if color[i] == white {
			dfs(NodeID(i))
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// PosMap creates a position lookup map from a slice of handles.
// The returned map maps each handle to its index in the slice.
func PosMap(ids []NodeID) map[NodeID]int {
	m := make(map[NodeID]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// Values extracts the value of each handle in ids, preserving order.
// Unknown handles map to 0.
func (d *DAG) Values(ids []NodeID) []uint64 {
	vals := make([]uint64, len(ids))
	for i, id := range ids {
		vals[i], _ = d.Value(id)
	}
	return vals
}
