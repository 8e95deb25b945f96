// Package layout places the nodes of a Collatz graph on a layered grid.
//
// Nodes are grouped into levels by [transform.AssignLevels]. The graph is
// only read; levels are returned in [Layout.Levels]. Each level
// becomes a horizontal row: its y coordinate grows with the level index and
// its nodes are spread evenly, centered on a fixed anchor. The result is
// fully determined by the graph, so rendering the same graph twice yields
// identical coordinates.
//
//	l := layout.Compute(g)
//	for id, p := range l.Positions {
//		fmt.Println(id, p.X, p.Y)
//	}
package layout

import (
	"github.com/matzehuels/collatz/pkg/dag"
	"github.com/matzehuels/collatz/pkg/dag/transform"
)

// Defaults match the spacing and origin of the desktop viewer the layout
// was first drawn in.
const (
	DefaultHorizontalSpacing = 120.0
	DefaultVerticalSpacing   = 80.0
	DefaultAnchorX           = 400.0
	DefaultBaselineY         = 100.0
)

// Position is the center of a node in layout coordinates. Y grows downward.
type Position struct {
	X, Y float64
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Options controls spacing and placement.
type Options struct {
	HorizontalSpacing float64 // Distance between neighbours in a level
	VerticalSpacing   float64 // Distance between consecutive levels
	AnchorX           float64 // Every level is centered on this x
	BaselineY         float64 // y of level 0
}

// DefaultOptions returns the default spacing and origin.
func DefaultOptions() Options {
	return Options{
		HorizontalSpacing: DefaultHorizontalSpacing,
		VerticalSpacing:   DefaultVerticalSpacing,
		AnchorX:           DefaultAnchorX,
		BaselineY:         DefaultBaselineY,
	}
}

// Option configures Compute.
type Option func(*Options)

// WithSpacing sets the horizontal and vertical spacing. Non-positive values
// keep the current setting.
func WithSpacing(h, v float64) Option {
	return func(o *Options) {
		if h > 0 {
			o.HorizontalSpacing = h
		}
		if v > 0 {
			o.VerticalSpacing = v
		}
	}
}

// WithOrigin sets the horizontal anchor and the y of the first level.
func WithOrigin(x, y float64) Option {
	return func(o *Options) {
		o.AnchorX = x
		o.BaselineY = y
	}
}

// WithOptions replaces all settings at once.
func WithOptions(opts Options) Option {
	return func(o *Options) { *o = opts }
}

// Layout is the computed placement of a graph.
type Layout struct {
	Positions map[dag.NodeID]Position
	Levels    [][]dag.NodeID // Handles per level, left to right
	Crossings int            // Edge crossings between consecutive levels
	Options   Options
}

// Compute assigns levels and coordinates to every node of g.
//
// Level i is drawn at y = BaselineY + i×VerticalSpacing. A level holding
// count nodes starts at AnchorX − (count−1)×HorizontalSpacing/2 and places
// its nodes HorizontalSpacing apart in discovery order. g is not modified;
// the levels live only in the returned Layout.
func Compute(g *dag.DAG, opts ...Option) Layout {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	levels := transform.AssignLevels(g)
	positions := make(map[dag.NodeID]Position, g.NodeCount())
	for level, ids := range levels {
		y := o.BaselineY + float64(level)*o.VerticalSpacing
		start := o.AnchorX - float64(len(ids)-1)*o.HorizontalSpacing/2
		for i, id := range ids {
			positions[id] = Position{X: start + float64(i)*o.HorizontalSpacing, Y: y}
		}
	}

	return Layout{
		Positions: positions,
		Levels:    levels,
		Crossings: dag.CountCrossings(g, levels),
		Options:   o,
	}
}

// Position returns the placement of id and whether it was laid out.
func (l Layout) Position(id dag.NodeID) (Position, bool) {
	p, ok := l.Positions[id]
	return p, ok
}

// Level returns the level index of id, or -1 if it is not part of the layout.
func (l Layout) Level(id dag.NodeID) int {
	for i, ids := range l.Levels {
		for _, other := range ids {
			if other == id {
				return i
			}
		}
	}
	return -1
}

// Bounds returns the box spanned by all node centers. An empty layout
// yields a zero Rect at the origin.
func (l Layout) Bounds() Rect {
	first := true
	var r Rect
	for _, p := range l.Positions {
		if first {
			r = Rect{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
			first = false
			continue
		}
		r.MinX = min(r.MinX, p.X)
		r.MinY = min(r.MinY, p.Y)
		r.MaxX = max(r.MaxX, p.X)
		r.MaxY = max(r.MaxY, p.Y)
	}
	return r
}
