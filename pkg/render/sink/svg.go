package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/matzehuels/collatz/pkg/graph"
)

// Default drawing parameters.
const (
	DefaultNodeRadius = 15.0
	DefaultMargin     = 60.0

	titleHeight  = 40.0
	arrowSize    = 8.0
	edgeWidth    = 2.0
	outlineWidth = 2.0
	labelSize    = 12.0
	titleSize    = 20.0

	nodeFill  = "rgb(70,130,180)"
	edgeColor = "rgb(160,160,160)"
)

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	radius    float64
	margin    float64
	showTitle bool
	highlight map[int]bool
}

// WithNodeRadius sets the circle radius. Non-positive values keep the default.
func WithNodeRadius(r float64) SVGOption {
	return func(s *svgRenderer) {
		if r > 0 {
			s.radius = r
		}
	}
}

// WithMargin sets the empty space around the outermost nodes.
func WithMargin(m float64) SVGOption {
	return func(s *svgRenderer) {
		if m >= 0 {
			s.margin = m
		}
	}
}

// WithoutTitle omits the heading above the graph.
func WithoutTitle() SVGOption { return func(s *svgRenderer) { s.showTitle = false } }

// WithHighlight outlines the given node IDs in a contrasting color.
func WithHighlight(ids ...int) SVGOption {
	return func(s *svgRenderer) {
		for _, id := range ids {
			s.highlight[id] = true
		}
	}
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		radius:    DefaultNodeRadius,
		margin:    DefaultMargin,
		showTitle: true,
		highlight: map[int]bool{},
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws a layered layout as a standalone SVG document.
//
// Edges are gray lines with an open arrowhead stopping at the target's
// outline. Nodes are steel blue circles with a white outline and their
// value in white. The viewBox covers every node plus the margin, and the
// title (if any) sits in a band above.
func RenderSVG(l graph.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	minX, minY, maxX, maxY := nodeBounds(l)
	pad := r.margin + r.radius
	top := minY - pad
	if r.showTitle && l.Title != "" {
		top -= titleHeight
	}
	left := minX - pad
	width := maxX - minX + 2*pad
	height := maxY + pad - top

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		left, top, width, height, width, height)
	fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="white"/>`+"\n", left, top, width, height)

	if r.showTitle && l.Title != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="%.0f" font-weight="bold" text-anchor="middle">%s</text>`+"\n",
			left+width/2, top+titleHeight*0.7, titleSize, escape(l.Title))
	}

	buf.WriteString(`  <g class="edges">` + "\n")
	for _, e := range l.Edges {
		from, okF := l.NodeByID(e.From)
		to, okT := l.NodeByID(e.To)
		if !okF || !okT {
			continue
		}
		renderEdge(&buf, from, to, r.radius)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, n := range l.Nodes {
		renderNode(&buf, n, r.radius, r.highlight[n.ID])
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func nodeBounds(l graph.Layout) (minX, minY, maxX, maxY float64) {
	for i, n := range l.Nodes {
		if i == 0 {
			minX, maxX, minY, maxY = n.X, n.X, n.Y, n.Y
			continue
		}
		minX = min(minX, n.X)
		maxX = max(maxX, n.X)
		minY = min(minY, n.Y)
		maxY = max(maxY, n.Y)
	}
	return
}

func renderEdge(buf *bytes.Buffer, from, to graph.LayoutNode, radius float64) {
	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length

	fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.0f"/>`+"\n",
		from.X, from.Y, to.X, to.Y, edgeColor, edgeWidth)

	// Arrowhead tip on the target outline
	tipX, tipY := to.X-ux*radius, to.Y-uy*radius
	px, py := -uy, ux
	backX, backY := tipX-ux*arrowSize, tipY-uy*arrowSize
	half := arrowSize * 0.5
	fmt.Fprintf(buf, `    <polyline points="%.1f,%.1f %.1f,%.1f %.1f,%.1f" fill="none" stroke="%s" stroke-width="%.0f"/>`+"\n",
		backX+px*half, backY+py*half, tipX, tipY, backX-px*half, backY-py*half, edgeColor, edgeWidth)
}

func renderNode(buf *bytes.Buffer, n graph.LayoutNode, radius float64, highlight bool) {
	stroke := "white"
	if highlight {
		stroke = "orange"
	}
	fmt.Fprintf(buf, `    <circle id="node-%d" cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="%s" stroke-width="%.0f"/>`+"\n",
		n.ID, n.X, n.Y, radius, nodeFill, stroke, outlineWidth)
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="%.0f" fill="white" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
		n.X, n.Y, labelSize, escape(n.Label()))
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
