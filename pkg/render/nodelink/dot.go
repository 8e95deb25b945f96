package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/collatz/pkg/dag"
	"github.com/matzehuels/collatz/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the level and degrees to node labels.
	// When false, only the value is shown.
	Detailed bool

	// Title is drawn above the diagram. Empty uses the graph title.
	Title string

	// Levels groups node handles by level, as computed by the layout
	// engine. With two or more levels each one becomes a rank=same group.
	// Nil leaves all placement to Graphviz.
	Levels [][]dag.NodeID
}

// graphAttrs are written before any node. Node and edge styles follow the levels SVG sink.
var graphAttrs = []string{
	`rankdir=TB`,
	`bgcolor="white"`,
	`ranksep=0.6`,
	`nodesep=0.4`,
	`node [shape=circle, style=filled, fillcolor="#4682b4", color=white, penwidth=2, fontcolor=white, fontname="sans-serif", fontsize=12]`,
	`edge [color=gray, penwidth=2, arrowhead=vee]`,
}

// ToDOT writes g as a Graphviz digraph. Render the result with [RenderSVG],
// [RenderPDF] or [RenderPNG].
//
// When opts.Levels holds more than one level, each becomes a rank=same
// group, so Graphviz keeps the levels assigned by the layout engine and
// only picks the order within a level.
func ToDOT(g *dag.DAG, opts Options) string {
	var sb strings.Builder
	line := func(format string, args ...any) {
		sb.WriteString("  ")
		fmt.Fprintf(&sb, format, args...)
		sb.WriteString(";\n")
	}

	sb.WriteString("digraph G {\n")
	for _, attr := range graphAttrs {
		line("%s", attr)
	}
	title := opts.Title
	if title == "" {
		title = g.Title()
	}
	if title != "" {
		line("label=%q", title)
		line("labelloc=t")
		line("fontsize=20")
	}

	level := make(map[dag.NodeID]int, g.NodeCount())
	for i, ids := range opts.Levels {
		for _, id := range ids {
			level[id] = i
		}
	}

	sb.WriteString("\n")
	for _, n := range g.Nodes() {
		line("%s [label=%q]", nodeName(n.ID), nodeLabel(g, n, level, opts.Detailed))
	}

	if len(opts.Levels) > 1 {
		sb.WriteString("\n")
		for _, ids := range opts.Levels {
			var names []string
			for _, id := range ids {
				names = append(names, nodeName(id))
			}
			sb.WriteString("  { rank=same; " + strings.Join(names, "; ") + "; }\n")
		}
	}

	sb.WriteString("\n")
	for _, e := range g.Edges() {
		line("%s -> %s", nodeName(e.From), nodeName(e.To))
	}
	sb.WriteString("}\n")
	return sb.String()
}

func nodeName(id dag.NodeID) string { return "n" + strconv.Itoa(int(id)) }

func nodeLabel(g *dag.DAG, n dag.Node, level map[dag.NodeID]int, detailed bool) string {
	v := strconv.FormatUint(n.Value, 10)
	if !detailed {
		return v
	}
	if l, ok := level[n.ID]; ok {
		v += "\nlevel: " + strconv.Itoa(l)
	}
	return v + fmt.Sprintf("\nin: %d out: %d", g.InDegree(n.ID), g.OutDegree(n.ID))
}

// RenderSVG lays out dot with the embedded Graphviz and returns the SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-based root element with a plain
// pixel-sized one so browsers and rsvg-convert scale it the same way.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders dot to SVG and converts it with rsvg-convert.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	return convert(ctx, dot, render.ToPDF)
}

// RenderPNG is like [RenderPDF] but produces a PNG at the given scale.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	return convert(ctx, dot, func(svg []byte) ([]byte, error) { return render.ToPNG(svg, scale) })
}

func convert(ctx context.Context, dot string, to func([]byte) ([]byte, error)) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return to(svg)
}
