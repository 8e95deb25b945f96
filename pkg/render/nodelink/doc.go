// Package nodelink renders Collatz graphs as Graphviz node-link diagrams.
//
// # Overview
//
// This is the alternative to the layered drawing in the sink package: the
// levels still come from the layout engine, but Graphviz picks the order
// within each level and routes the edges.
//
// # Usage
//
// Compute the levels first, then convert and render:
//
//	l := layout.Compute(g)
//	dot := nodelink.ToDOT(g, nodelink.Options{Levels: l.Levels})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
