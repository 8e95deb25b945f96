// Package sink writes computed layouts to output formats.
//
// [RenderSVG] draws the layered layout directly: every node at the
// coordinates the layout engine assigned, edges as arrows from predecessor
// to successor. [RenderPDF] and [RenderPNG] convert that SVG with
// rsvg-convert, and [RenderJSON] emits the serialized layout itself.
//
// Sinks only read the layout. They never rebuild the graph or move nodes.
//
//	l := layout.Compute(g).Export(g, graph.VizTypeLevels)
//	svg := sink.RenderSVG(l, sink.WithNodeRadius(18))
package sink
