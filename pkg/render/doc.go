// Package render provides visualization output for Collatz graphs.
//
// # Overview
//
// This package holds the format conversion shared by all renderers:
//
//   - Layered drawings of a computed layout (in [sink] subpackage)
//   - Node-link diagrams laid out by Graphviz (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). A missing binary is
// reported as an UNSUPPORTED error; use [Available] to check up front.
//
//	svg := sink.RenderSVG(layout)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [sink]: github.com/matzehuels/collatz/pkg/render/sink
// [nodelink]: github.com/matzehuels/collatz/pkg/render/nodelink
package render
