package sink

import (
	"github.com/matzehuels/collatz/pkg/graph"
	"github.com/matzehuels/collatz/pkg/render"
)

// RenderPNG rasterizes the SVG drawing of l. A scale of 2 doubles the
// pixel size of the frame; non-positive scales render at 1x.
func RenderPNG(l graph.Layout, scale float64, opts ...SVGOption) ([]byte, error) {
	return render.ToPNG(RenderSVG(l, opts...), scale)
}

// RenderPDF converts the SVG drawing of l to a one-page PDF.
func RenderPDF(l graph.Layout, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(RenderSVG(l, opts...))
}
