package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/collatz/pkg/errors"
	"github.com/matzehuels/collatz/pkg/graph"
	"github.com/matzehuels/collatz/pkg/render/nodelink"
	"github.com/matzehuels/collatz/pkg/render/sink"
)

// Render produces the requested formats from a layout. The renderer is
// chosen by the layout's viz type, not by opts.VizType, so a layout read
// back from disk renders the way it was computed.
func Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		if l.IsNodelink() {
			data, err = renderNodelink(ctx, l, format, opts)
		} else {
			data, err = renderLevels(l, format, opts)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderLevels(l graph.Layout, format string, opts Options) ([]byte, error) {
	var svgOpts []sink.SVGOption
	if opts.NodeRadius > 0 {
		svgOpts = append(svgOpts, sink.WithNodeRadius(opts.NodeRadius))
	}

	switch format {
	case FormatSVG:
		return sink.RenderSVG(l, svgOpts...), nil
	case FormatPNG:
		return sink.RenderPNG(l, opts.Scale, svgOpts...)
	case FormatPDF:
		return sink.RenderPDF(l, svgOpts...)
	case FormatJSON:
		return sink.RenderJSON(l)
	case FormatDOT:
		return dotSource(l)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
}

func renderNodelink(ctx context.Context, l graph.Layout, format string, opts Options) ([]byte, error) {
	dot, err := dotSource(l)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatSVG:
		return nodelink.RenderSVG(ctx, string(dot))
	case FormatPNG:
		return nodelink.RenderPNG(ctx, string(dot), opts.Scale)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, string(dot))
	case FormatJSON:
		return sink.RenderJSON(l)
	case FormatDOT:
		return dot, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
}

// dotSource returns the layout's DOT, generating it from the layout's
// nodes and levels when the layout was not computed for Graphviz.
func dotSource(l graph.Layout) ([]byte, error) {
	if l.DOT != "" {
		return []byte(l.DOT), nil
	}
	g, err := graph.ToDAG(l.Graph())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "rebuild graph from layout")
	}
	return []byte(nodelink.ToDOT(g, nodelink.Options{Title: l.Title, Levels: levelHandles(l)})), nil
}
