package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/collatz/pkg/collatz"
	"github.com/matzehuels/collatz/pkg/pipeline"
)

// graphFlags holds the flags shared by the sequence and inverse commands.
type graphFlags struct {
	output   string  // output file (single format) or base path
	formats  string  // comma-separated output formats
	vizType  string  // levels or nodelink
	detailed bool    // level and degrees in nodelink labels
	noCache  bool    // bypass the cache entirely
	refresh  bool    // recompute and overwrite cached entries
	view     bool    // open the terminal viewer
	radius   float64 // node circle radius
	hSpacing float64 // horizontal gap between nodes of a level
	vSpacing float64 // vertical gap between levels
}

func (f *graphFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): "+strings.Join(pipeline.ValidFormats, ", ")+" (comma-separated)")
	cmd.Flags().StringVarP(&f.vizType, "type", "t", "", "visualization type: levels (default), nodelink")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show level and degrees in node labels (nodelink)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results and recompute")
	cmd.Flags().BoolVar(&f.view, "view", false, "open the interactive viewer")
	cmd.Flags().Float64Var(&f.radius, "radius", 0, "node radius (default from config)")
	cmd.Flags().Float64Var(&f.hSpacing, "h-spacing", 0, "horizontal spacing between nodes (default from config)")
	cmd.Flags().Float64Var(&f.vSpacing, "v-spacing", 0, "vertical spacing between levels (default from config)")
}

// interactive reports whether the viewer opens: on --view, or when no
// output was asked for.
func (f *graphFlags) interactive() bool {
	return f.view || (f.output == "" && f.formats == "")
}

func (f *graphFlags) writes() bool {
	return f.output != "" || f.formats != ""
}

// applyFlags copies the flags into opts; unset values fall back to the config.
func (c *CLI) applyFlags(opts *pipeline.Options, f *graphFlags) {
	opts.VizType = f.vizType
	opts.Detailed = f.detailed
	opts.Refresh = f.refresh
	opts.NodeRadius = f.radius
	opts.HorizontalSpacing = f.hSpacing
	opts.VerticalSpacing = f.vSpacing
	opts.Formats = pipeline.ParseFormats(f.formats)
	if f.formats == "" {
		if ext := strings.TrimPrefix(filepath.Ext(f.output), "."); slices.Contains(pipeline.ValidFormats, ext) {
			opts.Formats = []string{ext}
		}
	}
	if !f.writes() {
		// Only the layout is needed; JSON is the cheapest artifact.
		opts.Formats = []string{pipeline.FormatJSON}
	}
	c.cfg.ApplyTo(opts)
}

func (c *CLI) sequenceCommand() *cobra.Command {
	var flags graphFlags
	cmd := &cobra.Command{
		Use:   "sequence <number>",
		Short: "Draw the Collatz sequence starting from a number",
		Long: `Draw the trajectory of a number under the Collatz map until it reaches 1.

Each value is a node and each step an edge; the layout puts one value per
level, top to bottom.`,
		Example: `  collatz sequence 27
  collatz sequence 27 -o trajectory.svg
  collatz sequence 6 -f svg,json -o out/six`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			opts := pipeline.Options{Mode: collatz.ModeSequence, Number: n}
			return c.runGraph(cmd.Context(), opts, &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) inverseCommand() *cobra.Command {
	var (
		flags graphFlags
		depth int
	)
	cmd := &cobra.Command{
		Use:   "inverse <number>",
		Short: "Draw the inverse Collatz tree leading to a number",
		Long: `Draw the numbers that reach a number under the Collatz map, expanding
predecessors (2n, and (n-1)/3 when it is an odd integer) up to a depth.
Values above 1,000,000 are not expanded.`,
		Example: `  collatz inverse 16
  collatz inverse 16 -d 8 -t nodelink -o tree.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("depth") {
				depth = c.cfg.Inverse.Depth
			}
			opts := pipeline.Options{Mode: collatz.ModeInverse, Number: n, Depth: depth}
			return c.runGraph(cmd.Context(), opts, &flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&depth, "depth", "d", collatz.DefaultDepth, "maximum tree depth (default from config)")
	return cmd
}

// runGraph executes the pipeline for opts, then writes the artifacts and/or
// opens the viewer.
func (c *CLI) runGraph(ctx context.Context, opts pipeline.Options, flags *graphFlags) error {
	logger := loggerFromContext(ctx)
	c.applyFlags(&opts, flags)
	opts.Logger = logger

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinner(ctx, "Drawing "+opts.String()+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	prog.done("Drew "+opts.String(), "nodes", result.Stats.NodeCount, "levels", result.Stats.LevelCount)

	if flags.writes() {
		paths, err := writeArtifacts(result.Artifacts, opts.Formats, basePath(flags.output, opts))
		if err != nil {
			return err
		}
		printSuccess("%s", opts.Title())
		for _, p := range paths {
			printFile(p)
		}
		printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.LevelCount, result.CacheInfo.BuildHit && result.CacheInfo.LayoutHit)
		if seq := result.Sequence; seq != nil {
			printKeyValue("steps", strconv.Itoa(seq.Steps))
			printKeyValue("peak", strconv.FormatUint(seq.Peak, 10))
		}
		if !flags.interactive() {
			printNextStep("Explore it", fmt.Sprintf("collatz %s %d --view", opts.Mode, opts.Number))
		}
	}

	if flags.interactive() {
		return runViewer(ctx, result.Layout)
	}
	return nil
}

// basePath derives the output base path, without extension. An empty
// output yields a name derived from the graph, e.g. "collatz-inverse-16-d5".
// A known format extension on output is stripped.
func basePath(output string, opts pipeline.Options) string {
	if output == "" {
		if opts.Mode == collatz.ModeInverse {
			return fmt.Sprintf("collatz-%s-%d-d%d", opts.Mode, opts.Number, opts.Depth)
		}
		return fmt.Sprintf("collatz-%s-%d", opts.Mode, opts.Number)
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.ValidFormats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifacts writes one file per format to base.format, in the order
// the formats were requested, and returns the paths written.
func writeArtifacts(artifacts map[string][]byte, formats []string, base string) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			return paths, fmt.Errorf("no %s output was rendered", format)
		}
		path := base + "." + format
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
