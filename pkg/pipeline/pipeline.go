// Package pipeline runs the build → layout → render sequence shared by the
// CLI and the HTTP server.
//
// # Stages
//
//  1. Build: generate a Collatz sequence graph or an inverse tree
//  2. Layout: assign levels and coordinates
//  3. Render: produce SVG, PNG, PDF, JSON or DOT output
//
// Each stage can run on its own. A [Runner] wraps the stages with caching,
// logging and observability hooks.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Mode:    collatz.ModeInverse,
//	    Number:  16,
//	    Depth:   5,
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/collatz/pkg/cache"
	"github.com/matzehuels/collatz/pkg/collatz"
	"github.com/matzehuels/collatz/pkg/dag"
	"github.com/matzehuels/collatz/pkg/errors"
	"github.com/matzehuels/collatz/pkg/graph"
	"github.com/matzehuels/collatz/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultVizType is the default visualization type.
	DefaultVizType = graph.VizTypeLevels

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatDOT}

// ValidModes lists the supported build modes.
var ValidModes = []string{collatz.ModeSequence, collatz.ModeInverse}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. It supports JSON for API use.
type Options struct {
	// Build options
	Mode    string `json:"mode"`
	Number  uint64 `json:"number"`
	Depth   int    `json:"depth,omitempty"` // Inverse mode only; used as given
	Refresh bool   `json:"refresh,omitempty"`

	// Layout options. Non-positive spacings and a nil origin select the
	// layout defaults. Origin is the anchor x and the y of level 0.
	VizType           string           `json:"viz_type,omitempty"`
	HorizontalSpacing float64          `json:"horizontal_spacing,omitempty"`
	VerticalSpacing   float64          `json:"vertical_spacing,omitempty"`
	Origin            *layout.Position `json:"origin,omitempty"`
	Detailed          bool             `json:"detailed,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	NodeRadius float64  `json:"node_radius,omitempty"`
	Scale      float64  `json:"scale,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result holds the outputs of a pipeline run.
type Result struct {
	Graph     *dag.DAG
	GraphHash string
	Layout    graph.Layout
	Artifacts map[string][]byte

	// Sequence summarizes the trajectory in sequence mode; nil otherwise.
	Sequence *collatz.Stats

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LevelCount int
	Crossings  int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	BuildHit  bool
	LayoutHit bool
	RenderHit bool // All requested artifacts were cached
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateMode checks that mode is a known build mode.
func ValidateMode(mode string) error {
	if !slices.Contains(ValidModes, mode) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid mode %q (must be one of: %s)", mode, strings.Join(ValidModes, ", "))
	}
	return nil
}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// ValidateFormats checks every format in formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that vizType is supported.
func ValidateVizType(vizType string) error {
	if !slices.Contains(graph.VizTypes, vizType) {
		return errors.New(errors.ErrCodeInvalidVizType, "invalid viz type %q (must be one of: %s)", vizType, strings.Join(graph.VizTypes, ", "))
	}
	return nil
}

// ParseFormats splits a comma-separated format list, trimming blanks and
// dropping duplicates.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateForBuild checks the build options.
func (o *Options) ValidateForBuild() error {
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	if o.Number == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "starting value must be positive, got 0")
	}
	if o.Mode == collatz.ModeInverse && o.Depth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "depth must not be negative, got %d", o.Depth)
	}
	o.setLogger()
	return nil
}

// SetLayoutDefaults fills unset layout options.
func (o *Options) SetLayoutDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if o.HorizontalSpacing <= 0 {
		o.HorizontalSpacing = layout.DefaultHorizontalSpacing
	}
	if o.VerticalSpacing <= 0 {
		o.VerticalSpacing = layout.DefaultVerticalSpacing
	}
	if o.Origin == nil {
		o.Origin = &layout.Position{X: layout.DefaultAnchorX, Y: layout.DefaultBaselineY}
	}
	o.setLogger()
}

// ValidateForLayout applies layout defaults and validates the result.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return ValidateVizType(o.VizType)
}

// SetRenderDefaults fills unset render options.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender applies render defaults and validates the formats.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// Validate checks the options of a full run and applies all defaults.
func (o *Options) Validate() error {
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// IsNodelink reports whether the Graphviz renderer is selected.
func (o *Options) IsNodelink() bool { return o.VizType == graph.VizTypeNodelink }

// Title returns the heading for the graph the options describe.
func (o *Options) Title() string {
	if o.Mode == collatz.ModeInverse {
		return collatz.InverseTitle(o.Number, o.Depth)
	}
	return collatz.SequenceTitle(o.Number)
}

// GraphKeyOpts returns cache key options for the build stage.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	if o.Mode != collatz.ModeInverse {
		return cache.GraphKeyOpts{}
	}
	return cache.GraphKeyOpts{Depth: o.Depth}
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		VizType:           o.VizType,
		HorizontalSpacing: o.HorizontalSpacing,
		VerticalSpacing:   o.VerticalSpacing,
		AnchorX:           o.origin().X,
		BaselineY:         o.origin().Y,
		Detailed:          o.IsNodelink() && o.Detailed,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, VizType: o.VizType}
	if !o.IsNodelink() && format != FormatJSON && format != FormatDOT {
		k.NodeRadius = o.NodeRadius
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

// LayoutOptions converts the options for [layout.Compute].
func (o *Options) LayoutOptions() []layout.Option {
	return []layout.Option{
		layout.WithSpacing(o.HorizontalSpacing, o.VerticalSpacing),
		layout.WithOrigin(o.origin().X, o.origin().Y),
	}
}

func (o *Options) origin() layout.Position {
	if o.Origin == nil {
		return layout.Position{X: layout.DefaultAnchorX, Y: layout.DefaultBaselineY}
	}
	return *o.Origin
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func (o Options) String() string {
	if o.Mode == collatz.ModeInverse {
		return fmt.Sprintf("%s(%d, depth=%d)", o.Mode, o.Number, o.Depth)
	}
	return fmt.Sprintf("%s(%d)", o.Mode, o.Number)
}
