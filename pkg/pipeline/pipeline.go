// Package pipeline provides the core rendering pipeline for spyplot.
//
// The pipeline is a single linear pass over an ordered list of matrix
// names. For each name it loads <source_dir>/<name>.npz, canonicalizes the
// matrix to compressed sparse column form, renders the sparsity pattern,
// and writes <dest_dir>/<name>.png. The first failure aborts the run;
// images written for earlier names are left in place.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    Names:     []string{"A", "A_min", "A_rec"},
//	    SourceDir: "npz",
//	    DestDir:   "graphics",
//	}
//	result, err := runner.RenderAll(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/spyplot/pkg/errors"
	"github.com/matzehuels/spyplot/pkg/render/spy"
)

// Default directories, matching the layout the upstream matrix producer
// uses: serialized matrices in ./npz, images in ./graphics.
const (
	// DefaultSourceDir is where serialized matrices are read from.
	DefaultSourceDir = "npz"

	// DefaultDestDir is where rendered images are written.
	DefaultDestDir = "graphics"
)

// Options contains all configuration for a rendering run.
type Options struct {
	// Names is the ordered list of matrix identifiers to render.
	// Each name maps to <SourceDir>/<name>.npz and <DestDir>/<name>.png.
	Names []string

	// SourceDir holds one .npz archive per name.
	SourceDir string

	// DestDir receives one .png per name. It must exist and be writable.
	DestDir string

	// Style parameters, passed through to the renderer. Zero values take
	// the renderer defaults (4pt markers, 300 DPI, 6in edge).
	Marker    float64
	DPI       float64
	Size      float64
	Precision float64

	// Logger receives per-stage progress. Defaults to a discarding logger.
	Logger *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if err := errors.ValidateNames(o.Names); err != nil {
		return err
	}

	if o.SourceDir == "" {
		o.SourceDir = DefaultSourceDir
	}
	if o.DestDir == "" {
		o.DestDir = DefaultDestDir
	}
	if o.Marker == 0 {
		o.Marker = spy.DefaultMarkerSize
	}
	if o.DPI == 0 {
		o.DPI = spy.DefaultDPI
	}
	if o.Size == 0 {
		o.Size = spy.DefaultSize
	}

	if o.Marker < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "marker size must be non-negative, got %v", o.Marker)
	}
	if o.DPI <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "dpi must be positive, got %v", o.DPI)
	}
	if o.Size <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "size must be positive, got %v", o.Size)
	}
	if o.Precision < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "precision must be non-negative, got %v", o.Precision)
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// StyleOptions converts the style parameters to renderer options.
func (o *Options) StyleOptions() []spy.Option {
	return []spy.Option{
		spy.WithMarkerSize(o.Marker),
		spy.WithDPI(o.DPI),
		spy.WithSize(o.Size),
		spy.WithPrecision(o.Precision),
	}
}

// Artifact records one rendered matrix.
type Artifact struct {
	Name     string
	Path     string
	Rows     int
	Cols     int
	NNZ      int
	Duration time.Duration
}

// Result contains the outputs of a rendering run.
type Result struct {
	// RunID correlates log lines for one run.
	RunID uuid.UUID

	// Artifacts lists the rendered outputs in render order.
	Artifacts []Artifact

	// Total is the wall-clock duration of the run.
	Total time.Duration
}
