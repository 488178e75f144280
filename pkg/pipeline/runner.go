package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/spyplot/pkg/npz"
	"github.com/matzehuels/spyplot/pkg/observability"
	"github.com/matzehuels/spyplot/pkg/render/spy"
)

// Runner executes the rendering pipeline.
//
// The Runner is stateless apart from its logger; multiple goroutines can
// safely use the same Runner with different options. A single run is
// always strictly sequential over its name list.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner with the given logger.
// If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// RenderAll renders a sparsity plot for every name in opts.Names, in order.
//
// The first failure aborts the run and is returned wrapped with the failing
// name; images already written remain on disk. Cancellation is honored
// between matrices, so an interrupted run never leaves a partially written
// image for the matrix it was about to start.
func (r *Runner) RenderAll(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.New()}
	start := time.Now()

	opts.Logger.Debug("starting render run",
		"run", result.RunID,
		"names", opts.Names,
		"source", opts.SourceDir,
		"dest", opts.DestDir)

	for _, name := range opts.Names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		artifact, err := r.renderOne(ctx, name, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		result.Artifacts = append(result.Artifacts, *artifact)
	}

	result.Total = time.Since(start)
	opts.Logger.Info("render run complete",
		"run", result.RunID,
		"rendered", len(result.Artifacts),
		"duration", result.Total)

	return result, nil
}

// renderOne runs the load → canonicalize → render → save cycle for a single
// name. The matrix is held in memory only for the duration of the call.
func (r *Runner) renderOne(ctx context.Context, name string, opts Options) (*Artifact, error) {
	start := time.Now()

	src := filepath.Join(opts.SourceDir, name+".npz")
	observability.Pipeline().OnLoadStart(ctx, name)
	m, err := npz.Open(src)
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, name, 0, time.Since(start), err)
		return nil, err
	}
	observability.Pipeline().OnLoadComplete(ctx, name, m.NNZ(), time.Since(start), nil)

	rows, cols := m.Dims()
	opts.Logger.Debug("loaded matrix",
		"name", name,
		"rows", rows,
		"cols", cols,
		"nnz", m.NNZ())

	dst := filepath.Join(opts.DestDir, name+".png")
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, name)
	if err := spy.WritePNG(dst, m, opts.StyleOptions()...); err != nil {
		observability.Pipeline().OnRenderComplete(ctx, name, dst, time.Since(renderStart), err)
		return nil, err
	}
	observability.Pipeline().OnRenderComplete(ctx, name, dst, time.Since(renderStart), nil)

	artifact := &Artifact{
		Name:     name,
		Path:     dst,
		Rows:     rows,
		Cols:     cols,
		NNZ:      m.NNZ(),
		Duration: time.Since(start),
	}

	opts.Logger.Info("rendered matrix",
		"name", name,
		"output", dst,
		"nnz", artifact.NNZ,
		"duration", artifact.Duration)

	return artifact, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
