package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spyplot/pkg/errors"
	"github.com/matzehuels/spyplot/pkg/pipeline"
	"github.com/matzehuels/spyplot/pkg/render/spy"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	configPath string  // optional TOML config file
	source     string  // source directory holding <name>.npz archives
	dest       string  // destination directory for <name>.png images
	marker     float64 // marker diameter in points
	dpi        float64 // output resolution
	size       float64 // figure edge in inches
	precision  float64 // |v| <= precision treated as zero
}

// newRenderCmd creates the render command, the core operation of spyplot.
//
// Names come from the positional arguments, or from the config file when no
// arguments are given. Flag values override config values, which override
// the built-in defaults (4pt markers, 300 DPI, 6in edge, ./npz → ./graphics).
func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [name...]",
		Short: "Render sparsity plots for named matrices",
		Long: `Render sparsity plots for named matrices.

For each name, in order, the render command loads <source>/<name>.npz,
converts the matrix to compressed sparse column form, draws its sparsity
pattern, and writes <dest>/<name>.png. The first failure aborts the run;
images already written are left in place.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "TOML config file with names, directories, and style")
	cmd.Flags().StringVarP(&opts.source, "source", "s", "", "source directory holding <name>.npz archives (default \"npz\")")
	cmd.Flags().StringVarP(&opts.dest, "dest", "d", "", "destination directory for <name>.png images (default \"graphics\")")
	cmd.Flags().Float64Var(&opts.marker, "marker", spy.DefaultMarkerSize, "marker diameter in points")
	cmd.Flags().Float64Var(&opts.dpi, "dpi", spy.DefaultDPI, "output resolution in pixels per inch")
	cmd.Flags().Float64Var(&opts.size, "size", spy.DefaultSize, "figure edge length in inches")
	cmd.Flags().Float64Var(&opts.precision, "precision", 0, "treat entries with |v| <= precision as zero")

	return cmd
}

// buildOptions merges config file values and flags into pipeline options.
// Precedence: flags > config file > defaults. Only flags the user actually
// set override the config.
func buildOptions(cmd *cobra.Command, names []string, opts renderOpts) (pipeline.Options, error) {
	var pipeOpts pipeline.Options

	if opts.configPath != "" {
		cfg, err := loadConfig(opts.configPath)
		if err != nil {
			return pipeline.Options{}, err
		}
		pipeOpts = cfg.options()
	}

	if len(names) > 0 {
		pipeOpts.Names = names
	}
	if opts.source != "" {
		pipeOpts.SourceDir = opts.source
	}
	if opts.dest != "" {
		pipeOpts.DestDir = opts.dest
	}

	// An explicit zero would otherwise be indistinguishable from "unset"
	// once merged into pipeline options, so reject it here.
	flags := cmd.Flags()
	if flags.Changed("marker") && opts.marker <= 0 {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "marker must be positive, got %v", opts.marker)
	}
	if flags.Changed("dpi") && opts.dpi <= 0 {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "dpi must be positive, got %v", opts.dpi)
	}
	if flags.Changed("size") && opts.size <= 0 {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "size must be positive, got %v", opts.size)
	}
	if flags.Changed("precision") && opts.precision < 0 {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "precision must be non-negative, got %v", opts.precision)
	}

	if flags.Changed("marker") || pipeOpts.Marker == 0 {
		pipeOpts.Marker = opts.marker
	}
	if flags.Changed("dpi") || pipeOpts.DPI == 0 {
		pipeOpts.DPI = opts.dpi
	}
	if flags.Changed("size") || pipeOpts.Size == 0 {
		pipeOpts.Size = opts.size
	}
	if flags.Changed("precision") || pipeOpts.Precision == 0 {
		pipeOpts.Precision = opts.precision
	}

	return pipeOpts, nil
}

// runRender merges options and executes the pipeline.
func runRender(ctx context.Context, cmd *cobra.Command, names []string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	pipeOpts, err := buildOptions(cmd, names, opts)
	if err != nil {
		return err
	}
	pipeOpts.Logger = logger

	prog := newProgress(logger)
	runner := pipeline.NewRunner(logger)

	result, err := runner.RenderAll(ctx, pipeOpts)
	if err != nil {
		printError("Render failed: %v", err)
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d sparsity plots", len(result.Artifacts)))
	for _, artifact := range result.Artifacts {
		printFile(artifact.Path)
	}
	return nil
}
