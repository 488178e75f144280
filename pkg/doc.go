// Package pkg provides the core libraries for spyplot sparsity rendering.
//
// # Overview
//
// Spyplot turns serialized sparse matrices into sparsity-pattern images. The
// pkg directory is organized into small, single-purpose packages:
//
//  1. [npz] - Decoding NumPy .npz archives into canonical CSC matrices
//  2. [render/spy] - Drawing sparsity patterns and encoding PNG output
//  3. [pipeline] - Orchestration (load → canonicalize → render → save)
//  4. [errors] - Structured error codes shared by all packages
//  5. [observability] - Optional instrumentation hooks
//  6. [buildinfo] - ldflags-injected version information
//
// # Architecture
//
// The typical data flow through spyplot:
//
//	<source_dir>/<name>.npz
//	         ↓
//	    [npz] package (decode, canonicalize to CSC)
//	         ↓
//	    [render/spy] package (draw dots, encode PNG)
//	         ↓
//	<dest_dir>/<name>.png
//
// # Quick Start
//
// Render sparsity plots for a list of named matrices:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/spyplot/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.RenderAll(context.Background(), pipeline.Options{
//	    Names:     []string{"A", "A_min", "A_rec"},
//	    SourceDir: "npz",
//	    DestDir:   "graphics",
//	})
//
// Or use the pieces directly:
//
//	m, err := npz.Open("npz/A.npz")
//	err = spy.WritePNG("graphics/A.png", m, spy.WithDPI(300))
//
// [npz]: https://pkg.go.dev/github.com/matzehuels/spyplot/pkg/npz
// [render/spy]: https://pkg.go.dev/github.com/matzehuels/spyplot/pkg/render/spy
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/spyplot/pkg/pipeline
// [errors]: https://pkg.go.dev/github.com/matzehuels/spyplot/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/spyplot/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/spyplot/pkg/buildinfo
package pkg
