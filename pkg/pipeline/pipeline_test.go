package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/sbinet/npyio"

	"github.com/matzehuels/spyplot/pkg/errors"
)

// writeCSCArchive writes a minimal scipy-style csc .npz with a single
// nonzero entry at (0, 0) of an n x n matrix.
func writeCSCArchive(t *testing.T, path string, n int) {
	t.Helper()

	indptr := make([]int64, n+1)
	for i := 1; i <= n; i++ {
		indptr[i] = 1
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	format, err := zw.Create("format.npy")
	if err != nil {
		t.Fatal(err)
	}
	header := "{'descr': '|S3', 'fortran_order': False, 'shape': (), }"
	for (10+len(header)+1)%64 != 0 {
		header += " "
	}
	header += "\n"
	fmt.Fprintf(format, "\x93NUMPY\x01\x00%c%c%scsc", byte(len(header)), byte(len(header)>>8), header)

	members := map[string]any{
		"shape.npy":   []int64{int64(n), int64(n)},
		"data.npy":    []float64{1},
		"indices.npy": []int64{0},
		"indptr.npy":  indptr,
	}
	for name, value := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if err := npyio.Write(w, value); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

// testDirs creates source and dest directories with archives for the given
// names and returns options pointing at them, sized for fast rendering.
func testDirs(t *testing.T, names ...string) Options {
	t.Helper()

	source := t.TempDir()
	dest := t.TempDir()
	for _, name := range names {
		writeCSCArchive(t, filepath.Join(source, name+".npz"), 5)
	}

	return Options{
		Names:     names,
		SourceDir: source,
		DestDir:   dest,
		DPI:       50,
		Size:      2,
	}
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestRenderAll(t *testing.T) {
	opts := testDirs(t, "A", "A_min", "A_rec")
	runner := NewRunner(discardLogger())

	result, err := runner.RenderAll(context.Background(), opts)
	if err != nil {
		t.Fatalf("RenderAll() error = %v", err)
	}

	if len(result.Artifacts) != 3 {
		t.Fatalf("rendered %d artifacts, want 3", len(result.Artifacts))
	}

	for i, name := range []string{"A", "A_min", "A_rec"} {
		artifact := result.Artifacts[i]
		if artifact.Name != name {
			t.Errorf("artifact[%d].Name = %q, want %q (order must match input)", i, artifact.Name, name)
		}
		want := filepath.Join(opts.DestDir, name+".png")
		if artifact.Path != want {
			t.Errorf("artifact[%d].Path = %q, want %q", i, artifact.Path, want)
		}
		if _, err := os.Stat(want); err != nil {
			t.Errorf("output %s missing: %v", want, err)
		}
		if artifact.NNZ != 1 || artifact.Rows != 5 || artifact.Cols != 5 {
			t.Errorf("artifact[%d] stats = %dx%d nnz %d, want 5x5 nnz 1", i, artifact.Rows, artifact.Cols, artifact.NNZ)
		}
	}

	if result.RunID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("RunID was not assigned")
	}
}

func TestRenderAllIdempotent(t *testing.T) {
	opts := testDirs(t, "A")
	runner := NewRunner(discardLogger())

	if _, err := runner.RenderAll(context.Background(), opts); err != nil {
		t.Fatalf("first RenderAll() error = %v", err)
	}
	first, err := os.ReadFile(filepath.Join(opts.DestDir, "A.png"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := runner.RenderAll(context.Background(), opts); err != nil {
		t.Fatalf("second RenderAll() error = %v", err)
	}
	second, err := os.ReadFile(filepath.Join(opts.DestDir, "A.png"))
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Error("re-render of unchanged input produced different bytes")
	}
}

func TestRenderAllMissingInputAborts(t *testing.T) {
	opts := testDirs(t, "A")
	opts.Names = []string{"A", "B"} // B has no archive
	runner := NewRunner(discardLogger())

	_, err := runner.RenderAll(context.Background(), opts)
	if !errors.Is(err, errors.ErrCodeMissingInput) {
		t.Fatalf("RenderAll() error code = %q, want MISSING_INPUT (err: %v)", errors.GetCode(err), err)
	}

	// Earlier output remains, the failing name writes nothing.
	if _, err := os.Stat(filepath.Join(opts.DestDir, "A.png")); err != nil {
		t.Errorf("A.png should remain after abort: %v", err)
	}
	if _, err := os.Stat(filepath.Join(opts.DestDir, "B.png")); !os.IsNotExist(err) {
		t.Error("B.png should not exist after abort")
	}
}

func TestRenderAllDecodeErrorAborts(t *testing.T) {
	opts := testDirs(t, "A")
	if err := os.WriteFile(filepath.Join(opts.SourceDir, "A.npz"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(discardLogger())

	_, err := runner.RenderAll(context.Background(), opts)
	if !errors.Is(err, errors.ErrCodeDecode) {
		t.Errorf("RenderAll() error code = %q, want DECODE_ERROR (err: %v)", errors.GetCode(err), err)
	}
}

func TestRenderAllUnwritableDestination(t *testing.T) {
	opts := testDirs(t, "A")
	opts.DestDir = filepath.Join(opts.DestDir, "missing")
	runner := NewRunner(discardLogger())

	_, err := runner.RenderAll(context.Background(), opts)
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Errorf("RenderAll() error code = %q, want IO_ERROR (err: %v)", errors.GetCode(err), err)
	}
}

func TestRenderAllCancelled(t *testing.T) {
	opts := testDirs(t, "A")
	runner := NewRunner(discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.RenderAll(ctx, opts)
	if err != context.Canceled {
		t.Errorf("RenderAll() error = %v, want context.Canceled", err)
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"valid minimal", Options{Names: []string{"A"}}, false},
		{"no names", Options{}, true},
		{"invalid name", Options{Names: []string{"../A"}}, true},
		{"negative marker", Options{Names: []string{"A"}, Marker: -1}, true},
		{"negative dpi", Options{Names: []string{"A"}, DPI: -300}, true},
		{"negative size", Options{Names: []string{"A"}, Size: -6}, true},
		{"negative precision", Options{Names: []string{"A"}, Precision: -0.1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tt.opts.SourceDir != DefaultSourceDir || tt.opts.DestDir != DefaultDestDir {
				t.Errorf("default dirs = %q, %q", tt.opts.SourceDir, tt.opts.DestDir)
			}
			if tt.opts.Marker != 4 || tt.opts.DPI != 300 || tt.opts.Size != 6 {
				t.Errorf("default style = marker %v dpi %v size %v", tt.opts.Marker, tt.opts.DPI, tt.opts.Size)
			}
			if tt.opts.Logger == nil {
				t.Error("default logger not set")
			}
		})
	}
}
