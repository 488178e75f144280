package spy

import (
	"image/png"
	"io"
	"os"

	"github.com/matzehuels/spyplot/pkg/errors"
)

// EncodePNG renders the sparsity pattern of m and writes it to w as PNG.
func EncodePNG(w io.Writer, m Pattern, opts ...Option) error {
	if err := png.Encode(w, Render(m, opts...)); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode png")
	}
	return nil
}

// WritePNG renders the sparsity pattern of m into a PNG file at path.
// Failures to create or write the file carry [errors.ErrCodeIO].
func WritePNG(path string, m Pattern, opts ...Option) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}

	if err := EncodePNG(f, m, opts...); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "close %s", path)
	}
	return nil
}
