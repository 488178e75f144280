package spy

import (
	"image"
	"math"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/mat"
)

// Default styling parameters. Marker sizes follow printer's points
// (1pt = 1/72 inch) so the dot size is stable across resolutions.
const (
	// DefaultMarkerSize is the marker diameter in points.
	DefaultMarkerSize = 4.0

	// DefaultDPI is the output resolution, suitable for print inclusion.
	DefaultDPI = 300.0

	// DefaultSize is the figure edge length in inches.
	DefaultSize = 6.0
)

// Pattern is the minimal view of a matrix needed for rendering: its
// dimensions and a visitor over nonzero entries. The compressed sparse
// types from github.com/james-bowman/sparse implement it directly.
type Pattern interface {
	Dims() (r, c int)
	DoNonZero(fn func(i, j int, v float64))
}

// Dense adapts any gonum matrix to [Pattern] by scanning every entry.
type Dense struct {
	mat.Matrix
}

// DoNonZero calls fn for each nonzero entry in column-major order.
func (d Dense) DoNonZero(fn func(i, j int, v float64)) {
	r, c := d.Matrix.Dims()
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			if v := d.Matrix.At(i, j); v != 0 {
				fn(i, j, v)
			}
		}
	}
}

// Option configures spy plot rendering.
type Option func(*renderer)

type renderer struct {
	marker    float64 // marker diameter, points
	dpi       float64 // pixels per inch
	size      float64 // figure edge, inches
	precision float64 // entries with |v| <= precision are not drawn
}

// WithMarkerSize sets the marker diameter in points (default 4).
func WithMarkerSize(pt float64) Option {
	return func(r *renderer) { r.marker = pt }
}

// WithDPI sets the output resolution in pixels per inch (default 300).
func WithDPI(dpi float64) Option {
	return func(r *renderer) { r.dpi = dpi }
}

// WithSize sets the figure edge length in inches (default 6).
func WithSize(inches float64) Option {
	return func(r *renderer) { r.size = inches }
}

// WithPrecision sets the magnitude threshold below which stored entries are
// treated as zero and left undrawn (default 0: every entry with a nonzero
// stored value is drawn).
func WithPrecision(eps float64) Option {
	return func(r *renderer) { r.precision = eps }
}

func newRenderer(opts ...Option) renderer {
	r := renderer{
		marker: DefaultMarkerSize,
		dpi:    DefaultDPI,
		size:   DefaultSize,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Render draws the sparsity pattern of m onto a square white canvas and
// returns the image. Each nonzero entry becomes a filled black dot at its
// scaled (row, column) position. No axes or decoration are drawn; the
// content is inset by exactly one marker radius so edge dots stay inside
// the canvas.
func Render(m Pattern, opts ...Option) image.Image {
	r := newRenderer(opts...)

	side := int(math.Round(r.size * r.dpi))
	if side < 1 {
		side = 1
	}

	dc := gg.NewContext(side, side)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return dc.Image()
	}

	// Point diameter to pixel radius, clamped so markers stay visible
	// at low resolutions.
	radius := math.Max(r.marker/72*r.dpi/2, 0.5)

	inset := radius
	spanX := float64(side) - 2*inset
	spanY := float64(side) - 2*inset

	dc.SetRGB(0, 0, 0)
	m.DoNonZero(func(i, j int, v float64) {
		if math.Abs(v) <= r.precision {
			return
		}
		x := inset + (float64(j)+0.5)/float64(cols)*spanX
		y := inset + (float64(i)+0.5)/float64(rows)*spanY
		dc.DrawCircle(x, y, radius)
	})
	dc.Fill()

	return dc.Image()
}
