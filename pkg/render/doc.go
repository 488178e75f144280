// Package render provides image rendering for sparse matrices.
//
// The [spy] subpackage renders sparsity patterns ("spy plots"): square
// black-on-white images marking the location of every nonzero entry,
// with no axes or decoration. PNG is the only output format; plots are
// intended for print inclusion, so the default resolution is 300 DPI.
//
//	img := spy.Render(m, spy.WithMarkerSize(4))
//	err := spy.WritePNG("A.png", m, spy.WithDPI(300))
//
// [spy]: https://pkg.go.dev/github.com/matzehuels/spyplot/pkg/render/spy
package render
