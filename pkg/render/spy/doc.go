// Package spy renders sparsity patterns ("spy plots") of sparse matrices.
//
// A spy plot marks the location of every nonzero entry as a filled black dot
// on a white square canvas, with no axes, ticks or border. The result shows
// the occupancy pattern of the matrix rather than its values.
//
// # Usage
//
//	m, err := npz.Open("npz/A.npz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = spy.WritePNG("graphics/A.png", m,
//	    spy.WithMarkerSize(4),
//	    spy.WithDPI(300),
//	)
//
// Any type implementing [Pattern] can be rendered; the sparse matrix types
// from github.com/james-bowman/sparse satisfy it directly, and [Dense] adapts
// gonum dense matrices.
//
// Rendering is deterministic: the same matrix and options always produce a
// byte-identical PNG.
package spy
