// Package npz decodes NumPy .npz archives into compressed sparse column
// matrices.
//
// Two on-disk layouts are supported:
//
//   - scipy.sparse.save_npz output: an archive holding format, shape, data
//     and index arrays for a csc, csr or coo matrix. csr and coo inputs are
//     converted to csc so callers always receive the same canonical layout.
//   - numpy.savez output holding a single dense 2-D array: nonzero entries
//     are collected into a coordinate list and converted to csc.
//
// Index members may be stored as int32 or int64. Value members keep the
// matrix dtype, so every integer width, bool, float32 and float64 are
// accepted and widened to float64.
//
// Decoding failures are reported through the structured error codes in
// pkg/errors: MISSING_INPUT when the archive does not exist, DECODE_ERROR
// for archives that exist but cannot be decoded.
package npz
