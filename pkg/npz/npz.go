package npz

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/james-bowman/sparse"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/spyplot/pkg/errors"
)

// Info describes the on-disk encoding of an archive.
type Info struct {
	Format string // "csc", "csr", "coo" or "dense"
	Rows   int
	Cols   int
	NNZ    int
}

// Open reads the .npz archive at path and returns its matrix in canonical
// compressed sparse column form.
//
// A missing file yields an error with code [errors.ErrCodeMissingInput];
// any other failure to decode yields [errors.ErrCodeDecode].
func Open(path string) (*sparse.CSC, error) {
	m, _, err := open(path)
	return m, err
}

// Stat reads the .npz archive at path and reports its dimensions, nonzero
// count and on-disk storage format without keeping the matrix around.
func Stat(path string) (Info, error) {
	_, info, err := open(path)
	return info, err
}

func open(path string) (*sparse.CSC, Info, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Info{}, errors.Wrap(errors.ErrCodeMissingInput, err, "no archive at %s", path)
		}
		return nil, Info{}, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, Info{}, errors.Wrap(errors.ErrCodeIO, err, "stat %s", path)
	}

	m, info, err := Decode(f, fi.Size())
	if err != nil {
		return nil, Info{}, errors.Wrap(errors.GetCode(err), err, "decode %s", path)
	}
	return m, info, nil
}

// Decode reads a .npz archive from r and returns its matrix in canonical
// compressed sparse column form along with the on-disk encoding info.
func Decode(r io.ReaderAt, size int64) (*sparse.CSC, Info, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, Info{}, errors.Wrap(errors.ErrCodeDecode, err, "not a zip archive")
	}

	members := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		members[strings.TrimSuffix(f.Name, ".npy")] = f
	}

	if _, ok := members["format"]; ok {
		return decodeSparse(members)
	}
	if len(members) == 1 {
		for _, f := range members {
			return decodeDense(f)
		}
	}
	return nil, Info{}, errors.New(errors.ErrCodeDecode,
		"unrecognized archive layout: no format member and %d array members", len(members))
}

// decodeSparse reconstructs a scipy.sparse matrix from its npz members.
func decodeSparse(members map[string]*zip.File) (*sparse.CSC, Info, error) {
	format, err := readFormat(members["format"])
	if err != nil {
		return nil, Info{}, err
	}

	shape, err := readInts(members, "shape")
	if err != nil {
		return nil, Info{}, err
	}
	if len(shape) != 2 {
		return nil, Info{}, errors.New(errors.ErrCodeDecode, "shape has %d dimensions, want 2", len(shape))
	}
	rows, cols := shape[0], shape[1]
	if rows < 0 || cols < 0 {
		return nil, Info{}, errors.New(errors.ErrCodeDecode, "negative dimensions %dx%d", rows, cols)
	}

	data, err := readFloats(members, "data")
	if err != nil {
		return nil, Info{}, err
	}

	info := Info{Format: format, Rows: rows, Cols: cols, NNZ: len(data)}

	switch format {
	case "csc":
		indices, indptr, err := readCompressed(members, rows, cols, len(data))
		if err != nil {
			return nil, Info{}, err
		}
		return sparse.NewCSC(rows, cols, indptr, indices, data), info, nil

	case "csr":
		indices, indptr, err := readCompressed(members, cols, rows, len(data))
		if err != nil {
			return nil, Info{}, err
		}
		return sparse.NewCSR(rows, cols, indptr, indices, data).ToCSC(), info, nil

	case "coo":
		rowIdx, err := readInts(members, "row")
		if err != nil {
			return nil, Info{}, err
		}
		colIdx, err := readInts(members, "col")
		if err != nil {
			return nil, Info{}, err
		}
		if len(rowIdx) != len(data) || len(colIdx) != len(data) {
			return nil, Info{}, errors.New(errors.ErrCodeDecode,
				"coo member lengths disagree: %d rows, %d cols, %d values", len(rowIdx), len(colIdx), len(data))
		}
		if err := checkBounds(rowIdx, rows, "row"); err != nil {
			return nil, Info{}, err
		}
		if err := checkBounds(colIdx, cols, "col"); err != nil {
			return nil, Info{}, err
		}
		return sparse.NewCOO(rows, cols, rowIdx, colIdx, data).ToCSC(), info, nil
	}

	return nil, Info{}, errors.New(errors.ErrCodeDecode, "unsupported sparse format %q", format)
}

// readCompressed reads and validates the indices/indptr pair shared by the
// csc and csr layouts. major is the index bound (rows for csc, cols for csr)
// and minor the expected indptr extent.
func readCompressed(members map[string]*zip.File, major, minor, nnz int) (indices, indptr []int, err error) {
	indices, err = readInts(members, "indices")
	if err != nil {
		return nil, nil, err
	}
	indptr, err = readInts(members, "indptr")
	if err != nil {
		return nil, nil, err
	}

	if len(indptr) != minor+1 {
		return nil, nil, errors.New(errors.ErrCodeDecode, "indptr has %d entries, want %d", len(indptr), minor+1)
	}
	if len(indices) != nnz {
		return nil, nil, errors.New(errors.ErrCodeDecode, "indices has %d entries, want %d", len(indices), nnz)
	}
	prev := 0
	for i, p := range indptr {
		if p < prev {
			return nil, nil, errors.New(errors.ErrCodeDecode, "indptr decreases at position %d", i)
		}
		prev = p
	}
	if indptr[0] != 0 || indptr[minor] != nnz {
		return nil, nil, errors.New(errors.ErrCodeDecode,
			"indptr spans [%d, %d], want [0, %d]", indptr[0], indptr[minor], nnz)
	}
	if err := checkBounds(indices, major, "index"); err != nil {
		return nil, nil, err
	}
	return indices, indptr, nil
}

// decodeDense converts a dense 2-D array member to csc by collecting the
// coordinates of its nonzero entries.
func decodeDense(f *zip.File) (*sparse.CSC, Info, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, Info{}, errors.Wrap(errors.ErrCodeDecode, err, "open member %s", f.Name)
	}
	defer rc.Close()

	var m mat.Dense
	if err := npyio.Read(rc, &m); err != nil {
		return nil, Info{}, errors.Wrap(errors.ErrCodeDecode, err, "member %s is not a dense 2-D array", f.Name)
	}

	rows, cols := m.Dims()
	var rowIdx, colIdx []int
	var data []float64
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			if v := m.At(i, j); v != 0 {
				rowIdx = append(rowIdx, i)
				colIdx = append(colIdx, j)
				data = append(data, v)
			}
		}
	}

	info := Info{Format: "dense", Rows: rows, Cols: cols, NNZ: len(data)}
	return sparse.NewCOO(rows, cols, rowIdx, colIdx, data).ToCSC(), info, nil
}

func checkBounds(idx []int, n int, kind string) error {
	for _, i := range idx {
		if i < 0 || i >= n {
			return errors.New(errors.ErrCodeDecode, "%s %d out of bounds [0, %d)", kind, i, n)
		}
	}
	return nil
}

// readInts decodes an integer member, accepting int32 and int64 storage.
func readInts(members map[string]*zip.File, name string) ([]int, error) {
	f, ok := members[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeDecode, "archive has no %s member", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "open member %s", name)
	}
	defer rc.Close()

	r, err := npyio.NewReader(rc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "member %s is not npy data", name)
	}

	switch r.Header.Descr.Type {
	case "<i4", "|i4":
		var v []int32
		if err := r.Read(&v); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDecode, err, "read %s", name)
		}
		out := make([]int, len(v))
		for i, x := range v {
			out[i] = int(x)
		}
		return out, nil
	case "<i8", "|i8":
		var v []int64
		if err := r.Read(&v); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDecode, err, "read %s", name)
		}
		out := make([]int, len(v))
		for i, x := range v {
			out[i] = int(x)
		}
		return out, nil
	}
	return nil, errors.New(errors.ErrCodeDecode, "member %s has unsupported dtype %s", name, r.Header.Descr.Type)
}

// readFloats decodes a value member. scipy preserves the matrix dtype when
// saving, so besides float storage this accepts every integer width and
// bool, converting to float64.
func readFloats(members map[string]*zip.File, name string) ([]float64, error) {
	f, ok := members[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeDecode, "archive has no %s member", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "open member %s", name)
	}
	defer rc.Close()

	r, err := npyio.NewReader(rc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "member %s is not npy data", name)
	}

	switch r.Header.Descr.Type {
	case "<f8", "|f8":
		var v []float64
		if err := r.Read(&v); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDecode, err, "read %s", name)
		}
		return v, nil
	case "<f4", "|f4":
		return floatsFrom[float32](r, name)
	case "<i1", "|i1":
		return floatsFrom[int8](r, name)
	case "<i2", "|i2":
		return floatsFrom[int16](r, name)
	case "<i4", "|i4":
		return floatsFrom[int32](r, name)
	case "<i8", "|i8":
		return floatsFrom[int64](r, name)
	case "<u1", "|u1":
		return floatsFrom[uint8](r, name)
	case "<u2", "|u2":
		return floatsFrom[uint16](r, name)
	case "<u4", "|u4":
		return floatsFrom[uint32](r, name)
	case "<u8", "|u8":
		return floatsFrom[uint64](r, name)
	case "<b1", "|b1":
		var v []bool
		if err := r.Read(&v); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDecode, err, "read %s", name)
		}
		out := make([]float64, len(v))
		for i, x := range v {
			if x {
				out[i] = 1
			}
		}
		return out, nil
	}
	return nil, errors.New(errors.ErrCodeDecode, "member %s has unsupported dtype %s", name, r.Header.Descr.Type)
}

// floatsFrom reads a numeric member of element type T and widens to float64.
func floatsFrom[T interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32
}](r *npyio.Reader, name string) ([]float64, error) {
	var v []T
	if err := r.Read(&v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "read %s", name)
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out, nil
}

// readFormat decodes the format member. scipy stores it as a length-3 byte
// string ("|S3"), a dtype npy readers for numeric data do not handle, so the
// npy framing is parsed by hand and the payload taken verbatim.
func readFormat(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeDecode, err, "open format member")
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeDecode, err, "read format member")
	}

	payload, err := rawPayload(raw)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeDecode, err, "format member")
	}

	format := strings.TrimRight(string(payload), "\x00 ")
	if format == "" {
		return "", errors.New(errors.ErrCodeDecode, "empty format member")
	}
	return format, nil
}

// rawPayload strips the npy framing (magic, version, header) from a member
// and returns the array payload bytes.
func rawPayload(raw []byte) ([]byte, error) {
	const magic = "\x93NUMPY"
	if len(raw) < len(magic)+4 || string(raw[:len(magic)]) != magic {
		return nil, fmt.Errorf("bad npy magic")
	}
	major := raw[6]
	var hlen, start int
	switch major {
	case 1:
		hlen = int(raw[8]) | int(raw[9])<<8
		start = 10
	case 2, 3:
		if len(raw) < 12 {
			return nil, fmt.Errorf("truncated npy header")
		}
		hlen = int(raw[8]) | int(raw[9])<<8 | int(raw[10])<<16 | int(raw[11])<<24
		start = 12
	default:
		return nil, fmt.Errorf("unsupported npy version %d", major)
	}
	if start+hlen > len(raw) {
		return nil, fmt.Errorf("truncated npy header")
	}
	return raw[start+hlen:], nil
}
