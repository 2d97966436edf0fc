package matrix

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

const (
	// ArrayName is the key the matrix is stored under inside the archive.
	ArrayName = "adjacency_matrix"
	extension = ".npz"
	entryName = ArrayName + ".npy"
)

var ErrBadArchive = errors.New("matrix: invalid npz archive")

// Save writes m as an .npz archive holding one 2-D array named
// adjacency_matrix. The extension is appended when missing. It returns the
// path written.
func Save(m *Matrix, path string) (string, error) {
	if m == nil {
		return "", errors.New("matrix: nil matrix")
	}
	if !strings.HasSuffix(path, extension) {
		path += extension
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create matrix dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create matrix file: %w", err)
	}
	zw := npz.NewWriter(f)
	err = zw.Write(entryName, m.dense())
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write matrix: %w", err)
	}
	return path, nil
}

// Load reads a matrix written by Save.
func Load(path string) (*Matrix, error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	defer r.Close()

	var d mat.Dense
	if err := r.Read(entryName, &d); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrBadArchive, ArrayName, err)
	}
	rows, cols := d.Dims()
	if rows != cols || rows == 0 {
		return nil, fmt.Errorf("%w: array is %dx%d, want square", ErrBadArchive, rows, cols)
	}

	m := &Matrix{Size: rows, Data: make([]float32, rows*cols)}
	for i := range rows {
		for j := range cols {
			m.Data[i*cols+j] = float32(d.At(i, j))
		}
	}
	return m, nil
}

// dense copies m into the row-major float64 matrix npyio knows how to shape.
func (m *Matrix) dense() *mat.Dense {
	data := make([]float64, len(m.Data))
	for i, v := range m.Data {
		data[i] = float64(v)
	}
	return mat.NewDense(m.Size, m.Size, data)
}
