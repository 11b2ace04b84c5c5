// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refdb

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// readMatrix reads a 2-dimensional .npy or .npz array as rows. Count
// matrices produced by numpy tooling store uint8; feature matrices store
// float64. Both are widened to float64 rows.
func readMatrix(path string) ([][]float64, error) {
	m, err := ReadDense(path)
	if err != nil {
		return nil, err
	}
	r, _ := m.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		rows[i] = mat.Row(nil, i, m)
	}
	return rows, nil
}

// ReadDense reads a 2-dimensional array from a .npy file or the first
// entry of a .npz archive into a dense float64 matrix.
func ReadDense(path string) (*mat.Dense, error) {
	if isNPZ(path) {
		return readDenseNPZ(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("refdb: %w", err)
	}
	defer f.Close()
	return decodeDense(f, path)
}

func readDenseNPZ(path string) (*mat.Dense, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("refdb: %w", err)
	}
	defer zr.Close()
	if len(zr.File) == 0 {
		return nil, fmt.Errorf("refdb: %s: empty archive", path)
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("refdb: %s: %w", path, err)
	}
	defer rc.Close()
	return decodeDense(rc, path)
}

func decodeDense(r io.Reader, path string) (*mat.Dense, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("refdb: %s: %w", path, err)
	}
	shape := nr.Header.Descr.Shape
	if len(shape) != 2 {
		return nil, fmt.Errorf("refdb: %s: want a 2-dimensional array, got shape %v", path, shape)
	}

	n := shape[0] * shape[1]
	data := make([]float64, n)
	switch nr.Header.Descr.Type {
	case "|u1", "u1", "<u1":
		raw := make([]uint8, n)
		if err := nr.Read(&raw); err != nil {
			return nil, fmt.Errorf("refdb: %s: %w", path, err)
		}
		for i, v := range raw {
			data[i] = float64(v)
		}
	default:
		if err := nr.Read(&data); err != nil {
			return nil, fmt.Errorf("refdb: %s: %w", path, err)
		}
	}
	return mat.NewDense(shape[0], shape[1], data), nil
}

func isNPZ(path string) bool {
	return len(path) > 4 && path[len(path)-4:] == ".npz"
}

func writeMatrix(path string, rows [][]float64) error {
	if len(rows) == 0 {
		return fmt.Errorf("refdb: %s: no rows to write", path)
	}
	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for i, row := range rows {
		if len(row) != c {
			return fmt.Errorf("refdb: %s: ragged row %d", path, i)
		}
		data = append(data, row...)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("refdb: %w", err)
	}
	defer f.Close()
	if err := npyio.Write(f, mat.NewDense(len(rows), c, data)); err != nil {
		return fmt.Errorf("refdb: %s: %w", path, err)
	}
	return f.Close()
}

func readInts(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("refdb: %w", err)
	}
	defer f.Close()
	var raw []int64
	if err := npyio.Read(f, &raw); err != nil {
		return nil, fmt.Errorf("refdb: %s: %w", path, err)
	}
	ints := make([]int, len(raw))
	for i, v := range raw {
		ints[i] = int(v)
	}
	return ints, nil
}

func writeInts(path string, ints []int) error {
	raw := make([]int64, len(ints))
	for i, v := range ints {
		raw[i] = int64(v)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("refdb: %w", err)
	}
	defer f.Close()
	if err := npyio.Write(f, raw); err != nil {
		return fmt.Errorf("refdb: %s: %w", path, err)
	}
	return f.Close()
}
