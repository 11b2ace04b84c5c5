// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package predict

import (
	"archive/zip"
	"fmt"
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// LoadNPZ reads a model from a numpy .npz archive holding entries
// w0.npy, b0.npy, w1.npy, b1.npy, … in layer order. Weight entries are
// 2-dimensional float64 arrays, bias entries 1-dimensional.
func LoadNPZ(path string) (*Model, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	defer zr.Close()

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	var (
		weights []*mat.Dense
		biases  [][]float64
	)
	for i := 0; ; i++ {
		wf, ok := entries[fmt.Sprintf("w%d.npy", i)]
		if !ok {
			break
		}
		bf, ok := entries[fmt.Sprintf("b%d.npy", i)]
		if !ok {
			return nil, fmt.Errorf("predict: %s: missing b%d.npy", path, i)
		}

		var w mat.Dense
		if err := readNPY(wf, &w); err != nil {
			return nil, fmt.Errorf("predict: %s: w%d: %w", path, i, err)
		}
		var b []float64
		if err := readNPY(bf, &b); err != nil {
			return nil, fmt.Errorf("predict: %s: b%d: %w", path, i, err)
		}
		weights = append(weights, &w)
		biases = append(biases, b)
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("predict: %s: no layers", path)
	}
	return New(weights, biases)
}

// WriteNPZ persists a model in the layout read by LoadNPZ.
func WriteNPZ(path string, m *Model) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for i, w := range m.weights {
		ww, err := zw.Create(fmt.Sprintf("w%d.npy", i))
		if err != nil {
			return fmt.Errorf("predict: %w", err)
		}
		if err := npyio.Write(ww, w); err != nil {
			return fmt.Errorf("predict: w%d: %w", i, err)
		}
		bw, err := zw.Create(fmt.Sprintf("b%d.npy", i))
		if err != nil {
			return fmt.Errorf("predict: %w", err)
		}
		if err := npyio.Write(bw, m.biases[i]); err != nil {
			return fmt.Errorf("predict: b%d: %w", i, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	return f.Close()
}

func readNPY(f *zip.File, ptr interface{}) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return npyio.Read(rc, ptr)
}
