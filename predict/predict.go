// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package predict performs inference with the trained quality-refinement
// model: a small feed-forward regression network mapping a histogram
// feature vector to completeness and contamination. The model is an
// external artifact produced by training; this package only loads and
// evaluates it. A Model is stateless after load and its predictions are
// deterministic.
package predict

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// An Estimate is a refined completeness/contamination prediction in
// percent. Completeness is clamped to [0,100] and contamination floored
// at 0; out-of-range network outputs are clamped, never extrapolated.
type Estimate struct {
	Completeness  float64 `json:"completeness"`
	Contamination float64 `json:"contamination"`
}

// A Model is a feed-forward network with ReLU hidden activations and a
// linear two-output head.
type Model struct {
	weights []*mat.Dense // layer weight matrices, out×in
	biases  [][]float64
}

// New assembles a model from layer weights and biases. Layer i maps a
// vector of w[i] columns to w[i] rows; successive layers must chain and
// the final layer must produce at least two outputs (completeness,
// contamination).
func New(weights []*mat.Dense, biases [][]float64) (*Model, error) {
	if len(weights) == 0 || len(weights) != len(biases) {
		return nil, fmt.Errorf("predict: %d weight matrices for %d bias vectors", len(weights), len(biases))
	}
	for i, w := range weights {
		r, c := w.Dims()
		if r != len(biases[i]) {
			return nil, fmt.Errorf("predict: layer %d: %d outputs but %d biases", i, r, len(biases[i]))
		}
		if i > 0 {
			pr, _ := weights[i-1].Dims()
			if c != pr {
				return nil, fmt.Errorf("predict: layer %d: expects %d inputs, previous layer produces %d", i, c, pr)
			}
		}
	}
	if out, _ := weights[len(weights)-1].Dims(); out < 2 {
		return nil, fmt.Errorf("predict: final layer produces %d outputs, need 2", out)
	}
	return &Model{weights: weights, biases: biases}, nil
}

// Dim returns the model's expected input dimensionality.
func (m *Model) Dim() int {
	_, c := m.weights[0].Dims()
	return c
}

// Predict evaluates the network on vec and returns the clamped estimate.
func (m *Model) Predict(vec []float64) (Estimate, error) {
	if m == nil || len(m.weights) == 0 {
		return Estimate{}, fmt.Errorf("predict: model not loaded")
	}
	if len(vec) != m.Dim() {
		return Estimate{}, fmt.Errorf("predict: input has %d values, model expects %d", len(vec), m.Dim())
	}

	data := make([]float64, len(vec))
	copy(data, vec)
	x := mat.NewVecDense(len(data), data)
	for i, w := range m.weights {
		r, _ := w.Dims()
		y := mat.NewVecDense(r, nil)
		y.MulVec(w, x)
		last := i == len(m.weights)-1
		for j := 0; j < r; j++ {
			v := y.AtVec(j) + m.biases[i][j]
			if !last && v < 0 {
				v = 0 // ReLU
			}
			y.SetVec(j, v)
		}
		x = y
	}

	est := Estimate{Completeness: x.AtVec(0), Contamination: x.AtVec(1)}
	if est.Completeness < 0 {
		est.Completeness = 0
	}
	if est.Completeness > 100 {
		est.Completeness = 100
	}
	if est.Contamination < 0 {
		est.Contamination = 0
	}
	return est, nil
}
