// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package predict

import (
	"path/filepath"
	"testing"

	check "gopkg.in/check.v1"
	"gonum.org/v1/gonum/mat"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

// linearModel returns a single-layer model computing
// [w00*x0+w01*x1+b0, w10*x0+w11*x1+b1] over 2-dimensional input.
func linearModel(c *check.C, w []float64, b []float64) *Model {
	m, err := New([]*mat.Dense{mat.NewDense(2, 2, w)}, [][]float64{b})
	c.Assert(err, check.IsNil)
	return m
}

func (s *S) TestPredict(c *check.C) {
	m := linearModel(c, []float64{1, 0, 0, 1}, []float64{0, 0})

	est, err := m.Predict([]float64{42.5, 3.25})
	c.Assert(err, check.IsNil)
	c.Check(est, check.Equals, Estimate{Completeness: 42.5, Contamination: 3.25})

	// Deterministic.
	again, err := m.Predict([]float64{42.5, 3.25})
	c.Assert(err, check.IsNil)
	c.Check(again, check.Equals, est)
}

func (s *S) TestPredictClamps(c *check.C) {
	m := linearModel(c, []float64{1, 0, 0, 1}, []float64{0, 0})

	est, err := m.Predict([]float64{150, -4})
	c.Assert(err, check.IsNil)
	c.Check(est, check.Equals, Estimate{Completeness: 100, Contamination: 0})

	est, err = m.Predict([]float64{-10, 600})
	c.Assert(err, check.IsNil)
	c.Check(est, check.Equals, Estimate{Completeness: 0, Contamination: 600})
}

func (s *S) TestPredictHidden(c *check.C) {
	// A hidden ReLU layer: h = max(0, [-x0, x1]); out = [h0+h1, h0].
	m, err := New(
		[]*mat.Dense{
			mat.NewDense(2, 2, []float64{-1, 0, 0, 1}),
			mat.NewDense(2, 2, []float64{1, 1, 1, 0}),
		},
		[][]float64{{0, 0}, {0, 0}},
	)
	c.Assert(err, check.IsNil)

	est, err := m.Predict([]float64{5, 7})
	c.Assert(err, check.IsNil)
	// h = [0, 7]; out = [7, 0].
	c.Check(est, check.Equals, Estimate{Completeness: 7, Contamination: 0})
}

func (s *S) TestPredictDimension(c *check.C) {
	m := linearModel(c, []float64{1, 0, 0, 1}, []float64{0, 0})
	_, err := m.Predict([]float64{1, 2, 3})
	c.Check(err, check.ErrorMatches, `predict: input has 3 values, model expects 2`)
}

func (s *S) TestNewValidation(c *check.C) {
	_, err := New(nil, nil)
	c.Check(err, check.NotNil)

	// Bias length mismatch.
	_, err = New([]*mat.Dense{mat.NewDense(2, 2, nil)}, [][]float64{{0}})
	c.Check(err, check.NotNil)

	// Layer chaining mismatch.
	_, err = New(
		[]*mat.Dense{mat.NewDense(3, 2, nil), mat.NewDense(2, 4, nil)},
		[][]float64{{0, 0, 0}, {0, 0}},
	)
	c.Check(err, check.NotNil)

	// Single-output head is rejected.
	_, err = New([]*mat.Dense{mat.NewDense(1, 2, nil)}, [][]float64{{0}})
	c.Check(err, check.NotNil)
}

func (s *S) TestNPZRoundTrip(c *check.C) {
	m, err := New(
		[]*mat.Dense{
			mat.NewDense(3, 2, []float64{0.5, -1, 2, 0.25, -0.75, 1.5}),
			mat.NewDense(2, 3, []float64{1, 0, -1, 0.5, 0.5, 0}),
		},
		[][]float64{{0.1, -0.2, 0.3}, {1, -1}},
	)
	c.Assert(err, check.IsNil)

	path := filepath.Join(c.MkDir(), "model.npz")
	c.Assert(WriteNPZ(path, m), check.IsNil)

	got, err := LoadNPZ(path)
	c.Assert(err, check.IsNil)
	c.Check(got.Dim(), check.Equals, 2)

	want, err := m.Predict([]float64{0.5, 1.5})
	c.Assert(err, check.IsNil)
	have, err := got.Predict([]float64{0.5, 1.5})
	c.Assert(err, check.IsNil)
	c.Check(have, check.Equals, want)

	_, err = LoadNPZ(filepath.Join(c.MkDir(), "missing.npz"))
	c.Check(err, check.NotNil)
}
