// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

import (
	"testing"

	check "gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

const tol = 1e-12

func (s *S) TestEdges(c *check.C) {
	got := Edges(2)
	c.Assert(got, check.HasLen, 2)
	c.Check(got[0], check.Equals, 0.75)
	c.Check(got[1]-4.0/3.0 < tol && got[1]-4.0/3.0 > -tol, check.Equals, true)

	// Edges must be sorted and symmetric around 1.
	for _, res := range []int{2, 5, 10} {
		e := Edges(res)
		for i := 1; i < len(e); i++ {
			c.Assert(e[i] > e[i-1], check.Equals, true,
				check.Commentf("resolution %d: edges not increasing at %d", res, i))
		}
		for i := range e {
			prod := e[i] * e[len(e)-1-i]
			c.Check(prod-1 < 1e-9 && prod-1 > -1e-9, check.Equals, true,
				check.Commentf("resolution %d: edge %d not mirrored", res, i))
		}
	}
}

func testMeta() *Meta {
	return &Meta{
		Edges: Edges(2),
		Groups: []Group{
			{Name: "universal_bacteria", Markers: []int{0, 1, 2}, Expected: 1},
			{Name: "universal_archaea", Markers: []int{3, 4}, Expected: 1},
		},
		UniversalBac: []int{0, 1, 2},
		UniversalArc: []int{3, 4},
	}
}

func (s *S) TestBuildEstimate(c *check.C) {
	meta := testMeta()
	for i, t := range []struct {
		counts     []uint8
		comp, cont float64
	}{
		{counts: []uint8{1, 1, 1, 0, 0}, comp: 100, cont: 0},
		{counts: []uint8{1, 0, 1, 0, 0}, comp: 100 * 2 / 3.0, cont: 0},
		{counts: []uint8{2, 1, 1, 0, 0}, comp: 100, cont: 100 / 3.0},
		{counts: []uint8{0, 0, 0, 1, 1}, comp: 100, cont: 0}, // archaeal set wins
		{counts: []uint8{0, 0, 0, 0, 0}, comp: 0, cont: 0},
	} {
		est, vec := Build(t.counts, meta)
		cm := check.Commentf("test %d", i)
		c.Check(est.Completeness, check.Equals, t.comp, cm)
		c.Check(est.Contamination, check.Equals, t.cont, cm)
		c.Check(est.Completeness >= 0 && est.Completeness <= 100, check.Equals, true, cm)
		c.Check(est.Contamination >= 0, check.Equals, true, cm)
		c.Check(vec, check.HasLen, meta.Dim(), cm)
	}
}

func (s *S) TestBuildHistogram(c *check.C) {
	meta := testMeta()

	_, vec := Build([]uint8{1, 0, 2, 0, 0}, meta)
	c.Assert(vec, check.HasLen, 8)
	want := Vector{1 / 3.0, 0, 1 / 3.0, 1 / 3.0, 1, 0, 0, 0}
	for i := range want {
		d := vec[i] - want[i]
		c.Check(d < tol && d > -tol, check.Equals, true, check.Commentf("bin %d: got %v want %v", i, vec[i], want[i]))
	}

	// A group with no observed marker keeps all mass in its absent bin.
	absent := vec[4:]
	c.Check(absent[0], check.Equals, 1.0)
	for _, v := range absent[1:] {
		c.Check(v, check.Equals, 0.0)
	}
}

func (s *S) TestBuildDeterministic(c *check.C) {
	meta := testMeta()
	counts := []uint8{2, 1, 0, 3, 1}
	est1, vec1 := Build(counts, meta)
	est2, vec2 := Build(counts, meta)
	c.Check(est1, check.Equals, est2)
	c.Check(vec1, check.DeepEquals, vec2)
}

func (s *S) TestVectorLengthConstant(c *check.C) {
	meta := testMeta()
	for _, counts := range [][]uint8{
		{0, 0, 0, 0, 0},
		{1, 1, 1, 1, 1},
		{255, 255, 255, 255, 255},
		{0, 3, 0, 7, 0},
	} {
		_, vec := Build(counts, meta)
		c.Check(vec, check.HasLen, meta.Dim())
	}
}
