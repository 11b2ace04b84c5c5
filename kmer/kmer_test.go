// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kmer

import (
	"testing"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/index/kmerindex"
	"github.com/biogo/biogo/seq/linear"
	check "gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

func (s *S) SetUpSuite(c *check.C) {
	// Allow short words for the tests.
	kmerindex.MinKmerLen = 2
}

func dna(id, s string) *linear.Seq {
	return linear.NewSeq(id, alphabet.BytesToLetters([]byte(s)), alphabet.DNA)
}

func (s *S) TestFrequencies(c *check.C) {
	freqs, err := Frequencies(dna("t", "ACGTACGT"), 2)
	c.Assert(err, check.IsNil)

	var total int
	for _, n := range freqs {
		total += n
	}
	// A sequence of length 8 has 7 overlapping 2-mers.
	c.Check(total, check.Equals, 7)
}

func (s *S) TestVector(c *check.C) {
	vec, err := Vector(dna("t", "ACGTACGT"), 2)
	c.Assert(err, check.IsNil)
	c.Assert(vec, check.HasLen, 16)

	var total int
	for _, n := range vec {
		total += n
	}
	c.Check(total, check.Equals, 7)
}
