// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kmer provides kmer count features as an alternative signal
// source for reference database construction, for collections where
// protein-domain annotation is unavailable.
package kmer

import (
	"fmt"

	"github.com/biogo/biogo/index/kmerindex"
	"github.com/biogo/biogo/seq/linear"
)

// Frequencies returns the kmer count spectrum of a DNA sequence.
func Frequencies(s *linear.Seq, k int) (map[kmerindex.Kmer]int, error) {
	ki, err := kmerindex.New(k, s)
	if err != nil {
		return nil, fmt.Errorf("kmer: %w", err)
	}
	freqs, ok := ki.KmerFrequencies()
	if !ok {
		return nil, fmt.Errorf("kmer: unable to compute frequencies for %q", s.Name())
	}
	return freqs, nil
}

// Vector returns the dense 4^k count vector of a DNA sequence, the
// layout used by count-matrix artifacts.
func Vector(s *linear.Seq, k int) ([]int, error) {
	freqs, err := Frequencies(s, k)
	if err != nil {
		return nil, err
	}
	vec := make([]int, 1<<(2*uint(k)))
	for kmer, n := range freqs {
		vec[int(kmer)] = n
	}
	return vec, nil
}
