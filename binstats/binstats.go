// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package binstats provides summary statistics of genome assembly bins.
package binstats

import "sort"

// Stats contains the statistics of a bin, all sequence lengths are
// given in base pair.
type Stats struct {
	Name      string `json:"name"`
	Sequences int    `json:"sequences"`
	Size      int    `json:"size"`
	Min       int    `json:"min"`
	Max       int    `json:"max"`
	Avg       int    `json:"avg"`
	N50       int    `json:"n50"`
}

// Collect computes bin statistics from the set of contig lengths.
func Collect(name string, lengths []int) Stats {
	s := Stats{Name: name, Sequences: len(lengths)}
	if len(lengths) == 0 {
		return s
	}

	seqlens := make([]int, len(lengths))
	copy(seqlens, lengths)

	s.Min, s.Max = seqlens[0], seqlens[0]
	for _, l := range seqlens {
		s.Size += l
		if l < s.Min {
			s.Min = l
		}
		if l > s.Max {
			s.Max = l
		}
	}

	// sort descending order of lengths
	sort.Sort(sort.Reverse(sort.IntSlice(seqlens)))
	csum := 0
	for _, l := range seqlens {
		csum += l
		if csum >= (s.Size+1)/2 {
			s.N50 = l
			break
		}
	}
	s.Avg = s.Size / s.Sequences

	return s
}
