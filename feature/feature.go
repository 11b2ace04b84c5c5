// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package feature converts marker count vectors into the numeric
// representations used by the estimation pipeline: the classical
// single-copy-marker estimate and the count-ratio histogram feature
// vector consumed by the reference index and the learned model.
//
// All functions are pure and deterministic; the binning scheme is
// defined entirely by the persisted database metadata.
package feature

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// A Group is a set of markers sharing an expected per-genome copy count.
// Count ratios are taken relative to Expected.
type Group struct {
	Name     string  `json:"name"`
	Markers  []int   `json:"markers"`
	Expected float64 `json:"expected"`
}

// Meta is the feature metadata persisted with a reference database: the
// histogram bin edges, the marker groups in model order, and the
// universal single-copy marker sets used for the marker estimate.
type Meta struct {
	Edges        []float64 `json:"edges"`
	Groups       []Group   `json:"groups"`
	UniversalBac []int     `json:"universal_bacteria"`
	UniversalArc []int     `json:"universal_archaea"`
}

// Dim returns the feature vector length implied by the metadata. Each
// group contributes one histogram of len(Edges)+1 ratio bins plus a
// designated absent bin.
func (m *Meta) Dim() int {
	return len(m.Groups) * (len(m.Edges) + 2)
}

// MarkerEstimate is the classical completeness/contamination estimate
// derived from single-copy marker presence and duplication, in percent.
type MarkerEstimate struct {
	Completeness  float64 `json:"completeness"`
	Contamination float64 `json:"contamination"`
}

// Vector is a histogram feature vector. Its length is fixed by the
// metadata and matches the trained model's input dimensionality.
type Vector []float64

// Build derives the marker estimate and histogram feature vector of a
// count vector. Both universal marker sets are evaluated and the one
// reporting the higher completeness wins, so archaeal genomes are not
// penalised by the bacterial marker set and vice versa.
func Build(counts []uint8, meta *Meta) (MarkerEstimate, Vector) {
	bac := estimate(counts, meta.UniversalBac)
	arc := estimate(counts, meta.UniversalArc)
	est := bac
	if arc.Completeness > bac.Completeness {
		est = arc
	}
	return est, histogram(counts, meta)
}

func estimate(counts []uint8, universal []int) MarkerEstimate {
	if len(universal) == 0 {
		return MarkerEstimate{}
	}
	var present, excess int
	for _, i := range universal {
		if i < 0 || i >= len(counts) {
			continue
		}
		if c := counts[i]; c > 0 {
			present++
			excess += int(c) - 1
		}
	}
	n := float64(len(universal))
	return MarkerEstimate{
		Completeness:  100 * float64(present) / n,
		Contamination: 100 * float64(excess) / n,
	}
}

// histogram bins each group's observed/expected count ratios using the
// persisted edges. Bin 0 of every group is the absent bin; a group with
// no marker observed keeps all its mass there, so the vector length
// never varies with input.
func histogram(counts []uint8, meta *Meta) Vector {
	nb := len(meta.Edges) + 2
	vec := make(Vector, 0, meta.Dim())
	for _, g := range meta.Groups {
		h := make([]float64, nb)
		for _, m := range g.Markers {
			if m < 0 || m >= len(counts) {
				continue
			}
			c := float64(counts[m])
			if c == 0 || g.Expected <= 0 {
				h[0]++
				continue
			}
			h[1+sort.SearchFloat64s(meta.Edges, c/g.Expected)]++
		}
		if sum := floats.Sum(h); sum > 0 {
			floats.Scale(1/sum, h)
		}
		vec = append(vec, h...)
	}
	return vec
}
