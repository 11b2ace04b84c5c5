// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

import "sort"

// Edges returns the canonical count-ratio histogram bin boundaries for a
// resolution. Boundaries sit halfway between the distinct ratios i/j
// representable with counts up to resolution, mirrored around 1 for
// ratios above one. Databases persist the result so that retrained
// models with other schemes keep working; Edges exists for builders and
// for verifying persisted metadata.
func Edges(resolution int) []float64 {
	m := resolution + 1
	var ratios []float64
	for i := 1; i < m; i++ {
		for j := i; j < m; j++ {
			ratios = append(ratios, float64(i)/float64(j))
		}
	}
	sort.Float64s(ratios)

	uniq := ratios[:0]
	for i, r := range ratios {
		if i == 0 || r != uniq[len(uniq)-1] {
			uniq = append(uniq, r)
		}
	}

	// Half-way boundaries, dropping pairs too close to form a bin of
	// their own.
	var half []float64
	for i := 0; i+1 < len(uniq); i++ {
		if uniq[i+1]-uniq[i] > 1e-8 {
			half = append(half, (uniq[i+1]+uniq[i])/2)
		}
	}

	edges := make([]float64, 0, 2*len(half))
	edges = append(edges, half...)
	for i := len(half) - 1; i >= 0; i-- {
		edges = append(edges, 1/half[i])
	}
	return edges
}
