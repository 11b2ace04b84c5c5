// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package refindex provides a nearest-neighbour index over the histogram
// feature vectors of a reference genome collection. It answers two
// questions about a query vector: which references it resembles, used
// for taxonomy consensus, and whether it lies within the trained model's
// operating range. An Index is immutable once built and safe for
// concurrent use.
package refindex

import (
	"fmt"
	"math"
	"sort"

	"github.com/biogo/store/kdtree"
)

// NumRanks is the number of taxonomic ranks carried per reference.
const NumRanks = 7

// RankNames lists the ranks from most specific to least specific, the
// order in which consensus is attempted.
var RankNames = [NumRanks]string{"species", "genus", "family", "order", "class", "phylum", "superkingdom"}

// Unknown is the taxonomy label reported when no rank reaches consensus.
const Unknown = "unknown"

// A Lineage is the taxonomy and known quality profile of one reference
// genome.
type Lineage struct {
	ID            string
	Ranks         [NumRanks]string // species first; empty strings for missing ranks
	Completeness  float64
	Contamination float64
}

// A Neighbor is one reference returned by a nearest-neighbour query.
type Neighbor struct {
	ID    string
	Index int // row in the reference collection
	Dist  float64
}

// Neighbors is the result of a nearest-neighbour query: the hits ordered
// by increasing distance, their mean distance, and whether that score
// falls within the trained operating range.
type Neighbors struct {
	Hits    []Neighbor
	Score   float64
	InRange bool
}

// Taxonomy is a consensus classification with its agreement measure.
type Taxonomy struct {
	Label     string  `json:"label"`
	Rank      string  `json:"rank"`
	Agreement float64 `json:"agreement"`
}

// IndexNotLoadedError is returned when an Index is queried before being
// built. It indicates a deployment or programming error.
type IndexNotLoadedError struct{}

func (IndexNotLoadedError) Error() string { return "refindex: index not loaded" }

// DimensionMismatchError is returned when a query vector's length
// disagrees with the indexed dimensionality.
type DimensionMismatchError struct {
	Want, Got int
}

func (e DimensionMismatchError) Error() string {
	return fmt.Sprintf("refindex: dimension mismatch: index has %d, query has %d", e.Want, e.Got)
}

// An Index holds the reference feature vectors in a kd-tree together
// with the persisted query parameters.
type Index struct {
	tree     *kdtree.Tree
	lineages []Lineage

	dim       int
	k         int
	maxDist   float64 // in-range gate on the mean neighbour distance
	agreement float64 // fraction of neighbours required for rank consensus
}

// New builds an Index over the reference feature vectors. The slices
// features and lineages correspond row for row. The parameters k,
// maxDist and agreement come from the database manifest.
func New(features [][]float64, lineages []Lineage, k int, maxDist, agreement float64) (*Index, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("refindex: no reference vectors")
	}
	if len(features) != len(lineages) {
		return nil, fmt.Errorf("refindex: %d feature vectors for %d lineages", len(features), len(lineages))
	}
	if k < 1 {
		return nil, fmt.Errorf("refindex: invalid k=%d", k)
	}
	dim := len(features[0])
	pts := make(refPoints, len(features))
	for i, f := range features {
		if len(f) != dim {
			return nil, DimensionMismatchError{Want: dim, Got: len(f)}
		}
		pts[i] = refPoint{Point: kdtree.Point(f), id: i}
	}
	return &Index{
		tree:      kdtree.New(pts, true),
		lineages:  lineages,
		dim:       dim,
		k:         k,
		maxDist:   maxDist,
		agreement: agreement,
	}, nil
}

// Dim returns the indexed dimensionality.
func (x *Index) Dim() int { return x.dim }

// Nearest returns the k nearest references to vec under Euclidean
// distance, their mean distance, and the in-range flag.
func (x *Index) Nearest(vec []float64) (*Neighbors, error) {
	if x == nil || x.tree == nil {
		return nil, IndexNotLoadedError{}
	}
	if len(vec) != x.dim {
		return nil, DimensionMismatchError{Want: x.dim, Got: len(vec)}
	}

	keep := kdtree.NewNKeeper(x.k)
	x.tree.NearestSet(keep, refPoint{Point: kdtree.Point(vec), id: -1})

	nb := &Neighbors{}
	for _, cd := range keep.Heap {
		if cd.Comparable == nil || math.IsInf(cd.Dist, 1) {
			continue
		}
		p := cd.Comparable.(refPoint)
		nb.Hits = append(nb.Hits, Neighbor{
			ID:    x.lineages[p.id].ID,
			Index: p.id,
			Dist:  math.Sqrt(cd.Dist), // kdtree distances are squared
		})
	}
	sort.Slice(nb.Hits, func(i, j int) bool { return nb.Hits[i].Dist < nb.Hits[j].Dist })
	if len(nb.Hits) == 0 {
		return nb, nil
	}

	for _, h := range nb.Hits {
		nb.Score += h.Dist
	}
	nb.Score /= float64(len(nb.Hits))
	nb.InRange = nb.Score <= x.maxDist

	return nb, nil
}

// Consensus derives a taxonomy from a neighbour set: at each rank from
// most specific to least specific, the majority label is accepted if it
// is shared by at least the agreement fraction of the neighbours.
// Missing labels do not vote. If no rank qualifies the result is
// Unknown with zero agreement.
func (x *Index) Consensus(nb *Neighbors) Taxonomy {
	if x == nil || nb == nil || len(nb.Hits) == 0 {
		return Taxonomy{Label: Unknown}
	}
	for r := 0; r < NumRanks; r++ {
		votes := make(map[string]int)
		for _, h := range nb.Hits {
			if l := x.lineages[h.Index].Ranks[r]; l != "" {
				votes[l]++
			}
		}
		var (
			best string
			n    int
		)
		for l, v := range votes {
			if v > n || (v == n && l < best) {
				best, n = l, v
			}
		}
		if n == 0 {
			continue
		}
		if agree := float64(n) / float64(len(nb.Hits)); agree >= x.agreement {
			return Taxonomy{Label: best, Rank: RankNames[r], Agreement: agree}
		}
	}
	return Taxonomy{Label: Unknown}
}

// Lineage returns the lineage of reference row i.
func (x *Index) Lineage(i int) Lineage { return x.lineages[i] }
