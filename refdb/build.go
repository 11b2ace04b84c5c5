// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refdb

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/binq/binq/feature"
	"github.com/binq/binq/predict"
	"github.com/binq/binq/refindex"
)

// BuildConfig holds the knobs of database construction. Model training
// itself is out of scope; Build only assembles artifacts around a model
// trained elsewhere.
type BuildConfig struct {
	Resolution      int     // histogram resolution, default 10
	K               int     // neighbours per query, default 4
	UniversalFrac   float64 // single-copy fraction for universal markers, default 0.95
	Quantile        float64 // neighbour-distance quantile for the in-range gate, default 0.95
	MinCompleteness float64 // percent; stage-1 rejection gate, default 10
	Agreement       float64 // taxonomy consensus fraction, default 0.5
}

func (c *BuildConfig) setDefaults() {
	if c.Resolution == 0 {
		c.Resolution = 10
	}
	if c.K == 0 {
		c.K = 4
	}
	if c.UniversalFrac == 0 {
		c.UniversalFrac = 0.95
	}
	if c.Quantile == 0 {
		c.Quantile = 0.95
	}
	if c.MinCompleteness == 0 {
		c.MinCompleteness = 10
	}
	if c.Agreement == 0 {
		c.Agreement = 0.5
	}
}

// Build assembles a Database from a reference marker count matrix and
// the matching metadata rows. The in-range distance threshold is the
// configured quantile of the leave-one-out mean neighbour distances
// observed within the reference collection, so it reflects the density
// of the region the model was validated on. model may be nil during
// staged builds.
func Build(counts [][]uint8, lineages []refindex.Lineage, model *predict.Model, cfg BuildConfig) (*Database, error) {
	cfg.setDefaults()
	if len(counts) == 0 {
		return nil, fmt.Errorf("refdb: no reference count vectors")
	}
	if len(counts) != len(lineages) {
		return nil, fmt.Errorf("refdb: %d count vectors for %d metadata rows", len(counts), len(lineages))
	}
	vocab := len(counts[0])
	for i, row := range counts {
		if len(row) != vocab {
			return nil, fmt.Errorf("refdb: ragged count row %d", i)
		}
	}

	ub := universal(counts, lineages, "Bacteria", cfg.UniversalFrac)
	ua := universal(counts, lineages, "Archaea", cfg.UniversalFrac)
	if len(ub) == 0 && len(ua) == 0 {
		return nil, fmt.Errorf("refdb: no universal markers at fraction %v", cfg.UniversalFrac)
	}

	meta := feature.Meta{
		Edges: feature.Edges(cfg.Resolution),
		Groups: []feature.Group{
			{Name: "universal_bacteria", Markers: ub, Expected: 1},
			{Name: "universal_archaea", Markers: ua, Expected: 1},
		},
		UniversalBac: ub,
		UniversalArc: ua,
	}

	features := make([][]float64, len(counts))
	for i, row := range counts {
		_, vec := feature.Build(row, &meta)
		features[i] = vec
	}

	maxDist, err := rangeThreshold(features, lineages, cfg.K, cfg.Quantile)
	if err != nil {
		return nil, err
	}

	if model != nil && model.Dim() != meta.Dim() {
		return nil, fmt.Errorf("refdb: model expects %d inputs, features have %d", model.Dim(), meta.Dim())
	}

	return &Database{
		Manifest: Manifest{
			Version:         1,
			Vocab:           vocab,
			Resolution:      cfg.Resolution,
			FeatureDim:      meta.Dim(),
			Edges:           meta.Edges,
			Groups:          meta.Groups,
			K:               cfg.K,
			MinCompleteness: cfg.MinCompleteness,
			MaxDistance:     maxDist,
			Agreement:       cfg.Agreement,
		},
		Meta:     meta,
		Features: features,
		Lineages: lineages,
		Model:    model,
	}, nil
}

// universal returns the markers occurring exactly once in at least frac
// of the references belonging to the given superkingdom.
func universal(counts [][]uint8, lineages []refindex.Lineage, superkingdom string, frac float64) []int {
	var rows []int
	for i, l := range lineages {
		if l.Ranks[refindex.NumRanks-1] == superkingdom {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	var markers []int
	for j := 0; j < len(counts[0]); j++ {
		single := 0
		for _, i := range rows {
			if counts[i][j] == 1 {
				single++
			}
		}
		if float64(single)/float64(len(rows)) >= frac {
			markers = append(markers, j)
		}
	}
	return markers
}

// rangeThreshold computes the in-range gate: the quantile of the mean
// distance from each reference to its k nearest other references.
func rangeThreshold(features [][]float64, lineages []refindex.Lineage, k int, quantile float64) (float64, error) {
	kk := k + 1 // self is always the nearest hit
	if kk > len(features) {
		kk = len(features)
	}
	idx, err := refindex.New(features, lineages, kk, 0, 0)
	if err != nil {
		return 0, err
	}

	scores := make([]float64, 0, len(features))
	for i, f := range features {
		nb, err := idx.Nearest(f)
		if err != nil {
			return 0, err
		}
		var (
			sum float64
			n   int
		)
		for _, h := range nb.Hits {
			if h.Index == i {
				continue
			}
			sum += h.Dist
			n++
		}
		if n > 0 {
			scores = append(scores, sum/float64(n))
		}
	}
	if len(scores) == 0 {
		return 0, fmt.Errorf("refdb: too few references to calibrate the in-range threshold")
	}
	sort.Float64s(scores)
	return stat.Quantile(quantile, stat.Empirical, scores, nil), nil
}

// CountsFromDense converts a dense count matrix, as read from numpy
// artifacts, to count rows saturating at 255.
func CountsFromDense(m *mat.Dense) [][]uint8 {
	r, c := m.Dims()
	rows := make([][]uint8, r)
	for i := 0; i < r; i++ {
		row := make([]uint8, c)
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			switch {
			case v <= 0:
				row[j] = 0
			case v >= 255:
				row[j] = 255
			default:
				row[j] = uint8(v)
			}
		}
		rows[i] = row
	}
	return rows
}
