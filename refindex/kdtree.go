// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refindex

import "github.com/biogo/store/kdtree"

// refPoint associates a feature vector with its reference row so that
// query results can be mapped back to lineages.
type refPoint struct {
	kdtree.Point
	id int
}

func (p refPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(refPoint)
	return p.Point[d] - q.Point[d]
}

func (p refPoint) Dims() int { return len(p.Point) }

func (p refPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(refPoint)
	return p.Point.Distance(q.Point)
}

type refPoints []refPoint

func (p refPoints) Index(i int) kdtree.Comparable        { return p[i] }
func (p refPoints) Len() int                             { return len(p) }
func (p refPoints) Pivot(d kdtree.Dim) int               { return plane{refPoints: p, Dim: d}.Pivot() }
func (p refPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane is a helper for partitioning refPoints along a dimension.
type plane struct {
	kdtree.Dim
	refPoints
}

func (p plane) Less(i, j int) bool {
	return p.refPoints[i].Point[p.Dim] < p.refPoints[j].Point[p.Dim]
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.refPoints = p.refPoints[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.refPoints[i], p.refPoints[j] = p.refPoints[j], p.refPoints[i]
}
