// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline sequences marker extraction, feature building, the
// reference index and the quality predictor into the staged estimation
// process, and owns the stage decision: lower components are
// stage-agnostic.
//
// A Runner is built from a loaded database and is safe for concurrent
// use; queries must not be accepted before construction completes.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/binq/binq/binstats"
	"github.com/binq/binq/feature"
	"github.com/binq/binq/pfam"
	"github.com/binq/binq/predict"
	"github.com/binq/binq/refdb"
	"github.com/binq/binq/refindex"
)

// Stage is the terminal outcome of a query, reflecting how much of the
// prediction machinery was applicable.
type Stage int

const (
	// StageRejected marks bins whose marker signal is too sparse for
	// any estimate to be meaningful.
	StageRejected Stage = iota + 1
	// StageMarkersOnly marks bins estimated from single-copy markers
	// alone because the query lies outside the model's trained range.
	StageMarkersOnly
	// StageMarkersPlusModel marks bins whose estimate was refined by
	// the learned model.
	StageMarkersPlusModel
)

// String returns the method name reported for the stage.
func (s Stage) String() string {
	switch s {
	case StageRejected:
		return "rejected"
	case StageMarkersOnly:
		return "markers"
	case StageMarkersPlusModel:
		return "markers + model"
	}
	return "unknown"
}

// A Result is the externally visible outcome of one query. Stage
// determines which estimate populated Completeness and Contamination;
// the per-stage diagnostics are always carried.
type Result struct {
	BinID  string `json:"bin_id"`
	Stage  Stage  `json:"stage"`
	Method string `json:"method"`

	Completeness  float64 `json:"completeness"`
	Contamination float64 `json:"contamination"`

	Taxonomy           string  `json:"taxonomy"`
	TaxonomyRank       string  `json:"taxonomy_rank"`
	TaxonomyConfidence float64 `json:"taxonomy_confidence"`

	KNNScore   float64 `json:"knn_score"`
	CountRatio float64 `json:"count_ratio"`

	Marker   feature.MarkerEstimate `json:"marker_estimate"`
	Refined  *predict.Estimate      `json:"refined_estimate,omitempty"`
	Assembly binstats.Stats         `json:"assembly"`
	Notes    string                 `json:"notes,omitempty"`
}

// CSVHeader is the column layout of Result.CSVRecord.
var CSVHeader = []string{
	"bin_id", "completeness", "contamination", "stage", "method",
	"taxonomy", "taxonomy_rank", "taxonomy_confidence", "knn_score", "count_ratio", "notes",
}

// CSVRecord renders the result as a CSV record matching CSVHeader.
func (r *Result) CSVRecord() []string {
	return []string{
		r.BinID,
		strconv.FormatFloat(r.Completeness, 'f', 4, 64),
		strconv.FormatFloat(r.Contamination, 'f', 4, 64),
		strconv.Itoa(int(r.Stage)),
		r.Method,
		r.Taxonomy,
		r.TaxonomyRank,
		strconv.FormatFloat(r.TaxonomyConfidence, 'f', 2, 64),
		strconv.FormatFloat(r.KNNScore, 'f', 4, 64),
		strconv.FormatFloat(r.CountRatio, 'f', 6, 64),
		r.Notes,
	}
}

// A Runner executes queries against a loaded database.
type Runner struct {
	db      *refdb.Database
	index   *refindex.Index
	counter *pfam.Counter
}

// New builds a Runner. The database must carry a model; the reference
// index is constructed here so that a returned Runner is always ready.
func New(db *refdb.Database, caller pfam.MarkerCaller) (*Runner, error) {
	if db == nil {
		return nil, fmt.Errorf("pipeline: nil database")
	}
	if db.Model == nil {
		return nil, fmt.Errorf("pipeline: database has no model")
	}
	man := &db.Manifest
	index, err := refindex.New(db.Features, db.Lineages, man.K, man.MaxDistance, man.Agreement)
	if err != nil {
		return nil, err
	}
	return &Runner{
		db:      db,
		index:   index,
		counter: &pfam.Counter{Caller: caller, Vocab: man.Vocab},
	}, nil
}

// Run processes the bin at path through the staged pipeline.
//
// The transition order is fixed: a bin whose marker completeness falls
// below the manifest threshold terminates at StageRejected before any
// histogram or model work; otherwise the result is StageMarkersOnly,
// upgraded to StageMarkersPlusModel only when the reference index
// reports the query within the model's trained range. A bin with no
// detectable markers is a StageRejected result with zero completeness,
// not an error. All other failures are returned as typed errors.
func (r *Runner) Run(ctx context.Context, path string) (*Result, error) {
	counts, err := r.counter.Count(ctx, path)
	if err != nil {
		var empty *pfam.EmptyResultError
		if errors.As(err, &empty) {
			return &Result{
				BinID:  empty.Bin,
				Stage:  StageRejected,
				Method: StageRejected.String(),
				Notes:  "no markers detected",
			}, nil
		}
		return nil, err
	}

	est, vec := feature.Build(counts.Counts, &r.db.Meta)
	res := &Result{
		BinID:         pfam.BinID(path),
		Stage:         StageRejected,
		Marker:        est,
		Assembly:      counts.Stats,
		CountRatio:    counts.CountRatio(),
		Completeness:  est.Completeness,
		Contamination: est.Contamination,
	}

	if est.Completeness < r.db.Manifest.MinCompleteness {
		res.Method = res.Stage.String()
		res.Notes = "completeness below model threshold"
		return res, nil
	}

	nb, err := r.index.Nearest(vec)
	if err != nil {
		return nil, err
	}
	tax := r.index.Consensus(nb)
	res.Stage = StageMarkersOnly
	res.Taxonomy = tax.Label
	res.TaxonomyRank = tax.Rank
	res.TaxonomyConfidence = tax.Agreement
	res.KNNScore = nb.Score

	if nb.InRange {
		refined, err := r.db.Model.Predict(vec)
		if err != nil {
			return nil, err
		}
		res.Stage = StageMarkersPlusModel
		res.Refined = &refined
		res.Completeness = refined.Completeness
		res.Contamination = refined.Contamination
	}

	res.Method = res.Stage.String()
	return res, nil
}
