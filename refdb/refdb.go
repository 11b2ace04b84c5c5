// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package refdb loads and builds the persisted reference database: the
// feature vectors, taxonomy and quality profiles of the reference genome
// collection, the feature metadata (histogram bin edges, marker groups,
// universal marker sets), the trained model, and the thresholds that
// drive stage selection. A Database is loaded once at process start and
// is read-only afterwards, so it may be shared freely across concurrent
// queries.
package refdb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/binq/binq/feature"
	"github.com/binq/binq/predict"
	"github.com/binq/binq/refindex"
)

// Artifact file names within a database directory.
const (
	ManifestFile  = "manifest.json"
	FeaturesFile  = "features.npy"
	MetadataFile  = "metadata.csv"
	UniversalBac  = "universal_bacteria.npy"
	UniversalArc  = "universal_archaea.npy"
	ModelFile    = "model.npz"
)

// Manifest is the persisted database metadata. Every threshold the
// pipeline uses comes from here; none is hardcoded, so retrained models
// ship their own operating parameters.
type Manifest struct {
	Version    int `json:"version"`
	Vocab      int `json:"vocab_size"`
	Resolution int `json:"resolution"`
	FeatureDim int `json:"feature_dim"`

	Edges  []float64       `json:"edges"`
	Groups []feature.Group `json:"groups"`

	K               int     `json:"k"`
	MinCompleteness float64 `json:"min_completeness"` // percent; stage-1 rejection gate
	MaxDistance     float64 `json:"max_distance"`     // in-range gate on mean neighbour distance
	Agreement       float64 `json:"agreement"`        // taxonomy consensus fraction
}

// A Database is the in-memory form of a reference database directory.
type Database struct {
	Manifest Manifest
	Meta     feature.Meta
	Features [][]float64
	Lineages []refindex.Lineage
	Model    *predict.Model
}

// Load reads a database directory. It validates internal consistency:
// feature dimensionality against the manifest and the model, row counts
// against the metadata table, and marker indices against the vocabulary.
func Load(dir string) (*Database, error) {
	var db Database

	mf, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("refdb: %w", err)
	}
	if err := json.Unmarshal(mf, &db.Manifest); err != nil {
		return nil, fmt.Errorf("refdb: %s: %w", ManifestFile, err)
	}
	man := &db.Manifest
	if man.Vocab < 1 || man.K < 1 {
		return nil, fmt.Errorf("refdb: %s: invalid vocab_size=%d k=%d", ManifestFile, man.Vocab, man.K)
	}
	if len(man.Edges) == 0 {
		// Older databases persist only the resolution.
		man.Edges = feature.Edges(man.Resolution)
	}

	ub, err := readInts(filepath.Join(dir, UniversalBac))
	if err != nil {
		return nil, err
	}
	ua, err := readInts(filepath.Join(dir, UniversalArc))
	if err != nil {
		return nil, err
	}
	db.Meta = feature.Meta{
		Edges:        man.Edges,
		Groups:       man.Groups,
		UniversalBac: ub,
		UniversalArc: ua,
	}
	for _, g := range man.Groups {
		for _, m := range g.Markers {
			if m < 0 || m >= man.Vocab {
				return nil, fmt.Errorf("refdb: group %q: marker %d outside vocabulary of %d", g.Name, m, man.Vocab)
			}
		}
	}
	if man.FeatureDim == 0 {
		man.FeatureDim = db.Meta.Dim()
	}
	if got := db.Meta.Dim(); got != man.FeatureDim {
		return nil, fmt.Errorf("refdb: metadata implies feature dim %d, manifest declares %d", got, man.FeatureDim)
	}

	db.Features, err = readMatrix(filepath.Join(dir, FeaturesFile))
	if err != nil {
		return nil, err
	}
	for i, f := range db.Features {
		if len(f) != man.FeatureDim {
			return nil, fmt.Errorf("refdb: reference %d: feature dim %d, want %d", i, len(f), man.FeatureDim)
		}
	}

	db.Lineages, err = ReadMetadataCSV(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, err
	}
	if len(db.Lineages) != len(db.Features) {
		return nil, fmt.Errorf("refdb: %d metadata rows for %d reference vectors", len(db.Lineages), len(db.Features))
	}

	db.Model, err = predict.LoadNPZ(filepath.Join(dir, ModelFile))
	if err != nil {
		return nil, err
	}
	if db.Model.Dim() != man.FeatureDim {
		return nil, fmt.Errorf("refdb: model expects %d inputs, database provides %d", db.Model.Dim(), man.FeatureDim)
	}

	return &db, nil
}

// Write persists a database to dir, creating it if necessary. The model
// is written only when present; builders without a trained model leave
// the directory incomplete until one is added.
func Write(db *Database, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("refdb: %w", err)
	}

	mf, err := json.MarshalIndent(db.Manifest, "", "\t")
	if err != nil {
		return fmt.Errorf("refdb: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), append(mf, '\n'), 0o644); err != nil {
		return fmt.Errorf("refdb: %w", err)
	}

	if err := writeMatrix(filepath.Join(dir, FeaturesFile), db.Features); err != nil {
		return err
	}
	if err := writeInts(filepath.Join(dir, UniversalBac), db.Meta.UniversalBac); err != nil {
		return err
	}
	if err := writeInts(filepath.Join(dir, UniversalArc), db.Meta.UniversalArc); err != nil {
		return err
	}
	if err := WriteMetadataCSV(filepath.Join(dir, MetadataFile), db.Lineages); err != nil {
		return err
	}
	if db.Model != nil {
		if err := predict.WriteNPZ(filepath.Join(dir, ModelFile), db.Model); err != nil {
			return err
		}
	}
	return nil
}
