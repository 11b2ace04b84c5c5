// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// binq-builddb assembles a binq reference database directory from a
// reference marker count matrix and its metadata table. The quality
// model is trained elsewhere and attached as a numpy weight archive.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/binq/binq/predict"
	"github.com/binq/binq/refdb"
)

var (
	countsFile = flag.String("counts", "", "reference marker count matrix, .npy or .npz (required).")
	metaFile   = flag.String("meta", "", "reference metadata CSV (required).")
	modelFile  = flag.String("model", "", "trained model weight archive, .npz. Optional; the database is unusable until one is added.")
	outDir     = flag.String("out", "", "output database directory (required).")

	resolution = flag.Int("resolution", 10, "count-ratio histogram resolution.")
	k          = flag.Int("k", 4, "nearest neighbours per query.")
	frac       = flag.Float64("universal", 0.95, "single-copy fraction required of universal markers.")
	quantile   = flag.Float64("quantile", 0.95, "neighbour-distance quantile for the in-range gate.")
	minComp    = flag.Float64("mincomp", 10, "minimum marker completeness (percent) below which bins are rejected.")
	agreement  = flag.Float64("agreement", 0.5, "neighbour agreement fraction for taxonomy consensus.")

	help = flag.Bool("help", false, "help prints this message.")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *countsFile == "" || *metaFile == "" || *outDir == "" {
		log.Fatal("missing -counts, -meta or -out flag")
	}

	m, err := refdb.ReadDense(*countsFile)
	if err != nil {
		log.Fatalf("failed to read counts %q: %v", *countsFile, err)
	}
	counts := refdb.CountsFromDense(m)

	lineages, err := refdb.ReadMetadataCSV(*metaFile)
	if err != nil {
		log.Fatalf("failed to read metadata %q: %v", *metaFile, err)
	}

	var model *predict.Model
	if *modelFile != "" {
		model, err = predict.LoadNPZ(*modelFile)
		if err != nil {
			log.Fatalf("failed to read model %q: %v", *modelFile, err)
		}
	}

	db, err := refdb.Build(counts, lineages, model, refdb.BuildConfig{
		Resolution:      *resolution,
		K:               *k,
		UniversalFrac:   *frac,
		Quantile:        *quantile,
		MinCompleteness: *minComp,
		Agreement:       *agreement,
	})
	if err != nil {
		log.Fatalf("failed to build database: %v", err)
	}

	if err := refdb.Write(db, *outDir); err != nil {
		log.Fatalf("failed to write database to %q: %v", *outDir, err)
	}

	man := &db.Manifest
	log.Printf("wrote %d references, %d universal bacterial and %d archaeal markers, feature dim %d, max distance %.6f",
		len(db.Features), len(db.Meta.UniversalBac), len(db.Meta.UniversalArc), man.FeatureDim, man.MaxDistance)
	if model == nil {
		log.Printf("no model attached; add %s before serving queries", refdb.ModelFile)
	}
}
