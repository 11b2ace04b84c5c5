// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// binq estimates completeness and contamination of microbial genome
// bins and predicts a consensus taxonomy, using a reference database
// built by binq-builddb and the UProC toolchain for protein-domain
// detection.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/binq/binq/pfam"
	"github.com/binq/binq/pipeline"
	"github.com/binq/binq/refdb"
)

var (
	dbDir  = flag.String("db", "", "reference database directory (required).")
	inDir  = flag.String("indir", "", "directory of bin files to process; alternative to listing files as arguments.")
	ext    = flag.String("ext", ".fna", "bin file extension used with -indir.")
	outf   = flag.String("out", "", "output file name. Defaults to stdout.")
	asJSON = flag.Bool("json", false, "emit one JSON document per line instead of CSV.")

	orfBin     = flag.String("uproc-orf", "uproc-orf", "path to the uproc-orf binary.")
	protBin    = flag.String("uproc-prot", "uproc-prot", "path to the uproc-prot binary.")
	uprocDB    = flag.String("uproc-db", "", "UProC Pfam database directory (required).")
	uprocModel = flag.String("uproc-model", "", "UProC model directory (required).")
	threads    = flag.Int("threads", 0, "threads for uproc-prot. Defaults to the number of CPUs.")
	timeout    = flag.Duration("timeout", 0, "per-bin timeout, e.g. 10m. Zero means no timeout.")

	help = flag.Bool("help", false, "help prints this message.")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *dbDir == "" {
		log.Fatal("missing -db flag")
	}
	if *uprocDB == "" || *uprocModel == "" {
		log.Fatal("missing -uproc-db or -uproc-model flag")
	}

	bins := flag.Args()
	if *inDir != "" {
		found, err := binsIn(*inDir, *ext)
		if err != nil {
			log.Fatalf("failed to scan %q: %v", *inDir, err)
		}
		bins = append(bins, found...)
	}
	if len(bins) == 0 {
		log.Fatal("no input bins: list files as arguments or use -indir")
	}

	db, err := refdb.Load(*dbDir)
	if err != nil {
		log.Fatalf("failed to load database %q: %v", *dbDir, err)
	}

	runner, err := pipeline.New(db, pfam.UProC{
		ORFBin:  *orfBin,
		ProtBin: *protBin,
		DBDir:   *uprocDB,
		Model:   *uprocModel,
		Threads: *threads,
	})
	if err != nil {
		log.Fatalf("failed to initialise pipeline: %v", err)
	}

	var out *os.File
	if *outf == "" {
		out = os.Stdout
	} else if out, err = os.Create(*outf); err != nil {
		log.Fatalf("failed to open %q: %v", *outf, err)
	}
	defer out.Close()

	var w *csv.Writer
	var enc *json.Encoder
	if *asJSON {
		enc = json.NewEncoder(out)
	} else {
		w = csv.NewWriter(out)
		if err := w.Write(pipeline.CSVHeader); err != nil {
			log.Fatalf("failed to write header: %v", err)
		}
	}

	for _, bin := range bins {
		res, err := run(runner, bin)
		if err != nil {
			var infmt *pfam.InputFormatError
			if errors.As(err, &infmt) {
				log.Printf("skipping %q: %v", bin, err)
				continue
			}
			log.Fatalf("failed to process %q: %v", bin, err)
		}
		if *asJSON {
			err = enc.Encode(res)
		} else {
			err = w.Write(res.CSVRecord())
		}
		if err != nil {
			log.Fatalf("failed to write result for %q: %v", bin, err)
		}
	}
	if w != nil {
		w.Flush()
		if err := w.Error(); err != nil {
			log.Fatalf("failed to flush output: %v", err)
		}
	}
}

func run(r *pipeline.Runner, bin string) (*pipeline.Result, error) {
	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}
	start := time.Now()
	res, err := r.Run(ctx, bin)
	if err != nil {
		return nil, err
	}
	log.Printf("%s: %s in %v", res.BinID, res.Method, time.Since(start).Round(time.Millisecond))
	return res, nil
}

func binsIn(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var bins []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		bins = append(bins, filepath.Join(dir, e.Name()))
	}
	if len(bins) == 0 {
		return nil, fmt.Errorf("no %s files found", ext)
	}
	sort.Strings(bins)
	return bins, nil
}
