// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refdb

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/binq/binq/refindex"
)

// metadataHeader is the column layout of metadata.csv: identifier,
// quality profile, then the taxonomy from most to least specific.
var metadataHeader = []string{
	"id", "completeness", "contamination",
	"species", "genus", "family", "order", "class", "phylum", "superkingdom",
}

// ReadMetadataCSV reads the reference metadata table. Empty taxonomy
// cells denote missing ranks.
func ReadMetadataCSV(path string) ([]refindex.Lineage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("refdb: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(metadataHeader)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("refdb: %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("refdb: %s: empty metadata table", path)
	}
	for i, name := range metadataHeader {
		if records[0][i] != name {
			return nil, fmt.Errorf("refdb: %s: column %d is %q, want %q", path, i, records[0][i], name)
		}
	}

	lineages := make([]refindex.Lineage, 0, len(records)-1)
	for n, rec := range records[1:] {
		l := refindex.Lineage{ID: rec[0]}
		if l.Completeness, err = strconv.ParseFloat(rec[1], 64); err != nil {
			return nil, fmt.Errorf("refdb: %s: row %d: completeness: %w", path, n+1, err)
		}
		if l.Contamination, err = strconv.ParseFloat(rec[2], 64); err != nil {
			return nil, fmt.Errorf("refdb: %s: row %d: contamination: %w", path, n+1, err)
		}
		copy(l.Ranks[:], rec[3:])
		lineages = append(lineages, l)
	}
	return lineages, nil
}

// WriteMetadataCSV persists the reference metadata table.
func WriteMetadataCSV(path string, lineages []refindex.Lineage) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("refdb: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(metadataHeader); err != nil {
		return fmt.Errorf("refdb: %s: %w", path, err)
	}
	for _, l := range lineages {
		rec := make([]string, 0, len(metadataHeader))
		rec = append(rec,
			l.ID,
			strconv.FormatFloat(l.Completeness, 'f', -1, 64),
			strconv.FormatFloat(l.Contamination, 'f', -1, 64),
		)
		rec = append(rec, l.Ranks[:]...)
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("refdb: %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("refdb: %s: %w", path, err)
	}
	return f.Close()
}
