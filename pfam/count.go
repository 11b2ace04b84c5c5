// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pfam extracts protein-domain marker counts from genome bins.
//
// A bin is a multi-FASTA file of nucleotide contigs. The package streams
// the bin through an external marker caller and tallies per-marker hit
// counts over a fixed marker vocabulary.
package pfam

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/binq/binq/binstats"
)

// Counts saturate at maxCount, the count matrix storage convention.
const maxCount = 255

// Counts holds the per-marker occurrence counts of a single bin, together
// with the total number of hits and the bin's assembly statistics. It is
// created once per query and not mutated afterwards.
type Counts struct {
	Counts []uint8 // len is the vocabulary size
	Hits   int
	Stats  binstats.Stats
}

// CountRatio returns the number of marker hits per base of assembly,
// a coarse coding-density diagnostic.
func (c *Counts) CountRatio() float64 {
	if c.Stats.Size == 0 {
		return 0
	}
	return float64(c.Hits) / float64(c.Stats.Size)
}

// A Counter extracts marker counts from bins using a MarkerCaller.
// The zero Counter is not usable.
type Counter struct {
	Caller MarkerCaller
	Vocab  int // marker vocabulary size, from the database manifest
}

// Count reads the nucleotide FASTA bin at path, validates it, and returns
// its marker count vector.
//
// Count writes a normalised copy of the bin to a scoped temporary
// directory for the marker caller; the directory is removed on all exit
// paths. It returns an InputFormatError for unparseable or empty input,
// an EmptyResultError when no marker is detected, and passes through
// ExternalToolErrors from the caller.
func (c *Counter) Count(ctx context.Context, path string) (*Counts, error) {
	if c.Caller == nil || c.Vocab < 1 {
		return nil, fmt.Errorf("pfam: misconfigured counter")
	}

	tmp, err := os.MkdirTemp("", "binq-bin-")
	if err != nil {
		return nil, fmt.Errorf("pfam: %w", err)
	}
	defer os.RemoveAll(tmp)

	norm := filepath.Join(tmp, "contigs.fna")
	lengths, err := normalise(path, norm)
	if err != nil {
		return nil, err
	}

	hits, err := c.Caller.Call(ctx, norm)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, &EmptyResultError{Bin: BinID(path)}
	}

	counts := make([]uint8, c.Vocab)
	for _, h := range hits {
		if h.Marker < 0 || h.Marker >= c.Vocab {
			continue
		}
		if counts[h.Marker] < maxCount {
			counts[h.Marker]++
		}
	}

	return &Counts{
		Counts: counts,
		Hits:   len(hits),
		Stats:  binstats.Collect(BinID(path), lengths),
	}, nil
}

// normalise copies the FASTA bin at src to dst, validating sequences
// against the redundant DNA alphabet, and returns the contig lengths.
func normalise(src, dst string) ([]int, error) {
	in, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("pfam: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("pfam: %w", err)
	}
	defer out.Close()

	var (
		r       = fasta.NewReader(in, linear.NewSeq("", nil, alphabet.DNAredundant))
		w       = fasta.NewWriter(out, 60)
		sc      = seqio.NewScanner(r)
		lengths []int
	)
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		if ok, pos := s.Alpha.AllValid(s.Seq); !ok {
			return nil, &InputFormatError{
				Path:   src,
				Reason: fmt.Sprintf("invalid letter %q at %s:%d", s.Seq[pos], s.Name(), pos),
			}
		}
		if s.Len() == 0 {
			return nil, &InputFormatError{
				Path:   src,
				Reason: fmt.Sprintf("empty sequence %s", s.Name()),
			}
		}
		lengths = append(lengths, s.Len())
		if _, err := w.Write(s); err != nil {
			return nil, fmt.Errorf("pfam: %w", err)
		}
	}
	if err := sc.Error(); err != nil {
		return nil, &InputFormatError{Path: src, Reason: err.Error()}
	}
	if len(lengths) == 0 {
		return nil, &InputFormatError{Path: src, Reason: "no sequences"}
	}
	return lengths, nil
}

// BinID returns the identifier of a bin file: its base name without the
// FASTA extension.
func BinID(path string) string {
	base := filepath.Base(path)
	if i := strings.LastIndex(base, "."); i > 0 {
		return base[:i]
	}
	return base
}
