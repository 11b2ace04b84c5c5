// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfam

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// A Hit is a single protein-domain classification of an ORF reported by
// the marker caller.
type Hit struct {
	Seq    string
	Marker int
	Score  float64
}

// A MarkerCaller maps the sequences of a nucleotide FASTA file to hits
// against the marker vocabulary. Implementations wrap external gene-calling
// and domain-classification toolchains; tests substitute a mock.
type MarkerCaller interface {
	Call(ctx context.Context, path string) ([]Hit, error)
}

// UProC invokes the UProC toolchain: uproc-orf translates contigs into
// candidate ORFs which uproc-prot classifies against a Pfam database.
// The zero value is not usable; all paths must be set.
type UProC struct {
	ORFBin  string // uproc-orf binary
	ProtBin string // uproc-prot binary
	DBDir   string // imported Pfam database directory
	Model   string // UProC model directory
	Threads int    // defaults to GOMAXPROCS
}

var _ MarkerCaller = UProC{}

// Call runs the uproc-orf|uproc-prot chain over the FASTA file at path.
// Intermediate ORF translations are written to a temporary directory that
// is removed before Call returns. Honouring ctx cancellation kills the
// running tool and reports an ExternalToolError.
func (u UProC) Call(ctx context.Context, path string) ([]Hit, error) {
	tmp, err := os.MkdirTemp("", "binq-uproc-")
	if err != nil {
		return nil, fmt.Errorf("pfam: %w", err)
	}
	defer os.RemoveAll(tmp)

	orfs, err := u.findORFs(ctx, path, filepath.Join(tmp, "orfs.faa"))
	if err != nil {
		return nil, err
	}
	return u.classify(ctx, orfs)
}

func (u UProC) findORFs(ctx context.Context, path, out string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("pfam: %w", err)
	}
	defer in.Close()
	dst, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("pfam: %w", err)
	}
	defer dst.Close()

	cmd := exec.CommandContext(ctx, u.ORFBin)
	cmd.Stdin = in
	cmd.Stdout = dst
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", toolError(u.ORFBin, ctx, &stderr, err)
	}
	return out, nil
}

func (u UProC) classify(ctx context.Context, orfs string) ([]Hit, error) {
	threads := u.Threads
	if threads < 1 {
		threads = runtime.GOMAXPROCS(0)
	}
	cmd := exec.CommandContext(ctx, u.ProtBin,
		"-p", "-F", "hf", "-t", strconv.Itoa(threads), u.DBDir, u.Model, orfs)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, toolError(u.ProtBin, ctx, &stderr, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, toolError(u.ProtBin, ctx, &stderr, err)
	}
	hits, perr := parseHits(stdout)
	if err := cmd.Wait(); err != nil {
		return nil, toolError(u.ProtBin, ctx, &stderr, err)
	}
	if perr != nil {
		return nil, toolError(u.ProtBin, ctx, &stderr, perr)
	}
	return hits, nil
}

// parseHits reads uproc-prot "hf" output: one comma-separated record per
// classification, sequence name first and the PFxxxxx accession second,
// optionally followed by the classifier score.
func parseHits(r io.Reader) ([]Hit, error) {
	var hits []Hit
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			return nil, fmt.Errorf("malformed hit line %q", line)
		}
		acc := strings.TrimSpace(fields[1])
		if len(acc) < 3 || !strings.HasPrefix(acc, "PF") {
			return nil, fmt.Errorf("malformed accession %q", acc)
		}
		marker, err := strconv.Atoi(acc[2:])
		if err != nil {
			return nil, fmt.Errorf("malformed accession %q: %v", acc, err)
		}
		h := Hit{Seq: strings.TrimSpace(fields[0]), Marker: marker}
		if len(fields) > 2 {
			h.Score, _ = strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		}
		hits = append(hits, h)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return hits, nil
}

func toolError(tool string, ctx context.Context, stderr *bytes.Buffer, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		err = cerr
	}
	return &ExternalToolError{
		Tool:   filepath.Base(tool),
		Stderr: strings.TrimSpace(stderr.String()),
		Err:    err,
	}
}
