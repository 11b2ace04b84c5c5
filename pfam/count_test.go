// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfam

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	check "gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

type mockCaller struct {
	hits []Hit
	err  error

	called string
}

func (m *mockCaller) Call(_ context.Context, path string) ([]Hit, error) {
	m.called = path
	return m.hits, m.err
}

func writeBin(c *check.C, name, content string) string {
	path := filepath.Join(c.MkDir(), name)
	c.Assert(os.WriteFile(path, []byte(content), 0o644), check.IsNil)
	return path
}

const goodFasta = ">contig1\nACGTACGTNRYA\n>contig2\nTTGACC\n"

func (s *S) TestCount(c *check.C) {
	caller := &mockCaller{hits: []Hit{
		{Seq: "contig1", Marker: 2},
		{Seq: "contig1", Marker: 2},
		{Seq: "contig2", Marker: 5},
		{Seq: "contig2", Marker: 99}, // outside vocabulary, dropped
	}}
	counter := &Counter{Caller: caller, Vocab: 10}

	counts, err := counter.Count(context.Background(), writeBin(c, "bin.fna", goodFasta))
	c.Assert(err, check.IsNil)
	c.Check(counts.Counts, check.DeepEquals, []uint8{0, 0, 2, 0, 0, 1, 0, 0, 0, 0})
	c.Check(counts.Hits, check.Equals, 4)
	c.Check(counts.Stats.Name, check.Equals, "bin")
	c.Check(counts.Stats.Sequences, check.Equals, 2)
	c.Check(counts.Stats.Size, check.Equals, 18)
	c.Check(counts.CountRatio(), check.Equals, 4.0/18)

	// The caller sees the normalised temp copy, not the input path, and
	// the temp directory is gone afterwards.
	c.Check(strings.HasSuffix(caller.called, "contigs.fna"), check.Equals, true)
	_, err = os.Stat(filepath.Dir(caller.called))
	c.Check(os.IsNotExist(err), check.Equals, true)
}

func (s *S) TestCountSaturates(c *check.C) {
	hits := make([]Hit, 300)
	for i := range hits {
		hits[i] = Hit{Seq: "contig1", Marker: 1}
	}
	counter := &Counter{Caller: &mockCaller{hits: hits}, Vocab: 3}

	counts, err := counter.Count(context.Background(), writeBin(c, "bin.fna", goodFasta))
	c.Assert(err, check.IsNil)
	c.Check(counts.Counts[1], check.Equals, uint8(255))
	c.Check(counts.Hits, check.Equals, 300)
}

func (s *S) TestCountInputErrors(c *check.C) {
	counter := &Counter{Caller: &mockCaller{hits: []Hit{{Marker: 0}}}, Vocab: 3}

	var infmt *InputFormatError
	for i, t := range []struct {
		name, content string
	}{
		{"empty.fna", ""},
		{"headeronly.fna", ">contig1\n"},
		{"badletters.fna", ">contig1\nACGTXXJQ\n"},
	} {
		_, err := counter.Count(context.Background(), writeBin(c, t.name, t.content))
		c.Check(errors.As(err, &infmt), check.Equals, true, check.Commentf("test %d: %s: %v", i, t.name, err))
	}

	_, err := counter.Count(context.Background(), filepath.Join(c.MkDir(), "missing.fna"))
	c.Check(err, check.NotNil)
}

func (s *S) TestCountEmptyResult(c *check.C) {
	counter := &Counter{Caller: &mockCaller{}, Vocab: 3}
	_, err := counter.Count(context.Background(), writeBin(c, "bin.fna", goodFasta))
	var empty *EmptyResultError
	c.Assert(errors.As(err, &empty), check.Equals, true)
	c.Check(empty.Bin, check.Equals, "bin")
}

func (s *S) TestCountCallerError(c *check.C) {
	toolErr := &ExternalToolError{Tool: "uproc-prot", Err: errors.New("exit status 1"), Stderr: "no database"}
	counter := &Counter{Caller: &mockCaller{err: toolErr}, Vocab: 3}
	_, err := counter.Count(context.Background(), writeBin(c, "bin.fna", goodFasta))
	var te *ExternalToolError
	c.Assert(errors.As(err, &te), check.Equals, true)
	c.Check(te.Stderr, check.Equals, "no database")
}

func (s *S) TestBinID(c *check.C) {
	c.Check(BinID("/path/to/bin42.fna"), check.Equals, "bin42")
	c.Check(BinID("bin.contigs.fasta"), check.Equals, "bin.contigs")
	c.Check(BinID("noext"), check.Equals, "noext")
	c.Check(BinID(".hidden"), check.Equals, ".hidden")
}
