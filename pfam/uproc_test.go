// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfam

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	check "gopkg.in/check.v1"
)

func (s *S) TestParseHits(c *check.C) {
	in := strings.Join([]string{
		"contig1,PF00012,1.23",
		"contig1,PF00012,0.50",
		"contig2,PF13243",
		"",
	}, "\n")
	hits, err := parseHits(strings.NewReader(in))
	c.Assert(err, check.IsNil)
	c.Check(hits, check.DeepEquals, []Hit{
		{Seq: "contig1", Marker: 12, Score: 1.23},
		{Seq: "contig1", Marker: 12, Score: 0.5},
		{Seq: "contig2", Marker: 13243},
	})
}

func (s *S) TestParseHitsMalformed(c *check.C) {
	for i, in := range []string{
		"contig1",
		"contig1,XX00012",
		"contig1,PF",
		"contig1,PFabc",
	} {
		_, err := parseHits(strings.NewReader(in))
		c.Check(err, check.NotNil, check.Commentf("test %d: %q", i, in))
	}
}

func (s *S) TestCallMissingBinary(c *check.C) {
	u := UProC{
		ORFBin:  filepath.Join(c.MkDir(), "uproc-orf"), // does not exist
		ProtBin: "uproc-prot",
	}
	_, err := u.Call(context.Background(), writeBin(c, "bin.fna", goodFasta))
	var te *ExternalToolError
	c.Assert(errors.As(err, &te), check.Equals, true)
	c.Check(te.Tool, check.Equals, "uproc-orf")
}

func (s *S) TestCallCancelled(c *check.C) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	u := UProC{
		ORFBin:  filepath.Join(c.MkDir(), "uproc-orf"),
		ProtBin: "uproc-prot",
	}
	_, err := u.Call(ctx, writeBin(c, "bin.fna", goodFasta))
	var te *ExternalToolError
	c.Assert(errors.As(err, &te), check.Equals, true)
	c.Check(errors.Is(te.Err, context.Canceled), check.Equals, true)
}
