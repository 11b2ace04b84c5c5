// Copyright ©2026 The binq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfam

import "fmt"

// InputFormatError is returned when the query bin is not usable FASTA,
// either because it cannot be parsed or because it contains no sequences.
type InputFormatError struct {
	Path   string
	Reason string
}

func (e *InputFormatError) Error() string {
	return fmt.Sprintf("pfam: invalid input %q: %s", e.Path, e.Reason)
}

// ExternalToolError is returned when an external marker-calling binary is
// missing, exits non-zero, produces unparseable output, or is killed by a
// timeout. Stderr holds the tool's diagnostic output when available.
type ExternalToolError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ExternalToolError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("pfam: %s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("pfam: %s: %v: %s", e.Tool, e.Err, e.Stderr)
}

func (e *ExternalToolError) Unwrap() error { return e.Err }

// EmptyResultError is returned when marker calling succeeds but no marker
// is detected in the bin. Downstream estimation cannot proceed; callers
// treat this as a legitimate low-quality-genome outcome.
type EmptyResultError struct {
	Bin string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("pfam: no markers detected in %q", e.Bin)
}
