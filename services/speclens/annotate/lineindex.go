// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package annotate

import (
	"fmt"
	"strings"
)

// LineOffsetLookup resolves line numbers to flat document offsets.
//
// Description:
//
//	The capability the projector needs from the host's document model: a
//	monotonic sequence of line-start offsets. Editors with their own text
//	model implement this directly; for plain strings use NewLineIndex.
type LineOffsetLookup interface {
	// LineStart returns the flat offset of the first character of line.
	// Lines are zero-based. Fails when line is out of range.
	LineStart(line int) (int, error)

	// LineCount returns the number of lines in the document.
	LineCount() int

	// Length returns the total length of the document, in the same units
	// as the line-start offsets. Bounds offsets on the final line.
	Length() int
}

// LineIndex is a LineOffsetLookup over an in-memory document.
//
// Offsets are indices into the string the index was built from. The unit
// (bytes vs code units) is whatever the caller's representation uses; the
// projector never interprets offsets, it only adds to them.
//
// Thread Safety: Immutable after creation.
type LineIndex struct {
	starts []int
	length int
}

// NewLineIndex builds a line index for the given document text.
//
// Description:
//
//	Line N starts immediately after the Nth '\n'. A document always has
//	at least one line; a trailing newline opens a final empty line,
//	matching how editors count lines.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, length: len(text)}
}

// LineStart returns the flat offset where the given line begins.
func (ix *LineIndex) LineStart(line int) (int, error) {
	if line < 0 || line >= len(ix.starts) {
		return 0, fmt.Errorf("line %d out of range [0,%d)", line, len(ix.starts))
	}
	return ix.starts[line], nil
}

// LineCount returns the number of lines in the indexed document.
func (ix *LineIndex) LineCount() int {
	return len(ix.starts)
}

// Length returns the total length of the indexed document.
func (ix *LineIndex) Length() int {
	return ix.length
}

// String implements fmt.Stringer for debug logging.
func (ix *LineIndex) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "LineIndex(%d lines, %d chars)", len(ix.starts), ix.length)
	return b.String()
}
