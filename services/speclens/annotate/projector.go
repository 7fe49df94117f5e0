// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package annotate projects lint findings onto flat document coordinates.
//
// Spectral reports line/character ranges that are untrusted: lines can fall
// outside the document, characters can run past the line, and end can
// precede start. Projection is best-effort by design — a bad range drops
// that one finding, never the batch.
//
// # Display Severity Mapping
//
// The mapping from finding severity to display severity is total:
//
//	| Severity        | DisplaySeverity |
//	|-----------------|-----------------|
//	| SeverityError   | DisplayError    |
//	| SeverityWarning | DisplayWarning  |
//	| SeverityInfo    | DisplayInfo     |
//	| SeverityHint    | DisplayHint     |
package annotate

import (
	"fmt"
	"log/slog"

	"github.com/AleutianAI/speclens/services/speclens/spectral"
)

// =============================================================================
// DISPLAY SEVERITY
// =============================================================================

// DisplaySeverity is the presentation-layer severity vocabulary.
type DisplaySeverity int

const (
	// DisplayError renders as an error annotation.
	DisplayError DisplaySeverity = iota

	// DisplayWarning renders as a warning annotation.
	DisplayWarning

	// DisplayInfo renders as an informational annotation.
	DisplayInfo

	// DisplayHint renders as an unobtrusive hint.
	DisplayHint
)

// String returns the string representation of the display severity.
func (s DisplaySeverity) String() string {
	switch s {
	case DisplayError:
		return "error"
	case DisplayWarning:
		return "warning"
	case DisplayInfo:
		return "info"
	case DisplayHint:
		return "hint"
	default:
		return "unknown"
	}
}

// DisplaySeverityFor maps a finding severity to its display severity.
//
// The mapping is exhaustive: every Severity value maps to something, with
// DisplayInfo covering any value outside the known enum.
func DisplaySeverityFor(s spectral.Severity) DisplaySeverity {
	switch s {
	case spectral.SeverityError:
		return DisplayError
	case spectral.SeverityWarning:
		return DisplayWarning
	case spectral.SeverityInfo:
		return DisplayInfo
	case spectral.SeverityHint:
		return DisplayHint
	default:
		return DisplayInfo
	}
}

// =============================================================================
// ANNOTATION
// =============================================================================

// Annotation is one finding anchored to flat document offsets.
//
// Thread Safety: Immutable after creation.
type Annotation struct {
	// Code is the rule code of the underlying finding.
	Code string `json:"code"`

	// Message is the finding's message.
	Message string `json:"message"`

	// Severity is the display severity.
	Severity DisplaySeverity `json:"severity"`

	// StartOffset and EndOffset delimit the annotated text.
	StartOffset int `json:"start_offset"`
	EndOffset   int `json:"end_offset"`

	// DocumentLevel marks an annotation that applies to the whole document
	// rather than a text range. Offsets are 0 for these.
	DocumentLevel bool `json:"document_level,omitempty"`
}

// unrecognizedFormatMessage is the single notice shown when Spectral reports
// the document is not a recognizable API specification.
const unrecognizedFormatMessage = "Document does not appear to be an API specification recognized by Spectral"

// =============================================================================
// PROJECTION
// =============================================================================

// Project converts issues into offset-anchored annotations.
//
// Description:
//
//	Applies the whole-document short-circuit first: if any issue in the
//	batch carries the reserved unrecognized-format code, the result is a
//	single document-level warning and nothing else, so an unsupported
//	document yields one explanatory notice instead of a flood of
//	misleading range findings.
//
//	Otherwise each issue is projected independently. A failure computing
//	either offset drops that issue alone — logged at debug, invisible to
//	the user — and the rest of the batch still projects. Output order
//	matches input order for the surviving issues.
//
// Inputs:
//
//	lookup - Line-start offsets for the target document
//	issues - Findings in tool-reported order
//
// Outputs:
//
//	[]Annotation - Projected annotations; never nil
//
// Thread Safety: Safe for concurrent use with an immutable lookup.
func Project(lookup LineOffsetLookup, issues []spectral.Issue) []Annotation {
	for _, issue := range issues {
		if issue.Code == spectral.CodeUnrecognizedFormat {
			return []Annotation{{
				Code:          spectral.CodeUnrecognizedFormat,
				Message:       unrecognizedFormatMessage,
				Severity:      DisplayWarning,
				DocumentLevel: true,
			}}
		}
	}

	annotations := make([]Annotation, 0, len(issues))
	for _, issue := range issues {
		ann, err := projectOne(lookup, issue)
		if err != nil {
			slog.Debug("Skipping finding with invalid range",
				slog.String("code", issue.Code),
				slog.Any("error", err),
			)
			continue
		}
		annotations = append(annotations, ann)
	}

	return annotations
}

// projectOne computes the flat range for a single issue.
func projectOne(lookup LineOffsetLookup, issue spectral.Issue) (Annotation, error) {
	start, err := resolveOffset(lookup, issue.Range.Start)
	if err != nil {
		return Annotation{}, fmt.Errorf("start position: %w", err)
	}
	end, err := resolveOffset(lookup, issue.Range.End)
	if err != nil {
		return Annotation{}, fmt.Errorf("end position: %w", err)
	}
	if end < start {
		return Annotation{}, fmt.Errorf("end offset %d precedes start offset %d", end, start)
	}

	return Annotation{
		Code:        issue.Code,
		Message:     issue.Message,
		Severity:    DisplaySeverityFor(issue.Severity),
		StartOffset: start,
		EndOffset:   end,
	}, nil
}

// resolveOffset flattens one position against the line index.
func resolveOffset(lookup LineOffsetLookup, pos spectral.Position) (int, error) {
	if pos.Character < 0 {
		return 0, fmt.Errorf("negative character %d", pos.Character)
	}

	lineStart, err := lookup.LineStart(pos.Line)
	if err != nil {
		return 0, err
	}
	offset := lineStart + pos.Character

	// A character that runs past the end of its line lands inside some
	// other line, or past the document entirely; treat it as invalid
	// rather than guessing. Equality with the next line start (or the
	// document length, on the final line) is allowed so exclusive ends at
	// a line break survive.
	bound := lookup.Length()
	if next := pos.Line + 1; next < lookup.LineCount() {
		nextStart, err := lookup.LineStart(next)
		if err != nil {
			return 0, err
		}
		bound = nextStart
	}
	if offset > bound {
		return 0, fmt.Errorf("character %d overruns line %d", pos.Character, pos.Line)
	}

	return offset, nil
}
