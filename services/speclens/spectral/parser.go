// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package spectral

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// maxDiagnosticPrefix bounds how much offending text a parse error carries.
const maxDiagnosticPrefix = 256

// =============================================================================
// SPECTRAL JSON OUTPUT
// =============================================================================

// spectralIssue represents one element of Spectral's `-f json` output array.
// Unknown extra fields (path, source, ...) are ignored for forward
// compatibility.
type spectralIssue struct {
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Severity int           `json:"severity"`
	Range    spectralRange `json:"range"`
}

type spectralRange struct {
	Start spectralPosition `json:"start"`
	End   spectralPosition `json:"end"`
}

type spectralPosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// ParseOutput parses Spectral's JSON stdout into issues.
//
// Description:
//
//	`spectral -f json lint` emits a JSON array of issue objects. Empty or
//	whitespace-only output is the tool's convention for "no findings" and
//	yields an empty slice, not an error. Anything that is not a JSON
//	array fails with ErrParseOutput carrying a bounded prefix of the
//	offending text for diagnostics.
//
//	The returned slice preserves the array order exactly; callers rely on
//	it matching the tool's rule-evaluation order.
//
// Inputs:
//
//	data - Raw stdout from the spectral process
//
// Outputs:
//
//	[]Issue - Parsed issues in input order; empty when there are none
//	error - Non-nil if the output is not a valid issue array
func ParseOutput(data []byte) ([]Issue, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []Issue{}, nil
	}

	var raw []spectralIssue
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrParseOutput, err, diagnosticPrefix(trimmed))
	}

	issues := make([]Issue, 0, len(raw))
	for _, ri := range raw {
		issues = append(issues, Issue{
			Code:     ri.Code,
			Message:  ri.Message,
			Severity: severityFromWire(ri.Severity),
			Range: Range{
				Start: Position{Line: ri.Range.Start.Line, Character: ri.Range.Start.Character},
				End:   Position{Line: ri.Range.End.Line, Character: ri.Range.End.Character},
			},
		})
	}

	return issues, nil
}

// diagnosticPrefix returns at most maxDiagnosticPrefix bytes of text for
// inclusion in error messages.
func diagnosticPrefix(data []byte) string {
	if len(data) <= maxDiagnosticPrefix {
		return string(data)
	}
	return string(data[:maxDiagnosticPrefix]) + "..."
}
