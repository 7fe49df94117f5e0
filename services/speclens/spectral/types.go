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
	"time"
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity represents the severity level of a finding.
//
// The numeric values match Spectral's wire format (0 = error .. 3 = hint),
// so the zero value is deliberately the most severe level.
type Severity int

const (
	// SeverityError represents findings that fail the lint run.
	SeverityError Severity = iota

	// SeverityWarning represents findings that should be surfaced but
	// do not fail the run.
	SeverityWarning

	// SeverityInfo represents informational findings.
	SeverityInfo

	// SeverityHint represents style suggestions.
	SeverityHint
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// severityFromWire maps Spectral's integer severity to a Severity.
//
// Description:
//
//	Values 0-3 map directly. Anything outside that range maps to
//	SeverityInfo: the tool's intent for unknown values is not guessable,
//	and info is the lowest-noise fallback for display purposes.
//
// Inputs:
//
//	v - The raw integer severity from the tool's JSON output
//
// Outputs:
//
//	Severity - The mapped severity level
func severityFromWire(v int) Severity {
	if v < int(SeverityError) || v > int(SeverityHint) {
		return SeverityInfo
	}
	return Severity(v)
}

// =============================================================================
// POSITIONS AND RANGES
// =============================================================================

// Position is a zero-based line/character location in a document.
//
// The character granularity (UTF-16 code units vs code points) is whatever
// the caller's document model uses; this package never interprets it.
type Position struct {
	// Line is the zero-based line number.
	Line int `json:"line"`

	// Character is the zero-based character offset within the line.
	Character int `json:"character"`
}

// Range is a start/end position pair reported by the tool.
//
// No ordering invariant is enforced: Spectral is known to emit ranges where
// end precedes start or positions fall outside the document. Consumers must
// validate before use (see the annotate package).
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// =============================================================================
// ISSUE
// =============================================================================

// Issue represents a single finding reported by Spectral.
//
// Issues are produced only by ParseOutput and are in the order the tool
// reported them, which reflects rule-evaluation order. Callers depend on
// that order being preserved.
//
// Thread Safety: Immutable after creation.
type Issue struct {
	// Code is the rule identifier that produced the finding
	// (e.g., "no-$ref-siblings", "oas3-schema").
	Code string `json:"code"`

	// Message is the human-readable description of the finding.
	Message string `json:"message"`

	// Severity is the mapped severity level.
	Severity Severity `json:"severity"`

	// Range is the reported source range. Untrusted; may be invalid.
	Range Range `json:"range"`
}

// CodeUnrecognizedFormat is the reserved rule code Spectral emits when it
// cannot recognize the document as an API specification at all. The annotate
// package collapses any batch containing this code into a single
// document-level notice.
const CodeUnrecognizedFormat = "unrecognized-format"

// =============================================================================
// PROCESS TYPES
// =============================================================================

// Command describes one external process invocation.
//
// A Command is constructed fresh for each run and never reused or mutated
// once execution starts.
type Command struct {
	// Path is the resolved executable name or path.
	Path string

	// Args are the arguments, in order, excluding the executable itself.
	Args []string

	// Dir is the working directory. Empty means the process default.
	Dir string

	// InputPath is the file the tool was asked to analyze. Carried for
	// diagnostics; already present in Args.
	InputPath string
}

// ProcessResult is the fully materialized outcome of one process run.
//
// Output streams are captured whole; this package does not stream.
type ProcessResult struct {
	// ExitCode is the process exit code.
	ExitCode int

	// Stdout is the captured standard output.
	Stdout []byte

	// Stderr is the captured standard error.
	Stderr []byte
}

// =============================================================================
// RUN RESULT
// =============================================================================

// RunResult contains the outcome of one lint run.
//
// Thread Safety: Immutable after creation by the runner.
type RunResult struct {
	// Issues are the findings in tool-reported order.
	Issues []Issue `json:"issues"`

	// Duration is how long the run took, including process spawn.
	Duration time.Duration `json:"duration"`

	// Ruleset is the ruleset the run was evaluated against.
	Ruleset string `json:"ruleset"`

	// LinterAvailable is false when the spectral binary was not found and
	// the run was skipped rather than executed.
	LinterAvailable bool `json:"linter_available"`
}

// HasErrors returns true if any finding has SeverityError.
func (r *RunResult) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CountBySeverity returns the number of findings at the given severity.
func (r *RunResult) CountBySeverity(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}
