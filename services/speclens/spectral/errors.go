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
	"errors"
	"fmt"
)

// Sentinel errors for the spectral package.
var (
	// ErrLinterNotInstalled indicates the spectral binary was not found in PATH.
	ErrLinterNotInstalled = errors.New("spectral not installed")

	// ErrLaunch indicates the process could not be started at all.
	ErrLaunch = errors.New("failed to launch spectral")

	// ErrMaterialize indicates the document content could not be exposed
	// as a readable file for the process.
	ErrMaterialize = errors.New("failed to materialize lint input")

	// ErrTimeout indicates the process exceeded its configured timeout.
	ErrTimeout = errors.New("spectral timeout")

	// ErrCanceled indicates the caller canceled the run while the process
	// was still executing. Cleanup is identical to the timeout path.
	ErrCanceled = errors.New("lint run canceled")

	// ErrUnexpectedExitCode indicates an exit code outside the accepted set.
	ErrUnexpectedExitCode = errors.New("unexpected spectral exit code")

	// ErrUnexpectedStderr indicates the process wrote to stderr during a run
	// with an accepted exit code. A well-formed run emits nothing on stderr,
	// so any output there is an abnormal condition.
	ErrUnexpectedStderr = errors.New("unexpected spectral stderr output")

	// ErrParseOutput indicates stdout was not a valid JSON issue array.
	ErrParseOutput = errors.New("failed to parse spectral output")

	// ErrInvalidInput indicates invalid input to a spectral function.
	ErrInvalidInput = errors.New("invalid input")
)

// SpectralError wraps a failed lint run with context.
//
// All fatal conditions cross the runner boundary as a *SpectralError so
// callers get one place to inspect the cause (errors.Is against the
// sentinels above) plus whatever output the tool produced.
//
// Thread Safety: Immutable after creation.
type SpectralError struct {
	// Ruleset is the ruleset the failed run was evaluated against.
	Ruleset string

	// ExitCode is the process exit code, or -1 when the process never ran
	// to completion (launch failure, timeout, cancellation).
	ExitCode int

	// Err is the underlying error.
	Err error

	// Output contains captured stderr, when the failure produced any.
	Output string
}

// Error implements the error interface.
func (e *SpectralError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("spectral (ruleset %s): %v: %s", e.Ruleset, e.Err, e.Output)
	}
	return fmt.Sprintf("spectral (ruleset %s): %v", e.Ruleset, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SpectralError) Unwrap() error {
	return e.Err
}

// newSpectralError creates a SpectralError with no process output.
func newSpectralError(ruleset string, exitCode int, err error) *SpectralError {
	return &SpectralError{
		Ruleset:  ruleset,
		ExitCode: exitCode,
		Err:      err,
	}
}

// WithOutput returns a copy of the error with captured output attached.
func (e *SpectralError) WithOutput(output string) *SpectralError {
	return &SpectralError{
		Ruleset:  e.Ruleset,
		ExitCode: e.ExitCode,
		Err:      e.Err,
		Output:   output,
	}
}
