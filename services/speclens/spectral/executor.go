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
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ProcessRunner executes one external process invocation.
//
// Description:
//
//	Abstracts process execution so the runner can be tested without
//	spawning real processes. The production implementation is ExecRunner.
//
//	A non-zero exit code is NOT an error at this layer: whether an exit
//	code is acceptable is the orchestrator's decision, so Run returns the
//	code as data. Run returns an error only when the process could not be
//	launched, timed out, or was canceled.
type ProcessRunner interface {
	// Run executes the command and waits for completion, up to timeout.
	Run(ctx context.Context, cmd Command, timeout time.Duration) (*ProcessResult, error)
}

// ExecRunner runs commands with os/exec.
//
// Thread Safety: Safe for concurrent use; it holds no state.
type ExecRunner struct{}

// NewExecRunner creates an ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command and captures both output streams in memory.
//
// Description:
//
//	Spawns one OS process per call, with no retries. The timeout is
//	enforced with a derived context; exec.CommandContext kills the
//	process when the context expires, and cmd.Run always reaps the
//	process handle, so every exit path (success, failure, timeout,
//	cancellation) leaves no process behind.
//
// Inputs:
//
//	ctx - Context for cancellation
//	cmd - The command to run; never mutated
//	timeout - Maximum time to wait for completion
//
// Outputs:
//
//	*ProcessResult - Exit code plus captured stdout/stderr
//	error - ErrLaunch, ErrTimeout, or ErrCanceled
//
// Thread Safety: Safe for concurrent use.
func (r *ExecRunner) Run(ctx context.Context, cmd Command, timeout time.Duration) (*ProcessResult, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	proc := exec.CommandContext(runCtx, cmd.Path, cmd.Args...)
	if cmd.Dir != "" {
		proc.Dir = cmd.Dir
	}

	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	// A run that completed cleanly stays a success even if the deadline
	// fired in the same instant; the context checks below only classify
	// actual failures.
	if err := proc.Run(); err != nil {
		// Timeout and caller cancellation share the cleanup path (the
		// context already killed the process); they differ only in the
		// reported kind.
		if runCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %v", ErrTimeout, timeout)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrCanceled, context.Cause(ctx))
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Process ran to completion with a non-zero code. Whether that
			// code is acceptable is the orchestrator's call, not ours.
			return &ProcessResult{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.Bytes(),
				Stderr:   stderr.Bytes(),
			}, nil
		}
		// Not found, not executable, or an OS-level launch error.
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	return &ProcessResult{
		ExitCode: 0,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}, nil
}
