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
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// defaultTimeout is the reference timeout for one spectral run.
const defaultTimeout = 30 * time.Second

// acceptedExitCodes are the spectral exit codes that denote a completed run.
// The mapping is the tool's own contract (0 = clean, 1 = error-severity
// findings, 2 = lower-severity findings) and is treated as opaque here:
// membership in this set is the only thing the runner checks.
var acceptedExitCodes = map[int]bool{
	0: true,
	1: true,
	2: true,
}

// InputMaterializer exposes in-memory content as a readable file path.
//
// Description:
//
//	Spectral only accepts file paths, so content coming from an editor
//	buffer has to be written somewhere first. The returned cleanup func
//	must release the resource and is called on every exit path. The path
//	must be unique per invocation; no other run may touch it.
type InputMaterializer func(content []byte) (path string, cleanup func(), err error)

// tempFileMaterializer writes content to a uniquely named temp file.
func tempFileMaterializer(content []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "speclens-"+uuid.NewString()+"-*.yaml")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	cleanup := func() { os.Remove(path) }

	if _, err := f.Write(content); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", err)
	}

	return path, cleanup, nil
}

// =============================================================================
// RUNNER
// =============================================================================

// Runner orchestrates spectral lint runs.
//
// Description:
//
//	Materializes content to a transient file, builds the platform
//	command line, drives the ProcessRunner, validates the process result
//	against the acceptance rules, and parses stdout into issues.
//
//	Each run is fully independent: its own transient file, its own
//	process, its own result. The runner defines no queuing or mutual
//	exclusion between overlapping runs.
//
// Thread Safety: Safe for concurrent use.
type Runner struct {
	proc        ProcessRunner
	materialize InputMaterializer
	timeout     time.Duration
	workingDir  string

	availMu   sync.RWMutex
	probed    bool
	available bool
}

// Option configures the Runner.
type Option func(*Runner)

// WithProcessRunner sets a custom process runner (used by tests).
func WithProcessRunner(proc ProcessRunner) Option {
	return func(r *Runner) {
		r.proc = proc
	}
}

// WithMaterializer sets a custom input materializer.
func WithMaterializer(m InputMaterializer) Option {
	return func(r *Runner) {
		r.materialize = m
	}
}

// WithTimeout overrides the per-run timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithWorkingDir sets the working directory for spectral execution,
// normally the caller's project root.
func WithWorkingDir(dir string) Option {
	return func(r *Runner) {
		r.workingDir = dir
	}
}

// NewRunner creates a runner with default or custom configuration.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		proc:        NewExecRunner(),
		materialize: tempFileMaterializer,
		timeout:     defaultTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Detect probes the system PATH for the spectral binary.
//
// Description:
//
//	Updates the runner's availability flag and returns it. When the
//	binary is missing, subsequent LintContent calls return an empty
//	result flagged LinterAvailable=false instead of a launch error, so
//	an editor session without spectral installed degrades gracefully.
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) Detect() bool {
	name := executableName()

	_, err := exec.LookPath(name)
	available := err == nil

	r.availMu.Lock()
	r.probed = true
	r.available = available
	r.availMu.Unlock()

	if available {
		slog.Info("Spectral available", slog.String("command", name))
	} else {
		slog.Warn("Spectral not installed", slog.String("command", name))
	}

	return available
}

// knownUnavailable reports whether a probe ran and came back negative.
func (r *Runner) knownUnavailable() bool {
	r.availMu.RLock()
	defer r.availMu.RUnlock()
	return r.probed && !r.available
}

// LintContent runs spectral against in-memory content.
//
// Description:
//
//	The single fatal-error boundary for a lint run. On success the
//	result carries the findings in tool-reported order; on failure the
//	error is a *SpectralError wrapping one of the package sentinels, and
//	no partial issue list is ever returned alongside it.
//
//	The transient input file is released on every exit path.
//
// Inputs:
//
//	ctx - Context for cancellation
//	content - The document text to analyze
//	ruleset - Path or identifier of the spectral ruleset
//
// Outputs:
//
//	*RunResult - Findings plus run metadata
//	error - Non-nil if the run failed; a *SpectralError wrapping one of
//	        the package sentinels, or a bare ErrInvalidInput wrap when
//	        the arguments never reached a run
//
// Errors:
//
//	ErrInvalidInput - Nil context or empty ruleset
//	ErrMaterialize - Content could not be exposed as a readable file
//	ErrLaunch - Process could not be started
//	ErrTimeout - Process exceeded the timeout
//	ErrCanceled - Caller canceled the run
//	ErrUnexpectedExitCode - Exit code outside {0,1,2}
//	ErrUnexpectedStderr - Non-blank stderr despite accepted exit code
//	ErrParseOutput - Stdout was not a valid issue array
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) LintContent(ctx context.Context, content []byte, ruleset string) (*RunResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}
	if strings.TrimSpace(ruleset) == "" {
		return nil, fmt.Errorf("%w: ruleset must not be empty", ErrInvalidInput)
	}

	ctx, span := startRunSpan(ctx, ruleset, len(content))
	defer span.End()
	start := time.Now()

	if r.knownUnavailable() {
		setRunSpanResult(span, 0, false)
		return &RunResult{
			Issues:          []Issue{},
			Duration:        time.Since(start),
			Ruleset:         ruleset,
			LinterAvailable: false,
		}, nil
	}

	issues, err := r.runOnce(ctx, content, ruleset)
	if err != nil {
		setRunSpanResult(span, 0, false)
		recordRunMetrics(ctx, ruleset, time.Since(start), 0, 0, 0, false)
		return nil, err
	}

	result := &RunResult{
		Issues:          issues,
		Duration:        time.Since(start),
		Ruleset:         ruleset,
		LinterAvailable: true,
	}

	errorCount := result.CountBySeverity(SeverityError)
	warningCount := result.CountBySeverity(SeverityWarning)
	setRunSpanResult(span, len(issues), true)
	recordRunMetrics(ctx, ruleset, time.Since(start), len(issues), errorCount, warningCount, true)

	slog.Debug("Lint run completed",
		slog.String("ruleset", ruleset),
		slog.Duration("duration", result.Duration),
		slog.Int("issues", len(issues)),
	)

	return result, nil
}

// runOnce performs one materialize-spawn-validate-parse cycle.
func (r *Runner) runOnce(ctx context.Context, content []byte, ruleset string) ([]Issue, error) {
	inputPath, cleanup, err := r.materialize(content)
	if err != nil {
		return nil, newSpectralError(ruleset, -1, fmt.Errorf("%w: %v", ErrMaterialize, err))
	}
	defer cleanup()

	cmd := buildCommand(ruleset, inputPath, r.workingDir)

	res, err := r.proc.Run(ctx, cmd, r.timeout)
	if err != nil {
		return nil, newSpectralError(ruleset, -1, err)
	}

	if !acceptedExitCodes[res.ExitCode] {
		return nil, newSpectralError(ruleset, res.ExitCode, ErrUnexpectedExitCode).
			WithOutput(string(res.Stderr))
	}

	if stderr := strings.TrimSpace(string(res.Stderr)); stderr != "" {
		return nil, newSpectralError(ruleset, res.ExitCode, ErrUnexpectedStderr).
			WithOutput(stderr)
	}

	issues, err := ParseOutput(res.Stdout)
	if err != nil {
		return nil, newSpectralError(ruleset, res.ExitCode, err)
	}

	return issues, nil
}

// =============================================================================
// COMMAND CONSTRUCTION
// =============================================================================

// executableName returns the platform launcher name for spectral.
func executableName() string {
	if runtime.GOOS == "windows" {
		return "cmd"
	}
	return "spectral"
}

// buildCommand assembles the spectral invocation for one run.
//
// Description:
//
//	Argument order is fixed by the tool: ruleset flag, JSON output flag,
//	the lint subcommand, then the input path. Windows needs the npm
//	launcher shim wrapped through cmd (`cmd /C spectral.cmd ...`); every
//	other platform invokes the binary directly. This is the only
//	platform-conditional logic in the package.
func buildCommand(ruleset, inputPath, workingDir string) Command {
	lintArgs := []string{"-r", ruleset, "-f", "json", "lint", inputPath}

	cmd := Command{
		Path:      "spectral",
		Args:      lintArgs,
		Dir:       workingDir,
		InputPath: inputPath,
	}
	if runtime.GOOS == "windows" {
		cmd.Path = "cmd"
		cmd.Args = append([]string{"/C", "spectral.cmd"}, lintArgs...)
	}

	return cmd
}

// =============================================================================
// BATCH OPERATIONS
// =============================================================================

// maxConcurrentRuns bounds parallel spectral processes during batch linting.
const maxConcurrentRuns = 4

// LintFile runs spectral against a file on disk.
//
// Description:
//
//	Reads the file and delegates to LintContent, so on-disk documents go
//	through the same transient-input pipeline as editor buffers and the
//	acceptance rules apply identically.
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) LintFile(ctx context.Context, path, ruleset string) (*RunResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, newSpectralError(ruleset, -1, fmt.Errorf("reading %s: %w", path, err))
	}

	return r.LintContent(ctx, content, ruleset)
}

// LintFiles runs spectral against multiple files concurrently.
//
// Description:
//
//	Runs are bounded to maxConcurrentRuns in flight; each uses its own
//	transient file and process. Results come back in input order. The
//	first failed run cancels the rest.
//
// Inputs:
//
//	ctx - Context for cancellation
//	paths - Files to lint
//	ruleset - Ruleset applied to every file
//
// Outputs:
//
//	[]*RunResult - Results in the same order as paths
//	error - Non-nil if any run failed
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) LintFiles(ctx context.Context, paths []string, ruleset string) ([]*RunResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	results := make([]*RunResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRuns)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			result, err := r.LintFile(gctx, path, ruleset)
			if err != nil {
				return fmt.Errorf("linting %s: %w", path, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
