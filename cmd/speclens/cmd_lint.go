// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/speclens/services/speclens/scope"
	"github.com/AleutianAI/speclens/services/speclens/spectral"
)

// errFindings marks a run that completed but found error-severity issues.
// The findings were already rendered, so main exits 1 without a message.
var errFindings = errors.New("error-severity findings present")

func newLintCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "lint [files...]",
		Short: "Lint one or more API specification files",
		Long: `Lint runs spectral against the given files and prints the findings.

Files outside the configured include patterns are skipped unless --all is
set. The command exits 1 when any error-severity finding exists.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd.Context(), args, all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "lint every named file, ignoring include patterns")

	return cmd
}

func runLint(parent context.Context, paths []string, all bool) error {
	logger := setupLogging()
	defer logger.Close()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eligible := make([]string, 0, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			// Cannot resolve the path means cannot evaluate inclusion;
			// fail closed and skip it.
			logger.Warn("Skipping unresolvable path", "path", path, "error", err)
			continue
		}
		if !all && !scope.Included(settings.BaseDir, abs, settings.Patterns(), os.PathSeparator) {
			logger.Debug("Path excluded by include patterns", "path", abs)
			continue
		}
		eligible = append(eligible, abs)
	}

	if len(eligible) == 0 {
		fmt.Println("no files in scope")
		return nil
	}

	runner := spectral.NewRunner(
		spectral.WithWorkingDir(settings.BaseDir),
		spectral.WithTimeout(settings.Timeout()),
	)
	if !runner.Detect() {
		return fmt.Errorf("%w (npm install -g @stoplight/spectral-cli)", spectral.ErrLinterNotInstalled)
	}

	// A fatal run error surfaces as one explanatory notice; SpectralError
	// already folds captured stderr into its message.
	results, err := runner.LintFiles(ctx, eligible, settings.Ruleset)
	if err != nil {
		return err
	}

	renderer := newRenderer(flagJSON)
	failed := false
	for i, result := range results {
		renderer.renderResult(eligible[i], result)
		if result.HasErrors() {
			failed = true
		}
	}
	renderer.renderSummary(results)

	// Returning instead of exiting here lets the deferred logger close and
	// signal handler release run before the process terminates.
	if failed {
		return errFindings
	}
	return nil
}
