// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command speclens lints API specifications with Spectral.
//
// Usage:
//
//	speclens lint openapi.yaml
//	speclens lint --ruleset rules/.spectral.yaml api/*.yaml
//	speclens watch ./api
//	speclens scope api/openapi.yaml
//
// The lint command exits 1 when any error-severity finding exists, so it
// slots directly into CI pipelines.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/speclens/pkg/logging"
	"github.com/AleutianAI/speclens/services/speclens/config"
)

var (
	flagConfig  string
	flagRuleset string
	flagDebug   bool
	flagJSON    bool
)

func main() {
	root := &cobra.Command{
		Use:           "speclens",
		Short:         "Lint API specifications with Spectral",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to .speclens.yaml (default: search upward from cwd)")
	root.PersistentFlags().StringVarP(&flagRuleset, "ruleset", "r", "", "spectral ruleset path (overrides settings)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&flagJSON, "json", false, "machine-readable JSON output")

	root.AddCommand(newLintCommand())
	root.AddCommand(newWatchCommand())
	root.AddCommand(newScopeCommand())

	code, message := exitStatus(root.Execute())
	if message != "" {
		fmt.Fprintln(os.Stderr, message)
	}
	os.Exit(code)
}

// exitStatus maps a command error to the process exit code and an optional
// stderr message. Findings-only failures already rendered their output and
// exit silently.
func exitStatus(err error) (int, string) {
	if err == nil {
		return 0, ""
	}
	if errors.Is(err, errFindings) {
		return 1, ""
	}
	return 1, fmt.Sprintf("speclens: %v", err)
}

// setupLogging installs the process-wide logger honoring --debug.
func setupLogging() *logging.Logger {
	level := logging.LevelInfo
	if flagDebug {
		level = logging.LevelDebug
	}
	logger, _ := logging.New(logging.Config{
		Level:   level,
		Service: "speclens",
	})
	logger.SetAsDefault()
	return logger
}

// loadSettings resolves settings from --config or by searching upward from
// the working directory, falling back to defaults when no file exists.
func loadSettings() (*config.Settings, error) {
	path := flagConfig
	if path == "" {
		path = findSettingsFile()
	}

	var settings *config.Settings
	if path == "" {
		defaults := config.Default()
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		defaults.BaseDir = cwd
		settings = &defaults
	} else {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		settings = loaded
	}

	if flagRuleset != "" {
		settings.Ruleset = flagRuleset
	}

	return settings, nil
}

// findSettingsFile searches the working directory and its ancestors for a
// .speclens.yaml file.
func findSettingsFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ".speclens.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
