// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates SpecLens settings.
//
// Settings travel as a YAML document (typically `.speclens.yaml` in the
// project root) owned by the host environment; this package presents them to
// the engine as plain values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/speclens/services/speclens/scope"
)

// settingsValidate is the validator instance for settings.
var settingsValidate = validator.New()

// Settings configures the lint engine for one project.
//
// Thread Safety: Treat as immutable after Load returns.
type Settings struct {
	// Ruleset is the path or identifier of the spectral ruleset.
	Ruleset string `yaml:"ruleset" validate:"required"`

	// IncludePatterns is the newline-separated list of Ant-style glob
	// patterns selecting which documents are eligible for analysis.
	IncludePatterns string `yaml:"include_patterns"`

	// BaseDir is the directory relative include patterns resolve against.
	// Defaults to the directory containing the settings file.
	BaseDir string `yaml:"base_dir"`

	// TimeoutSeconds bounds one spectral run. Defaults to 30.
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"gte=0,lte=600"`

	// Watch configures the re-lint watcher.
	Watch WatchSettings `yaml:"watch"`
}

// WatchSettings configures watch mode.
type WatchSettings struct {
	// DebounceMillis is how long to wait for further changes before
	// re-linting. Defaults to 250.
	DebounceMillis int `yaml:"debounce_millis" validate:"gte=0,lte=60000"`

	// MetricsAddr, when non-empty, exposes Prometheus metrics on this
	// address during watch mode (e.g., ":9105").
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns settings with documented defaults applied.
func Default() Settings {
	return Settings{
		Ruleset:         ".spectral.yaml",
		IncludePatterns: "**/*.yaml\n**/*.yml\n**/*.json",
		TimeoutSeconds:  30,
		Watch: WatchSettings{
			DebounceMillis: 250,
		},
	}
}

// Load reads, defaults, and validates settings from a YAML file.
//
// Description:
//
//	Missing fields fall back to Default values; BaseDir falls back to
//	the settings file's directory. Paths support `~` expansion.
//
// Inputs:
//
//	path - Path to the YAML settings file
//
// Outputs:
//
//	*Settings - The validated settings
//	error - Non-nil if the file is unreadable, malformed, or invalid
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}

	if s.TimeoutSeconds == 0 {
		s.TimeoutSeconds = 30
	}
	if s.Watch.DebounceMillis == 0 {
		s.Watch.DebounceMillis = 250
	}
	if s.BaseDir == "" {
		abs, err := filepath.Abs(filepath.Dir(path))
		if err != nil {
			return nil, fmt.Errorf("resolving base dir: %w", err)
		}
		s.BaseDir = abs
	}

	s.Ruleset = expandHome(s.Ruleset)
	s.BaseDir = expandHome(s.BaseDir)

	if err := settingsValidate.Struct(&s); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return &s, nil
}

// Patterns returns the parsed include patterns, order preserved.
func (s *Settings) Patterns() []string {
	return scope.SplitPatterns(s.IncludePatterns)
}

// Timeout returns the per-run timeout as a duration.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Debounce returns the watch debounce window as a duration.
func (s *Settings) Debounce() time.Duration {
	return time.Duration(s.Watch.DebounceMillis) * time.Millisecond
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
