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
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/speclens/services/speclens/scope"
)

func newScopeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scope [path]",
		Short: "Check whether a path matches the include patterns",
		Long: `Scope evaluates the configured include patterns against a path and
reports the result, useful when debugging why a document is (not) linted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScope(args[0])
		},
	}

	return cmd
}

func runScope(path string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	patterns := settings.Patterns()
	included := scope.Included(settings.BaseDir, abs, patterns, os.PathSeparator)

	fmt.Printf("path:     %s\n", abs)
	fmt.Printf("base:     %s\n", settings.BaseDir)
	fmt.Printf("patterns: %d configured\n", len(patterns))
	for _, p := range patterns {
		fmt.Printf("  - %s\n", p)
	}
	if included {
		fmt.Println("result:   included")
	} else {
		fmt.Println("result:   excluded")
		os.Exit(1)
	}
	return nil
}
