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
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/AleutianAI/speclens/services/speclens/spectral"
)

// SpecLens finding palette.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C")).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("#F4D03F"))
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("#20B9B4"))
	styleHint    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2C4A54"))
	styleFile    = lipgloss.NewStyle().Bold(true).Underline(true)
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2C4A54"))
)

// renderer prints lint results, styled on a TTY, JSON when asked or piped.
type renderer struct {
	jsonOut bool
	pretty  bool
}

func newRenderer(forceJSON bool) *renderer {
	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return &renderer{
		jsonOut: forceJSON || !tty,
		pretty:  tty && !forceJSON,
	}
}

// renderResult prints the findings of one file.
func (r *renderer) renderResult(path string, result *spectral.RunResult) {
	if r.jsonOut {
		out := struct {
			Path string `json:"path"`
			*spectral.RunResult
		}{Path: path, RunResult: result}
		data, err := json.Marshal(out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "speclens: encoding result: %v\n", err)
			return
		}
		fmt.Println(string(data))
		return
	}

	fmt.Println(styleFile.Render(path))
	if !result.LinterAvailable {
		fmt.Println(styleMuted.Render("  spectral not installed; skipped"))
		return
	}
	if len(result.Issues) == 0 {
		fmt.Println(styleInfo.Render("  no findings"))
		return
	}

	for _, issue := range result.Issues {
		fmt.Printf("  %s %s %s %s\n",
			severityStyle(issue.Severity).Render(issue.Severity.String()),
			styleMuted.Render(fmt.Sprintf("%d:%d", issue.Range.Start.Line+1, issue.Range.Start.Character+1)),
			issue.Message,
			styleMuted.Render(issue.Code),
		)
	}
}

// renderSummary prints one closing line across all files.
func (r *renderer) renderSummary(results []*spectral.RunResult) {
	if r.jsonOut {
		return
	}

	var errs, warns int
	for _, result := range results {
		errs += result.CountBySeverity(spectral.SeverityError)
		warns += result.CountBySeverity(spectral.SeverityWarning)
	}

	summary := fmt.Sprintf("%d file(s), %d error(s), %d warning(s)", len(results), errs, warns)
	if errs > 0 {
		fmt.Println(styleError.Render(summary))
	} else if warns > 0 {
		fmt.Println(styleWarning.Render(summary))
	} else {
		fmt.Println(styleInfo.Render(summary))
	}
}

func severityStyle(s spectral.Severity) lipgloss.Style {
	switch s {
	case spectral.SeverityError:
		return styleError
	case spectral.SeverityWarning:
		return styleWarning
	case spectral.SeverityHint:
		return styleHint
	default:
		return styleInfo
	}
}
