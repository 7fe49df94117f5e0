// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scope decides which documents are eligible for analysis.
//
// Inclusion is an any-match predicate over user-configured Ant-style glob
// patterns (`*` within a segment, `**` across segments, `?` one character).
// Matching is pure string work: no filesystem access, no working-directory
// state, fully deterministic. Callers that cannot resolve a document's path
// must treat it as excluded — running an external tool on out-of-scope
// content is a correctness risk, while skipping an in-scope document is just
// a missed analysis to log.
package scope

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// wildcardChars start a pattern that is matched as-is instead of being
// resolved against the base directory.
const wildcardChars = "*?"

// Included reports whether the candidate path matches any configured pattern.
//
// Description:
//
//	Both the candidate and every pattern are normalized to sep before
//	comparison, so patterns written with either `/` or `\` behave the
//	same on every platform. A pattern is rooted (matched as-is) when it
//	is an absolute path or starts with a wildcard; otherwise it is
//	resolved relative to base by prefixing the normalized base plus sep.
//
// Inputs:
//
//	base - Directory relative patterns resolve against
//	candidate - Path of the document being considered
//	patterns - Configured glob patterns; empty list matches nothing
//	sep - The separator both sides are normalized to
//
// Outputs:
//
//	bool - True if any pattern matches
//
// Thread Safety: Pure function; safe for concurrent use.
func Included(base, candidate string, patterns []string, sep rune) bool {
	normCandidate := normalize(candidate, sep)
	normBase := normalize(base, sep)

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if matches(normBase, normCandidate, normalize(pattern, sep), sep) {
			return true
		}
	}

	return false
}

// matches evaluates one normalized pattern against a normalized candidate.
func matches(base, candidate, pattern string, sep rune) bool {
	if !rooted(pattern) {
		pattern = strings.TrimSuffix(base, string(sep)) + string(sep) + pattern
	}

	// doublestar matches on `/` only, so shift both sides there for the
	// comparison. Separators inside the inputs are already uniform.
	match, err := doublestar.Match(
		strings.ReplaceAll(pattern, string(sep), "/"),
		strings.ReplaceAll(candidate, string(sep), "/"),
	)
	if err != nil {
		// Malformed pattern contributes no match.
		return false
	}
	return match
}

// rooted reports whether a pattern is matched as-is rather than resolved
// against the base directory.
func rooted(pattern string) bool {
	if pattern == "" {
		return false
	}
	if strings.ContainsRune(wildcardChars, rune(pattern[0])) {
		return true
	}
	return filepath.IsAbs(pattern) || isWindowsAbs(pattern)
}

// isWindowsAbs recognizes drive-letter and UNC absolute paths even when the
// matcher runs on a non-Windows host, since patterns travel in settings
// shared across operating systems.
func isWindowsAbs(pattern string) bool {
	if len(pattern) >= 3 && pattern[1] == ':' && (pattern[2] == '\\' || pattern[2] == '/') {
		return isASCIILetter(pattern[0])
	}
	return strings.HasPrefix(pattern, `\\`)
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// normalize rewrites both slash spellings in s to the configured separator.
func normalize(s string, sep rune) string {
	s = strings.ReplaceAll(s, "\\", string(sep))
	return strings.ReplaceAll(s, "/", string(sep))
}

// SplitPatterns parses the newline-separated pattern list from settings.
//
// Description:
//
//	Blank lines and surrounding whitespace are dropped; the order of the
//	remaining patterns is preserved for diagnostics, though it does not
//	affect the match outcome.
func SplitPatterns(raw string) []string {
	lines := strings.Split(raw, "\n")
	patterns := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			patterns = append(patterns, line)
		}
	}
	return patterns
}
