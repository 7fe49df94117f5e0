// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncluded(t *testing.T) {
	base := "/project"

	cases := []struct {
		name      string
		candidate string
		patterns  []string
		sep       rune
		want      bool
	}{
		{
			name:      "relative pattern resolves against base",
			candidate: "/project/api/openapi.yaml",
			patterns:  []string{"api/*.yaml"},
			sep:       '/',
			want:      true,
		},
		{
			name:      "relative pattern rejects file outside base",
			candidate: "/elsewhere/api/openapi.yaml",
			patterns:  []string{"api/*.yaml"},
			sep:       '/',
			want:      false,
		},
		{
			name:      "single star does not cross segments",
			candidate: "/project/api/v1/openapi.yaml",
			patterns:  []string{"api/*.yaml"},
			sep:       '/',
			want:      false,
		},
		{
			name:      "double star crosses segments",
			candidate: "/project/api/v1/deep/openapi.yaml",
			patterns:  []string{"api/**/*.yaml"},
			sep:       '/',
			want:      true,
		},
		{
			name:      "question mark matches one character",
			candidate: "/project/spec1.yaml",
			patterns:  []string{"spec?.yaml"},
			sep:       '/',
			want:      true,
		},
		{
			name:      "question mark rejects two characters",
			candidate: "/project/spec12.yaml",
			patterns:  []string{"spec?.yaml"},
			sep:       '/',
			want:      false,
		},
		{
			name:      "wildcard-leading pattern ignores base",
			candidate: "/anywhere/at/all/openapi.yaml",
			patterns:  []string{"**/openapi.yaml"},
			sep:       '/',
			want:      true,
		},
		{
			name:      "absolute pattern matches as-is",
			candidate: "/opt/specs/openapi.yaml",
			patterns:  []string{"/opt/specs/*.yaml"},
			sep:       '/',
			want:      true,
		},
		{
			name:      "any match among several patterns wins",
			candidate: "/project/docs/readme.md",
			patterns:  []string{"api/*.yaml", "**/*.md", "nothing"},
			sep:       '/',
			want:      true,
		},
		{
			name:      "empty pattern list excludes everything",
			candidate: "/project/api/openapi.yaml",
			patterns:  nil,
			sep:       '/',
			want:      false,
		},
		{
			name:      "empty pattern string contributes no match",
			candidate: "/project/api/openapi.yaml",
			patterns:  []string{""},
			sep:       '/',
			want:      false,
		},
		{
			name:      "backslash pattern matches slash candidate",
			candidate: "/project/api/openapi.yaml",
			patterns:  []string{`api\*.yaml`},
			sep:       '/',
			want:      true,
		},
		{
			name:      "slash pattern matches backslash candidate",
			candidate: `C:\project\api\openapi.yaml`,
			patterns:  []string{`C:/project/**`},
			sep:       '\\',
			want:      true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Included(base, tc.candidate, tc.patterns, tc.sep)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIncluded_MatchAllPattern(t *testing.T) {
	// `**/*` is the conventional "everything" pattern and must match any
	// candidate regardless of base.
	candidates := []string{
		"/project/openapi.yaml",
		"/project/deep/nested/dir/spec.json",
		"/elsewhere/file.txt",
		"relative/path.yml",
	}

	for _, candidate := range candidates {
		assert.True(t, Included("/project", candidate, []string{"**/*"}, '/'),
			"**/* should match %s", candidate)
	}
}

func TestIncluded_Deterministic(t *testing.T) {
	base := "/project"
	candidate := "/project/api/openapi.yaml"
	patterns := []string{"api/**", "*.json"}

	first := Included(base, candidate, patterns, '/')
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Included(base, candidate, patterns, '/'))
	}
}

func TestIncluded_MalformedPattern(t *testing.T) {
	// A syntactically broken pattern contributes no match and does not
	// poison the rest of the list.
	patterns := []string{"[", "**/*.yaml"}
	assert.True(t, Included("/p", "/p/a.yaml", patterns, '/'))
	assert.False(t, Included("/p", "/p/a.txt", patterns, '/'))
}

func TestSplitPatterns(t *testing.T) {
	raw := "**/*.yaml\n\n  api/**  \n**/*.json\n"

	patterns := SplitPatterns(raw)

	assert.Equal(t, []string{"**/*.yaml", "api/**", "**/*.json"}, patterns)
}

func TestSplitPatterns_Empty(t *testing.T) {
	assert.Empty(t, SplitPatterns(""))
	assert.Empty(t, SplitPatterns("  \n \n\t"))
}
