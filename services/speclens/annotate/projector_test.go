// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package annotate

import (
	"testing"

	"github.com/AleutianAI/speclens/services/speclens/spectral"
)

// issueAt builds a one-line issue for projection tests.
func issueAt(code string, startLine, startChar, endLine, endChar int) spectral.Issue {
	return spectral.Issue{
		Code:     code,
		Message:  "msg",
		Severity: spectral.SeverityWarning,
		Range: spectral.Range{
			Start: spectral.Position{Line: startLine, Character: startChar},
			End:   spectral.Position{Line: endLine, Character: endChar},
		},
	}
}

func TestNewLineIndex(t *testing.T) {
	t.Run("single line", func(t *testing.T) {
		ix := NewLineIndex("hello")
		if ix.LineCount() != 1 {
			t.Errorf("LineCount = %d, want 1", ix.LineCount())
		}
		start, err := ix.LineStart(0)
		if err != nil || start != 0 {
			t.Errorf("LineStart(0) = %d, %v", start, err)
		}
	})

	t.Run("multiple lines", func(t *testing.T) {
		ix := NewLineIndex("ab\ncdef\ng")
		if ix.LineCount() != 3 {
			t.Fatalf("LineCount = %d, want 3", ix.LineCount())
		}
		for line, want := range []int{0, 3, 8} {
			got, err := ix.LineStart(line)
			if err != nil {
				t.Fatalf("LineStart(%d): %v", line, err)
			}
			if got != want {
				t.Errorf("LineStart(%d) = %d, want %d", line, got, want)
			}
		}
	})

	t.Run("trailing newline opens empty line", func(t *testing.T) {
		ix := NewLineIndex("ab\n")
		if ix.LineCount() != 2 {
			t.Errorf("LineCount = %d, want 2", ix.LineCount())
		}
	})

	t.Run("empty document has one line", func(t *testing.T) {
		ix := NewLineIndex("")
		if ix.LineCount() != 1 {
			t.Errorf("LineCount = %d, want 1", ix.LineCount())
		}
	})

	t.Run("out of range line fails", func(t *testing.T) {
		ix := NewLineIndex("ab\ncd")
		if _, err := ix.LineStart(2); err == nil {
			t.Error("Expected error for line 2")
		}
		if _, err := ix.LineStart(-1); err == nil {
			t.Error("Expected error for line -1")
		}
	})
}

func TestProject(t *testing.T) {
	// Offsets: line 0 starts at 0, line 1 at 9, line 2 at 18.
	doc := "openapi:\ninfo: {}\npaths: {}"
	ix := NewLineIndex(doc)

	t.Run("flattens line and character", func(t *testing.T) {
		anns := Project(ix, []spectral.Issue{issueAt("rule-a", 1, 0, 1, 4)})
		if len(anns) != 1 {
			t.Fatalf("Expected 1 annotation, got %d", len(anns))
		}
		if anns[0].StartOffset != 9 || anns[0].EndOffset != 13 {
			t.Errorf("Offsets = %d..%d, want 9..13", anns[0].StartOffset, anns[0].EndOffset)
		}
		if anns[0].Severity != DisplayWarning {
			t.Errorf("Severity = %v, want warning", anns[0].Severity)
		}
		if anns[0].DocumentLevel {
			t.Error("Range-anchored annotation must not be document-level")
		}
	})

	t.Run("preserves issue order", func(t *testing.T) {
		anns := Project(ix, []spectral.Issue{
			issueAt("rule-b", 2, 0, 2, 5),
			issueAt("rule-a", 0, 0, 0, 7),
		})
		if len(anns) != 2 {
			t.Fatalf("Expected 2 annotations, got %d", len(anns))
		}
		if anns[0].Code != "rule-b" || anns[1].Code != "rule-a" {
			t.Errorf("Order not preserved: %s, %s", anns[0].Code, anns[1].Code)
		}
	})

	t.Run("out-of-bounds line skips only that issue", func(t *testing.T) {
		anns := Project(ix, []spectral.Issue{
			issueAt("good-1", 0, 0, 0, 4),
			issueAt("bad", 99, 0, 99, 4),
			issueAt("good-2", 2, 0, 2, 5),
		})
		if len(anns) != 2 {
			t.Fatalf("Expected 2 annotations, got %d", len(anns))
		}
		if anns[0].Code != "good-1" || anns[1].Code != "good-2" {
			t.Errorf("Wrong survivors: %s, %s", anns[0].Code, anns[1].Code)
		}
	})

	t.Run("end before start skips the issue", func(t *testing.T) {
		anns := Project(ix, []spectral.Issue{
			issueAt("inverted", 2, 4, 0, 1),
			issueAt("good", 0, 0, 0, 2),
		})
		if len(anns) != 1 || anns[0].Code != "good" {
			t.Errorf("Expected only the valid issue, got %d annotations", len(anns))
		}
	})

	t.Run("character overrunning the line skips the issue", func(t *testing.T) {
		anns := Project(ix, []spectral.Issue{issueAt("overrun", 0, 500, 0, 501)})
		if len(anns) != 0 {
			t.Errorf("Expected no annotations, got %d", len(anns))
		}
	})

	t.Run("character overrunning the last line skips the issue", func(t *testing.T) {
		// No next line exists to bound against, so the document length
		// is the limit; without it the annotation would anchor past the
		// end of the document.
		anns := Project(ix, []spectral.Issue{issueAt("tail-overrun", 2, 500, 2, 501)})
		if len(anns) != 0 {
			t.Errorf("Expected no annotations, got %d", len(anns))
		}
	})

	t.Run("exclusive end at document end survives", func(t *testing.T) {
		// "paths: {}" on the final line is 9 chars, starting at 18; an
		// exclusive end of 9 lands exactly on the document length (27).
		anns := Project(ix, []spectral.Issue{issueAt("doc-end", 2, 0, 2, 9)})
		if len(anns) != 1 {
			t.Fatalf("Expected 1 annotation, got %d", len(anns))
		}
		if anns[0].EndOffset != 27 {
			t.Errorf("EndOffset = %d, want 27", anns[0].EndOffset)
		}
	})

	t.Run("negative character skips the issue", func(t *testing.T) {
		anns := Project(ix, []spectral.Issue{issueAt("negative", 0, -1, 0, 2)})
		if len(anns) != 0 {
			t.Errorf("Expected no annotations, got %d", len(anns))
		}
	})

	t.Run("exclusive end at line break survives", func(t *testing.T) {
		// "openapi:" is 8 chars; an exclusive end of 8 points at the
		// newline and is still a valid range end.
		anns := Project(ix, []spectral.Issue{issueAt("eol", 0, 0, 0, 8)})
		if len(anns) != 1 {
			t.Fatalf("Expected 1 annotation, got %d", len(anns))
		}
		if anns[0].EndOffset != 8 {
			t.Errorf("EndOffset = %d, want 8", anns[0].EndOffset)
		}
	})

	t.Run("empty batch projects to empty", func(t *testing.T) {
		anns := Project(ix, nil)
		if anns == nil || len(anns) != 0 {
			t.Errorf("Expected empty non-nil slice, got %v", anns)
		}
	})
}

func TestProject_UnrecognizedFormatShortCircuit(t *testing.T) {
	ix := NewLineIndex("not a spec\nat all")

	issues := []spectral.Issue{
		issueAt("some-rule", 0, 0, 0, 3),
		{
			Code:     spectral.CodeUnrecognizedFormat,
			Message:  "does not match any registered formats",
			Severity: spectral.SeverityWarning,
		},
		issueAt("other-rule", 1, 0, 1, 2),
	}

	anns := Project(ix, issues)

	if len(anns) != 1 {
		t.Fatalf("Expected single document-level annotation, got %d", len(anns))
	}
	ann := anns[0]
	if !ann.DocumentLevel {
		t.Error("Annotation should be document-level")
	}
	if ann.Code != spectral.CodeUnrecognizedFormat {
		t.Errorf("Code = %q", ann.Code)
	}
	if ann.Severity != DisplayWarning {
		t.Errorf("Severity = %v, want warning", ann.Severity)
	}
	if ann.StartOffset != 0 || ann.EndOffset != 0 {
		t.Errorf("Document-level offsets = %d..%d, want 0..0", ann.StartOffset, ann.EndOffset)
	}
}

func TestDisplaySeverityFor_Exhaustive(t *testing.T) {
	cases := []struct {
		severity spectral.Severity
		want     DisplaySeverity
	}{
		{spectral.SeverityError, DisplayError},
		{spectral.SeverityWarning, DisplayWarning},
		{spectral.SeverityInfo, DisplayInfo},
		{spectral.SeverityHint, DisplayHint},
		{spectral.Severity(42), DisplayInfo},
	}

	for _, tc := range cases {
		if got := DisplaySeverityFor(tc.severity); got != tc.want {
			t.Errorf("DisplaySeverityFor(%v) = %v, want %v", tc.severity, got, tc.want)
		}
	}
}

func TestDisplaySeverityString(t *testing.T) {
	cases := []struct {
		severity DisplaySeverity
		want     string
	}{
		{DisplayError, "error"},
		{DisplayWarning, "warning"},
		{DisplayInfo, "info"},
		{DisplayHint, "hint"},
		{DisplaySeverity(9), "unknown"},
	}

	for _, tc := range cases {
		if got := tc.severity.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
