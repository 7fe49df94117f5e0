// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package spectral orchestrates the Spectral API-specification linter.
//
// The package runs the external `spectral` CLI against in-memory document
// content and turns its JSON output into typed findings:
//
//	Content → Temp File → spectral -r <ruleset> -f json lint <file> → Issues
//
// # Acceptance rules
//
// A run is only trusted when all of the following hold:
//
//   - the process exits with code 0, 1, or 2 (the tool's own convention for
//     clean / error findings / lower-severity findings, treated as opaque)
//   - stderr is blank
//   - stdout parses as a JSON issue array (blank stdout means no findings)
//
// Any violation is a fatal *SpectralError; a partial issue list is never
// returned next to an error.
//
// # Severity Mapping
//
// Spectral's integer severities map onto the package enum:
//
//	| Wire value | Severity        |
//	|------------|-----------------|
//	| 0          | SeverityError   |
//	| 1          | SeverityWarning |
//	| 2          | SeverityInfo    |
//	| 3          | SeverityHint    |
//	| other      | SeverityInfo    |
//
// # Usage
//
//	runner := spectral.NewRunner(spectral.WithWorkingDir(projectRoot))
//	runner.Detect()
//
//	result, err := runner.LintContent(ctx, content, ".spectral.yaml")
//	if err != nil {
//	    // Run failed; errors.Is against the package sentinels.
//	}
//	for _, issue := range result.Issues {
//	    // Findings in rule-evaluation order.
//	}
//
// # Thread Safety
//
// All exported types are safe for concurrent use. Concurrent runs are fully
// independent; no state is shared between them.
package spectral
