// SPDX-License-Identifier: MPL-2.0

package model

const (
	// SeverityWarning indicates a recoverable problem; analysis continues
	// with reduced data.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal error worth surfacing.
	SeverityError Severity = "error"
)

// Diagnostic codes.
const (
	CodeSourceDirUnreadable   = "source_dir_unreadable"
	CodeSourceDirCycle        = "source_dir_cycle"
	CodeScanAllUnreadable     = "scan_all_unreadable"
	CodeRootOnlyKeyIgnored    = "root_only_key_ignored"
	CodeJUnitDirEmpty         = "junit_dir_empty"
	CodeAnalysisSkipped       = "analysis_skipped"
	CodeAndroidVariantMissing = "android_variant_missing"
)

type (
	// Severity is the diagnostic level.
	Severity string

	// Diagnostic is a structured, non-fatal finding. Diagnostics are returned
	// to callers rather than printed so the CLI decides how to render them.
	Diagnostic struct {
		Severity Severity
		// Code is a machine-readable identifier such as "source_dir_unreadable".
		Code    string
		Message string
		// Module is the module path the diagnostic belongs to (optional).
		Module string
		// Path is the file or directory involved (optional).
		Path string
		// Cause is the underlying error (optional).
		Cause error
	}
)

// Warning builds a SeverityWarning diagnostic.
func Warning(code, module, path, message string, cause error) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		Module:   module,
		Path:     path,
		Cause:    cause,
	}
}
