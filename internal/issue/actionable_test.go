// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load project snapshot"},
			expected: "failed to load project snapshot",
		},
		{
			name: "operation with resource",
			err: &ActionableError{
				Operation: "load project snapshot",
				Resource:  "snapshot.cue",
			},
			expected: "failed to load project snapshot: snapshot.cue",
		},
		{
			name: "operation with cause",
			err: &ActionableError{
				Operation: "resolve classpath",
				Cause:     errors.New("artifact has no file"),
			},
			expected: "failed to resolve classpath: artifact has no file",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "load project snapshot",
				Resource:  "snapshot.cue",
				Cause:     errors.New("file not found"),
			},
			expected: "failed to load project snapshot: snapshot.cue: file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	err := fmt.Errorf("outer: %w", &ActionableError{Operation: "x", Cause: sentinel})
	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should find the cause through ActionableError")
	}

	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatal("errors.As should find the ActionableError")
	}
	if ae.Operation != "x" {
		t.Errorf("Operation = %q, want %q", ae.Operation, "x")
	}

	if (&ActionableError{Operation: "x"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil without a cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := errors.New("permission denied")
	err := &ActionableError{
		Operation:   "write properties file",
		Resource:    "/tmp/out",
		Suggestions: []string{"Check directory permissions", "Use --dry-run"},
		Cause:       fmt.Errorf("open /tmp/out: %w", inner),
	}

	short := err.Format(false)
	if !strings.HasPrefix(short, "failed to write properties file: /tmp/out") {
		t.Errorf("Format(false) has wrong prefix: %q", short)
	}
	if !strings.Contains(short, "  • Check directory permissions") {
		t.Errorf("Format(false) missing suggestion bullet: %q", short)
	}
	if strings.Contains(short, "Error chain:") {
		t.Errorf("Format(false) should not include the error chain: %q", short)
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") {
		t.Errorf("Format(true) missing error chain: %q", verbose)
	}
	if !strings.Contains(verbose, "1. open /tmp/out: permission denied") {
		t.Errorf("Format(true) missing first chain link: %q", verbose)
	}
	if !strings.Contains(verbose, "2. permission denied") {
		t.Errorf("Format(true) missing second chain link: %q", verbose)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("run analysis engine").
		WithResource("sonar-scanner").
		WithSuggestion("Check engine.command").
		WithSuggestions("Run with --dry-run", "Inspect the properties file").
		WithIssue(EngineFailedId).
		Wrap(cause).
		Build()

	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if ae.Operation != "run analysis engine" || ae.Resource != "sonar-scanner" {
		t.Errorf("unexpected operation/resource: %+v", ae)
	}
	if len(ae.Suggestions) != 3 {
		t.Errorf("len(Suggestions) = %d, want 3", len(ae.Suggestions))
	}
	if ae.IssueID != EngineFailedId {
		t.Errorf("IssueID = %d, want %d", ae.IssueID, EngineFailedId)
	}
	if !errors.Is(ae, cause) {
		t.Error("built error should wrap the cause")
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	t.Parallel()

	if ae := NewErrorContext().WithResource("x").Build(); ae != nil {
		t.Errorf("Build() = %v, want nil", ae)
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() = %v, want untyped nil", err)
	}
}

func TestWrapWithOperation(t *testing.T) {
	t.Parallel()

	if WrapWithOperation(nil, "x") != nil {
		t.Error("WrapWithOperation(nil) should return nil")
	}

	err := WrapWithOperation(errors.New("bad"), "decode snapshot")
	if got := err.Error(); got != "failed to decode snapshot: bad" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIDOf(t *testing.T) {
	t.Parallel()

	tagged := NewErrorContext().
		WithOperation("merge properties").
		WithIssue(ConflictingConfigurationId).
		BuildError()

	if got := IDOf(fmt.Errorf("wrapped: %w", tagged)); got != ConflictingConfigurationId {
		t.Errorf("IDOf(wrapped) = %d, want %d", got, ConflictingConfigurationId)
	}
	if got := IDOf(errors.New("plain")); got != 0 {
		t.Errorf("IDOf(plain) = %d, want 0", got)
	}
}
