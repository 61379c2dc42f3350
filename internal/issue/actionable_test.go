// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name: "operation only",
			err: &ActionableError{
				Operation: "compile elvis",
			},
			expected: "failed to compile elvis",
		},
		{
			name: "operation with resource",
			err: &ActionableError{
				Operation: "compile elvis",
				Resource:  "ddg",
			},
			expected: "failed to compile elvis: ddg",
		},
		{
			name: "operation with cause",
			err: &ActionableError{
				Operation: "load configuration",
				Cause:     errors.New("syntax error at line 5"),
			},
			expected: "failed to load configuration: syntax error at line 5",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "write elvis",
				Resource:  "./ddg",
				Cause:     errors.New("permission denied"),
			},
			expected: "failed to write elvis: ./ddg: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Format(t *testing.T) {
	err := &ActionableError{
		Operation:   "compile elvis",
		Resource:    "ddg",
		Suggestions: []string{"Check the directive syntax", "See mkelvis gen --help"},
		Cause:       errors.New("duplicate name"),
	}

	plain := err.Format(false)
	if !strings.Contains(plain, "• Check the directive syntax") {
		t.Errorf("suggestions missing from Format(false): %q", plain)
	}
	if strings.Contains(plain, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") {
		t.Error("Format(true) should include the error chain")
	}
	if !strings.Contains(verbose, "1. duplicate name") {
		t.Errorf("cause missing from chain: %q", verbose)
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := WrapWithOperation(cause, "compile elvis")
	if !errors.Is(err, cause) {
		t.Error("errors.Is does not reach the cause")
	}
	if WrapWithOperation(nil, "x") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestErrorContext_Build(t *testing.T) {
	cause := errors.New("boom")
	err := NewErrorContext().
		WithOperation("fetch OpenSearch description").
		WithResource("https://example.com/opensearch.xml").
		WithSuggestion("Check the URL").
		WithSuggestions("Check your network connection", "Try the XML URL directly").
		Wrap(cause).
		Build()

	if err == nil {
		t.Fatal("Build returned nil")
	}
	if err.Operation != "fetch OpenSearch description" {
		t.Errorf("Operation = %q", err.Operation)
	}
	if len(err.Suggestions) != 3 {
		t.Errorf("Suggestions = %d, want 3", len(err.Suggestions))
	}
	if !errors.Is(err, cause) {
		t.Error("cause not wrapped")
	}

	// Operation is required.
	if NewErrorContext().WithResource("x").BuildError() != nil {
		t.Error("Build without operation should return nil")
	}
}
