// SPDX-License-Identifier: Apache-2.0
package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := New(CodeTransport, "agent call failed", cause)

	msg := err.Error()
	if !strings.Contains(msg, "TRANSPORT_ERROR") {
		t.Errorf("expected code in message, got %q", msg)
	}
	if !strings.Contains(msg, "connection refused") {
		t.Errorf("expected cause in message, got %q", msg)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("deadline exceeded")
	err := New(CodeTimeout, "agent timed out", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestContextChaining(t *testing.T) {
	err := New(CodeAgentUnavailable, "nutrition agent down", nil).
		WithContext("agent_id", "nutrition").
		WithAttribute("transport", "mcp").
		WithRecoverable(true)

	if err.Context["agent_id"] != "nutrition" {
		t.Error("context key not recorded")
	}
	if err.Attributes["transport"] != "mcp" {
		t.Error("attribute not recorded")
	}
	if !err.Recoverable {
		t.Error("recoverable flag not set")
	}
	if err.RecoverableString() != "true" {
		t.Error("recoverable string mismatch")
	}
}

func TestAsCoordError(t *testing.T) {
	typed := New(CodeLLMError, "provider failed", nil)
	if got := AsCoordError(typed); got != typed {
		t.Error("expected identity for typed error")
	}

	plain := stderrors.New("boom")
	wrapped := AsCoordError(plain)
	if wrapped.Code != CodeInternal {
		t.Errorf("expected internal code for untyped error, got %s", wrapped.Code)
	}
	if AsCoordError(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(nil) != "" {
		t.Error("expected empty code for nil")
	}
	if CodeOf(stderrors.New("x")) != CodeInternal {
		t.Error("expected internal code for untyped error")
	}
	err := New(CodeTimeout, "slow", nil)
	if !IsTimeout(err) {
		t.Error("expected timeout detection")
	}
}
