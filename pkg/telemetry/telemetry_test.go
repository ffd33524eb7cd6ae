// Copyright 2026 © The GENESIS Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestInit(t *testing.T) {
	shutdown, err := Init("test-service", "v0.0.1")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if shutdown == nil {
		t.Fatal("Shutdown function should not be nil")
	}

	if err := shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestInitWithConfigRejectsUnknownExporter(t *testing.T) {
	if _, err := InitWithConfig("svc", "v0", Config{Exporter: "bogus"}); err == nil {
		t.Fatal("expected error for unknown exporter")
	}
	if _, err := InitWithConfig("svc", "v0", Config{Exporter: "otlp"}); err == nil {
		t.Fatal("expected error for otlp without endpoint")
	}
}

func TestExportHeaders(t *testing.T) {
	headers := exportHeaders(Config{
		OTLPHeaders: map[string]string{"x-scope-orgid": "genesis"},
		OTLPUser:    "collector",
		OTLPToken:   "secret",
	})
	if headers["x-scope-orgid"] != "genesis" {
		t.Errorf("custom header lost: %v", headers)
	}
	// collector:secret base64-encoded
	if headers["authorization"] != "Basic Y29sbGVjdG9yOnNlY3JldA==" {
		t.Errorf("unexpected authorization header: %q", headers["authorization"])
	}

	if got := exportHeaders(Config{OTLPUser: "solo"}); len(got) != 0 {
		t.Errorf("user without token must not emit auth header: %v", got)
	}
}

func TestConfigureSlog(t *testing.T) {
	var buf bytes.Buffer
	logger := ConfigureSlog(&buf, "debug", "json")

	logger.Debug("coordination started", "run_id", "run-1")
	if !strings.Contains(buf.String(), `"run_id":"run-1"`) {
		t.Fatalf("log output missing attribute: %s", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCoordinationMetrics(t *testing.T) {
	m, err := NewCoordinationMetrics()
	if err != nil {
		t.Fatalf("NewCoordinationMetrics failed: %v", err)
	}

	ctx := context.Background()
	m.RecordOrchestration(ctx, "moderate", "parallel_consensus", 0.85, 120*time.Millisecond)
	m.RecordGatherFailure(ctx, "nutrition", "TIMEOUT")
	m.RecordSafetyBlock(ctx, "medical_advice")

	// A nil receiver must be a safe no-op.
	var nilMetrics *CoordinationMetrics
	nilMetrics.RecordOrchestration(ctx, "simple", "single_agent", 1.0, time.Millisecond)
	nilMetrics.RecordGatherFailure(ctx, "training", "TIMEOUT")
	nilMetrics.RecordSafetyBlock(ctx, "medical_advice")
}

func TestCoordinationAttributes(t *testing.T) {
	attrs := CoordinationAttributes("run-42", 24, "complex")
	if len(attrs) != 3 {
		t.Fatalf("attrs = %d, want 3", len(attrs))
	}

	attrs = CoordinationAttributes("run-42", 24, "")
	if len(attrs) != 2 {
		t.Fatalf("attrs without tier = %d, want 2", len(attrs))
	}

	result := ResultAttributes("hierarchical", 0.66, 3, 1)
	if len(result) != 4 {
		t.Fatalf("result attrs = %d, want 4", len(result))
	}
}
