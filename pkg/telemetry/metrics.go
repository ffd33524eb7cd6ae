// Copyright 2026 © The GENESIS Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CoordinationMetrics records coordination outcomes for production
// monitoring. Recording is advisory: a nil receiver is valid and all
// methods become no-ops.
type CoordinationMetrics struct {
	// orchestrationCounter counts completed calls by tier and
	// collaboration type.
	orchestrationCounter metric.Int64Counter

	// consensusHistogram tracks the distribution of consensus levels.
	consensusHistogram metric.Float64Histogram

	// durationHistogram tracks end-to-end orchestration latency.
	durationHistogram metric.Float64Histogram

	// gatherFailureCounter counts failed agent invocations by agent.
	gatherFailureCounter metric.Int64Counter

	// safetyBlockCounter counts queries refused by the safety screen.
	safetyBlockCounter metric.Int64Counter
}

// NewCoordinationMetrics creates the metric instruments on the global
// meter provider.
func NewCoordinationMetrics() (*CoordinationMetrics, error) {
	meter := otel.Meter("genesis/coordination")

	orchestrationCounter, err := meter.Int64Counter(
		"genesis.coordination.total",
		metric.WithDescription("Completed orchestration calls by complexity tier and collaboration type"),
	)
	if err != nil {
		return nil, err
	}

	consensusHistogram, err := meter.Float64Histogram(
		"genesis.coordination.consensus",
		metric.WithDescription("Consensus level distribution per orchestration call"),
	)
	if err != nil {
		return nil, err
	}

	durationHistogram, err := meter.Float64Histogram(
		"genesis.coordination.duration_ms",
		metric.WithDescription("End-to-end orchestration latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	gatherFailureCounter, err := meter.Int64Counter(
		"genesis.gather.failures",
		metric.WithDescription("Failed agent invocations by agent"),
	)
	if err != nil {
		return nil, err
	}

	safetyBlockCounter, err := meter.Int64Counter(
		"genesis.safety.blocked",
		metric.WithDescription("Queries refused by the safety screen, by category"),
	)
	if err != nil {
		return nil, err
	}

	return &CoordinationMetrics{
		orchestrationCounter: orchestrationCounter,
		consensusHistogram:   consensusHistogram,
		durationHistogram:    durationHistogram,
		gatherFailureCounter: gatherFailureCounter,
		safetyBlockCounter:   safetyBlockCounter,
	}, nil
}

// RecordOrchestration records one completed call.
func (m *CoordinationMetrics) RecordOrchestration(ctx context.Context, tier, collaboration string, consensus float64, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(AttrComplexityTier, tier),
		attribute.String(AttrCollaborationType, collaboration),
	)
	m.orchestrationCounter.Add(ctx, 1, attrs)
	m.consensusHistogram.Record(ctx, consensus, attrs)
	m.durationHistogram.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
}

// RecordGatherFailure records one failed agent invocation.
func (m *CoordinationMetrics) RecordGatherFailure(ctx context.Context, agentID, errorCode string) {
	if m == nil {
		return
	}
	m.gatherFailureCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(AttrAgentID, agentID),
			attribute.String("error.code", errorCode),
		),
	)
}

// RecordSafetyBlock records one refused query.
func (m *CoordinationMetrics) RecordSafetyBlock(ctx context.Context, category string) {
	if m == nil {
		return
	}
	m.safetyBlockCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("safety.category", category)),
	)
}
