// Copyright 2026 © The GENESIS Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for coordination telemetry. These follow
// OpenTelemetry naming conventions where applicable.
const (
	// Coordination attributes
	AttrRunID             = "genesis.coordination.run_id"
	AttrQueryLength       = "genesis.coordination.query_length"
	AttrComplexityTier    = "genesis.coordination.complexity_tier"
	AttrCollaborationType = "genesis.coordination.collaboration_type"
	AttrConsensusLevel    = "genesis.coordination.consensus_level"
	AttrAgentCount        = "genesis.coordination.agent_count"
	AttrConflictCount     = "genesis.coordination.conflict_count"

	// Agent attributes
	AttrAgentID         = "genesis.agent.id"
	AttrAgentConfidence = "genesis.agent.confidence"
	AttrAgentLatencyMs  = "genesis.agent.latency_ms"
	AttrAgentFailed     = "genesis.agent.failed"

	// LLM attributes (standard gen_ai conventions)
	AttrLLMModel = "gen_ai.request.model"
)

// CoordinationAttributes returns common attributes for orchestration
// spans.
func CoordinationAttributes(runID string, queryLen int, tier string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrRunID, runID),
		attribute.Int(AttrQueryLength, queryLen),
	}
	if tier != "" {
		attrs = append(attrs, attribute.String(AttrComplexityTier, tier))
	}
	return attrs
}

// ResultAttributes returns attributes describing a finished call.
func ResultAttributes(collaboration string, consensus float64, agents, conflicts int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrCollaborationType, collaboration),
		attribute.Float64(AttrConsensusLevel, consensus),
		attribute.Int(AttrAgentCount, agents),
		attribute.Int(AttrConflictCount, conflicts),
	}
}

// PerspectiveAttributes returns attributes for one agent invocation span.
func PerspectiveAttributes(agentID string, confidence float64, latencyMs float64, failed bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAgentID, agentID),
		attribute.Float64(AttrAgentConfidence, confidence),
		attribute.Float64(AttrAgentLatencyMs, latencyMs),
		attribute.Bool(AttrAgentFailed, failed),
	}
}
