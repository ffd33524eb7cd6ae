// Package core defines the shared data model for multi-agent coordination.
package core

import "time"

// AgentID names one of the known specialized agents.
type AgentID string

const (
	AgentTraining     AgentID = "training"
	AgentNutrition    AgentID = "nutrition"
	AgentGenetics     AgentID = "genetics"
	AgentWellness     AgentID = "wellness"
	AgentMotivation   AgentID = "motivation"
	AgentRecovery     AgentID = "recovery"
	AgentBiohacking   AgentID = "biohacking"
	AgentProgress     AgentID = "progress"
	AgentOrchestrator AgentID = "orchestrator"
)

// ComplexityTier classifies how many domains a query likely spans.
type ComplexityTier string

const (
	ComplexitySimple   ComplexityTier = "simple"
	ComplexityModerate ComplexityTier = "moderate"
	ComplexityComplex  ComplexityTier = "complex"
	ComplexityIntegral ComplexityTier = "integral"
)

// AgentCeiling returns the maximum number of agents consulted for a tier.
func (t ComplexityTier) AgentCeiling() int {
	switch t {
	case ComplexitySimple:
		return 1
	case ComplexityModerate:
		return 2
	case ComplexityComplex:
		return 4
	case ComplexityIntegral:
		return 6
	default:
		return 1
	}
}

// rank orders tiers from narrowest to broadest.
func (t ComplexityTier) rank() int {
	switch t {
	case ComplexitySimple:
		return 0
	case ComplexityModerate:
		return 1
	case ComplexityComplex:
		return 2
	case ComplexityIntegral:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether t is as broad as or broader than other.
func (t ComplexityTier) AtLeast(other ComplexityTier) bool {
	return t.rank() >= other.rank()
}

// CollaborationType describes how perspectives were combined into one answer.
type CollaborationType string

const (
	CollaborationSingleAgent       CollaborationType = "single_agent"
	CollaborationSequential        CollaborationType = "sequential"
	CollaborationParallelConsensus CollaborationType = "parallel_consensus"
	CollaborationHierarchical      CollaborationType = "hierarchical"

	// CollaborationDegraded marks a result produced without any
	// specialist input because every invocation failed.
	CollaborationDegraded CollaborationType = "degraded"
)

// AgentPerspective is one agent's independent contribution for a query.
// It is immutable after the gatherer creates it.
type AgentPerspective struct {
	AgentID         AgentID
	ResponseText    string
	Recommendations []string
	Confidence      float64
	Latency         time.Duration
	Err             error
}

// Failed reports whether the invocation behind this perspective failed.
func (p AgentPerspective) Failed() bool { return p.Err != nil }

// Agreement is a recommendation endorsed by one or more perspectives.
type Agreement struct {
	Text           string
	Agents         []AgentID
	MeanConfidence float64
}

// Conflict flags contradictory guidance between two agents on one topic.
type Conflict struct {
	AgentA  AgentID
	AgentB  AgentID
	Topic   string
	Winning string
	Losing  string
}

// ConflictResolution partitions gathered recommendations into agreed and
// conflicting guidance. Every recommendation from a non-failed perspective
// lands in Agreements or is referenced by a Conflict.
type ConflictResolution struct {
	Agreements []Agreement
	Conflicts  []Conflict
	Notes      []string
}

// CoordinationResult is the final output of one orchestration call.
// The caller owns it; the core keeps no reference.
type CoordinationResult struct {
	RunID                  string
	Complexity             ComplexityTier
	Collaboration          CollaborationType
	ParticipatingAgents    []AgentID
	ConsensusLevel         float64
	UnifiedRecommendations []string
	SynthesizedResponse    string
	ExecutionTime          time.Duration
}
