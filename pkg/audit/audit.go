// Copyright 2026 © The GENESIS Authors
// SPDX-License-Identifier: Apache-2.0

// Package audit persists coordination outcomes for later inspection.
package audit

import (
	"context"
	"time"

	"github.com/ngx-platform/genesis/pkg/core"
)

// Record is one persisted coordination outcome.
type Record struct {
	RunID                  string
	Query                  string
	Complexity             core.ComplexityTier
	Collaboration          core.CollaborationType
	ParticipatingAgents    []core.AgentID
	ConsensusLevel         float64
	UnifiedRecommendations []string
	ExecutionTime          time.Duration
	CreatedAt              time.Time
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	RunID         string
	Complexity    core.ComplexityTier
	Collaboration core.CollaborationType
	Limit         int
}

// Store persists coordination records.
type Store interface {
	Record(ctx context.Context, rec Record) error
	List(ctx context.Context, filter Filter) ([]Record, error)
}

// FromResult builds a record from a coordination result.
func FromResult(query string, res *core.CoordinationResult) Record {
	return Record{
		RunID:                  res.RunID,
		Query:                  query,
		Complexity:             res.Complexity,
		Collaboration:          res.Collaboration,
		ParticipatingAgents:    res.ParticipatingAgents,
		ConsensusLevel:         res.ConsensusLevel,
		UnifiedRecommendations: res.UnifiedRecommendations,
		ExecutionTime:          res.ExecutionTime,
		CreatedAt:              time.Now().UTC(),
	}
}
