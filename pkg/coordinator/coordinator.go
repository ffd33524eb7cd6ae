// Copyright 2026 © The GENESIS Authors
// SPDX-License-Identifier: Apache-2.0

// Package coordinator exposes the multi-agent orchestration entry point.
// One Orchestrate call runs classification, concurrent perspective
// gathering, conflict resolution, and synthesis; every call is stateless
// and independent.
package coordinator

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ngx-platform/genesis/pkg/audit"
	"github.com/ngx-platform/genesis/pkg/classifier"
	"github.com/ngx-platform/genesis/pkg/conflict"
	"github.com/ngx-platform/genesis/pkg/core"
	"github.com/ngx-platform/genesis/pkg/errors"
	"github.com/ngx-platform/genesis/pkg/gather"
	"github.com/ngx-platform/genesis/pkg/registry"
	"github.com/ngx-platform/genesis/pkg/safety"
	"github.com/ngx-platform/genesis/pkg/synthesis"
	"github.com/ngx-platform/genesis/pkg/telemetry"
)

// Coordinator is the facade over the coordination pipeline. Construct it
// once and share it; all per-call state lives on the stack.
type Coordinator struct {
	registry    *registry.Registry
	classifier  *classifier.Classifier
	gatherer    *gather.Gatherer
	resolver    *conflict.Resolver
	synthesizer *synthesis.Synthesizer
	screen      *safety.Screen

	metrics *telemetry.CoordinationMetrics
	store   audit.Store
	emitter core.EventEmitter
	logger  *slog.Logger
	tracer  trace.Tracer
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithMetrics attaches coordination metrics. Recording is advisory and
// never fails a call.
func WithMetrics(m *telemetry.CoordinationMetrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithAuditStore attaches a store that records every completed call.
func WithAuditStore(store audit.Store) Option {
	return func(c *Coordinator) { c.store = store }
}

// WithEventEmitter attaches a semantic event sink.
func WithEventEmitter(emitter core.EventEmitter) Option {
	return func(c *Coordinator) { c.emitter = emitter }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithSafetyScreen replaces the default input/output screen.
func WithSafetyScreen(screen *safety.Screen) Option {
	return func(c *Coordinator) { c.screen = screen }
}

// New assembles a coordinator from its pipeline stages.
func New(reg *registry.Registry, cls *classifier.Classifier, g *gather.Gatherer, r *conflict.Resolver, s *synthesis.Synthesizer, opts ...Option) (*Coordinator, error) {
	if reg == nil || cls == nil || g == nil || r == nil || s == nil {
		return nil, errors.New(errors.CodeInvalidInput, "coordinator requires all pipeline stages", nil)
	}
	c := &Coordinator{
		registry:    reg,
		classifier:  cls,
		gatherer:    g,
		resolver:    r,
		synthesizer: s,
		screen:      safety.Default(),
		emitter:     core.NoopEventEmitter{},
		logger:      slog.Default(),
		tracer:      otel.Tracer("genesis/coordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Orchestrate runs the full pipeline for one query. Agent-level failures
// never surface as errors; the only error cases are an empty query and a
// query refused by the safety screen.
func (c *Coordinator) Orchestrate(ctx context.Context, query string, userContext map[string]any) (*core.CoordinationResult, error) {
	if query == "" {
		return nil, errors.New(errors.CodeInvalidInput, "query must not be empty", nil)
	}

	ctx, runID := core.EnsureRunID(ctx)
	started := time.Now()

	ctx, span := c.tracer.Start(ctx, "coordination.orchestrate")
	defer span.End()
	span.SetAttributes(telemetry.CoordinationAttributes(runID, len(query), "")...)

	if check := c.screen.CheckInput(ctx, query); check.Blocked {
		c.logger.WarnContext(ctx, "query blocked by safety screen",
			"run_id", runID, "category", check.Category, "checker", check.CheckerID)
		c.metrics.RecordSafetyBlock(ctx, check.Category)
		return nil, errors.New(errors.CodeInvalidInput, check.Reason, nil).
			WithAttribute("safety.category", check.Category)
	}

	c.emitter.Emit(ctx, core.NewEvent(core.EventCoordinationStarted, "", runID, map[string]any{
		"query_length": len(query),
	}))

	analysis := c.classifier.Analyze(query)
	span.SetAttributes(attribute.String(telemetry.AttrComplexityTier, string(analysis.Tier)))
	c.logger.InfoContext(ctx, "query classified",
		"run_id", runID,
		"tier", analysis.Tier,
		"agents", analysis.Agents,
		"topics", analysis.ActivatedTopics,
	)

	perspectives := c.gatherer.Collect(ctx, query, analysis.Agents, userContext)
	for _, p := range perspectives {
		c.emitter.Emit(ctx, core.NewEvent(core.EventPerspectiveGathered, p.AgentID, runID, map[string]any{
			"failed":     p.Failed(),
			"confidence": p.Confidence,
		}))
		if p.Failed() {
			c.metrics.RecordGatherFailure(ctx, string(p.AgentID), string(errors.CodeOf(p.Err)))
		}
	}

	resolution := c.resolver.Resolve(ctx, perspectives)
	for _, conf := range resolution.Conflicts {
		c.emitter.Emit(ctx, core.NewEvent(core.EventConflictDetected, conf.AgentA, runID, map[string]any{
			"against": string(conf.AgentB),
			"topic":   conf.Topic,
		}))
	}

	out := c.synthesizer.Synthesize(synthesis.Input{
		Perspectives: perspectives,
		Resolution:   resolution,
		Complexity:   analysis.Tier,
		Lead:         analysis.Lead,
	})

	response := out.Response
	if filtered := c.screen.FilterOutput(ctx, response); filtered.Modified {
		c.logger.InfoContext(ctx, "response filtered by safety screen",
			"run_id", runID, "redactions", len(filtered.Redactions))
		response = filtered.Content
	}

	result := &core.CoordinationResult{
		RunID:                  runID,
		Complexity:             analysis.Tier,
		Collaboration:          out.Collaboration,
		ParticipatingAgents:    out.ParticipatingAgents,
		ConsensusLevel:         out.Consensus,
		UnifiedRecommendations: out.UnifiedRecommendations,
		SynthesizedResponse:    response,
		ExecutionTime:          time.Since(started),
	}

	span.SetAttributes(telemetry.ResultAttributes(
		string(result.Collaboration),
		result.ConsensusLevel,
		len(result.ParticipatingAgents),
		len(resolution.Conflicts),
	)...)

	eventType := core.EventCoordinationCompleted
	if result.Collaboration == core.CollaborationDegraded {
		eventType = core.EventCoordinationDegraded
	}
	c.emitter.Emit(ctx, core.NewEvent(eventType, "", runID, map[string]any{
		"collaboration": string(result.Collaboration),
		"consensus":     result.ConsensusLevel,
	}))

	c.logger.InfoContext(ctx, "coordination completed",
		"run_id", runID,
		"tier", result.Complexity,
		"collaboration", result.Collaboration,
		"agents", len(result.ParticipatingAgents),
		"consensus", result.ConsensusLevel,
		"elapsed", result.ExecutionTime,
	)

	c.record(ctx, query, result)
	return result, nil
}

// record emits metrics and the audit entry. Both are advisory; failures
// are logged and swallowed.
func (c *Coordinator) record(ctx context.Context, query string, result *core.CoordinationResult) {
	c.metrics.RecordOrchestration(ctx,
		string(result.Complexity),
		string(result.Collaboration),
		result.ConsensusLevel,
		result.ExecutionTime,
	)
	if c.store != nil {
		if err := c.store.Record(ctx, audit.FromResult(query, result)); err != nil {
			c.logger.WarnContext(ctx, "audit record failed",
				"run_id", result.RunID, "error", err)
		}
	}
}
