// Package gather fans one query out to a set of agents concurrently and
// collects one perspective per agent, tolerating partial failures.
package gather

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ngx-platform/genesis/pkg/core"
	"github.com/ngx-platform/genesis/pkg/errors"
	"github.com/ngx-platform/genesis/pkg/invoke"
	"github.com/ngx-platform/genesis/pkg/resilience"
	"github.com/ngx-platform/genesis/pkg/telemetry"
)

// DefaultAgentTimeout bounds each individual agent invocation.
const DefaultAgentTimeout = 8 * time.Second

// fallbackMessage is the synthetic perspective text when every agent fails.
const fallbackMessage = "En este momento no he podido consultar a los especialistas. " +
	"Puedo darte una orientacion general si reformulas tu consulta."

// Gatherer invokes agents concurrently and re-orders results to request
// order so downstream stages stay deterministic.
type Gatherer struct {
	invoker      invoke.Invoker
	agentTimeout time.Duration
	logger       *slog.Logger
	tracer       trace.Tracer
}

// Option configures a Gatherer.
type Option func(*Gatherer)

// WithAgentTimeout sets the per-agent invocation timeout.
func WithAgentTimeout(d time.Duration) Option {
	return func(g *Gatherer) {
		if d > 0 {
			g.agentTimeout = d
		}
	}
}

// WithLogger sets the logger used for per-agent failure diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gatherer) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a Gatherer around the given invoker.
func New(invoker invoke.Invoker, opts ...Option) (*Gatherer, error) {
	if invoker == nil {
		return nil, errors.New(errors.CodeInvalidInput, "invoker is required", nil)
	}
	g := &Gatherer{
		invoker:      invoker,
		agentTimeout: DefaultAgentTimeout,
		logger:       slog.Default(),
		tracer:       otel.Tracer("genesis/gather"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Collect asks every agent concurrently and returns one perspective per
// agent in request order. Failed invocations yield errored perspectives;
// if every agent fails, a single synthetic fallback perspective is
// returned so later stages never see an empty set.
func (g *Gatherer) Collect(ctx context.Context, query string, agentIDs []core.AgentID, userContext map[string]any) []core.AgentPerspective {
	if len(agentIDs) == 0 {
		return []core.AgentPerspective{g.fallbackPerspective(nil)}
	}

	perspectives := make([]core.AgentPerspective, len(agentIDs))
	var wg sync.WaitGroup
	for idx, id := range agentIDs {
		wg.Add(1)
		go func(idx int, id core.AgentID) {
			defer wg.Done()
			perspectives[idx] = g.collectOne(ctx, id, query, userContext)
		}(idx, id)
	}
	wg.Wait()

	// When every agent failed, degrade to a single synthetic perspective
	// carrying the first failure as its cause.
	value, _ := resilience.WithFallback(ctx,
		func() (interface{}, error) {
			for _, p := range perspectives {
				if !p.Failed() {
					return perspectives, nil
				}
			}
			return nil, perspectives[0].Err
		},
		resilience.FallbackFunc(func(ctx context.Context, primaryErr error) (interface{}, error) {
			return []core.AgentPerspective{g.fallbackPerspective(primaryErr)}, nil
		}))
	return value.([]core.AgentPerspective)
}

// collectOne runs a single invocation under its own timeout. A timeout or
// invocation error is an expected runtime condition, captured in the
// perspective rather than propagated.
func (g *Gatherer) collectOne(ctx context.Context, id core.AgentID, query string, userContext map[string]any) (p core.AgentPerspective) {
	ctx, span := g.tracer.Start(ctx, "gather.agent")
	defer func() {
		span.SetAttributes(telemetry.PerspectiveAttributes(
			string(p.AgentID), p.Confidence,
			float64(p.Latency.Milliseconds()), p.Failed())...)
		span.End()
	}()

	start := time.Now()

	value, err := resilience.WithTimeoutResult(ctx,
		resilience.TimeoutConfig{Duration: g.agentTimeout},
		func(ctx context.Context) (interface{}, error) {
			return g.invoker.Invoke(ctx, id, query, userContext)
		})
	latency := time.Since(start)

	if err != nil {
		g.logger.Warn("perspective gathering failed",
			slog.String("agent_id", string(id)),
			slog.String("error_code", string(errors.CodeOf(err))),
			slog.Duration("latency", latency),
		)
		return core.AgentPerspective{
			AgentID:    id,
			Confidence: 0.0,
			Latency:    latency,
			Err: errors.New(errors.CodeAgentUnavailable, "agent unavailable", err).
				WithContext("agent_id", string(id)),
		}
	}

	result, ok := value.(*invoke.Result)
	if !ok || result == nil {
		return core.AgentPerspective{
			AgentID:    id,
			Confidence: 0.0,
			Latency:    latency,
			Err:        errors.New(errors.CodeAgentUnavailable, "agent returned no result", nil),
		}
	}

	return core.AgentPerspective{
		AgentID:         id,
		ResponseText:    result.ResponseText,
		Recommendations: append([]string(nil), result.Recommendations...),
		Confidence:      result.Confidence,
		Latency:         latency,
	}
}

// fallbackPerspective is the degraded stand-in produced when no agent
// answered.
func (g *Gatherer) fallbackPerspective(cause error) core.AgentPerspective {
	return core.AgentPerspective{
		AgentID:      core.AgentOrchestrator,
		ResponseText: fallbackMessage,
		Confidence:   0.0,
		Err: errors.New(errors.CodeAllAgentsUnavailable, "all agents unavailable", cause).
			WithRecoverable(true),
	}
}
