// Copyright 2026 © The GENESIS Authors
// SPDX-License-Identifier: Apache-2.0

// Package coordtest provides deterministic invokers for testing
// coordination flows without real agents.
package coordtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ngx-platform/genesis/pkg/core"
	"github.com/ngx-platform/genesis/pkg/errors"
	"github.com/ngx-platform/genesis/pkg/invoke"
)

// Call records one invocation received by a scripted invoker.
type Call struct {
	AgentID     core.AgentID
	Query       string
	UserContext map[string]any
}

// ScriptedInvoker returns canned results per agent. Agents without a
// script get a generic successful result so flows stay deterministic.
type ScriptedInvoker struct {
	mu    sync.Mutex
	calls []Call

	// Results maps agents to their scripted result.
	Results map[core.AgentID]*invoke.Result

	// Errs maps agents to a scripted failure, taking precedence over
	// Results.
	Errs map[core.AgentID]error

	// Delay is applied before answering, to exercise timeouts.
	Delay time.Duration
}

// NewScriptedInvoker creates an empty scripted invoker.
func NewScriptedInvoker() *ScriptedInvoker {
	return &ScriptedInvoker{
		Results: make(map[core.AgentID]*invoke.Result),
		Errs:    make(map[core.AgentID]error),
	}
}

// Script sets the result for one agent.
func (s *ScriptedInvoker) Script(id core.AgentID, result *invoke.Result) *ScriptedInvoker {
	s.Results[id] = result
	return s
}

// Fail sets a failure for one agent.
func (s *ScriptedInvoker) Fail(id core.AgentID, err error) *ScriptedInvoker {
	s.Errs[id] = err
	return s
}

// Invoke implements invoke.Invoker.
func (s *ScriptedInvoker) Invoke(ctx context.Context, agentID core.AgentID, query string, userContext map[string]any) (*invoke.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{AgentID: agentID, Query: query, UserContext: userContext})
	delay := s.Delay
	err := s.Errs[agentID]
	result := s.Results[agentID]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, errors.New(errors.CodeTimeout, "scripted invoker cancelled", ctx.Err())
		}
	}
	if err != nil {
		return nil, err
	}
	if result != nil {
		return result, nil
	}
	return &invoke.Result{
		ResponseText:    fmt.Sprintf("respuesta de %s", agentID),
		Recommendations: []string{fmt.Sprintf("recomendacion de %s", agentID)},
		Confidence:      0.8,
	}, nil
}

// Calls returns the invocations received so far.
func (s *ScriptedInvoker) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many invocations were received.
func (s *ScriptedInvoker) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// TimeoutInvoker always fails with a timeout error, for degraded-mode
// tests.
type TimeoutInvoker struct{}

// Invoke implements invoke.Invoker.
func (TimeoutInvoker) Invoke(context.Context, core.AgentID, string, map[string]any) (*invoke.Result, error) {
	return nil, errors.New(errors.CodeTimeout, "agent invocation timed out", nil)
}
