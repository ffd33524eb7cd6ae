// Copyright 2026 © The GENESIS Authors
// SPDX-License-Identifier: Apache-2.0

// Package safety screens coordination queries and synthesized answers.
//
// Checks run at two points of one coordination call:
//   - Input: before the query reaches the classifier (medication and
//     diagnosis requests the system must not answer directly).
//   - Output: before the synthesized response reaches the caller
//     (concrete dosage figures are masked).
package safety

import (
	"context"
	"sync"
)

// CheckResult is the outcome of screening a query.
type CheckResult struct {
	// Blocked indicates the query should not be coordinated.
	Blocked bool

	// Reason explains the block, empty otherwise.
	Reason string

	// CheckerID identifies which checker triggered the block.
	CheckerID string

	// Category names the violated policy.
	Category string
}

// FilterResult is the outcome of screening a response.
type FilterResult struct {
	// Content is the possibly rewritten response.
	Content string

	// Modified indicates the response was changed.
	Modified bool

	// Redactions lists what was masked.
	Redactions []Redaction
}

// Redaction describes one masked fragment.
type Redaction struct {
	Type        string
	Original    string
	Replacement string
}

// InputChecker screens a query before coordination starts.
type InputChecker interface {
	CheckInput(ctx context.Context, query string) CheckResult
	ID() string
}

// OutputFilter screens a synthesized response before it is returned.
type OutputFilter interface {
	FilterOutput(ctx context.Context, response string) FilterResult
	ID() string
}

// Screen chains input checkers and output filters. Safe for concurrent
// use; checkers and filters added at runtime apply to subsequent calls.
type Screen struct {
	mu       sync.RWMutex
	checkers []InputChecker
	filters  []OutputFilter
}

// Option configures a Screen.
type Option func(*Screen)

// WithInputChecker adds an input checker.
func WithInputChecker(c InputChecker) Option {
	return func(s *Screen) { s.checkers = append(s.checkers, c) }
}

// WithOutputFilter adds an output filter.
func WithOutputFilter(f OutputFilter) Option {
	return func(s *Screen) { s.filters = append(s.filters, f) }
}

// New creates a screen with the given options. Default returns the
// screen used by the coordinator when none is injected.
func New(opts ...Option) *Screen {
	s := &Screen{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Default returns the standard screen: the medical query checker on
// input and the dosage filter on output.
func Default() *Screen {
	return New(
		WithInputChecker(NewMedicalQueryChecker()),
		WithOutputFilter(NewDosageFilter()),
	)
}

// CheckInput runs the checkers in order and returns the first blocking
// result. Context cancellation stops the chain without blocking.
func (s *Screen) CheckInput(ctx context.Context, query string) CheckResult {
	s.mu.RLock()
	checkers := s.checkers
	s.mu.RUnlock()

	for _, c := range checkers {
		select {
		case <-ctx.Done():
			return CheckResult{}
		default:
		}
		if res := c.CheckInput(ctx, query); res.Blocked {
			res.CheckerID = c.ID()
			return res
		}
	}
	return CheckResult{}
}

// FilterOutput runs the filters in sequence, each over the previous
// filter's content.
func (s *Screen) FilterOutput(ctx context.Context, response string) FilterResult {
	s.mu.RLock()
	filters := s.filters
	s.mu.RUnlock()

	result := FilterResult{Content: response}
	for _, f := range filters {
		select {
		case <-ctx.Done():
			return result
		default:
		}
		fr := f.FilterOutput(ctx, result.Content)
		if fr.Modified {
			result.Content = fr.Content
			result.Modified = true
			result.Redactions = append(result.Redactions, fr.Redactions...)
		}
	}
	return result
}

// AddInputChecker adds a checker at runtime.
func (s *Screen) AddInputChecker(c InputChecker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers = append(s.checkers, c)
}

// AddOutputFilter adds a filter at runtime.
func (s *Screen) AddOutputFilter(f OutputFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = append(s.filters, f)
}
