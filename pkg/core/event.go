package core

import (
	"context"
	"time"
)

// EventType identifies a semantic event emitted during coordination.
type EventType string

const (
	EventCoordinationStarted   EventType = "coordination.started"
	EventPerspectiveGathered   EventType = "coordination.perspective.gathered"
	EventConflictDetected      EventType = "coordination.conflict.detected"
	EventCoordinationCompleted EventType = "coordination.completed"
	EventCoordinationDegraded  EventType = "coordination.degraded"
)

// Event captures a semantic streaming/logging event.
type Event struct {
	Type      EventType
	Agent     AgentID
	RunID     string
	Timestamp time.Time
	Payload   map[string]any
}

// EventEmitter receives semantic events.
type EventEmitter interface {
	Emit(ctx context.Context, event Event)
}

// NoopEventEmitter is a default no-op implementation.
type NoopEventEmitter struct{}

// Emit implements EventEmitter.
func (NoopEventEmitter) Emit(_ context.Context, _ Event) {}

// NewEvent builds a default event with timestamp.
func NewEvent(eventType EventType, agent AgentID, runID string, payload map[string]any) Event {
	return Event{
		Type:      eventType,
		Agent:     agent,
		RunID:     runID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
