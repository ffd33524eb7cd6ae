// Package invoke defines the agent invocation contract consumed by the
// perspective gatherer, with one concrete implementation per transport.
// The transport is chosen at construction time; the coordination core
// never inspects the concrete type at runtime.
package invoke

import (
	"context"

	"github.com/ngx-platform/genesis/pkg/core"
)

// Result is one agent's raw answer before it becomes a perspective.
type Result struct {
	ResponseText    string   `json:"response_text"`
	Recommendations []string `json:"recommendations"`
	Confidence      float64  `json:"confidence_score"`
}

// Invoker asks one agent a question. Implementations map transport
// failures to typed errors (TIMEOUT, TRANSPORT_ERROR, AGENT_ERROR,
// LLM_ERROR) so the gatherer can treat them uniformly.
type Invoker interface {
	Invoke(ctx context.Context, agentID core.AgentID, query string, userContext map[string]any) (*Result, error)
}

// clamp bounds a confidence score to [0,1].
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
