package invoke

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ngx-platform/genesis/pkg/core"
	"github.com/ngx-platform/genesis/pkg/errors"
	"github.com/ngx-platform/genesis/pkg/llm"
	"github.com/ngx-platform/genesis/pkg/telemetry"
)

// defaultConfidence is assumed when a completion omits its confidence line.
const defaultConfidence = 0.5

// LLMInvoker asks agents in-process by prompting an LLM provider with the
// agent's persona.
type LLMInvoker struct {
	provider llm.Provider
	model    string
	personas map[core.AgentID]Persona
	tracer   trace.Tracer
}

// LLMOption configures an LLMInvoker.
type LLMOption func(*LLMInvoker)

// WithModel sets the model name passed to the provider.
func WithModel(model string) LLMOption {
	return func(i *LLMInvoker) {
		i.model = model
	}
}

// WithPersonas replaces the built-in persona prompts.
func WithPersonas(personas map[core.AgentID]Persona) LLMOption {
	return func(i *LLMInvoker) {
		if len(personas) > 0 {
			i.personas = personas
		}
	}
}

// NewLLM creates an in-process invoker backed by the given provider.
func NewLLM(provider llm.Provider, opts ...LLMOption) (*LLMInvoker, error) {
	if provider == nil {
		return nil, errors.New(errors.CodeInvalidInput, "llm provider is required", nil)
	}
	inv := &LLMInvoker{
		provider: provider,
		personas: DefaultPersonas(),
		tracer:   otel.Tracer("genesis/invoke"),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv, nil
}

// Invoke implements Invoker.
func (i *LLMInvoker) Invoke(ctx context.Context, agentID core.AgentID, query string, userContext map[string]any) (*Result, error) {
	if agentID == "" {
		return nil, errors.New(errors.CodeInvalidInput, "agent id is required", nil)
	}

	persona, ok := i.personas[agentID]
	if !ok {
		return nil, errors.New(errors.CodeInvalidInput, "unknown agent", nil).
			WithContext("agent_id", string(agentID))
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: persona.SystemPrompt},
	}
	if summary := contextSummary(userContext); summary != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: summary})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: query})

	ctx, span := i.tracer.Start(ctx, "llm.chat")
	if i.model != "" {
		span.SetAttributes(attribute.String(telemetry.AttrLLMModel, i.model))
	}
	resp, err := i.provider.Chat(ctx, llm.ChatRequest{
		Model:    i.model,
		Messages: messages,
	})
	span.End()
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.New(errors.CodeTimeout, "agent invocation canceled", err).
				WithContext("agent_id", string(agentID)).
				WithRecoverable(true)
		}
		return nil, errors.New(errors.CodeLLMError, "llm provider failed", err).
			WithContext("agent_id", string(agentID)).
			WithRecoverable(true)
	}

	result := ParseCompletion(resp.Content)
	return result, nil
}

// contextSummary renders the opaque user context into a short system note.
// Keys are rendered in insertion-independent sorted order for determinism.
func contextSummary(userContext map[string]any) string {
	if len(userContext) == 0 {
		return ""
	}
	keys := make([]string, 0, len(userContext))
	for k := range userContext {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Contexto del usuario: ")
	for idx, k := range keys {
		if idx > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s=%v", k, userContext[k])
	}
	return b.String()
}

// ParseCompletion extracts the free-text analysis, the recommendation
// bullets, and the confidence line from a persona-formatted completion.
// Malformed completions degrade gracefully: the whole text becomes the
// response and confidence falls back to the default.
func ParseCompletion(content string) *Result {
	lines := strings.Split(content, "\n")

	var (
		analysis        []string
		recommendations []string
		confidence      = defaultConfidence
		inRecs          bool
	)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)

		switch {
		case strings.HasPrefix(upper, "RECOMENDACIONES") || strings.HasPrefix(upper, "RECOMMENDATIONS"):
			inRecs = true
		case strings.HasPrefix(upper, "CONFIANZA") || strings.HasPrefix(upper, "CONFIDENCE"):
			inRecs = false
			if v, ok := parseConfidenceLine(trimmed); ok {
				confidence = v
			}
		case inRecs && isBullet(trimmed):
			recommendations = append(recommendations, stripBullet(trimmed))
		case !inRecs && trimmed != "":
			analysis = append(analysis, trimmed)
		}
	}

	return &Result{
		ResponseText:    strings.Join(analysis, "\n"),
		Recommendations: recommendations,
		Confidence:      clamp(confidence),
	}
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "•")
}

func stripBullet(line string) string {
	return strings.TrimSpace(strings.TrimLeft(line, "-*• "))
}

func parseConfidenceLine(line string) (float64, bool) {
	_, after, found := strings.Cut(line, ":")
	if !found {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(after), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
