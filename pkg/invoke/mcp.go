package invoke

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ngx-platform/genesis/pkg/core"
	"github.com/ngx-platform/genesis/pkg/errors"
	"github.com/ngx-platform/genesis/pkg/resilience"
)

// ToolCaller abstracts MCP tool execution so tests can stub the transport.
// The production implementation is an mcp-go client session.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error)
}

// MCPInvoker asks remote agents exposed as MCP tools. Each agent answers
// the tool named "ask_<agent>".
type MCPInvoker struct {
	caller ToolCaller
	retry  resilience.RetryConfig
}

// MCPOption configures an MCPInvoker.
type MCPOption func(*MCPInvoker)

// WithRetry overrides the transport retry policy.
func WithRetry(retry resilience.RetryConfig) MCPOption {
	return func(i *MCPInvoker) {
		i.retry = retry
	}
}

// NewMCP creates a remote invoker backed by an MCP tool caller.
func NewMCP(caller ToolCaller, opts ...MCPOption) (*MCPInvoker, error) {
	if caller == nil {
		return nil, errors.New(errors.CodeInvalidInput, "mcp tool caller is required", nil)
	}
	inv := &MCPInvoker{
		caller: caller,
		retry: resilience.DefaultRetryConfig().
			WithMaxAttempts(2).
			WithInitialDelay(200 * time.Millisecond),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv, nil
}

// ToolName returns the MCP tool that answers for an agent.
func ToolName(agentID core.AgentID) string {
	return "ask_" + string(agentID)
}

// Invoke implements Invoker.
func (i *MCPInvoker) Invoke(ctx context.Context, agentID core.AgentID, query string, userContext map[string]any) (*Result, error) {
	if agentID == "" {
		return nil, errors.New(errors.CodeInvalidInput, "agent id is required", nil)
	}

	args := map[string]interface{}{
		"query": query,
	}
	if len(userContext) > 0 {
		args["user_context"] = userContext
	}

	value, err := i.retry.DoWithResult(ctx, func() (interface{}, error) {
		res, callErr := i.caller.CallTool(ctx, ToolName(agentID), args)
		if callErr != nil {
			if ctx.Err() != nil {
				return nil, errors.New(errors.CodeTimeout, "mcp call canceled", callErr).
					WithContext("agent_id", string(agentID)).
					WithRecoverable(true)
			}
			return nil, errors.New(errors.CodeTransport, "mcp call failed", callErr).
				WithContext("agent_id", string(agentID)).
				WithRecoverable(true)
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}

	res, ok := value.(*mcp.CallToolResult)
	if !ok || res == nil {
		return nil, errors.New(errors.CodeTransport, "mcp tool returned no result", nil).
			WithContext("agent_id", string(agentID))
	}
	if res.IsError {
		return nil, errors.New(errors.CodeAgentError, "agent reported an error", nil).
			WithContext("agent_id", string(agentID)).
			WithContext("detail", extractTextContent(res.Content)).
			WithRecoverable(false)
	}

	return decodeToolResult(res)
}

// decodeToolResult maps a tool result to the invocation contract. Agents
// should return the structured {response_text, recommendations,
// confidence_score} shape; plain text degrades to a bare response.
func decodeToolResult(res *mcp.CallToolResult) (*Result, error) {
	if res.StructuredContent != nil {
		raw, err := json.Marshal(res.StructuredContent)
		if err == nil {
			var out Result
			if err := json.Unmarshal(raw, &out); err == nil && out.ResponseText != "" {
				out.Confidence = clamp(out.Confidence)
				return &out, nil
			}
		}
	}

	text := extractTextContent(res.Content)
	if text == "" {
		return nil, errors.New(errors.CodeAgentError, "agent returned empty content", nil)
	}

	var out Result
	if err := json.Unmarshal([]byte(text), &out); err == nil && out.ResponseText != "" {
		out.Confidence = clamp(out.Confidence)
		return &out, nil
	}

	return ParseCompletion(text), nil
}

func extractTextContent(items []mcp.Content) string {
	if len(items) == 0 {
		return ""
	}
	var parts []string
	for _, item := range items {
		switch content := item.(type) {
		case mcp.TextContent:
			parts = append(parts, content.Text)
		case *mcp.TextContent:
			parts = append(parts, content.Text)
		}
	}
	return strings.Join(parts, "\n")
}
