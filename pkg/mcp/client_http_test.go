// Copyright 2026 © The GENESIS Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"context"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func TestClient_StreamableHTTP_AskAgent(t *testing.T) {
	srv := NewServer("genesis-agents", "0.1.0")
	srv.RegisterAgentTool("training", "responde preguntas de entrenamiento", func(ctx context.Context, args map[string]interface{}) (*mcpgo.CallToolResult, error) {
		return &mcpgo.CallToolResult{
			Content: []mcpgo.Content{mcpgo.TextContent{Type: "text", Text: "Entrena fuerza tres veces por semana"}},
		}, nil
	})

	httpServer := mcpserver.NewTestStreamableHTTPServer(srv.MCPServer())
	defer httpServer.Close()

	client, err := NewClientWithStreamableHTTPProtocol(httpServer.URL, mcpgo.LATEST_PROTOCOL_VERSION)
	if err != nil {
		t.Fatalf("NewClientWithStreamableHTTPProtocol error: %v", err)
	}
	defer client.Close()

	tools, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools error: %v", err)
	}
	if len(tools) == 0 || tools[0].Name != "ask_training" {
		t.Fatalf("Expected tool 'ask_training', got %+v", tools)
	}

	result, err := client.CallTool(context.Background(), "ask_training", map[string]interface{}{
		"query": "Como mejoro mi fuerza?",
	})
	if err != nil {
		t.Fatalf("CallTool error: %v", err)
	}
	if result == nil || result.IsError {
		t.Fatalf("Expected successful tool result, got %+v", result)
	}
}
