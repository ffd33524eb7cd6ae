// Copyright 2026 © The GENESIS Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// AgentHandler answers a coordination query on behalf of one specialist
// agent. The args map carries at least "query" and optionally "user_context".
type AgentHandler func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error)

// Server wraps the mcp-go server so specialist agents can be exposed as
// "ask_<agent>" tools that a coordinator consumes remotely.
type Server struct {
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server.
func NewServer(name, version string) *Server {
	return &Server{
		mcpServer: server.NewMCPServer(name, version),
	}
}

// RegisterAgentTool exposes a specialist agent under the tool name
// "ask_<agentID>".
func (s *Server) RegisterAgentTool(agentID, description string, handler AgentHandler) {
	s.RegisterTool("ask_"+agentID, description, handler)
}

// RegisterTool registers a tool with the server.
func (s *Server) RegisterTool(name, description string, handler AgentHandler) {
	tool := mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString("query", mcp.Required(), mcp.Description("user query in natural language")),
		mcp.WithString("user_context", mcp.Description("JSON-encoded user context")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})
		return handler(ctx, args)
	})
}

// MCPServer exposes the underlying mcp-go server, mainly so tests can
// mount it on an HTTP listener.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
