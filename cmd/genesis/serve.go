package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ngx-platform/genesis/pkg/config"
	"github.com/ngx-platform/genesis/pkg/coordinator"
	"github.com/ngx-platform/genesis/pkg/mcp"
	"github.com/ngx-platform/genesis/pkg/telemetry"
)

// runServe hosts the coordinator as a long-running MCP server exposing a
// "coordinate" tool. The config file is watched while serving, so
// coordination settings like the run timeout apply without a restart.
func runServe(ctx context.Context, global globalFlags, cfg *config.Config, args []string) {
	cmd := flag.NewFlagSet("serve", flag.ContinueOnError)
	listen := cmd.String("listen", "127.0.0.1:8823", "streamable HTTP listen address")
	stdio := cmd.Bool("stdio", false, "serve over stdio instead of HTTP")
	if err := cmd.Parse(args); err != nil {
		fatal(err)
	}
	ensureNoArgs(cmd.Args())

	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	shutdown, err := telemetry.InitWithConfig("genesis", cliVersion, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
		OTLPHeaders:  cfg.Telemetry.OTLPHeaders,
		OTLPUser:     cfg.Telemetry.OTLPUser,
		OTLPToken:    cfg.Telemetry.OTLPToken,
	})
	if err != nil {
		fatal(err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()

	watcher, err := config.NewWatcher(global.ConfigArgs, config.WithWatchLogger(logger))
	if err != nil {
		fatal(err)
	}
	watcher.OnChange(func(next *config.Config) {
		logger.Info("coordination settings applied",
			slog.Duration("timeout", next.Coordination.Timeout),
			slog.Duration("agent_timeout", next.Coordination.AgentTimeout))
	})
	watcher.Start(ctx)
	defer watcher.Stop()

	coord, cleanup, err := buildCoordinator(ctx, cfg, logger)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	srv := newCoordinateServer(coord, watcher, global.Timeout)

	if *stdio {
		logger.Info("serving coordination over stdio")
		if err := srv.ServeStdio(); err != nil {
			fatal(err)
		}
		return
	}

	httpSrv := mcpserver.NewStreamableHTTPServer(srv.MCPServer())
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving coordination over streamable HTTP",
		slog.String("addr", *listen))
	if err := httpSrv.Start(*listen); err != nil {
		fatal(err)
	}
}

// newCoordinateServer builds the MCP surface for serve mode. The run
// timeout is read from the watcher on every call, so a config reload
// takes effect mid-serve.
func newCoordinateServer(coord *coordinator.Coordinator, watcher *config.Watcher, fallbackTimeout time.Duration) *mcp.Server {
	srv := mcp.NewServer("genesis", cliVersion)
	srv.RegisterTool("coordinate",
		"Coordina a los agentes especialistas y sintetiza una respuesta unificada",
		func(ctx context.Context, args map[string]interface{}) (*mcpgo.CallToolResult, error) {
			query, _ := args["query"].(string)
			query = strings.TrimSpace(query)
			if query == "" {
				return toolError("query is required"), nil
			}

			userContext := map[string]any{}
			if raw, ok := args["user_context"].(string); ok && raw != "" {
				if err := json.Unmarshal([]byte(raw), &userContext); err != nil {
					return toolError("user_context must be a JSON object: " + err.Error()), nil
				}
			}

			timeout := watcher.Config().Coordination.Timeout
			if timeout <= 0 {
				timeout = fallbackTimeout
			}
			runCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			result, err := coord.Orchestrate(runCtx, query, userContext)
			if err != nil {
				return toolError(err.Error()), nil
			}

			payload, err := json.Marshal(coordinationJSON(result))
			if err != nil {
				return toolError(err.Error()), nil
			}
			return &mcpgo.CallToolResult{
				Content: []mcpgo.Content{mcpgo.TextContent{Type: "text", Text: string(payload)}},
			}, nil
		})
	return srv
}

func toolError(message string) *mcpgo.CallToolResult {
	return &mcpgo.CallToolResult{
		IsError: true,
		Content: []mcpgo.Content{mcpgo.TextContent{Type: "text", Text: message}},
	}
}
