package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ngx-platform/genesis/pkg/audit"
	"github.com/ngx-platform/genesis/pkg/classifier"
	"github.com/ngx-platform/genesis/pkg/config"
	"github.com/ngx-platform/genesis/pkg/conflict"
	"github.com/ngx-platform/genesis/pkg/coordinator"
	"github.com/ngx-platform/genesis/pkg/core"
	"github.com/ngx-platform/genesis/pkg/embedding"
	"github.com/ngx-platform/genesis/pkg/gather"
	"github.com/ngx-platform/genesis/pkg/invoke"
	"github.com/ngx-platform/genesis/pkg/llm"
	"github.com/ngx-platform/genesis/pkg/mcp/pool"
	"github.com/ngx-platform/genesis/pkg/registry"
	"github.com/ngx-platform/genesis/pkg/synthesis"
	"github.com/ngx-platform/genesis/pkg/telemetry"
)

// mockCompletion keeps the mock provider parseable by the invoker so the
// full pipeline can run offline.
const mockCompletion = "Puedo darte una orientacion general sobre tu consulta.\n" +
	"Recomendaciones:\n" +
	"- Manten una rutina constante\n" +
	"- Revisa tu progreso cada semana\n" +
	"Confianza: 0.8"

func runAsk(ctx context.Context, global globalFlags, cfg *config.Config, args []string) {
	cmd := flag.NewFlagSet("ask", flag.ContinueOnError)
	var contextPairs multiFlag
	cmd.Var(&contextPairs, "context", "user context key=value (repeatable)")
	if err := cmd.Parse(args); err != nil {
		fatal(err)
	}

	query := strings.TrimSpace(strings.Join(cmd.Args(), " "))
	if query == "" {
		// No positional query, read it from stdin.
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fatal(err)
		}
		query = strings.TrimSpace(string(data))
	}
	if query == "" {
		fatal(fmt.Errorf("usage: genesis ask [--context key=value] <query>"))
	}

	userContext, err := parseContextPairs(contextPairs)
	if err != nil {
		fatal(err)
	}

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

	coord, cleanup, err := buildCoordinator(ctx, cfg, logger)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	runCtx, cancel := context.WithTimeout(ctx, global.Timeout)
	defer cancel()

	result, err := coord.Orchestrate(runCtx, query, userContext)
	if err != nil {
		fatal(err)
	}

	if global.JSON {
		printJSON(coordinationJSON(result))
		return
	}
	printResult(result)
}

func runClassify(global globalFlags, cfg *config.Config, args []string) {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		fatal(fmt.Errorf("usage: genesis classify <query>"))
	}

	reg, err := loadRegistry(cfg)
	if err != nil {
		fatal(err)
	}

	analysis := classifier.New(reg).Analyze(query)
	if global.JSON {
		printJSON(map[string]any{
			"complexity":       analysis.Tier,
			"agents":           analysis.Agents,
			"activated_topics": analysis.ActivatedTopics,
			"lead":             analysis.Lead,
		})
		return
	}

	fmt.Printf("Complexity: %s\n", analysis.Tier)
	fmt.Printf("Topics:     %s\n", strings.Join(analysis.ActivatedTopics, ", "))
	fmt.Printf("Agents:     %s\n", joinAgents(analysis.Agents))
	if analysis.Lead != "" {
		fmt.Printf("Lead:       %s\n", analysis.Lead)
	}
}

// buildCoordinator wires the full pipeline from configuration. The
// returned cleanup closes transports and stores in reverse order.
func buildCoordinator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*coordinator.Coordinator, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	reg, err := loadRegistry(cfg)
	if err != nil {
		return nil, cleanup, err
	}

	invoker, invokerCleanup, err := buildInvoker(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}
	if invokerCleanup != nil {
		cleanups = append(cleanups, invokerCleanup)
	}

	gatherer, err := gather.New(invoker,
		gather.WithAgentTimeout(cfg.Coordination.AgentTimeout),
		gather.WithLogger(logger),
	)
	if err != nil {
		return nil, cleanup, err
	}

	var heuristic conflict.Heuristic
	if cfg.Embedder.Enabled {
		embedder := embedding.NewOllama(cfg.Embedder.BaseURL, cfg.Embedder.Model)
		heuristic = conflict.NewEmbeddingHeuristic(embedder, conflict.NewKeywordHeuristic(reg))
	}
	resolver := conflict.NewResolver(reg, heuristic)

	synthesizer := synthesis.New(reg,
		synthesis.WithMaxRecommendations(cfg.Coordination.MaxRecommendations),
	)

	opts := []coordinator.Option{coordinator.WithLogger(logger)}

	metrics, err := telemetry.NewCoordinationMetrics()
	if err != nil {
		logger.Warn("coordination metrics unavailable", "error", err)
	} else {
		opts = append(opts, coordinator.WithMetrics(metrics))
	}

	if cfg.Audit.Enabled {
		store, err := audit.Open(cfg.Audit.Path)
		if err != nil {
			return nil, cleanup, err
		}
		cleanups = append(cleanups, func() { _ = store.Close() })
		opts = append(opts, coordinator.WithAuditStore(store))
	}

	var clsOpts []classifier.Option
	if len(cfg.Coordination.Ceilings) > 0 {
		ceilings := make(map[core.ComplexityTier]int, len(cfg.Coordination.Ceilings))
		for tier, n := range cfg.Coordination.Ceilings {
			ceilings[core.ComplexityTier(tier)] = n
		}
		clsOpts = append(clsOpts, classifier.WithCeilings(ceilings))
	}

	coord, err := coordinator.New(reg, classifier.New(reg, clsOpts...), gatherer, resolver, synthesizer, opts...)
	if err != nil {
		return nil, cleanup, err
	}
	return coord, cleanup, nil
}

func buildInvoker(ctx context.Context, cfg *config.Config) (invoke.Invoker, func(), error) {
	switch cfg.Coordination.Transport {
	case "", "llm":
		var provider llm.Provider
		switch cfg.LLM.Provider {
		case "", "ollama":
			provider = llm.NewOllama(cfg.LLM.BaseURL)
		case "openai":
			opts := []llm.OpenAIOption{llm.WithOpenAIModel(cfg.LLM.Model)}
			if cfg.LLM.BaseURL != "" {
				opts = append(opts, llm.WithOpenAIBaseURL(cfg.LLM.BaseURL))
			}
			provider = llm.NewOpenAI(cfg.LLM.APIKey, opts...)
		case "mock":
			provider = &llm.MockProvider{Response: mockCompletion}
		default:
			return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
		}
		invoker, err := invoke.NewLLM(provider, invoke.WithModel(cfg.LLM.Model))
		return invoker, nil, err
	case "mcp":
		if cfg.Coordination.MCPEndpoint == "" {
			return nil, nil, fmt.Errorf("coordination.mcp_endpoint is required for mcp transport")
		}
		agentPool := pool.New()
		if err := agentPool.RegisterHTTP("agents", cfg.Coordination.MCPEndpoint); err != nil {
			_ = agentPool.Close()
			return nil, nil, err
		}
		client, err := agentPool.Get(ctx, "agents")
		if err != nil {
			_ = agentPool.Close()
			return nil, nil, err
		}
		invoker, err := invoke.NewMCP(client)
		if err != nil {
			_ = agentPool.Close()
			return nil, nil, err
		}
		return invoker, func() { _ = agentPool.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown coordination transport %q", cfg.Coordination.Transport)
	}
}

func loadRegistry(cfg *config.Config) (*registry.Registry, error) {
	if cfg.Coordination.RegistryPath != "" {
		return registry.LoadFile(cfg.Coordination.RegistryPath)
	}
	return registry.Default(), nil
}

func parseContextPairs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("--context expects key=value, got %q", pair)
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out, nil
}

func printResult(result *core.CoordinationResult) {
	fmt.Println(result.SynthesizedResponse)
	fmt.Println()
	fmt.Printf("run:           %s\n", result.RunID)
	fmt.Printf("complexity:    %s\n", result.Complexity)
	fmt.Printf("collaboration: %s\n", result.Collaboration)
	fmt.Printf("agents:        %s\n", joinAgents(result.ParticipatingAgents))
	fmt.Printf("consensus:     %.2f\n", result.ConsensusLevel)
	fmt.Printf("elapsed:       %s\n", result.ExecutionTime.Round(time.Millisecond))
}

func coordinationJSON(result *core.CoordinationResult) map[string]any {
	return map[string]any{
		"run_id":                  result.RunID,
		"complexity":              result.Complexity,
		"collaboration":           result.Collaboration,
		"participating_agents":    result.ParticipatingAgents,
		"consensus_level":         result.ConsensusLevel,
		"unified_recommendations": result.UnifiedRecommendations,
		"response":                result.SynthesizedResponse,
		"execution_time_ms":       result.ExecutionTime.Milliseconds(),
	}
}

func joinAgents(ids []core.AgentID) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
