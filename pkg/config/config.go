// Copyright 2026 © The GENESIS Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads coordination settings from YAML files, optional
// profile overlays, GENESIS_-prefixed environment variables, and CLI
// overrides. Precedence: defaults < file < profile < env < --set.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log          LogConfig          `koanf:"log"`
	LLM          LLMConfig          `koanf:"llm"`
	Embedder     EmbedderConfig     `koanf:"embedder"`
	Telemetry    TelemetryConfig    `koanf:"telemetry"`
	Coordination CoordinationConfig `koanf:"coordination"`
	Audit        AuditConfig        `koanf:"audit"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type LLMConfig struct {
	Provider string `koanf:"provider"` // ollama, openai, mock
	Model    string `koanf:"model"`
	BaseURL  string `koanf:"base_url"`
	APIKey   string `koanf:"api_key"`
}

type EmbedderConfig struct {
	// Enabled switches conflict detection to embedding similarity.
	Enabled bool   `koanf:"enabled"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

type TelemetryConfig struct {
	Exporter     string            `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string            `koanf:"otlp_endpoint"`
	OTLPInsecure bool              `koanf:"otlp_insecure"`
	OTLPHeaders  map[string]string `koanf:"otlp_headers"`
	OTLPUser     string            `koanf:"otlp_user"`
	OTLPToken    string            `koanf:"otlp_token"`
}

type CoordinationConfig struct {
	// Transport selects the agent invocation backend: llm or mcp.
	Transport string `koanf:"transport"`

	// MCPEndpoint is the streamable HTTP endpoint when transport is mcp.
	MCPEndpoint string `koanf:"mcp_endpoint"`

	// Timeout bounds one whole coordination run. Serve mode re-reads it
	// on config reload.
	Timeout time.Duration `koanf:"timeout"`

	// AgentTimeout bounds each individual agent invocation.
	AgentTimeout time.Duration `koanf:"agent_timeout"`

	// MaxRecommendations caps how many recommendations the synthesized
	// response narrates.
	MaxRecommendations int `koanf:"max_recommendations"`

	// Ceilings overrides the per-tier agent ceilings, keyed by tier name.
	Ceilings map[string]int `koanf:"ceilings"`

	// RegistryPath optionally overrides the built-in capability table
	// with a YAML file.
	RegistryPath string `koanf:"registry_path"`
}

type AuditConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"` // sqlite file, ":memory:" for tests
}

// Load reads configuration with precedence defaults < file < environment.
// Environment variables map GENESIS_LLM_MODEL -> llm.model.
func Load(path string) (*Config, error) {
	return load(path, "", nil)
}

// LoadWithProfile loads the base file and, when a sibling
// config.<profile>.yaml exists, overlays it on top.
func LoadWithProfile(path, profile string) (*Config, error) {
	return load(path, profile, nil)
}

// LoadWithCLI loads configuration driven by CLI arguments:
// --config PATH, --profile NAME (alias --env), and repeated
// --set key=value overrides applied last.
func LoadWithCLI(args []string) (*Config, error) {
	path, profile, sets, err := parseCLIArgs(args)
	if err != nil {
		return nil, err
	}
	return load(path, profile, sets)
}

// parseCLIArgs extracts the config path, profile name and --set overrides
// from raw CLI arguments. The watcher reuses it so hot reloads rebuild the
// same precedence chain the process started with.
func parseCLIArgs(args []string) (path, profile string, sets [][2]string, err error) {
	next := func(i int) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("flag %s requires a value", args[i])
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--config":
			v, err := next(i)
			if err != nil {
				return "", "", nil, err
			}
			path = v
			i++
		case strings.HasPrefix(arg, "--config="):
			path = strings.TrimPrefix(arg, "--config=")
		case arg == "--profile", arg == "--env":
			v, err := next(i)
			if err != nil {
				return "", "", nil, err
			}
			profile = v
			i++
		case strings.HasPrefix(arg, "--profile="):
			profile = strings.TrimPrefix(arg, "--profile=")
		case strings.HasPrefix(arg, "--env="):
			profile = strings.TrimPrefix(arg, "--env=")
		case arg == "--set":
			v, err := next(i)
			if err != nil {
				return "", "", nil, err
			}
			key, value, ok := strings.Cut(v, "=")
			if !ok {
				return "", "", nil, fmt.Errorf("--set expects key=value, got %q", v)
			}
			sets = append(sets, [2]string{key, value})
			i++
		}
	}

	return path, profile, sets, nil
}

func load(path, profile string, sets [][2]string) (*Config, error) {
	k := koanf.New(".")

	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("llm.provider", "ollama")
	k.Set("llm.model", "llama3.2")

	k.Set("embedder.enabled", false)
	k.Set("embedder.base_url", "http://localhost:11434")
	k.Set("embedder.model", "nomic-embed-text")

	k.Set("telemetry.exporter", "stdout")

	k.Set("coordination.transport", "llm")
	k.Set("coordination.timeout", "30s")
	k.Set("coordination.agent_timeout", "8s")
	k.Set("coordination.max_recommendations", 5)

	k.Set("audit.enabled", false)
	k.Set("audit.path", "genesis_audit.db")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if profilePath := profileConfigPath(path, profile); profilePath != "" {
		if err := k.Load(file.Provider(profilePath), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("GENESIS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "GENESIS_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	for _, kv := range sets {
		k.Set(kv[0], kv[1])
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// profileConfigPath resolves config.yaml + "dev" to config.dev.yaml,
// returning "" when the overlay does not exist.
func profileConfigPath(base, profile string) string {
	if base == "" || profile == "" {
		return ""
	}
	dir := filepath.Dir(base)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(filepath.Base(base), ext)
	candidate := filepath.Join(dir, name+"."+profile+ext)
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	return candidate
}
