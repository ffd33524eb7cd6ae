package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ngx-platform/genesis/pkg/core"
)

// fileSchema is the on-disk registry document.
type fileSchema struct {
	Topics   []TopicProfile `yaml:"topics"`
	Agents   []AgentProfile `yaml:"agents"`
	Fallback core.AgentID   `yaml:"fallback"`
}

// LoadFile reads a capability table from a YAML document. The file fully
// replaces the built-in table; partial overrides are not supported so the
// declaration order stays explicit.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML bytes.
func Parse(data []byte) (*Registry, error) {
	var doc fileSchema
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse registry yaml: %w", err)
	}
	fallback := doc.Fallback
	if fallback == "" {
		fallback = core.AgentOrchestrator
	}
	return New(doc.Topics, doc.Agents, fallback)
}
