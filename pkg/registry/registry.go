// Package registry holds the static agent capability table: topics, their
// keyword vocabularies, and the agents that own them. The registry is
// read-only after construction and safe to share across concurrent
// coordination calls.
package registry

import (
	"errors"
	"fmt"

	"github.com/ngx-platform/genesis/pkg/core"
)

// TopicProfile maps one topic to its keyword vocabulary and owning agents.
type TopicProfile struct {
	Topic    string         `yaml:"topic"`
	Keywords []string       `yaml:"keywords"`
	Agents   []core.AgentID `yaml:"agents"`
}

// AgentProfile declares one agent's registry metadata.
type AgentProfile struct {
	ID core.AgentID `yaml:"id"`

	// Priority breaks exact-confidence ties during conflict resolution.
	// Higher wins.
	Priority int `yaml:"priority"`

	// HealthAdjacent marks domains whose guidance warrants a
	// professional-consultation disclaimer.
	HealthAdjacent bool `yaml:"health_adjacent"`
}

// Registry is the static capability table. Lookups never fail: unknown
// agents or topics yield empty results.
type Registry struct {
	topics     []TopicProfile
	topicIndex map[string]int
	agents     []AgentProfile
	agentIndex map[core.AgentID]int
	fallback   core.AgentID
}

// New builds a registry from explicit profiles. Declaration order of both
// slices is preserved and used as the deterministic tie-break everywhere.
func New(topics []TopicProfile, agents []AgentProfile, fallback core.AgentID) (*Registry, error) {
	if len(topics) == 0 {
		return nil, errors.New("registry requires at least one topic")
	}
	if len(agents) == 0 {
		return nil, errors.New("registry requires at least one agent")
	}
	if fallback == "" {
		return nil, errors.New("registry requires a fallback agent")
	}

	r := &Registry{
		topics:     append([]TopicProfile(nil), topics...),
		topicIndex: make(map[string]int, len(topics)),
		agents:     append([]AgentProfile(nil), agents...),
		agentIndex: make(map[core.AgentID]int, len(agents)),
		fallback:   fallback,
	}
	for i, tp := range r.topics {
		if tp.Topic == "" {
			return nil, fmt.Errorf("topic %d has empty name", i)
		}
		if _, dup := r.topicIndex[tp.Topic]; dup {
			return nil, fmt.Errorf("duplicate topic %q", tp.Topic)
		}
		r.topicIndex[tp.Topic] = i
	}
	for i, ap := range r.agents {
		if ap.ID == "" {
			return nil, fmt.Errorf("agent %d has empty id", i)
		}
		if _, dup := r.agentIndex[ap.ID]; dup {
			return nil, fmt.Errorf("duplicate agent %q", ap.ID)
		}
		r.agentIndex[ap.ID] = i
	}
	if _, ok := r.agentIndex[fallback]; !ok {
		return nil, fmt.Errorf("fallback agent %q is not declared", fallback)
	}
	return r, nil
}

// Topics returns topic names in declaration order.
func (r *Registry) Topics() []string {
	out := make([]string, len(r.topics))
	for i, tp := range r.topics {
		out[i] = tp.Topic
	}
	return out
}

// Keywords returns the keyword vocabulary for a topic. Unknown topics
// yield an empty slice.
func (r *Registry) Keywords(topic string) []string {
	i, ok := r.topicIndex[topic]
	if !ok {
		return nil
	}
	return append([]string(nil), r.topics[i].Keywords...)
}

// AgentsForTopic returns the agents owning a topic in declaration order.
// Unknown topics yield an empty slice.
func (r *Registry) AgentsForTopic(topic string) []core.AgentID {
	i, ok := r.topicIndex[topic]
	if !ok {
		return nil
	}
	return append([]core.AgentID(nil), r.topics[i].Agents...)
}

// TopicsFor returns the set of topics owned by an agent. Unknown agents
// yield an empty set.
func (r *Registry) TopicsFor(id core.AgentID) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tp := range r.topics {
		for _, owner := range tp.Agents {
			if owner == id {
				out[tp.Topic] = struct{}{}
				break
			}
		}
	}
	return out
}

// Priority returns the declared priority for an agent, 0 if unknown.
func (r *Registry) Priority(id core.AgentID) int {
	i, ok := r.agentIndex[id]
	if !ok {
		return 0
	}
	return r.agents[i].Priority
}

// HealthAdjacent reports whether an agent's domain is health/medical
// adjacent. Unknown agents are not.
func (r *Registry) HealthAdjacent(id core.AgentID) bool {
	i, ok := r.agentIndex[id]
	if !ok {
		return false
	}
	return r.agents[i].HealthAdjacent
}

// DeclarationIndex returns the agent's position in the declaration order,
// used as the deterministic tie-break. Unknown agents sort last.
func (r *Registry) DeclarationIndex(id core.AgentID) int {
	i, ok := r.agentIndex[id]
	if !ok {
		return len(r.agents)
	}
	return i
}

// DefaultAgent returns the fallback agent used when no topic activates.
func (r *Registry) DefaultAgent() core.AgentID {
	return r.fallback
}

// Default returns the built-in capability table for the fitness/wellness
// agent set. Keyword lists carry Spanish and English vocabulary, stored
// without diacritics to match the classifier's normalization.
func Default() *Registry {
	topics := []TopicProfile{
		{
			Topic: "training",
			Keywords: []string{
				"entrenamiento", "entrenar", "rutina", "ejercicio", "gym",
				"gimnasio", "pesas", "fuerza", "cardio", "workout", "training",
				"musculo", "hipertrofia", "series", "repeticiones",
			},
			Agents: []core.AgentID{core.AgentTraining},
		},
		{
			Topic: "nutrition",
			Keywords: []string{
				"nutricion", "dieta", "comida", "comer", "alimentacion",
				"macros", "proteina", "calorias", "ayuno", "nutrition",
				"diet", "meal", "suplementacion",
			},
			Agents: []core.AgentID{core.AgentNutrition},
		},
		{
			Topic: "genetics",
			Keywords: []string{
				"genetica", "genetico", "adn", "dna", "genotipo", "herencia",
				"polimorfismo", "genetics", "geneticos",
			},
			Agents: []core.AgentID{core.AgentGenetics},
		},
		{
			Topic: "wellness",
			Keywords: []string{
				"bienestar", "salud", "dormir", "sueno", "estres", "ansiedad",
				"mindfulness", "equilibrio", "wellness", "relajacion",
			},
			Agents: []core.AgentID{core.AgentWellness},
		},
		{
			Topic: "motivation",
			Keywords: []string{
				"motivacion", "motivado", "desmotivado", "animo", "abandonar",
				"constancia", "habito", "habitos", "disciplina", "motivation",
			},
			Agents: []core.AgentID{core.AgentMotivation},
		},
		{
			Topic: "recovery",
			Keywords: []string{
				"recuperacion", "descanso", "agotado", "cansado", "fatiga",
				"lesion", "dolor", "sobreentrenamiento", "recovery", "descansar",
			},
			Agents: []core.AgentID{core.AgentRecovery},
		},
		{
			Topic: "biohacking",
			Keywords: []string{
				"biohacking", "suplemento", "suplementos", "nootropico",
				"longevidad", "optimizacion", "cronobiologia", "supplements",
			},
			Agents: []core.AgentID{core.AgentBiohacking},
		},
		{
			Topic: "progress",
			Keywords: []string{
				"progreso", "resultados", "avance", "estancado", "plateau",
				"seguimiento", "metricas", "medicion", "progress",
			},
			Agents: []core.AgentID{core.AgentProgress},
		},
	}

	agents := []AgentProfile{
		{ID: core.AgentTraining, Priority: 9, HealthAdjacent: true},
		{ID: core.AgentNutrition, Priority: 8, HealthAdjacent: true},
		{ID: core.AgentRecovery, Priority: 7, HealthAdjacent: false},
		{ID: core.AgentWellness, Priority: 6, HealthAdjacent: true},
		{ID: core.AgentProgress, Priority: 5, HealthAdjacent: false},
		{ID: core.AgentMotivation, Priority: 4, HealthAdjacent: false},
		{ID: core.AgentGenetics, Priority: 3, HealthAdjacent: true},
		{ID: core.AgentBiohacking, Priority: 2, HealthAdjacent: false},
		{ID: core.AgentOrchestrator, Priority: 0, HealthAdjacent: false},
	}

	r, err := New(topics, agents, core.AgentOrchestrator)
	if err != nil {
		// The built-in table is validated by tests; a failure here is a bug.
		panic(err)
	}
	return r
}
