// Package synthesis composes gathered perspectives and a conflict
// resolution into the final coordination answer.
package synthesis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ngx-platform/genesis/pkg/core"
	"github.com/ngx-platform/genesis/pkg/registry"
)

// DefaultMaxRecommendations caps how many unified recommendations the
// composed response narrates. The full list is still returned.
const DefaultMaxRecommendations = 5

const degradedResponse = "Lo sentimos, en este momento no pudimos consultar " +
	"a nuestros especialistas. Por favor intenta de nuevo en unos minutos."

const healthDisclaimer = "Recuerda que esta orientacion no sustituye el " +
	"consejo de un profesional de la salud; consulta a tu medico antes de " +
	"cambios importantes."

// Input carries everything one synthesis call needs. The synthesizer
// reads it and never mutates it.
type Input struct {
	Perspectives []core.AgentPerspective
	Resolution   core.ConflictResolution
	Complexity   core.ComplexityTier

	// Lead, when set, names the agent whose view frames the answer and
	// selects the sequential collaboration pattern.
	Lead core.AgentID
}

// Output is the synthesized tail of a coordination result.
type Output struct {
	Collaboration          core.CollaborationType
	ParticipatingAgents    []core.AgentID
	UnifiedRecommendations []string
	Response               string
	Consensus              float64
}

// Synthesizer builds the final response. Stateless and safe for
// concurrent use.
type Synthesizer struct {
	registry *registry.Registry
	maxRecs  int
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithMaxRecommendations overrides the narrated recommendation cap.
func WithMaxRecommendations(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.maxRecs = n
		}
	}
}

// New creates a synthesizer over the given registry.
func New(reg *registry.Registry, opts ...Option) *Synthesizer {
	s := &Synthesizer{registry: reg, maxRecs: DefaultMaxRecommendations}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize combines perspectives and their resolution into the final
// answer. It never fails: every input shape, including the all-failed
// degraded case, maps to a defined output.
func (s *Synthesizer) Synthesize(in Input) Output {
	participating := participants(in.Perspectives)
	if len(participating) == 0 {
		return Output{
			Collaboration: core.CollaborationDegraded,
			Response:      degradedResponse,
			Consensus:     0.0,
		}
	}

	collab := s.collaborationType(participating, in)
	recs := unifiedRecommendations(in.Resolution)

	return Output{
		Collaboration:          collab,
		ParticipatingAgents:    participating,
		UnifiedRecommendations: recs,
		Response:               s.compose(in, participating, collab, recs),
		Consensus:              consensus(in.Resolution),
	}
}

// collaborationType picks the pattern used to combine perspectives.
// A succeeding lead agent selects sequential framing; otherwise the
// presence of resolved conflicts separates hierarchical from
// parallel consensus.
func (s *Synthesizer) collaborationType(participating []core.AgentID, in Input) core.CollaborationType {
	if len(participating) == 1 {
		return core.CollaborationSingleAgent
	}
	if in.Lead != "" && contains(participating, in.Lead) {
		return core.CollaborationSequential
	}
	if len(in.Resolution.Conflicts) > 0 {
		return core.CollaborationHierarchical
	}
	return core.CollaborationParallelConsensus
}

// consensus is the agreed share of the resolved partition, 1.0 when
// nothing was contested.
func consensus(res core.ConflictResolution) float64 {
	total := len(res.Agreements) + len(res.Conflicts)
	if total == 0 {
		return 1.0
	}
	return float64(len(res.Agreements)) / float64(total)
}

// unifiedRecommendations orders agreements by corroboration then mean
// confidence, appends the winning side of each conflict, and collapses
// exact duplicates.
func unifiedRecommendations(res core.ConflictResolution) []string {
	agreements := append([]core.Agreement(nil), res.Agreements...)
	sort.SliceStable(agreements, func(i, j int) bool {
		if len(agreements[i].Agents) != len(agreements[j].Agents) {
			return len(agreements[i].Agents) > len(agreements[j].Agents)
		}
		return agreements[i].MeanConfidence > agreements[j].MeanConfidence
	})

	seen := make(map[string]bool)
	var out []string
	add := func(text string) {
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		out = append(out, text)
	}
	for _, a := range agreements {
		add(a.Text)
	}
	for _, c := range res.Conflicts {
		add(c.Winning)
	}
	return out
}

// compose renders the deterministic natural-language answer: a tier
// opener, one short paragraph per narrated recommendation, and a safety
// disclaimer when any participating domain is health adjacent.
func (s *Synthesizer) compose(in Input, participating []core.AgentID, collab core.CollaborationType, recs []string) string {
	var b strings.Builder
	b.WriteString(s.opener(in, participating, collab))

	limit := len(recs)
	if limit > s.maxRecs {
		limit = s.maxRecs
	}
	for i := 0; i < limit; i++ {
		fmt.Fprintf(&b, "\n\n%d. %s.", i+1, strings.TrimSuffix(recs[i], "."))
	}

	if s.healthAdjacent(participating) {
		b.WriteString("\n\n")
		b.WriteString(healthDisclaimer)
	}
	return b.String()
}

func (s *Synthesizer) opener(in Input, participating []core.AgentID, collab core.CollaborationType) string {
	switch collab {
	case core.CollaborationSingleAgent:
		return fmt.Sprintf("Nuestro especialista en %s preparo esta respuesta para ti.",
			agentLabel(participating[0]))
	case core.CollaborationSequential:
		return fmt.Sprintf("Con la perspectiva de %s como guia, consultamos a %d especialistas para una consulta %s.",
			agentLabel(in.Lead), len(participating), tierLabel(in.Complexity))
	case core.CollaborationHierarchical:
		return fmt.Sprintf("Consultamos a %d especialistas para tu consulta %s y resolvimos los puntos en desacuerdo priorizando la evidencia mas confiable.",
			len(participating), tierLabel(in.Complexity))
	default:
		return fmt.Sprintf("Consultamos a %d especialistas para tu consulta %s y todos coinciden en lo esencial.",
			len(participating), tierLabel(in.Complexity))
	}
}

// healthAdjacent reports whether any participating agent's domain is
// health or medical adjacent per the registry.
func (s *Synthesizer) healthAdjacent(participating []core.AgentID) bool {
	for _, id := range participating {
		if s.registry.HealthAdjacent(id) {
			return true
		}
	}
	return false
}

var agentLabels = map[core.AgentID]string{
	core.AgentTraining:     "entrenamiento",
	core.AgentNutrition:    "nutricion",
	core.AgentGenetics:     "genetica",
	core.AgentWellness:     "bienestar",
	core.AgentMotivation:   "motivacion",
	core.AgentRecovery:     "recuperacion",
	core.AgentBiohacking:   "biohacking",
	core.AgentProgress:     "progreso",
	core.AgentOrchestrator: "coordinacion general",
}

func agentLabel(id core.AgentID) string {
	if label, ok := agentLabels[id]; ok {
		return label
	}
	return string(id)
}

func tierLabel(tier core.ComplexityTier) string {
	switch tier {
	case core.ComplexityModerate:
		return "moderada"
	case core.ComplexityComplex:
		return "compleja"
	case core.ComplexityIntegral:
		return "integral"
	default:
		return "sencilla"
	}
}

// participants lists the agents whose invocations succeeded, in the
// gatherer's request order.
func participants(perspectives []core.AgentPerspective) []core.AgentID {
	var out []core.AgentID
	for _, p := range perspectives {
		if !p.Failed() {
			out = append(out, p.AgentID)
		}
	}
	return out
}

func contains(ids []core.AgentID, id core.AgentID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
