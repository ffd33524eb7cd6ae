package classifier

import (
	"reflect"
	"testing"

	"github.com/ngx-platform/genesis/pkg/core"
	"github.com/ngx-platform/genesis/pkg/registry"
)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	return New(registry.Default())
}

func TestSimpleTrainingQuery(t *testing.T) {
	c := newClassifier(t)
	a := c.Analyze("Necesito un plan de entrenamiento")

	if a.Tier != core.ComplexitySimple {
		t.Errorf("expected simple tier, got %s", a.Tier)
	}
	if len(a.Agents) != 1 || a.Agents[0] != core.AgentTraining {
		t.Errorf("expected single training agent, got %v", a.Agents)
	}
}

func TestMultiDomainQueryEscalates(t *testing.T) {
	c := newClassifier(t)
	a := c.Analyze("Me siento agotado, no veo progreso en el gym y mi dieta es un desastre")

	if !a.Tier.AtLeast(core.ComplexityComplex) {
		t.Errorf("expected at least complex tier, got %s", a.Tier)
	}
	if len(a.Agents) < 3 {
		t.Errorf("expected 3+ agents, got %v", a.Agents)
	}
}

func TestIntegralSignalOverride(t *testing.T) {
	c := newClassifier(t)
	// Only two topics activate, but emotional distress plus a physical
	// domain crosses the physical/emotional boundary.
	a := c.Analyze("Estoy deprimido y no quiero seguir con el entrenamiento")

	if a.Tier != core.ComplexityIntegral {
		t.Errorf("expected integral tier, got %s", a.Tier)
	}
}

func TestEmptyQueryFallsBack(t *testing.T) {
	c := newClassifier(t)
	for _, q := range []string{"", "   ", "??!"} {
		a := c.Analyze(q)
		if a.Tier != core.ComplexitySimple {
			t.Errorf("query %q: expected simple tier, got %s", q, a.Tier)
		}
		if len(a.Agents) != 1 || a.Agents[0] != core.AgentOrchestrator {
			t.Errorf("query %q: expected orchestrator fallback, got %v", q, a.Agents)
		}
	}
}

func TestAgentCountBoundedByCeiling(t *testing.T) {
	c := newClassifier(t)
	queries := []string{
		"entrenamiento",
		"entrenamiento y dieta",
		"entrenamiento dieta descanso",
		"entrenamiento dieta descanso genetica progreso motivacion bienestar suplementos",
	}
	for _, q := range queries {
		a := c.Analyze(q)
		if len(a.Agents) > a.Tier.AgentCeiling() {
			t.Errorf("query %q: %d agents exceeds ceiling %d for %s",
				q, len(a.Agents), a.Tier.AgentCeiling(), a.Tier)
		}
	}
}

func TestTierMonotonicity(t *testing.T) {
	c := newClassifier(t)
	// Each query activates a strict superset of the previous one's topics.
	queries := []string{
		"quiero mejorar mi entrenamiento",
		"quiero mejorar mi entrenamiento y mi dieta",
		"quiero mejorar mi entrenamiento, mi dieta y mi descanso",
		"quiero mejorar mi entrenamiento, mi dieta, mi descanso y mi progreso",
	}
	prev := core.ComplexitySimple
	for _, q := range queries {
		a := c.Analyze(q)
		if !a.Tier.AtLeast(prev) {
			t.Errorf("query %q: tier %s lower than previous %s", q, a.Tier, prev)
		}
		prev = a.Tier
	}
}

func TestDeterministicOrdering(t *testing.T) {
	c := newClassifier(t)
	q := "entrenamiento dieta descanso progreso"
	first := c.Analyze(q)
	for i := 0; i < 10; i++ {
		if got := c.Analyze(q); !reflect.DeepEqual(got.Agents, first.Agents) {
			t.Fatalf("ordering not deterministic: %v vs %v", got.Agents, first.Agents)
		}
	}
}

func TestLeadAgentForDominantTopic(t *testing.T) {
	c := newClassifier(t)
	// Training vocabulary dominates; nutrition and recovery barely appear.
	a := c.Analyze("rutina de entrenamiento con pesas, fuerza y cardio en el gimnasio, cuidando la dieta y el descanso")

	if a.Tier != core.ComplexityComplex {
		t.Fatalf("expected complex tier, got %s", a.Tier)
	}
	if a.Lead != core.AgentTraining {
		t.Errorf("expected training lead, got %q", a.Lead)
	}
}

func TestNormalizeFoldsDiacriticsAndPunctuation(t *testing.T) {
	got := Normalize("¡Nutrición, entrenamiento!")
	want := []string{"nutricion", "entrenamiento"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWithCeilingsOverride(t *testing.T) {
	reg := registry.Default()
	c := New(reg, WithCeilings(map[core.ComplexityTier]int{
		core.ComplexityModerate: 1,
	}))

	// Two activated topics normally allow two agents.
	a := c.Analyze("mi entrenamiento y mi dieta")
	if a.Tier != core.ComplexityModerate {
		t.Fatalf("expected moderate tier, got %s", a.Tier)
	}
	if len(a.Agents) != 1 {
		t.Errorf("expected ceiling override to 1 agent, got %v", a.Agents)
	}

	// Non-positive overrides are ignored.
	c = New(reg, WithCeilings(map[core.ComplexityTier]int{
		core.ComplexityModerate: 0,
	}))
	if a := c.Analyze("mi entrenamiento y mi dieta"); len(a.Agents) != 2 {
		t.Errorf("expected default ceiling of 2 agents, got %v", a.Agents)
	}
}
