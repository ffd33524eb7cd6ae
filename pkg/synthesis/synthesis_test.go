package synthesis

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/ngx-platform/genesis/pkg/core"
	"github.com/ngx-platform/genesis/pkg/registry"
)

func ok(id core.AgentID, conf float64, recs ...string) core.AgentPerspective {
	return core.AgentPerspective{
		AgentID:         id,
		ResponseText:    "respuesta de " + string(id),
		Recommendations: recs,
		Confidence:      conf,
	}
}

func failed(id core.AgentID) core.AgentPerspective {
	return core.AgentPerspective{AgentID: id, Err: errors.New("unavailable")}
}

func TestSynthesizeSingleAgent(t *testing.T) {
	s := New(registry.Default())
	out := s.Synthesize(Input{
		Perspectives: []core.AgentPerspective{ok(core.AgentTraining, 0.9, "Entrena fuerza tres veces por semana")},
		Resolution: core.ConflictResolution{
			Agreements: []core.Agreement{{Text: "Entrena fuerza tres veces por semana", Agents: []core.AgentID{core.AgentTraining}, MeanConfidence: 0.9}},
		},
		Complexity: core.ComplexitySimple,
	})

	if out.Collaboration != core.CollaborationSingleAgent {
		t.Fatalf("Collaboration = %v, want single_agent", out.Collaboration)
	}
	if out.Consensus != 1.0 {
		t.Fatalf("Consensus = %v, want 1.0", out.Consensus)
	}
	if !reflect.DeepEqual(out.ParticipatingAgents, []core.AgentID{core.AgentTraining}) {
		t.Fatalf("ParticipatingAgents = %v", out.ParticipatingAgents)
	}
	if out.Response == "" {
		t.Fatal("Response is empty")
	}
}

func TestSynthesizeDegraded(t *testing.T) {
	s := New(registry.Default())
	out := s.Synthesize(Input{
		Perspectives: []core.AgentPerspective{failed(core.AgentOrchestrator)},
		Complexity:   core.ComplexityModerate,
	})

	if out.Collaboration != core.CollaborationDegraded {
		t.Fatalf("Collaboration = %v, want degraded", out.Collaboration)
	}
	if out.Consensus != 0.0 {
		t.Fatalf("Consensus = %v, want 0.0", out.Consensus)
	}
	if out.Response == "" {
		t.Fatal("degraded mode must still produce a response")
	}
	if len(out.ParticipatingAgents) != 0 {
		t.Fatalf("ParticipatingAgents = %v, want none", out.ParticipatingAgents)
	}
}

func TestCollaborationTypes(t *testing.T) {
	s := New(registry.Default())
	two := []core.AgentPerspective{
		ok(core.AgentTraining, 0.8, "Entrena fuerza"),
		ok(core.AgentNutrition, 0.8, "Come suficiente proteina"),
	}

	t.Run("no conflicts is parallel consensus", func(t *testing.T) {
		out := s.Synthesize(Input{Perspectives: two, Complexity: core.ComplexityModerate})
		if out.Collaboration != core.CollaborationParallelConsensus {
			t.Fatalf("Collaboration = %v", out.Collaboration)
		}
	})

	t.Run("resolved conflicts are hierarchical", func(t *testing.T) {
		out := s.Synthesize(Input{
			Perspectives: two,
			Resolution: core.ConflictResolution{
				Conflicts: []core.Conflict{{AgentA: core.AgentTraining, AgentB: core.AgentNutrition, Winning: "Entrena fuerza"}},
			},
			Complexity: core.ComplexityModerate,
		})
		if out.Collaboration != core.CollaborationHierarchical {
			t.Fatalf("Collaboration = %v", out.Collaboration)
		}
	})

	t.Run("succeeding lead selects sequential", func(t *testing.T) {
		out := s.Synthesize(Input{
			Perspectives: two,
			Complexity:   core.ComplexityComplex,
			Lead:         core.AgentTraining,
		})
		if out.Collaboration != core.CollaborationSequential {
			t.Fatalf("Collaboration = %v", out.Collaboration)
		}
		if !strings.Contains(out.Response, "entrenamiento") {
			t.Fatalf("sequential response should frame the lead domain: %q", out.Response)
		}
	})

	t.Run("failed lead never selects sequential", func(t *testing.T) {
		out := s.Synthesize(Input{
			Perspectives: append([]core.AgentPerspective{failed(core.AgentTraining)}, two[1:]...),
			Complexity:   core.ComplexityComplex,
			Lead:         core.AgentTraining,
		})
		if out.Collaboration != core.CollaborationSingleAgent {
			t.Fatalf("Collaboration = %v", out.Collaboration)
		}
	})
}

func TestUnifiedRecommendationOrdering(t *testing.T) {
	res := core.ConflictResolution{
		Agreements: []core.Agreement{
			{Text: "Duerme 8 horas", Agents: []core.AgentID{core.AgentWellness}, MeanConfidence: 0.95},
			{Text: "Entrena fuerza", Agents: []core.AgentID{core.AgentTraining, core.AgentRecovery}, MeanConfidence: 0.7},
			{Text: "Camina a diario", Agents: []core.AgentID{core.AgentWellness}, MeanConfidence: 0.6},
		},
		Conflicts: []core.Conflict{
			{AgentA: core.AgentTraining, AgentB: core.AgentNutrition, Winning: "Aumenta las calorias", Losing: "Reduce las calorias"},
		},
	}

	got := unifiedRecommendations(res)
	want := []string{"Entrena fuerza", "Duerme 8 horas", "Camina a diario", "Aumenta las calorias"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unifiedRecommendations = %v, want %v", got, want)
	}
}

func TestUnifiedRecommendationsCollapseDuplicates(t *testing.T) {
	res := core.ConflictResolution{
		Agreements: []core.Agreement{
			{Text: "Entrena fuerza", Agents: []core.AgentID{core.AgentTraining}, MeanConfidence: 0.8},
		},
		Conflicts: []core.Conflict{
			{AgentA: core.AgentTraining, AgentB: core.AgentRecovery, Winning: "Entrena fuerza", Losing: "Descansa mas"},
		},
	}
	got := unifiedRecommendations(res)
	if len(got) != 1 {
		t.Fatalf("unifiedRecommendations = %v, want duplicates collapsed", got)
	}
}

func TestComposeCapsNarratedRecommendations(t *testing.T) {
	s := New(registry.Default())
	var agreements []core.Agreement
	for i := 0; i < 8; i++ {
		agreements = append(agreements, core.Agreement{
			Text:           fmt.Sprintf("Recomendacion numero %d", i),
			Agents:         []core.AgentID{core.AgentProgress},
			MeanConfidence: 0.9 - float64(i)*0.05,
		})
	}
	out := s.Synthesize(Input{
		Perspectives: []core.AgentPerspective{
			ok(core.AgentProgress, 0.8, "r"),
			ok(core.AgentRecovery, 0.8, "r2"),
		},
		Resolution: core.ConflictResolution{Agreements: agreements},
		Complexity: core.ComplexityModerate,
	})

	if len(out.UnifiedRecommendations) != 8 {
		t.Fatalf("UnifiedRecommendations = %d, full list must survive the cap", len(out.UnifiedRecommendations))
	}
	if strings.Contains(out.Response, "Recomendacion numero 5") {
		t.Fatalf("response narrates beyond the cap: %q", out.Response)
	}
	if !strings.Contains(out.Response, "Recomendacion numero 4") {
		t.Fatalf("response missing the last capped recommendation: %q", out.Response)
	}
}

func TestHealthDisclaimer(t *testing.T) {
	s := New(registry.Default())

	out := s.Synthesize(Input{
		Perspectives: []core.AgentPerspective{ok(core.AgentNutrition, 0.8, "Come proteina")},
		Complexity:   core.ComplexitySimple,
	})
	if !strings.Contains(out.Response, "profesional de la salud") {
		t.Fatalf("nutrition guidance must carry the disclaimer: %q", out.Response)
	}

	out = s.Synthesize(Input{
		Perspectives: []core.AgentPerspective{
			ok(core.AgentProgress, 0.8, "Registra tus metricas"),
			ok(core.AgentMotivation, 0.8, "Celebra avances"),
		},
		Complexity: core.ComplexityModerate,
	})
	if strings.Contains(out.Response, "profesional de la salud") {
		t.Fatalf("non health adjacent domains must not carry the disclaimer: %q", out.Response)
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	s := New(registry.Default())
	in := Input{
		Perspectives: []core.AgentPerspective{
			ok(core.AgentTraining, 0.8, "Entrena fuerza"),
			ok(core.AgentWellness, 0.7, "Duerme 8 horas"),
		},
		Resolution: core.ConflictResolution{
			Agreements: []core.Agreement{
				{Text: "Entrena fuerza", Agents: []core.AgentID{core.AgentTraining}, MeanConfidence: 0.8},
				{Text: "Duerme 8 horas", Agents: []core.AgentID{core.AgentWellness}, MeanConfidence: 0.7},
			},
		},
		Complexity: core.ComplexityModerate,
	}

	first := s.Synthesize(in)
	second := s.Synthesize(in)
	if !reflect.DeepEqual(first.UnifiedRecommendations, second.UnifiedRecommendations) {
		t.Fatal("recommendation ordering differs between identical calls")
	}
	if first.Response != second.Response {
		t.Fatal("response differs between identical calls")
	}
}
