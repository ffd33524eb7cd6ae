package conflict

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ngx-platform/genesis/pkg/core"
	"github.com/ngx-platform/genesis/pkg/registry"
)

func TestKeywordHeuristicVerdicts(t *testing.T) {
	h := NewKeywordHeuristic(registry.Default())
	ctx := context.Background()

	tests := []struct {
		name string
		a, b string
		want Relation
	}{
		{
			name: "opposing guidance on shared topic conflicts",
			a:    "Aumenta la proteina diaria",
			b:    "Reduce la proteina en tu dieta",
			want: RelationConflicting,
		},
		{
			name: "shared topic without opposing intent agrees",
			a:    "Manten una rutina de fuerza tres dias por semana",
			b:    "Prioriza ejercicio de fuerza progresivo",
			want: RelationAgreeing,
		},
		{
			name: "different topics are unrelated",
			a:    "Dormir 8 horas cada noche",
			b:    "Aumenta la proteina diaria",
			want: RelationUnrelated,
		},
		{
			name: "identical text agrees even without registry vocabulary",
			a:    "Hidratacion constante durante el dia",
			b:    "hidratacion constante durante el dia",
			want: RelationAgreeing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.Compare(ctx, tt.a, tt.b)
			if got.Relation != tt.want {
				t.Fatalf("Compare(%q, %q) = %v, want %v", tt.a, tt.b, got.Relation, tt.want)
			}
		})
	}
}

func TestKeywordHeuristicConflictTopic(t *testing.T) {
	h := NewKeywordHeuristic(registry.Default())
	got := h.Compare(context.Background(), "Aumenta las calorias diarias", "Reduce las calorias para definir")
	if got.Relation != RelationConflicting {
		t.Fatalf("Relation = %v, want conflicting", got.Relation)
	}
	if got.Topic != "nutrition" {
		t.Fatalf("Topic = %q, want nutrition", got.Topic)
	}
}

func TestResolvePartitionsEveryRecommendation(t *testing.T) {
	r := NewResolver(registry.Default(), nil)
	perspectives := []core.AgentPerspective{
		{
			AgentID:         core.AgentTraining,
			Recommendations: []string{"Aumenta las series de fuerza", "Hidratacion constante durante el dia"},
			Confidence:      0.8,
		},
		{
			AgentID:         core.AgentRecovery,
			Recommendations: []string{"Reduce el entrenamiento esta semana", "Hidratacion constante durante el dia"},
			Confidence:      0.7,
		},
	}

	res := r.Resolve(context.Background(), perspectives)

	placed := make(map[string]bool)
	for _, a := range res.Agreements {
		placed[a.Text] = true
	}
	for _, c := range res.Conflicts {
		placed[c.Winning] = true
		placed[c.Losing] = true
	}
	for _, p := range perspectives {
		for _, rec := range p.Recommendations {
			if !placed[rec] {
				t.Fatalf("recommendation %q in neither agreements nor conflicts", rec)
			}
		}
	}
	if len(res.Conflicts) != 1 {
		t.Fatalf("Conflicts = %d, want 1", len(res.Conflicts))
	}
	if len(res.Notes) != len(res.Conflicts) {
		t.Fatalf("Notes = %d, want one per conflict", len(res.Notes))
	}
}

func TestResolveConflictWinnerByConfidence(t *testing.T) {
	r := NewResolver(registry.Default(), nil)
	res := r.Resolve(context.Background(), []core.AgentPerspective{
		{
			AgentID:         core.AgentTraining,
			Recommendations: []string{"Aumenta las calorias diarias"},
			Confidence:      0.6,
		},
		{
			AgentID:         core.AgentNutrition,
			Recommendations: []string{"Reduce las calorias diarias"},
			Confidence:      0.9,
		},
	})

	if len(res.Conflicts) != 1 {
		t.Fatalf("Conflicts = %d, want 1", len(res.Conflicts))
	}
	c := res.Conflicts[0]
	if c.Winning != "Reduce las calorias diarias" {
		t.Fatalf("Winning = %q, higher confidence should prevail", c.Winning)
	}
}

func TestResolveConflictTieBrokenByPriority(t *testing.T) {
	r := NewResolver(registry.Default(), nil)
	res := r.Resolve(context.Background(), []core.AgentPerspective{
		{
			AgentID:         core.AgentNutrition,
			Recommendations: []string{"Reduce las calorias diarias"},
			Confidence:      0.8,
		},
		{
			AgentID:         core.AgentTraining,
			Recommendations: []string{"Aumenta las calorias diarias"},
			Confidence:      0.8,
		},
	})

	if len(res.Conflicts) != 1 {
		t.Fatalf("Conflicts = %d, want 1", len(res.Conflicts))
	}
	// Equal confidence: training's higher registry priority wins.
	if res.Conflicts[0].Winning != "Aumenta las calorias diarias" {
		t.Fatalf("Winning = %q, higher priority should break the tie", res.Conflicts[0].Winning)
	}
}

func TestResolveClustersSharedRecommendations(t *testing.T) {
	r := NewResolver(registry.Default(), nil)
	res := r.Resolve(context.Background(), []core.AgentPerspective{
		{
			AgentID:         core.AgentWellness,
			Recommendations: []string{"Dormir 8 horas cada noche"},
			Confidence:      0.9,
		},
		{
			AgentID:         core.AgentRecovery,
			Recommendations: []string{"Dormir 8 horas cada noche para la recuperacion"},
			Confidence:      0.7,
		},
	})

	if len(res.Conflicts) != 0 {
		t.Fatalf("Conflicts = %d, want 0", len(res.Conflicts))
	}
	if len(res.Agreements) != 1 {
		t.Fatalf("Agreements = %d, want one merged cluster", len(res.Agreements))
	}
	a := res.Agreements[0]
	if a.Text != "Dormir 8 horas cada noche" {
		t.Fatalf("Text = %q, want the shortest phrasing", a.Text)
	}
	if len(a.Agents) != 2 {
		t.Fatalf("Agents = %v, want both endorsers", a.Agents)
	}
	if got, want := a.MeanConfidence, 0.8; math.Abs(got-want) > 1e-9 {
		t.Fatalf("MeanConfidence = %v, want %v", got, want)
	}
}

func TestResolveSkipsFailedPerspectives(t *testing.T) {
	r := NewResolver(registry.Default(), nil)
	res := r.Resolve(context.Background(), []core.AgentPerspective{
		{
			AgentID:         core.AgentTraining,
			Recommendations: []string{"Manten una rutina de fuerza"},
			Confidence:      0.8,
		},
		{
			AgentID:         core.AgentNutrition,
			Recommendations: []string{"Reduce las calorias diarias"},
			Err:             errors.New("unavailable"),
		},
	})

	if len(res.Conflicts) != 0 {
		t.Fatalf("Conflicts = %d, failed perspectives must contribute nothing", len(res.Conflicts))
	}
	if len(res.Agreements) != 1 {
		t.Fatalf("Agreements = %d, want 1", len(res.Agreements))
	}
}

func TestResolveEmptyAndSingle(t *testing.T) {
	r := NewResolver(registry.Default(), nil)

	res := r.Resolve(context.Background(), nil)
	if len(res.Agreements) != 0 || len(res.Conflicts) != 0 {
		t.Fatalf("empty input produced %+v", res)
	}

	res = r.Resolve(context.Background(), []core.AgentPerspective{
		{
			AgentID:         core.AgentTraining,
			Recommendations: []string{"Aumenta las series", "Reduce el cardio"},
			Confidence:      0.8,
		},
	})
	// One agent never conflicts with itself.
	if len(res.Conflicts) != 0 {
		t.Fatalf("Conflicts = %d, want 0 for a single perspective", len(res.Conflicts))
	}
	if len(res.Agreements) != 2 {
		t.Fatalf("Agreements = %d, want each recommendation on its own", len(res.Agreements))
	}
}

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[text], nil
}

func TestEmbeddingHeuristic(t *testing.T) {
	reg := registry.Default()
	keyword := NewKeywordHeuristic(reg)
	ctx := context.Background()

	t.Run("similar opposing pair conflicts", func(t *testing.T) {
		emb := &fakeEmbedder{vectors: map[string][]float32{
			"Aumenta la proteina diaria": {1, 0},
			"Reduce la proteina diaria":  {1, 0},
		}}
		h := NewEmbeddingHeuristic(emb, keyword)
		got := h.Compare(ctx, "Aumenta la proteina diaria", "Reduce la proteina diaria")
		if got.Relation != RelationConflicting {
			t.Fatalf("Relation = %v, want conflicting", got.Relation)
		}
		if got.Topic != "nutrition" {
			t.Fatalf("Topic = %q, want nutrition", got.Topic)
		}
	})

	t.Run("orthogonal vectors are unrelated", func(t *testing.T) {
		emb := &fakeEmbedder{vectors: map[string][]float32{
			"Aumenta la proteina diaria": {1, 0},
			"Reduce la proteina diaria":  {0, 1},
		}}
		h := NewEmbeddingHeuristic(emb, keyword)
		got := h.Compare(ctx, "Aumenta la proteina diaria", "Reduce la proteina diaria")
		if got.Relation != RelationUnrelated {
			t.Fatalf("Relation = %v, want unrelated", got.Relation)
		}
	})

	t.Run("related pair without shared topic gets general label", func(t *testing.T) {
		emb := &fakeEmbedder{vectors: map[string][]float32{
			"Aumenta el presupuesto mensual": {1, 0},
			"Reduce el presupuesto mensual":  {1, 0},
		}}
		h := NewEmbeddingHeuristic(emb, keyword)
		got := h.Compare(ctx, "Aumenta el presupuesto mensual", "Reduce el presupuesto mensual")
		if got.Relation != RelationConflicting {
			t.Fatalf("Relation = %v, want conflicting", got.Relation)
		}
		if got.Topic != GeneralTopic {
			t.Fatalf("Topic = %q, want %q", got.Topic, GeneralTopic)
		}
	})

	t.Run("embedder failure falls back to keywords", func(t *testing.T) {
		emb := &fakeEmbedder{err: errors.New("model unavailable")}
		h := NewEmbeddingHeuristic(emb, keyword)
		got := h.Compare(ctx, "Aumenta la proteina diaria", "Reduce la proteina diaria")
		if got.Relation != RelationConflicting {
			t.Fatalf("Relation = %v, fallback should still detect the conflict", got.Relation)
		}
	})
}
