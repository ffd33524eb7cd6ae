package core

import (
	"context"
	"errors"
	"testing"
)

func TestAgentCeilingByTier(t *testing.T) {
	cases := []struct {
		tier ComplexityTier
		want int
	}{
		{ComplexitySimple, 1},
		{ComplexityModerate, 2},
		{ComplexityComplex, 4},
		{ComplexityIntegral, 6},
		{ComplexityTier("unknown"), 1},
	}
	for _, tc := range cases {
		if got := tc.tier.AgentCeiling(); got != tc.want {
			t.Errorf("ceiling for %s: got %d, want %d", tc.tier, got, tc.want)
		}
	}
}

func TestTierOrdering(t *testing.T) {
	ordered := []ComplexityTier{ComplexitySimple, ComplexityModerate, ComplexityComplex, ComplexityIntegral}
	for i := range ordered {
		for j := 0; j <= i; j++ {
			if !ordered[i].AtLeast(ordered[j]) {
				t.Errorf("expected %s >= %s", ordered[i], ordered[j])
			}
		}
	}
	if ComplexitySimple.AtLeast(ComplexityModerate) {
		t.Error("simple should not be at least moderate")
	}
}

func TestPerspectiveFailed(t *testing.T) {
	ok := AgentPerspective{AgentID: AgentTraining, Confidence: 0.9}
	if ok.Failed() {
		t.Error("perspective without error reported as failed")
	}
	bad := AgentPerspective{AgentID: AgentNutrition, Err: errors.New("timeout")}
	if !bad.Failed() {
		t.Error("errored perspective not reported as failed")
	}
}

func TestEnsureRunID(t *testing.T) {
	ctx, id := EnsureRunID(context.Background())
	if id == "" {
		t.Fatal("expected generated run id")
	}
	ctx2, id2 := EnsureRunID(ctx)
	if id2 != id {
		t.Errorf("run id changed on second call: %s vs %s", id, id2)
	}
	if got, ok := RunID(ctx2); !ok || got != id {
		t.Errorf("run id not retrievable from context")
	}
}
