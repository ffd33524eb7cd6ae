// Package conflict detects and resolves contradictory guidance between
// agent perspectives.
package conflict

import (
	"context"
	"strings"

	"github.com/ngx-platform/genesis/pkg/classifier"
	"github.com/ngx-platform/genesis/pkg/registry"
)

// Relation classifies a recommendation pair.
type Relation int

const (
	// RelationUnrelated means the pair addresses different subjects.
	RelationUnrelated Relation = iota
	// RelationAgreeing means the pair addresses one subject compatibly.
	RelationAgreeing
	// RelationConflicting means the pair gives opposing guidance on
	// one subject.
	RelationConflicting
)

// Verdict is a heuristic's judgement of one recommendation pair.
type Verdict struct {
	Relation Relation
	Topic    string
}

// Heuristic judges recommendation pairs. It is a pluggable strategy: the
// default works on registry keywords; an embedding-based implementation
// can replace it without changing the resolver.
type Heuristic interface {
	Compare(ctx context.Context, a, b string) Verdict
}

// intensifiers mark guidance that pushes a subject up.
var intensifiers = []string{
	"aumenta", "aumentar", "incrementa", "incrementar", "sube", "subir",
	"mas", "anade", "agrega", "increase", "more", "raise", "add",
}

// reducers mark guidance that pushes a subject down or away.
var reducers = []string{
	"reduce", "reducir", "disminuye", "disminuir", "baja", "bajar",
	"menos", "evita", "evitar", "elimina", "deja", "decrease", "less",
	"avoid", "stop", "lower",
}

// KeywordHeuristic is the default keyword-overlap strategy: two
// recommendations share a subject when one registry topic matches both,
// and they conflict when their intents oppose.
type KeywordHeuristic struct {
	registry *registry.Registry
}

// NewKeywordHeuristic creates the default heuristic over the registry
// vocabularies.
func NewKeywordHeuristic(reg *registry.Registry) *KeywordHeuristic {
	return &KeywordHeuristic{registry: reg}
}

// Compare implements Heuristic.
func (h *KeywordHeuristic) Compare(_ context.Context, a, b string) Verdict {
	if equalFold(a, b) {
		return Verdict{Relation: RelationAgreeing}
	}

	tokensA := classifier.Normalize(a)
	tokensB := classifier.Normalize(b)

	topic := h.sharedTopic(tokensA, tokensB)
	if topic == "" {
		return Verdict{Relation: RelationUnrelated}
	}

	if opposing(tokensA, tokensB) {
		return Verdict{Relation: RelationConflicting, Topic: topic}
	}
	return Verdict{Relation: RelationAgreeing, Topic: topic}
}

// sharedTopic returns the first registry topic (declaration order) whose
// vocabulary matches both token lists.
func (h *KeywordHeuristic) sharedTopic(tokensA, tokensB []string) string {
	for _, topic := range h.registry.Topics() {
		keywords := h.registry.Keywords(topic)
		if hasAnyKeyword(tokensA, keywords) && hasAnyKeyword(tokensB, keywords) {
			return topic
		}
	}
	return ""
}

// opposing reports whether one side intensifies and the other reduces,
// in either direction.
func opposing(tokensA, tokensB []string) bool {
	upA, downA := hasAnyKeyword(tokensA, intensifiers), hasAnyKeyword(tokensA, reducers)
	upB, downB := hasAnyKeyword(tokensB, intensifiers), hasAnyKeyword(tokensB, reducers)
	return (upA && downB) || (downA && upB)
}

func hasAnyKeyword(tokens []string, keywords []string) bool {
	for _, kw := range keywords {
		for _, tok := range tokens {
			if strings.HasPrefix(tok, kw) {
				return true
			}
		}
	}
	return false
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
