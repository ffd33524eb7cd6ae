package conflict

import (
	"context"

	"github.com/ngx-platform/genesis/pkg/classifier"
	"github.com/ngx-platform/genesis/pkg/embedding"
)

// Similarity thresholds for embedding comparisons. Pairs below the
// related floor are unrelated; related pairs with opposing intent
// markers conflict.
const (
	DefaultRelatedThreshold = 0.62
)

// GeneralTopic labels verdicts the keyword heuristic cannot attribute to
// a registry topic.
const GeneralTopic = "general"

// EmbeddingHeuristic judges recommendation pairs by cosine similarity of
// their embeddings, falling back to the keyword heuristic when the
// embedder is unavailable. Topic attribution always comes from the
// keyword heuristic so conflict records stay explainable.
type EmbeddingHeuristic struct {
	embedder  embedding.Embedder
	fallback  *KeywordHeuristic
	threshold float64
}

// NewEmbeddingHeuristic creates a similarity-based heuristic. The keyword
// heuristic is required as fallback and topic source.
func NewEmbeddingHeuristic(emb embedding.Embedder, fallback *KeywordHeuristic) *EmbeddingHeuristic {
	return &EmbeddingHeuristic{
		embedder:  emb,
		fallback:  fallback,
		threshold: DefaultRelatedThreshold,
	}
}

// Compare implements Heuristic.
func (h *EmbeddingHeuristic) Compare(ctx context.Context, a, b string) Verdict {
	if equalFold(a, b) {
		return Verdict{Relation: RelationAgreeing}
	}

	vecA, err := h.embedder.Embed(ctx, a)
	if err != nil {
		return h.fallback.Compare(ctx, a, b)
	}
	vecB, err := h.embedder.Embed(ctx, b)
	if err != nil {
		return h.fallback.Compare(ctx, a, b)
	}

	if embedding.Cosine(vecA, vecB) < h.threshold {
		return Verdict{Relation: RelationUnrelated}
	}

	// The embedder can relate a pair whose words share no registry
	// topic; label those "general" so conflict notes stay readable.
	topic := h.fallback.Compare(ctx, a, b).Topic
	if topic == "" {
		topic = GeneralTopic
	}
	if opposing(classifier.Normalize(a), classifier.Normalize(b)) {
		return Verdict{Relation: RelationConflicting, Topic: topic}
	}
	return Verdict{Relation: RelationAgreeing, Topic: topic}
}
