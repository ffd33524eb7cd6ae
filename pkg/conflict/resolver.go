package conflict

import (
	"context"
	"fmt"
	"sort"

	"github.com/ngx-platform/genesis/pkg/core"
	"github.com/ngx-platform/genesis/pkg/registry"
)

// rec is one recommendation tagged with its source perspective.
type rec struct {
	text       string
	agent      core.AgentID
	confidence float64
}

// Resolver partitions gathered recommendations into agreements and
// conflicts. Each call is independent; the resolver holds no state
// between calls.
type Resolver struct {
	heuristic Heuristic
	registry  *registry.Registry
}

// NewResolver creates a resolver. A nil heuristic defaults to the
// keyword strategy over the registry vocabularies.
func NewResolver(reg *registry.Registry, h Heuristic) *Resolver {
	if h == nil {
		h = NewKeywordHeuristic(reg)
	}
	return &Resolver{heuristic: h, registry: reg}
}

// Resolve compares every recommendation pair across distinct agents and
// produces a resolution where each recommendation appears either in an
// agreement or in a conflict, never both. Conflicting pairs take
// precedence: a recommendation involved in any conflict is excluded from
// the agreement clusters. Failed perspectives contribute nothing.
func (r *Resolver) Resolve(ctx context.Context, perspectives []core.AgentPerspective) core.ConflictResolution {
	recs := collect(perspectives)
	if len(recs) == 0 {
		return core.ConflictResolution{}
	}

	// Union-find over recommendation indexes builds agreement clusters.
	parent := make([]int, len(recs))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) { parent[find(a)] = find(b) }

	conflicted := make(map[int]bool)
	var conflicts []core.Conflict
	var notes []string

	for i := 0; i < len(recs); i++ {
		for j := i + 1; j < len(recs); j++ {
			if recs[i].agent == recs[j].agent {
				continue
			}
			verdict := r.heuristic.Compare(ctx, recs[i].text, recs[j].text)
			switch verdict.Relation {
			case RelationAgreeing:
				union(i, j)
			case RelationConflicting:
				conflicted[i] = true
				conflicted[j] = true
				win, lose := r.pickWinner(recs[i], recs[j])
				conflicts = append(conflicts, core.Conflict{
					AgentA:  recs[i].agent,
					AgentB:  recs[j].agent,
					Topic:   verdict.Topic,
					Winning: win.text,
					Losing:  lose.text,
				})
				notes = append(notes, fmt.Sprintf(
					"conflicto en %s: prevalece %s (confianza %.2f, prioridad %d) sobre %s",
					verdict.Topic, win.agent, win.confidence,
					r.registry.Priority(win.agent), lose.agent,
				))
			}
		}
	}

	// Clusters whose members touched a conflict drop those members;
	// untouched members still agree with each other.
	clusters := make(map[int][]int)
	for i := range recs {
		if conflicted[i] {
			continue
		}
		root := find(i)
		clusters[root] = append(clusters[root], i)
	}

	roots := make([]int, 0, len(clusters))
	for root := range clusters {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	agreements := make([]core.Agreement, 0, len(roots))
	for _, root := range roots {
		agreements = append(agreements, buildAgreement(recs, clusters[root]))
	}

	return core.ConflictResolution{
		Agreements: agreements,
		Conflicts:  conflicts,
		Notes:      notes,
	}
}

// pickWinner decides which side of a conflict prevails: higher confidence
// wins, then higher registry priority.
func (r *Resolver) pickWinner(a, b rec) (winner, loser rec) {
	if a.confidence != b.confidence {
		if a.confidence > b.confidence {
			return a, b
		}
		return b, a
	}
	if r.registry.Priority(a.agent) >= r.registry.Priority(b.agent) {
		return a, b
	}
	return b, a
}

// buildAgreement merges a cluster into one agreement keeping the shortest
// phrasing as the canonical text.
func buildAgreement(recs []rec, members []int) core.Agreement {
	text := recs[members[0]].text
	seen := make(map[core.AgentID]bool)
	var agents []core.AgentID
	var sum float64
	for _, i := range members {
		if len(recs[i].text) < len(text) {
			text = recs[i].text
		}
		sum += recs[i].confidence
		if !seen[recs[i].agent] {
			seen[recs[i].agent] = true
			agents = append(agents, recs[i].agent)
		}
	}
	return core.Agreement{
		Text:           text,
		Agents:         agents,
		MeanConfidence: sum / float64(len(members)),
	}
}

// collect flattens recommendations from non-failed perspectives preserving
// the gatherer's order.
func collect(perspectives []core.AgentPerspective) []rec {
	var recs []rec
	for _, p := range perspectives {
		if p.Failed() {
			continue
		}
		for _, text := range p.Recommendations {
			recs = append(recs, rec{
				text:       text,
				agent:      p.AgentID,
				confidence: p.Confidence,
			})
		}
	}
	return recs
}
