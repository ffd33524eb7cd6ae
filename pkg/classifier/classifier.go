// Package classifier assigns a complexity tier to a raw query and selects
// the candidate agents for it.
package classifier

import (
	"sort"
	"strings"

	"github.com/ngx-platform/genesis/pkg/core"
	"github.com/ngx-platform/genesis/pkg/registry"
)

// Analysis is the classifier's output for one query.
type Analysis struct {
	Tier core.ComplexityTier

	// Agents is the candidate list, highest-scoring first, already
	// truncated to the tier's ceiling. Never empty.
	Agents []core.AgentID

	// ActivatedTopics lists topics with at least one keyword hit, in
	// registry declaration order.
	ActivatedTopics []string

	// Lead is set when one domain dominates a complex query and the
	// synthesizer should frame the answer around it.
	Lead core.AgentID
}

// Classifier scores queries against the registry's keyword vocabularies.
type Classifier struct {
	registry *registry.Registry

	// emotionalSignals are distress terms that, combined with an
	// activated physical topic, force the integral tier.
	emotionalSignals []string

	ceilings map[core.ComplexityTier]int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithCeilings overrides per-tier agent ceilings. Tiers absent from the
// map, or mapped to a non-positive value, keep their defaults.
func WithCeilings(ceilings map[core.ComplexityTier]int) Option {
	return func(c *Classifier) {
		if len(ceilings) == 0 {
			return
		}
		c.ceilings = make(map[core.ComplexityTier]int, len(ceilings))
		for tier, n := range ceilings {
			if n > 0 {
				c.ceilings[tier] = n
			}
		}
	}
}

// New creates a classifier backed by the given registry.
func New(reg *registry.Registry, opts ...Option) *Classifier {
	c := &Classifier{
		registry: reg,
		emotionalSignals: []string{
			"ansiedad", "ansioso", "deprimido", "depresion", "triste",
			"desmotivado", "agobiado", "burnout", "estresado", "hundido",
			"desesperado", "anxious", "depressed", "overwhelmed",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Classifier) ceiling(tier core.ComplexityTier) int {
	if n, ok := c.ceilings[tier]; ok {
		return n
	}
	return tier.AgentCeiling()
}

// physicalTopics are the domains whose co-occurrence with emotional
// distress marks a query as integral.
var physicalTopics = map[string]struct{}{
	"training":  {},
	"nutrition": {},
	"recovery":  {},
}

// Analyze classifies a query and selects candidate agents. It never fails:
// an empty or unmatched query falls back to the simple tier with the
// registry's default agent.
func (c *Classifier) Analyze(query string) Analysis {
	tokens := Normalize(query)

	activated := make([]string, 0, 4)
	topicScores := make(map[string]int)
	for _, topic := range c.registry.Topics() {
		score := keywordHits(tokens, c.registry.Keywords(topic))
		if score > 0 {
			activated = append(activated, topic)
			topicScores[topic] = score
		}
	}

	tier := tierFor(len(activated))
	if tier != core.ComplexityIntegral && c.hasIntegralSignal(tokens, topicScores) {
		tier = core.ComplexityIntegral
	}

	agents, agentScores := c.agentsFor(activated, topicScores)
	if len(agents) == 0 {
		return Analysis{
			Tier:   core.ComplexitySimple,
			Agents: []core.AgentID{c.registry.DefaultAgent()},
		}
	}

	ranked := c.rank(agents, agentScores)
	if ceiling := c.ceiling(tier); len(ranked) > ceiling {
		ranked = ranked[:ceiling]
	}

	return Analysis{
		Tier:            tier,
		Agents:          ranked,
		ActivatedTopics: activated,
		Lead:            c.leadAgent(tier, ranked, agentScores),
	}
}

// tierFor maps the activated-topic count to a tier.
func tierFor(topics int) core.ComplexityTier {
	switch {
	case topics <= 1:
		return core.ComplexitySimple
	case topics == 2:
		return core.ComplexityModerate
	case topics == 3:
		return core.ComplexityComplex
	default:
		return core.ComplexityIntegral
	}
}

// hasIntegralSignal reports whether emotional distress co-occurs with a
// physical domain, which crosses the physical/emotional boundary
// regardless of raw topic count.
func (c *Classifier) hasIntegralSignal(tokens []string, topicScores map[string]int) bool {
	physical := false
	for topic := range topicScores {
		if _, ok := physicalTopics[topic]; ok {
			physical = true
			break
		}
	}
	if !physical {
		return false
	}
	return keywordHits(tokens, c.emotionalSignals) > 0
}

// agentsFor maps activated topics to their owning agents, first-seen order,
// accumulating each agent's score across its topics.
func (c *Classifier) agentsFor(activated []string, topicScores map[string]int) ([]core.AgentID, map[core.AgentID]int) {
	agents := make([]core.AgentID, 0, len(activated))
	scores := make(map[core.AgentID]int)
	seen := make(map[core.AgentID]struct{})
	for _, topic := range activated {
		for _, id := range c.registry.AgentsForTopic(topic) {
			scores[id] += topicScores[topic]
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			agents = append(agents, id)
		}
	}
	return agents, scores
}

// rank orders agents by score descending, registry declaration order as
// the tie-break. The sort is stable so equal agents keep first-seen order.
func (c *Classifier) rank(agents []core.AgentID, scores map[core.AgentID]int) []core.AgentID {
	ranked := append([]core.AgentID(nil), agents...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if scores[ranked[i]] != scores[ranked[j]] {
			return scores[ranked[i]] > scores[ranked[j]]
		}
		return c.registry.DeclarationIndex(ranked[i]) < c.registry.DeclarationIndex(ranked[j])
	})
	return ranked
}

// leadAgent designates a primary-domain agent when a complex query is
// dominated by one domain (top score at least twice the runner-up).
func (c *Classifier) leadAgent(tier core.ComplexityTier, ranked []core.AgentID, scores map[core.AgentID]int) core.AgentID {
	if tier != core.ComplexityComplex || len(ranked) < 2 {
		return ""
	}
	if scores[ranked[0]] >= 2*scores[ranked[1]] {
		return ranked[0]
	}
	return ""
}

// Normalize lowercases the query, folds Spanish diacritics, strips
// punctuation, and splits into tokens.
func Normalize(query string) []string {
	lowered := strings.ToLower(query)
	folded := diacriticFolder.Replace(lowered)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

var diacriticFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
)

// keywordHits counts distinct keywords present in the token list. A token
// matches a keyword by prefix so simple plurals match their stem.
func keywordHits(tokens []string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		for _, tok := range tokens {
			if strings.HasPrefix(tok, kw) {
				hits++
				break
			}
		}
	}
	return hits
}
