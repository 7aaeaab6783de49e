// Package routing scores a query's complexity and recommends an execution
// adapter before analysis begins. Scoring is a pure function of the inputs
// plus static weighting and keyword tables; routing never blocks the
// pipeline.
package routing

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/caseymrobbins/personal-ai-sub001/internal/config"
	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

// Adapter identifiers per route target
const (
	AdapterLocal  = "adapter-local-sml"
	AdapterHybrid = "adapter-hybrid"
	AdapterCloud  = "adapter-cloud-llm"
)

// Scorer computes complexity scores and routing decisions
type Scorer struct {
	weights config.RoutingConfig

	depthKeywords     []string
	reasoningMarkers  []string
	domainCatalogues  map[string][]string
	ambiguityKeywords []string
}

// NewScorer creates a routing scorer with the given weighting table
func NewScorer(cfg *config.RoutingConfig) *Scorer {
	return &Scorer{
		weights: *cfg,

		depthKeywords: []string{
			"why", "how", "should", "ethics", "ethical", "moral", "fair",
			"trade-off", "tradeoff", "consequence", "implication", "justify",
			"compare", "versus", "better", "worse", "right", "wrong",
		},
		reasoningMarkers: []string{
			"because", "therefore", "however", "although", "unless",
			"depends", "if", "then", "and", "or", "but", "while",
		},
		domainCatalogues: map[string][]string{
			"technology":  {"technology", "software", "ai", "algorithm", "internet", "automation", "digital", "data"},
			"policy":      {"policy", "government", "regulation", "law", "tax", "subsidy", "public"},
			"environment": {"renewable", "energy", "climate", "carbon", "emission", "solar", "wind", "fossil", "environment"},
			"economics":   {"cost", "economy", "economic", "market", "price", "investment", "jobs", "growth"},
			"health":      {"health", "medical", "medicine", "disease", "vaccine", "treatment", "diet"},
			"education":   {"education", "school", "teaching", "student", "learning", "curriculum"},
		},
		ambiguityKeywords: []string{
			"best", "all", "always", "never", "everything", "anyone",
			"solution to all", "only", "truly", "really", "it", "this", "that",
		},
	}
}

// ScoreComplexity scores a query in [0,1] from weighted factors. Empty
// inputs yield a neutral low-complexity score rather than an error.
func (s *Scorer) ScoreComplexity(question string, history []types.ConversationMessage) types.ComplexityScore {
	if strings.TrimSpace(question) == "" && len(history) == 0 {
		// Neutral fallback so routing never blocks the pipeline
		return types.ComplexityScore{
			SemanticDepth:     0.2,
			ReasoningSteps:    0.2,
			DomainSpecificity: 0.1,
			Ambiguity:         0.3,
			Overall:           0.2,
		}
	}

	text := strings.ToLower(question)
	for _, msg := range history {
		text += " " + strings.ToLower(msg.Content)
	}

	score := types.ComplexityScore{
		SemanticDepth:     s.scoreSemanticDepth(text, question),
		ReasoningSteps:    s.scoreReasoningSteps(text),
		DomainSpecificity: s.scoreDomainSpecificity(text),
		Ambiguity:         s.scoreAmbiguity(strings.ToLower(question)),
	}
	score.Overall = types.ClampUnit(
		score.SemanticDepth*s.weights.SemanticDepthWeight +
			score.ReasoningSteps*s.weights.ReasoningStepsWeight +
			score.DomainSpecificity*s.weights.DomainSpecificityWeight +
			score.Ambiguity*s.weights.AmbiguityWeight)
	return score
}

// Route combines the complexity score with caller preferences into a
// routing decision. Pure function of its inputs; no side effects.
func (s *Scorer) Route(_ context.Context, question string, history []types.ConversationMessage, prefs types.RoutingPreferences) (*types.RoutingDecision, error) {
	complexity := s.ScoreComplexity(question, history)

	target := s.recommend(complexity.Overall, prefs)

	decision := &types.RoutingDecision{
		Recommendation: target,
		Complexity:     complexity,
		Confidence:     s.confidence(question, history, complexity),
		Preferences:    prefs,
	}

	switch target {
	case types.RouteLocal:
		decision.AdapterID = AdapterLocal
		decision.EstimatedLatencyMs = 350
		decision.EstimatedCost = 0.0
	case types.RouteHybrid:
		decision.AdapterID = AdapterHybrid
		decision.EstimatedLatencyMs = 900
		decision.EstimatedCost = 0.004
	case types.RouteCloud:
		decision.AdapterID = AdapterCloud
		decision.EstimatedLatencyMs = 2400
		decision.EstimatedCost = 0.012
	}

	decision.Rationale = fmt.Sprintf(
		"complexity %.2f (depth %.2f, steps %.2f, domain %.2f, ambiguity %.2f) routed to %s",
		complexity.Overall, complexity.SemanticDepth, complexity.ReasoningSteps,
		complexity.DomainSpecificity, complexity.Ambiguity, target)

	return decision, nil
}

func (s *Scorer) recommend(overall float64, prefs types.RoutingPreferences) types.RouteTarget {
	local := s.weights.LocalThreshold
	cloud := s.weights.CloudThreshold

	// Preferences shift the thresholds, they never override them entirely
	if prefs.PreferCost || prefs.PreferPrivacy {
		local += 0.15
		cloud += 0.15
	}
	if prefs.PreferQuality {
		local -= 0.15
		cloud -= 0.15
	}

	switch {
	case overall < local:
		return types.RouteLocal
	case overall < cloud:
		return types.RouteHybrid
	default:
		return types.RouteCloud
	}
}

func (s *Scorer) confidence(question string, history []types.ConversationMessage, complexity types.ComplexityScore) float64 {
	confidence := 0.9 - complexity.Ambiguity*0.4
	if strings.TrimSpace(question) == "" {
		confidence -= 0.2
	}
	if len(history) == 0 {
		confidence -= 0.1
	}
	if confidence < 0.3 {
		confidence = 0.3
	}
	return types.CapScore(confidence)
}

func (s *Scorer) scoreSemanticDepth(text, question string) float64 {
	score := 0.1
	for _, kw := range s.depthKeywords {
		if strings.Contains(text, kw) {
			score += 0.08
		}
	}
	// Longer questions tend to carry more semantic load
	if len(question) > 60 {
		score += 0.1
	}
	if len(question) > 140 {
		score += 0.1
	}
	return types.ClampUnit(score)
}

func (s *Scorer) scoreReasoningSteps(text string) float64 {
	score := 0.1
	for _, marker := range s.reasoningMarkers {
		score += 0.05 * float64(strings.Count(text, " "+marker+" "))
	}
	score += 0.1 * float64(strings.Count(text, "?")-1)
	return types.ClampUnit(score)
}

func (s *Scorer) scoreDomainSpecificity(text string) float64 {
	matched := 0
	for _, keywords := range s.domainCatalogues {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				matched++
				break
			}
		}
	}
	// One matched domain means a focused query; several mean breadth
	return types.ClampUnit(0.1 + 0.25*float64(matched))
}

func (s *Scorer) scoreAmbiguity(question string) float64 {
	score := 0.1
	for _, kw := range s.ambiguityKeywords {
		if strings.Contains(question, kw) {
			score += 0.1
		}
	}
	if !strings.Contains(question, "?") {
		score += 0.1
	}
	return types.ClampUnit(score)
}

// DominantDomain reports which domain catalogue matched the text most
// strongly, or empty when nothing matched. The viewpoint analyzer uses it
// to tag viewpoints.
func (s *Scorer) DominantDomain(text string) string {
	lower := strings.ToLower(text)
	domains := make([]string, 0, len(s.domainCatalogues))
	for domain := range s.domainCatalogues {
		domains = append(domains, domain)
	}
	sort.Strings(domains)

	best := ""
	bestHits := 0
	for _, domain := range domains {
		hits := 0
		for _, kw := range s.domainCatalogues[domain] {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			best = domain
		}
	}
	return best
}
