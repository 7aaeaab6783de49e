// Package synthesis merges a viewpoint analysis and its strong-manned
// challenges into one structured answer. The synthesizer's job is
// balance: the user's position and the opposing positions get comparable
// depth, and disagreements that cannot be synthesized away are surfaced
// instead of smoothed over.
package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/caseymrobbins/personal-ai-sub001/internal/logging"
	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

const strongArgumentThreshold = 0.65

// Synthesizer builds SynthesizedAnswers. Stateless and safe for
// concurrent use.
type Synthesizer struct {
	logger logging.Logger
}

func NewSynthesizer(logger logging.Logger) *Synthesizer {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &Synthesizer{
		logger: logger.WithComponent("synthesis"),
	}
}

// SynthesizeAnswer produces the final answer from the analysis and the
// per-viewpoint challenge map (keyed by viewpoint ID). Viewpoints with no
// entry in the map still get a perspective, just without challenge-derived
// weaknesses.
func (s *Synthesizer) SynthesizeAnswer(ctx context.Context, question string, analysis *types.ViewpointAnalysis, strongManned map[string]*types.StrongMannedAnalysis) (*types.SynthesizedAnswer, error) {
	if analysis == nil || analysis.UserPosition == nil {
		return nil, fmt.Errorf("synthesis: viewpoint analysis with a user position is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	viewpoints := analysis.AllViewpoints()
	perspectives := make([]types.Perspective, 0, len(viewpoints))
	for _, vp := range viewpoints {
		perspectives = append(perspectives, s.buildPerspective(vp, strongManned[vp.ID]))
	}

	answer := &types.SynthesizedAnswer{
		ID:                        uuid.New().String(),
		DirectAnswer:              s.buildDirectAnswer(question, analysis),
		NuancedExplanation:        s.buildNuancedExplanation(analysis),
		TradeOffs:                 s.buildTradeOffs(analysis),
		Perspectives:              perspectives,
		CommonGround:              s.collectCommonGround(analysis),
		ContextualRecommendations: s.buildRecommendations(analysis),
		RecommendedApproach:       s.buildRecommendedApproach(analysis, strongManned),
		UnresolvableDisagreements: s.collectUnresolvable(analysis),
	}
	answer.SynthesisQuality = s.scoreSynthesisQuality(answer, len(viewpoints))
	answer.Representativeness = s.scoreRepresentativeness(analysis, answer)

	s.logger.Debug("synthesized answer",
		"answer_id", answer.ID,
		"perspectives", len(answer.Perspectives),
		"trade_offs", len(answer.TradeOffs),
		"quality", answer.SynthesisQuality,
		"representativeness", answer.Representativeness)
	return answer, nil
}

func (s *Synthesizer) buildDirectAnswer(question string, analysis *types.ViewpointAnalysis) string {
	topic := analysis.Topic
	if topic == "" {
		topic = "this question"
	}
	if len(analysis.OpposingViewpoints) == 0 {
		return fmt.Sprintf("On %s, only one position is on the table so far; the honest direct answer is that the question deserves challenge before it deserves agreement.", topic)
	}
	return fmt.Sprintf("There is no single settled answer on %s: %d distinct positions survive scrutiny, and which one is right depends on values and context the question itself does not fix.", topic, 1+len(analysis.OpposingViewpoints))
}

// buildNuancedExplanation always references at least one key tension,
// which is what keeps the explanation from being a restatement of the
// direct answer.
func (s *Synthesizer) buildNuancedExplanation(analysis *types.ViewpointAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user's position is that %s. ", lowerFirst(analysis.UserPosition.Position))
	if len(analysis.OpposingViewpoints) > 0 {
		fmt.Fprintf(&b, "The strongest opposing framing holds that %s. ", lowerFirst(analysis.OpposingViewpoints[0].Position))
	}
	if len(analysis.KeyTensions) > 0 {
		tension := analysis.KeyTensions[0]
		fmt.Fprintf(&b, "The central tension is %s: %s ", tension.Nature, tension.Explanation)
	}
	if analysis.TopicClarity.CoreDisagreement != "" {
		fmt.Fprintf(&b, "At bottom, the disagreement is: %s", analysis.TopicClarity.CoreDisagreement)
	}
	return strings.TrimSpace(b.String())
}

func (s *Synthesizer) buildPerspective(vp *types.Viewpoint, challenge *types.StrongMannedAnalysis) types.Perspective {
	perspective := types.Perspective{
		Title:       s.perspectiveTitle(vp),
		Description: vp.Position,
	}

	for _, arg := range vp.Arguments {
		if arg.Strength >= strongArgumentThreshold {
			perspective.Strengths = append(perspective.Strengths, arg.Statement)
		}
	}

	if challenge != nil {
		for _, counter := range challenge.CounterArguments {
			if counter.Strength >= strongArgumentThreshold {
				perspective.Weaknesses = append(perspective.Weaknesses, counter.Statement)
			}
		}
		for i, assumption := range challenge.UnexaminedAssumptions {
			if i >= 2 {
				break
			}
			perspective.ApplicableWhen = append(perspective.ApplicableWhen,
				fmt.Sprintf("When it is safe to assume that %s", lowerFirst(assumption.Assumption)))
		}
	}
	if vp.Domain != "" {
		perspective.ApplicableWhen = append(perspective.ApplicableWhen,
			fmt.Sprintf("When the question is primarily a %s question", vp.Domain))
	}
	return perspective
}

func (s *Synthesizer) perspectiveTitle(vp *types.Viewpoint) string {
	if vp.Stance == types.StanceUser {
		return "The Stated Position"
	}
	if vp.Domain != "" {
		// Casers carry internal state, so build one per call rather
		// than sharing one across concurrent runs.
		return cases.Title(language.English).String(vp.Domain + " counterpoint")
	}
	return "An Opposing Framing"
}

// buildTradeOffs maps prioritization and incompatible tensions one to one
// onto trade-offs; other tension natures are not choices a reader can make.
func (s *Synthesizer) buildTradeOffs(analysis *types.ViewpointAnalysis) []types.TradeOff {
	var tradeOffs []types.TradeOff
	for _, tension := range analysis.KeyTensions {
		if tension.Nature != types.TensionPrioritization && tension.Nature != types.TensionIncompatible {
			continue
		}
		tradeOffs = append(tradeOffs, types.TradeOff{
			Topic:       tension.Topic,
			OptionA:     tension.Position1,
			OptionB:     tension.Position2,
			Consequence: tension.Explanation,
		})
	}
	return tradeOffs
}

func (s *Synthesizer) collectCommonGround(analysis *types.ViewpointAnalysis) []string {
	ground := make([]string, 0, len(analysis.CommonGround))
	for _, cg := range analysis.CommonGround {
		ground = append(ground, cg.Statement)
	}
	return ground
}

func (s *Synthesizer) buildRecommendations(analysis *types.ViewpointAnalysis) []types.Recommendation {
	recommendations := []types.Recommendation{
		{
			Context:   "If you need to act before the disagreement is resolved",
			Guidance:  "Choose the option that is cheapest to reverse, and state in advance what observation would make you switch",
			Reasoning: "Reversibility converts an unresolved disagreement from a blocker into a monitored bet",
		},
	}
	for _, tension := range analysis.KeyTensions {
		if tension.Nature != types.TensionValue {
			continue
		}
		recommendations = append(recommendations, types.Recommendation{
			Context:   fmt.Sprintf("If the disagreement about %s is really about values", tension.Topic),
			Guidance:  "Make the value ranking explicit and negotiate it directly instead of relitigating the facts",
			Reasoning: "Value disagreements dressed as factual ones never converge, because new facts do not move either side",
		})
		break
	}
	if len(analysis.OpposingViewpoints) > 0 {
		recommendations = append(recommendations, types.Recommendation{
			Context:   "If you hold the stated position",
			Guidance:  fmt.Sprintf("Engage the strongest counter-framing on its own terms: %s", lowerFirst(analysis.OpposingViewpoints[0].Position)),
			Reasoning: "A position that has only answered weak objections has not yet earned its confidence",
		})
	}
	return recommendations
}

func (s *Synthesizer) buildRecommendedApproach(analysis *types.ViewpointAnalysis, strongManned map[string]*types.StrongMannedAnalysis) types.RecommendedApproach {
	approach := types.RecommendedApproach{
		Primary: fmt.Sprintf("Hold the position on %s provisionally: keep its strongest arguments, concede its weakest, and revisit when the surfaced assumptions are tested", analysis.Topic),
	}

	for _, vp := range analysis.OpposingViewpoints {
		approach.Alternatives = append(approach.Alternatives, vp.Position)
	}

	for _, vp := range analysis.AllViewpoints() {
		challenge := strongManned[vp.ID]
		if challenge == nil {
			continue
		}
		for _, edgeCase := range challenge.EdgeCases {
			if edgeCase.Severity == types.SeverityCritical && !edgeCase.PositionHolds {
				approach.Caveats = append(approach.Caveats,
					fmt.Sprintf("Fragile under %s: %s", edgeCase.Scenario, lowerFirst(edgeCase.Reasoning)))
			}
		}
		for i, assumption := range challenge.UnexaminedAssumptions {
			if i >= 2 {
				break
			}
			approach.Assumptions = append(approach.Assumptions, assumption.Assumption)
		}
	}
	approach.Assumptions = dedupe(approach.Assumptions)
	approach.Caveats = dedupe(approach.Caveats)
	return approach
}

// collectUnresolvable lists tensions of nature value or contradictory;
// those cannot be synthesized away and the reader deserves to know it.
func (s *Synthesizer) collectUnresolvable(analysis *types.ViewpointAnalysis) []string {
	var unresolvable []string
	for _, tension := range analysis.KeyTensions {
		if tension.Nature != types.TensionValue && tension.Nature != types.TensionContradictory {
			continue
		}
		unresolvable = append(unresolvable, tension.Explanation)
	}
	return unresolvable
}

// scoreSynthesisQuality reflects coverage: how many viewpoints received a
// non-trivial perspective, plus small bonuses for trade-offs and
// recommendations.
func (s *Synthesizer) scoreSynthesisQuality(answer *types.SynthesizedAnswer, viewpointCount int) float64 {
	quality := 0.4

	if viewpointCount > 0 {
		covered := 0
		for _, perspective := range answer.Perspectives {
			if len(perspective.Strengths) > 0 || len(perspective.Weaknesses) > 0 {
				covered++
			}
		}
		quality += 0.4 * float64(covered) / float64(viewpointCount)
	}
	if len(answer.TradeOffs) > 0 {
		quality += 0.1
	}
	if len(answer.ContextualRecommendations) > 0 {
		quality += 0.05
	}
	return types.CapScore(quality)
}

// scoreRepresentativeness measures whether the user's position and the
// opposing positions got comparable depth. Depth is the volume of
// strengths and weaknesses in each perspective. Without any opposing
// viewpoint there is nothing to balance against, and the score reflects
// that honestly.
func (s *Synthesizer) scoreRepresentativeness(analysis *types.ViewpointAnalysis, answer *types.SynthesizedAnswer) float64 {
	if len(analysis.OpposingViewpoints) == 0 || len(answer.Perspectives) < 2 {
		return 0.35
	}

	userDepth := perspectiveDepth(answer.Perspectives[0])
	opposingDepth := 0.0
	for _, perspective := range answer.Perspectives[1:] {
		opposingDepth += perspectiveDepth(perspective)
	}
	opposingDepth /= float64(len(answer.Perspectives) - 1)

	balance := 1.0
	if userDepth > 0 || opposingDepth > 0 {
		lo, hi := userDepth, opposingDepth
		if lo > hi {
			lo, hi = hi, lo
		}
		balance = lo / hi
	}
	return types.CapScore(0.5 + 0.45*balance)
}

func perspectiveDepth(p types.Perspective) float64 {
	return float64(len(p.Strengths) + len(p.Weaknesses))
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] = r[0] + ('a' - 'A')
	}
	return string(r)
}
