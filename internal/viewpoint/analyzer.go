// Package viewpoint extracts the user's stated position from conversation
// text and constructs plausible opposing viewpoints, common ground, and
// tensions. Generation is heuristic and template-driven, not retrieval.
package viewpoint

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

// DomainClassifier tags text with its dominant domain. The routing scorer
// implements this.
type DomainClassifier interface {
	DominantDomain(text string) string
}

// Analyzer constructs a ViewpointAnalysis from conversation history
type Analyzer struct {
	maxOpposing int
	domains     DomainClassifier

	hedgeWords     []string
	certaintyWords []string
	absoluteWords  []string
}

// NewAnalyzer creates a viewpoint analyzer. maxOpposing bounds opposing
// viewpoint generation and is clamped to [1,3].
func NewAnalyzer(maxOpposing int, domains DomainClassifier) *Analyzer {
	if maxOpposing < 1 {
		maxOpposing = 1
	}
	if maxOpposing > 3 {
		maxOpposing = 3
	}
	return &Analyzer{
		maxOpposing: maxOpposing,
		domains:     domains,

		hedgeWords:     []string{"maybe", "perhaps", "might", "possibly", "i guess", "not sure"},
		certaintyWords: []string{"definitely", "clearly", "obviously", "certainly", "must", "always", "never"},
		absoluteWords:  []string{"all", "every", "always", "never", "only", "nothing", "everyone", "no one"},
	}
}

// AnalyzeConversation extracts the user position, generates opposing
// viewpoints, and computes common ground, tensions, and topic clarity.
// A zero-message history still produces a valid low-confidence analysis.
func (a *Analyzer) AnalyzeConversation(_ context.Context, history []types.ConversationMessage, topic string) (*types.ViewpointAnalysis, error) {
	cleanedTopic := cleanTopic(topic)

	userPosition := a.extractUserPosition(history, cleanedTopic)

	var opposing []*types.Viewpoint
	if len(a.userTurns(history)) > 0 {
		opposing = a.generateOpposing(cleanedTopic, userPosition)
	}

	analysis := &types.ViewpointAnalysis{
		ID:                 uuid.New().String(),
		Topic:              cleanedTopic,
		UserPosition:       userPosition,
		OpposingViewpoints: opposing,
		CommonGround:       a.findCommonGround(cleanedTopic, userPosition, opposing),
		KeyTensions:        a.findKeyTensions(cleanedTopic, userPosition, opposing),
		TopicClarity:       a.assessTopicClarity(cleanedTopic, userPosition),
		Timestamp:          time.Now().UTC(),
	}
	analysis.AnalysisConfidence = a.scoreConfidence(analysis)

	return analysis, nil
}

// userTurns filters the history down to user-authored messages with content
func (a *Analyzer) userTurns(history []types.ConversationMessage) []types.ConversationMessage {
	turns := make([]types.ConversationMessage, 0, len(history))
	for _, msg := range history {
		if msg.Role == types.RoleUser && strings.TrimSpace(msg.Content) != "" {
			turns = append(turns, msg)
		}
	}
	return turns
}

// extractUserPosition summarizes user-authored turns into one viewpoint.
// Confidence grows with turn count and length.
func (a *Analyzer) extractUserPosition(history []types.ConversationMessage, topic string) *types.Viewpoint {
	turns := a.userTurns(history)

	if len(turns) == 0 {
		vp := types.NewViewpoint(fmt.Sprintf("No stated position on %s", topic), types.StanceUser)
		vp.Confidence = 0.1
		if a.domains != nil {
			vp.Domain = a.domains.DominantDomain(topic)
		}
		return vp
	}

	parts := make([]string, 0, len(turns))
	totalLen := 0
	for _, turn := range turns {
		parts = append(parts, strings.TrimSpace(turn.Content))
		totalLen += len(turn.Content)
	}
	position := truncateAtSentence(strings.Join(parts, " "), 300)

	vp := types.NewViewpoint(position, types.StanceUser)
	if a.domains != nil {
		vp.Domain = a.domains.DominantDomain(position + " " + topic)
	}

	confidence := 0.3 + 0.1*float64(minInt(len(turns), 3))
	if totalLen > 200 {
		confidence += 0.2
	}
	if confidence > 0.9 {
		confidence = 0.9
	}
	vp.Confidence = confidence

	vp.Arguments = a.extractArguments(strings.Join(parts, " "))
	return vp
}

// extractArguments splits user text into sentences and scores each as an
// atomic claim
func (a *Analyzer) extractArguments(text string) []types.Argument {
	sentences := splitSentences(text)
	args := make([]types.Argument, 0, len(sentences))
	for _, sentence := range sentences {
		if len(sentence) < 20 {
			continue
		}
		args = append(args, types.NewArgument(sentence, a.scoreArgumentStrength(sentence)))
		if len(args) >= 6 {
			break
		}
	}
	return args
}

func (a *Analyzer) scoreArgumentStrength(sentence string) float64 {
	lower := strings.ToLower(sentence)
	strength := 0.5

	if strings.Contains(lower, "because") || strings.Contains(lower, "since") {
		strength += 0.15
	}
	if strings.ContainsAny(sentence, "0123456789") {
		strength += 0.1
	}
	for _, hedge := range a.hedgeWords {
		if strings.Contains(lower, hedge) {
			strength -= 0.1
			break
		}
	}
	for _, certain := range a.certaintyWords {
		if strings.Contains(lower, certain) {
			strength += 0.1
			break
		}
	}
	return types.ClampUnit(strength)
}

// generateOpposing instantiates up to maxOpposing counter-frames. It never
// merely negates the user's statement.
func (a *Analyzer) generateOpposing(topic string, userPosition *types.Viewpoint) []*types.Viewpoint {
	frames := builtinFrames()
	count := minInt(a.maxOpposing, len(frames))

	opposing := make([]*types.Viewpoint, 0, count)
	for i := 0; i < count; i++ {
		opposing = append(opposing, frames[i].buildViewpoint(topic, userPosition.Domain))
	}
	return opposing
}

// findCommonGround computes statements both the user position and at least
// one opposing viewpoint would endorse
func (a *Analyzer) findCommonGround(topic string, userPosition *types.Viewpoint, opposing []*types.Viewpoint) []types.CommonGround {
	if len(opposing) == 0 {
		return []types.CommonGround{}
	}

	allIDs := []string{userPosition.ID}
	for _, vp := range opposing {
		allIDs = append(allIDs, vp.ID)
	}

	ground := []types.CommonGround{
		{
			Statement: fmt.Sprintf("Getting %s right matters; the disagreement is about means and weights, not about whether the question deserves care", topic),
			Agreement: allIDs,
			Strength:  0.75,
		},
		{
			Statement: "Both costs and benefits are real and deserve to be weighed rather than dismissed",
			Agreement: []string{userPosition.ID, opposing[0].ID},
			Strength:  0.7,
		},
	}

	if userPosition.Domain != "" {
		ground = append(ground, types.CommonGround{
			Statement: fmt.Sprintf("The debate draws on the shared evidence base of the %s domain", userPosition.Domain),
			Agreement: allIDs,
			Strength:  0.6,
		})
	}
	return ground
}

// findKeyTensions pairs viewpoints whose positions conflict and tags each
// pair by the nature of the conflict
func (a *Analyzer) findKeyTensions(topic string, userPosition *types.Viewpoint, opposing []*types.Viewpoint) []types.Tension {
	tensions := []types.Tension{}
	frames := builtinFrames()

	userIsAbsolute := a.containsAbsolutes(userPosition.Position)

	for i, vp := range opposing {
		nature := frames[i].tensionNature
		// An absolutist user claim turns the factual challenge into a
		// direct contradiction
		if nature == types.TensionFactual && userIsAbsolute {
			nature = types.TensionContradictory
		}
		tensions = append(tensions, types.Tension{
			ID:          uuid.New().String(),
			Topic:       topic,
			Position1:   userPosition.Position,
			Position2:   vp.Position,
			Nature:      nature,
			Explanation: explainTension(nature, topic),
		})
	}

	// Two counter-framings can also conflict with each other
	if len(opposing) >= 2 {
		tensions = append(tensions, types.Tension{
			ID:          uuid.New().String(),
			Topic:       topic,
			Position1:   opposing[0].Position,
			Position2:   opposing[1].Position,
			Nature:      types.TensionIncompatible,
			Explanation: fmt.Sprintf("A cost-first framing and a values-first framing of %s prescribe different decision procedures and cannot both govern the same choice", topic),
		})
	}

	return tensions
}

func (a *Analyzer) containsAbsolutes(text string) bool {
	lower := " " + strings.ToLower(text) + " "
	for _, word := range a.absoluteWords {
		if strings.Contains(lower, " "+word+" ") {
			return true
		}
	}
	return false
}

func explainTension(nature types.TensionNature, topic string) string {
	switch nature {
	case types.TensionPrioritization:
		return fmt.Sprintf("Both sides accept that %s has benefits and costs but rank them differently, so the disagreement is about priority, not facts", topic)
	case types.TensionValue:
		return fmt.Sprintf("The positions on %s rest on different values, and no additional evidence can settle which values should win", topic)
	case types.TensionFactual:
		return fmt.Sprintf("The positions disagree about what the evidence on %s actually shows, which is in principle resolvable by better data", topic)
	case types.TensionContradictory:
		return fmt.Sprintf("The positions on %s cannot both be true as stated; at least one of them must give ground", topic)
	case types.TensionIncompatible:
		return fmt.Sprintf("The positions on %s prescribe incompatible courses of action even where they agree on the facts", topic)
	default:
		return fmt.Sprintf("The positions on %s are in conflict", topic)
	}
}

// assessTopicClarity reports whether the topic is well-defined, names the
// core disagreement in one sentence, and lists assumptions both sides share
func (a *Analyzer) assessTopicClarity(topic string, userPosition *types.Viewpoint) types.TopicClarity {
	wellDefined := len(strings.Fields(topic)) >= 3 && userPosition.Confidence > 0.1

	return types.TopicClarity{
		WellDefined:      wellDefined,
		CoreDisagreement: fmt.Sprintf("Whether %s, and which values and costs should decide it", topic),
		SharedAssumptions: []string{
			"The question as framed captures the real decision to be made",
			fmt.Sprintf("Evidence about %s is available to and accepted by both sides", topic),
		},
	}
}

func (a *Analyzer) scoreConfidence(analysis *types.ViewpointAnalysis) float64 {
	confidence := analysis.UserPosition.Confidence * 0.5
	confidence += 0.1 * float64(len(analysis.OpposingViewpoints))
	if len(analysis.KeyTensions) > 0 {
		confidence += 0.1
	}
	if len(analysis.CommonGround) > 0 {
		confidence += 0.1
	}
	return types.CapScore(confidence)
}

// cleanTopic strips interrogative scaffolding from a question so templates
// read naturally
func cleanTopic(topic string) string {
	cleaned := strings.TrimSpace(topic)
	cleaned = strings.TrimSuffix(cleaned, "?")
	lower := strings.ToLower(cleaned)
	for _, prefix := range []string{"should ", "is ", "are ", "do ", "does ", "can ", "will ", "would "} {
		if strings.HasPrefix(lower, prefix) {
			cleaned = cleaned[len(prefix):]
			break
		}
	}
	if strings.TrimSpace(cleaned) == "" {
		return "this question"
	}
	return strings.TrimSpace(strings.ToLower(cleaned[:1]) + cleaned[1:])
}

func splitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		trimmed := strings.TrimSpace(s)
		if trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

func truncateAtSentence(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	if idx := strings.LastIndexAny(cut, ".!?"); idx > limit/2 {
		return strings.TrimSpace(cut[:idx+1])
	}
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		return strings.TrimSpace(cut[:idx]) + "..."
	}
	return cut
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
