package strongman

import (
	"fmt"
	"strings"

	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

// stressScenario is one entry in the fixed edge-case catalogue. The
// failure vocabulary lists words whose presence in the position text
// suggests the position already concedes ground under this scenario.
type stressScenario struct {
	scenario     string
	description  string
	severity     types.EdgeCaseSeverity
	failureVocab []string
	holdsReason  string
	failsReason  string
}

func stressCatalogue() []stressScenario {
	return []stressScenario{
		{
			scenario:     "extreme scale",
			description:  "The position is applied at 100x the scale it was argued at, where coordination costs, second-order effects, and emergent behavior dominate",
			severity:     types.SeveritySignificant,
			failureVocab: []string{"small", "local", "individual", "pilot", "community"},
			holdsReason:  "Nothing in the position ties its validity to a particular scale, so it plausibly survives the extrapolation, though untested",
			failsReason:  "The position is argued in scale-bound terms, and mechanisms that work at small scale routinely invert at large scale",
		},
		{
			scenario:     "long time horizon",
			description:  "The consequences are evaluated over fifty years instead of five, letting slow variables, compounding effects, and regime changes express themselves",
			severity:     types.SeveritySignificant,
			failureVocab: []string{"now", "immediate", "today", "short term", "current"},
			holdsReason:  "The position does not depend on near-term conditions, so the longer horizon mostly adds uncertainty rather than refutation",
			failsReason:  "The position's appeal rests on near-term conditions, and over a long horizon those conditions are the least stable part of the argument",
		},
		{
			scenario:     "adversarial actors",
			description:  "Motivated actors actively game, exploit, or subvert the arrangement the position recommends",
			severity:     types.SeverityCritical,
			failureVocab: []string{"trust", "good faith", "cooperate", "voluntary", "goodwill"},
			holdsReason:  "The position does not lean on cooperative behavior, so adversaries degrade it without defeating it",
			failsReason:  "The position presumes good-faith participation, and a single determined adversary can exploit exactly that presumption",
		},
		{
			scenario:     "resource scarcity",
			description:  "The budget, attention, or material resources the position implicitly requires are cut sharply",
			severity:     types.SeverityMinor,
			failureVocab: []string{"invest", "fund", "spend", "afford", "budget"},
			holdsReason:  "The position is not primarily a spending claim, so scarcity constrains the rollout without touching the core argument",
			failsReason:  "The position is premised on resource commitments, and under scarcity it competes directly with the priorities it hoped to sidestep",
		},
		{
			scenario:     "value conflict",
			description:  "The scenario forces a direct trade-off between the position's guiding value and another value its holder also endorses",
			severity:     types.SeverityCritical,
			failureVocab: []string{"always", "never", "must", "only", "unconditional"},
			holdsReason:  "The position is stated with enough qualification to absorb a competing value, at the cost of some of its force",
			failsReason:  "The position is stated unconditionally, so a forced trade-off against another endorsed value leaves it contradicting itself",
		},
	}
}

// testEdgeCases runs the position through the stress catalogue. The same
// viewpoint always yields the same cases in the same order.
func (e *Engine) testEdgeCases(viewpoint *types.Viewpoint) []types.EdgeCase {
	positionText := strings.ToLower(viewpoint.Position)
	for _, arg := range viewpoint.Arguments {
		positionText += " " + strings.ToLower(arg.Statement)
	}

	cases := make([]types.EdgeCase, 0, 5)
	for _, scenario := range stressCatalogue() {
		holds := !containsAny(positionText, scenario.failureVocab)
		reasoning := scenario.holdsReason
		if !holds {
			reasoning = scenario.failsReason
		}
		cases = append(cases, types.EdgeCase{
			Scenario:      scenario.scenario,
			Description:   fmt.Sprintf("%s. Applied to: %s", scenario.description, shorten(viewpoint.Position, 100)),
			PositionHolds: holds,
			Reasoning:     reasoning,
			Severity:      scenario.severity,
		})
	}
	return cases
}

func containsAny(text string, words []string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
