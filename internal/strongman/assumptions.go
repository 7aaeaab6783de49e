package strongman

import (
	"fmt"
	"sort"
	"strings"

	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

// surfaceAssumptions collects the hidden premises of a viewpoint. Three
// universal assumptions apply to any position; further ones are derived
// from the argument text. The result is sorted by importance, descending.
func (e *Engine) surfaceAssumptions(viewpoint *types.Viewpoint) []types.UnexaminedAssumption {
	assumptions := []types.UnexaminedAssumption{
		{
			Assumption:         "The framing of the question is itself correct",
			WhyAssumed:         "Every position inherits the framing of the question it answers; questioning the frame feels like changing the subject",
			ChallengeStatement: "What if the question is posed at the wrong level, and the real disagreement lives in how the problem was framed?",
			IsExplicit:         false,
			Importance:         0.9,
		},
		{
			Assumption:         "The values used to weigh the options are the right ones",
			WhyAssumed:         "One's own value ranking is usually invisible from the inside; it reads as common sense rather than a choice",
			ChallengeStatement: "What if a different but defensible value ranking reverses the conclusion without disputing a single fact?",
			IsExplicit:         false,
			Importance:         0.85,
		},
		{
			Assumption:         "The future will resemble the past closely enough for today's evidence to apply",
			WhyAssumed:         "Extrapolation is the only tool available, so its validity is rarely stated as a premise",
			ChallengeStatement: "What if a structural break makes the historical record a poor guide to what happens next?",
			IsExplicit:         false,
			Importance:         0.8,
		},
	}

	assumptions = append(assumptions, e.deriveAssumptions(viewpoint)...)

	sort.SliceStable(assumptions, func(i, j int) bool {
		return assumptions[i].Importance > assumptions[j].Importance
	})
	return assumptions
}

// deriveAssumptions scans argument statements for constructions that carry
// an implicit premise: causal claims, universal quantifiers, and necessity
// claims.
func (e *Engine) deriveAssumptions(viewpoint *types.Viewpoint) []types.UnexaminedAssumption {
	var derived []types.UnexaminedAssumption
	seen := map[string]bool{}

	for _, arg := range viewpoint.Arguments {
		// Padded so word-boundary checks match at the ends too
		lower := " " + strings.ToLower(arg.Statement) + " "

		if !seen["causal"] && (strings.Contains(lower, "because") || strings.Contains(lower, "leads to") || strings.Contains(lower, "causes") || strings.Contains(lower, "results in")) {
			seen["causal"] = true
			derived = append(derived, types.UnexaminedAssumption{
				Assumption:         fmt.Sprintf("The causal link asserted in %q actually runs in the stated direction", shorten(arg.Statement, 70)),
				WhyAssumed:         "Correlation and plausible narrative are easy to mistake for demonstrated causation",
				ChallengeStatement: "What if the causation is reversed, or both effects share a hidden common cause?",
				IsExplicit:         true,
				Importance:         0.7,
			})
		}

		if !seen["universal"] && (strings.Contains(lower, " all ") || strings.Contains(lower, " every ") || strings.Contains(lower, " always ") || strings.Contains(lower, " never ") || strings.Contains(lower, " nothing ")) {
			seen["universal"] = true
			derived = append(derived, types.UnexaminedAssumption{
				Assumption:         fmt.Sprintf("The universal scope claimed in %q holds without exception", shorten(arg.Statement, 70)),
				WhyAssumed:         "Universal phrasing is rhetorically stronger, and counterexamples are not salient when making the case",
				ChallengeStatement: "What single counterexample would the position's holder accept as decisive, and has anyone looked for one?",
				IsExplicit:         true,
				Importance:         0.75,
			})
		}

		if !seen["necessity"] && (strings.Contains(lower, "need to") || strings.Contains(lower, "have to") || strings.Contains(lower, "required") || strings.Contains(lower, "necessary") || strings.Contains(lower, "cannot be") || strings.Contains(lower, "must ")) {
			seen["necessity"] = true
			derived = append(derived, types.UnexaminedAssumption{
				Assumption:         fmt.Sprintf("The necessity claimed in %q rules out every alternative path", shorten(arg.Statement, 70)),
				WhyAssumed:         "Once a path looks workable, the effort of enumerating alternatives is rarely spent",
				ChallengeStatement: "What alternative routes to the same goal were considered and rejected, and on what grounds?",
				IsExplicit:         true,
				Importance:         0.72,
			})
		}
	}
	return derived
}
