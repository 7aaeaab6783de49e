package strongman

import (
	"fmt"

	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

// generateProbingQuestions turns the strongest assumptions and failing
// edge cases into questions, then appends two fixed meta-questions that
// apply to any position.
func (e *Engine) generateProbingQuestions(assumptions []types.UnexaminedAssumption, edgeCases []types.EdgeCase) []types.ProbingQuestion {
	var questions []types.ProbingQuestion

	for i, assumption := range assumptions {
		if i >= 3 {
			break
		}
		questions = append(questions, types.ProbingQuestion{
			Question:       assumption.ChallengeStatement,
			Reasoning:      fmt.Sprintf("Targets the assumption that %s", lowerFirst(assumption.Assumption)),
			RevealsProblem: assumption.Importance > 0.75,
			Difficulty:     types.ClampUnit(assumption.Importance),
		})
	}

	for _, edgeCase := range edgeCases {
		if edgeCase.PositionHolds {
			continue
		}
		questions = append(questions, types.ProbingQuestion{
			Question:       fmt.Sprintf("How does the position survive the %s scenario, where %s", edgeCase.Scenario, lowerFirst(edgeCase.Reasoning)+"?"),
			Reasoning:      fmt.Sprintf("The %s stress test is where the position looks weakest", edgeCase.Scenario),
			RevealsProblem: edgeCase.Severity == types.SeverityCritical,
			Difficulty:     severityDifficulty(edgeCase.Severity),
		})
	}

	questions = append(questions,
		types.ProbingQuestion{
			Question:       "What evidence, if it appeared tomorrow, would change your mind?",
			Reasoning:      "A position with no conceivable disconfirmation is held as identity, not as a conclusion",
			RevealsProblem: false,
			Difficulty:     0.8,
		},
		types.ProbingQuestion{
			Question:       "Can you state the strongest version of the opposing case, in terms its holders would endorse?",
			Reasoning:      "Inability to steel-man the opposition usually signals the position was adopted before the alternatives were examined",
			RevealsProblem: false,
			Difficulty:     0.75,
		},
	)

	return questions
}

func severityDifficulty(severity types.EdgeCaseSeverity) float64 {
	switch severity {
	case types.SeverityCritical:
		return 0.85
	case types.SeveritySignificant:
		return 0.65
	default:
		return 0.45
	}
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
