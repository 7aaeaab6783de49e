package strongman

import (
	"fmt"
	"strings"

	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

// Fixed fairness scores per counterargument type. The aggregation contract
// only requires the range; constants keep the detectors deterministic.
const (
	fairnessEmpirical = 0.85
	fairnessLogical   = 0.80
	fairnessValue     = 0.75
)

// detectLogicalFallacy checks an argument for common fallacy surface
// patterns and either abstains or returns one counterargument.
func (e *Engine) detectLogicalFallacy(arg *types.Argument) *types.CounterArgument {
	lower := strings.ToLower(arg.Statement)

	type fallacyPattern struct {
		name     string
		triggers []string
		counter  string
	}
	patterns := []fallacyPattern{
		{
			name:     "appeal to authority",
			triggers: []string{"experts say", "experts agree", "everyone knows", "scientists say", "it is well known"},
			counter:  "The claim leans on authority rather than evidence; authorities have been wrong before, so the underlying data has to carry the argument on its own",
		},
		{
			name:     "false binary",
			triggers: []string{"either", "the only way", "only option", "no choice but", "must choose"},
			counter:  "The claim frames a spectrum of options as a binary; intermediate and hybrid courses of action exist and may dominate both stated options",
		},
		{
			name:     "circularity",
			triggers: []string{"obviously", "clearly", "self-evident", "by definition", "it goes without saying"},
			counter:  "The claim treats its conclusion as self-evident, which assumes exactly what is in dispute; someone who rejects the conclusion is given no reason to change their mind",
		},
		{
			name:     "composition",
			triggers: []string{"every single", "all of them", "each and every", "in all cases"},
			counter:  "What holds for individual cases is asserted to hold for the whole class; aggregate behavior often differs from individual behavior",
		},
	}

	for _, pattern := range patterns {
		for _, trigger := range pattern.triggers {
			if strings.Contains(lower, trigger) {
				counter := types.CounterArgument{
					Argument:        types.NewArgument(pattern.counter, 0.72),
					TargetStatement: arg.Statement,
					CounterType:     types.CounterLogicalFallacy,
					FairnessScore:   fairnessLogical,
				}
				counter.LogicalForm = pattern.name
				return &counter
			}
		}
	}
	return nil
}

// detectEmpiricalChallenge flags numeric or statistical claims that carry
// no citation.
func (e *Engine) detectEmpiricalChallenge(arg *types.Argument) *types.CounterArgument {
	lower := strings.ToLower(arg.Statement)

	hasNumericClaim := strings.ContainsAny(arg.Statement, "0123456789") ||
		strings.Contains(lower, "percent") ||
		strings.Contains(lower, "majority") ||
		strings.Contains(lower, "most people") ||
		strings.Contains(lower, "statistics") ||
		strings.Contains(lower, "studies show")

	if !hasNumericClaim {
		return nil
	}

	hasCitation := strings.Contains(lower, "according to") ||
		strings.Contains(lower, "source") ||
		strings.Contains(lower, "cited") ||
		strings.Contains(lower, "published")

	if hasCitation {
		return nil
	}

	counter := types.CounterArgument{
		Argument: types.NewArgument(
			fmt.Sprintf("The quantitative claim %q is offered without a source; until the figure is traced to data, the argument's weight is unearned", shorten(arg.Statement, 80)),
			0.75),
		TargetStatement: arg.Statement,
		CounterType:     types.CounterEmpiricalChallenge,
		FairnessScore:   fairnessEmpirical,
	}
	return &counter
}

// detectValueConflict flags normative language presented as if it were
// factual.
func (e *Engine) detectValueConflict(arg *types.Argument) *types.CounterArgument {
	lower := strings.ToLower(arg.Statement)

	normative := []string{"should", "must", "ought", "better", "worse", "right thing", "wrong to", "have to"}
	matched := ""
	for _, word := range normative {
		if strings.Contains(lower, word) {
			matched = word
			break
		}
	}
	if matched == "" {
		return nil
	}

	counter := types.CounterArgument{
		Argument: types.NewArgument(
			fmt.Sprintf("The claim's %q smuggles in a value judgment; someone who ranks the competing values differently can accept every stated fact and still reject the conclusion", matched),
			0.68),
		TargetStatement: arg.Statement,
		CounterType:     types.CounterValueConflict,
		FairnessScore:   fairnessValue,
	}
	return &counter
}

// synthesizePotentialResponse writes the one-sentence rebuttal the original
// arguer could make. Shipping each counter with its own counter-counter is
// what keeps this engine steel-manning rather than straw-manning.
func (e *Engine) synthesizePotentialResponse(counter *types.CounterArgument) string {
	switch counter.CounterType {
	case types.CounterLogicalFallacy:
		return "The arguer could restate the claim in a more careful form that avoids the fallacious phrasing while keeping its substance intact"
	case types.CounterEmpiricalChallenge:
		return "The arguer could supply the missing citation, and if the figure checks out the challenge dissolves entirely"
	case types.CounterValueConflict:
		return "The arguer could defend the value ranking explicitly, arguing that in this context their priority is the one most people on reflection would share"
	case types.CounterAssumptionChallenge:
		return "The arguer could show the assumption is independently supported rather than merely convenient"
	default:
		return "The arguer could concede the edge case while showing the core position survives in the typical cases that matter most"
	}
}

func shorten(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return strings.TrimSpace(text[:limit]) + "..."
}
